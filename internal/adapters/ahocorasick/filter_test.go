package ahocorasick

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Negative keyword filter: one automaton pass per keyword
// =============================================================================

func TestFilter_DropsWholeWordMatches(t *testing.T) {
	f := NewFilter([]string{"free"})
	require.NotNil(t, f)

	kept, dropped := f.Apply([]string{"free shoes", "shoes free", "freestyle shoes", "red shoes"})
	assert.Equal(t, []string{"freestyle shoes", "red shoes"}, kept)
	assert.Equal(t, 2, dropped)
}

func TestFilter_CaseInsensitive(t *testing.T) {
	f := NewFilter([]string{"  Cheap "})
	assert.Equal(t, []string{"cheap"}, f.Match("CHEAP Shoes"))
	assert.Equal(t, []string{"cheap"}, f.Terms())
}

func TestFilter_MatchTypeWrappersAreBoundaries(t *testing.T) {
	f := NewFilter([]string{"used"})
	for _, kw := range []string{`"used cars"`, "[used cars]", "[cars used],", "used,"} {
		assert.NotEmpty(t, f.Match(kw), kw)
	}
	assert.Empty(t, f.Match("[unused cars]"))
}

func TestFilter_MultiWordTerm(t *testing.T) {
	f := NewFilter([]string{"for  kids"})
	assert.Equal(t, []string{"for kids"}, f.Match("shoes for kids"))
	assert.Empty(t, f.Match("shoes for adults"))
}

func TestFilter_OverlappingTerms(t *testing.T) {
	f := NewFilter([]string{"sale", "wholesale"})
	assert.Equal(t, []string{"wholesale"}, f.Match("wholesale shoes"))
	assert.ElementsMatch(t, []string{"sale", "wholesale"}, f.Match("wholesale sale"))
}

func TestFilter_KeepsOrder(t *testing.T) {
	f := NewFilter([]string{"x"})
	kept, _ := f.Apply([]string{"c", "x a", "b", "a"})
	assert.Equal(t, []string{"c", "b", "a"}, kept)
}

func TestFilter_EmptyTermsIsNil(t *testing.T) {
	assert.Nil(t, NewFilter(nil))
	assert.Nil(t, NewFilter([]string{"", "   "}))

	var f *Filter
	in := []string{"a", "b"}
	kept, dropped := f.Apply(in)
	assert.Equal(t, in, kept)
	assert.Zero(t, dropped)
	assert.Nil(t, f.Match("a"))
}

func TestFilter_DuplicateTermsCompiledOnce(t *testing.T) {
	f := NewFilter([]string{"free", "FREE", "free"})
	assert.Equal(t, []string{"free"}, f.Terms())
	assert.Equal(t, []string{"free"}, f.Match("free free"))
}
