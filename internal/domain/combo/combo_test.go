package combo

import (
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// cfg builds a config with broad match and the given mode/options.
func cfg(mode Mode, opts Options) Config {
	return Config{Mode: mode, Options: opts, MatchTypes: DefaultMatchTypes()}
}

func cols(c1, c2, c3 []string) Columns {
	return Columns{c1, c2, c3}
}

// =============================================================================
// Column parsing
// =============================================================================

func TestParseColumn_DropsBlankLinesAndTrims(t *testing.T) {
	got := ParseColumn("shoes\r\n\n  running  \n   \nTrail Shoes\n")
	assert.Equal(t, []string{"shoes", "running", "Trail Shoes"}, got)
}

func TestParseColumn_Empty(t *testing.T) {
	assert.Empty(t, ParseColumn(""))
	assert.Empty(t, ParseColumn("\n\n  \n"))
}

func TestParseColumn_KeepsInternalSpacing(t *testing.T) {
	// Internal runs survive parsing; normalization happens at generation time.
	assert.Equal(t, []string{"a  b"}, ParseColumn("a  b"))
}

// =============================================================================
// Pair generation
// =============================================================================

func TestGenerate_PairsOnlyShuffled(t *testing.T) {
	got := Generate(cols([]string{"a", "b"}, []string{"x", "y"}, nil), cfg(ModePairsOnly, Options{}))
	want := []string{"a x", "x a", "a y", "y a", "b x", "x b", "b y", "y b"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("pairs-only mismatch (-want +got):\n%s", diff)
	}
}

func TestGenerate_PairsOnlyNoShuffle(t *testing.T) {
	got := Generate(cols([]string{"a", "b"}, []string{"x", "y"}, nil), cfg(ModePairsOnly, Options{NoShuffle: true}))
	assert.Equal(t, []string{"a x", "a y", "b x", "b y"}, got)
}

func TestGenerate_NoSpaceBetween(t *testing.T) {
	got := Generate(cols([]string{"a"}, []string{"x"}, nil), cfg(ModePairsOnly, Options{NoSpaceBetween: true}))
	assert.Equal(t, []string{"ax", "xa"}, got)
}

func TestGenerate_OnlyNoSpaceEmitsBothVariants(t *testing.T) {
	// OnlyNoSpace without NoSpaceBetween keeps the spaced variant too.
	got := Generate(cols([]string{"a"}, []string{"x"}, nil), cfg(ModePairsOnly, Options{OnlyNoSpace: true}))
	assert.Equal(t, []string{"a x", "x a", "ax", "xa"}, got)
}

func TestGenerate_BothSpacingFlags(t *testing.T) {
	got := Generate(cols([]string{"a"}, []string{"x"}, nil),
		cfg(ModePairsOnly, Options{OnlyNoSpace: true, NoSpaceBetween: true, NoShuffle: true}))
	assert.Equal(t, []string{"ax"}, got)
}

func TestGenerate_PairsIncludesSingles(t *testing.T) {
	got := Generate(cols([]string{"a"}, []string{"x"}, []string{"ignored"}), cfg(ModePairs, Options{}))
	assert.Equal(t, []string{"a", "x", "a x", "x a"}, got)
}

// =============================================================================
// Triple generation
// =============================================================================

func TestGenerate_TriplesOnlyAllPermutations(t *testing.T) {
	got := Generate(cols([]string{"a"}, []string{"b"}, []string{"c"}), cfg(ModeTriplesOnly, Options{}))
	want := []string{"a b c", "a c b", "b a c", "b c a", "c a b", "c b a"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("triple permutations mismatch (-want +got):\n%s", diff)
	}
}

func TestGenerate_TriplesNoShuffleCanonicalOnly(t *testing.T) {
	got := Generate(cols([]string{"a"}, []string{"b"}, []string{"c"}), cfg(ModeTriplesOnly, Options{NoShuffle: true}))
	assert.Equal(t, []string{"a b c"}, got)
}

func TestGenerate_TriplesNoSpace(t *testing.T) {
	got := Generate(cols([]string{"a"}, []string{"b"}, []string{"c"}),
		cfg(ModeTriplesOnly, Options{NoSpaceBetween: true}))
	assert.Equal(t, []string{"abc", "acb", "bac", "bca", "cab", "cba"}, got)
}

func TestGenerate_PairsAndTriples(t *testing.T) {
	got := Generate(cols([]string{"a"}, []string{"b"}, []string{"c"}), cfg(ModePairsTriples, Options{}))
	want := []string{
		"a b", "b a", "a c", "c a", "b c", "c b",
		"a b c", "a c b", "b a c", "b c a", "c a b", "c b a",
	}
	assert.Equal(t, want, got)
}

func TestGenerate_SinglesPairsTriples(t *testing.T) {
	got := Generate(cols([]string{"a"}, []string{"b"}, []string{"c"}), cfg(ModeAll, Options{}))
	require.Len(t, got, 15)
	assert.Equal(t, []string{"a", "b", "c"}, got[:3])
}

// =============================================================================
// Normalization and dedup
// =============================================================================

func TestGenerate_CollapsesInternalWhitespace(t *testing.T) {
	got := Generate(cols([]string{"a  b"}, []string{"x"}, nil), cfg(ModePairsOnly, Options{}))
	assert.Contains(t, got, "a b x")
	assert.NotContains(t, got, "a  b x")
}

func TestGenerate_DedupKeepsFirstOccurrence(t *testing.T) {
	got := Generate(cols([]string{"a", "a"}, []string{"x"}, nil), cfg(ModePairsOnly, Options{}))
	assert.Equal(t, []string{"a x", "x a"}, got)
}

func TestGenerate_AllowDuplicatesKeepsRepeats(t *testing.T) {
	got := Generate(cols([]string{"a", "a"}, []string{"x"}, nil), cfg(ModePairsOnly, Options{AllowDuplicates: true}))
	assert.Equal(t, []string{"a x", "x a", "a x", "x a"}, got)
}

func TestGenerate_DedupAfterNormalization(t *testing.T) {
	// "a  b" and "a b" normalize to the same combination; only one survives.
	got := Generate(cols([]string{"a  b", "a b"}, []string{"x"}, nil), cfg(ModePairsOnly, Options{NoShuffle: true}))
	assert.Equal(t, []string{"a b x"}, got)
}

func TestGenerate_SelfPairsDedup(t *testing.T) {
	// "a a" shuffled is still "a a".
	got := Generate(cols([]string{"a"}, []string{"a"}, nil), cfg(ModePairsOnly, Options{}))
	assert.Equal(t, []string{"a a"}, got)
}

// =============================================================================
// Match types and commas
// =============================================================================

func TestGenerate_MatchTypeBlocksInFixedOrder(t *testing.T) {
	c := Config{
		Mode:       ModePairsOnly,
		Options:    Options{NoShuffle: true},
		MatchTypes: MatchTypes{Broad: true, Phrase: true, Exact: true},
	}
	got := Generate(cols([]string{"a", "b"}, []string{"x"}, nil), c)
	want := []string{"a x", "b x", `"a x"`, `"b x"`, "[a x]", "[b x]"}
	assert.Equal(t, want, got)
}

func TestGenerate_ExactOnly(t *testing.T) {
	c := Config{Mode: ModePairsOnly, Options: Options{NoShuffle: true}, MatchTypes: MatchTypes{Exact: true}}
	got := Generate(cols([]string{"a"}, []string{"x"}, nil), c)
	assert.Equal(t, []string{"[a x]"}, got)
}

func TestGenerate_CommaAfterWrapper(t *testing.T) {
	c := Config{
		Mode:       ModePairsOnly,
		Options:    Options{NoShuffle: true, UseComma: true},
		MatchTypes: MatchTypes{Broad: true, Phrase: true, Exact: true},
	}
	got := Generate(cols([]string{"a"}, []string{"x"}, nil), c)
	assert.Equal(t, []string{"a x,", `"a x",`, "[a x],"}, got)
}

func TestGenerate_CommaDoesNotChangeCount(t *testing.T) {
	in := cols([]string{"a", "b", "c"}, []string{"x", "y"}, []string{"1"})
	base := Config{Mode: ModeAll, MatchTypes: MatchTypes{Broad: true, Exact: true}}
	withComma := base
	withComma.Options.UseComma = true

	plain := Generate(in, base)
	commas := Generate(in, withComma)
	require.Equal(t, len(plain), len(commas))
	for i := range plain {
		assert.Equal(t, plain[i]+",", commas[i])
	}
}

func TestGenerate_NoMatchTypesSelected(t *testing.T) {
	c := Config{Mode: ModePairsOnly}
	assert.Empty(t, Generate(cols([]string{"a"}, []string{"x"}, nil), c))
}

// =============================================================================
// Totality and edge cases
// =============================================================================

func TestGenerate_EmptyColumns(t *testing.T) {
	for _, m := range Modes() {
		assert.Empty(t, Generate(Columns{}, cfg(m, Options{})), m.String())
	}
}

func TestGenerate_MissingColumnContributesNothing(t *testing.T) {
	// Column 2 empty: pairs (1,2) produce nothing, but singles from column 1 remain.
	got := Generate(cols([]string{"a"}, nil, nil), cfg(ModePairs, Options{}))
	assert.Equal(t, []string{"a"}, got)
}

func TestGenerate_InvalidModeYieldsNothing(t *testing.T) {
	c := cfg(Mode(42), Options{})
	assert.Error(t, c.Validate())
	assert.Nil(t, Generate(cols([]string{"a"}, []string{"x"}, nil), c))
	assert.Nil(t, GenerateText("a\n", "x\n", "", c))
	assert.Nil(t, Combine(cols([]string{"a"}, []string{"x"}, nil), c))
	assert.Zero(t, EstimateRaw(cols([]string{"a"}, []string{"x"}, nil), c))
}

func TestGenerateText(t *testing.T) {
	got := GenerateText("a\nb\n", "x\n\n", "", cfg(ModePairsOnly, Options{NoShuffle: true}))
	assert.Equal(t, []string{"a x", "b x"}, got)
}

// =============================================================================
// Properties across every mode and flag combination
// =============================================================================

// allOptions enumerates every combination of the five formatting flags.
func allOptions() []Options {
	var out []Options
	for bits := 0; bits < 32; bits++ {
		out = append(out, Options{
			NoShuffle:       bits&1 != 0,
			UseComma:        bits&2 != 0,
			AllowDuplicates: bits&4 != 0,
			NoSpaceBetween:  bits&8 != 0,
			OnlyNoSpace:     bits&16 != 0,
		})
	}
	return out
}

func propertyColumns() Columns {
	return cols(
		[]string{"red", "blue", "red", "dark  green"},
		[]string{"shoes", "boots"},
		[]string{"sale", "cheap"},
	)
}

func TestProperties_EveryModeAndFlag(t *testing.T) {
	in := propertyColumns()
	types := MatchTypes{Broad: true, Phrase: true, Exact: true}

	for _, m := range Modes() {
		for _, o := range allOptions() {
			name := fmt.Sprintf("%s/%+v", m, o)
			c := Config{Mode: m, Options: o, MatchTypes: types}

			combos := Combine(in, c)
			out := Generate(in, c)

			// Output length = combinations × selected match types.
			require.Len(t, out, len(combos)*3, name)

			if o.AllowDuplicates {
				assert.Equal(t, EstimateRaw(in, c), len(combos), name)
			} else {
				seen := make(map[string]bool, len(out))
				for _, s := range out {
					assert.False(t, seen[s], "%s: duplicate %q", name, s)
					seen[s] = true
				}
			}

			// Blocks: broad, then phrase, then exact.
			n := len(combos)
			for i, s := range combos {
				suffix := ""
				if o.UseComma {
					suffix = ","
				}
				assert.Equal(t, s+suffix, out[i], name)
				assert.Equal(t, `"`+s+`"`+suffix, out[n+i], name)
				assert.Equal(t, "["+s+"]"+suffix, out[2*n+i], name)
			}

			// Normalized: no double spaces, no edge whitespace.
			for _, s := range combos {
				assert.NotContains(t, s, "  ", name)
				assert.Equal(t, strings.TrimSpace(s), s, name)
			}

			// Deterministic.
			assert.Equal(t, out, Generate(in, c), name)
		}
	}
}

func TestEstimateRaw(t *testing.T) {
	in := cols([]string{"a", "b"}, []string{"x", "y", "z"}, []string{"1", "2"})
	tests := []struct {
		mode Mode
		opts Options
		want int
	}{
		{ModePairsOnly, Options{}, 2 * 3 * 2},
		{ModePairsOnly, Options{NoShuffle: true}, 2 * 3},
		{ModePairsOnly, Options{OnlyNoSpace: true}, 2 * 3 * 2 * 2},
		{ModePairs, Options{}, 2 + 3 + 2*3*2},
		{ModeTriplesOnly, Options{}, 2 * 3 * 2 * 6},
		{ModeTriplesOnly, Options{NoShuffle: true, NoSpaceBetween: true}, 2 * 3 * 2},
		{ModePairsTriples, Options{}, (6+4+6)*2 + 12*6},
		{ModeAll, Options{}, 7 + (6+4+6)*2 + 12*6},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s/%+v", tt.mode, tt.opts), func(t *testing.T) {
			c := cfg(tt.mode, tt.opts)
			assert.Equal(t, tt.want, EstimateRaw(in, c))
			c.Options.AllowDuplicates = true
			assert.Len(t, Combine(in, c), tt.want)
		})
	}
}

// =============================================================================
// Modes, match types, config
// =============================================================================

func TestParseMode_RoundTrip(t *testing.T) {
	for _, m := range Modes() {
		parsed, err := ParseMode(m.String())
		require.NoError(t, err)
		assert.Equal(t, m, parsed)
	}
}

func TestParseMode_Unknown(t *testing.T) {
	_, err := ParseMode("quads")
	assert.ErrorIs(t, err, ErrUnknownMode)
}

func TestMode_UnmarshalText(t *testing.T) {
	var m Mode
	require.NoError(t, m.UnmarshalText([]byte("triples-only-from-1-2-3")))
	assert.Equal(t, ModeTriplesOnly, m)
	assert.ErrorIs(t, m.UnmarshalText([]byte("bogus")), ErrUnknownMode)
}

func TestMode_UsesColumn(t *testing.T) {
	assert.True(t, ModePairs.UsesColumn(1))
	assert.True(t, ModePairs.UsesColumn(2))
	assert.False(t, ModePairs.UsesColumn(3))
	assert.False(t, ModePairsOnly.UsesColumn(3))
	assert.True(t, ModeTriplesOnly.UsesColumn(3))
	assert.True(t, ModeAll.UsesColumn(3))
	assert.False(t, Mode(-1).UsesColumn(1))
}

func TestParseMatchTypes(t *testing.T) {
	m, err := ParseMatchTypes([]string{"Exact", " broad "})
	require.NoError(t, err)
	assert.Equal(t, MatchTypes{Broad: true, Exact: true}, m)
	assert.Equal(t, []string{"broad", "exact"}, m.Names())
	assert.Equal(t, 2, m.Count())

	_, err = ParseMatchTypes([]string{"fuzzy"})
	assert.ErrorIs(t, err, ErrUnknownMatchType)
}

func TestDefaultConfig(t *testing.T) {
	c := DefaultConfig()
	require.NoError(t, c.Validate())
	assert.Equal(t, ModePairs, c.Mode)
	assert.Equal(t, MatchTypes{Broad: true}, c.MatchTypes)
	assert.Equal(t, Options{}, c.Options)
}

func TestExport(t *testing.T) {
	assert.Equal(t, "a x\nx a", Export([]string{"a x", "x a"}))
	assert.Equal(t, "", Export(nil))
}
