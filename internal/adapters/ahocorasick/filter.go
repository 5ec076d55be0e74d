// Package ahocorasick filters generated keywords against a negative term
// list using an Aho-Corasick automaton, so a long negative list costs one
// pass per keyword rather than one pass per term.
package ahocorasick

import (
	"strings"
	"unicode"
	"unicode/utf8"

	aho "github.com/petar-dambovaliev/aho-corasick"
)

// Filter drops keywords containing any negative term as a whole word.
// Matching is case-insensitive. A nil *Filter keeps everything.
type Filter struct {
	automaton aho.AhoCorasick
	terms     []string
}

// NewFilter compiles terms. Terms are trimmed and lowercased; blanks and
// repeats are ignored. Returns nil when no terms remain.
func NewFilter(terms []string) *Filter {
	seen := make(map[string]bool, len(terms))
	var clean []string
	for _, t := range terms {
		t = strings.ToLower(strings.Join(strings.Fields(t), " "))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		clean = append(clean, t)
	}
	if len(clean) == 0 {
		return nil
	}
	builder := aho.NewAhoCorasickBuilder(aho.Opts{
		DFA: true,
	})
	return &Filter{automaton: builder.Build(clean), terms: clean}
}

// Terms returns the compiled negative terms.
func (f *Filter) Terms() []string {
	if f == nil {
		return nil
	}
	return f.terms
}

// Match returns the negative terms found in keyword, each once, in the
// order they occur.
func (f *Filter) Match(keyword string) []string {
	if f == nil {
		return nil
	}
	text := []byte(strings.ToLower(keyword))
	var out []string
	seen := make(map[int]bool)
	iter := f.automaton.IterOverlappingByte(text)
	for next := iter.Next(); next != nil; next = iter.Next() {
		m := *next
		if seen[m.Pattern()] || !wordBounded(text, m.Start(), m.End()) {
			continue
		}
		seen[m.Pattern()] = true
		out = append(out, f.terms[m.Pattern()])
	}
	return out
}

// Apply returns the keywords with no negative term, in their original
// order, and how many were dropped.
func (f *Filter) Apply(keywords []string) ([]string, int) {
	if f == nil {
		return keywords, 0
	}
	kept := make([]string, 0, len(keywords))
	for _, k := range keywords {
		if len(f.Match(k)) == 0 {
			kept = append(kept, k)
		}
	}
	return kept, len(keywords) - len(kept)
}

// wordBounded reports whether text[start:end] is not glued to a letter or
// digit on either side. Match-type brackets, quotes and commas count as
// boundaries.
func wordBounded(text []byte, start, end int) bool {
	if start > 0 {
		r, _ := utf8.DecodeLastRune(text[:start])
		if isWordRune(r) {
			return false
		}
	}
	if end < len(text) {
		r, _ := utf8.DecodeRune(text[end:])
		if isWordRune(r) {
			return false
		}
	}
	return true
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
