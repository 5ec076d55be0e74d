package combo

import (
	"errors"
	"fmt"
	"sort"
	"unicode/utf8"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// ErrUnknownSortKey is returned when a sort key name is not recognized.
var ErrUnknownSortKey = errors.New("unknown sort key")

// SortKey selects a presentation order for generated keywords.
type SortKey int

const (
	SortInput SortKey = iota
	SortAlphaAsc
	SortAlphaDesc
	SortLengthAsc
	SortLengthDesc
)

var sortKeyNames = [...]string{
	SortInput:      "input",
	SortAlphaAsc:   "alpha-asc",
	SortAlphaDesc:  "alpha-desc",
	SortLengthAsc:  "length-asc",
	SortLengthDesc: "length-desc",
}

// SortKeys returns every sort key in declaration order.
func SortKeys() []SortKey {
	return []SortKey{SortInput, SortAlphaAsc, SortAlphaDesc, SortLengthAsc, SortLengthDesc}
}

// String returns the key's identifier, e.g. "length-desc".
func (k SortKey) String() string {
	if k < 0 || int(k) >= len(sortKeyNames) {
		return fmt.Sprintf("sortkey(%d)", int(k))
	}
	return sortKeyNames[k]
}

// ParseSortKey resolves a sort key identifier. The empty string means input order.
func ParseSortKey(s string) (SortKey, error) {
	if s == "" {
		return SortInput, nil
	}
	for i, name := range sortKeyNames {
		if name == s {
			return SortKey(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownSortKey, s)
}

// MarshalText implements encoding.TextMarshaler.
func (k SortKey) MarshalText() ([]byte, error) {
	if k < 0 || int(k) >= len(sortKeyNames) {
		return nil, fmt.Errorf("%w: %d", ErrUnknownSortKey, int(k))
	}
	return []byte(sortKeyNames[k]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *SortKey) UnmarshalText(text []byte) error {
	parsed, err := ParseSortKey(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// Sort returns a reordered copy of results; the input is never modified.
// Sorting is stable, so applying the same key twice gives the same order
// as applying it once. Alphabetical keys use English collation, the way a
// browser's locale compare orders words. Length counts runes.
func Sort(results []string, key SortKey) []string {
	out := make([]string, len(results))
	copy(out, results)

	switch key {
	case SortAlphaAsc, SortAlphaDesc:
		col := collate.New(language.English)
		desc := key == SortAlphaDesc
		sort.SliceStable(out, func(i, j int) bool {
			c := col.CompareString(out[i], out[j])
			if desc {
				return c > 0
			}
			return c < 0
		})
	case SortLengthAsc:
		sort.SliceStable(out, func(i, j int) bool {
			return utf8.RuneCountInString(out[i]) < utf8.RuneCountInString(out[j])
		})
	case SortLengthDesc:
		sort.SliceStable(out, func(i, j int) bool {
			return utf8.RuneCountInString(out[i]) > utf8.RuneCountInString(out[j])
		})
	}
	return out
}
