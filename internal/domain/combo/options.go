package combo

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownMatchType is returned when a match type name is not recognized.
var ErrUnknownMatchType = errors.New("unknown match type")

// Options are the formatting flags. The zero value is the default.
type Options struct {
	NoShuffle       bool `json:"no_shuffle" yaml:"no_shuffle"`
	UseComma        bool `json:"use_comma" yaml:"use_comma"`
	AllowDuplicates bool `json:"allow_duplicates" yaml:"allow_duplicates"`
	NoSpaceBetween  bool `json:"no_space_between" yaml:"no_space_between"`
	OnlyNoSpace     bool `json:"only_no_space" yaml:"only_no_space"`
}

// spaced reports whether the space-joined variant is emitted.
func (o Options) spaced() bool {
	return !o.NoSpaceBetween
}

// joined reports whether the concatenated variant is emitted. OnlyNoSpace
// without NoSpaceBetween makes both spaced and joined true, so every
// multi-word combination yields both variants.
func (o Options) joined() bool {
	return o.OnlyNoSpace || o.NoSpaceBetween
}

// MatchType is a search-advertising keyword match syntax.
type MatchType int

const (
	Broad MatchType = iota
	Phrase
	Exact
)

var matchTypeNames = [...]string{Broad: "broad", Phrase: "phrase", Exact: "exact"}

// String returns "broad", "phrase" or "exact".
func (t MatchType) String() string {
	if t < 0 || int(t) >= len(matchTypeNames) {
		return fmt.Sprintf("matchtype(%d)", int(t))
	}
	return matchTypeNames[t]
}

// ParseMatchType resolves a match type name (case-insensitive).
func ParseMatchType(s string) (MatchType, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for i, n := range matchTypeNames {
		if n == name {
			return MatchType(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownMatchType, s)
}

// wrap applies the match type's syntax to a keyword.
func (t MatchType) wrap(s string) string {
	switch t {
	case Phrase:
		return `"` + s + `"`
	case Exact:
		return "[" + s + "]"
	default:
		return s
	}
}

// MatchTypes is the set of match types to emit.
type MatchTypes struct {
	Broad  bool `json:"broad" yaml:"broad"`
	Phrase bool `json:"phrase" yaml:"phrase"`
	Exact  bool `json:"exact" yaml:"exact"`
}

// DefaultMatchTypes selects broad only.
func DefaultMatchTypes() MatchTypes {
	return MatchTypes{Broad: true}
}

// ParseMatchTypes builds a selection from names such as ["broad", "exact"].
// An empty list selects nothing.
func ParseMatchTypes(names []string) (MatchTypes, error) {
	var m MatchTypes
	for _, n := range names {
		t, err := ParseMatchType(n)
		if err != nil {
			return MatchTypes{}, err
		}
		switch t {
		case Broad:
			m.Broad = true
		case Phrase:
			m.Phrase = true
		case Exact:
			m.Exact = true
		}
	}
	return m, nil
}

// Selected returns the chosen types in output order: broad, phrase, exact.
func (m MatchTypes) Selected() []MatchType {
	var out []MatchType
	if m.Broad {
		out = append(out, Broad)
	}
	if m.Phrase {
		out = append(out, Phrase)
	}
	if m.Exact {
		out = append(out, Exact)
	}
	return out
}

// Names returns the selected type names in output order.
func (m MatchTypes) Names() []string {
	sel := m.Selected()
	names := make([]string, len(sel))
	for i, t := range sel {
		names[i] = t.String()
	}
	return names
}

// Count returns how many types are selected.
func (m MatchTypes) Count() int {
	return len(m.Selected())
}

// Config is the complete, immutable input to generation apart from the
// columns themselves.
type Config struct {
	Mode       Mode       `json:"mode" yaml:"mode"`
	Options    Options    `json:"options" yaml:"options"`
	MatchTypes MatchTypes `json:"match_types" yaml:"match_types"`
}

// DefaultConfig returns pairs-from-1-2 with default flags and broad match.
func DefaultConfig() Config {
	return Config{Mode: ModePairs, MatchTypes: DefaultMatchTypes()}
}

// Validate rejects values that cannot come from a well-formed caller.
func (c Config) Validate() error {
	if !c.Mode.Valid() {
		return fmt.Errorf("%w: %d", ErrUnknownMode, int(c.Mode))
	}
	return nil
}
