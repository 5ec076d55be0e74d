package combo

import (
	"errors"
	"fmt"
)

// ErrUnknownMode is returned when a mode name is not recognized.
var ErrUnknownMode = errors.New("unknown combination mode")

// Mode selects which columns participate and at which arities.
type Mode int

const (
	// ModePairs emits singles from columns 1 and 2 plus pairs (1,2).
	ModePairs Mode = iota
	// ModePairsOnly emits pairs (1,2) only.
	ModePairsOnly
	// ModePairsTriples emits pairs (1,2), (1,3), (2,3) and triples (1,2,3).
	ModePairsTriples
	// ModeAll emits singles from every column, all pairs and triples (1,2,3).
	ModeAll
	// ModeTriplesOnly emits triples (1,2,3) only.
	ModeTriplesOnly
)

var modeNames = [...]string{
	ModePairs:        "pairs-from-1-2",
	ModePairsOnly:    "pairs-only-from-1-2",
	ModePairsTriples: "pairs-and-triples-from-1-2-3",
	ModeAll:          "singles-and-pairs-and-triples-from-1-2-3",
	ModeTriplesOnly:  "triples-only-from-1-2-3",
}

// plan lists the column tuples a mode enumerates, in emission order.
// Column indexes are zero-based.
type plan struct {
	singles []int
	pairs   [][2]int
	triples [][3]int
}

var (
	allPairs   = [][2]int{{0, 1}, {0, 2}, {1, 2}}
	allTriples = [][3]int{{0, 1, 2}}
)

var plans = [...]plan{
	ModePairs:        {singles: []int{0, 1}, pairs: [][2]int{{0, 1}}},
	ModePairsOnly:    {pairs: [][2]int{{0, 1}}},
	ModePairsTriples: {pairs: allPairs, triples: allTriples},
	ModeAll:          {singles: []int{0, 1, 2}, pairs: allPairs, triples: allTriples},
	ModeTriplesOnly:  {triples: allTriples},
}

// Modes returns every mode in declaration order.
func Modes() []Mode {
	return []Mode{ModePairs, ModePairsOnly, ModePairsTriples, ModeAll, ModeTriplesOnly}
}

// Valid reports whether m is one of the declared modes.
func (m Mode) Valid() bool {
	return m >= 0 && int(m) < len(modeNames)
}

// String returns the mode's identifier, e.g. "pairs-only-from-1-2".
func (m Mode) String() string {
	if !m.Valid() {
		return fmt.Sprintf("mode(%d)", int(m))
	}
	return modeNames[m]
}

// UsesColumn reports whether column col (1-based) contributes to m.
func (m Mode) UsesColumn(col int) bool {
	if !m.Valid() {
		return false
	}
	idx := col - 1
	p := plans[m]
	for _, c := range p.singles {
		if c == idx {
			return true
		}
	}
	for _, pr := range p.pairs {
		if pr[0] == idx || pr[1] == idx {
			return true
		}
	}
	for _, tr := range p.triples {
		if tr[0] == idx || tr[1] == idx || tr[2] == idx {
			return true
		}
	}
	return false
}

// ParseMode resolves a mode identifier.
func ParseMode(s string) (Mode, error) {
	for i, name := range modeNames {
		if name == s {
			return Mode(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownMode, s)
}

// MarshalText implements encoding.TextMarshaler.
func (m Mode) MarshalText() ([]byte, error) {
	if !m.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownMode, int(m))
	}
	return []byte(modeNames[m]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Mode) UnmarshalText(text []byte) error {
	parsed, err := ParseMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
