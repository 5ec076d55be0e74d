package combo

import "strings"

// tripleOrders lists the six permutations of a triple. The first entry is
// the canonical left-to-right order, the only one kept under NoShuffle.
var tripleOrders = [6][3]int{
	{0, 1, 2},
	{0, 2, 1},
	{1, 0, 2},
	{1, 2, 0},
	{2, 0, 1},
	{2, 1, 0},
}

// emitter accumulates raw combinations in emission order.
type emitter struct {
	opts Options
	out  []string
}

func (e *emitter) single(a string) {
	e.out = append(e.out, a)
}

func (e *emitter) pair(a, b string) {
	if e.opts.spaced() {
		e.out = append(e.out, a+" "+b)
		if !e.opts.NoShuffle {
			e.out = append(e.out, b+" "+a)
		}
	}
	if e.opts.joined() {
		e.out = append(e.out, a+b)
		if !e.opts.NoShuffle {
			e.out = append(e.out, b+a)
		}
	}
}

func (e *emitter) triple(t [3]string) {
	orders := tripleOrders[:]
	if e.opts.NoShuffle {
		orders = orders[:1]
	}
	if e.opts.spaced() {
		for _, o := range orders {
			e.out = append(e.out, t[o[0]]+" "+t[o[1]]+" "+t[o[2]])
		}
	}
	if e.opts.joined() {
		for _, o := range orders {
			e.out = append(e.out, t[o[0]]+t[o[1]]+t[o[2]])
		}
	}
}

// Generate expands cols under cfg into the final keyword list: every
// selected match type's block in the order broad, phrase, exact. An invalid
// mode yields nil; callers reject it with Config.Validate first.
func Generate(cols Columns, cfg Config) []string {
	if !cfg.Mode.Valid() {
		return nil
	}
	return Format(Combine(cols, cfg), cfg.Options.UseComma, cfg.MatchTypes)
}

// GenerateText parses three raw column texts and generates.
func GenerateText(col1, col2, col3 string, cfg Config) []string {
	return Generate(ParseColumns(col1, col2, col3), cfg)
}

// Combine returns the raw combinations for cols under cfg, before any
// match-type syntax. Whitespace runs are collapsed and ends trimmed, then
// duplicates are dropped unless AllowDuplicates is set. Dedup keeps each
// string at its first occurrence.
func Combine(cols Columns, cfg Config) []string {
	if !cfg.Mode.Valid() {
		return nil
	}
	p := plans[cfg.Mode]
	e := emitter{opts: cfg.Options, out: make([]string, 0, EstimateRaw(cols, cfg))}

	for _, c := range p.singles {
		for _, a := range cols[c] {
			e.single(a)
		}
	}
	for _, pr := range p.pairs {
		for _, a := range cols[pr[0]] {
			for _, b := range cols[pr[1]] {
				e.pair(a, b)
			}
		}
	}
	for _, tr := range p.triples {
		for _, a := range cols[tr[0]] {
			for _, b := range cols[tr[1]] {
				for _, c := range cols[tr[2]] {
					e.triple([3]string{a, b, c})
				}
			}
		}
	}

	raw := e.out
	for i, s := range raw {
		raw[i] = normalizeSpace(s)
	}
	if !cfg.Options.AllowDuplicates {
		raw = dedup(raw)
	}
	return raw
}

// EstimateRaw returns how many raw combinations Combine emits before
// dedup, without generating them.
func EstimateRaw(cols Columns, cfg Config) int {
	if !cfg.Mode.Valid() {
		return 0
	}
	p := plans[cfg.Mode]
	variants := 0
	if cfg.Options.spaced() {
		variants++
	}
	if cfg.Options.joined() {
		variants++
	}
	pairOrders, tripleN := 2, len(tripleOrders)
	if cfg.Options.NoShuffle {
		pairOrders, tripleN = 1, 1
	}

	n := 0
	for _, c := range p.singles {
		n += len(cols[c])
	}
	for _, pr := range p.pairs {
		n += len(cols[pr[0]]) * len(cols[pr[1]]) * variants * pairOrders
	}
	for _, tr := range p.triples {
		n += len(cols[tr[0]]) * len(cols[tr[1]]) * len(cols[tr[2]]) * variants * tripleN
	}
	return n
}

// Format wraps each combination in every selected match type. Output is
// grouped by type (all broad, then all phrase, then all exact), with a
// trailing comma after the wrapper when comma is set.
func Format(combos []string, comma bool, types MatchTypes) []string {
	selected := types.Selected()
	out := make([]string, 0, len(combos)*len(selected))
	for _, t := range selected {
		for _, c := range combos {
			s := t.wrap(c)
			if comma {
				s += ","
			}
			out = append(out, s)
		}
	}
	return out
}

// normalizeSpace collapses internal whitespace runs to one space and trims
// both ends.
func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// dedup drops repeated strings, keeping first occurrences in order.
func dedup(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := in[:0]
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
