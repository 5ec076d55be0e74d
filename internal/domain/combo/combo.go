// Package combo expands up to three columns of keyword terms into every
// word-order and spacing variant a search campaign needs, then wraps each
// variant in the selected match-type syntax (broad, "phrase", [exact]).
//
// Everything here is a pure function of its inputs. There is no I/O and no
// shared state, so callers may generate concurrently without coordination.
package combo

import "strings"

// Columns holds the three parsed term lists. Index 0 is column 1.
type Columns [3][]string

// ParseColumn splits raw multi-line input into terms. Each line is trimmed
// (which also drops the \r of CRLF input) and blank lines are discarded.
// Case and internal spacing are preserved.
func ParseColumn(raw string) []string {
	lines := strings.Split(raw, "\n")
	terms := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		terms = append(terms, line)
	}
	return terms
}

// ParseColumns parses the raw text of all three columns.
func ParseColumns(col1, col2, col3 string) Columns {
	return Columns{ParseColumn(col1), ParseColumn(col2), ParseColumn(col3)}
}

// Export joins results into the newline-separated payload handed to a
// clipboard or file sink.
func Export(results []string) string {
	return strings.Join(results, "\n")
}
