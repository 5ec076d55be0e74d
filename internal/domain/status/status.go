// Package status generates status data for adsaver.
//
// The daemon writes a JSON status file after every generation. Editor
// integrations and shell prompts read it to show what was last produced
// without talking to the daemon.
package status

import (
	"encoding/json"
	"os"
	"time"

	"github.com/corey/adsaver/internal/domain/combo"
)

// StatusFile is the filename within the .adsaver directory where status JSON is written.
const StatusFile = "status.json"

// StatusData is the JSON payload the daemon writes after each generation.
type StatusData struct {
	Mode        string   `json:"mode"`
	MatchTypes  []string `json:"match_types"`
	Columns     [3]int   `json:"columns"` // parsed term count per column
	Raw         int      `json:"raw"`     // combinations before dedup
	Unique      int      `json:"unique"`  // combinations after dedup (== raw with duplicates allowed)
	Output      int      `json:"output"`  // formatted keywords
	Generations uint64   `json:"generations"`
	GeneratedAt string   `json:"generated_at"`
}

// Generation describes one completed generation.
type Generation struct {
	Columns combo.Columns
	Config  combo.Config
	Unique  int
	Output  int
	At      time.Time
}

// Generate produces a StatusData from a generation. n is the running
// generation count since the daemon started.
func Generate(g Generation, n uint64) *StatusData {
	var counts [3]int
	for i, col := range g.Columns {
		counts[i] = len(col)
	}
	return &StatusData{
		Mode:        g.Config.Mode.String(),
		MatchTypes:  g.Config.MatchTypes.Names(),
		Columns:     counts,
		Raw:         combo.EstimateRaw(g.Columns, g.Config),
		Unique:      g.Unique,
		Output:      g.Output,
		Generations: n,
		GeneratedAt: g.At.UTC().Format(time.RFC3339),
	}
}

// WriteJSON writes the status data as JSON to a file.
func WriteJSON(path string, data *StatusData) error {
	b, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0644)
}

// ReadJSON reads a status file written by WriteJSON.
func ReadJSON(path string) (*StatusData, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var sd StatusData
	if err := json.Unmarshal(b, &sd); err != nil {
		return nil, err
	}
	return &sd, nil
}
