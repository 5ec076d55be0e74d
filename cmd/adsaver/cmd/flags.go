package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/corey/adsaver/internal/adapters/ahocorasick"
	"github.com/corey/adsaver/internal/config"
	"github.com/corey/adsaver/internal/domain/combo"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// engineFlags are the generation flags shared by combine, watch and lists save.
// Unset flags fall back to the configured defaults.
type engineFlags struct {
	cols    [3]string // file paths, "-" = stdin
	mode    string
	match   []string
	sort    string
	exclude string // negative terms file

	noShuffle       bool
	useComma        bool
	allowDuplicates bool
	noSpaceBetween  bool
	onlyNoSpace     bool
}

func (f *engineFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVar(&f.cols[0], "col1", "", "Column 1 terms file, one term per line (- for stdin)")
	fl.StringVar(&f.cols[1], "col2", "", "Column 2 terms file (- for stdin)")
	fl.StringVar(&f.cols[2], "col3", "", "Column 3 terms file (- for stdin)")
	fl.StringVarP(&f.mode, "mode", "m", "", "Combination mode: "+strings.Join(modeNames(), ", "))
	fl.StringSliceVar(&f.match, "match", nil, "Match types: broad, phrase, exact (comma-separated)")
	fl.StringVar(&f.sort, "sort", "", "Output order: input, alpha-asc, alpha-desc, length-asc, length-desc")
	fl.StringVar(&f.exclude, "exclude", "", "Drop keywords containing any term in this file (one per line)")
	fl.BoolVar(&f.noShuffle, "no-shuffle", false, "Keep column order (a b only, not b a)")
	fl.BoolVar(&f.useComma, "comma", false, "Append a comma to every keyword")
	fl.BoolVar(&f.allowDuplicates, "allow-duplicates", false, "Keep repeated combinations")
	fl.BoolVar(&f.noSpaceBetween, "no-space", false, "Join terms without a space")
	fl.BoolVar(&f.onlyNoSpace, "also-no-space", false, "Emit the joined variant as well")
}

// config overlays explicitly set flags on the configured defaults.
func (f *engineFlags) config(cmd *cobra.Command, s *config.Config) (combo.Config, combo.SortKey, error) {
	cfg := s.EngineConfig()
	key := s.SortKey()
	fl := cmd.Flags()

	if fl.Changed("mode") {
		m, err := combo.ParseMode(f.mode)
		if err != nil {
			return cfg, key, err
		}
		cfg.Mode = m
	}
	if fl.Changed("match") {
		mt, err := combo.ParseMatchTypes(f.match)
		if err != nil {
			return cfg, key, err
		}
		cfg.MatchTypes = mt
	}
	if fl.Changed("sort") {
		k, err := combo.ParseSortKey(f.sort)
		if err != nil {
			return cfg, key, err
		}
		key = k
	}
	for name, dst := range map[string]*bool{
		"no-shuffle":       &cfg.Options.NoShuffle,
		"comma":            &cfg.Options.UseComma,
		"allow-duplicates": &cfg.Options.AllowDuplicates,
		"no-space":         &cfg.Options.NoSpaceBetween,
		"also-no-space":    &cfg.Options.OnlyNoSpace,
	} {
		if fl.Changed(name) {
			v, _ := fl.GetBool(name)
			*dst = v
		}
	}
	return cfg, key, nil
}

// filter compiles the --exclude file; nil when the flag is unset.
func (f *engineFlags) filter() (*ahocorasick.Filter, error) {
	if f.exclude == "" {
		return nil, nil
	}
	data, err := os.ReadFile(f.exclude)
	if err != nil {
		return nil, fmt.Errorf("exclude: %w", err)
	}
	return ahocorasick.NewFilter(combo.ParseColumn(string(data))), nil
}

func modeNames() []string {
	var out []string
	for _, m := range combo.Modes() {
		out = append(out, m.String())
	}
	return out
}

// readColumns reads the three column files concurrently. Empty paths give
// empty columns; at most one column may come from stdin.
func readColumns(files [3]string, stdin io.Reader) ([3]string, error) {
	var out [3]string
	stdinUsers := 0
	for _, f := range files {
		if f == "-" {
			stdinUsers++
		}
	}
	if stdinUsers > 1 {
		return out, fmt.Errorf("only one column can be read from stdin")
	}

	var g errgroup.Group
	for i, f := range files {
		if f == "" {
			continue
		}
		g.Go(func() error {
			var data []byte
			var err error
			if f == "-" {
				data, err = io.ReadAll(stdin)
			} else {
				data, err = os.ReadFile(f)
			}
			if err != nil {
				return fmt.Errorf("column %d: %w", i+1, err)
			}
			out[i] = string(data)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return [3]string{}, err
	}
	return out, nil
}

// missingColumns lists the 1-based columns the mode reads but the user
// did not give. Those columns are simply empty.
func missingColumns(files [3]string, mode combo.Mode) []int {
	var out []int
	for col := 1; col <= 3; col++ {
		if mode.UsesColumn(col) && files[col-1] == "" {
			out = append(out, col)
		}
	}
	return out
}
