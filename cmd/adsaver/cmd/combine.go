package cmd

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/corey/adsaver/internal/adapters/ahocorasick"
	"github.com/corey/adsaver/internal/adapters/clipboard"
	"github.com/corey/adsaver/internal/app"
	"github.com/corey/adsaver/internal/domain/combo"
	"github.com/corey/adsaver/internal/ports"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	combineFlags engineFlags
	combineOut   string
	combineCopy  bool
	combineQuiet bool
)

var combineCmd = &cobra.Command{
	Use:   "combine",
	Short: "Generate keyword combinations from column files",
	Long: `Reads up to three columns of terms (one per line) and prints every
keyword combination the chosen mode produces, one per line.

  adsaver combine --col1 brands.txt --col2 products.txt --match broad,exact`,
	Args: cobra.NoArgs,
	RunE: runCombine,
}

func init() {
	combineFlags.register(combineCmd)
	combineCmd.Flags().StringVarP(&combineOut, "out", "o", "", "Write keywords to a file instead of stdout")
	combineCmd.Flags().BoolVar(&combineCopy, "copy", false, "Copy keywords to the system clipboard")
	combineCmd.Flags().BoolVarP(&combineQuiet, "quiet", "q", false, "No summary line")
}

func runCombine(cmd *cobra.Command, args []string) error {
	cfg, key, err := combineFlags.config(cmd, settings)
	if err != nil {
		return err
	}
	files := combineFlags.cols
	if files == [3]string{} && isStdinPipe() {
		files[0] = "-"
	}
	cols, err := readColumns(files, cmd.InOrStdin())
	if err != nil {
		return err
	}
	neg, err := combineFlags.filter()
	if err != nil {
		return err
	}

	color := resolveColor(colorFlag, noColorFlag)
	stderr := cmd.ErrOrStderr()
	for _, col := range missingColumns(files, cfg.Mode) {
		fmt.Fprint(stderr, notice(color, fmt.Sprintf("column %d not given; %s treats it as empty", col, cfg.Mode)))
	}

	gen := generate(cols, cfg, key, neg)
	if gen.warning != "" {
		fmt.Fprint(stderr, notice(color, gen.warning))
	}

	if err := writeKeywords(cmd.OutOrStdout(), combineOut, gen.keywords); err != nil {
		return err
	}
	if combineCopy {
		copyKeywords(stderr, clipboard.New(), gen.keywords, color)
	}
	if !combineQuiet {
		fmt.Fprint(stderr, formatSummary(gen, cfg, key, color))
	}
	return nil
}

// generation is one local engine run, ready for display.
type generation struct {
	keywords []string
	unique   int
	raw      int
	excluded int
	elapsed  time.Duration
	warning  string
}

func generate(raw [3]string, cfg combo.Config, key combo.SortKey, neg *ahocorasick.Filter) generation {
	cols := combo.ParseColumns(raw[0], raw[1], raw[2])
	est := combo.EstimateRaw(cols, cfg)

	var warning string
	if limit := settings.Limits.WarnCombinations; limit > 0 && est > limit {
		logger.Warn("large generation", zap.Int("raw", est), zap.Int("warn_combinations", limit))
		warning = app.LargeInputWarning(est, limit)
	}

	start := time.Now()
	combos := combo.Combine(cols, cfg)
	keywords, excluded := neg.Apply(combo.Format(combos, cfg.Options.UseComma, cfg.MatchTypes))
	keywords = combo.Sort(keywords, key)
	elapsed := time.Since(start)

	logger.Debug("generated",
		zap.String("mode", cfg.Mode.String()),
		zap.Int("raw", est),
		zap.Int("unique", len(combos)),
		zap.Int("keywords", len(keywords)),
		zap.Int("excluded", excluded),
		zap.Duration("elapsed", elapsed))

	return generation{
		keywords: keywords,
		unique:   len(combos),
		raw:      est,
		excluded: excluded,
		elapsed:  elapsed,
		warning:  warning,
	}
}

// writeKeywords prints keywords one per line, or writes them to path.
func writeKeywords(w io.Writer, path string, keywords []string) error {
	payload := combo.Export(keywords)
	if payload != "" {
		payload += "\n"
	}
	if path == "" {
		_, err := io.WriteString(w, payload)
		return err
	}
	if err := os.WriteFile(path, []byte(payload), 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// copyKeywords puts keywords on the clipboard. Failure is reported, never fatal.
func copyKeywords(w io.Writer, cb ports.Clipboard, keywords []string, color bool) {
	if err := cb.WriteText(combo.Export(keywords)); err != nil {
		fmt.Fprint(w, notice(color, fmt.Sprintf("clipboard unavailable: %v", err)))
		return
	}
	fmt.Fprintf(w, "⚡ copied %s to clipboard\n", countPrinter.Sprintf("%d keywords", len(keywords)))
}
