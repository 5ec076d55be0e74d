package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"

	"github.com/corey/adsaver/internal/adapters/ahocorasick"
	fsw "github.com/corey/adsaver/internal/adapters/fsnotify"
	"github.com/corey/adsaver/internal/domain/combo"
	"github.com/corey/adsaver/internal/ports"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	watchFlags engineFlags
	watchOut   string
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Regenerate whenever a column file changes",
	Long: `Generates once, then again every time one of the column files is saved.
With --out the file is rewritten; otherwise keywords are reprinted.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	watchFlags.register(watchCmd)
	watchCmd.Flags().StringVarP(&watchOut, "out", "o", "", "Rewrite this file on every change")
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, key, err := watchFlags.config(cmd, settings)
	if err != nil {
		return err
	}
	var files []string
	for _, f := range watchFlags.cols {
		if f == "-" {
			return fmt.Errorf("watch needs files, not stdin")
		}
		if f != "" {
			files = append(files, f)
		}
	}
	if len(files) == 0 {
		return fmt.Errorf("give at least one of --col1, --col2, --col3")
	}

	neg, err := watchFlags.filter()
	if err != nil {
		return err
	}

	w, err := fsw.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	w.OnError(func(err error) { logger.Warn("watcher", zap.Error(err)) })
	return watchLoop(cmd, w, files, cfg, key, neg)
}

// watchLoop regenerates on start and on every change until interrupted.
func watchLoop(cmd *cobra.Command, w ports.Watcher, files []string, cfg combo.Config, key combo.SortKey, neg *ahocorasick.Filter) error {
	color := resolveColor(colorFlag, noColorFlag)
	stderr := cmd.ErrOrStderr()

	var mu sync.Mutex
	regen := func(reason string) {
		mu.Lock()
		defer mu.Unlock()
		cols, err := readColumns(watchFlags.cols, nil)
		if err != nil {
			fmt.Fprint(stderr, notice(color, err.Error()))
			return
		}
		gen := generate(cols, cfg, key, neg)
		if gen.warning != "" {
			fmt.Fprint(stderr, notice(color, gen.warning))
		}
		if err := writeKeywords(cmd.OutOrStdout(), watchOut, gen.keywords); err != nil {
			fmt.Fprint(stderr, notice(color, err.Error()))
			return
		}
		logger.Debug("regenerated", zap.String("reason", reason), zap.Int("keywords", len(gen.keywords)))
		fmt.Fprint(stderr, formatSummary(gen, cfg, key, color))
	}

	regen("start")
	if err := w.Watch(files, func(path string) { regen(filepath.Base(path)) }); err != nil {
		w.Stop()
		return err
	}
	defer w.Stop()

	fmt.Fprintf(stderr, "⚡ watching %d file(s), Ctrl-C to stop\n", len(files))
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()
	return nil
}
