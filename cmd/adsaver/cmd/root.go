package cmd

import (
	"fmt"
	"os"

	"github.com/corey/adsaver/internal/app"
	"github.com/corey/adsaver/internal/config"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	verbose     bool
	colorFlag   string
	noColorFlag bool

	// Set by PersistentPreRunE for every command.
	paths    *app.Paths
	settings *config.Config
	logger   *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:           "adsaver",
	Short:         "adsaver: ad keyword combination tool",
	Long:          "Builds search-ad keyword lists from up to three columns of terms: pairs, triples, match types, saved lists.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		paths = app.NewPaths(projectRoot())
		s, err := config.Load(paths.Config)
		if err != nil {
			return fmt.Errorf("config: %w", err)
		}
		settings = s
		logger, err = app.NewLogger(s.Log.Level, verbose, "")
		if err != nil {
			return err
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

// projectRoot returns the project root (cwd by default).
func projectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	return dir
}

// Execute runs the root command.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%serror:%s %v\n", colorYellow, colorReset, err)
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Debug logging")
	rootCmd.PersistentFlags().StringVar(&colorFlag, "color", "auto", "Colorize output: auto, always, never")
	rootCmd.PersistentFlags().BoolVar(&noColorFlag, "no-color", false, "Disable color output")

	rootCmd.AddCommand(combineCmd)
	rootCmd.AddCommand(sortCmd)
	rootCmd.AddCommand(listsCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(daemonCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(configCmd)
}
