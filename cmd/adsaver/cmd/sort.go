package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/corey/adsaver/internal/adapters/socket"
	"github.com/corey/adsaver/internal/domain/combo"
	"github.com/spf13/cobra"
)

var (
	sortBy   string
	sortLast bool
	sortOut  string
)

var sortCmd = &cobra.Command{
	Use:   "sort [file]",
	Short: "Re-order a keyword list without regenerating it",
	Long: `Sorts keywords read from a file (or stdin) and prints them.
With --last, re-sorts the daemon's most recent generation instead.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSort,
}

func init() {
	sortCmd.Flags().StringVar(&sortBy, "by", "alpha-asc", "Order: input, alpha-asc, alpha-desc, length-asc, length-desc")
	sortCmd.Flags().BoolVar(&sortLast, "last", false, "Re-sort the daemon's last result")
	sortCmd.Flags().StringVarP(&sortOut, "out", "o", "", "Write keywords to a file instead of stdout")
}

func runSort(cmd *cobra.Command, args []string) error {
	key, err := combo.ParseSortKey(sortBy)
	if err != nil {
		return err
	}

	if sortLast {
		client := socket.NewClient(socket.SocketPath(projectRoot()))
		if !client.Ping() {
			return fmt.Errorf("daemon is not running; --last needs it (adsaver daemon start)")
		}
		res, err := client.Sort(socket.SortParams{Sort: key.String()})
		if err != nil {
			return err
		}
		return writeKeywords(cmd.OutOrStdout(), sortOut, res.Keywords)
	}

	var data []byte
	if len(args) == 1 && args[0] != "-" {
		data, err = os.ReadFile(args[0])
	} else {
		data, err = io.ReadAll(cmd.InOrStdin())
	}
	if err != nil {
		return fmt.Errorf("read keywords: %w", err)
	}
	return writeKeywords(cmd.OutOrStdout(), sortOut, combo.Sort(combo.ParseColumn(string(data)), key))
}
