package cmd

import (
	"fmt"
	"os"

	"github.com/corey/adsaver/internal/adapters/clipboard"
	"github.com/corey/adsaver/internal/adapters/socket"
	"github.com/corey/adsaver/internal/app"
	"github.com/corey/adsaver/internal/domain/combo"
	"github.com/corey/adsaver/internal/ports"
	"github.com/spf13/cobra"
)

var listsCmd = &cobra.Command{
	Use:   "lists [campaign [ad-group]]",
	Short: "Browse saved keyword lists",
	Long:  "Without arguments lists campaigns; with a campaign (and optional ad group) lists its saved keyword lists.",
	Args:  cobra.MaximumNArgs(2),
	RunE:  runLists,
}

var (
	saveFlags engineFlags
	saveName  string
	saveFrom  string
)

var listsSaveCmd = &cobra.Command{
	Use:   "save <campaign> <ad-group>",
	Short: "Generate and save a keyword list",
	Long: `Saves a keyword list under campaign/ad-group. Keywords come from --from
(one per line) or are generated from the column flags.`,
	Args: cobra.ExactArgs(2),
	RunE: runListsSave,
}

var (
	showOut  string
	showCopy bool
)

var listsShowCmd = &cobra.Command{
	Use:   "show <campaign> <ad-group> <id>",
	Short: "Print a saved keyword list",
	Args:  cobra.ExactArgs(3),
	RunE:  runListsShow,
}

var listsDeleteCmd = &cobra.Command{
	Use:   "delete <campaign> <ad-group> <id>",
	Short: "Delete a saved keyword list",
	Args:  cobra.ExactArgs(3),
	RunE:  runListsDelete,
}

func init() {
	saveFlags.register(listsSaveCmd)
	listsSaveCmd.Flags().StringVarP(&saveName, "name", "n", "", "List name (default: timestamp)")
	listsSaveCmd.Flags().StringVar(&saveFrom, "from", "", "Save keywords from this file instead of generating")

	listsShowCmd.Flags().StringVarP(&showOut, "out", "o", "", "Write keywords to a file")
	listsShowCmd.Flags().BoolVar(&showCopy, "copy", false, "Copy keywords to the system clipboard")

	listsCmd.AddCommand(listsSaveCmd)
	listsCmd.AddCommand(listsShowCmd)
	listsCmd.AddCommand(listsDeleteCmd)
}

// listService is the part of the daemon API the lists commands use.
// Both the socket client and a local App satisfy it.
type listService interface {
	SaveList(p socket.SaveListParams) (*ports.ListSummary, error)
	GetList(ref socket.ListRef) (*ports.KeywordList, error)
	Lists(p socket.ListsParams) (*socket.ListsResult, error)
	DeleteList(ref socket.ListRef) error
}

// openLists talks to the running daemon, or opens the store directly when
// no daemon is up. The daemon holds the database lock while it runs.
func openLists() (listService, func(), error) {
	root := projectRoot()
	client := socket.NewClient(socket.SocketPath(root))
	if client.Ping() {
		return client, func() {}, nil
	}
	a, err := app.New(app.Config{ProjectRoot: root, Settings: settings, Logger: logger})
	if err != nil {
		if isDBLockError(err) {
			return nil, nil, fmt.Errorf("%s", diagnoseDBLock(root))
		}
		return nil, nil, err
	}
	return a, func() { a.Close() }, nil
}

func runLists(cmd *cobra.Command, args []string) error {
	svc, done, err := openLists()
	if err != nil {
		return err
	}
	defer done()

	var p socket.ListsParams
	if len(args) > 0 {
		p.Campaign = args[0]
	}
	if len(args) > 1 {
		p.AdGroup = args[1]
	}
	res, err := svc.Lists(p)
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), formatLists(p, res))
	return nil
}

func runListsSave(cmd *cobra.Command, args []string) error {
	cfg, key, err := saveFlags.config(cmd, settings)
	if err != nil {
		return err
	}
	p := socket.SaveListParams{
		Name:     saveName,
		Campaign: args[0],
		AdGroup:  args[1],
		Config:   &cfg,
		Sort:     key.String(),
	}
	if saveFrom != "" {
		data, err := os.ReadFile(saveFrom)
		if err != nil {
			return fmt.Errorf("read keywords: %w", err)
		}
		p.Keywords = combo.Sort(combo.ParseColumn(string(data)), key)
		if len(p.Keywords) == 0 {
			return fmt.Errorf("%s has no keywords", saveFrom)
		}
	} else {
		cols, err := readColumns(saveFlags.cols, cmd.InOrStdin())
		if err != nil {
			return err
		}
		p.Columns = cols
		neg, err := saveFlags.filter()
		if err != nil {
			return err
		}
		p.Exclude = neg.Terms()
	}

	svc, done, err := openLists()
	if err != nil {
		return err
	}
	defer done()

	sum, err := svc.SaveList(p)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "⚡ saved %s%s%s (%s) in %s/%s\n  id: %s\n",
		colorBold, sum.Name, colorReset,
		countPrinter.Sprintf("%d keywords", sum.Count),
		sum.Campaign, sum.AdGroup, sum.ID)
	return nil
}

func runListsShow(cmd *cobra.Command, args []string) error {
	svc, done, err := openLists()
	if err != nil {
		return err
	}
	defer done()

	list, err := svc.GetList(socket.ListRef{Campaign: args[0], AdGroup: args[1], ID: args[2]})
	if err != nil {
		return err
	}
	if err := writeKeywords(cmd.OutOrStdout(), showOut, list.Keywords); err != nil {
		return err
	}
	if showCopy {
		copyKeywords(cmd.ErrOrStderr(), clipboard.New(), list.Keywords, resolveColor(colorFlag, noColorFlag))
	}
	return nil
}

func runListsDelete(cmd *cobra.Command, args []string) error {
	svc, done, err := openLists()
	if err != nil {
		return err
	}
	defer done()

	if err := svc.DeleteList(socket.ListRef{Campaign: args[0], AdGroup: args[1], ID: args[2]}); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "⚡ deleted")
	return nil
}
