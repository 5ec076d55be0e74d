package cmd

import (
	"fmt"

	"github.com/corey/adsaver/internal/adapters/socket"
	"github.com/spf13/cobra"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check daemon status",
	RunE:  runHealth,
}

func runHealth(cmd *cobra.Command, args []string) error {
	client := socket.NewClient(socket.SocketPath(projectRoot()))

	if !client.Ping() {
		fmt.Fprintln(cmd.OutOrStdout(), "⚡ adsaver daemon is not running")
		return nil
	}

	health, err := client.Health()
	if err != nil {
		return err
	}

	fmt.Fprint(cmd.OutOrStdout(), formatHealth(health, readPort(paths.PortFile)))
	return nil
}
