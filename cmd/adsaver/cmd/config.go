package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/corey/adsaver/internal/adapters/socket"
	"github.com/corey/adsaver/internal/config"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show configuration",
	Long:  "Shows project paths, daemon status, and the resolved configuration (file + ADSAVER_* environment). No daemon required.",
	RunE:  runConfig,
}

var configForce bool

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default configuration to .adsaver/config.yaml",
	RunE:  runConfigInit,
}

func init() {
	configInitCmd.Flags().BoolVar(&configForce, "force", false, "Overwrite an existing config file")
	configCmd.AddCommand(configInitCmd)
}

func runConfig(cmd *cobra.Command, args []string) error {
	root := projectRoot()
	sockPath := socket.SocketPath(root)

	client := socket.NewClient(sockPath)
	daemonRunning := client.Ping()
	daemonStatus := fmt.Sprintf("%s✗ not running%s", colorYellow, colorReset)
	if daemonRunning {
		daemonStatus = fmt.Sprintf("%s✓ running%s", colorGreen, colorReset)
	}

	configState := "defaults (no file)"
	if _, err := os.Stat(paths.Config); err == nil {
		configState = paths.Config
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s⚡ adsaver config%s\n", colorBold, colorReset)
	fmt.Fprintf(out, "  Root:       %s\n", root)
	fmt.Fprintf(out, "  Config:     %s\n", configState)
	fmt.Fprintf(out, "  DB:         %s\n", paths.DB)
	fmt.Fprintf(out, "  Socket:     %s\n", sockPath)
	fmt.Fprintf(out, "  Daemon:     %s\n", daemonStatus)
	if daemonRunning {
		if port := readPort(paths.PortFile); port != "" {
			fmt.Fprintf(out, "  Web UI:     http://localhost:%s\n", port)
		}
	}

	data, err := yaml.Marshal(settings)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "\n%s", indent(string(data), "  "))
	return nil
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	if _, err := os.Stat(paths.Config); err == nil && !configForce {
		return fmt.Errorf("%s exists (use --force to overwrite)", paths.Config)
	}
	if err := config.Default().Save(paths.Config); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "⚡ wrote %s\n", paths.Config)
	return nil
}

// readPort returns the daemon's HTTP port from its port file, or "".
func readPort(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

func indent(s, prefix string) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	for i, l := range lines {
		lines[i] = prefix + l
	}
	return strings.Join(lines, "\n") + "\n"
}
