package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/corey/adsaver/internal/adapters/socket"
	"github.com/corey/adsaver/internal/app"
	"github.com/spf13/cobra"
)

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Manage the adsaver daemon",
}

var daemonStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the daemon (socket + web UI) in the foreground",
	RunE:  runDaemonStart,
}

var daemonStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the daemon",
	RunE:  runDaemonStop,
}

// serveCmd is daemon start under the name people look for when they want the UI.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the daemon and serve the web UI",
	RunE:  runDaemonStart,
}

var httpPortFlag int

func init() {
	daemonStartCmd.Flags().IntVar(&httpPortFlag, "port", 0, "HTTP port (default: derived from project root)")
	serveCmd.Flags().IntVar(&httpPortFlag, "port", 0, "HTTP port (default: derived from project root)")
	daemonCmd.AddCommand(daemonStartCmd)
	daemonCmd.AddCommand(daemonStopCmd)
}

func runDaemonStart(cmd *cobra.Command, args []string) error {
	root := projectRoot()
	sockPath := socket.SocketPath(root)

	client := socket.NewClient(sockPath)
	if client.Ping() {
		fmt.Println("⚡ daemon already running")
		return nil
	}

	if cmd.Flags().Changed("port") {
		settings.Server.HTTPPort = httpPortFlag
		if err := settings.Validate(); err != nil {
			return err
		}
	}

	if err := paths.EnsureDirs(); err != nil {
		return err
	}
	// The daemon logs to .adsaver/log/daemon.log as well as stderr.
	dlog, err := app.NewLogger(settings.Log.Level, verbose, paths.DaemonLog)
	if err != nil {
		return err
	}
	defer dlog.Sync()

	a, err := app.New(app.Config{ProjectRoot: root, Settings: settings, Logger: dlog})
	if err != nil {
		if isDBLockError(err) {
			return fmt.Errorf("%s", diagnoseDBLock(root))
		}
		return fmt.Errorf("init: %w", err)
	}
	if err := os.WriteFile(paths.PIDFile, []byte(strconv.Itoa(os.Getpid())), 0644); err != nil {
		dlog.Sugar().Warnf("write pid file: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fmt.Printf("⚡ adsaver daemon starting at %s\n", sockPath)
	if err := a.Run(ctx); err != nil {
		return err
	}
	fmt.Println("⚡ daemon stopped")
	return nil
}

func runDaemonStop(cmd *cobra.Command, args []string) error {
	client := socket.NewClient(socket.SocketPath(projectRoot()))

	if !client.Ping() {
		fmt.Println("⚡ daemon is not running")
		return nil
	}

	if err := client.Shutdown(); err != nil {
		return err
	}

	fmt.Println("⚡ daemon stopped")
	return nil
}
