package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/corey/adsaver/internal/adapters/socket"
	bolterrors "go.etcd.io/bbolt/errors"
)

// isDBLockError returns true if the error chain contains a bbolt lock timeout.
// bbolt reports a timeout when it cannot acquire the file lock within the
// configured deadline.
func isDBLockError(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, bolterrors.ErrTimeout)
}

// diagnoseDBLock checks the daemon state and returns actionable guidance
// when a bbolt open fails due to lock contention. It distinguishes three
// scenarios: daemon running, stale socket, and unknown lock holder.
func diagnoseDBLock(root string) string {
	sockPath := socket.SocketPath(root)
	client := socket.NewClient(sockPath)

	if client.Ping() {
		return "database is locked by the running daemon\n" +
			"  → stop it first:  adsaver daemon stop\n" +
			"  → then retry your command"
	}

	if _, err := os.Stat(sockPath); err == nil {
		return fmt.Sprintf("database is locked: daemon socket exists but is not responding\n"+
			"  → a previous daemon may have crashed\n"+
			"  → find the process:  ps aux | grep 'adsaver daemon'\n"+
			"  → kill it:           kill <PID>\n"+
			"  → clean up socket:   rm %s", sockPath)
	}

	return "database is locked by another process\n" +
		"  → find the process:  ps aux | grep 'adsaver'\n" +
		"  → kill it:           kill <PID>\n" +
		"  → then retry your command"
}
