package app

import (
	"os"
	"path/filepath"

	"github.com/corey/adsaver/internal/config"
	"github.com/corey/adsaver/internal/domain/status"
)

// Paths holds all resolved filesystem paths for the .adsaver/ project directory.
type Paths struct {
	Root   string // .adsaver/
	DB     string // .adsaver/adsaver.db
	Status string // .adsaver/status.json
	Config string // .adsaver/config.yaml

	LogDir    string // .adsaver/log/
	DaemonLog string // .adsaver/log/daemon.log

	RunDir   string // .adsaver/run/
	PIDFile  string // .adsaver/run/daemon.pid
	PortFile string // .adsaver/run/http.port
}

// NewPaths constructs all resolved paths from a project root directory.
func NewPaths(projectRoot string) *Paths {
	root := filepath.Join(projectRoot, ".adsaver")
	return &Paths{
		Root:   root,
		DB:     filepath.Join(root, "adsaver.db"),
		Status: filepath.Join(root, status.StatusFile),
		Config: filepath.Join(root, config.FileName),

		LogDir:    filepath.Join(root, "log"),
		DaemonLog: filepath.Join(root, "log", "daemon.log"),

		RunDir:   filepath.Join(root, "run"),
		PIDFile:  filepath.Join(root, "run", "daemon.pid"),
		PortFile: filepath.Join(root, "run", "http.port"),
	}
}

// EnsureDirs creates all subdirectories under .adsaver/. Idempotent.
func (p *Paths) EnsureDirs() error {
	for _, d := range []string{p.Root, p.LogDir, p.RunDir} {
		if err := os.MkdirAll(d, 0755); err != nil {
			return err
		}
	}
	return nil
}

// CleanEphemeral removes ephemeral runtime files (PID file and port file).
// Called on clean daemon shutdown.
func (p *Paths) CleanEphemeral() {
	os.Remove(p.PIDFile)
	os.Remove(p.PortFile)
}
