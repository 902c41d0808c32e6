package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/vango-dev/vtree/internal/config"
	"github.com/vango-dev/vtree/internal/errors"
	"github.com/vango-dev/vtree/pkg/snapshot"
	"github.com/vango-dev/vtree/pkg/vdom"
)

// environment is the state shared by every command: the loaded
// configuration and the logger built from it.
type environment struct {
	configPath string
	logLevel   string
	logFormat  string

	cfg    *config.Config
	logger *slog.Logger
}

func (e *environment) setup(cmd *cobra.Command) error {
	cfg, err := loadConfig(e.configPath)
	if err != nil {
		return err
	}
	if e.logLevel != "" {
		cfg.Log.Level = e.logLevel
	}
	if e.logFormat != "" {
		cfg.Log.Format = e.logFormat
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	e.cfg = cfg
	e.logger = newLogger(cmd.ErrOrStderr(), cfg.Log)
	slog.SetDefault(e.logger)
	return nil
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.LoadFromWorkingDir()
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, errors.New("E120").WithDetail("Cannot read " + path).Wrap(err)
	}
	if info.IsDir() {
		return config.Load(path)
	}
	return config.LoadFile(path)
}

func newLogger(w io.Writer, cfg config.LogConfig) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// handlers resolves named handlers in documents to functions that log the
// event they receive.
func (e *environment) handlers(name string) func(*vdom.Event) {
	return func(ev *vdom.Event) {
		e.logger.Info("handler", "name", name, "event", ev.Type)
	}
}

// openStore opens the snapshot store selected by the configuration. It
// returns nil when snapshots are disabled.
func (e *environment) openStore(ctx context.Context) (snapshot.Store, error) {
	opts := []snapshot.Option{snapshot.WithResolver(e.handlers)}
	s := e.cfg.Snapshot
	switch s.Driver {
	case config.DriverNone:
		return nil, nil
	case config.DriverMemory:
		return snapshot.NewMemoryStore(opts...), nil
	case config.DriverBolt:
		path := e.cfg.SnapshotPath()
		if dir := filepath.Dir(path); dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, errors.Errorf("E222", "create %s", dir).Wrap(err)
			}
		}
		return snapshot.OpenBolt(path, opts...)
	case config.DriverS3:
		client := snapshot.NewS3Client(s.Region, s.Endpoint)
		return snapshot.NewS3Store(client, s.Bucket, s.Prefix, opts...), nil
	default:
		return nil, errors.Errorf("E122", "snapshot.driver %q", s.Driver)
	}
}
