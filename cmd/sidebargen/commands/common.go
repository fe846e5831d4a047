package commands

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/sidebargen/internal/config"
	ferrors "git.home.luguber.info/inful/sidebargen/internal/foundation/errors"
	"git.home.luguber.info/inful/sidebargen/internal/history"
	"git.home.luguber.info/inful/sidebargen/internal/linkresolve"
	"git.home.luguber.info/inful/sidebargen/internal/logging"
	"git.home.luguber.info/inful/sidebargen/internal/metrics"
	"git.home.luguber.info/inful/sidebargen/internal/pipeline"
)

// Global is shared state bound into every command.
type Global struct {
	Context context.Context
	Logger  *slog.Logger
	// Out receives user-facing output; logs go to Err.
	Out io.Writer
	Err io.Writer
}

// CLI definition & global flags.
type CLI struct {
	Config    string           `short:"c" help:"Configuration file path (.yaml, .yml or .toml)" default:"sidebargen.yaml" env:"SIDEBARGEN_CONFIG"`
	Verbose   bool             `short:"v" help:"Enable verbose logging"`
	LogLevel  string           `name:"log-level" help:"Override logging.level (debug|info|warn|error)"`
	LogFormat string           `name:"log-format" help:"Override logging.format (text|json|pretty)"`
	Version   kong.VersionFlag `name:"version" help:"Show version and exit"`

	Build    BuildCmd    `cmd:"" help:"Build sidebars and write the sidebars artifact"`
	Validate ValidateCmd `cmd:"" help:"Build sidebars without writing anything and report every problem"`
	Watch    WatchCmd    `cmd:"" help:"Rebuild sidebars whenever the configuration, API descriptions or docs change"`
	History  HistoryCmd  `cmd:"" help:"List recent builds"`
	Init     InitCmd     `cmd:"" help:"Initialize a new configuration file"`
}

// AfterApply runs after flag parsing and sets up logging from the flags.
// The configured logging section is applied once a command loads it.
func (c *CLI) AfterApply(g *Global) error {
	if g.Out == nil {
		g.Out = os.Stdout
	}
	if g.Err == nil {
		g.Err = os.Stderr
	}
	if g.Context == nil {
		g.Context = context.Background()
	}
	return c.setupLogging(g, config.LoggingConfig{})
}

func (c *CLI) setupLogging(g *Global, lc config.LoggingConfig) error {
	levelName, formatName := lc.Level, lc.Format
	if c.LogLevel != "" {
		levelName = c.LogLevel
	}
	if c.LogFormat != "" {
		formatName = c.LogFormat
	}
	level, err := logging.ParseLevel(levelName)
	if err != nil {
		return ferrors.ValidationError("invalid log level").WithCause(err).Build()
	}
	if c.Verbose {
		level = slog.LevelDebug
	}
	format, err := logging.ParseFormat(formatName)
	if err != nil {
		return ferrors.ValidationError("invalid log format").WithCause(err).Build()
	}
	g.Logger = logging.New(g.Err, format, level)
	slog.SetDefault(g.Logger)
	return nil
}

// loadConfig loads the configuration file and applies its logging section.
func (c *CLI) loadConfig(g *Global) (*config.Config, error) {
	cfg, err := config.Load(c.Config)
	if err != nil {
		return nil, ferrors.ConfigError("load configuration").WithCause(err).WithContext("path", c.Config).Build()
	}
	if err := c.setupLogging(g, cfg.Logging); err != nil {
		return nil, err
	}
	return cfg, nil
}

func parseModeFlag(s string) (linkresolve.Mode, error) {
	if s == "" {
		return "", nil
	}
	mode, err := linkresolve.ParseMode(s)
	if err != nil {
		return "", ferrors.ValidationError("invalid --mode").WithCause(err).Build()
	}
	return mode, nil
}

// newBuilder wires metrics and history as configured. The returned close
// function releases the history database.
func newBuilder(g *Global, cfg *config.Config) (*pipeline.Builder, func(), error) {
	opts := []pipeline.Option{pipeline.WithLogger(g.Logger)}
	if cfg.Build.MetricsFile != "" {
		opts = append(opts, pipeline.WithRecorder(metrics.NewPrometheusRecorder(nil)))
	}
	closeFn := func() {}
	if cfg.Build.HistoryDB != "" {
		store, err := openHistory(cfg.Build.HistoryDB)
		if err != nil {
			return nil, nil, err
		}
		opts = append(opts, pipeline.WithHistory(store))
		closeFn = func() {
			if err := store.Close(); err != nil {
				g.Logger.Warn("Failed to close history database", "error", err)
			}
		}
	}
	return pipeline.NewBuilder(opts...), closeFn, nil
}

func openHistory(path string) (*history.SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, ferrors.HistoryError("create history directory").WithCause(err).WithContext("path", path).Build()
	}
	store, err := history.NewSQLiteStore(path)
	if err != nil {
		return nil, ferrors.HistoryError("open history database").WithCause(err).WithContext("path", path).Build()
	}
	return store, nil
}
