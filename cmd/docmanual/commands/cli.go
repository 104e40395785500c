// Package commands implements the docmanual command line.
package commands

import (
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"
	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/docmanual/internal/config"
	"git.home.luguber.info/inful/docmanual/internal/metrics"
	"git.home.luguber.info/inful/docmanual/internal/observability"
)

// LogLevelEnv overrides the log level when --verbose is not given.
const LogLevelEnv = "DOCMANUAL_LOG_LEVEL"

// Global carries state shared by subcommands.
type Global struct {
	Logger   *slog.Logger
	Registry *prom.Registry // set when metrics are enabled
	Stdout   io.Writer
}

func (g *Global) stdout() io.Writer {
	if g == nil || g.Stdout == nil {
		return os.Stdout
	}
	return g.Stdout
}

// CLI definition & global flags.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"docmanual.yaml" type:"path"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Build BuildCmd `cmd:"" help:"Build the manual pages once"`
	Init  InitCmd  `cmd:"" help:"Initialize a new configuration file"`
	Watch WatchCmd `cmd:"" help:"Rebuild the manual whenever its inputs change"`
	Toc   TocCmd   `cmd:"" help:"Print the table of contents of one manual section"`
}

// AfterApply runs after flag parsing; sets up a provisional logger until
// the configuration is loaded.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	slog.SetDefault(newLogger(os.Stderr, c.level(config.LogLevelInfo), config.LogFormatText))
	return nil
}

// level resolves the effective log level: --verbose, then the environment,
// then the configured value.
func (c *CLI) level(configured config.LogLevel) slog.Level {
	if c.Verbose {
		return slog.LevelDebug
	}
	if raw := os.Getenv(LogLevelEnv); raw != "" {
		lvl, err := config.ParseLogLevel(raw)
		if err == nil {
			return lvl.Slog()
		}
		slog.Warn("Ignoring invalid log level", slog.String("env", LogLevelEnv), slog.String("value", raw))
	}
	return configured.Slog()
}

func newLogger(w io.Writer, level slog.Level, format config.LogFormat) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	var h slog.Handler = slog.NewTextHandler(w, opts)
	if format == config.LogFormatJSON {
		h = slog.NewJSONHandler(w, opts)
	}
	return slog.New(observability.NewHandler(h))
}

// loadConfig loads the configuration and installs the configured logger and
// metrics registry.
func (c *CLI) loadConfig(g *Global) (*config.Config, error) {
	cfg, err := config.Load(c.Config)
	if err != nil {
		return nil, err
	}
	logger := newLogger(os.Stderr, c.level(cfg.Logging.Level), cfg.Logging.Format)
	slog.SetDefault(logger)
	if g != nil {
		g.Logger = logger
		if cfg.Metrics.Enabled && g.Registry == nil {
			g.Registry = prom.NewRegistry()
		}
	}
	return cfg, nil
}

// recorder returns the metrics recorder for g.
func (g *Global) recorder() metrics.Recorder {
	if g == nil || g.Registry == nil {
		return metrics.NoopRecorder{}
	}
	return metrics.NewPrometheusRecorder(g.Registry)
}
