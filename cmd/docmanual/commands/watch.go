package commands

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"git.home.luguber.info/inful/docmanual/internal/build"
	"git.home.luguber.info/inful/docmanual/internal/config"
	derrors "git.home.luguber.info/inful/docmanual/internal/foundation/errors"
	"git.home.luguber.info/inful/docmanual/internal/logfields"
	"git.home.luguber.info/inful/docmanual/internal/metrics"
	"git.home.luguber.info/inful/docmanual/internal/retry"
	"git.home.luguber.info/inful/docmanual/internal/watch"
)

// WatchCmd implements the 'watch' command.
type WatchCmd struct {
	Output          string        `short:"o" help:"Output directory (overrides output.directory)"`
	Debounce        time.Duration `help:"Quiet window before rebuilding (overrides watch.debounce)"`
	RebuildInterval time.Duration `name:"rebuild-interval" help:"Also rebuild on this interval (overrides watch.rebuild_interval)"`
}

func (w *WatchCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.loadConfig(g)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return RunWatch(ctx, g, cfg, root.Config, w.options(cfg), w.Output)
}

func (w *WatchCmd) options(cfg *config.Config) watch.Options {
	opts := watch.Options{
		Debounce:        cfg.Watch.Debounce,
		RebuildInterval: cfg.Watch.RebuildInterval,
		Retry:           retry.FromConfig(cfg.Watch.Retry),
	}
	if w.Debounce > 0 {
		opts.Debounce = w.Debounce
	}
	if w.RebuildInterval > 0 {
		opts.RebuildInterval = w.RebuildInterval
	}
	return opts
}

// RunWatch builds once, then rebuilds on every change until ctx is done.
// Config file changes are picked up by reloading before each rebuild.
func RunWatch(ctx context.Context, g *Global, cfg *config.Config, configPath string, opts watch.Options, outputDir string) error {
	svc := build.NewBuildService().WithRecorder(g.recorder())

	if g.Registry != nil && cfg.Metrics.Listen != "" {
		srv := &http.Server{
			Addr:              cfg.Metrics.Listen,
			Handler:           metrics.HTTPHandler(g.Registry),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("Metrics server failed", logfields.Error(err))
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
		slog.Info("Serving metrics", slog.String("addr", cfg.Metrics.Listen))
	}

	current := cfg
	run := func(ctx context.Context) error {
		_, err := svc.Run(ctx, build.BuildRequest{
			Config:    current,
			OutputDir: outputDir,
			Options:   build.BuildOptions{SkipIfUnchanged: true},
		})
		return err
	}

	if err := run(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			return nil
		}
		slog.Error("Initial build failed", logfields.Error(err))
	}

	watcher, err := watch.New(watch.TargetsFor(current, configPath), opts, func(ctx context.Context, _ watch.Trigger) error {
		if reloaded, err := config.Load(configPath); err != nil {
			slog.Warn("Keeping previous configuration", logfields.Error(err))
		} else {
			current = reloaded
		}
		return run(ctx)
	})
	if err != nil {
		return err
	}
	if err := watcher.Run(ctx); err != nil {
		return derrors.WrapError(err, derrors.CategoryRuntime, "watch manual inputs").Build()
	}
	return nil
}
