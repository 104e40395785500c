package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/docmanual/internal/build"
	"git.home.luguber.info/inful/docmanual/internal/config"
	"git.home.luguber.info/inful/docmanual/internal/logfields"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	Output        string `short:"o" help:"Output directory (overrides output.directory)"`
	DryRun        bool   `name:"dry-run" help:"Assemble every page without writing"`
	SkipUnchanged bool   `name:"skip-unchanged" help:"Do not rewrite pages when no input changed since the last build"`
}

func (b *BuildCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.loadConfig(g)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return RunBuild(ctx, g, b.request(cfg))
}

func (b *BuildCmd) request(cfg *config.Config) build.BuildRequest {
	return build.BuildRequest{
		Config:    cfg,
		OutputDir: b.Output,
		Options: build.BuildOptions{
			DryRun:          b.DryRun,
			SkipIfUnchanged: b.SkipUnchanged,
		},
	}
}

// RunBuild executes one build and reports it on stdout.
func RunBuild(ctx context.Context, g *Global, req build.BuildRequest) error {
	out := g.stdout()
	_, _ = fmt.Fprintln(out, "Building manual")

	svc := build.NewBuildService().WithRecorder(g.recorder())
	result, err := svc.Run(ctx, req)
	if err != nil {
		_, _ = fmt.Fprintln(out, "Build failed")
		return err
	}

	switch {
	case result.Skipped:
		_, _ = fmt.Fprintf(out, "Manual unchanged (%d pages)\n", result.PagesSkipped)
	case req.Options.DryRun:
		for _, p := range result.Pages {
			_, _ = fmt.Fprintf(out, "  %s\n", p)
		}
		_, _ = fmt.Fprintf(out, "Dry run: %d pages assembled\n", len(result.Pages))
	default:
		_, _ = fmt.Fprintf(out, "Wrote %d pages to %s\n", result.PagesWritten, result.OutputPath)
	}

	if g.Registry != nil {
		logMetricsSummary(g.Registry)
	}
	slog.Debug("Build complete",
		logfields.BuildID(result.BuildID),
		slog.String("status", string(result.Status)),
		logfields.DurationMS(float64(result.Duration.Microseconds())/1000))
	return nil
}

// logMetricsSummary logs the counters gathered so far.
func logMetricsSummary(reg *prom.Registry) {
	mfs, err := reg.Gather()
	if err != nil {
		slog.Warn("Gather metrics failed", logfields.Error(err))
		return
	}
	attrs := make([]any, 0, len(mfs))
	for _, mf := range mfs {
		var total float64
		for _, m := range mf.GetMetric() {
			switch {
			case m.GetCounter() != nil:
				total += m.GetCounter().GetValue()
			case m.GetHistogram() != nil:
				total += float64(m.GetHistogram().GetSampleCount())
			default:
				continue
			}
		}
		attrs = append(attrs, slog.Float64(mf.GetName(), total))
	}
	slog.Info("Build metrics", attrs...)
}
