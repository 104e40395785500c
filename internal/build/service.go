package build

import (
	"context"
	"time"

	"git.home.luguber.info/inful/docmanual/internal/config"
	"git.home.luguber.info/inful/docmanual/internal/manifest"
	"git.home.luguber.info/inful/docmanual/internal/metrics"
)

// BuildService is the canonical interface for executing manual builds.
type BuildService interface {
	// Run executes the pipeline: identifiers → resolve → assemble → emit.
	Run(ctx context.Context, req BuildRequest) (*BuildResult, error)
}

// BuildRequest contains all inputs required to execute a manual build.
type BuildRequest struct {
	// Config is the loaded configuration for this build.
	Config *config.Config

	// OutputDir overrides Config.Output.Directory when set.
	OutputDir string

	// Options provides optional build behavior modifiers.
	Options BuildOptions
}

// BuildOptions provides optional configuration for build behavior.
type BuildOptions struct {
	// DryRun assembles every page without writing output.
	DryRun bool

	// SkipIfUnchanged skips writing when the previous manifest records the
	// same inputs and its outputs are intact.
	SkipIfUnchanged bool
}

// BuildResult contains the outcome of a build execution.
type BuildResult struct {
	Status     BuildStatus
	BuildID    string
	OutputPath string

	// Pages lists the page paths in emission order.
	Pages        []string
	PagesWritten int
	PagesSkipped int

	Manifest *manifest.BuildManifest

	Duration  time.Duration
	StartTime time.Time
	EndTime   time.Time

	// Skipped indicates nothing was written because nothing changed.
	Skipped    bool
	SkipReason string
}

// BuildStatus represents the outcome of a build execution.
type BuildStatus string

const (
	BuildStatusSuccess   BuildStatus = "success"
	BuildStatusFailed    BuildStatus = "failed"
	BuildStatusSkipped   BuildStatus = "skipped"
	BuildStatusCancelled BuildStatus = "cancelled"
)

// IsSuccess reports whether the manual on disk is current after the build.
func (s BuildStatus) IsSuccess() bool {
	return s == BuildStatusSuccess || s == BuildStatusSkipped
}

// Outcome is the metrics label recorded for a build ending in s.
func (s BuildStatus) Outcome() metrics.BuildOutcomeLabel {
	switch s {
	case BuildStatusSuccess:
		return metrics.BuildOutcomeSuccess
	case BuildStatusSkipped:
		return metrics.BuildOutcomeUnchanged
	case BuildStatusCancelled:
		return metrics.BuildOutcomeCanceled
	default:
		return metrics.BuildOutcomeFailed
	}
}
