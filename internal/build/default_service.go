package build

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	derrors "git.home.luguber.info/inful/docmanual/internal/foundation/errors"
	"git.home.luguber.info/inful/docmanual/internal/identifiers"
	"git.home.luguber.info/inful/docmanual/internal/logfields"
	"git.home.luguber.info/inful/docmanual/internal/manifest"
	"git.home.luguber.info/inful/docmanual/internal/manual"
	"git.home.luguber.info/inful/docmanual/internal/markdown"
	"git.home.luguber.info/inful/docmanual/internal/metrics"
	"git.home.luguber.info/inful/docmanual/internal/observability"
	"git.home.luguber.info/inful/docmanual/internal/output"
	"git.home.luguber.info/inful/docmanual/internal/render"
)

// SinkFactory creates the output sink for an output directory.
type SinkFactory func(outputDir string) output.Sink

// DefaultBuildService is the standard implementation of BuildService.
type DefaultBuildService struct {
	renderer    markdown.Renderer
	sinkFactory SinkFactory
	recorder    metrics.Recorder
	newID       func() string
}

// NewBuildService creates a DefaultBuildService writing to the filesystem
// with the goldmark renderer.
func NewBuildService() *DefaultBuildService {
	return &DefaultBuildService{
		renderer:    markdown.NewRenderer(),
		sinkFactory: func(dir string) output.Sink { return output.NewDirSink(dir) },
		recorder:    metrics.NoopRecorder{},
		newID:       uuid.NewString,
	}
}

// WithRenderer replaces the markdown renderer.
func (s *DefaultBuildService) WithRenderer(r markdown.Renderer) *DefaultBuildService {
	s.renderer = r
	return s
}

// WithSinkFactory replaces the output sink factory (for testing).
func (s *DefaultBuildService) WithSinkFactory(f SinkFactory) *DefaultBuildService {
	s.sinkFactory = f
	return s
}

// WithRecorder injects a metrics recorder.
func (s *DefaultBuildService) WithRecorder(r metrics.Recorder) *DefaultBuildService {
	if r == nil {
		r = metrics.NoopRecorder{}
	}
	s.recorder = r
	return s
}

// WithIDGenerator replaces the build id generator (for testing).
func (s *DefaultBuildService) WithIDGenerator(f func() string) *DefaultBuildService {
	s.newID = f
	return s
}

// cleaner is implemented by sinks that can remove a previous build.
type cleaner interface {
	Clean(dir string) error
}

// Run executes the complete build pipeline.
func (s *DefaultBuildService) Run(ctx context.Context, req BuildRequest) (*BuildResult, error) {
	startTime := time.Now()
	result := &BuildResult{
		StartTime: startTime,
		BuildID:   s.newID(),
	}
	ctx = observability.WithBuildID(ctx, result.BuildID)

	fail := func(stage string, status BuildStatus, err error) (*BuildResult, error) {
		result.Status = status
		result.EndTime = time.Now()
		result.Duration = result.EndTime.Sub(startTime)
		if status == BuildStatusCancelled {
			s.recorder.IncStageResult(stage, metrics.ResultCanceled)
		} else {
			s.recorder.IncStageResult(stage, metrics.ResultFatal)
		}
		s.recorder.IncBuildOutcome(status.Outcome())
		slog.ErrorContext(ctx, "Manual build failed", logfields.Error(err))
		return result, err
	}

	if req.Config == nil {
		return fail("validate", BuildStatusFailed, derrors.ConfigError("config required").Build())
	}
	cfg := req.Config
	result.OutputPath = req.OutputDir
	if result.OutputPath == "" {
		result.OutputPath = cfg.Output.Directory
	}

	// Stage 1: identifier index
	stageStart := time.Now()
	ctx = observability.WithStage(ctx, "identifiers")
	ids, err := identifiers.Load(cfg.Identifiers)
	if err != nil {
		return fail("identifiers", BuildStatusFailed, fmt.Errorf("%w: %w", ErrIdentifiers, err))
	}
	s.recorder.ObserveStageDuration("identifiers", time.Since(stageStart))
	s.recorder.IncStageResult("identifiers", metrics.ResultSuccess)
	slog.DebugContext(ctx, "Identifier index loaded",
		logfields.Path(cfg.Identifiers),
		logfields.Count(len(ids.Populated())))

	// Stage 2: resolve and assemble
	stageStart = time.Now()
	ctx = observability.WithStage(ctx, "assemble")
	items := manual.Resolve(cfg.Manual)
	var overrides []fs.FS
	if cfg.Templates != "" {
		overrides = append(overrides, os.DirFS(cfg.Templates))
	}
	assembler := manual.NewAssembler(items, ids, s.renderer, render.NewEngine(overrides...)).
		WithRecorder(s.recorder)

	pages, err := assembler.Build(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return fail("assemble", BuildStatusCancelled, err)
		}
		return fail("assemble", BuildStatusFailed, fmt.Errorf("%w: %w", ErrAssemble, err))
	}
	s.recorder.ObserveStageDuration("assemble", time.Since(stageStart))
	s.recorder.IncStageResult("assemble", metrics.ResultSuccess)
	slog.InfoContext(ctx, "Manual assembled",
		slog.Int("items", len(items)),
		logfields.Count(len(pages)))

	for _, p := range pages {
		result.Pages = append(result.Pages, p.Path)
	}

	current, err := s.newManifest(result, cfg.Identifiers, cfg.Templates, pages)
	if err != nil {
		return fail("assemble", BuildStatusFailed, fmt.Errorf("%w: %w", ErrAssemble, err))
	}
	result.Manifest = current

	if req.Options.DryRun {
		slog.InfoContext(ctx, "Dry run, nothing written", logfields.Output(result.OutputPath))
		return s.finish(ctx, result)
	}

	// Stage 3: emit
	stageStart = time.Now()
	ctx = observability.WithStage(ctx, "emit")
	sink := s.sinkFactory(result.OutputPath)

	if req.Options.SkipIfUnchanged {
		if reader, ok := sink.(manifest.Reader); ok {
			prev, err := manifest.Load(reader, manifest.FileName)
			if err != nil {
				slog.WarnContext(ctx, "Ignoring unreadable build manifest", logfields.Error(err))
			} else if current.Unchanged(prev) && prev.OutputsIntact(reader) {
				for range pages {
					s.recorder.IncPageSkipped()
				}
				result.Status = BuildStatusSkipped
				result.Skipped = true
				result.SkipReason = "no_changes"
				result.PagesSkipped = len(pages)
				slog.InfoContext(ctx, "Manual unchanged, skipping write",
					slog.String("previous_build", prev.ID))
				return s.finish(ctx, result)
			}
		}
	}

	if cfg.Output.Clean {
		if c, ok := sink.(cleaner); ok {
			if err := c.Clean("manual"); err != nil {
				return fail("emit", BuildStatusFailed, fmt.Errorf("%w: %w", ErrEmit, err))
			}
		}
	}

	if err := assembler.WritePages(ctx, sink, pages); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return fail("emit", BuildStatusCancelled, err)
		}
		return fail("emit", BuildStatusFailed, fmt.Errorf("%w: %w", ErrEmit, err))
	}
	result.PagesWritten = len(pages)

	current.Status = manifest.StatusSuccess
	current.Duration = time.Since(startTime).Milliseconds()
	data, err := current.ToJSON()
	if err == nil {
		err = sink.Write(ctx, manifest.FileName, data)
	}
	if err != nil {
		return fail("emit", BuildStatusFailed, fmt.Errorf("%w: %w", ErrEmit, err))
	}
	s.recorder.ObserveStageDuration("emit", time.Since(stageStart))
	s.recorder.IncStageResult("emit", metrics.ResultSuccess)
	slog.InfoContext(ctx, "Manual written",
		logfields.Output(result.OutputPath),
		logfields.Count(result.PagesWritten))

	result.Status = BuildStatusSuccess
	return s.finish(ctx, result)
}

func (s *DefaultBuildService) finish(ctx context.Context, result *BuildResult) (*BuildResult, error) {
	if result.Status == "" {
		result.Status = BuildStatusSuccess
	}
	result.EndTime = time.Now()
	result.Duration = result.EndTime.Sub(result.StartTime)
	s.recorder.IncBuildOutcome(result.Status.Outcome())
	s.recorder.ObserveBuildDuration(result.Duration)
	slog.DebugContext(ctx, "Build finished",
		slog.String("status", string(result.Status)),
		logfields.Since(result.StartTime))
	return result, nil
}

// newManifest records the build's inputs and the pages it would write.
func (s *DefaultBuildService) newManifest(result *BuildResult, identifiersPath, templatesDir string, pages []manual.Page) (*manifest.BuildManifest, error) {
	idsHash, err := manifest.HashFile(identifiersPath)
	if err != nil {
		return nil, err
	}
	tplHash, err := manifest.HashDir(templatesDir)
	if err != nil {
		return nil, err
	}

	m := &manifest.BuildManifest{
		ID:        result.BuildID,
		Timestamp: result.StartTime.UTC(),
		Inputs: manifest.Inputs{
			IdentifiersHash: idsHash,
			TemplatesHash:   tplHash,
		},
		Status: manifest.StatusFailed,
	}
	for _, p := range pages {
		if p.Source != "" {
			m.Inputs.Sources = append(m.Inputs.Sources, manifest.SourceInput{
				Label:       string(p.Label),
				Path:        p.Source,
				Fingerprint: p.SourceFingerprint,
			})
		}
		m.Outputs.Pages = append(m.Outputs.Pages, manifest.PageOutput{
			Path:        p.Path,
			Source:      p.Source,
			Fingerprint: manifest.PageFingerprint(p.HTML),
		})
	}
	return m, nil
}
