package build

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docmanual/internal/config"
	derrors "git.home.luguber.info/inful/docmanual/internal/foundation/errors"
	"git.home.luguber.info/inful/docmanual/internal/manifest"
	"git.home.luguber.info/inful/docmanual/internal/metrics"
	"git.home.luguber.info/inful/docmanual/internal/output"
)

type countingRecorder struct {
	metrics.NoopRecorder
	outcomes map[metrics.BuildOutcomeLabel]int
	emitted  int
	skipped  int
}

func newCountingRecorder() *countingRecorder {
	return &countingRecorder{outcomes: map[metrics.BuildOutcomeLabel]int{}}
}

func (c *countingRecorder) IncBuildOutcome(o metrics.BuildOutcomeLabel) { c.outcomes[o]++ }
func (c *countingRecorder) IncPageEmitted()                             { c.emitted++ }
func (c *countingRecorder) IncPageSkipped()                             { c.skipped++ }

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o750))
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	return p
}

func testConfig(t *testing.T) (*config.Config, string) {
	t.Helper()
	dir := t.TempDir()
	cfg := &config.Config{
		Manual: config.ManualConfig{
			Overview: writeFile(t, dir, "README.md", "# Overview\n\n## Goals\n"),
			FAQ:      writeFile(t, dir, "docs/faq.md", "## Why?\n"),
		},
		Identifiers: writeFile(t, dir, "identifiers.yaml", "class:\n  - Parser\nfunction:\n  - parse\n"),
		Output:      config.OutputConfig{Directory: filepath.Join(dir, "site")},
	}
	return cfg, dir
}

func TestBuildStatus_IsSuccess(t *testing.T) {
	tests := []struct {
		status   BuildStatus
		expected bool
		outcome  metrics.BuildOutcomeLabel
	}{
		{BuildStatusSuccess, true, metrics.BuildOutcomeSuccess},
		{BuildStatusSkipped, true, metrics.BuildOutcomeUnchanged},
		{BuildStatusFailed, false, metrics.BuildOutcomeFailed},
		{BuildStatusCancelled, false, metrics.BuildOutcomeCanceled},
	}
	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			require.Equal(t, tt.expected, tt.status.IsSuccess())
			require.Equal(t, tt.outcome, tt.status.Outcome())
		})
	}
}

func TestRunNilConfig(t *testing.T) {
	rec := newCountingRecorder()
	result, err := NewBuildService().WithRecorder(rec).Run(context.Background(), BuildRequest{})
	require.Error(t, err)
	require.True(t, derrors.HasCategory(err, derrors.CategoryConfig))
	require.Equal(t, BuildStatusFailed, result.Status)
	require.Equal(t, 1, rec.outcomes[metrics.BuildOutcomeFailed])
}

func TestRunWritesPagesAndManifest(t *testing.T) {
	cfg, _ := testConfig(t)
	rec := newCountingRecorder()

	result, err := NewBuildService().
		WithRecorder(rec).
		WithIDGenerator(func() string { return "build-1" }).
		Run(context.Background(), BuildRequest{Config: cfg})
	require.NoError(t, err)
	require.Equal(t, BuildStatusSuccess, result.Status)
	require.Equal(t, "build-1", result.BuildID)
	require.Equal(t, []string{"manual/index.html", "manual/overview.html", "manual/faq.html"}, result.Pages)
	require.Equal(t, 3, result.PagesWritten)
	require.Equal(t, 3, rec.emitted)

	for _, p := range result.Pages {
		_, err := os.Stat(filepath.Join(cfg.Output.Directory, filepath.FromSlash(p)))
		require.NoError(t, err, p)
	}

	sink := output.NewDirSink(cfg.Output.Directory)
	m, err := manifest.Load(sink, manifest.FileName)
	require.NoError(t, err)
	require.NotNil(t, m)
	require.Equal(t, "build-1", m.ID)
	require.Equal(t, manifest.StatusSuccess, m.Status)
	require.Len(t, m.Inputs.Sources, 2)
	require.NotEmpty(t, m.Inputs.IdentifiersHash)
	require.Len(t, m.Outputs.Pages, 3)
}

func TestRunSkipIfUnchanged(t *testing.T) {
	cfg, _ := testConfig(t)
	req := BuildRequest{Config: cfg, Options: BuildOptions{SkipIfUnchanged: true}}

	_, err := NewBuildService().Run(context.Background(), req)
	require.NoError(t, err)

	rec := newCountingRecorder()
	result, err := NewBuildService().WithRecorder(rec).Run(context.Background(), req)
	require.NoError(t, err)
	require.Equal(t, BuildStatusSkipped, result.Status)
	require.True(t, result.Skipped)
	require.Equal(t, 3, result.PagesSkipped)
	require.Equal(t, 3, rec.skipped)
	require.Equal(t, 1, rec.outcomes[metrics.BuildOutcomeUnchanged])

	// An edited source forces a rewrite.
	require.NoError(t, os.WriteFile(cfg.Manual.FAQ, []byte("## Why not?\n"), 0o600))
	result, err = NewBuildService().Run(context.Background(), req)
	require.NoError(t, err)
	require.Equal(t, BuildStatusSuccess, result.Status)
	require.Equal(t, 3, result.PagesWritten)
}

func TestRunSkipIfUnchangedRewritesDeletedOutput(t *testing.T) {
	cfg, _ := testConfig(t)
	req := BuildRequest{Config: cfg, Options: BuildOptions{SkipIfUnchanged: true}}

	_, err := NewBuildService().Run(context.Background(), req)
	require.NoError(t, err)
	require.NoError(t, os.Remove(filepath.Join(cfg.Output.Directory, "manual", "faq.html")))

	result, err := NewBuildService().Run(context.Background(), req)
	require.NoError(t, err)
	require.Equal(t, BuildStatusSuccess, result.Status)
	_, err = os.Stat(filepath.Join(cfg.Output.Directory, "manual", "faq.html"))
	require.NoError(t, err)
}

func TestRunDryRunWritesNothing(t *testing.T) {
	cfg, _ := testConfig(t)
	sink := output.NewMemorySink()

	result, err := NewBuildService().
		WithSinkFactory(func(string) output.Sink { return sink }).
		Run(context.Background(), BuildRequest{Config: cfg, Options: BuildOptions{DryRun: true}})
	require.NoError(t, err)
	require.Equal(t, BuildStatusSuccess, result.Status)
	require.Len(t, result.Pages, 3)
	require.Zero(t, result.PagesWritten)
	require.Empty(t, sink.Paths())
}

func TestRunMissingSourceFailsBeforeWriting(t *testing.T) {
	cfg, dir := testConfig(t)
	cfg.Manual.Usage = filepath.Join(dir, "missing.md")
	sink := output.NewMemorySink()
	rec := newCountingRecorder()

	result, err := NewBuildService().
		WithRecorder(rec).
		WithSinkFactory(func(string) output.Sink { return sink }).
		Run(context.Background(), BuildRequest{Config: cfg})
	require.Error(t, err)
	require.ErrorIs(t, err, ErrAssemble)
	require.True(t, derrors.HasCategory(err, derrors.CategoryFileSystem))
	require.Equal(t, BuildStatusFailed, result.Status)
	require.Empty(t, sink.Paths())
	require.Equal(t, 1, rec.outcomes[metrics.BuildOutcomeFailed])
}

func TestRunBadIdentifierIndex(t *testing.T) {
	cfg, dir := testConfig(t)
	cfg.Identifiers = filepath.Join(dir, "nope.yaml")

	_, err := NewBuildService().Run(context.Background(), BuildRequest{Config: cfg})
	require.ErrorIs(t, err, ErrIdentifiers)
}

func TestRunCancelled(t *testing.T) {
	cfg, _ := testConfig(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := NewBuildService().Run(ctx, BuildRequest{Config: cfg})
	require.True(t, errors.Is(err, context.Canceled))
	require.Equal(t, BuildStatusCancelled, result.Status)
}

func TestRunCleanRemovesStalePages(t *testing.T) {
	cfg, _ := testConfig(t)
	stale := writeFile(t, cfg.Output.Directory, "manual/usage.html", "old")
	cfg.Output.Clean = true

	_, err := NewBuildService().Run(context.Background(), BuildRequest{Config: cfg})
	require.NoError(t, err)
	_, err = os.Stat(stale)
	require.True(t, os.IsNotExist(err))
}

func TestRunTemplateOverride(t *testing.T) {
	cfg, dir := testConfig(t)
	cfg.Templates = filepath.Join(dir, "templates")
	writeFile(t, cfg.Templates, "manual.html", `<article data-slot="content"></article>`)
	sink := output.NewMemorySink()

	_, err := NewBuildService().
		WithSinkFactory(func(string) output.Sink { return sink }).
		Run(context.Background(), BuildRequest{Config: cfg})
	require.NoError(t, err)

	page, ok := sink.Get("manual/faq.html")
	require.True(t, ok)
	require.Contains(t, string(page), "<article")
}
