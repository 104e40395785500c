package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docmanual/internal/config"
	derrors "git.home.luguber.info/inful/docmanual/internal/foundation/errors"
	"git.home.luguber.info/inful/docmanual/internal/retry"
)

func TestTargetsFor(t *testing.T) {
	cfg := &config.Config{
		Manual:      config.ManualConfig{Overview: "README.md", FAQ: "docs/faq.md"},
		Identifiers: "ids.yaml",
		Templates:   "tpl",
	}
	targets := TargetsFor(cfg, "docmanual.yaml")
	require.Equal(t, []string{"README.md", "docs/faq.md", "ids.yaml", "docmanual.yaml"}, targets.Files)
	require.Equal(t, []string{"tpl"}, targets.Dirs)
}

func TestNewRequiresTargetsAndRebuild(t *testing.T) {
	_, err := New(Targets{Files: []string{"a.md"}}, Options{}, nil)
	require.Error(t, err)

	_, err = New(Targets{}, Options{}, func(context.Context, Trigger) error { return nil })
	require.Error(t, err)
}

func TestInteresting(t *testing.T) {
	dir := t.TempDir()
	w, err := New(Targets{
		Files: []string{filepath.Join(dir, "README.md")},
		Dirs:  []string{filepath.Join(dir, "tpl")},
	}, Options{}, func(context.Context, Trigger) error { return nil })
	require.NoError(t, err)

	require.True(t, w.interesting(filepath.Join(dir, "README.md")))
	require.True(t, w.interesting(filepath.Join(dir, "tpl", "sub", "layout.html")))
	require.False(t, w.interesting(filepath.Join(dir, "site", "manual", "index.html")))
	require.False(t, w.interesting(filepath.Join(dir, "tplx", "layout.html")))
}

func TestShouldIgnoreEvent(t *testing.T) {
	for _, p := range []string{".hidden", "file.md~", "file.md.swp", "#autosave#", "Thumbs.db"} {
		require.True(t, shouldIgnoreEvent(p), p)
	}
	require.False(t, shouldIgnoreEvent("usage.md"))
}

func TestWatcherRebuildsOnChange(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "usage.md")
	require.NoError(t, os.WriteFile(src, []byte("# Usage\n"), 0o600))

	var rebuilds atomic.Int32
	w, err := New(Targets{Files: []string{src}}, Options{Debounce: 20 * time.Millisecond},
		func(context.Context, Trigger) error {
			rebuilds.Add(1)
			return nil
		})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- w.Run(ctx) }()

	// Give the watcher time to register before writing.
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(src, []byte("# Usage\n\nmore\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "unrelated.md"), []byte("x"), 0o600))

	require.Eventually(t, func() bool { return rebuilds.Load() >= 1 }, 3*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-errCh:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestSchedulerScheduleEvery(t *testing.T) {
	s, err := NewScheduler()
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Stop() })

	id, err := s.ScheduleEvery("test", 10*time.Second, func() {})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	_, err = s.ScheduleEvery("test", 0, func() {})
	require.Error(t, err)
}

func TestWatcherScheduledRebuild(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "usage.md")
	require.NoError(t, os.WriteFile(src, []byte("# Usage\n"), 0o600))

	reasons := make(chan string, 8)
	w, err := New(Targets{Files: []string{src}},
		Options{Debounce: 10 * time.Millisecond, RebuildInterval: 100 * time.Millisecond},
		func(_ context.Context, t Trigger) error {
			reasons <- t.LastReason
			return nil
		})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = w.Run(ctx) }()

	select {
	case r := <-reasons:
		require.Equal(t, "schedule", r)
	case <-time.After(3 * time.Second):
		t.Fatal("scheduled rebuild did not run")
	}
}

func TestWatcherRetriesTransientRebuildFailure(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "usage.md")
	require.NoError(t, os.WriteFile(src, []byte("# Usage\n"), 0o600))

	var calls atomic.Int32
	triggers := make(chan Trigger, 8)
	w, err := New(Targets{Files: []string{src}},
		Options{
			Debounce: 20 * time.Millisecond,
			Retry:    retry.Policy{Backoff: config.RetryBackoffFixed, Initial: time.Millisecond, Max: time.Millisecond, MaxRetries: 3},
		},
		func(_ context.Context, tr Trigger) error {
			triggers <- tr
			if calls.Add(1) == 1 {
				return derrors.FileSystemError("read manual source").WithRetry(derrors.RetryBackoff).Build()
			}
			return nil
		})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = w.Run(ctx) }()

	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(src, []byte("# Usage\n\nmore\n"), 0o600))

	var got []Trigger
	for len(got) < 2 {
		select {
		case tr := <-triggers:
			got = append(got, tr)
		case <-time.After(3 * time.Second):
			t.Fatalf("expected a retried rebuild, got %d calls", len(got))
		}
	}
	require.Equal(t, got[0].FirstRequest, got[1].FirstRequest, "retry reuses the same trigger")
}
