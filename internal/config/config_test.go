package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	derrors "git.home.luguber.info/inful/docmanual/internal/foundation/errors"
)

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "docmanual.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadResolvesRelativePaths(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `
manual:
  overview: README.md
  usage: docs/usage.md
  faq: /abs/faq.md
identifiers: docs/identifiers.yaml
unknown_key: ignored
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "README.md"), cfg.Manual.Overview)
	require.Equal(t, filepath.Join(dir, "docs/usage.md"), cfg.Manual.Usage)
	require.Equal(t, "/abs/faq.md", cfg.Manual.FAQ)
	require.Empty(t, cfg.Manual.Installation)
	require.Equal(t, filepath.Join(dir, "docs/identifiers.yaml"), cfg.Identifiers)
	require.Empty(t, cfg.Templates)
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, t.TempDir(), "manual: {}\n"))
	require.NoError(t, err)
	require.Equal(t, "site", cfg.Output.Directory)
	require.Equal(t, LogLevelInfo, cfg.Logging.Level)
	require.Equal(t, LogFormatText, cfg.Logging.Format)
	require.Equal(t, 300*time.Millisecond, cfg.Watch.Debounce)
	require.Empty(t, cfg.Manual.Paths())
}

func TestLoadExpandsEnvironment(t *testing.T) {
	t.Setenv("DOCMANUAL_TEST_OUT", "/tmp/manual-out")
	cfg, err := Load(writeConfig(t, t.TempDir(), "output:\n  directory: ${DOCMANUAL_TEST_OUT}\n"))
	require.NoError(t, err)
	require.Equal(t, "/tmp/manual-out", cfg.Output.Directory)
}

func TestLoadNormalizesLogging(t *testing.T) {
	cfg, err := Load(writeConfig(t, t.TempDir(), "logging:\n  level: WARNING\n  format: nope\nwatch:\n  debounce: 1s\n  rebuild_interval: 5m\n"))
	require.NoError(t, err)
	require.Equal(t, LogLevelWarn, cfg.Logging.Level)
	require.Equal(t, LogFormatText, cfg.Logging.Format)
	require.Equal(t, time.Second, cfg.Watch.Debounce)
	require.Equal(t, 5*time.Minute, cfg.Watch.RebuildInterval)
}

func TestLoadWatchRetry(t *testing.T) {
	cfg, err := Load(writeConfig(t, t.TempDir(), "watch:\n  retry:\n    backoff: Exponential\n    initial: 200ms\n    max: 2s\n    max_retries: 4\n"))
	require.NoError(t, err)
	require.Equal(t, RetryConfig{
		Backoff:    RetryBackoffExponential,
		Initial:    200 * time.Millisecond,
		Max:        2 * time.Second,
		MaxRetries: 4,
	}, cfg.Watch.Retry)

	_, err = Load(writeConfig(t, t.TempDir(), "watch:\n  retry:\n    max_retries: -2\n"))
	require.True(t, derrors.HasCategory(err, derrors.CategoryValidation))
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	require.True(t, derrors.HasCategory(err, derrors.CategoryConfig))

	_, err = Load(writeConfig(t, t.TempDir(), "manual: [not, a, map]\n"))
	require.Error(t, err)
	require.True(t, derrors.HasCategory(err, derrors.CategoryConfig))

	_, err = Load(writeConfig(t, t.TempDir(), "watch:\n  rebuild_interval: -1s\n"))
	require.Error(t, err)
	require.True(t, derrors.HasCategory(err, derrors.CategoryValidation))
}

func TestManualPathsOrder(t *testing.T) {
	m := ManualConfig{Changelog: "c", Overview: "o", FAQ: "f"}
	require.Equal(t, []string{"o", "f", "c"}, m.Paths())
}

func TestInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "docmanual.yaml")
	require.NoError(t, Init(path, false))

	err := Init(path, false)
	require.Error(t, err)
	require.True(t, derrors.HasCategory(err, derrors.CategoryValidation))
	require.NoError(t, Init(path, true))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Len(t, cfg.Manual.Paths(), 6)
	require.Equal(t, 300*time.Millisecond, cfg.Watch.Debounce)
}

func TestParseLogLevel(t *testing.T) {
	lvl, err := ParseLogLevel(" Debug ")
	require.NoError(t, err)
	require.Equal(t, LogLevelDebug, lvl)

	_, err = ParseLogLevel("loud")
	require.Error(t, err)
	require.Equal(t, "ERROR", LogLevelError.Slog().String())
}
