package config

import (
	"fmt"
	"path/filepath"
)

// NormalizationResult captures adjustments made by Normalize.
type NormalizationResult struct{ Warnings []string }

// Normalize canonicalizes enumerations, cleans paths and resolves relative
// manual document, identifier and template paths against baseDir. It mutates
// cfg in place.
func Normalize(cfg *Config, baseDir string) *NormalizationResult {
	res := &NormalizationResult{}

	if lvl := NormalizeLogLevel(string(cfg.Logging.Level)); lvl != cfg.Logging.Level {
		res.Warnings = append(res.Warnings, warnChanged("logging.level", cfg.Logging.Level, lvl))
		cfg.Logging.Level = lvl
	}
	if f := NormalizeLogFormat(string(cfg.Logging.Format)); f != cfg.Logging.Format {
		res.Warnings = append(res.Warnings, warnChanged("logging.format", cfg.Logging.Format, f))
		cfg.Logging.Format = f
	}

	if b := cfg.Watch.Retry.Backoff; b != "" {
		if nb := NormalizeRetryBackoff(string(b)); nb != b {
			res.Warnings = append(res.Warnings, warnChanged("watch.retry.backoff", b, nb))
			cfg.Watch.Retry.Backoff = nb
		}
	}

	if cleaned := filepath.Clean(cfg.Output.Directory); cleaned != cfg.Output.Directory {
		cfg.Output.Directory = cleaned
	}

	m := &cfg.Manual
	for _, p := range []*string{&m.Overview, &m.Installation, &m.Usage, &m.Example, &m.FAQ, &m.Changelog, &cfg.Identifiers, &cfg.Templates} {
		*p = resolvePath(baseDir, *p)
	}
	return res
}

func resolvePath(baseDir, p string) string {
	if p == "" || filepath.IsAbs(p) || baseDir == "" {
		return p
	}
	return filepath.Join(baseDir, p)
}

func warnChanged[T ~string](field string, from, to T) string {
	return fmt.Sprintf("normalized %s from %q to %q", field, from, to)
}
