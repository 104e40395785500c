package config

import (
	"strings"

	derrors "git.home.luguber.info/inful/docmanual/internal/foundation/errors"
)

// Validate checks invariants that normalization cannot repair. Missing
// manual documents are not checked here: a configured document that cannot
// be read fails the build itself.
func Validate(cfg *Config) error {
	if strings.TrimSpace(cfg.Output.Directory) == "" {
		return derrors.ValidationError("output.directory must not be empty").Build()
	}
	if cfg.Watch.RebuildInterval < 0 {
		return derrors.ValidationError("watch.rebuild_interval must not be negative").
			WithContext("value", cfg.Watch.RebuildInterval.String()).
			Build()
	}
	if cfg.Watch.Retry.MaxRetries < 0 {
		return derrors.ValidationError("watch.retry.max_retries must not be negative").
			WithContext("value", cfg.Watch.Retry.MaxRetries).
			Build()
	}
	return nil
}
