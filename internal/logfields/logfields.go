package logfields

import (
	"log/slog"
	"time"
)

// Canonical log field name constants to avoid drift across packages.
const (
	KeyBuildID    = "build_id"
	KeyStage      = "stage"
	KeyLabel      = "label"
	KeyPage       = "page"
	KeyPath       = "path"
	KeySource     = "source"
	KeyCount      = "count"
	KeyDurationMS = "duration_ms"
	KeyOutput     = "output"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func BuildID(id string) slog.Attr     { return slog.String(KeyBuildID, id) }
func Stage(name string) slog.Attr     { return slog.String(KeyStage, name) }
func Label(l string) slog.Attr        { return slog.String(KeyLabel, l) }
func Page(p string) slog.Attr         { return slog.String(KeyPage, p) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func Source(p string) slog.Attr       { return slog.String(KeySource, p) }
func Count(n int) slog.Attr           { return slog.Int(KeyCount, n) }
func Output(dir string) slog.Attr     { return slog.String(KeyOutput, dir) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }

// Since reports the elapsed time from start in milliseconds.
func Since(start time.Time) slog.Attr {
	return DurationMS(float64(time.Since(start).Microseconds()) / 1000)
}

// Error logs err under KeyError. Errors that render themselves for slog
// (classified errors) become a group; anything else is its message.
func Error(err error) slog.Attr {
	switch e := err.(type) {
	case nil:
		return slog.String(KeyError, "")
	case slog.LogValuer:
		return slog.Any(KeyError, e)
	default:
		return slog.String(KeyError, err.Error())
	}
}
