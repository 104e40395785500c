package errors

import "log/slog"

// ErrorCategory groups errors by what the user has to fix.
type ErrorCategory string

const (
	CategoryConfig     ErrorCategory = "config"
	CategoryValidation ErrorCategory = "validation"
	CategoryNotFound   ErrorCategory = "not_found"
	CategoryBuild      ErrorCategory = "build"
	CategoryFileSystem ErrorCategory = "filesystem"
	CategoryRuntime    ErrorCategory = "runtime"
	CategoryInternal   ErrorCategory = "internal"
)

// ErrorSeverity indicates the impact level of an error.
type ErrorSeverity string

const (
	SeverityFatal   ErrorSeverity = "fatal"
	SeverityError   ErrorSeverity = "error"
	SeverityWarning ErrorSeverity = "warning"
	SeverityInfo    ErrorSeverity = "info"
)

// Level maps the severity onto slog.
func (s ErrorSeverity) Level() slog.Level {
	switch s {
	case SeverityInfo:
		return slog.LevelInfo
	case SeverityWarning:
		return slog.LevelWarn
	default:
		return slog.LevelError
	}
}

// RetryStrategy hints whether repeating the operation can succeed.
type RetryStrategy string

const (
	RetryNever      RetryStrategy = "never"
	RetryImmediate  RetryStrategy = "immediate"
	RetryBackoff    RetryStrategy = "backoff"
	RetryUserAction RetryStrategy = "user"
)

type categoryInfo struct {
	exitCode int
	severity ErrorSeverity
	retry    RetryStrategy
}

// categories holds the defaults a builder starts from and the CLI exit code.
var categories = map[ErrorCategory]categoryInfo{
	CategoryValidation: {2, SeverityFatal, RetryUserAction},
	CategoryNotFound:   {3, SeverityError, RetryNever},
	CategoryConfig:     {7, SeverityFatal, RetryUserAction},
	CategoryInternal:   {10, SeverityFatal, RetryNever},
	CategoryBuild:      {11, SeverityFatal, RetryNever},
	CategoryFileSystem: {11, SeverityFatal, RetryNever},
	CategoryRuntime:    {12, SeverityFatal, RetryNever},
}

// ExitCode is the process exit status used for errors of this category.
func (c ErrorCategory) ExitCode() int {
	if info, ok := categories[c]; ok {
		return info.exitCode
	}
	return 1
}
