// Package errors provides the classified error type shared by every docmanual
// package.
//
// A ClassifiedError carries a category, a severity, a retry hint and an
// ordered set of slog attributes describing what failed. Categories map to
// CLI exit codes, severities map to slog levels, and the error renders itself
// as a structured slog group when logged.
//
//	err := errors.FileSystemError("read manual source").
//		WithContext("path", item.SourcePath).
//		WithCause(readErr).
//		Build()
//
// The watch loop retries errors built WithRetry(RetryBackoff); everything
// else fails the build it occurred in.
package errors
