package errors

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
)

// CLIErrorAdapter reports a command's final error and exits with the code of
// its category.
type CLIErrorAdapter struct {
	verbose bool
	logger  *slog.Logger
	stderr  io.Writer
	exit    func(int)
}

func NewCLIErrorAdapter(verbose bool, logger *slog.Logger) *CLIErrorAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CLIErrorAdapter{verbose: verbose, logger: logger, stderr: os.Stderr, exit: os.Exit}
}

// ExitCodeFor returns 0 for nil, the category code for classified errors
// and 1 otherwise.
func (a *CLIErrorAdapter) ExitCodeFor(err error) int {
	if err == nil {
		return 0
	}
	if classified, ok := AsClassified(err); ok {
		return classified.category.ExitCode()
	}
	return 1
}

// FormatError is the one-line message printed to stderr. Without --verbose
// it shows the message and the offending path, and hides internal errors.
func (a *CLIErrorAdapter) FormatError(err error) string {
	if err == nil {
		return ""
	}
	classified, ok := AsClassified(err)
	switch {
	case !ok:
		return "Error: " + err.Error()
	case a.verbose:
		return "Error: " + classified.Error()
	case classified.category == CategoryInternal:
		return "Internal error occurred (use -v for details)"
	}
	if path, ok := classified.context.GetString("path"); ok {
		return fmt.Sprintf("Error: %s: %s", classified.message, path)
	}
	return "Error: " + classified.message
}

// HandleError logs err when it is fatal (always with --verbose), prints it
// and exits.
func (a *CLIErrorAdapter) HandleError(err error) {
	if err == nil {
		return
	}
	classified, ok := AsClassified(err)
	switch {
	case !ok:
		a.logger.Error("Unclassified error", slog.String("error", err.Error()))
	case a.verbose || classified.IsFatal():
		a.logger.LogAttrs(context.Background(), classified.severity.Level(), classified.message,
			slog.Attr{Key: "error", Value: classified.LogValue()})
	}
	_, _ = fmt.Fprintln(a.stderr, a.FormatError(err))
	a.exit(a.ExitCodeFor(err))
}
