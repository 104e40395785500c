package errors

import "slices"

// ErrorBuilder assembles a ClassifiedError. It starts from the defaults of
// its category.
type ErrorBuilder struct {
	err ClassifiedError
}

// NewError starts an error of category.
func NewError(category ErrorCategory, message string) *ErrorBuilder {
	info, ok := categories[category]
	if !ok {
		info = categoryInfo{severity: SeverityError, retry: RetryNever}
	}
	return &ErrorBuilder{err: ClassifiedError{
		category: category,
		severity: info.severity,
		retry:    info.retry,
		message:  message,
	}}
}

// WrapError starts an error of category caused by err.
func WrapError(err error, category ErrorCategory, message string) *ErrorBuilder {
	return NewError(category, message).WithCause(err)
}

func (b *ErrorBuilder) WithCause(err error) *ErrorBuilder {
	b.err.cause = err
	return b
}

func (b *ErrorBuilder) WithSeverity(severity ErrorSeverity) *ErrorBuilder {
	b.err.severity = severity
	return b
}

func (b *ErrorBuilder) WithRetry(strategy RetryStrategy) *ErrorBuilder {
	b.err.retry = strategy
	return b
}

// WithContext attaches key=value; later values for the same key win.
func (b *ErrorBuilder) WithContext(key string, value any) *ErrorBuilder {
	b.err.context = b.err.context.with(key, value)
	return b
}

func (b *ErrorBuilder) Fatal() *ErrorBuilder   { return b.WithSeverity(SeverityFatal) }
func (b *ErrorBuilder) Warning() *ErrorBuilder { return b.WithSeverity(SeverityWarning) }

// Build returns the error. The builder may be reused; each call returns an
// independent value.
func (b *ErrorBuilder) Build() *ClassifiedError {
	out := b.err
	out.context = slices.Clone(b.err.context)
	return &out
}

func ConfigError(message string) *ErrorBuilder     { return NewError(CategoryConfig, message) }
func ValidationError(message string) *ErrorBuilder { return NewError(CategoryValidation, message) }
func NotFoundError(message string) *ErrorBuilder   { return NewError(CategoryNotFound, message) }
func BuildError(message string) *ErrorBuilder      { return NewError(CategoryBuild, message) }
func FileSystemError(message string) *ErrorBuilder { return NewError(CategoryFileSystem, message) }
func RuntimeError(message string) *ErrorBuilder    { return NewError(CategoryRuntime, message) }
func InternalError(message string) *ErrorBuilder   { return NewError(CategoryInternal, message) }
