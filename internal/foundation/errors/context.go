package errors

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"
)

// ErrorContext is the ordered set of attributes attached to an error.
// Setting an existing key replaces its value in place.
type ErrorContext []slog.Attr

func (c ErrorContext) with(key string, value any) ErrorContext {
	next := slices.Clone(c)
	for i := range next {
		if next[i].Key == key {
			next[i].Value = slog.AnyValue(value)
			return next
		}
	}
	return append(next, slog.Any(key, value))
}

// Get returns the value stored under key.
func (c ErrorContext) Get(key string) (any, bool) {
	for _, a := range c {
		if a.Key == key {
			return a.Value.Any(), true
		}
	}
	return nil, false
}

// GetString returns the value stored under key when it is a string.
func (c ErrorContext) GetString(key string) (string, bool) {
	for _, a := range c {
		if a.Key == key && a.Value.Kind() == slog.KindString {
			return a.Value.String(), true
		}
	}
	return "", false
}

func (c ErrorContext) String() string {
	var sb strings.Builder
	for _, a := range c {
		fmt.Fprintf(&sb, " %s=%v", a.Key, a.Value.Any())
	}
	return sb.String()
}
