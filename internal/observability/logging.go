// Package observability carries build identity through a context so log
// lines from every stage of a manual build can be correlated.
//
// Callers tag a context with WithBuildID and WithStage and log through the
// standard slog *Context functions; a logger whose handler is wrapped by
// NewHandler adds the tags to every record.
package observability

import (
	"context"
	"log/slog"

	"git.home.luguber.info/inful/docmanual/internal/logfields"
)

// BuildContext identifies the build and stage a log record belongs to.
type BuildContext struct {
	BuildID string
	Stage   string
}

type buildContextKey struct{}

// WithBuildID tags ctx with a build ID.
func WithBuildID(ctx context.Context, buildID string) context.Context {
	bc := FromContext(ctx)
	bc.BuildID = buildID
	return context.WithValue(ctx, buildContextKey{}, bc)
}

// WithStage tags ctx with the current pipeline stage.
func WithStage(ctx context.Context, stage string) context.Context {
	bc := FromContext(ctx)
	bc.Stage = stage
	return context.WithValue(ctx, buildContextKey{}, bc)
}

// FromContext returns the tags stored in ctx, zero when there are none.
func FromContext(ctx context.Context) BuildContext {
	if ctx == nil {
		return BuildContext{}
	}
	bc, _ := ctx.Value(buildContextKey{}).(BuildContext)
	return bc
}

// Attrs returns the non-empty tags as log attributes.
func (bc BuildContext) Attrs() []slog.Attr {
	attrs := make([]slog.Attr, 0, 2)
	if bc.BuildID != "" {
		attrs = append(attrs, logfields.BuildID(bc.BuildID))
	}
	if bc.Stage != "" {
		attrs = append(attrs, logfields.Stage(bc.Stage))
	}
	return attrs
}

// Handler adds the build tags found in a record's context.
type Handler struct {
	next slog.Handler
}

// NewHandler wraps next.
func NewHandler(next slog.Handler) *Handler {
	return &Handler{next: next}
}

func (h *Handler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *Handler) Handle(ctx context.Context, r slog.Record) error {
	if attrs := FromContext(ctx).Attrs(); len(attrs) > 0 {
		r = r.Clone()
		r.AddAttrs(attrs...)
	}
	return h.next.Handle(ctx, r)
}

func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &Handler{next: h.next.WithAttrs(attrs)}
}

func (h *Handler) WithGroup(name string) slog.Handler {
	return &Handler{next: h.next.WithGroup(name)}
}
