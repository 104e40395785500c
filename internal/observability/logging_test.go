package observability

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	h := NewHandler(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))
	return slog.New(h), &buf
}

func TestWithBuildIDAndStage(t *testing.T) {
	ctx := WithStage(WithBuildID(context.Background(), "build-123"), "assemble")

	bc := FromContext(ctx)
	require.Equal(t, "build-123", bc.BuildID)
	require.Equal(t, "assemble", bc.Stage)

	ctx = WithStage(ctx, "emit")
	require.Equal(t, BuildContext{BuildID: "build-123", Stage: "emit"}, FromContext(ctx))
	require.Equal(t, BuildContext{}, FromContext(context.Background()))
	require.Empty(t, BuildContext{}.Attrs())
}

func TestHandlerAddsContextTags(t *testing.T) {
	logger, buf := newTestLogger()
	ctx := WithStage(WithBuildID(context.Background(), "b-1"), "emit")

	logger.InfoContext(ctx, "Emitted", slog.Int("pages", 3))
	out := buf.String()
	require.Contains(t, out, "msg=Emitted pages=3 build_id=b-1 stage=emit")

	buf.Reset()
	logger.WarnContext(context.Background(), "Bare")
	require.NotContains(t, buf.String(), "build_id")

	buf.Reset()
	logger.DebugContext(ctx, "Hidden")
	require.Empty(t, buf.String())
}

func TestHandlerKeepsWithAttrsAndGroups(t *testing.T) {
	logger, buf := newTestLogger()
	ctx := WithBuildID(context.Background(), "b-2")

	logger.With(slog.String("cmd", "watch")).WithGroup("rebuild").ErrorContext(ctx, "boom", slog.Int("attempt", 2))
	out := buf.String()
	require.Contains(t, out, "cmd=watch")
	require.Contains(t, out, "rebuild.attempt=2")
	require.Contains(t, out, "rebuild.build_id=b-2")
}
