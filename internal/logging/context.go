package logging

import (
	"context"
	"log/slog"

	"git.home.luguber.info/inful/sidebargen/internal/logfields"
)

type logContext struct {
	BuildID string
	Stage   string
}

type logContextKeyType struct{}

var logContextKey logContextKeyType

// WithBuildID attaches a build id that every record logged with ctx carries.
func WithBuildID(ctx context.Context, buildID string) context.Context {
	lc := extractLogContext(ctx)
	lc.BuildID = buildID
	return context.WithValue(ctx, logContextKey, lc)
}

// WithStage attaches the current pipeline stage.
func WithStage(ctx context.Context, stage string) context.Context {
	lc := extractLogContext(ctx)
	lc.Stage = stage
	return context.WithValue(ctx, logContextKey, lc)
}

// BuildID returns the build id carried by ctx, if any.
func BuildID(ctx context.Context) string {
	return extractLogContext(ctx).BuildID
}

func extractLogContext(ctx context.Context) logContext {
	if ctx == nil {
		return logContext{}
	}
	if lc, ok := ctx.Value(logContextKey).(logContext); ok {
		return lc
	}
	return logContext{}
}

// contextHandler adds the build id and stage from the record's context.
type contextHandler struct {
	slog.Handler
}

// WithContextAttrs wraps h so records logged through the *Context methods
// carry the build id and stage set with WithBuildID and WithStage.
func WithContextAttrs(h slog.Handler) slog.Handler {
	if _, ok := h.(contextHandler); ok {
		return h
	}
	return contextHandler{Handler: h}
}

func (h contextHandler) Handle(ctx context.Context, r slog.Record) error {
	lc := extractLogContext(ctx)
	if lc.BuildID != "" {
		r.AddAttrs(logfields.BuildID(lc.BuildID))
	}
	if lc.Stage != "" {
		r.AddAttrs(logfields.Stage(lc.Stage))
	}
	return h.Handler.Handle(ctx, r)
}

func (h contextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return contextHandler{Handler: h.Handler.WithAttrs(attrs)}
}

func (h contextHandler) WithGroup(name string) slog.Handler {
	return contextHandler{Handler: h.Handler.WithGroup(name)}
}
