package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContextAttrs(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, FormatJSON, slog.LevelInfo).With("component", "pipeline")

	ctx := WithStage(WithBuildID(context.Background(), "b-123"), "resolve")
	logger.InfoContext(ctx, "resolved")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "b-123", rec["build_id"])
	assert.Equal(t, "resolve", rec["stage"])
	assert.Equal(t, "pipeline", rec["component"])
	assert.Equal(t, "b-123", BuildID(ctx))
}

func TestContextAttrsAbsent(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, FormatText, slog.LevelInfo).Info("plain")
	assert.NotContains(t, buf.String(), "build_id")
	assert.Empty(t, BuildID(context.Background()))
}

func TestWithContextAttrsIdempotent(t *testing.T) {
	h := WithContextAttrs(slog.NewTextHandler(&bytes.Buffer{}, nil))
	assert.Equal(t, h, WithContextAttrs(h))
}
