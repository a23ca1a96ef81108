package logger

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithContextRoundTrip(t *testing.T) {
	l := New(io.Discard, slog.LevelInfo)
	ctx := WithContext(context.Background(), l)
	assert.Same(t, l, FromContext(ctx))
}

func TestFromContextFallsBackToDefault(t *testing.T) {
	assert.Same(t, slog.Default(), FromContext(context.Background()))
}

func TestNewEmitsJSON(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, slog.LevelDebug)
	l.Debug("checking output shape", "key", "value")
	require.Contains(t, buf.String(), `"key":"value"`)
	assert.Contains(t, buf.String(), `"level":"DEBUG"`)
}
