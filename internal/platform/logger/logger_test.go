package logger_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/scry-rings/internal/platform/logger"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in     string
		want   slog.Level
		wantOK bool
	}{
		{"debug", slog.LevelDebug, true},
		{"INFO", slog.LevelInfo, true},
		{" warn ", slog.LevelWarn, true},
		{"error", slog.LevelError, true},
		{"verbose", slog.LevelInfo, false},
		{"", slog.LevelInfo, false},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			got, ok := logger.ParseLevel(tc.in)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, tc.wantOK, ok)
		})
	}
}

func TestNewFiltersBelowLevel(t *testing.T) {
	buf := &logger.TestLogBuffer{}
	l := logger.New(buf, "warn")

	l.Info("hidden")
	l.Warn("shown", "stack_id", "geo")

	entries, err := buf.GetLogEntries()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "shown", entries[0]["msg"])
	assert.Equal(t, "geo", entries[0]["stack_id"])
}

func TestNewWarnsOnUnknownLevel(t *testing.T) {
	buf := &logger.TestLogBuffer{}
	l := logger.New(buf, "chatty")

	logger.AssertLogContains(t, buf, "invalid log level configured")
	logger.AssertLogField(t, buf, "configured_level", "chatty")

	l.Debug("dropped at info")
	assert.NotContains(t, buf.String(), "dropped at info")
}

func TestContextLogger(t *testing.T) {
	ctx, buf := logger.NewLogCaptureContext(t)

	logger.FromContext(ctx).Info("from context", "trace_id", "abc")
	logger.AssertLogField(t, buf, "trace_id", "abc")

	fallback := slog.New(slog.NewJSONHandler(&logger.TestLogBuffer{}, nil))
	assert.Same(t, fallback, logger.FromContextOrDefault(context.Background(), fallback))
	assert.NotNil(t, logger.FromContextOrDefault(context.Background(), nil))
	assert.Equal(t, context.Background(), logger.WithLogger(context.Background(), nil))
}
