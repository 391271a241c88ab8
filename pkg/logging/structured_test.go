package logging

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newObserved() (*Logger, *bytes.Buffer, *observer.ObservedLogs) {
	var buf bytes.Buffer
	core, logs := observer.New(zapcore.DebugLevel)
	s := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return New(s, zap.New(core)), &buf, logs
}

func TestLogger_DualWrite(t *testing.T) {
	l, buf, logs := newObserved()

	l.WithFields(map[string]interface{}{"component": "test"}).Info("hello", "key", "value")

	assert.Contains(t, buf.String(), `"msg":"hello"`)
	assert.Contains(t, buf.String(), `"component":"test"`)
	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "hello", entry.Message)
	assert.Equal(t, "value", entry.ContextMap()["key"])
	assert.Equal(t, "test", entry.ContextMap()["component"])
}

func TestLogger_DomainHelpers(t *testing.T) {
	l, _, logs := newObserved()
	ctx := context.Background()
	score := 7.25

	l.LogValidation(ctx, "p1", "approve", &score, 12*time.Millisecond)
	l.LogValidation(ctx, "p2", "incomplete", nil, time.Millisecond)
	l.LogAnalyzerFallback(ctx, "U", "timeout")
	l.LogRetry(ctx, "ollama", 2, errors.New("503"))
	l.WithRequestID("r1").LogCircuitBreaker(ctx, "ollama", "closed", "open")

	all := logs.All()
	require.Len(t, all, 5)

	assert.Equal(t, 7.25, all[0].ContextMap()["final_score"])
	assert.NotContains(t, all[1].ContextMap(), "final_score")
	assert.Equal(t, zapcore.WarnLevel, all[2].Level)
	assert.Equal(t, "U", all[2].ContextMap()["criterion"])
	assert.Equal(t, int64(2), all[3].ContextMap()["attempt"])
	assert.Equal(t, "r1", all[4].ContextMap()["request_id"])
	assert.Equal(t, "open", all[4].ContextMap()["to"])
}

func TestParseLevels(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseSlogLevel("debug"))
	assert.Equal(t, slog.LevelInfo, parseSlogLevel("bogus"))
	assert.Equal(t, zapcore.ErrorLevel, parseZapLevel("error").Level())
}

func TestNewLogger(t *testing.T) {
	l, err := NewLogger(Config{Level: "warn", Format: "console", Output: "stderr"})
	require.NoError(t, err)
	assert.NotNil(t, l.Slog())
	assert.NotNil(t, l.Zap())
	_ = l.Sync()
}
