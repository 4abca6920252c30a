package logging

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newObservedZap(t *testing.T) (*ZapLogger, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	return NewZapLogger(zap.New(core)), logs
}

func TestZapLogger_Levels(t *testing.T) {
	log, logs := newObservedZap(t)
	ctx := context.Background()

	log.Debug(ctx, "dbg", "a", 1)
	log.Info(ctx, "inf", "b", 2)
	log.Warn(ctx, "wrn", "c", 3)
	log.Error(ctx, "err", "d", errors.New("boom"))

	entries := logs.All()
	require.Len(t, entries, 4)
	assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
	assert.Equal(t, "inf", entries[1].Message)
	assert.Equal(t, int64(2), entries[1].ContextMap()["b"])
	assert.Equal(t, zapcore.WarnLevel, entries[2].Level)
	assert.Equal(t, "boom", entries[3].ContextMap()["d"])
}

func TestZapLogger_WithAndOddArgs(t *testing.T) {
	log, logs := newObservedZap(t)

	log.With("module", "fetcher").Info(context.Background(), "hello", "dangling")

	entries := logs.All()
	require.Len(t, entries, 1)
	ctxMap := entries[0].ContextMap()
	assert.Equal(t, "fetcher", ctxMap["module"])
	assert.Equal(t, "dangling", ctxMap["!BADKEY"])
}

func TestNew_SelectsBackend(t *testing.T) {
	_, isZap := New(Options{Format: FormatZap}).(*ZapLogger)
	assert.True(t, isZap)

	_, isSlog := New(Options{Format: FormatJSON}).(*SlogLogger)
	assert.True(t, isSlog)

	_, isSlog = New(Options{Format: "whatever"}).(*SlogLogger)
	assert.True(t, isSlog)
}

func TestZapLogger_ContextAttrs(t *testing.T) {
	log, logs := newObservedZap(t)

	ctx := ContextWith(context.Background(), "request_id", "r1")
	log.Warn(ctx, "challenge answer rejected", "op", "upload")

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "r1", entries[0].ContextMap()["request_id"])
	assert.Equal(t, "upload", entries[0].ContextMap()["op"])
}
