package log

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{
		"debug":   LevelDebug,
		"INFO":    LevelInfo,
		"":        LevelInfo,
		"warning": LevelWarn,
		" error ": LevelError,
	}
	for in, want := range cases {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseLevel("verbose")
	assert.Error(t, err)
}

func TestLoggerFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := NewFromZap(zap.New(core))

	l.With(String("component", "test")).Error("boom",
		Int("n", 3),
		Duration("took", time.Second),
		Error(errors.New("bad")),
	)

	entries := logs.All()
	require.Len(t, entries, 1)
	ctx := entries[0].ContextMap()
	assert.Equal(t, "boom", entries[0].Message)
	assert.Equal(t, "test", ctx["component"])
	assert.EqualValues(t, 3, ctx["n"])
	assert.Equal(t, "bad", ctx["error"])
}

func TestLoggerLevelSharedWithChildren(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := NewFromZap(zap.New(core))
	child := l.Named("child")

	l.SetLevel(LevelWarn)
	child.Info("dropped")
	child.Warn("kept")

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "kept", logs.All()[0].Message)
	assert.Equal(t, LevelWarn, child.GetLevel())
}

func TestNewRejectsUnknownEncoding(t *testing.T) {
	_, err := New(Options{Encoding: "xml"})
	assert.Error(t, err)
}
