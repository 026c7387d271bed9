package injector

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/lifecycle/internal/config"
)

func TestInitializeRuntimeWithoutDiagnostics(t *testing.T) {
	cfg := config.Default()
	cfg.Loop.TickRate = time.Millisecond
	cfg.Loop.MaxFrames = 2

	rt, err := InitializeRuntime(cfg)
	require.NoError(t, err)
	assert.Nil(t, rt.Diagnostics)
	require.NotNil(t, rt.Manager)

	frames, err := rt.Loop.Run(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 2, frames)
	assert.EqualValues(t, 2, rt.Manager.Stats().Frames)
}

func TestInitializeRuntimePublishesSnapshots(t *testing.T) {
	cfg := config.Default()
	cfg.Diagnostics.Enabled = true
	cfg.Diagnostics.PublishEvery = 1

	rt, err := InitializeRuntime(cfg)
	require.NoError(t, err)
	require.NotNil(t, rt.Diagnostics)

	rt.Loop.Frame(1)
	snap, ok := rt.Diagnostics.Latest()
	require.True(t, ok)
	assert.EqualValues(t, 1, snap.Stats.Frames)
}

func TestInitializeRuntimeRejectsBadLogEncoding(t *testing.T) {
	cfg := config.Default()
	cfg.Log.Encoding = "yaml"
	_, err := InitializeRuntime(cfg)
	assert.Error(t, err)
}
