package host

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingTicker struct {
	calls []string
}

func (c *countingTicker) Update()     { c.calls = append(c.calls, "update") }
func (c *countingTicker) LateUpdate() { c.calls = append(c.calls, "late") }

func TestLoopRunsUntilFrameLimit(t *testing.T) {
	ct := &countingTicker{}
	l := NewLoop(ct, time.Millisecond, nil)
	l.SetMaxFrames(3)

	var frames []uint64
	l.OnFrame(func(f uint64) { frames = append(frames, f) })

	n, err := l.Run(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)
	assert.Equal(t, []uint64{1, 2, 3}, frames)
	assert.Equal(t, []string{"update", "late", "update", "late", "update", "late"}, ct.calls)
}

func TestLoopStopsOnCancel(t *testing.T) {
	l := NewLoop(&countingTicker{}, time.Hour, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	n, err := l.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, n)
}

func TestLoopRejectsNonPositiveRate(t *testing.T) {
	_, err := NewLoop(&countingTicker{}, 0, nil).Run(context.Background())
	assert.ErrorIs(t, err, ErrInvalidRate)
}

func TestFrameOrdersPassesBeforeHooks(t *testing.T) {
	ct := &countingTicker{}
	l := NewLoop(ct, time.Second, nil)
	l.OnFrame(func(uint64) { ct.calls = append(ct.calls, "hook") })
	l.Frame(1)
	assert.Equal(t, []string{"update", "late", "hook"}, ct.calls)
}
