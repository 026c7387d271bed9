// Package host drives a lifecycle manager from a fixed-rate frame loop.
package host

import (
	"context"
	"errors"
	"time"

	"github.com/zeusync/lifecycle/internal/core/observability/log"
)

var ErrInvalidRate = errors.New("tick rate must be positive")

// Ticker is the per-frame surface of lifecycle.Manager.
type Ticker interface {
	Update()
	LateUpdate()
}

// FrameFunc runs on the loop goroutine after each frame's LateUpdate.
type FrameFunc func(frame uint64)

type Loop struct {
	ticker    Ticker
	rate      time.Duration
	maxFrames uint64
	onFrame   []FrameFunc
	logger    log.Log
}

func NewLoop(ticker Ticker, rate time.Duration, logger log.Log) *Loop {
	if logger == nil {
		logger = log.NewNop()
	}
	return &Loop{ticker: ticker, rate: rate, logger: logger.Named("loop")}
}

// SetMaxFrames makes Run return after n frames. Zero means no limit.
func (l *Loop) SetMaxFrames(n uint64) {
	l.maxFrames = n
}

func (l *Loop) OnFrame(fn FrameFunc) {
	if fn != nil {
		l.onFrame = append(l.onFrame, fn)
	}
}

// Frame runs one Update/LateUpdate pair followed by the frame hooks.
func (l *Loop) Frame(frame uint64) {
	l.ticker.Update()
	l.ticker.LateUpdate()
	for _, fn := range l.onFrame {
		fn(frame)
	}
}

// Run ticks until ctx is done or the frame limit is reached. It returns the
// number of frames run, and ctx.Err() when cancelled.
func (l *Loop) Run(ctx context.Context) (uint64, error) {
	if l.rate <= 0 {
		return 0, ErrInvalidRate
	}
	t := time.NewTicker(l.rate)
	defer t.Stop()

	l.logger.Info("frame loop started", log.Duration("rate", l.rate), log.Uint64("max_frames", l.maxFrames))

	var frames uint64
	for {
		select {
		case <-ctx.Done():
			l.logger.Info("frame loop stopped", log.Uint64("frames", frames))
			return frames, ctx.Err()
		case <-t.C:
			frames++
			start := time.Now()
			l.Frame(frames)
			if took := time.Since(start); took > l.rate {
				l.logger.Warn("frame overran tick rate",
					log.Uint64("frame", frames),
					log.Duration("took", took),
					log.Duration("rate", l.rate),
				)
			}
			if l.maxFrames > 0 && frames >= l.maxFrames {
				l.logger.Info("frame loop reached frame limit", log.Uint64("frames", frames))
				return frames, nil
			}
		}
	}
}
