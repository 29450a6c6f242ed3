package search

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrSuperseded is returned to a call that a newer call replaced.
var ErrSuperseded = errors.New("superseded")

// Latest debounces calls and lets only the most recent one finish. A new
// call cancels the one before it, whether it is still waiting out the delay
// or already running.
type Latest struct {
	delay time.Duration

	mu     sync.Mutex
	seq    uint64
	cancel context.CancelCauseFunc
}

func NewLatest(delay time.Duration) *Latest {
	return &Latest{delay: delay}
}

// Do waits for the debounce delay, then runs fn unless a newer call arrived.
func (l *Latest) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	cctx, cancel := context.WithCancelCause(ctx)
	l.mu.Lock()
	if l.cancel != nil {
		l.cancel(ErrSuperseded)
	}
	l.seq++
	mine := l.seq
	l.cancel = cancel
	l.mu.Unlock()

	defer func() {
		l.mu.Lock()
		if l.seq == mine {
			l.cancel = nil
		}
		l.mu.Unlock()
		cancel(nil)
	}()

	if l.delay > 0 {
		t := time.NewTimer(l.delay)
		select {
		case <-t.C:
		case <-cctx.Done():
			t.Stop()
			return doneCause(ctx, cctx)
		}
	}
	if err := cctx.Err(); err != nil {
		return doneCause(ctx, cctx)
	}

	err := fn(cctx)
	if cctx.Err() != nil && errors.Is(context.Cause(cctx), ErrSuperseded) {
		return ErrSuperseded
	}
	return err
}

func doneCause(parent, cctx context.Context) error {
	if errors.Is(context.Cause(cctx), ErrSuperseded) {
		return ErrSuperseded
	}
	if err := parent.Err(); err != nil {
		return err
	}
	return cctx.Err()
}
