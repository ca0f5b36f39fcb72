package tracker

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"
)

// Timer counts whole elapsed seconds while a live workout is active. It is a
// plain periodic wake-up with no drift correction and no pause state; it
// stops when its context is cancelled or Stop is called.
type Timer struct {
	elapsed atomic.Int64
	cancel  context.CancelFunc
}

// StartTimer starts a timer ticking once per second.
func StartTimer(ctx context.Context) *Timer {
	ctx, cancel := context.WithCancel(ctx)
	t := &Timer{cancel: cancel}

	go func() {
		tick := time.NewTicker(time.Second)
		defer tick.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-tick.C:
				t.elapsed.Add(1)
			}
		}
	}()
	return t
}

// Elapsed returns the seconds counted so far.
func (t *Timer) Elapsed() int {
	return int(t.elapsed.Load())
}

// Stop halts the timer. The elapsed count stays readable afterwards.
func (t *Timer) Stop() {
	t.cancel()
}

// FormatDuration renders a second count as HH:MM:SS.
func FormatDuration(totalSeconds int) string {
	hours := totalSeconds / 3600
	minutes := (totalSeconds % 3600) / 60
	seconds := totalSeconds % 60
	return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds)
}
