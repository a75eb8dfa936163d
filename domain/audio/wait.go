package audio

import (
	"context"
	"time"
)

// awaitOrTimeout blocks until done closes, d elapses or ctx ends. It reports
// whether done closed first. A non-positive d waits without a deadline.
func awaitOrTimeout(ctx context.Context, done <-chan struct{}, d time.Duration) bool {
	if done == nil {
		return false
	}
	if d > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d)
		defer cancel()
	}
	select {
	case <-done:
		return true
	case <-ctx.Done():
		// Prefer completion when both are ready.
		select {
		case <-done:
			return true
		default:
			return false
		}
	}
}

// closedChan returns an already closed channel.
func closedChan() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}
