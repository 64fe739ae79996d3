package browser

import (
	"context"
	"math/rand"
	"time"
)

// RandomDelay waits for a random duration between minMs and maxMs milliseconds,
// returning early with ctx.Err() if ctx is cancelled.
func RandomDelay(ctx context.Context, minMs, maxMs int) error {
	if maxMs <= 0 {
		return ctx.Err()
	}
	duration := time.Duration(minMs) * time.Millisecond
	if maxMs > minMs {
		duration = time.Duration(rand.Intn(maxMs-minMs+1)+minMs) * time.Millisecond
	}

	timer := time.NewTimer(duration)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
