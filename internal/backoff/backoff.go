// Package backoff computes the delay inserted between upload rounds.
// Delays grow exponentially with optional jitter to spread out retries from
// many concurrent batches hitting the same store.
package backoff

import (
	"context"
	"math"
	"math/rand"
	"time"

	"github.com/input-output-hk/catalyst-forge-libs/blobbatch/blobtypes"
)

// Strategy returns the delay to wait after the given round failed.
type Strategy interface {
	Delay(round int) time.Duration
}

// None never waits between rounds.
type None struct{}

// Delay always returns zero.
func (None) Delay(int) time.Duration { return 0 }

// Exponential implements base * 2^(round-1) with ±Jitter, capped at Max.
//
// Thread Safety: all fields are immutable after construction; math/rand's
// top-level functions are safe for concurrent use.
type Exponential struct {
	base   time.Duration
	max    time.Duration
	jitter float64
}

// New builds a Strategy from cfg. A zero Base yields None.
func New(cfg blobtypes.BackoffConfig) Strategy {
	if cfg.Base <= 0 {
		return None{}
	}

	maxDelay := cfg.Max
	if maxDelay <= 0 || maxDelay < cfg.Base {
		maxDelay = cfg.Base * 8
	}

	jitter := cfg.Jitter
	if jitter < 0 {
		jitter = 0
	}
	if jitter > 1 {
		jitter = 1
	}

	return &Exponential{base: cfg.Base, max: maxDelay, jitter: jitter}
}

// Delay returns the delay to wait after the given round.
func (e *Exponential) Delay(round int) time.Duration {
	if round < 1 {
		round = 1
	}

	// Larger shifts overflow the product
	if round > 31 {
		return e.max
	}
	delay := time.Duration(math.Pow(2, float64(round-1))) * e.base
	if delay <= 0 || delay > e.max {
		delay = e.max
	}

	jitterRange := int64(float64(delay) * e.jitter)
	if jitterRange > 0 {
		delay += time.Duration(rand.Int63n(2*jitterRange) - jitterRange)
	}

	// Cap after jitter so Max is a hard ceiling
	if delay > e.max {
		delay = e.max
	}
	if delay < 0 {
		delay = 0
	}

	return delay
}

// Wait sleeps for d or until ctx is done, whichever comes first.
func Wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
