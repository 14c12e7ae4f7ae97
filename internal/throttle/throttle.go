// Package throttle paces outbound calls to quota-limited upstream APIs.
package throttle

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Limiter bounds both in-flight concurrency and dispatch frequency.
// Callers block in Acquire until a slot is free and the minimum interval
// since the previous dispatch has elapsed.
type Limiter struct {
	slots chan struct{}
	pacer *rate.Limiter
}

// New creates a Limiter allowing at most maxConcurrent in-flight calls
// and at least minInterval between successive dispatches.
func New(maxConcurrent int, minInterval time.Duration) *Limiter {
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	pacer := rate.NewLimiter(rate.Inf, 1)
	if minInterval > 0 {
		pacer = rate.NewLimiter(rate.Every(minInterval), 1)
	}
	return &Limiter{
		slots: make(chan struct{}, maxConcurrent),
		pacer: pacer,
	}
}

// Acquire blocks until a concurrency slot is available and the dispatch
// pacer permits another call. The caller must Release the slot when the
// call completes. Returns the context error if ctx is done first.
func (l *Limiter) Acquire(ctx context.Context) error {
	select {
	case l.slots <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	if err := l.pacer.Wait(ctx); err != nil {
		<-l.slots
		return err
	}
	return nil
}

// Release frees a slot acquired by Acquire.
func (l *Limiter) Release() {
	<-l.slots
}
