// Package limiter bounds the number of concurrent expensive operations
// (browser fetches, in practice) and admits queued callers strictly in
// FIFO order.
package limiter

import "context"

// Limiter admits at most Max tasks concurrently. Further calls to Run queue
// in arrival order and are admitted as soon as a slot frees. A task holds
// its slot from the moment it starts executing until Run returns, on every
// exit path — success or failure. A queued caller whose ctx ends before
// admission leaves the queue with ctx.Err() and its task never runs; a task
// that has started is never interrupted by the Limiter, so callers are
// responsible for honouring their own context deadline inside task.
type Limiter struct {
	slots chan struct{}
	// admit serialises queue entry so waiters are granted tokens from
	// slots in the same order they called Run.
	admit chan struct{}
}

// New creates a Limiter that admits at most max concurrent tasks. max is
// clamped to at least 1.
func New(max int) *Limiter {
	if max < 1 {
		max = 1
	}
	l := &Limiter{
		slots: make(chan struct{}, max),
		admit: make(chan struct{}, 1),
	}
	l.admit <- struct{}{}
	for i := 0; i < max; i++ {
		l.slots <- struct{}{}
	}
	return l
}

// Run executes task once a slot is available, releasing the slot when task
// returns regardless of outcome. If ctx is cancelled before a slot becomes
// available, Run returns ctx.Err() without ever invoking task.
func (l *Limiter) Run(ctx context.Context, task func() (any, error)) (any, error) {
	// Take the FIFO ticket: this blocks new arrivals behind earlier ones
	// while each waits for an actual slot, guaranteeing admission order.
	select {
	case <-l.admit:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	var slot struct{}
	select {
	case slot = <-l.slots:
		l.admit <- struct{}{}
	case <-ctx.Done():
		l.admit <- struct{}{}
		return nil, ctx.Err()
	}

	defer func() { l.slots <- slot }()

	return task()
}

// Len reports the configured concurrency bound.
func (l *Limiter) Len() int {
	return cap(l.slots)
}
