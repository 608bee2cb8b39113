package mirror

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
)

// Gate is a counting admission gate. At most Capacity callers run inside
// Admit at once; waiting callers are not ordered.
type Gate struct {
	sem      *semaphore.Weighted
	capacity int
	inFlight atomic.Int64
	peak     atomic.Int64
}

// NewGate returns a gate with the given capacity (minimum 1).
func NewGate(capacity int) *Gate {
	if capacity < 1 {
		capacity = 1
	}
	return &Gate{sem: semaphore.NewWeighted(int64(capacity)), capacity: capacity}
}

// Admit blocks until a slot is free, runs fn, and releases the slot on every
// exit path, including a panic in fn. It returns ctx.Err() if the context ends
// while waiting, without running fn.
func (g *Gate) Admit(ctx context.Context, fn func(context.Context) error) error {
	if err := g.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	defer g.sem.Release(1)

	n := g.inFlight.Add(1)
	defer g.inFlight.Add(-1)
	for {
		peak := g.peak.Load()
		if n <= peak || g.peak.CompareAndSwap(peak, n) {
			break
		}
	}
	return fn(ctx)
}

// Capacity returns the number of slots.
func (g *Gate) Capacity() int { return g.capacity }

// InFlight returns the number of callers currently admitted.
func (g *Gate) InFlight() int { return int(g.inFlight.Load()) }

// Peak returns the highest InFlight value observed.
func (g *Gate) Peak() int { return int(g.peak.Load()) }
