package parallel

import "sync"

// Barrier is a reusable rendezvous for a fixed set of workers.
//
// Await blocks until all parties have arrived, then releases them together
// and re-arms for the next cycle, so one Barrier serves every iteration of an
// alternating two-phase computation. The contribute callback runs under the
// barrier mutex for every arriving worker; the commit callback runs under the
// same mutex in the last arriver only, before the others resume. Per-iteration
// bookkeeping (accumulator folding, convergence decision, vector swap) belongs
// in commit.
type Barrier struct {
	mu      sync.Mutex
	cond    *sync.Cond
	parties int
	waiting int
	cycle   uint64
}

// NewBarrier creates a barrier for the given number of parties.
func NewBarrier(parties int) *Barrier {
	if parties < 1 {
		panic("parallel: barrier needs at least one party")
	}
	b := &Barrier{parties: parties}
	b.cond = sync.NewCond(&b.mu)
	return b
}

// Await blocks until all parties have called it for the current cycle.
// Either callback may be nil.
//
// The last arriver resets the waiter count itself: a resumed waiter never
// touches it, so a fast worker reaching the next Await cannot observe a
// stale count from the cycle it just left.
func (b *Barrier) Await(contribute, commit func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if contribute != nil {
		contribute()
	}

	b.waiting++
	if b.waiting == b.parties {
		if commit != nil {
			commit()
		}
		b.waiting = 0
		b.cycle++
		b.cond.Broadcast()
		return
	}

	cycle := b.cycle
	for cycle == b.cycle {
		b.cond.Wait()
	}
}
