package utils

import (
	"sync"
	"time"
)

// Timer measures named phases of one run and reports them at debug level.
// Phases are reported in the order they were first started. Safe for
// concurrent use.
type Timer struct {
	mu     sync.Mutex
	label  string
	begun  time.Time
	phases []*phase
	now    func() time.Time // swapped out by tests
}

type phase struct {
	name    string
	started time.Time
	elapsed time.Duration
	stopped bool
}

// NewTimer creates a Timer labelled with the run it measures.
func NewTimer(label string) *Timer {
	t := &Timer{label: label, now: time.Now}
	t.begun = t.now()
	return t
}

// StartPhase begins (or restarts) the named phase.
func (t *Timer) StartPhase(name string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if p := t.lookup(name); p != nil {
		p.started = t.now()
		p.stopped = false
		return
	}
	t.phases = append(t.phases, &phase{name: name, started: t.now()})
}

// StopPhase ends the named phase and returns its duration. Stopping an
// unknown or already stopped phase is a no-op.
func (t *Timer) StopPhase(name string) time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()

	p := t.lookup(name)
	if p == nil || p.stopped {
		return 0
	}
	p.elapsed = t.now().Sub(p.started)
	p.stopped = true
	return p.elapsed
}

// PhaseDuration returns the recorded duration of a stopped phase.
func (t *Timer) PhaseDuration(name string) time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()

	if p := t.lookup(name); p != nil && p.stopped {
		return p.elapsed
	}
	return 0
}

// Total returns the time elapsed since the timer was created.
func (t *Timer) Total() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.now().Sub(t.begun)
}

// Report logs every stopped phase and the running total.
func (t *Timer) Report(log Logger) {
	if log == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, p := range t.phases {
		if p.stopped {
			log.Debug("%s: %s took %.6f sec", t.label, p.name, p.elapsed.Seconds())
		}
	}
	log.Debug("%s: total %.6f sec", t.label, t.now().Sub(t.begun).Seconds())
}

// lookup finds a phase by name; callers hold the lock. The handful of phases
// a run records makes a linear scan the right tool.
func (t *Timer) lookup(name string) *phase {
	for _, p := range t.phases {
		if p.name == name {
			return p
		}
	}
	return nil
}
