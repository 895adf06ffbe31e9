// Package progress holds the shared state through which the rank engine
// publishes its progress, and the signal-driven reporter that observes it.
package progress

import "sync"

// State is the handle shared between the rank engine and the reporter.
//
// The engine publishes, after every iteration, the iteration count and the
// most recently completed rank vector. A nil vector with a non-zero iteration
// means the computation finished; iteration zero means it has not started
// (the graph is still being parsed). All access goes through the internal
// mutex: the engine swaps its vectors while publishing, so a reader outside
// Observe could scan a buffer the next iteration is overwriting.
type State struct {
	mu        sync.Mutex
	iteration int
	ranks     []float64
}

// NewState creates an empty progress state.
func NewState() *State {
	return &State{}
}

// Advance publishes the rank vector produced by the given iteration.
func (s *State) Advance(iteration int, ranks []float64) {
	s.mu.Lock()
	s.iteration = iteration
	s.ranks = ranks
	s.mu.Unlock()
}

// Complete marks the computation finished after the given iteration.
func (s *State) Complete(iteration int) {
	s.mu.Lock()
	s.iteration = iteration
	s.ranks = nil
	s.mu.Unlock()
}

// Observe calls f with the current iteration and rank vector while holding
// the state mutex. f must not retain the slice.
func (s *State) Observe(f func(iteration int, ranks []float64)) {
	s.mu.Lock()
	f(s.iteration, s.ranks)
	s.mu.Unlock()
}
