// Package engine implements the parallel PageRank power iteration.
//
// Each iteration runs in two phases separated by a barrier. Phase Y turns the
// previous rank vector into per-node contributions X_prev[i]/out[i], so that
// phase X only ever reads Y and never another node's X — no per-node locking
// in the hot loop. The last worker through the X barrier folds the local
// error and dangling-mass accumulators, decides convergence, swaps the rank
// vectors and publishes the iteration through the shared progress state.
package engine

import (
	"math"
	"sync"

	"github.com/pagerank-analysis/internal/graph"
	"github.com/pagerank-analysis/internal/progress"
	"github.com/pagerank-analysis/pkg/errors"
	"github.com/pagerank-analysis/pkg/parallel"
	"github.com/pagerank-analysis/pkg/utils"
)

// Config holds the engine parameters.
type Config struct {
	// Damping is the probability of following an edge rather than
	// teleporting. Must lie in (0,1).
	Damping float64
	// Epsilon is the L1 convergence threshold. Must be positive.
	Epsilon float64
	// MaxIter bounds the iteration count.
	MaxIter int
	// Workers is the pool size, clamped to the node count.
	Workers int
}

// DefaultConfig returns the default engine parameters.
func DefaultConfig() Config {
	return Config{
		Damping: 0.9,
		Epsilon: 1e-7,
		MaxIter: 100,
		Workers: 3,
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.Damping <= 0 || c.Damping >= 1 {
		return errors.Newf(errors.CodeInvalidInput, "damping factor must be in (0,1), got %g", c.Damping)
	}
	if c.Epsilon <= 0 {
		return errors.Newf(errors.CodeInvalidInput, "epsilon must be positive, got %g", c.Epsilon)
	}
	if c.MaxIter < 1 {
		return errors.Newf(errors.CodeInvalidInput, "max iterations must be positive, got %d", c.MaxIter)
	}
	if c.Workers < 1 {
		return errors.Newf(errors.CodeInvalidInput, "worker count must be positive, got %d", c.Workers)
	}
	return nil
}

// shared is the engine state the workers coordinate on. Mutable fields are
// written only inside barrier callbacks, which run under the barrier mutex;
// workers read them between barriers, when no commit can be in flight.
type shared struct {
	xPrev []float64
	xCurr []float64
	y     []float64

	dangling     float64 // dead-end mass of the previous iteration
	danglingNext float64
	err          float64
	iter         int
	exit         bool

	result []float64
}

// Run executes the damped power iteration over g and returns the final rank
// vector together with the number of completed iterations. The computation
// converged if that count is below cfg.MaxIter.
//
// state may be nil when no progress reporting is wanted.
func Run(g *graph.Graph, cfg Config, state *progress.State, logger utils.Logger) ([]float64, int, error) {
	if err := cfg.Validate(); err != nil {
		return nil, 0, err
	}
	if g == nil || g.Nodes < 1 {
		return nil, 0, errors.New(errors.CodeInvalidInput, "empty graph")
	}
	if logger == nil {
		logger = utils.NopLogger()
	}
	if state == nil {
		state = progress.NewState()
	}

	n := g.Nodes
	initial := 1.0 / float64(n)

	sh := &shared{
		xPrev:    make([]float64, n),
		xCurr:    make([]float64, n),
		y:        make([]float64, n),
		dangling: float64(len(g.Dead)) * initial,
	}
	for i := 0; i < n; i++ {
		sh.xPrev[i] = initial
		sh.xCurr[i] = initial
	}

	part := parallel.NewPartition(n, cfg.Workers)
	barrier := parallel.NewBarrier(part.Workers())

	logger.Debug("pagerank: %d nodes, %d workers, damping %g, epsilon %g, max %d iterations",
		n, part.Workers(), cfg.Damping, cfg.Epsilon, cfg.MaxIter)

	var wg sync.WaitGroup
	for w := 0; w < part.Workers(); w++ {
		start, end := part.Interval(w)
		wg.Add(1)
		go func() {
			defer wg.Done()
			iterate(g, cfg, sh, barrier, state, start, end)
		}()
	}
	wg.Wait()

	logger.Debug("pagerank: finished after %d iterations", sh.iter)

	return sh.result, sh.iter, nil
}

// iterate is the per-worker loop over the node interval [start, end).
func iterate(g *graph.Graph, cfg Config, sh *shared, barrier *parallel.Barrier, state *progress.State, start, end int) {
	n := g.Nodes
	teleport := (1.0 - cfg.Damping) / float64(n)
	danglingScale := cfg.Damping / float64(n)

	for {
		xPrev, xCurr, y := sh.xPrev, sh.xCurr, sh.y

		// Phase Y: pre-scale the contributions of this interval. Dead-end
		// entries stay zero for the whole run.
		for i := start; i < end; i++ {
			if g.Out[i] > 0 {
				y[i] = xPrev[i] / float64(g.Out[i])
			}
		}

		barrier.Await(nil, nil)

		// Phase X: every read goes through y, so intervals are independent.
		danglingMass := sh.dangling
		localErr := 0.0
		localDangling := 0.0
		for j := start; j < end; j++ {
			sum := 0.0
			for _, i := range g.In[j] {
				sum += y[i]
			}
			v := teleport + cfg.Damping*sum + danglingScale*danglingMass
			xCurr[j] = v

			if g.Out[j] == 0 {
				localDangling += v
			}
			localErr += math.Abs(v - xPrev[j])
		}

		barrier.Await(
			func() {
				sh.err += localErr
				sh.danglingNext += localDangling
			},
			func() {
				sh.iter++
				if sh.err < cfg.Epsilon || sh.iter == cfg.MaxIter {
					sh.exit = true
				}
				sh.dangling = sh.danglingNext
				sh.danglingNext = 0
				sh.err = 0

				// The freshest vector becomes the previous one for the next
				// iteration, and is what the reporter may observe. The swap
				// and the publication are atomic with respect to observers:
				// Advance and Complete hold the progress mutex.
				sh.xPrev, sh.xCurr = sh.xCurr, sh.xPrev
				if sh.exit {
					sh.result = sh.xPrev
					state.Complete(sh.iter)
				} else {
					state.Advance(sh.iter, sh.xPrev)
				}
			},
		)

		// exit is written only by the commit above; the barrier orders the
		// write before every worker's resumption.
		if sh.exit {
			return
		}
	}
}
