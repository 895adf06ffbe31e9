package progress

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/pagerank-analysis/pkg/utils"
)

// Reporter answers SIGUSR1 with a snapshot of the computation: the current
// iteration and the highest-ranked node so far. SIGUSR2 shuts it down.
//
// The Go runtime delivers notified signals to whichever goroutine services
// the channel, so no per-thread signal masking is needed; the reporter
// goroutine is the only consumer.
type Reporter struct {
	state  *State
	out    io.Writer
	logger utils.Logger
	sigCh  chan os.Signal
	quit   chan struct{}
	done   chan struct{}
}

// NewReporter creates a reporter observing the given state. Output goes to
// out, typically stderr, so it never interleaves with the result block.
func NewReporter(state *State, out io.Writer, logger utils.Logger) *Reporter {
	if logger == nil {
		logger = utils.NopLogger()
	}
	return &Reporter{
		state:  state,
		out:    out,
		logger: logger,
		sigCh:  make(chan os.Signal, 1),
		quit:   make(chan struct{}),
		done:   make(chan struct{}),
	}
}

// Start subscribes to SIGUSR1/SIGUSR2 and launches the reporting goroutine.
func (r *Reporter) Start() {
	signal.Notify(r.sigCh, syscall.SIGUSR1, syscall.SIGUSR2)
	r.logger.Debug("signal reporter started (SIGUSR1 prints progress)")
	go r.loop()
}

// Stop unsubscribes and waits for the reporting goroutine to exit.
func (r *Reporter) Stop() {
	signal.Stop(r.sigCh)
	close(r.quit)
	<-r.done
	r.logger.Debug("signal reporter stopped")
}

func (r *Reporter) loop() {
	defer close(r.done)
	for {
		select {
		case sig := <-r.sigCh:
			if sig == syscall.SIGUSR2 {
				return
			}
			r.report()
		case <-r.quit:
			return
		}
	}
}

func (r *Reporter) report() {
	r.state.Observe(func(iteration int, ranks []float64) {
		switch {
		case iteration == 0:
			fmt.Fprintln(r.out, "pagerank computation not yet started (parsing graph)")
		case ranks == nil:
			fmt.Fprintln(r.out, "pagerank computation completed")
		default:
			top := argMax(ranks)
			fmt.Fprintf(r.out, "iteration %d\ttop node %d\trank %f\n", iteration, top, ranks[top])
		}
	})
}

// argMax returns the index of the largest value, ties to the lowest index.
func argMax(vals []float64) int {
	idx := 0
	for i := 1; i < len(vals); i++ {
		if vals[i] > vals[idx] {
			idx = i
		}
	}
	return idx
}
