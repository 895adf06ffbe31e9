// Package formatter renders the computation results for standard output.
package formatter

import (
	"fmt"
	"io"

	"github.com/pagerank-analysis/pkg/model"
)

// WriteGraphInfo prints the graph block: node, dead-end and valid arc counts.
func WriteGraphInfo(w io.Writer, s model.GraphSummary) {
	fmt.Fprintf(w, "Number of nodes: %d\n", s.Nodes)
	fmt.Fprintf(w, "Number of dead-end nodes: %d\n", s.DeadEnds)
	fmt.Fprintf(w, "Number of valid arcs: %d\n", s.Edges)
}

// WriteStats prints the convergence line, the rank-mass check and the
// top-ranked nodes. Node ids are 0-based.
func WriteStats(w io.Writer, res *model.Result) {
	if res.Converged {
		fmt.Fprintf(w, "Converged after %d iterations\n", res.Iterations)
	} else {
		fmt.Fprintf(w, "Did not converge after %d iterations\n", res.Iterations)
	}

	fmt.Fprintf(w, "Sum of ranks: %f (should be 1)\n", res.SumRanks)
	fmt.Fprintf(w, "Top %d nodes:\n", len(res.TopK))
	for _, nr := range res.TopK {
		fmt.Fprintf(w, "\t%d\t%f\n", nr.Node, nr.Rank)
	}
}
