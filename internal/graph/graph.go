// Package graph builds the in-memory representation of a directed graph from
// a Matrix-Market coordinate file.
//
// Ingestion runs in two parallel stages. The first streams edge records
// through per-worker ring buffers, sharded by destination node so each
// in-list has exactly one writer. The second sorts and deduplicates every
// in-list in place, reporting dropped duplicates back to the coordinating
// goroutine so the out-degree vector and edge total stay consistent.
package graph

import (
	"bufio"
	"fmt"
	"io"
)

// DefaultInListCap is the initial capacity of a node's in-list.
const DefaultInListCap = 300

// Graph is the adjacency representation produced by Parse. It is mutated
// only during ingestion and is safe for concurrent reads afterwards.
type Graph struct {
	// Nodes is the node count; ids are 0..Nodes-1.
	Nodes int
	// Edges counts the valid edges that survived filtering and dedup.
	Edges int
	// In holds, per node, the sorted duplicate-free list of origins with an
	// edge into it. A nil slice means no incoming edges.
	In [][]int
	// Out holds the out-degree of each node.
	Out []int
	// Dead lists the nodes with zero out-degree, in ascending order.
	Dead []int

	inListCap int
}

// newGraph allocates a graph for the declared node and edge counts.
func newGraph(nodes, edges, inListCap int) *Graph {
	if inListCap < 1 {
		inListCap = DefaultInListCap
	}
	return &Graph{
		Nodes:     nodes,
		Edges:     edges,
		In:        make([][]int, nodes),
		Out:       make([]int, nodes),
		inListCap: inListCap,
	}
}

// pushIn appends origin to the in-list of dest. Callers must guarantee a
// single writer per destination; the parser's sharding does.
func (g *Graph) pushIn(dest, origin int) {
	lst := g.In[dest]
	if lst == nil {
		lst = make([]int, 0, g.inListCap)
	}
	g.In[dest] = append(lst, origin)
}

// buildDeadList materializes the dead-end node list from the out-degrees.
func (g *Graph) buildDeadList() {
	g.Dead = g.Dead[:0]
	for i, out := range g.Out {
		if out == 0 {
			g.Dead = append(g.Dead, i)
		}
	}
}

// InDegreeTotal returns the sum of all in-list lengths. After ingestion it
// equals both Edges and the sum of out-degrees.
func (g *Graph) InDegreeTotal() int {
	total := 0
	for _, lst := range g.In {
		total += len(lst)
	}
	return total
}

// Save writes a deterministic textual dump of the graph. In-lists are sorted
// during ingestion, so two equivalent graphs produce byte-identical dumps.
// Node ids in the dump are 0-based.
func (g *Graph) Save(w io.Writer) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "%% nodes=%d edges=%d dead=%d\n", g.Nodes, g.Edges, len(g.Dead))
	fmt.Fprintf(bw, "%d %d %d\n", g.Nodes, g.Nodes, g.Edges)
	for dest, lst := range g.In {
		for _, origin := range lst {
			fmt.Fprintf(bw, "%d %d\n", origin, dest)
		}
	}
	for _, node := range g.Dead {
		fmt.Fprintf(bw, "%d\n", node)
	}

	return bw.Flush()
}

// Equal reports whether two graphs have identical canonical representations.
func (g *Graph) Equal(other *Graph) bool {
	if other == nil || g.Nodes != other.Nodes || g.Edges != other.Edges {
		return false
	}
	if len(g.Dead) != len(other.Dead) {
		return false
	}
	for i, d := range g.Dead {
		if other.Dead[i] != d {
			return false
		}
	}
	for i := range g.Out {
		if g.Out[i] != other.Out[i] {
			return false
		}
	}
	for i := range g.In {
		if len(g.In[i]) != len(other.In[i]) {
			return false
		}
		for j, v := range g.In[i] {
			if other.In[i][j] != v {
				return false
			}
		}
	}
	return true
}
