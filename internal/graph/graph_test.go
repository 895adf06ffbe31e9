package graph

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pagerank-analysis/pkg/parallel"
	"github.com/pagerank-analysis/pkg/ringbuf"
)

func TestGraph_PushInGrows(t *testing.T) {
	g := newGraph(2, 0, 2)

	for i := 0; i < 10; i++ {
		g.pushIn(0, i)
	}
	assert.Len(t, g.In[0], 10)
	assert.Nil(t, g.In[1])
}

func TestGraph_Save(t *testing.T) {
	g := newGraph(3, 2, 4)
	g.pushIn(1, 0)
	g.pushIn(2, 1)
	g.buildDeadList()

	var sb strings.Builder
	require.NoError(t, g.Save(&sb))

	out := sb.String()
	assert.Contains(t, out, "3 3 2\n")
	assert.Contains(t, out, "0 1\n")
	assert.Contains(t, out, "1 2\n")
}

func TestGraph_Equal(t *testing.T) {
	build := func() *Graph {
		g := newGraph(3, 2, 4)
		g.pushIn(1, 0)
		g.pushIn(2, 1)
		g.Out[0] = 1
		g.Out[1] = 1
		g.buildDeadList()
		return g
	}

	a, b := build(), build()
	assert.True(t, a.Equal(b))

	b.Edges = 1
	assert.False(t, a.Equal(b))

	c := build()
	c.In[1] = []int{2}
	assert.False(t, a.Equal(c))

	assert.False(t, a.Equal(nil))
}

func TestDedupList_ReportsDuplicateOrigins(t *testing.T) {
	g := newGraph(1, 5, 8)
	g.In[0] = []int{4, 2, 4, 2, 4}

	back := ringbuf.New(8, 1)
	g.dedupList(0, back)

	assert.Equal(t, []int{2, 4}, g.In[0])

	// Three duplicates dropped: 2 once, 4 twice.
	counts := map[int]int{}
	rec := make([]int, 1)
	for i := 0; i < 3; i++ {
		back.Get(rec)
		counts[rec[0]]++
	}
	assert.Equal(t, map[int]int{2: 1, 4: 2}, counts)
}

func TestSortDedup_AdjustsOutDegrees(t *testing.T) {
	g := newGraph(3, 4, 8)
	// Edges: 0->1 twice, 1->2 twice (pre-dedup state after the read phase).
	g.In[1] = []int{0, 0}
	g.In[2] = []int{1, 1}
	g.Out[0] = 2
	g.Out[1] = 2

	g.sortDedup(parallel.NewPartition(3, 2), 8)
	g.buildDeadList()

	assert.Equal(t, 2, g.Edges)
	assert.Equal(t, []int{1, 1, 0}, g.Out)
	assert.Equal(t, []int{0}, g.In[1])
	assert.Equal(t, []int{1}, g.In[2])
	assert.Equal(t, []int{2}, g.Dead)
}
