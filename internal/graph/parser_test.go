package graph

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pagerank-analysis/pkg/errors"
)

func parseString(t *testing.T, input string, opts Options) (*Graph, error) {
	t.Helper()
	return Parse(context.Background(), strings.NewReader(input), opts)
}

func mustParse(t *testing.T, input string, opts Options) *Graph {
	t.Helper()
	g, err := parseString(t, input, opts)
	require.NoError(t, err)
	return g
}

func TestParse_TwoNodeCycle(t *testing.T) {
	g := mustParse(t, "2 2 2\n1 2\n2 1\n", Options{})

	assert.Equal(t, 2, g.Nodes)
	assert.Equal(t, 2, g.Edges)
	assert.Empty(t, g.Dead)
	assert.Equal(t, []int{1}, g.In[0])
	assert.Equal(t, []int{0}, g.In[1])
	assert.Equal(t, []int{1, 1}, g.Out)
}

func TestParse_CommentsSkipped(t *testing.T) {
	input := "%%MatrixMarket matrix coordinate pattern general\n% a comment\n3 3 2\n1 2\n2 3\n"
	g := mustParse(t, input, Options{})

	assert.Equal(t, 3, g.Nodes)
	assert.Equal(t, 2, g.Edges)
	assert.Equal(t, []int{2}, g.Dead)
}

func TestParse_SelfLoopAndDuplicateFiltering(t *testing.T) {
	// Self-loop and duplicate edges are dropped silently.
	g := mustParse(t, "3 3 4\n1 1\n1 2\n1 2\n2 3\n", Options{})

	assert.Equal(t, 2, g.Edges)
	assert.Nil(t, g.In[0])
	assert.Equal(t, []int{0}, g.In[1])
	assert.Equal(t, []int{1}, g.In[2])
	assert.Equal(t, []int{1, 1, 0}, g.Out)
	assert.Equal(t, []int{2}, g.Dead)
}

func TestParse_OutOfRangeEdgesDropped(t *testing.T) {
	g := mustParse(t, "3 3 5\n0 1\n4 2\n1 4\n-1 2\n1 2\n", Options{})

	assert.Equal(t, 1, g.Edges)
	assert.Equal(t, []int{0}, g.In[1])
}

func TestParse_MalformedEdgeLineAborts(t *testing.T) {
	// Three integers on an edge line are malformed, per the format contract.
	_, err := parseString(t, "3 3 2\n1 2\n1 2 3\n", Options{})
	require.Error(t, err)
	assert.True(t, errors.IsParseError(err))
	assert.Contains(t, err.Error(), "line 3")
}

func TestParse_NonNumericEdgeAborts(t *testing.T) {
	_, err := parseString(t, "2 2 1\n1 x\n", Options{})
	require.Error(t, err)
	assert.True(t, errors.IsParseError(err))
	assert.Contains(t, err.Error(), "line 2")
}

func TestParse_EmptyEdgeLineAborts(t *testing.T) {
	_, err := parseString(t, "2 2 2\n1 2\n\n", Options{})
	require.Error(t, err)
	assert.True(t, errors.IsParseError(err))
}

func TestParse_HeaderErrors(t *testing.T) {
	cases := []struct {
		name  string
		input string
	}{
		{"missing header", ""},
		{"only comments", "% nothing else\n"},
		{"two fields", "3 3\n"},
		{"non-numeric", "3 x 3\n"},
		{"rows != cols", "3 4 2\n"},
		{"zero nodes", "0 0 0\n"},
		{"negative edges", "3 3 -1\n"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := parseString(t, tc.input, Options{})
			require.Error(t, err)
			assert.True(t, errors.IsParseError(err))
		})
	}
}

func TestParse_EdgeTotalsConsistent(t *testing.T) {
	input := "5 5 7\n1 2\n2 3\n3 4\n4 5\n5 1\n1 3\n2 4\n"
	g := mustParse(t, input, Options{})

	outTotal := 0
	for _, o := range g.Out {
		outTotal += o
	}
	assert.Equal(t, g.Edges, outTotal)
	assert.Equal(t, g.Edges, g.InDegreeTotal())
}

func TestParse_InListsCanonical(t *testing.T) {
	// Origins arrive out of order and with repeats; in-lists must come out
	// strictly ascending with no self references.
	input := "4 4 6\n3 1\n2 1\n4 1\n2 1\n1 2\n1 2\n"
	g := mustParse(t, input, Options{})

	assert.Equal(t, []int{1, 2, 3}, g.In[0])
	assert.Equal(t, []int{0}, g.In[1])
	assert.Equal(t, 4, g.Edges)

	for i, lst := range g.In {
		for j := 1; j < len(lst); j++ {
			require.Less(t, lst[j-1], lst[j], "in[%d] must be strictly ascending", i)
		}
		for _, origin := range lst {
			require.NotEqual(t, i, origin, "no self-loops may survive")
		}
	}
}

func TestParse_DeadListExhaustive(t *testing.T) {
	g := mustParse(t, "6 6 3\n1 2\n2 3\n5 6\n", Options{})

	want := []int{}
	for i, o := range g.Out {
		if o == 0 {
			want = append(want, i)
		}
	}
	assert.Equal(t, want, g.Dead)
	assert.Equal(t, []int{2, 3, 5}, g.Dead)
}

func TestParse_MoreWorkersThanNodes(t *testing.T) {
	g := mustParse(t, "2 2 2\n1 2\n2 1\n", Options{Workers: 16})

	assert.Equal(t, 2, g.Edges)
	assert.Equal(t, []int{1}, g.In[0])
	assert.Equal(t, []int{0}, g.In[1])
}

func TestParse_Deterministic(t *testing.T) {
	// Parsing the same input twice yields byte-identical canonical dumps,
	// regardless of worker count.
	const n = 200
	rng := rand.New(rand.NewSource(7))

	var sb strings.Builder
	edges := 0
	var lines []string
	for i := 0; i < 1500; i++ {
		a, b := rng.Intn(n)+1, rng.Intn(n)+1
		lines = append(lines, fmt.Sprintf("%d %d", a, b))
		edges++
	}
	fmt.Fprintf(&sb, "%d %d %d\n", n, n, edges)
	sb.WriteString(strings.Join(lines, "\n"))
	sb.WriteString("\n")
	input := sb.String()

	var dumps []string
	for _, workers := range []int{1, 3, 8} {
		g := mustParse(t, input, Options{Workers: workers})
		var out strings.Builder
		require.NoError(t, g.Save(&out))
		dumps = append(dumps, out.String())
	}

	assert.Equal(t, dumps[0], dumps[1])
	assert.Equal(t, dumps[0], dumps[2])
}

func TestParse_DuplicatedInputEquivalent(t *testing.T) {
	// Duplicate edges in the input produce the same graph as the clean input.
	clean := mustParse(t, "3 3 2\n1 2\n2 3\n", Options{})
	noisy := mustParse(t, "3 3 6\n1 2\n1 2\n2 3\n2 3\n2 3\n1 2\n", Options{})

	assert.True(t, clean.Equal(noisy))
}

func TestParse_SmallBuffers(t *testing.T) {
	// A tiny ring forces wrap-around and backpressure on every path.
	input := "4 4 5\n1 2\n2 3\n3 4\n4 1\n1 3\n"
	g := mustParse(t, input, Options{Workers: 2, BufferSize: 4})

	assert.Equal(t, 5, g.Edges)
	assert.Empty(t, g.Dead)
}

func TestParseFile_Missing(t *testing.T) {
	_, err := ParseFile(context.Background(), "/nonexistent/graph.mtx", Options{})
	require.Error(t, err)
	assert.True(t, errors.IsIOError(err))
}
