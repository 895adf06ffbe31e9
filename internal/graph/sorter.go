package graph

import (
	"sort"
	"sync"

	"github.com/pagerank-analysis/pkg/parallel"
	"github.com/pagerank-analysis/pkg/ringbuf"
)

// sortDedup canonicalizes every in-list: sorted ascending, duplicates
// removed, backing storage shrunk to the surviving length.
//
// Workers own contiguous node intervals. Each duplicate's origin id is
// streamed over a shared back-channel ring; the coordinating goroutine drains
// it, decrementing the duplicate origin's out-degree and the edge total. A
// sentinel per worker marks end-of-stream.
func (g *Graph) sortDedup(part parallel.Partition, bufSize int) {
	back := ringbuf.New(bufSize, 1)

	var wg sync.WaitGroup
	for w := 0; w < part.Workers(); w++ {
		start, end := part.Interval(w)
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := start; j < end; j++ {
				g.dedupList(j, back)
			}
			back.PutSentinel()
		}()
	}

	rec := make([]int, 1)
	remaining := part.Workers()
	for remaining > 0 {
		back.Get(rec)
		if ringbuf.IsSentinel(rec) {
			remaining--
			continue
		}
		g.Out[rec[0]]--
		g.Edges--
	}
	wg.Wait()
}

// dedupList sorts in-list j and compacts distinct origins in place, pushing
// each dropped duplicate onto the back-channel.
func (g *Graph) dedupList(j int, back *ringbuf.Ring) {
	lst := g.In[j]
	if len(lst) == 0 {
		return
	}

	sort.Ints(lst)

	k := 1
	for i := 1; i < len(lst); i++ {
		if lst[i] != lst[i-1] {
			lst[k] = lst[i]
			k++
		} else {
			back.Put(lst[i])
		}
	}

	if k < cap(lst) {
		trimmed := make([]int, k)
		copy(trimmed, lst[:k])
		g.In[j] = trimmed
	} else {
		g.In[j] = lst[:k]
	}
}
