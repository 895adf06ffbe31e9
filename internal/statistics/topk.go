// Package statistics selects and summarizes rank vectors.
package statistics

import "github.com/pagerank-analysis/pkg/model"

// Sum returns the total mass of the rank vector.
func Sum(ranks []float64) float64 {
	total := 0.0
	for _, r := range ranks {
		total += r
	}
	return total
}

// TopK returns the k highest-ranked nodes in descending rank order, ties
// broken by the lowest node id.
//
// It performs k repeated maximum scans, masking each winner with -1 (ranks
// are non-negative) and restoring the originals afterwards. For the small k
// this tool prints, that beats sorting the whole vector.
func TopK(ranks []float64, k int) []model.NodeRank {
	if k > len(ranks) {
		k = len(ranks)
	}
	if k <= 0 {
		return nil
	}

	selected := make([]model.NodeRank, 0, k)
	for i := 0; i < k; i++ {
		maxIdx := 0
		for j := 1; j < len(ranks); j++ {
			if ranks[j] > ranks[maxIdx] {
				maxIdx = j
			}
		}
		selected = append(selected, model.NodeRank{Node: maxIdx, Rank: ranks[maxIdx]})
		ranks[maxIdx] = -1
	}

	for _, nr := range selected {
		ranks[nr.Node] = nr.Rank
	}
	return selected
}
