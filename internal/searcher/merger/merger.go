// Package merger orders hits and keeps the top k.
package merger

import (
	"container/heap"
	"sort"

	"github.com/Adithya-Monish-Kumar-K/linux-command-library/internal/searcher/ranker"
)

// Merge combines hit lists into one ranked list of at most limit hits.
// A limit of zero or less keeps every hit.
func Merge(lists [][]ranker.Hit, limit int) []ranker.Hit {
	if limit <= 0 {
		var all []ranker.Hit
		for _, hits := range lists {
			all = append(all, hits...)
		}
		sort.Slice(all, func(i, j int) bool {
			return ranker.Before(all[i], all[j])
		})
		if all == nil {
			all = []ranker.Hit{}
		}
		return all
	}
	h := &hitHeap{}
	heap.Init(h)
	for _, hits := range lists {
		for _, hit := range hits {
			heap.Push(h, hit)
			if h.Len() > limit {
				heap.Pop(h)
			}
		}
	}
	result := make([]ranker.Hit, h.Len())
	for i := len(result) - 1; i >= 0; i-- {
		result[i] = heap.Pop(h).(ranker.Hit)
	}
	return result
}

// hitHeap is a min-heap keeping the weakest hit on top.
type hitHeap []ranker.Hit

func (h hitHeap) Len() int { return len(h) }

func (h hitHeap) Less(i, j int) bool {
	return ranker.Before(h[j], h[i])
}

func (h hitHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *hitHeap) Push(x interface{}) {
	*h = append(*h, x.(ranker.Hit))
}

func (h *hitHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}
