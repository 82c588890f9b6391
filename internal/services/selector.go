package services

import "container/heap"

type selectorItem[T any] struct {
	payload T
	cost    float64
	seq     uint64
}

type selectorHeap[T any] []selectorItem[T]

func (h selectorHeap[T]) Len() int { return len(h) }

func (h selectorHeap[T]) Less(i, j int) bool {
	if h[i].cost != h[j].cost {
		return h[i].cost < h[j].cost
	}
	return h[i].seq < h[j].seq
}

func (h selectorHeap[T]) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *selectorHeap[T]) Push(x any) { *h = append(*h, x.(selectorItem[T])) }

func (h *selectorHeap[T]) Pop() any {
	old := *h
	n := len(old)
	it := old[n-1]
	var zero selectorItem[T]
	old[n-1] = zero
	*h = old[:n-1]
	return it
}

// Selector keeps candidates ordered by cost. Equal costs resolve to the
// earliest inserted. Not safe for concurrent use.
type Selector[T any] struct {
	h   selectorHeap[T]
	seq uint64
}

func NewSelector[T any]() *Selector[T] { return &Selector[T]{} }

func (s *Selector[T]) Insert(payload T, cost float64) {
	heap.Push(&s.h, selectorItem[T]{payload: payload, cost: cost, seq: s.seq})
	s.seq++
}

// PeekMin returns the cheapest candidate without removing it.
func (s *Selector[T]) PeekMin() (T, float64, bool) {
	if len(s.h) == 0 {
		var zero T
		return zero, 0, false
	}
	return s.h[0].payload, s.h[0].cost, true
}

func (s *Selector[T]) PopMin() (T, float64, bool) {
	if len(s.h) == 0 {
		var zero T
		return zero, 0, false
	}
	it := heap.Pop(&s.h).(selectorItem[T])
	return it.payload, it.cost, true
}

func (s *Selector[T]) Len() int { return len(s.h) }
