package streaming

import "container/heap"

type queued[K comparable] struct {
	key  K
	dist int
	seq  int
}

// keyHeap orders keys by distance to the current center; equal distances keep
// the order they were pushed in.
type keyHeap[K comparable] []queued[K]

func (h keyHeap[K]) Len() int { return len(h) }
func (h keyHeap[K]) Less(i, j int) bool {
	if h[i].dist != h[j].dist {
		return h[i].dist < h[j].dist
	}
	return h[i].seq < h[j].seq
}
func (h keyHeap[K]) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *keyHeap[K]) Push(x any)   { *h = append(*h, x.(queued[K])) }
func (h *keyHeap[K]) Pop() any {
	old := *h
	n := len(old)
	it := old[n-1]
	*h = old[:n-1]
	return it
}

// keyQueue is the nearest-first backlog of wanted keys awaiting dispatch.
type keyQueue[K comparable] struct {
	h   keyHeap[K]
	seq int
}

func (q *keyQueue[K]) push(key K, dist int) {
	heap.Push(&q.h, queued[K]{key: key, dist: dist, seq: q.seq})
	q.seq++
}

func (q *keyQueue[K]) peek() (K, bool) {
	if len(q.h) == 0 {
		var zero K
		return zero, false
	}
	return q.h[0].key, true
}

func (q *keyQueue[K]) pop() K {
	return heap.Pop(&q.h).(queued[K]).key
}

func (q *keyQueue[K]) reset() {
	clear(q.h)
	q.h = q.h[:0]
	q.seq = 0
}

func (q *keyQueue[K]) Len() int { return len(q.h) }
