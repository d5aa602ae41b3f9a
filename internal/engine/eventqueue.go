package engine

import (
	"container/heap"
	"sync"
)

// eventQueue is a thread-safe priority queue of events, ordered by time.
type eventQueue struct {
	sync.Mutex
	heap eventHeap
}

func newEventQueue() *eventQueue {
	q := &eventQueue{heap: make(eventHeap, 0, 16)}
	heap.Init(&q.heap)

	return q
}

func (q *eventQueue) Push(evt Event) {
	q.Lock()
	defer q.Unlock()

	heap.Push(&q.heap, evt)
}

func (q *eventQueue) Pop() Event {
	q.Lock()
	defer q.Unlock()

	return heap.Pop(&q.heap).(Event)
}

func (q *eventQueue) Len() int {
	q.Lock()
	defer q.Unlock()

	return q.heap.Len()
}

type eventHeap []Event

func (h eventHeap) Len() int { return len(h) }

func (h eventHeap) Less(i, j int) bool { return h[i].Time() < h[j].Time() }

func (h eventHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *eventHeap) Push(x interface{}) {
	*h = append(*h, x.(Event))
}

func (h *eventHeap) Pop() interface{} {
	old := *h
	n := len(old)
	evt := old[n-1]
	*h = old[:n-1]

	return evt
}
