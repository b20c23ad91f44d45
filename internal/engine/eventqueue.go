package engine

import "container/heap"

// EventQueue is a min-heap of events ordered by (time, priority, a
// monotonic insertion counter), giving deterministic FIFO tie-breaking
// when two events land on the same time and priority — grounded on the
// source tool's heapq-backed queue keyed by the same three-tuple.
type EventQueue struct {
	h eventHeap
}

// NewEventQueue returns an empty queue.
func NewEventQueue() *EventQueue {
	q := &EventQueue{}
	heap.Init(&q.h)
	return q
}

// Push inserts ev in O(log n).
func (q *EventQueue) Push(ev Event) {
	heap.Push(&q.h, &queuedEvent{event: ev, seq: q.h.nextSeq})
	q.h.nextSeq++
}

// Pop removes and returns the earliest event in O(log n). ok is false
// when the queue is empty.
func (q *EventQueue) Pop() (Event, bool) {
	if q.h.Len() == 0 {
		return Event{}, false
	}
	qe := heap.Pop(&q.h).(*queuedEvent)
	return qe.event, true
}

// Peek returns the earliest event without removing it.
func (q *EventQueue) Peek() (Event, bool) {
	if q.h.Len() == 0 {
		return Event{}, false
	}
	return q.h.items[0].event, true
}

// IsEmpty reports whether the queue holds no events.
func (q *EventQueue) IsEmpty() bool { return q.h.Len() == 0 }

// Len returns the number of queued events.
func (q *EventQueue) Len() int { return q.h.Len() }

// Clear discards every queued event.
func (q *EventQueue) Clear() {
	q.h.items = nil
}

type queuedEvent struct {
	event Event
	seq   uint64
}

// eventHeap implements container/heap.Interface.
type eventHeap struct {
	items   []*queuedEvent
	nextSeq uint64
}

func (h eventHeap) Len() int { return len(h.items) }

func (h eventHeap) Less(i, j int) bool {
	a, b := h.items[i], h.items[j]
	if a.event.Time != b.event.Time {
		return a.event.Time < b.event.Time
	}
	if a.event.Priority != b.event.Priority {
		return a.event.Priority < b.event.Priority
	}
	return a.seq < b.seq
}

func (h eventHeap) Swap(i, j int) { h.items[i], h.items[j] = h.items[j], h.items[i] }

func (h *eventHeap) Push(x any) {
	h.items = append(h.items, x.(*queuedEvent))
}

func (h *eventHeap) Pop() any {
	old := h.items
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	h.items = old[:n-1]
	return item
}
