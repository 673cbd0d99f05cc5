package event

import (
	"sync"
	"sync/atomic"
)

// DefaultMaxPendingFrames bounds how many undrained frames a Queue keeps.
const DefaultMaxPendingFrames = 8

// Queue is an unbounded FIFO of events between one producer and any number
// of draining consumers. Push never blocks. When more than the configured
// number of frames are waiting, the oldest waiting frame is discarded;
// command events are always kept.
type Queue struct {
	mu        sync.Mutex
	items     []Event
	frames    int
	maxFrames int
	closed    bool
	ready     chan struct{}

	droppedFrames atomic.Uint64
}

// NewQueue creates a Queue keeping at most maxFrames pending frames.
// Values less than 1 select DefaultMaxPendingFrames.
func NewQueue(maxFrames int) *Queue {
	if maxFrames < 1 {
		maxFrames = DefaultMaxPendingFrames
	}
	return &Queue{
		maxFrames: maxFrames,
		ready:     make(chan struct{}, 1),
	}
}

// Push appends e. It returns false if the queue has been closed.
func (q *Queue) Push(e Event) bool {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return false
	}

	if !e.IsCommand() {
		if q.frames >= q.maxFrames {
			q.dropOldestFrame()
		}
		q.frames++
	}
	q.items = append(q.items, e)
	q.mu.Unlock()

	select {
	case q.ready <- struct{}{}:
	default:
	}
	return true
}

// dropOldestFrame removes the first pending frame. Caller holds q.mu.
func (q *Queue) dropOldestFrame() {
	for i, item := range q.items {
		if item.IsCommand() {
			continue
		}
		copy(q.items[i:], q.items[i+1:])
		q.items[len(q.items)-1] = Event{}
		q.items = q.items[:len(q.items)-1]
		q.frames--
		q.droppedFrames.Add(1)
		return
	}
}

// Drain removes and returns every pending event in production order.
// It returns nil when nothing is pending.
func (q *Queue) Drain() []Event {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) == 0 {
		return nil
	}
	out := q.items
	q.items = nil
	q.frames = 0
	return out
}

// Ready is signalled after a Push. A single signal may cover many events.
func (q *Queue) Ready() <-chan struct{} {
	return q.ready
}

// Len returns the number of pending events.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// DroppedFrames returns how many frames have been discarded so far.
func (q *Queue) DroppedFrames() uint64 {
	return q.droppedFrames.Load()
}

// Close stops the queue from accepting events. Pending events stay drainable.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
}
