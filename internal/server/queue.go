package server

import (
	"net"
	"sync"
)

type eventType int

const (
	eventAccept eventType = iota + 1
	eventData
	eventReadError
	eventWritten
	eventListenError
)

// event is what the I/O goroutines report to the loop.
type event struct {
	typ  eventType
	id   ConnID
	conn net.Conn // eventAccept
	data []byte   // eventData
	n    int      // eventWritten
	err  error
}

// eventQueue is an unbounded FIFO between the I/O goroutines and the loop.
//
// Enqueue may be called from any goroutine; only the loop drains. The
// signal channel holds at most one pending wake-up, so many enqueues
// collapse into one.
type eventQueue struct {
	mu     sync.Mutex
	events []event
	closed bool
	signal chan struct{}
}

func newEventQueue() *eventQueue {
	return &eventQueue{
		events: make([]event, 0, 64),
		signal: make(chan struct{}, 1),
	}
}

// Enqueue appends e. Returns false once the queue is closed.
func (q *eventQueue) Enqueue(e event) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}
	q.events = append(q.events, e)

	select {
	case q.signal <- struct{}{}:
	default:
	}
	return true
}

// Drain removes and returns every queued event in arrival order.
func (q *eventQueue) Drain() []event {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.events) == 0 {
		return nil
	}
	out := q.events
	q.events = make([]event, 0, cap(out))
	return out
}

// Wait returns a channel that fires when events may be available.
func (q *eventQueue) Wait() <-chan struct{} {
	return q.signal
}

// Len returns the number of queued events.
func (q *eventQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.events)
}

// Close rejects further events. Queued events stay drainable.
func (q *eventQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.closed = true
	close(q.signal)
}
