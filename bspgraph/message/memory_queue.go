package message

import "sync"

// inMemoryQueue keeps messages in a slice. Enqueue can be called
// concurrently; the iterator returned by Messages must only be used by a
// single goroutine.
type inMemoryQueue struct {
	mu   sync.Mutex
	msgs []Message

	latchedMsg Message
}

// NewInMemoryQueue creates a new in-memory queue instance. This function
// can serve as a QueueFactory.
func NewInMemoryQueue() Queue {
	return new(inMemoryQueue)
}

func (q *inMemoryQueue) Enqueue(msg Message) error {
	q.mu.Lock()
	q.msgs = append(q.msgs, msg)
	q.mu.Unlock()
	return nil
}

func (q *inMemoryQueue) PendingMessages() bool {
	q.mu.Lock()
	pending := len(q.msgs) != 0
	q.mu.Unlock()
	return pending
}

func (q *inMemoryQueue) DiscardMessages() error {
	q.mu.Lock()
	q.msgs = q.msgs[:0]
	q.latchedMsg = nil
	q.mu.Unlock()
	return nil
}

func (q *inMemoryQueue) Close() error { return nil }

func (q *inMemoryQueue) Messages() Iterator { return q }

// Next dequeues from the tail so the backing array keeps its capacity for
// the next superstep. Consumers must not rely on message order.
func (q *inMemoryQueue) Next() bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	qLen := len(q.msgs)
	if qLen == 0 {
		return false
	}
	q.latchedMsg = q.msgs[qLen-1]
	q.msgs[qLen-1] = nil
	q.msgs = q.msgs[:qLen-1]
	return true
}

func (q *inMemoryQueue) Message() Message {
	q.mu.Lock()
	msg := q.latchedMsg
	q.mu.Unlock()
	return msg
}

func (q *inMemoryQueue) Error() error { return nil }
