package websocket

import (
	"log/slog"
	"sync"

	"github.com/daemon-engine/inspectornet"
)

// defaultQueueCapacity bounds the inbound queue. A DevTools frontend sends a
// few dozen messages per tick at most; hitting this limit means the consumer
// stopped draining.
const defaultQueueCapacity = 1024

// inboundQueue is the single producer-side buffer between handler goroutines
// and the consumer thread. Producers never block: when the queue is full the
// newest message is dropped and logged.
type inboundQueue struct {
	mu    sync.Mutex
	items []inspectornet.Message
	cap   int
	log   *slog.Logger
}

func newInboundQueue(capacity int, log *slog.Logger) *inboundQueue {
	if capacity <= 0 {
		capacity = defaultQueueCapacity
	}
	return &inboundQueue{cap: capacity, log: log}
}

// push appends a message, preserving global FIFO order across all producers.
// Returns false when the message was dropped due to overflow.
func (q *inboundQueue) push(m inspectornet.Message) bool {
	q.mu.Lock()
	if len(q.items) >= q.cap {
		q.mu.Unlock()
		q.log.Warn(inspectornet.MsgQueueFull, "conn", string(m.Source), "queued", q.cap)
		return false
	}
	q.items = append(q.items, m)
	q.mu.Unlock()
	return true
}

// drain takes the whole queue under one lock acquisition and hands ownership
// of the messages to the caller.
func (q *inboundQueue) drain() []inspectornet.Message {
	q.mu.Lock()
	items := q.items
	q.items = nil
	q.mu.Unlock()
	return items
}
