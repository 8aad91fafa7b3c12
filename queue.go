package gorea

import "github.com/zoobzio/metricz"

// Metric keys shared by ArrayBlockingQueue and LinkedBlockingQueue.
const (
	QueueOffersTotal   = metricz.Key("queue.offers.total")
	QueueOffersBlocked = metricz.Key("queue.offers.blocked")
	QueuePollsTotal    = metricz.Key("queue.polls.total")
	QueuePollsBlocked  = metricz.Key("queue.polls.blocked")
	QueueDepth         = metricz.Key("queue.depth")
)

// Unbounded marks a LinkedBlockingQueue's capacity as unlimited. It mirrors
// BLOCKING_QUEUE_UNBOUNDED from the C original, which used SIZE_MAX; Go's
// queues carry no itemSize, so the sentinel only ever describes capacity.
const Unbounded = int(^uint(0) >> 1) // math.MaxInt, without importing math for one constant

// BlockingQueue is the common contract both ArrayBlockingQueue and
// LinkedBlockingQueue satisfy: a FIFO queue whose Offer blocks while full
// and whose Poll blocks while empty, each bounded by the standard
// -1/0/>0 millisecond timeout encoding.
//
// Implementations are safe for concurrent use by multiple goroutines.
type BlockingQueue[T any] interface {
	// Offer inserts item, waiting up to timeoutMs if the queue is full.
	// It returns false if the wait timed out before room was available.
	Offer(item T, timeoutMs int64) bool

	// Poll removes and returns the head item, waiting up to timeoutMs if
	// the queue is empty. ok is false if the wait timed out.
	Poll(timeoutMs int64) (item T, ok bool)

	// Len returns the number of items currently queued.
	Len() int

	// Cap returns the queue's capacity, or Unbounded.
	Cap() int
}
