package gorea

import (
	"context"
	"sync/atomic"

	"github.com/zoobzio/capitan"
	"github.com/zoobzio/metricz"
)

type linkedNode[T any] struct {
	next *linkedNode[T]
	item T
}

// LinkedBlockingQueue is a BlockingQueue backed by a singly linked list and
// the two-lock algorithm from original_source/src/LinkedBlockingQueue.c:
// putLock guards the tail and serializes offers, takeLock guards the head
// and serializes polls, and count is the only state the two sides share,
// so a concurrent Offer and Poll take the other side's lock only briefly,
// to signal when the queue leaves the empty or the full state.
//
// Pass Unbounded for capacity to get an unbounded queue — Offer then never
// blocks on fullness.
type LinkedBlockingQueue[T any] struct {
	putLock  *ReentrantLock
	takeLock *ReentrantLock
	nonFull  *Condition
	nonEmpty *Condition

	capacity int
	count    atomic.Int64

	// head is a permanent dummy node; head.next is the current front of
	// the queue, mirroring the C original's calloc'd sentinel node.
	head *linkedNode[T]
	tail *linkedNode[T]

	name    string
	metrics *metricz.Registry
}

// NewLinkedBlockingQueue creates a queue of the given capacity, or an
// unbounded queue if capacity is Unbounded. capacity must be positive.
func NewLinkedBlockingQueue[T any](name string, capacity int) (*LinkedBlockingQueue[T], error) {
	if capacity <= 0 {
		return nil, newConstructionError("LinkedBlockingQueue", ErrInvalidArgument)
	}

	putLock, err := NewReentrantLock()
	if err != nil {
		return nil, newConstructionError("LinkedBlockingQueue", err)
	}
	takeLock, err := NewReentrantLock()
	if err != nil {
		return nil, newConstructionError("LinkedBlockingQueue", err)
	}
	nonFull, err := NewCondition(putLock)
	if err != nil {
		return nil, newConstructionError("LinkedBlockingQueue", err)
	}
	nonEmpty, err := NewCondition(takeLock)
	if err != nil {
		return nil, newConstructionError("LinkedBlockingQueue", err)
	}

	metrics := metricz.New()
	metrics.Counter(QueueOffersTotal)
	metrics.Counter(QueueOffersBlocked)
	metrics.Counter(QueuePollsTotal)
	metrics.Counter(QueuePollsBlocked)
	metrics.Gauge(QueueDepth)

	sentinel := &linkedNode[T]{}
	return &LinkedBlockingQueue[T]{
		putLock:  putLock,
		takeLock: takeLock,
		nonFull:  nonFull,
		nonEmpty: nonEmpty,
		capacity: capacity,
		head:     sentinel,
		tail:     sentinel,
		name:     name,
		metrics:  metrics,
	}, nil
}

// enqueue appends item to the tail and returns the count observed before
// the insert, exactly as LinkedBlockingQueue.c's enqueue does via
// atomic_fetch_add.
func (q *LinkedBlockingQueue[T]) enqueue(item T) int64 {
	node := &linkedNode[T]{item: item}
	q.tail.next = node
	q.tail = node
	return q.count.Add(1) - 1
}

// dequeue removes and returns the head item; the caller updates count.
func (q *LinkedBlockingQueue[T]) dequeue() T {
	first := q.head.next
	q.head = first
	item := first.item
	var zero T
	first.item = zero
	return item
}

// Offer inserts item, blocking up to timeoutMs while the queue is at
// capacity.
func (q *LinkedBlockingQueue[T]) Offer(item T, timeoutMs int64) bool {
	q.putLock.Lock()
	q.metrics.Counter(QueueOffersTotal).Inc()

	for q.count.Load() == int64(q.capacity) {
		q.metrics.Counter(QueueOffersBlocked).Inc()
		capitan.Warn(context.Background(), SignalQueueBlocked, //nolint:errcheck
			FieldName.Field(q.name), FieldQueueCapacity.Field(q.capacity), FieldTimeoutMs.Field(int(timeoutMs)))
		if timeoutMs = q.nonFull.Await(timeoutMs); timeoutMs == 0 {
			q.putLock.Unlock()
			capitan.Warn(context.Background(), SignalQueueTimedOut, FieldName.Field(q.name)) //nolint:errcheck
			return false
		}
	}

	before := q.enqueue(item)
	if before+1 < int64(q.capacity) {
		q.nonFull.Signal()
	}
	q.metrics.Gauge(QueueDepth).Set(float64(before + 1))
	q.putLock.Unlock()

	// The handoff: if the queue was empty before this insert, a taker
	// may already be parked on nonEmpty under takeLock, which putLock
	// does not protect — wake it under its own lock, same as the
	// original's cross-lock signal after releasing putLock.
	if before == 0 {
		q.takeLock.Lock()
		q.nonEmpty.Signal()
		q.takeLock.Unlock()
	}
	return true
}

// Poll removes and returns the head item, blocking up to timeoutMs while
// the queue is empty.
func (q *LinkedBlockingQueue[T]) Poll(timeoutMs int64) (T, bool) {
	var zero T
	q.takeLock.Lock()
	q.metrics.Counter(QueuePollsTotal).Inc()

	for q.count.Load() == 0 {
		q.metrics.Counter(QueuePollsBlocked).Inc()
		capitan.Warn(context.Background(), SignalQueueBlocked, //nolint:errcheck
			FieldName.Field(q.name), FieldQueueDepth.Field(int(q.count.Load())), FieldTimeoutMs.Field(int(timeoutMs)))
		if timeoutMs = q.nonEmpty.Await(timeoutMs); timeoutMs == 0 {
			q.takeLock.Unlock()
			capitan.Warn(context.Background(), SignalQueueTimedOut, FieldName.Field(q.name)) //nolint:errcheck
			return zero, false
		}
	}

	item := q.dequeue()
	before := q.count.Add(-1) + 1
	if before > 1 {
		q.nonEmpty.Signal()
	}
	q.metrics.Gauge(QueueDepth).Set(float64(before - 1))
	q.takeLock.Unlock()

	if before == int64(q.capacity) {
		q.putLock.Lock()
		q.nonFull.Signal()
		q.putLock.Unlock()
	}
	return item, true
}

// Len returns the number of items currently queued.
func (q *LinkedBlockingQueue[T]) Len() int {
	return int(q.count.Load())
}

// Cap returns the queue's capacity, or Unbounded.
func (q *LinkedBlockingQueue[T]) Cap() int {
	return q.capacity
}

// Metrics exposes the queue's metricz registry.
func (q *LinkedBlockingQueue[T]) Metrics() *metricz.Registry {
	return q.metrics
}
