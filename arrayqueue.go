package gorea

import (
	"context"

	"github.com/zoobzio/capitan"
	"github.com/zoobzio/metricz"
)

// ArrayBlockingQueue is a bounded BlockingQueue backed by a fixed-size ring
// buffer and a single ReentrantLock shared by two condition variables, one
// per direction of blocking. Ported from
// original_source/src/ArrayBlockingQueue.c: same single-lock structure,
// same head/tail/size bookkeeping, generic T standing in for the C
// version's itemSize-bytes memcpy.
type ArrayBlockingQueue[T any] struct {
	lock     *ReentrantLock
	nonFull  *Condition
	nonEmpty *Condition

	data     []T
	capacity int
	head     int
	tail     int
	size     int

	name    string
	metrics *metricz.Registry
}

// NewArrayBlockingQueue creates a bounded queue of the given capacity,
// which must be positive and not Unbounded.
func NewArrayBlockingQueue[T any](name string, capacity int) (*ArrayBlockingQueue[T], error) {
	if capacity <= 0 || capacity == Unbounded {
		return nil, newConstructionError("ArrayBlockingQueue", ErrInvalidArgument)
	}

	lock, err := NewReentrantLock()
	if err != nil {
		return nil, newConstructionError("ArrayBlockingQueue", err)
	}
	nonFull, err := NewCondition(lock)
	if err != nil {
		return nil, newConstructionError("ArrayBlockingQueue", err)
	}
	nonEmpty, err := NewCondition(lock)
	if err != nil {
		return nil, newConstructionError("ArrayBlockingQueue", err)
	}

	metrics := metricz.New()
	metrics.Counter(QueueOffersTotal)
	metrics.Counter(QueueOffersBlocked)
	metrics.Counter(QueuePollsTotal)
	metrics.Counter(QueuePollsBlocked)
	metrics.Gauge(QueueDepth)

	return &ArrayBlockingQueue[T]{
		lock:     lock,
		nonFull:  nonFull,
		nonEmpty: nonEmpty,
		data:     make([]T, capacity),
		capacity: capacity,
		name:     name,
		metrics:  metrics,
	}, nil
}

func (q *ArrayBlockingQueue[T]) enqueue(item T) {
	q.data[q.tail] = item
	q.tail++
	if q.tail >= q.capacity {
		q.tail = 0
	}
	q.size++
}

func (q *ArrayBlockingQueue[T]) dequeue() T {
	item := q.data[q.head]
	var zero T
	q.data[q.head] = zero
	q.head++
	if q.head >= q.capacity {
		q.head = 0
	}
	q.size--
	return item
}

// Offer inserts item, blocking up to timeoutMs while the queue is full.
func (q *ArrayBlockingQueue[T]) Offer(item T, timeoutMs int64) bool {
	q.lock.Lock()
	defer q.lock.Unlock()

	q.metrics.Counter(QueueOffersTotal).Inc()

	for q.size == q.capacity {
		q.metrics.Counter(QueueOffersBlocked).Inc()
		capitan.Warn(context.Background(), SignalQueueBlocked, //nolint:errcheck
			FieldName.Field(q.name), FieldQueueCapacity.Field(q.capacity), FieldTimeoutMs.Field(int(timeoutMs)))
		if timeoutMs = q.nonFull.Await(timeoutMs); timeoutMs == 0 {
			if q.size == q.capacity {
				capitan.Warn(context.Background(), SignalQueueTimedOut, FieldName.Field(q.name)) //nolint:errcheck
				return false
			}
			break
		}
	}

	q.enqueue(item)
	q.metrics.Gauge(QueueDepth).Set(float64(q.size))
	q.nonEmpty.SignalAll()
	return true
}

// Poll removes and returns the head item, blocking up to timeoutMs while
// the queue is empty.
func (q *ArrayBlockingQueue[T]) Poll(timeoutMs int64) (T, bool) {
	q.lock.Lock()
	defer q.lock.Unlock()

	var zero T
	q.metrics.Counter(QueuePollsTotal).Inc()

	for q.size == 0 {
		q.metrics.Counter(QueuePollsBlocked).Inc()
		capitan.Warn(context.Background(), SignalQueueBlocked, //nolint:errcheck
			FieldName.Field(q.name), FieldQueueDepth.Field(q.size), FieldTimeoutMs.Field(int(timeoutMs)))
		if timeoutMs = q.nonEmpty.Await(timeoutMs); timeoutMs == 0 {
			if q.size == 0 {
				capitan.Warn(context.Background(), SignalQueueTimedOut, FieldName.Field(q.name)) //nolint:errcheck
				return zero, false
			}
			break
		}
	}

	item := q.dequeue()
	q.metrics.Gauge(QueueDepth).Set(float64(q.size))
	q.nonFull.SignalAll()
	return item, true
}

// Len returns the number of items currently queued.
func (q *ArrayBlockingQueue[T]) Len() int {
	q.lock.Lock()
	defer q.lock.Unlock()
	return q.size
}

// Cap returns the queue's fixed capacity.
func (q *ArrayBlockingQueue[T]) Cap() int {
	return q.capacity
}

// Metrics exposes the queue's metricz registry.
func (q *ArrayBlockingQueue[T]) Metrics() *metricz.Registry {
	return q.metrics
}
