// Package gorea provides a small set of concurrency primitives ported
// from a pthread-based C library: a recursive ReentrantLock, a
// FIFO-fair Condition built on it, a one-shot CountDownLatch, a
// per-goroutine ThreadLocal, two BlockingQueue implementations
// (ArrayBlockingQueue and LinkedBlockingQueue), and a
// FixedThreadPoolExecutor that consumes tasks from either queue.
//
// # Why not sync.Mutex and channels alone
//
// Go's sync package and channels already cover most concurrency needs,
// but three things they do not give you are: a mutex the same goroutine
// can re-acquire (sync.Mutex deadlocks on that), a condition variable
// that wakes waiters in arrival order (sync.Cond makes no ordering
// promise), and a bounded queue with an explicit full/empty blocking
// contract rather than a buffered-channel's implicit one. gorea exists
// to provide exactly those three things, built from the same primitives
// you'd reach for yourself.
//
// # Timeout encoding
//
// Every blocking operation (Condition.Await, BlockingQueue.Offer/Poll,
// CountDownLatch.Await) takes a timeoutMs int64 with the same three-way
// encoding: 0 never blocks, -1 blocks forever, and any positive value is
// a millisecond budget. Condition.Await returns the unspent remainder of
// that budget so a caller waiting in a loop (CountDownLatch.Await,
// LinkedBlockingQueue's internal waits) can reuse it across repeated
// waits without the budget drifting from wall-clock measurement error.
//
// # Locking model
//
// ReentrantLock is the only lock type; Condition is always constructed
// from one and requires the caller to hold it for every operation.
// ArrayBlockingQueue uses a single lock for all state; LinkedBlockingQueue
// uses the classic two-lock algorithm (a put-side lock and a take-side
// lock) so producers and consumers take each other's lock only briefly,
// to signal when the queue leaves the empty or the full state.
//
// # Observability
//
// The two queues and FixedThreadPoolExecutor emit capitan structured log
// signals at their blocking and lifecycle points and record metricz
// counters and gauges; ThreadLocal emits a capitan signal on Destroy.
// Condition.Await and FixedThreadPoolExecutor's per-task execution each
// record a tracez span. ReentrantLock and CountDownLatch emit nothing of
// their own. None of this is required to use the primitives; it gives a
// caller running gorea in production visibility into queue depth,
// blocked offers and polls, and task throughput.
package gorea
