package gorea

import "github.com/zoobzio/capitan"

// Signal constants for gorea lifecycle events.
// Signals follow the pattern: <component>.<event>.
const (
	// FixedThreadPoolExecutor signals.
	SignalExecutorStarted          capitan.Signal = "executor.started"
	SignalExecutorWorkerSpawned    capitan.Signal = "executor.worker-spawned"
	SignalExecutorSubmitRejected   capitan.Signal = "executor.submit-rejected"
	SignalExecutorCallerRuns       capitan.Signal = "executor.caller-runs"
	SignalExecutorShutdownBegin    capitan.Signal = "executor.shutdown-begin"
	SignalExecutorShutdownComplete capitan.Signal = "executor.shutdown-complete"

	// Queue signals (both ArrayBlockingQueue and LinkedBlockingQueue).
	SignalQueueBlocked  capitan.Signal = "queue.blocked"
	SignalQueueTimedOut capitan.Signal = "queue.timed-out"

	// ThreadLocal signals.
	SignalThreadLocalDestroyed capitan.Signal = "threadlocal.destroyed"
)

// Common field keys using capitan primitive types, so callers never need
// custom struct serialization to consume gorea's structured events.
var (
	FieldName     = capitan.NewStringKey("name")
	FieldDuration = capitan.NewFloat64Key("duration")

	// Executor fields.
	FieldWorkerCount = capitan.NewIntKey("worker_count")
	FieldWorkerIndex = capitan.NewIntKey("worker_index")

	// Queue fields.
	FieldQueueDepth    = capitan.NewIntKey("queue_depth")
	FieldQueueCapacity = capitan.NewIntKey("queue_capacity")
	FieldTimeoutMs     = capitan.NewIntKey("timeout_ms")
)
