package gorea

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/zoobzio/capitan"
	"github.com/zoobzio/clockz"
	"github.com/zoobzio/hookz"
	"github.com/zoobzio/metricz"
	"github.com/zoobzio/tracez"
)

// Metric keys for FixedThreadPoolExecutor.
const (
	ExecutorTasksSubmitted metricz.Key = "executor.tasks.submitted.total"
	ExecutorTasksRejected  metricz.Key = "executor.tasks.rejected.total"
	ExecutorTasksCallerRan metricz.Key = "executor.tasks.caller_run.total"
	ExecutorTasksExecuted  metricz.Key = "executor.tasks.executed.total"
	ExecutorActiveWorkers  metricz.Key = "executor.workers.active"
)

const (
	spanExecutorTask = tracez.Key("gorea.executor.task")
	tagExecutorName  = tracez.Tag("executor.name")
)

type executorState int32

const (
	executorStateRunning executorState = iota
	executorStateShutdown
)

// WorkerEvent is the payload delivered to hooks registered with
// OnWorkerStart and OnWorkerExit.
type WorkerEvent struct {
	Name  string
	Index int
}

const (
	hookWorkerStart = hookz.Key("executor.worker.start")
	hookWorkerExit  = hookz.Key("executor.worker.exit")
)

// task is the unit carried on the executor's internal queue: either a
// user function to run, or the SHUTDOWN sentinel that tells a worker to
// exit. Mirrors the {fn, arg, state} record from
// original_source/src/FixedThreadPoolExecutor.c, minus the `arg` field —
// Go closures capture their own argument instead of taking one.
type task struct {
	fn       func()
	shutdown bool
}

// QueueBuilder constructs the task queue a FixedThreadPoolExecutor uses,
// parameterized only by capacity — the generic stand-in for the C
// original's `(capacity, itemSize) -> BlockingQueue` builder, since Go's
// queues are typed by T rather than a byte size.
type QueueBuilder func(capacity int) (BlockingQueue[task], error)

// ArrayQueueBuilder returns a QueueBuilder that backs the executor with
// an ArrayBlockingQueue[task].
func ArrayQueueBuilder(name string) QueueBuilder {
	return func(capacity int) (BlockingQueue[task], error) {
		return NewArrayBlockingQueue[task](name, capacity)
	}
}

// LinkedQueueBuilder returns a QueueBuilder that backs the executor with
// a LinkedBlockingQueue[task].
func LinkedQueueBuilder(name string) QueueBuilder {
	return func(capacity int) (BlockingQueue[task], error) {
		return NewLinkedBlockingQueue[task](name, capacity)
	}
}

// FixedThreadPoolExecutor runs submitted work on a fixed number of
// goroutines draining a shared BlockingQueue[task], ported from
// original_source/src/FixedThreadPoolExecutor.c: workers block forever on
// poll(-1), a SHUTDOWN sentinel (one per worker) tells a worker to
// return, and shutdown is a one-shot CAS guarded by sync.Once equivalent
// semantics.
type FixedThreadPoolExecutor struct {
	name  string
	queue BlockingQueue[task]
	state atomic.Int32
	clock clockz.Clock

	workers   int
	wg        sync.WaitGroup
	active    atomic.Int64
	executed  atomic.Int64
	callerRun func(fn func())

	shutdownOnce sync.Once
	startedAt    time.Time
	metrics      *metricz.Registry
	hooks        *hookz.Hooks[WorkerEvent]
	tracer       *tracez.Tracer
}

// Option configures a FixedThreadPoolExecutor at construction.
type Option func(*FixedThreadPoolExecutor)

// WithClock sets the clock stored on the executor. No executor operation
// reads it: the start time and the shutdown duration reported in
// structured logs are taken from the time package.
func WithClock(clock clockz.Clock) Option {
	return func(e *FixedThreadPoolExecutor) {
		e.clock = clock
	}
}

// WithCallerRunsPolicy installs the reference facade's rejection policy:
// when Submit's non-blocking offer fails because the queue is full, the
// calling goroutine runs fn synchronously instead of Submit reporting
// rejection. Without this option, a full queue simply rejects.
func WithCallerRunsPolicy() Option {
	return func(e *FixedThreadPoolExecutor) {
		e.callerRun = func(fn func()) { fn() }
	}
}

// NewFixedThreadPoolExecutor builds the task queue via builder at
// taskQueueCapacity, then spawns threadSize workers named by nameFormat
// (a "%d" in the format is filled with the worker's index; otherwise the
// literal string is used for every worker). On any construction failure
// already-started workers are shut down and the error is returned.
func NewFixedThreadPoolExecutor(threadSize, taskQueueCapacity int, nameFormat string, builder QueueBuilder, opts ...Option) (*FixedThreadPoolExecutor, error) {
	if threadSize <= 0 || taskQueueCapacity <= 0 {
		return nil, newConstructionError("FixedThreadPoolExecutor", ErrInvalidArgument)
	}
	if builder == nil {
		return nil, newConstructionError("FixedThreadPoolExecutor", ErrInvalidArgument)
	}

	queue, err := builder(taskQueueCapacity)
	if err != nil {
		return nil, newConstructionError("FixedThreadPoolExecutor", err)
	}

	metrics := metricz.New()
	metrics.Counter(ExecutorTasksSubmitted)
	metrics.Counter(ExecutorTasksRejected)
	metrics.Counter(ExecutorTasksCallerRan)
	metrics.Counter(ExecutorTasksExecuted)
	metrics.Gauge(ExecutorActiveWorkers)

	e := &FixedThreadPoolExecutor{
		name:      nameFormat,
		queue:     queue,
		clock:     clockz.RealClock,
		workers:   threadSize,
		startedAt: time.Now(),
		metrics:   metrics,
		hooks:     hookz.New[WorkerEvent](),
		tracer:    tracez.New(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.state.Store(int32(executorStateRunning))

	ctx := context.Background()
	for i := 0; i < threadSize; i++ {
		workerName := nameFormat
		if strings.Contains(nameFormat, "%d") {
			workerName = fmt.Sprintf(nameFormat, i)
		}
		e.wg.Add(1)
		go e.runWorker(i, workerName)
		capitan.Info(ctx, SignalExecutorWorkerSpawned, //nolint:errcheck
			FieldName.Field(workerName),
			FieldWorkerIndex.Field(i),
		)
	}

	capitan.Info(ctx, SignalExecutorStarted, //nolint:errcheck
		FieldName.Field(e.name),
		FieldWorkerCount.Field(threadSize),
	)
	return e, nil
}

func (e *FixedThreadPoolExecutor) runWorker(index int, name string) {
	defer e.wg.Done()
	e.active.Add(1)
	e.metrics.Gauge(ExecutorActiveWorkers).Set(float64(e.active.Load()))
	_ = e.hooks.Emit(context.Background(), hookWorkerStart, WorkerEvent{Name: name, Index: index}) //nolint:errcheck
	defer func() {
		e.active.Add(-1)
		e.metrics.Gauge(ExecutorActiveWorkers).Set(float64(e.active.Load()))
		_ = e.hooks.Emit(context.Background(), hookWorkerExit, WorkerEvent{Name: name, Index: index}) //nolint:errcheck
	}()

	for {
		t, ok := e.queue.Poll(-1)
		if !ok {
			// Defensive: poll(-1) is specified to never time out, but a
			// spurious false is retried rather than trusted, same as
			// the worker loop in the C original.
			continue
		}

		if t.shutdown {
			return
		}

		_, span := e.tracer.StartSpan(context.Background(), spanExecutorTask)
		span.SetTag(tagExecutorName, e.name)
		t.fn()
		span.Finish()
		e.executed.Add(1)
		e.metrics.Counter(ExecutorTasksExecuted).Inc()
	}
}

// Submit enqueues fn for execution by a worker. It returns false if the
// executor has already been shut down, or if the queue was full and no
// caller-runs policy is installed; with WithCallerRunsPolicy, a full
// queue instead runs fn on the calling goroutine and Submit returns true.
func (e *FixedThreadPoolExecutor) Submit(fn func()) bool {
	if fn == nil {
		return false
	}
	if executorState(e.state.Load()) == executorStateShutdown {
		return false
	}

	e.metrics.Counter(ExecutorTasksSubmitted).Inc()
	if e.queue.Offer(task{fn: fn}, 0) {
		return true
	}

	if e.callerRun != nil {
		capitan.Info(context.Background(), SignalExecutorCallerRuns, FieldName.Field(e.name)) //nolint:errcheck
		e.metrics.Counter(ExecutorTasksCallerRan).Inc()
		e.callerRun(fn)
		return true
	}

	e.metrics.Counter(ExecutorTasksRejected).Inc()
	capitan.Warn(context.Background(), SignalExecutorSubmitRejected, FieldName.Field(e.name)) //nolint:errcheck
	return false
}

// IsShutdown reports whether Shutdown has been called.
func (e *FixedThreadPoolExecutor) IsShutdown() bool {
	return executorState(e.state.Load()) == executorStateShutdown
}

// Shutdown transitions the executor to SHUTDOWN exactly once: it enqueues
// one SHUTDOWN sentinel per worker with an infinite timeout, then blocks
// until every worker has exited. Calling it again is a no-op.
func (e *FixedThreadPoolExecutor) Shutdown() {
	if !e.state.CompareAndSwap(int32(executorStateRunning), int32(executorStateShutdown)) {
		return
	}

	capitan.Info(context.Background(), SignalExecutorShutdownBegin, FieldName.Field(e.name)) //nolint:errcheck

	for i := 0; i < e.workers; i++ {
		e.queue.Offer(task{shutdown: true}, -1)
	}
	e.wg.Wait()
	e.hooks.Close()
	e.tracer.Close()

	capitan.Info(context.Background(), SignalExecutorShutdownComplete, //nolint:errcheck
		FieldName.Field(e.name), FieldDuration.Field(time.Since(e.startedAt).Seconds()))
}

// Tracer exposes the executor's tracez tracer, which records one span per
// executed RUNNING task.
func (e *FixedThreadPoolExecutor) Tracer() *tracez.Tracer {
	return e.tracer
}

// OnWorkerStart registers a handler invoked when a worker goroutine
// begins running.
func (e *FixedThreadPoolExecutor) OnWorkerStart(handler func(context.Context, WorkerEvent) error) error {
	_, err := e.hooks.Hook(hookWorkerStart, handler)
	return err
}

// OnWorkerExit registers a handler invoked when a worker goroutine
// returns, whether from a SHUTDOWN sentinel or (in principle) a panic
// recovery a future revision might add.
func (e *FixedThreadPoolExecutor) OnWorkerExit(handler func(context.Context, WorkerEvent) error) error {
	_, err := e.hooks.Hook(hookWorkerExit, handler)
	return err
}

// Executed returns the number of RUNNING tasks a worker has completed.
// Tasks run under a caller-runs policy are not counted here — they never
// passed through a worker.
func (e *FixedThreadPoolExecutor) Executed() int64 {
	return e.executed.Load()
}

// Metrics exposes the executor's metricz registry.
func (e *FixedThreadPoolExecutor) Metrics() *metricz.Registry {
	return e.metrics
}
