package gorea

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/zoobzio/gorea/internal/gtest"
)

func TestFixedThreadPoolExecutorRejectsInvalidArgs(t *testing.T) {
	if _, err := NewFixedThreadPoolExecutor(0, 4, "w-%d", ArrayQueueBuilder("q")); err == nil {
		t.Fatal("expected an error for threadSize 0")
	}
	if _, err := NewFixedThreadPoolExecutor(2, 0, "w-%d", ArrayQueueBuilder("q")); err == nil {
		t.Fatal("expected an error for taskQueueCapacity 0")
	}
	if _, err := NewFixedThreadPoolExecutor(2, 4, "w-%d", nil); err == nil {
		t.Fatal("expected an error for a nil QueueBuilder")
	}
}

func TestFixedThreadPoolExecutorRunsSubmittedTasks(t *testing.T) {
	checkLeaks := gtest.AssertNoLeak(t)
	defer checkLeaks()

	// The queue holds every task, so no non-blocking Submit can find it full.
	executor, err := NewFixedThreadPoolExecutor(4, 1000, "worker-%d", ArrayQueueBuilder("exec"))
	if err != nil {
		t.Fatalf("NewFixedThreadPoolExecutor: %v", err)
	}
	defer executor.Shutdown()

	const taskCount = 1000
	var completed atomic.Int64
	var wg sync.WaitGroup
	wg.Add(taskCount)
	for i := 0; i < taskCount; i++ {
		if !executor.Submit(func() {
			completed.Add(1)
			wg.Done()
		}) {
			t.Fatal("Submit should succeed while the executor is running")
		}
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("not every submitted task completed in time")
	}

	if completed.Load() != taskCount {
		t.Fatalf("completed = %d, want %d", completed.Load(), taskCount)
	}
	// A worker counts a task only after its body returns, so the last
	// counts can trail the wg.Done calls above.
	gtest.AwaitTrue(t, time.Second, func() bool { return executor.Executed() == taskCount })
	if executor.Executed() != taskCount {
		t.Fatalf("Executed() = %d, want %d", executor.Executed(), taskCount)
	}
}

func TestFixedThreadPoolExecutorSubmitAfterShutdownFails(t *testing.T) {
	executor, err := NewFixedThreadPoolExecutor(2, 4, "worker-%d", ArrayQueueBuilder("exec"))
	if err != nil {
		t.Fatalf("NewFixedThreadPoolExecutor: %v", err)
	}

	executor.Shutdown()
	if !executor.IsShutdown() {
		t.Fatal("IsShutdown() should report true after Shutdown")
	}
	if executor.Submit(func() {}) {
		t.Fatal("Submit should fail after Shutdown")
	}

	// Shutdown must be idempotent.
	executor.Shutdown()
}

func TestFixedThreadPoolExecutorSubmitNilFails(t *testing.T) {
	executor, err := NewFixedThreadPoolExecutor(1, 1, "worker-%d", ArrayQueueBuilder("exec"))
	if err != nil {
		t.Fatalf("NewFixedThreadPoolExecutor: %v", err)
	}
	defer executor.Shutdown()

	if executor.Submit(nil) {
		t.Fatal("Submit(nil) should report false")
	}
}

func TestFixedThreadPoolExecutorRejectsWhenQueueFull(t *testing.T) {
	executor, err := NewFixedThreadPoolExecutor(1, 1, "worker-%d", ArrayQueueBuilder("exec"))
	if err != nil {
		t.Fatalf("NewFixedThreadPoolExecutor: %v", err)
	}
	defer executor.Shutdown()

	block := make(chan struct{})
	release := make(chan struct{})
	if !executor.Submit(func() {
		close(block)
		<-release
	}) {
		t.Fatal("first Submit should succeed")
	}
	<-block

	// The worker is now busy running the blocking task, and the queue
	// (capacity 1) fills with the next submission.
	if !executor.Submit(func() {}) {
		t.Fatal("second Submit should queue")
	}

	rejected := false
	for i := 0; i < 5; i++ {
		if !executor.Submit(func() {}) {
			rejected = true
			break
		}
	}
	if !rejected {
		t.Fatal("a Submit should be rejected once both the worker and the queue are occupied")
	}

	close(release)
}

func TestFixedThreadPoolExecutorCallerRunsPolicy(t *testing.T) {
	executor, err := NewFixedThreadPoolExecutor(1, 1, "worker-%d", ArrayQueueBuilder("exec"), WithCallerRunsPolicy())
	if err != nil {
		t.Fatalf("NewFixedThreadPoolExecutor: %v", err)
	}
	defer executor.Shutdown()

	block := make(chan struct{})
	release := make(chan struct{})
	executor.Submit(func() {
		close(block)
		<-release
	})
	<-block
	executor.Submit(func() {}) // fills the queue

	ranInline := false
	callerGoroutine := make(chan bool, 1)
	go func() {
		callerGoroutine <- executor.Submit(func() {
			ranInline = true
		})
	}()

	select {
	case submitted := <-callerGoroutine:
		if !submitted {
			t.Fatal("Submit with WithCallerRunsPolicy should always report true")
		}
	case <-time.After(time.Second):
		t.Fatal("caller-runs Submit should not block")
	}
	if !ranInline {
		t.Fatal("the task should have run synchronously via the caller-runs policy")
	}

	close(release)
}

func TestFixedThreadPoolExecutorWorkerHooks(t *testing.T) {
	executor, err := NewFixedThreadPoolExecutor(2, 4, "worker-%d", ArrayQueueBuilder("hooks"))
	if err != nil {
		t.Fatalf("NewFixedThreadPoolExecutor: %v", err)
	}

	var starts, exits atomic.Int64
	if err := executor.OnWorkerStart(func(_ context.Context, _ WorkerEvent) error {
		starts.Add(1)
		return nil
	}); err != nil {
		t.Fatalf("OnWorkerStart: %v", err)
	}
	if err := executor.OnWorkerExit(func(_ context.Context, _ WorkerEvent) error {
		exits.Add(1)
		return nil
	}); err != nil {
		t.Fatalf("OnWorkerExit: %v", err)
	}

	executor.Shutdown()

	if exits.Load() != 2 {
		t.Fatalf("exits = %d, want 2", exits.Load())
	}
}

func TestLinkedQueueBuilderBacksExecutor(t *testing.T) {
	executor, err := NewFixedThreadPoolExecutor(2, 4, "worker-%d", LinkedQueueBuilder("linked-exec"))
	if err != nil {
		t.Fatalf("NewFixedThreadPoolExecutor: %v", err)
	}
	defer executor.Shutdown()

	done := make(chan struct{})
	if !executor.Submit(func() { close(done) }) {
		t.Fatal("Submit should succeed")
	}
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("task submitted to a linked-queue-backed executor never ran")
	}
}
