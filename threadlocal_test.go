package gorea

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestThreadLocalGetSetPerGoroutine(t *testing.T) {
	tl := NewThreadLocal[int]()

	if _, ok := tl.Get(); ok {
		t.Fatal("Get should report false before any Set")
	}

	tl.Set(42, nil)
	v, ok := tl.Get()
	if !ok || v != 42 {
		t.Fatalf("Get() = (%d, %v), want (42, true)", v, ok)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		if _, ok := tl.Get(); ok {
			t.Error("a different goroutine should not see another goroutine's value")
		}
		tl.Set(7, nil)
		if v, ok := tl.Get(); !ok || v != 7 {
			t.Errorf("Get() in other goroutine = (%d, %v), want (7, true)", v, ok)
		}
	}()
	<-done

	v, ok = tl.Get()
	if !ok || v != 42 {
		t.Fatalf("original goroutine's value changed: Get() = (%d, %v), want (42, true)", v, ok)
	}
}

func TestThreadLocalComputeIfAbsent(t *testing.T) {
	tl := NewThreadLocal[string]()

	builds := 0
	builder := func(arg any) (string, bool) {
		builds++
		return arg.(string), true
	}

	v, ok := tl.ComputeIfAbsent(builder, "first", nil)
	if !ok || v != "first" {
		t.Fatalf("ComputeIfAbsent() = (%q, %v), want (first, true)", v, ok)
	}

	v, ok = tl.ComputeIfAbsent(builder, "second", nil)
	if !ok || v != "first" {
		t.Fatalf("ComputeIfAbsent should return the cached value, got (%q, %v)", v, ok)
	}
	if builds != 1 {
		t.Fatalf("builder should run exactly once, ran %d times", builds)
	}
}

func TestThreadLocalComputeIfAbsentBuilderFailure(t *testing.T) {
	tl := NewThreadLocal[int]()

	v, ok := tl.ComputeIfAbsent(func(arg any) (int, bool) { return 0, false }, nil, nil)
	if ok {
		t.Fatal("ComputeIfAbsent should report false when the builder fails")
	}
	if v != 0 {
		t.Fatalf("ComputeIfAbsent should return the zero value on failure, got %d", v)
	}
	if _, ok := tl.Get(); ok {
		t.Fatal("a failed build should not leave a value behind")
	}
}

func TestThreadLocalReleaseInvokesDeleter(t *testing.T) {
	tl := NewThreadLocal[int]()

	var deleted int
	var mu sync.Mutex
	tl.Set(99, func(v int) {
		mu.Lock()
		deleted = v
		mu.Unlock()
	})

	tl.Release()

	mu.Lock()
	got := deleted
	mu.Unlock()
	if got != 99 {
		t.Fatalf("deleter ran with %d, want 99", got)
	}
	if _, ok := tl.Get(); ok {
		t.Fatal("Get should report false after Release")
	}
}

func TestThreadLocalDestroyIsOneShot(t *testing.T) {
	tl := NewThreadLocal[int]()
	tl.Set(1, nil)

	tl.Destroy()
	if _, ok := tl.Get(); ok {
		t.Fatal("Get should report false after Destroy")
	}
	if tl.Set(2, nil) {
		t.Fatal("Set should fail after Destroy")
	}

	// Calling Destroy again must not panic or double-close the hooks.
	tl.Destroy()
}

func TestThreadLocalOnDestroyHook(t *testing.T) {
	tl := NewThreadLocal[int]()

	events := make(chan ThreadLocalDestroyEvent, 1)
	if err := tl.OnDestroy(func(_ context.Context, evt ThreadLocalDestroyEvent) error {
		events <- evt
		return nil
	}); err != nil {
		t.Fatalf("OnDestroy: %v", err)
	}

	tl.Set(5, nil)
	tl.Release()

	select {
	case <-events:
	case <-time.After(time.Second):
		t.Fatal("destroy hook was not invoked on Release")
	}
}
