// Package gtest provides shared test support for gorea's package-level
// tests: a deterministic clockz.FakeClock wrapper and a goroutine-leak
// checker, the same kind of test-only helper package the rest of the
// ecosystem keeps separate from its public API.
package gtest

import (
	"runtime"
	"testing"
	"time"

	"github.com/zoobzio/clockz"
)

// NewFakeClock returns a fake clock for tests that exercise timeoutMs
// semantics without depending on wall-clock timing. Advance it with
// clock.Advance(d) to move deadlines forward deterministically.
func NewFakeClock() *clockz.FakeClock {
	return clockz.NewFakeClock()
}

// AssertNoLeak records the current goroutine count and returns a func to
// call at the end of a test; it fails the test if more goroutines are
// still running afterward than a short settle window accounts for.
// Modeled on the goroutine-count-delta check used in the teacher's
// concurrent-processor leak tests.
func AssertNoLeak(t *testing.T) func() {
	t.Helper()
	before := runtime.NumGoroutine()
	return func() {
		t.Helper()
		// Workers and timers wind down asynchronously; give them a
		// short window before failing on a stale count.
		var after int
		for i := 0; i < 50; i++ {
			after = runtime.NumGoroutine()
			if after <= before {
				return
			}
			time.Sleep(10 * time.Millisecond)
		}
		t.Errorf("goroutine leak: started with %d, ended with %d", before, after)
	}
}

// AwaitTrue polls cond until it returns true or timeout elapses, failing
// the test if it never does. Useful for asserting on asynchronous worker
// completion without a fixed sleep.
func AwaitTrue(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	if !cond() {
		t.Fatalf("condition not met within %v", timeout)
	}
}
