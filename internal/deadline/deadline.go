// Package deadline is the "time helper" component: it turns the
// millisecond-relative timeouts used throughout gorea's blocking APIs
// into absolute deadlines, on an injectable clock so tests don't need to
// sleep for real (the same clockz.Clock the teacher wires into its own
// timeout-sensitive connectors).
package deadline

import (
	"time"

	"github.com/zoobzio/clockz"
)

// Encoding of timeoutMs, preserved bit-for-bit from the C original:
// 0 means never block, -1 means block forever, >0 is a millisecond budget.
const (
	NoWait  = 0
	Forever = -1
)

// D is an absolute deadline, or "no deadline" (block forever) when built
// by From with Forever. The zero value is a deadline already in the past.
type D struct {
	t       time.Time
	forever bool
}

// From computes the deadline for timeoutMs starting now, on clock.
func From(clock clockz.Clock, timeoutMs int64) D {
	if timeoutMs == Forever {
		return D{forever: true}
	}
	return D{t: clock.Now().Add(time.Duration(timeoutMs) * time.Millisecond)}
}

// Remaining returns the milliseconds left until the deadline, floored at
// zero, and -1 if the deadline is "forever" — so await-style loops can
// reuse the budget across multiple waits without drifting, per the
// condition.Await(-1) == -1 convention.
func (d D) Remaining(clock clockz.Clock) int64 {
	if d.forever {
		return Forever
	}
	left := d.t.Sub(clock.Now())
	if left <= 0 {
		return 0
	}
	ms := left.Milliseconds()
	if ms == 0 {
		// Sub-millisecond remainder: still time left, round up so callers
		// don't treat "about to expire" as "already expired".
		return 1
	}
	return ms
}

// Expired reports whether the deadline has passed. A "forever" deadline
// never expires.
func (d D) Expired(clock clockz.Clock) bool {
	if d.forever {
		return false
	}
	return !clock.Now().Before(d.t)
}

// Timer returns a channel that fires when the deadline passes, and a
// cancel function. The cancel function does nothing: the timer from
// clock.After is not stopped and still fires at the deadline. For a "forever"
// deadline the channel is nil, which blocks forever in a select — exactly
// the behavior wanted.
func Timer(clock clockz.Clock, d D) (<-chan time.Time, func()) {
	if d.forever {
		return nil, func() {}
	}
	remaining := d.t.Sub(clock.Now())
	if remaining < 0 {
		remaining = 0
	}
	return clock.After(remaining), func() {}
}
