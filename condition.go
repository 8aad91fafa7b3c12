package gorea

import (
	"context"
	"strconv"

	"github.com/zoobzio/clockz"
	"github.com/zoobzio/gorea/internal/deadline"
	"github.com/zoobzio/tracez"
)

// Span and tag keys for Condition.Await, following the teacher's
// per-connector tracez constant block.
const (
	spanConditionAwait = tracez.Key("gorea.condition.await")
	tagAwaitTimeoutMs  = tracez.Tag("condition.timeout_ms")
	tagAwaitTimedOut   = tracez.Tag("condition.timed_out")
)

type conditionState int32

const (
	waiting conditionState = iota
	notified
	invalid
)

// conditionNode is one waiter in the condition's FIFO. Unlike the C
// original, it carries a Go channel instead of a private pthread_cond_t:
// a channel is exactly "a condition variable with at most one waiter",
// which is the property the wait-queue design relies on — a send wakes
// this node and only this node, with no thundering herd.
type conditionNode struct {
	next  *conditionNode
	ch    chan struct{}
	state conditionState
}

// Condition is a condition variable bound to a ReentrantLock, with an
// explicit FIFO of waiters so wakeups happen in arrival order — something
// a bare OS (or Go runtime) condition variable does not guarantee.
//
// All methods require the caller to already hold the bound lock; calling
// them without it is undefined behavior (in practice: a panic from
// ReentrantLock, or list corruption).
type Condition struct {
	lock   *ReentrantLock
	clock  clockz.Clock
	tracer *tracez.Tracer

	// waitHead is a permanent sentinel; waitHead.next is the next waiter
	// to be signalled. waitTail points at the last waiter, or at
	// waitHead when the list is empty.
	waitHead *conditionNode
	waitTail *conditionNode
}

// NewCondition creates a condition variable from the reentrant lock.
// The condition must not outlive the lock.
func NewCondition(lock *ReentrantLock) (*Condition, error) {
	if lock == nil {
		return nil, newConstructionError("Condition", ErrInvalidArgument)
	}
	head := &conditionNode{state: invalid}
	return &Condition{
		lock:     lock,
		clock:    clockz.RealClock,
		tracer:   tracez.New(),
		waitHead: head,
		waitTail: head,
	}, nil
}

// Await blocks the calling goroutine until signalled or until timeoutMs
// elapses, per the encoding in internal/deadline: 0 never blocks, -1
// blocks forever (and always returns -1), and a positive value is a
// millisecond budget. It returns the remaining budget so callers can
// reuse it across multiple waits without clock drift (spec.md's
// CountDownLatch.Await and LinkedBlockingQueue both depend on this).
func (c *Condition) Await(timeoutMs int64) int64 {
	if timeoutMs == deadline.NoWait {
		return 0
	}

	d := deadline.From(c.clock, timeoutMs)
	node := &conditionNode{ch: make(chan struct{}, 1), state: waiting}

	c.waitTail.next = node
	c.waitTail = node

	_, span := c.tracer.StartSpan(context.Background(), spanConditionAwait)
	span.SetTag(tagAwaitTimeoutMs, strconv.FormatInt(timeoutMs, 10))

	hold := c.lock.unlockFully()

	// A Go channel receive cannot spuriously complete the way
	// pthread_cond_wait can, so — unlike Condition.c — there is no need
	// to loop re-checking node.state here; at most one of these two
	// cases ever fires for this node.
	timerCh, stop := deadline.Timer(c.clock, d)
	select {
	case <-node.ch:
	case <-timerCh:
	}
	stop()

	c.lock.relockFully(hold)

	timedOut := node.state == waiting
	span.SetTag(tagAwaitTimedOut, boolStr(timedOut))
	span.Finish()

	if timedOut {
		c.removeFromQueue(node)
	}
	node.next = nil
	node.state = invalid

	if timeoutMs == deadline.Forever {
		return -1
	}
	return d.Remaining(c.clock)
}

// Signal wakes the earliest-arrived waiter. If that waiter has already
// timed out (state == invalid), the node is simply dropped — Signal does
// not look further down the list, matching the C original; a caller that
// wants a guaranteed wake should loop (SignalAll does exactly that).
func (c *Condition) Signal() {
	head := c.waitHead
	first := head.next
	if first == nil {
		return
	}

	head.next = first.next
	if first == c.waitTail {
		c.waitTail = head
	}

	if first.state != invalid {
		first.next = nil
		first.state = notified
		select {
		case first.ch <- struct{}{}:
		default:
		}
	}
}

// SignalAll repeatedly signals until the wait list is empty.
func (c *Condition) SignalAll() {
	for c.waitHead.next != nil {
		c.Signal()
	}
}

// removeFromQueue unlinks node from wherever it currently sits in the
// list. This also fixes up waitTail when the removed node was the last
// one — the C original's removeFromQueueConditionNode does not, which
// would leave waitTail dangling at a freed node; a stale tail is worse in
// Go than in C (the next Await would append after a node nothing else
// holds), so the fix-up is not optional here.
func (c *Condition) removeFromQueue(node *conditionNode) {
	prev := c.waitHead
	for prev != nil {
		if prev.next == node {
			prev.next = node.next
			if node == c.waitTail {
				c.waitTail = prev
			}
			return
		}
		prev = prev.next
	}
}

func boolStr(b bool) string {
	return strconv.FormatBool(b)
}
