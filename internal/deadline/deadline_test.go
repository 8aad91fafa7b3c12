package deadline

import (
	"testing"
	"time"

	"github.com/zoobzio/clockz"
)

func TestFromForever(t *testing.T) {
	clock := clockz.NewFakeClock()
	d := From(clock, Forever)
	if d.Expired(clock) {
		t.Fatal("a forever deadline should never be expired")
	}
	if d.Remaining(clock) != Forever {
		t.Fatalf("Remaining() = %d, want %d", d.Remaining(clock), Forever)
	}
}

func TestFromPositiveTimeout(t *testing.T) {
	clock := clockz.NewFakeClock()
	d := From(clock, 100)

	if d.Expired(clock) {
		t.Fatal("a freshly created deadline should not be expired")
	}

	clock.Advance(50 * time.Millisecond)
	if d.Expired(clock) {
		t.Fatal("deadline should not be expired halfway through its budget")
	}
	if remaining := d.Remaining(clock); remaining <= 0 || remaining > 50 {
		t.Fatalf("Remaining() = %d, want roughly 50", remaining)
	}

	clock.Advance(60 * time.Millisecond)
	if !d.Expired(clock) {
		t.Fatal("deadline should be expired once the budget has elapsed")
	}
	if remaining := d.Remaining(clock); remaining != 0 {
		t.Fatalf("Remaining() = %d, want 0 once expired", remaining)
	}
}

func TestTimerFiresAtDeadline(t *testing.T) {
	clock := clockz.NewFakeClock()
	d := From(clock, 10)

	ch, cancel := Timer(clock, d)
	defer cancel()

	select {
	case <-ch:
		t.Fatal("timer should not fire before the clock advances")
	default:
	}

	clock.Advance(15 * time.Millisecond)

	select {
	case <-ch:
	case <-time.After(time.Second):
		t.Fatal("timer never fired after the deadline passed")
	}
}

func TestTimerForeverReturnsNilChannel(t *testing.T) {
	clock := clockz.NewFakeClock()
	d := From(clock, Forever)

	ch, cancel := Timer(clock, d)
	defer cancel()
	if ch != nil {
		t.Fatal("a forever deadline's timer channel should be nil")
	}
}
