package gorea

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/zoobzio/capitan"
	"github.com/zoobzio/gorea/internal/gid"
	"github.com/zoobzio/hookz"
)

// ThreadLocalDestroyEvent is the payload delivered to hooks registered on
// a ThreadLocal's destroy-notification slot.
type ThreadLocalDestroyEvent struct {
	GoroutineID uint64
}

const hookThreadLocalDestroy = hookz.Key("threadlocal.destroy")

type threadLocalSlot[T any] struct {
	item    T
	present bool
	deleter func(T)
}

// ThreadLocal holds one value per goroutine, each with an optional
// destructor. Go has no addressable per-goroutine storage and no
// goroutine-exit hook the way pthread_key_create gives a thread-exit
// destructor, so unlike the C original, reclaiming a goroutine's slot on
// exit is not automatic: callers that want the deleter to run must call
// Release before the goroutine returns. This is the practical
// approximation of "thread exit invokes the deleter" a garbage-collected
// runtime without real TLS can offer.
type ThreadLocal[T any] struct {
	mu          sync.RWMutex
	slots       map[uint64]*threadLocalSlot[T]
	hooks       *hookz.Hooks[ThreadLocalDestroyEvent]
	initialized atomic.Bool
}

// NewThreadLocal creates an empty ThreadLocal[T].
func NewThreadLocal[T any]() *ThreadLocal[T] {
	tl := &ThreadLocal[T]{
		slots: make(map[uint64]*threadLocalSlot[T]),
		hooks: hookz.New[ThreadLocalDestroyEvent](),
	}
	tl.initialized.Store(true)
	return tl
}

// OnDestroy registers a hook invoked whenever a goroutine's slot is
// reclaimed, either via Release or Destroy.
func (tl *ThreadLocal[T]) OnDestroy(handler func(context.Context, ThreadLocalDestroyEvent) error) error {
	_, err := tl.hooks.Hook(hookThreadLocalDestroy, handler)
	return err
}

// Get returns the calling goroutine's current value, or the zero value
// and false if none has been set.
func (tl *ThreadLocal[T]) Get() (T, bool) {
	var zero T
	if !tl.initialized.Load() {
		return zero, false
	}
	tl.mu.RLock()
	defer tl.mu.RUnlock()
	slot, ok := tl.slots[gid.Current()]
	if !ok || !slot.present {
		return zero, false
	}
	return slot.item, true
}

// Set stores item for the calling goroutine, invoking the previous
// deleter (if any) first, and installs deleter to run on the next
// Set/Release/Destroy. It returns false if the ThreadLocal has been
// destroyed.
func (tl *ThreadLocal[T]) Set(item T, deleter func(T)) bool {
	if !tl.initialized.Load() {
		return false
	}
	tl.mu.Lock()
	defer tl.mu.Unlock()

	id := gid.Current()
	slot, ok := tl.slots[id]
	if !ok {
		slot = &threadLocalSlot[T]{}
		tl.slots[id] = slot
	} else if slot.present && slot.deleter != nil {
		slot.deleter(slot.item)
	}
	slot.item = item
	slot.present = true
	slot.deleter = deleter
	return true
}

// ComputeIfAbsent returns the calling goroutine's current value if
// present; otherwise it calls builder(arg), stores the result with
// deleter, and returns it. If builder fails (returns ok == false) or the
// store fails (ThreadLocal already destroyed), ComputeIfAbsent invokes
// deleter on the built value, if any, and returns the zero value and
// false.
func (tl *ThreadLocal[T]) ComputeIfAbsent(builder func(arg any) (T, bool), arg any, deleter func(T)) (T, bool) {
	if v, ok := tl.Get(); ok {
		return v, true
	}

	var zero T
	if builder == nil {
		return zero, false
	}

	item, ok := builder(arg)
	if !ok {
		return zero, false
	}

	if !tl.Set(item, deleter) {
		if deleter != nil {
			deleter(item)
		}
		return zero, false
	}
	return item, true
}

// Release reclaims the calling goroutine's slot, invoking its deleter if
// one is installed. Call this before a goroutine that used the
// ThreadLocal returns, since Go cannot do it automatically on exit.
func (tl *ThreadLocal[T]) Release() {
	tl.mu.Lock()
	id := gid.Current()
	slot, ok := tl.slots[id]
	if ok {
		delete(tl.slots, id)
	}
	tl.mu.Unlock()

	if ok && slot.present && slot.deleter != nil {
		slot.deleter(slot.item)
	}
	if ok {
		_ = tl.hooks.Emit(context.Background(), hookThreadLocalDestroy, ThreadLocalDestroyEvent{GoroutineID: id}) //nolint:errcheck
	}
}

// Destroy is a one-shot transition that revokes the key: subsequent
// Get/Set/ComputeIfAbsent calls on any goroutine see an empty slot (Get
// returns false, Set returns false). It does not reach into other
// goroutines' already-set values to invoke their deleters — matching
// spec.md exactly ("does not reach into other threads' storage") — only
// the calling goroutine's own slot, if any, is reclaimed here.
func (tl *ThreadLocal[T]) Destroy() {
	if !tl.initialized.CompareAndSwap(true, false) {
		return
	}

	tl.mu.Lock()
	id := gid.Current()
	slot, ok := tl.slots[id]
	delete(tl.slots, id)
	tl.mu.Unlock()

	if ok && slot.present && slot.deleter != nil {
		slot.deleter(slot.item)
	}
	if ok {
		_ = tl.hooks.Emit(context.Background(), hookThreadLocalDestroy, ThreadLocalDestroyEvent{GoroutineID: id}) //nolint:errcheck
	}

	capitan.Info(context.Background(), SignalThreadLocalDestroyed) //nolint:errcheck
	tl.hooks.Close()
}
