package gorea

import (
	"sync"

	"github.com/zoobzio/gorea/internal/gid"
)

// ReentrantLock is a mutual-exclusion lock that the same goroutine may
// acquire more than once; it must be unlocked the same number of times it
// was locked. It exists primarily as the lock Condition is built on —
// Condition.Await needs to release every level of recursion before
// blocking and restore it on wake, which sync.Mutex cannot express.
//
// The zero value is not usable; construct with NewReentrantLock.
type ReentrantLock struct {
	sem   chan struct{} // 1-buffered binary semaphore; held == owner has a token
	mu    sync.Mutex    // guards owner/hold below
	owner uint64
	hold  int
}

// NewReentrantLock creates a reentrant lock.
//
// Go channel and mutex allocation cannot fail the way pthread_mutex_init
// can, so unlike the C original this never returns ErrResource — the
// error return is kept for API symmetry with the other constructors and
// is always nil.
func NewReentrantLock() (*ReentrantLock, error) {
	return &ReentrantLock{sem: make(chan struct{}, 1)}, nil
}

// Lock acquires the lock, blocking until available. The same goroutine
// may call Lock again while already holding it.
func (l *ReentrantLock) Lock() {
	id := gid.Current()

	l.mu.Lock()
	if l.hold > 0 && l.owner == id {
		l.hold++
		l.mu.Unlock()
		return
	}
	l.mu.Unlock()

	l.sem <- struct{}{}

	l.mu.Lock()
	l.owner = id
	l.hold = 1
	l.mu.Unlock()
}

// TryLock acquires the lock without blocking, returning false if another
// goroutine currently holds it.
func (l *ReentrantLock) TryLock() bool {
	id := gid.Current()

	l.mu.Lock()
	if l.hold > 0 && l.owner == id {
		l.hold++
		l.mu.Unlock()
		return true
	}
	l.mu.Unlock()

	select {
	case l.sem <- struct{}{}:
		l.mu.Lock()
		l.owner = id
		l.hold = 1
		l.mu.Unlock()
		return true
	default:
		return false
	}
}

// Unlock releases one level of recursion. Unlocking a lock not held by the
// calling goroutine panics, matching the contract that callers must
// unlock exactly as many times as they locked from the same goroutine.
func (l *ReentrantLock) Unlock() {
	l.mu.Lock()
	if l.hold == 0 || l.owner != gid.Current() {
		l.mu.Unlock()
		panic("gorea: Unlock of ReentrantLock not held by this goroutine")
	}
	l.hold--
	if l.hold == 0 {
		l.owner = 0
		l.mu.Unlock()
		<-l.sem
		return
	}
	l.mu.Unlock()
}

// unlockFully is used only by Condition.Await: it drops every level of
// recursion so the lock is truly free for another goroutine, and reports
// the hold count so relockFully can restore it on wake. Callers other
// than Condition must not use this — it breaks the recursion invariant
// for anyone else still nested inside a Lock/Unlock pair.
func (l *ReentrantLock) unlockFully() int {
	l.mu.Lock()
	if l.hold == 0 || l.owner != gid.Current() {
		l.mu.Unlock()
		panic("gorea: Condition.Await called without holding its lock")
	}
	h := l.hold
	l.hold = 0
	l.owner = 0
	l.mu.Unlock()
	<-l.sem
	return h
}

// relockFully restores the recursion depth unlockFully dropped.
func (l *ReentrantLock) relockFully(hold int) {
	id := gid.Current()
	l.sem <- struct{}{}
	l.mu.Lock()
	l.owner = id
	l.hold = hold
	l.mu.Unlock()
}
