// Copyright 2016 The Vanadium Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package nsync

import (
	"errors"
	"sync/atomic"
	"time"
)

// ErrNoMemory names the failure to allocate a waiter. NewMultiWaiter
// allocates its slots with make and never returns it; its only error is
// for a negative slot count.
var ErrNoMemory = errors.New("nsync: out of memory allocating waiter")

// A MultiWaiter lets a single goroutine sleep until at least one of a set of
// condition variables is signaled, or a deadline expires. It is the
// goroutine-native analogue of a kernel's multi_obj_waiter: a task may
// subscribe to many CVs at once through one MultiWaiter, then make a single
// blocking call that returns as soon as any of them fires.
//
// A MultiWaiter is not safe for concurrent use by multiple goroutines; it is
// owned by the single calling goroutine for the duration of one wait, exactly
// as a kernel's multi_obj_waiter belongs to one task.
type MultiWaiter struct {
	slots []Slot
	sem   binarySemaphore // shared among every slot's underlying waiter
}

// A Slot is one element of a MultiWaiter: it is either empty, or armed
// against a single *CV. Once armed, Fired reports whether that CV has
// signaled this slot since it was armed.
type Slot struct {
	cv *CV
	w  *waiter
}

// NewMultiWaiter returns a MultiWaiter with exactly n empty slots. n == 0 is
// permitted: Sleep on such a waiter returns as soon as the deadline (if any)
// expires, since there is nothing else to wait for.
func NewMultiWaiter(n int) (*MultiWaiter, error) {
	if n < 0 {
		return nil, errors.New("nsync: negative slot count")
	}
	mw := &MultiWaiter{slots: make([]Slot, n)}
	mw.sem.Init()
	return mw, nil
}

// Len returns the number of slots in the waiter.
func (mw *MultiWaiter) Len() int {
	return len(mw.slots)
}

// SetSlot arms slot index to listen on cv. The slot must currently be empty.
// A signal delivered to cv any time after SetSlot returns is guaranteed to be
// observed, either by waking a concurrent Sleep or by a subsequent Fired
// check.
func (mw *MultiWaiter) SetSlot(index int, cv *CV) {
	s := &mw.slots[index]
	if s.cv != nil {
		panic("nsync: MultiWaiter slot already set")
	}
	w := &waiter{waiting: 1}
	w.q.elem = w
	w.sem.ch = mw.sem.ch // share one wakeup channel across every slot
	s.cv = cv
	s.w = w
	cv.enqueue(w)
}

// Fired reports whether the condition variable armed on slot index has
// signaled this waiter since it was armed. It is the post-wakeup evidence
// that attributes a wakeup to a specific slot: the slot itself (its cv
// reference) is left untouched, while the underlying subscription is
// consumed the moment the signal is observed.
func (mw *MultiWaiter) Fired(index int) bool {
	s := &mw.slots[index]
	if s.w == nil {
		return false
	}
	return loadWaiting(s.w) == 0
}

// Sleep suspends the calling goroutine until at least one armed slot is
// signaled, or until deadline (if deadline != NoDeadline) elapses. It
// returns true if woken by a signal, false if woken by the deadline.
//
// Sleep may be called more than once on the same MultiWaiter (e.g. after a
// spurious wakeup where no descriptor turned out to be ready); slots that
// already fired remain fired, and Sleep returns immediately in that case.
func (mw *MultiWaiter) Sleep(deadline time.Time) (signaled bool) {
	// Discard a wakeup left over from a signal that an earlier call already
	// accounted for, so that only signals to the slots armed now wake us.
	select {
	case <-mw.sem.ch:
	default:
	}
	for _, s := range mw.slots {
		if s.w != nil && loadWaiting(s.w) == 0 {
			return true // already fired since it was armed or last observed
		}
	}
	var deadlineChan <-chan time.Time
	if deadline != NoDeadline {
		d := time.Until(deadline)
		if d <= 0 {
			return false
		}
		t := time.NewTimer(d)
		defer t.Stop()
		deadlineChan = t.C
	}
	select {
	case <-mw.sem.ch:
		return true
	case <-deadlineChan:
		return false
	}
}

// ResetSlot detaches slot index from its condition variable (if it has not
// already fired) and marks the slot empty. It is idempotent.
func (mw *MultiWaiter) ResetSlot(index int) {
	s := &mw.slots[index]
	if s.cv == nil {
		return
	}
	s.cv.dequeueIfStillWaiting(s.w)
	s.cv = nil
	s.w = nil
}

// Release resets every slot in mw. After Release, mw must not be used again
// except to be discarded; a released MultiWaiter holds no registrations.
func (mw *MultiWaiter) Release() {
	for i := range mw.slots {
		mw.ResetSlot(i)
	}
}

func loadWaiting(w *waiter) uint32 {
	return atomic.LoadUint32(&w.waiting)
}
