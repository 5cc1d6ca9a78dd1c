// Copyright 2016 The Vanadium Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package kselect

import (
	"time"

	"v.io/x/kselect/nsync"
	"v.io/x/kselect/vlog"
)

// Select is the readiness-wait orchestrator of spec.md §4.2: it blocks task
// until any handle named in rfds, wfds, or efds (descriptors in [0, nfds))
// becomes ready for the corresponding interest kind, or until timeout
// elapses, whichever comes first. Any of rfds, wfds, efds, timeout may be
// nil ("absent"), independently.
//
// On return, each non-nil set has every bit not corresponding to a ready
// descriptor cleared, and a non-nil timeout holds the time remaining (zero
// if it expired). The return value is the total number of ready
// descriptors across all three sets; the same descriptor appearing in more
// than one set is counted once per set.
func Select(task *Task, table HandleTable, nfds int, rfds, wfds, efds *FDSet, timeout *Timeval) (int, error) {
	if nfds < 0 || nfds > MaxHandles {
		return 0, ErrInvalidArgument
	}

	// --- Marshal (spec.md §4.2 step 1, §4.3): copy descriptor sets and
	// the timeout into task-local scratch storage. ---
	userSets := [3]*FDSet{rfds, wfds, efds}
	var scratch [3]FDSet
	var sets [3]*FDSet
	for i, u := range userSets {
		if u == nil {
			continue
		}
		if err := task.copy(); err != nil {
			return 0, ErrFault
		}
		scratch[i] = *u
		sets[i] = &scratch[i]
	}

	var tv *Timeval
	var timeoutTicks uint32
	if timeout != nil {
		if err := task.copy(); err != nil {
			return 0, ErrFault
		}
		local := *timeout
		tv = &local
		timeoutTicks = ticksFromTimeval(local)
	}

	vlog.VI(2).Infof("select(nfds=%d, rfds=%v, wfds=%v, efds=%v, tv=%v)", nfds, sets[0], sets[1], sets[2], tv)

	// --- Count interesting conditions (step 2). Skipped entirely for a
	// zero timeout: no sleeping will occur. ---
	var condCnt int
	if tv == nil || timeoutTicks > 0 {
		for i := 0; i < 3; i++ {
			n, err := countConditions(nfds, sets[i], table, condAccessors[i])
			if err != nil {
				return 0, err
			}
			condCnt += n
		}
	}

	// --- Decide path (step 3) ---
	switch {
	case condCnt > 0:
		if err := waitOnConditions(nfds, sets, table, tv, timeoutTicks, condCnt); err != nil {
			return 0, err
		}
	case tv != nil && timeoutTicks > 0:
		// No conditions to monitor: the documented "portable nanosleep"
		// idiom (kernel/select.c's comment on this exact corner case).
		vlog.VI(1).Infof("select: no conditions of interest, sleeping %d ticks", timeoutTicks)
		time.Sleep(time.Duration(timeoutTicks) * tickDuration)
		tv.Sec, tv.Usec = 0, 0
	}

	// --- Resolve (step 4): rescan, clear non-ready bits, count, copy out. ---
	total := 0
	for i := 0; i < 3; i++ {
		if sets[i] == nil {
			continue
		}
		total += resolveReadySet(nfds, sets[i], table, readyAccessors[i])
	}
	for i, u := range userSets {
		if u == nil {
			continue
		}
		if err := task.copy(); err != nil {
			return total, ErrFault
		}
		*u = *sets[i]
	}
	if timeout != nil {
		if err := task.copy(); err != nil {
			return total, ErrFault
		}
		*timeout = *tv
	}
	return total, nil
}

// countConditions counts, among the descriptors set in set (if any), those
// whose handle exposes a non-nil condition variable for this interest
// kind. It is the Go rendering of select_count_kcond.
func countConditions(nfds int, set *FDSet, table HandleTable, cond func(Handle) *nsync.CV) (int, error) {
	if set == nil {
		return 0, nil
	}
	n := 0
	for fd := 0; fd < nfds; fd++ {
		if !set.IsSet(fd) {
			continue
		}
		h, ok := table.Lookup(fd)
		if !ok {
			return 0, ErrBadDescriptor
		}
		if cond(h) != nil {
			n++
		}
	}
	return n, nil
}

// countReadyStreams peeks (without mutating any set) at how many
// descriptors across all three sets are currently ready. It is the Go
// rendering of count_ready_streams, used by the wait loop to distinguish a
// genuine wakeup from a spurious one.
func countReadyStreams(nfds int, sets [3]*FDSet, table HandleTable) int {
	count := 0
	for i := 0; i < 3; i++ {
		set := sets[i]
		if set == nil {
			continue
		}
		ready := readyAccessors[i]
		for fd := 0; fd < nfds; fd++ {
			if !set.IsSet(fd) {
				continue
			}
			h, ok := table.Lookup(fd)
			if ok && ready(h) {
				count++
			}
		}
	}
	return count
}

// condSlot names one (set, descriptor) pair that was armed against a
// MultiWaiter slot; armSlots and rearmFiredSlots traverse descriptors in
// the same order to build and later reconsult this list, so that a given
// slot index always refers to the same descriptor for the lifetime of one
// wait.
type condSlot struct {
	setIdx int
	fd     int
	cv     *nsync.CV
}

// armSlots walks sets in the same [read, write, except] x [0, nfds) order
// as countConditions and arms one MultiWaiter slot per descriptor that
// exposes a condition variable, returning the list of what was armed
// where. If a handle lookup fails mid-registration, it aborts immediately
// with ErrBadDescriptor rather than silently skipping the descriptor. It
// is the Go rendering of select_set_kcond.
func armSlots(nfds int, sets [3]*FDSet, table HandleTable, mw *nsync.MultiWaiter) ([]condSlot, error) {
	var slots []condSlot
	for i := 0; i < 3; i++ {
		set := sets[i]
		if set == nil {
			continue
		}
		cond := condAccessors[i]
		for fd := 0; fd < nfds; fd++ {
			if !set.IsSet(fd) {
				continue
			}
			h, ok := table.Lookup(fd)
			if !ok {
				return nil, ErrBadDescriptor
			}
			cv := cond(h)
			if cv == nil {
				continue
			}
			mw.SetSlot(len(slots), cv)
			slots = append(slots, condSlot{setIdx: i, fd: fd, cv: cv})
		}
	}
	return slots, nil
}

// rearmFiredSlots re-subscribes every slot that has already fired, ahead of
// another call to mw.Sleep. The real kernel's select loop never tears down
// a slot's registration merely because its condvar fired once (only a
// rescan finding the descriptor genuinely ready ends the wait), so a slot
// that fired spuriously must be able to fire again; re-arming is how this
// port reproduces that without mutating MultiWaiter's single-fire contract.
func rearmFiredSlots(mw *nsync.MultiWaiter, slots []condSlot) {
	for i, s := range slots {
		if !mw.Fired(i) {
			continue
		}
		mw.ResetSlot(i)
		mw.SetSlot(i, s.cv)
	}
}

// waitOnConditions is the blocking core of Select: it sleeps until a
// descriptor becomes ready or the timeout expires, tolerating any number
// of spurious wakeups in between. It is the Go rendering of
// select_wait_on_cond.
func waitOnConditions(nfds int, sets [3]*FDSet, table HandleTable, tv *Timeval, timeoutTicks uint32, condCnt int) error {
	mw, err := nsync.NewMultiWaiter(condCnt)
	if err != nil {
		return ErrNoMemory
	}
	defer mw.Release()

	slots, err := armSlots(nfds, sets, table, mw)
	if err != nil {
		return err
	}

	var timer WakeupTimer
	haveTimer := tv != nil
	if haveTimer {
		timer.Arm(timeoutTicks)
	}

	for {
		deadline := nsync.NoDeadline
		if haveTimer {
			deadline = timer.Deadline()
		}
		woken := mw.Sleep(deadline)

		if countReadyStreams(nfds, sets, table) > 0 {
			break
		}
		if !woken {
			// The timer fired and nothing is ready: the wait is over,
			// unsuccessfully.
			break
		}
		// Spurious wakeup: some slot fired but rescanning shows no
		// descriptor is actually ready yet. Re-arm the fired slots and
		// go back to sleep; the timer (if any) is left untouched, since
		// it was armed once for the whole wait.
		vlog.VI(1).Infof("select: spurious wakeup, %d descriptors still not ready", condCnt)
		rearmFiredSlots(mw, slots)
	}

	if haveTimer {
		remaining := timer.Cancel()
		*tv = timevalFromTicks(remaining)
	}
	return nil
}

// resolveReadySet clears every bit in set whose handle is not currently
// ready (or no longer resolves) for the given interest kind, and returns
// the number of bits left set. It is the Go rendering of select_set_ready.
func resolveReadySet(nfds int, set *FDSet, table HandleTable, ready func(Handle) bool) int {
	total := 0
	for fd := 0; fd < nfds; fd++ {
		if !set.IsSet(fd) {
			continue
		}
		h, ok := table.Lookup(fd)
		if !ok || !ready(h) {
			set.Clear(fd)
		} else {
			total++
		}
	}
	return total
}
