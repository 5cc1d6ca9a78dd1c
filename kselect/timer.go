// Copyright 2016 The Vanadium Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package kselect

import (
	"math"
	"time"

	"v.io/x/kselect/nsync"
)

// TimerHZ is the kernel's periodic timer rate, ticks per second. It is
// build-time configuration (spec.md §6, "Tick domain"); 100 matches the
// original kernel's default.
const TimerHZ = 100

const tickDuration = time.Second / TimerHZ

// Timeval mirrors the select() timeout argument: {seconds, microseconds},
// nonnegative. The zero value is a zero timeout ("poll and return
// immediately").
type Timeval struct {
	Sec  uint32
	Usec uint32
}

// ticksFromTimeval converts tv to a tick count, truncating the microsecond
// remainder per spec.md §6 and clamping to the maximum representable
// uint32 tick count ("select() can't sleep for more than UINT32_MAX
// ticks").
func ticksFromTimeval(tv Timeval) uint32 {
	total := uint64(tv.Sec)*uint64(TimerHZ) + uint64(tv.Usec)/(1000000/uint64(TimerHZ))
	if total > math.MaxUint32 {
		return math.MaxUint32
	}
	return uint32(total)
}

// timevalFromTicks is the inverse conversion, used to report time remaining
// on a canceled wakeup timer.
func timevalFromTicks(ticks uint32) Timeval {
	return Timeval{
		Sec:  ticks / TimerHZ,
		Usec: (ticks % TimerHZ) * (1000000 / TimerHZ),
	}
}

// WakeupTimer models a task's single one-shot wakeup timer (spec.md §3):
// separate from condition-variable wakeups, and at most one active per
// task. Select arms one before entering the wait loop and it persists,
// un-re-armed, across any number of spurious wakeups (spec.md §9, "the
// timer is armed once before the loop and persists across spurious
// wakeups").
type WakeupTimer struct {
	ticks    uint32
	deadline time.Time
	active   bool
}

// Arm starts (or restarts) the timer for ticks ticks from now.
func (t *WakeupTimer) Arm(ticks uint32) {
	t.ticks = ticks
	t.deadline = time.Now().Add(time.Duration(ticks) * tickDuration)
	t.active = true
}

// Deadline returns the absolute time the timer will fire, or
// nsync.NoDeadline if the timer is not currently armed.
func (t *WakeupTimer) Deadline() time.Time {
	if !t.active {
		return nsync.NoDeadline
	}
	return t.deadline
}

// Cancel disarms the timer and returns the whole number of ticks remaining
// at the moment of cancellation (0 if the deadline had already passed),
// the Go-native analogue of task_cancel_wakeup_timer.
func (t *WakeupTimer) Cancel() uint32 {
	if !t.active {
		return 0
	}
	t.active = false
	remaining := time.Until(t.deadline)
	if remaining <= 0 {
		return 0
	}
	return uint32(remaining / tickDuration)
}
