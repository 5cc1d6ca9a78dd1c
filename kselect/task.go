// Copyright 2016 The Vanadium Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package kselect

// Task represents the calling task's side of a select() call: the
// Go-native analogue of current_task() at the copy-in/copy-out steps
// (spec.md §3/§4.3). Task holds no scratch buffer; Select copies the
// descriptor sets and the timeout into storage local to each call.
//
// A Task is not safe for concurrent use by multiple goroutines; spec.md's
// explicit Non-goal "supporting more than one calling task per wait
// instance" means one Task must not have two Select calls in flight at
// once.
type Task struct {
	// FaultInjector, if non-nil, is consulted at every copy-in and
	// copy-out step. A non-nil error return simulates a page fault in
	// the corresponding copy_from_user/copy_to_user call and is
	// reported to the caller of Select as ErrFault. This exists because
	// a single Go process has no separate user/kernel address space in
	// which a real copy fault could occur; tests use it to exercise the
	// -EFAULT paths spec.md §7 requires.
	FaultInjector func() error
}

// copy reports the fault-injected error, if any, else nil.
func (t *Task) copy() error {
	if t == nil || t.FaultInjector == nil {
		return nil
	}
	return t.FaultInjector()
}
