// Copyright 2016 The Vanadium Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package kselect

import "v.io/x/kselect/nsync"

// Handle is the capability-set re-architecture of the kernel's per-file-type
// function-pointer dispatch (spec.md §9): every handle type, regardless of
// its underlying kind, exposes these six pure operations. A handle may be
// perpetually ready with no condition variable (e.g. a regular file), or may
// have a condition variable but not yet be ready; the two are consulted
// independently.
type Handle interface {
	// ReadCond returns the condition variable signaled when this handle
	// may have become read-ready, or nil if this handle type never
	// blocks on read-readiness.
	ReadCond() *nsync.CV
	// ReadReady reports whether the handle is currently ready for
	// reading.
	ReadReady() bool

	// WriteCond and WriteReady are the write-interest analogues of
	// ReadCond/ReadReady.
	WriteCond() *nsync.CV
	WriteReady() bool

	// ExceptCond and ExceptReady are the exceptional-condition analogues
	// of ReadCond/ReadReady.
	ExceptCond() *nsync.CV
	ExceptReady() bool
}

// HandleTable resolves descriptor numbers to Handles for one calling task,
// the Go-native analogue of indexing a task's open-file table
// (get_fs_handle). Lookup failure is reported to the caller of Select as
// ErrBadDescriptor.
type HandleTable interface {
	Lookup(fd int) (h Handle, ok bool)
}

// MapHandleTable is a HandleTable backed by a map, suitable for tests and
// for simple callers that manage their descriptor numbering directly.
type MapHandleTable map[int]Handle

// Lookup implements HandleTable.
func (t MapHandleTable) Lookup(fd int) (Handle, bool) {
	h, ok := t[fd]
	return h, ok
}

// condAccessors and readyAccessors mirror the kernel's static gcf[3]/grf[3]
// function-pointer tables (kernel/select.c), indexed [read, write, except].
var condAccessors = [3]func(Handle) *nsync.CV{
	Handle.ReadCond,
	Handle.WriteCond,
	Handle.ExceptCond,
}

var readyAccessors = [3]func(Handle) bool{
	Handle.ReadReady,
	Handle.WriteReady,
	Handle.ExceptReady,
}
