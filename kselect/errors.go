// Copyright 2016 The Vanadium Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package kselect

import "errors"

// The error taxonomy at the select() boundary (spec.md §6/§7). Each maps to
// exactly one of the four negative errno values a real select(2) can
// return; there is no partial success.
var (
	// ErrInvalidArgument is returned when nfds is outside [0, MaxHandles].
	// Maps to -EINVAL.
	ErrInvalidArgument = errors.New("kselect: invalid argument")

	// ErrBadDescriptor is returned when a set bit names a descriptor with
	// no open handle. Maps to -EBADF.
	ErrBadDescriptor = errors.New("kselect: bad file descriptor")

	// ErrNoMemory is returned when the multi-object waiter for the wait
	// path could not be allocated. Maps to -ENOMEM.
	ErrNoMemory = errors.New("kselect: cannot allocate wait object")

	// ErrFault is returned when copying a descriptor set or timeout
	// to/from the calling task's memory fails. Maps to -EFAULT.
	ErrFault = errors.New("kselect: bad address")
)
