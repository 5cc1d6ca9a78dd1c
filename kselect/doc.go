// Copyright 2016 The Vanadium Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package kselect implements the multiplexed readiness-wait primitive of a
// small kernel: select(nfds, rfds, wfds, efds, timeout), the mechanism by
// which a single calling task blocks until any one of a set of file-like
// handles becomes readable, writable, or exceptional, with an optional
// timeout.
//
// The package fuses four concerns that must stay mutually consistent under
// concurrency: translating descriptor bitmaps into registrations against
// heterogeneous handles (Handle), atomically arming a wakeup on any of N
// condition variables (via nsync.MultiWaiter), arming an independent
// wakeup timer on the calling task, and resolving which wake path fired
// while tolerating spurious wakeups.
//
// There is no real user/kernel address-space split here: Select takes and
// returns plain Go values and pointers in a single process. Where the
// originating kernel copies descriptor sets and timeouts between user and
// kernel memory (and can fail with -EFAULT doing so), this port models that
// step as an explicit, injectable copy-in/copy-out hook on Task — see
// Task.FaultInjector.
package kselect
