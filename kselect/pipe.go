// Copyright 2016 The Vanadium Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package kselect

import (
	"sync"

	"v.io/x/kselect/nsync"
)

// AlwaysReady is a Handle for file-like objects that never block on any
// interest kind, such as regular files: ReadCond/WriteCond/ExceptCond all
// return nil, and the Ready predicates all return true. Select still counts
// such a descriptor as ready on resolution; it never contributes a slot to
// the wait path.
type AlwaysReady struct{}

func (AlwaysReady) ReadCond() *nsync.CV   { return nil }
func (AlwaysReady) ReadReady() bool       { return true }
func (AlwaysReady) WriteCond() *nsync.CV  { return nil }
func (AlwaysReady) WriteReady() bool      { return true }
func (AlwaysReady) ExceptCond() *nsync.CV { return nil }
func (AlwaysReady) ExceptReady() bool     { return true }

// NeverReady is a Handle that blocks forever on every interest kind and is
// never ready; useful in tests for descriptors that should never wake a
// wait path on their own.
type NeverReady struct {
	cv nsync.CV
}

func (h *NeverReady) ReadCond() *nsync.CV   { return &h.cv }
func (h *NeverReady) ReadReady() bool       { return false }
func (h *NeverReady) WriteCond() *nsync.CV  { return &h.cv }
func (h *NeverReady) WriteReady() bool      { return false }
func (h *NeverReady) ExceptCond() *nsync.CV { return &h.cv }
func (h *NeverReady) ExceptReady() bool     { return false }

// Pipe is a bounded in-memory byte pipe: a minimal Handle implementation
// that actually exercises read- and write-readiness, standing in for the
// VFS pipe handles the original kernel's select() is most often called
// with. A single condition variable covers both read and write interest,
// broadcast whenever the buffer's occupancy changes.
type Pipe struct {
	mu       sync.Mutex
	cv       nsync.CV
	buf      []byte
	capacity int
	closed   bool
}

// NewPipe returns an empty Pipe that can hold up to capacity bytes before
// Write blocks (readiness-wise; Pipe itself does not implement blocking
// I/O, only the readiness predicates select() consumes).
func NewPipe(capacity int) *Pipe {
	return &Pipe{capacity: capacity}
}

// Push appends b to the pipe's buffer, as though a writer produced data,
// and wakes any task waiting for this pipe to become read-ready.
func (p *Pipe) Push(b []byte) {
	p.mu.Lock()
	p.buf = append(p.buf, b...)
	p.mu.Unlock()
	p.cv.Broadcast()
}

// Pop removes and returns up to len(b) bytes from the pipe's buffer,
// reporting how many were copied, and wakes any task waiting for this pipe
// to become write-ready.
func (p *Pipe) Pop(b []byte) int {
	p.mu.Lock()
	n := copy(b, p.buf)
	p.buf = p.buf[n:]
	p.mu.Unlock()
	if n > 0 {
		p.cv.Broadcast()
	}
	return n
}

// Close marks the pipe at end-of-file: it becomes permanently read-ready
// (so readers observe EOF rather than blocking forever) and wakes waiters.
func (p *Pipe) Close() {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
	p.cv.Broadcast()
}

func (p *Pipe) ReadCond() *nsync.CV { return &p.cv }

func (p *Pipe) ReadReady() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.buf) > 0 || p.closed
}

func (p *Pipe) WriteCond() *nsync.CV { return &p.cv }

func (p *Pipe) WriteReady() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed || len(p.buf) < p.capacity
}

func (p *Pipe) ExceptCond() *nsync.CV { return nil }
func (p *Pipe) ExceptReady() bool     { return false }
