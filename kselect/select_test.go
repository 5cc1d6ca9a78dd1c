// Copyright 2016 The Vanadium Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package kselect_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"v.io/x/kselect/kselect"
)

func TestSelectImmediateReadiness(t *testing.T) {
	table := kselect.MapHandleTable{0: kselect.AlwaysReady{}}
	rfds := kselect.NewFDSet(0)
	n, err := kselect.Select(&kselect.Task{}, table, 1, rfds, nil, nil, nil)
	require.NoError(t, err)
	require.Equal(t, 1, n)
	require.True(t, rfds.IsSet(0))
}

func TestSelectPollNoReadiness(t *testing.T) {
	table := kselect.MapHandleTable{0: &kselect.NeverReady{}}
	rfds := kselect.NewFDSet(0)
	tv := &kselect.Timeval{}
	n, err := kselect.Select(&kselect.Task{}, table, 1, rfds, nil, nil, tv)
	require.NoError(t, err)
	require.Equal(t, 0, n)
	require.False(t, rfds.IsSet(0))
}

func TestSelectWaitThenWake(t *testing.T) {
	p := kselect.NewPipe(16)
	table := kselect.MapHandleTable{0: p}
	rfds := kselect.NewFDSet(0)

	go func() {
		time.Sleep(20 * time.Millisecond)
		p.Push([]byte("hi"))
	}()

	n, err := kselect.Select(&kselect.Task{}, table, 1, rfds, nil, nil, nil)
	require.NoError(t, err)
	require.Equal(t, 1, n)
	require.True(t, rfds.IsSet(0))
}

func TestSelectWaitTimesOut(t *testing.T) {
	table := kselect.MapHandleTable{0: &kselect.NeverReady{}}
	rfds := kselect.NewFDSet(0)
	tv := &kselect.Timeval{Usec: 30000}

	start := time.Now()
	n, err := kselect.Select(&kselect.Task{}, table, 1, rfds, nil, nil, tv)
	elapsed := time.Since(start)
	require.NoError(t, err)
	require.Equal(t, 0, n)
	require.False(t, rfds.IsSet(0))
	require.Equal(t, kselect.Timeval{}, *tv, "remaining timeout should be zero")
	require.GreaterOrEqual(t, elapsed, 25*time.Millisecond)
}

func TestSelectSurvivesSpuriousWakeup(t *testing.T) {
	p := kselect.NewPipe(16)
	table := kselect.MapHandleTable{0: p}
	rfds := kselect.NewFDSet(0)

	go func() {
		time.Sleep(10 * time.Millisecond)
		// Signal the pipe's condition variable without making it ready:
		// a direct broadcast standing in for a spurious wakeup.
		cv := p.ReadCond()
		cv.Broadcast()

		time.Sleep(10 * time.Millisecond)
		p.Push([]byte("x"))
	}()

	n, err := kselect.Select(&kselect.Task{}, table, 1, rfds, nil, nil, nil)
	require.NoError(t, err)
	require.Equal(t, 1, n, "select should survive the spurious wakeup and report readiness")
	require.True(t, rfds.IsSet(0))
}

func TestSelectPortableNanosleep(t *testing.T) {
	tv := &kselect.Timeval{Usec: 20000}
	start := time.Now()
	n, err := kselect.Select(&kselect.Task{}, kselect.MapHandleTable{}, 0, nil, nil, nil, tv)
	elapsed := time.Since(start)
	require.NoError(t, err)
	require.Equal(t, 0, n)
	require.GreaterOrEqual(t, elapsed, 15*time.Millisecond)
}

func TestSelectInvalidNfds(t *testing.T) {
	_, err := kselect.Select(&kselect.Task{}, kselect.MapHandleTable{}, -1, nil, nil, nil, nil)
	require.ErrorIs(t, err, kselect.ErrInvalidArgument)

	_, err = kselect.Select(&kselect.Task{}, kselect.MapHandleTable{}, kselect.MaxHandles+1, nil, nil, nil, nil)
	require.ErrorIs(t, err, kselect.ErrInvalidArgument)
}

func TestSelectBadDescriptor(t *testing.T) {
	rfds := kselect.NewFDSet(0)
	_, err := kselect.Select(&kselect.Task{}, kselect.MapHandleTable{}, 1, rfds, nil, nil, nil)
	require.ErrorIs(t, err, kselect.ErrBadDescriptor)
}

// vanishingTable answers the first lookup for a descriptor (the counting
// pass) and fails every subsequent one (the arming pass), modelling a
// handle that disappears from the table between select's count-conditions
// step and its register-conditions step.
type vanishingTable struct {
	h     kselect.Handle
	calls int
}

func (v *vanishingTable) Lookup(fd int) (kselect.Handle, bool) {
	v.calls++
	if v.calls > 1 {
		return nil, false
	}
	return v.h, true
}

func TestSelectBadDescriptorDuringArming(t *testing.T) {
	rfds := kselect.NewFDSet(0)
	table := &vanishingTable{h: &kselect.NeverReady{}}
	_, err := kselect.Select(&kselect.Task{}, table, 1, rfds, nil, nil, nil)
	require.ErrorIs(t, err, kselect.ErrBadDescriptor, "a handle vanishing between counting and arming must abort the wait, not be silently dropped")
}

func TestSelectFaultInjection(t *testing.T) {
	rfds := kselect.NewFDSet(0)
	table := kselect.MapHandleTable{0: kselect.AlwaysReady{}}
	task := &kselect.Task{FaultInjector: func() error { return errors.New("injected fault") }}
	_, err := kselect.Select(task, table, 1, rfds, nil, nil, nil)
	require.ErrorIs(t, err, kselect.ErrFault)
}
