// Copyright 2016 The Vanadium Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package kselect_test

import (
	"testing"

	"v.io/x/kselect/kselect"
)

func TestFDSetBasics(t *testing.T) {
	s := kselect.NewFDSet(1, 3, 64, 200)
	for _, fd := range []int{1, 3, 64, 200} {
		if !s.IsSet(fd) {
			t.Errorf("IsSet(%d) = false, want true", fd)
		}
	}
	for _, fd := range []int{0, 2, 63, 65, 201} {
		if s.IsSet(fd) {
			t.Errorf("IsSet(%d) = true, want false", fd)
		}
	}
	if got, want := s.Count(256), 4; got != want {
		t.Errorf("Count(256) = %d, want %d", got, want)
	}
	s.Clear(3)
	if s.IsSet(3) {
		t.Error("IsSet(3) true after Clear(3)")
	}
	if got, want := s.Count(256), 3; got != want {
		t.Errorf("Count(256) after Clear = %d, want %d", got, want)
	}
}

func TestFDSetZeroValueEmpty(t *testing.T) {
	var s kselect.FDSet
	if s.Count(kselect.MaxHandles) != 0 {
		t.Error("zero-value FDSet is not empty")
	}
}
