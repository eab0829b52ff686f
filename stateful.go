// Copyright 2023 The flatgeobuf (Go) Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package pointsearch

import "sync/atomic"

// stateful tracks the single-use lifecycle of a SearchContext. The
// state is atomic so that a query racing a Destroy, which is already a
// caller bug, is at least reported consistently.
type stateful struct {
	state atomic.Int32
}

type state = int32

const (
	uninitialized state = 0x00
	live          state = 0x01
	destroyed     state = 0x02
)

func (s *stateful) init() {
	if !s.state.CompareAndSwap(uninitialized, live) {
		textPanic("logic error: already initialized")
	}
}

// mustBeLive panics unless the context is usable.
func (s *stateful) mustBeLive() {
	if st := s.state.Load(); st != live {
		s.fail(st)
	}
}

// toDestroyed moves the context to its terminal state, panicking if it
// was not live.
func (s *stateful) toDestroyed() {
	if !s.state.CompareAndSwap(live, destroyed) {
		s.fail(s.state.Load())
	}
}

func (s *stateful) fail(st state) {
	if st == destroyed {
		textPanic(errDestroyed)
	}
	fmtPanic("invalid state 0x%x (use Create)", st)
}
