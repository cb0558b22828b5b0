// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package office

import (
	"errors"
	"sync"
)

// ErrGateIntegrity ...
var ErrGateIntegrity = errors.New("ErrGateIntegrity")

// ErrGateCanceled ...
var ErrGateCanceled = errors.New("ErrGateCanceled")

// ErrSignalCanceled ...
var ErrSignalCanceled = errors.New("ErrSignalCanceled")

// Signal is a counting wake primitive. Raises accumulate; each Await consumes
// exactly one raise, so a raise delivered while the waiter is busy elsewhere
// is never lost.
type Signal interface {
	Raise()
	Await() error
	CancelWithError(error)
}

type signalImpl struct {
	pending   int
	canceled  bool
	err       error
	condition *sync.Cond
}

// Raise adds one pending wake-up and wakes a suspended waiter if there is one.
func (s *signalImpl) Raise() {
	s.condition.L.Lock()
	defer s.condition.L.Unlock()
	s.pending++
	s.condition.Broadcast()
}

// Await suspends thread execution until a raise is pending or the signal is
// canceled via CancelWithError, then consumes one pending raise.
func (s *signalImpl) Await() error {
	s.condition.L.Lock()
	defer s.condition.L.Unlock()

	for s.pending == 0 && !s.canceled {
		s.condition.Wait()
	}

	if s.canceled {
		if s.err != nil {
			return s.err
		}
		return ErrSignalCanceled
	}

	s.pending--
	return nil
}

// CancelWithError cancels the signal with error and awakes suspended waiters.
func (s *signalImpl) CancelWithError(err error) {
	s.condition.L.Lock()
	defer s.condition.L.Unlock()
	s.canceled = true
	s.err = err
	s.condition.Broadcast()
}

// NewSignal returns new signal instance with zero pending raises.
func NewSignal() Signal {
	return &signalImpl{
		condition: sync.NewCond(&sync.Mutex{}),
	}
}

// Gate is a one-shot completion gate: exactly one WalkThrough, after which
// every AwaitGateCondition returns. Walking through an open gate is an
// integrity error, not a no-op.
type Gate interface {
	WalkThrough() error
	AwaitGateCondition() error
	CancelWithError(error)
}

type gateImpl struct {
	opened    bool
	canceled  bool
	err       error
	condition *sync.Cond
}

// WalkThrough opens this gate, releasing the waiter on the other side.
func (g *gateImpl) WalkThrough() error {
	g.condition.L.Lock()
	defer g.condition.L.Unlock()

	if g.opened {
		return ErrGateIntegrity
	}

	g.opened = true
	g.condition.Broadcast()
	return nil
}

// AwaitGateCondition suspends thread execution until the gate is opened
// or await is canceled via CancelWithError.
func (g *gateImpl) AwaitGateCondition() error {
	g.condition.L.Lock()
	defer g.condition.L.Unlock()

	for !g.opened && !g.canceled {
		g.condition.Wait()
	}

	if g.canceled {
		if g.err != nil {
			return g.err
		}
		return ErrGateCanceled
	}

	return nil
}

// CancelWithError cancels the gate condition with error and awakes suspended
// waiters.
func (g *gateImpl) CancelWithError(err error) {
	g.condition.L.Lock()
	defer g.condition.L.Unlock()
	g.canceled = true
	g.err = err
	g.condition.Broadcast()
}

// NewGate returns new closed gate instance.
func NewGate() Gate {
	return &gateImpl{
		condition: sync.NewCond(&sync.Mutex{}),
	}
}
