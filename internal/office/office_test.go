// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package office

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

type recordingSink struct {
	mu     sync.Mutex
	events []Event
}

func (s *recordingSink) Emit(e Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
}

func (s *recordingSink) ofType(typ EventType) []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Event
	for _, e := range s.events {
		if e.Type == typ {
			out = append(out, e)
		}
	}
	return out
}

func (s *recordingSink) all() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Event(nil), s.events...)
}

func serveOutcome(off *Office, studentID int) func() error {
	return func() error {
		outcome, err := off.RequestService(studentID)
		if err != nil {
			return err
		}
		if outcome != OutcomeServed {
			return fmt.Errorf("student %d: unexpected outcome %v", studentID, outcome)
		}
		return nil
	}
}

func TestServeSingleStudent(t *testing.T) {
	sink := &recordingSink{}
	off := NewOffice(Config{Chairs: 1, TotalServices: 1, Sink: sink})

	var errg errgroup.Group
	errg.Go(serveOutcome(off, 7))

	require.Eventually(t, func() bool { return off.QueueDepth() == 1 }, time.Second, time.Millisecond)
	require.NoError(t, off.ServeNext())
	require.NoError(t, errg.Wait())

	assert.False(t, off.Active())
	assert.Equal(t, int64(0), off.Remaining())
	assert.Len(t, sink.ofType(EventEnqueued), 1)
	assert.Len(t, sink.ofType(EventServiceCompleted), 1)
	assert.Len(t, sink.ofType(EventTerminated), 1)
}

func TestRejectWhenCorridorFull(t *testing.T) {
	sink := &recordingSink{}
	off := NewOffice(Config{Chairs: 1, TotalServices: 1, Sink: sink})

	var errg errgroup.Group
	errg.Go(serveOutcome(off, 1))
	require.Eventually(t, func() bool { return off.QueueDepth() == 1 }, time.Second, time.Millisecond)

	// The single chair is taken: the second student bounces immediately and
	// the queue is untouched.
	outcome, err := off.RequestService(2)
	require.NoError(t, err)
	assert.Equal(t, OutcomeRejected, outcome)
	assert.Equal(t, 1, off.QueueDepth())

	require.NoError(t, off.ServeNext())
	require.NoError(t, errg.Wait())

	rejections := sink.ofType(EventRejected)
	require.Len(t, rejections, 1)
	assert.Equal(t, 2, rejections[0].StudentID)
	served := sink.ofType(EventServiceCompleted)
	require.Len(t, served, 1)
	assert.Equal(t, 1, served[0].StudentID)
}

func TestFIFOCompletionOrder(t *testing.T) {
	const students = 5
	sink := &recordingSink{}
	off := NewOffice(Config{Chairs: students, TotalServices: students, Sink: sink})

	var errg errgroup.Group
	for i := 1; i <= students; i++ {
		errg.Go(serveOutcome(off, i))
		depth := i
		require.Eventually(t, func() bool { return off.QueueDepth() == depth }, time.Second, time.Millisecond)
	}

	for i := 0; i < students; i++ {
		require.NoError(t, off.ServeNext())
	}
	require.NoError(t, errg.Wait())

	completed := sink.ofType(EventServiceCompleted)
	require.Len(t, completed, students)
	for i, e := range completed {
		assert.Equal(t, i+1, e.StudentID, "arrival order must be completion order")
	}
	assert.False(t, off.Active())
}

func TestWakeEmittedOnlyOnEmptyToNonEmpty(t *testing.T) {
	sink := &recordingSink{}
	off := NewOffice(Config{Chairs: 2, TotalServices: 2, Sink: sink})

	var errg errgroup.Group
	errg.Go(serveOutcome(off, 1))
	require.Eventually(t, func() bool { return off.QueueDepth() == 1 }, time.Second, time.Millisecond)
	// the corridor is already occupied: no second wake
	errg.Go(serveOutcome(off, 2))
	require.Eventually(t, func() bool { return off.QueueDepth() == 2 }, time.Second, time.Millisecond)

	require.NoError(t, off.ServeNext())
	require.NoError(t, off.ServeNext())
	require.NoError(t, errg.Wait())

	wakes := sink.ofType(EventMonitorWoken)
	require.Len(t, wakes, 1)
	assert.Equal(t, 1, wakes[0].StudentID)
	assert.Equal(t, "student-1", wakes[0].Actor)
}

func TestMonitorSleepsWhileCorridorEmpty(t *testing.T) {
	off := NewOffice(Config{Chairs: 1, TotalServices: 1})

	serveDone := make(chan error, 1)
	go func() {
		serveDone <- off.ServeNext()
	}()

	select {
	case err := <-serveDone:
		t.Fatalf("ServeNext returned early: %v", err)
	case <-time.After(50 * time.Millisecond):
	}

	var errg errgroup.Group
	errg.Go(serveOutcome(off, 1))

	require.NoError(t, <-serveDone)
	require.NoError(t, errg.Wait())
}

func TestBurstDrainedWithoutLostWakeups(t *testing.T) {
	// Students keep arriving while the monitor is helping; the self-raise
	// after each consultation must keep the monitor going until the corridor
	// is empty again.
	const students, visits = 4, 3
	sink := &recordingSink{}
	off := NewOffice(Config{Chairs: 2, TotalServices: students * visits, Sink: sink})

	monitorDone := make(chan error, 1)
	go func() {
		for off.Active() {
			if err := off.ServeNext(); err != nil {
				monitorDone <- err
				return
			}
		}
		monitorDone <- nil
	}()

	var errg errgroup.Group
	for i := 1; i <= students; i++ {
		id := i
		errg.Go(func() error {
			for received := 0; received < visits; {
				outcome, err := off.RequestService(id)
				if err != nil {
					return err
				}
				if outcome == OutcomeServed {
					received++
				} else {
					time.Sleep(time.Millisecond)
				}
			}
			return nil
		})
	}

	require.NoError(t, errg.Wait())
	require.NoError(t, <-monitorDone)

	assert.False(t, off.Active())
	assert.Equal(t, int64(0), off.Remaining())
	assert.Len(t, sink.ofType(EventServiceCompleted), students*visits)
	assert.Len(t, sink.ofType(EventTerminated), 1)
	for _, e := range sink.all() {
		assert.LessOrEqual(t, e.QueueDepth, 2, "queue depth must never exceed the chair count")
	}
}

func TestStaleRaiseDoesNotWakeIntoEmptyCorridor(t *testing.T) {
	// A student who sits down while the monitor is helping with an empty
	// corridor raises the signal, and the monitor's post-consultation check
	// raises it again for the same ticket. The surplus raise must put the
	// monitor back to sleep, not wake it into an empty corridor.
	release := make(chan struct{})
	off := NewOffice(Config{Chairs: 2, TotalServices: 3, Service: func(*Ticket) { <-release }})

	request := func(id int) chan error {
		ch := make(chan error, 1)
		go func() { ch <- serveOutcome(off, id)() }()
		return ch
	}
	serve := func() chan error {
		ch := make(chan error, 1)
		go func() { ch <- off.ServeNext() }()
		return ch
	}

	s1 := request(1)
	require.Eventually(t, func() bool { return off.QueueDepth() == 1 }, time.Second, time.Millisecond)

	serve1 := serve()
	require.Eventually(t, func() bool { return off.QueueDepth() == 0 }, time.Second, time.Millisecond)

	// arrives mid-consultation, corridor empty: raises the signal
	s2 := request(2)
	require.Eventually(t, func() bool { return off.QueueDepth() == 1 }, time.Second, time.Millisecond)

	release <- struct{}{} // post-consultation check re-raises for the same ticket
	require.NoError(t, <-serve1)
	require.NoError(t, <-s1)

	serve2 := serve()
	release <- struct{}{}
	require.NoError(t, <-serve2)
	require.NoError(t, <-s2)

	serve3 := serve()
	select {
	case err := <-serve3:
		t.Fatalf("ServeNext woke into an empty corridor: %v", err)
	case <-time.After(50 * time.Millisecond):
	}

	s3 := request(3)
	release <- struct{}{}
	require.NoError(t, <-serve3)
	require.NoError(t, <-s3)
	assert.False(t, off.Active())
}

func TestTerminationIsTerminal(t *testing.T) {
	off := NewOffice(Config{Chairs: 1, TotalServices: 1})

	var errg errgroup.Group
	errg.Go(serveOutcome(off, 1))
	require.Eventually(t, func() bool { return off.QueueDepth() == 1 }, time.Second, time.Millisecond)
	require.NoError(t, off.ServeNext())
	require.NoError(t, errg.Wait())

	for i := 0; i < 3; i++ {
		assert.False(t, off.Active())
	}
}

func TestZeroServicesStartsTerminated(t *testing.T) {
	off := NewOffice(Config{Chairs: 1, TotalServices: 0})
	assert.False(t, off.Active())
}

func TestCancelUnblocksMonitor(t *testing.T) {
	off := NewOffice(Config{Chairs: 1, TotalServices: 1})

	serveDone := make(chan error, 1)
	go func() {
		serveDone <- off.ServeNext()
	}()

	err := errors.New("MyErr")
	off.CancelWithError(err)
	assert.Equal(t, err, <-serveDone)
}

func TestCancelUnblocksSeatedStudent(t *testing.T) {
	off := NewOffice(Config{Chairs: 1, TotalServices: 1})

	requestDone := make(chan error, 1)
	go func() {
		_, err := off.RequestService(1)
		requestDone <- err
	}()
	require.Eventually(t, func() bool { return off.QueueDepth() == 1 }, time.Second, time.Millisecond)

	err := errors.New("MyErr")
	off.CancelWithError(err)
	assert.Equal(t, err, <-requestDone)
}

func TestRequestAfterCancel(t *testing.T) {
	off := NewOffice(Config{Chairs: 1, TotalServices: 1})
	off.CancelWithError(nil)

	_, err := off.RequestService(1)
	assert.Equal(t, ErrOfficeClosed, err)

	assert.Equal(t, ErrSignalCanceled, off.ServeNext())
}

func TestServiceRunsOutsideQueueLock(t *testing.T) {
	// A slow consultation must not keep students from taking chairs.
	entered := make(chan struct{})
	release := make(chan struct{})
	var enteredOnce sync.Once
	off := NewOffice(Config{Chairs: 2, TotalServices: 2, Service: func(*Ticket) {
		enteredOnce.Do(func() { close(entered) })
		<-release
	}})

	var errg errgroup.Group
	errg.Go(serveOutcome(off, 1))
	require.Eventually(t, func() bool { return off.QueueDepth() == 1 }, time.Second, time.Millisecond)

	serveDone := make(chan error, 1)
	go func() {
		serveDone <- off.ServeNext()
	}()
	<-entered

	// monitor is mid-consultation; a new arrival still gets a chair
	errg.Go(serveOutcome(off, 2))
	require.Eventually(t, func() bool { return off.QueueDepth() == 1 }, time.Second, time.Millisecond)

	close(release)
	require.NoError(t, <-serveDone)
	require.NoError(t, off.ServeNext())
	require.NoError(t, errg.Wait())
}
