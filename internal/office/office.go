// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package office

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/llxisdsh/synx"

	"github.com/mcordoba12/SleepingMonitor/internal/metering"
)

// ErrOfficeClosed ...
var ErrOfficeClosed = errors.New("ErrOfficeClosed")

// Outcome of a single RequestService attempt.
type Outcome int

const (
	// OutcomeServed means the consultation completed.
	OutcomeServed Outcome = iota
	// OutcomeRejected means every corridor chair was taken; the student must
	// retry later. Rejection is a first-class outcome, not an error.
	OutcomeRejected
)

func (o Outcome) String() string {
	if o == OutcomeServed {
		return "Served"
	}
	return "Rejected"
}

// Config carries the immutable parameters of an Office.
type Config struct {
	// Chairs is the corridor capacity, at least 1.
	Chairs int
	// TotalServices is the number of consultations owed across the whole run.
	TotalServices int
	// Service runs the consultation for a dequeued ticket. Called outside the
	// queue lock; may be nil.
	Service func(*Ticket)
	// Sink receives one event per state transition; nil means NopSink.
	Sink Sink
}

// Office is the coordinating object: the bounded FIFO corridor queue, the
// monitor wake signal and the remaining-consultation counter. All shared
// mutable state of the simulation lives here.
type Office struct {
	chairs   int
	service  func(*Ticket)
	sink     Sink
	arrivals Signal

	// mu is a FIFO-fair lock so that no student is starved out of a chair by
	// barging under contention. Critical sections only touch the queue slice.
	mu        synx.TicketLock
	queue     []*Ticket
	closed    bool
	closedErr error

	remaining atomic.Int64
	active    atomic.Bool
}

// NewOffice returns an office that owes cfg.TotalServices consultations.
func NewOffice(cfg Config) *Office {
	sink := cfg.Sink
	if sink == nil {
		sink = NopSink{}
	}
	o := &Office{
		chairs:   cfg.Chairs,
		service:  cfg.Service,
		sink:     sink,
		arrivals: NewSignal(),
	}
	o.remaining.Store(int64(cfg.TotalServices))
	o.active.Store(cfg.TotalServices > 0)
	return o
}

// RequestService is the student side of the rendezvous. It either seats the
// student in the corridor and blocks until the monitor finishes the
// consultation, or returns OutcomeRejected immediately when the corridor is
// full. The queue is left untouched on rejection.
func (o *Office) RequestService(studentID int) (Outcome, error) {
	t := NewTicket(studentID)

	o.mu.Lock()
	if o.closed {
		err := o.closedErr
		o.mu.Unlock()
		if err == nil {
			err = ErrOfficeClosed
		}
		return OutcomeRejected, err
	}
	if len(o.queue) >= o.chairs {
		depth := len(o.queue)
		o.mu.Unlock()
		o.sink.Emit(o.studentEvent(EventRejected, t, depth,
			fmt.Sprintf("student %d: corridor full (%d/%d), will retry later", studentID, depth, o.chairs)))
		return OutcomeRejected, nil
	}
	wasEmpty := len(o.queue) == 0
	o.queue = append(o.queue, t)
	depth := len(o.queue)
	if wasEmpty {
		// Only the empty->non-empty transition wakes the monitor; while it is
		// draining a burst it re-raises the signal itself.
		o.arrivals.Raise()
	}
	o.mu.Unlock()

	o.sink.Emit(o.studentEvent(EventEnqueued, t, depth,
		fmt.Sprintf("student %d: sits down in the corridor (%d/%d seated)", studentID, depth, o.chairs)))
	if wasEmpty {
		o.sink.Emit(o.studentEvent(EventMonitorWoken, t, depth,
			fmt.Sprintf("student %d: wakes the monitor", studentID)))
	}

	if err := t.done.AwaitGateCondition(); err != nil {
		return OutcomeRejected, err
	}
	return OutcomeServed, nil
}

// ServeNext is the monitor side: one call, one consultation. The monitor
// sleeps on the arrival signal while the corridor is empty, pops the head
// ticket in strict arrival order, runs the consultation outside the queue
// lock, opens the ticket's gate and burns one unit of the global remaining
// counter. Reaching zero terminates the office, one-way.
func (o *Office) ServeNext() error {
	var t *Ticket
	var depth int
	for t == nil {
		if err := o.arrivals.Await(); err != nil {
			return err
		}

		o.mu.Lock()
		if o.closed {
			err := o.closedErr
			o.mu.Unlock()
			if err == nil {
				err = ErrOfficeClosed
			}
			return err
		}
		if len(o.queue) == 0 {
			// Stale raise: an arrival and the post-service re-raise can both
			// fire for the same ticket when a student sits down while the
			// monitor is mid-consultation with an empty corridor. Sleep again.
			o.mu.Unlock()
			continue
		}
		t = o.queue[0]
		o.queue = o.queue[1:]
		depth = len(o.queue)
		o.mu.Unlock()
	}

	o.sink.Emit(o.monitorEvent(EventDequeued, t, depth,
		fmt.Sprintf("monitor: calls student %d (%d left in the corridor)", t.StudentID, depth)))
	o.sink.Emit(o.monitorEvent(EventServiceStarted, t, depth,
		fmt.Sprintf("monitor: helping student %d", t.StudentID)))

	if o.service != nil {
		o.service(t)
	}

	if err := t.done.WalkThrough(); err != nil {
		return err
	}

	left := o.remaining.Add(-1)

	o.mu.Lock()
	if len(o.queue) > 0 {
		// More students arrived while helping: self-raise so the next
		// ServeNext call drains the burst without sleeping in between.
		o.arrivals.Raise()
	}
	depth = len(o.queue)
	o.mu.Unlock()

	o.sink.Emit(o.monitorEvent(EventServiceCompleted, t, depth,
		fmt.Sprintf("monitor: done helping student %d (%d consultations left)", t.StudentID, left)))

	if left <= 0 {
		o.active.Store(false)
		o.sink.Emit(o.monitorEvent(EventTerminated, nil, depth,
			"monitor: all consultations delivered, closing the office"))
	}
	return nil
}

// Active reports whether consultations are still owed. It flips to false
// exactly once, inside ServeNext, and never flips back.
func (o *Office) Active() bool {
	return o.active.Load()
}

// Remaining returns the number of consultations still owed.
func (o *Office) Remaining() int64 {
	return o.remaining.Load()
}

// QueueDepth returns the number of students currently seated.
func (o *Office) QueueDepth() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.queue)
}

// CancelWithError aborts every blocking wait on the office: the monitor's
// arrival wait and each seated student's completion wait. Subsequent
// RequestService calls fail with the same error. Used only by the driver's
// abnormal-termination path.
func (o *Office) CancelWithError(err error) {
	o.arrivals.CancelWithError(err)

	o.mu.Lock()
	o.closed = true
	o.closedErr = err
	seated := o.queue
	o.queue = nil
	o.mu.Unlock()

	for _, t := range seated {
		t.done.CancelWithError(err)
	}
}

func (o *Office) studentEvent(typ EventType, t *Ticket, depth int, msg string) Event {
	return Event{
		Type:       typ,
		TimeNs:     metering.Monotime(),
		Actor:      fmt.Sprintf("student-%d", t.StudentID),
		StudentID:  t.StudentID,
		TicketID:   t.ID,
		QueueDepth: depth,
		Remaining:  o.remaining.Load(),
		Message:    msg,
	}
}

func (o *Office) monitorEvent(typ EventType, t *Ticket, depth int, msg string) Event {
	e := Event{
		Type:       typ,
		TimeNs:     metering.Monotime(),
		Actor:      ActorMonitor,
		StudentID:  -1,
		QueueDepth: depth,
		Remaining:  o.remaining.Load(),
		Message:    msg,
	}
	if t != nil {
		e.StudentID = t.StudentID
		e.TicketID = t.ID
	}
	return e
}
