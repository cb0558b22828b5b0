// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package telemetry

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/mcordoba12/SleepingMonitor/internal/office"
)

// EventsLogger is an office.Sink that renders events through logrus from a
// background goroutine. Emit never blocks the simulation actors: when the
// buffer is full the event is dropped and counted instead.
type EventsLogger struct {
	logger  *logrus.Logger
	done    chan struct{}
	dropped atomic.Uint64

	// mu keeps Emit from racing Close onto a closed channel.
	mu     sync.RWMutex
	events chan office.Event
	closed bool
}

// NewEventsLogger returns a running events logger with the given buffer size.
func NewEventsLogger(logger *logrus.Logger, buffer int) *EventsLogger {
	l := &EventsLogger{
		logger: logger,
		events: make(chan office.Event, buffer),
		done:   make(chan struct{}),
	}
	go l.drain()
	return l
}

// Emit queues the event for rendering, dropping it if the buffer is full or
// the logger is closed. Safe to call concurrently with Close.
func (l *EventsLogger) Emit(e office.Event) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.closed {
		l.dropped.Add(1)
		return
	}
	select {
	case l.events <- e:
	default:
		l.dropped.Add(1)
	}
}

// Dropped returns the number of events discarded so far.
func (l *EventsLogger) Dropped() uint64 {
	return l.dropped.Load()
}

// Close stops accepting events, drains the buffer and waits for the renderer
// to exit. Emits that race Close are dropped, not panicked on.
func (l *EventsLogger) Close() error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return nil
	}
	l.closed = true
	close(l.events)
	l.mu.Unlock()

	<-l.done
	if n := l.dropped.Load(); n > 0 {
		l.logger.Warnf("dropped %d events on a full buffer", n)
	}
	return nil
}

func (l *EventsLogger) drain() {
	defer close(l.done)
	for e := range l.events {
		fields := logrus.Fields{
			"event":     e.Type,
			"actor":     e.Actor,
			"elapsed":   time.Duration(e.TimeNs).Round(time.Millisecond),
			"queue":     e.QueueDepth,
			"remaining": e.Remaining,
		}
		if e.StudentID >= 0 {
			fields["student"] = e.StudentID
			fields["ticket"] = e.TicketID
		}
		l.logger.WithFields(fields).Info(e.Message)
	}
}
