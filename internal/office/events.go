// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package office

import (
	"github.com/google/uuid"
)

// EventType names a state transition of the simulation.
type EventType string

const (
	EventEnqueued         EventType = "Enqueued"
	EventRejected         EventType = "Rejected"
	EventMonitorWoken     EventType = "MonitorWoken"
	EventDequeued         EventType = "Dequeued"
	EventServiceStarted   EventType = "ServiceStarted"
	EventServiceCompleted EventType = "ServiceCompleted"
	EventTerminated       EventType = "Terminated"
)

const (
	// ActorMonitor identifies events emitted from the serving side.
	ActorMonitor = "monitor"
)

// Event is one structured record per state transition. TimeNs is monotonic
// nanoseconds; StudentID is -1 for events with no requesting student.
type Event struct {
	Type       EventType
	TimeNs     int64
	Actor      string
	StudentID  int
	TicketID   uuid.UUID
	QueueDepth int
	Remaining  int64
	Message    string
}

// Sink consumes events. Implementations are write-only and must not block the
// emitting actor for more than a bounded duration.
type Sink interface {
	Emit(Event)
}

// NopSink discards every event.
type NopSink struct{}

func (NopSink) Emit(Event) {}
