// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package office

import (
	"github.com/google/uuid"
)

// Ticket is a student's per-request handle. The owning student blocks on the
// completion gate; the monitor walks through it exactly once after the
// consultation is done.
type Ticket struct {
	ID        uuid.UUID
	StudentID int

	done Gate
}

// NewTicket returns a ticket for studentID with a fresh correlation ID and a
// closed completion gate.
func NewTicket(studentID int) *Ticket {
	return &Ticket{
		ID:        uuid.New(),
		StudentID: studentID,
		done:      NewGate(),
	}
}
