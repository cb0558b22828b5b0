// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package sim

import (
	log "github.com/sirupsen/logrus"

	"github.com/mcordoba12/SleepingMonitor/internal/office"
)

// Monitor is the single server task. It keeps serving while the office owes
// consultations; only the shared counter reaching zero ends the loop.
type Monitor struct {
	office *office.Office
}

// Run serves until the office terminates or a blocking wait is canceled.
func (m *Monitor) Run() error {
	for m.office.Active() {
		log.Debug("monitor: waiting for the next student, Zzz")
		if err := m.office.ServeNext(); err != nil {
			return err
		}
	}
	log.Debug("monitor: day is over")
	return nil
}
