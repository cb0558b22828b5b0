// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package sim

import (
	"context"
	"math/rand"
	"sync/atomic"

	log "github.com/sirupsen/logrus"

	"github.com/mcordoba12/SleepingMonitor/internal/office"
)

// Student is one client task. It programs for a while, walks to the office,
// and either gets a consultation or finds the corridor full and retries after
// a shorter backoff. It stops once it has received the required number of
// consultations.
type Student struct {
	id         int
	office     *office.Office
	visits     int
	program    DurationRange
	backoff    DurationRange
	rng        *rand.Rand
	rejections *atomic.Int64
}

// Run drives the student until its visit quota is met. It exits early with an
// error when ctx is canceled or the office aborts a blocking wait.
func (s *Student) Run(ctx context.Context) error {
	received := 0
	for received < s.visits {
		log.Debugf("student %d: programming", s.id)
		if err := sleepFor(ctx, s.program.random(s.rng)); err != nil {
			return err
		}

		outcome, err := s.office.RequestService(s.id)
		if err != nil {
			return err
		}
		if outcome == office.OutcomeServed {
			received++
			log.Debugf("student %d: received help (%d/%d)", s.id, received, s.visits)
			continue
		}

		s.rejections.Add(1)
		if err := sleepFor(ctx, s.backoff.random(s.rng)); err != nil {
			return err
		}
	}
	log.Debugf("student %d: completed all consultations", s.id)
	return nil
}
