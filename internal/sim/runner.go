// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package sim

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mcordoba12/SleepingMonitor/internal/office"
)

// ErrMonitorStalled ...
var ErrMonitorStalled = errors.New("ErrMonitorStalled")

// Params carries the immutable parameters of one simulation run.
type Params struct {
	Students int
	Chairs   int
	Visits   int

	Program DurationRange
	Consult DurationRange
	Backoff DurationRange

	// Grace is how long the monitor gets to notice termination after the last
	// student finished before it is force-canceled.
	Grace time.Duration

	Sink office.Sink

	// Seed makes runs reproducible when non-zero.
	Seed int64
}

// Validate rejects parameter combinations the simulation cannot run with.
func (p Params) Validate() error {
	if p.Students < 1 {
		return fmt.Errorf("students must be at least 1, got %d", p.Students)
	}
	if p.Chairs < 1 {
		return fmt.Errorf("chairs must be at least 1, got %d", p.Chairs)
	}
	if p.Visits < 1 {
		return fmt.Errorf("visits must be at least 1, got %d", p.Visits)
	}
	if p.Program.Min < 0 || p.Consult.Min < 0 || p.Backoff.Min < 0 {
		return errors.New("duration ranges must not be negative")
	}
	return nil
}

// Report summarizes a finished run.
type Report struct {
	Served     int64
	Rejections int64
}

// Run executes one full simulation: one monitor task and Students student
// tasks coordinated through a single office. It joins all students, then
// gives the monitor the grace period to observe termination; a monitor that
// is still blocked after that is force-canceled and the run reports
// ErrMonitorStalled.
func Run(ctx context.Context, p Params) (Report, error) {
	if err := p.Validate(); err != nil {
		return Report{}, err
	}
	if p.Grace <= 0 {
		p.Grace = 2 * time.Second
	}
	seed := p.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	total := p.Students * p.Visits

	// The consult rng is only ever touched from the monitor goroutine.
	consultRng := rand.New(rand.NewSource(seed))
	off := office.NewOffice(office.Config{
		Chairs:        p.Chairs,
		TotalServices: total,
		Service: func(*office.Ticket) {
			time.Sleep(p.Consult.random(consultRng))
		},
		Sink: p.Sink,
	})

	return run(ctx, p, seed, off, total)
}

// run drives one monitor and p.Students students against the given office.
// Split from Run so an office owing a different consultation count than the
// students will request can be exercised directly.
func run(ctx context.Context, p Params, seed int64, off *office.Office, total int) (Report, error) {
	monitorDone := make(chan error, 1)
	go func() {
		monitorDone <- (&Monitor{office: off}).Run()
	}()

	var rejections atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	for i := 1; i <= p.Students; i++ {
		s := &Student{
			id:         i,
			office:     off,
			visits:     p.Visits,
			program:    p.Program,
			backoff:    p.Backoff,
			rng:        rand.New(rand.NewSource(seed + int64(i))),
			rejections: &rejections,
		}
		g.Go(func() error {
			return s.Run(gctx)
		})
	}

	err := g.Wait()
	if err != nil {
		// A student aborted; nothing will refill the corridor, so unblock the
		// monitor instead of waiting out the grace period.
		off.CancelWithError(err)
		<-monitorDone
		return report(off, total, &rejections), err
	}

	select {
	case err = <-monitorDone:
	case <-time.After(p.Grace):
		off.CancelWithError(ErrMonitorStalled)
		<-monitorDone
		err = ErrMonitorStalled
	}
	return report(off, total, &rejections), err
}

func report(off *office.Office, total int, rejections *atomic.Int64) Report {
	return Report{
		Served:     int64(total) - off.Remaining(),
		Rejections: rejections.Load(),
	}
}
