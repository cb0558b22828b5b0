// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"os"
	"time"

	"github.com/jessevdk/go-flags"
	log "github.com/sirupsen/logrus"

	"github.com/mcordoba12/SleepingMonitor/internal/logging"
	"github.com/mcordoba12/SleepingMonitor/internal/sim"
	"github.com/mcordoba12/SleepingMonitor/internal/telemetry"
)

type options struct {
	LogLevel string `long:"log-level" default:"info" description:"log level"`

	Students int `long:"students" default:"8" description:"number of student tasks"`
	Chairs   int `long:"chairs" default:"3" description:"corridor chairs available for waiting"`
	Visits   int `long:"visits" default:"3" description:"consultations each student needs"`

	ProgramMinMs int `long:"program-min-ms" default:"400" description:"minimum programming time"`
	ProgramMaxMs int `long:"program-max-ms" default:"1200" description:"maximum programming time"`
	ConsultMinMs int `long:"consult-min-ms" default:"300" description:"minimum consultation time"`
	ConsultMaxMs int `long:"consult-max-ms" default:"900" description:"maximum consultation time"`
	RetryMinMs   int `long:"retry-min-ms" default:"200" description:"minimum backoff after a full corridor"`
	RetryMaxMs   int `long:"retry-max-ms" default:"600" description:"maximum backoff after a full corridor"`

	GraceMs     int   `long:"grace-ms" default:"2000" description:"how long the monitor may lag behind the last student"`
	EventBuffer int   `long:"event-buffer" default:"256" description:"event sink buffer size"`
	Seed        int64 `long:"seed" default:"0" description:"rng seed, 0 picks one from the clock"`
}

func main() {
	opts := getCLIArgs()
	logging.SetLogLevel(opts.LogLevel)

	sink := telemetry.NewEventsLogger(log.StandardLogger(), opts.EventBuffer)

	params := sim.Params{
		Students: opts.Students,
		Chairs:   opts.Chairs,
		Visits:   opts.Visits,
		Program:  msRange(opts.ProgramMinMs, opts.ProgramMaxMs),
		Consult:  msRange(opts.ConsultMinMs, opts.ConsultMaxMs),
		Backoff:  msRange(opts.RetryMinMs, opts.RetryMaxMs),
		Grace:    time.Duration(opts.GraceMs) * time.Millisecond,
		Sink:     sink,
		Seed:     opts.Seed,
	}
	if err := params.Validate(); err != nil {
		log.WithError(err).Error("invalid simulation parameters")
		os.Exit(1)
	}

	report, err := sim.Run(context.Background(), params)
	sink.Close()
	if err != nil {
		log.WithError(err).Error("simulation aborted")
		os.Exit(2)
	}
	log.Infof("simulation finished: %d consultations delivered, %d full-corridor rejections",
		report.Served, report.Rejections)
}

func getCLIArgs() options {
	var opts options
	parser := flags.NewParser(&opts, flags.IgnoreUnknown)
	if _, err := parser.ParseArgs(os.Args); err != nil {
		log.WithError(err).Fatal("Failed to parse command line arguments:", os.Args)
	}
	return opts
}

func msRange(min, max int) sim.DurationRange {
	return sim.DurationRange{
		Min: time.Duration(min) * time.Millisecond,
		Max: time.Duration(max) * time.Millisecond,
	}
}
