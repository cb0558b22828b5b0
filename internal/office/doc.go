// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

/*
Package office provides the coordination objects for the bounded-waiting-room
simulation: one monitor serves many students through a corridor with a fixed
number of chairs.

# Tickets

A student who finds a free chair sits down holding a Ticket. The ticket's
completion gate is the student's private rendezvous point with the monitor:

	[student] t := office.RequestService(id)
	[student] // blocked on the ticket gate until the monitor walks through it

	[monitor] office.ServeNext()
	[monitor] // pops the head ticket, runs the consultation, opens the gate

# Signals

Signal is a counting wake primitive. The corridor raises it only on the
empty->non-empty transition, and the monitor re-raises it after a consultation
while students remain seated, so a burst is drained without an intervening
sleep and no raise is ever lost.

# Office

Office wraps the bounded FIFO queue, the wake signal and the global
remaining-consultation counter. It owns every piece of shared mutable state in
the simulation; the student and monitor loops in internal/sim interact only
through its methods.
*/
package office
