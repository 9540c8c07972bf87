// Copyright 2025 The Cockroach Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

/*
Package turnset contains a strict round-robin turn coordinator for a
fixed set of participants.

A rotation between three speakers might look like this:

	// This function is a placeholder for the work a participant performs each time it holds the turn
	speak := func(ctx context.Context) error { return nil }

	// Construct a coordinator for three participants, indexed 0 through 2
	coord, _ := New(3)

	// Each participant runs as its own goroutine and blocks until its index comes up
	outcomes, _ := coord.Rotate(GoRunner(ctx), []Task{
		TaskFunc(speak), TaskFunc(speak), TaskFunc(speak),
	}, 10)

	// wait until everyone has spoken ten times
	Wait(ctx, outcomes)

The coordinator owns a single monotonic turn counter; the participant
whose index equals the counter modulo the participant count is the one
eligible participant at any instant. [Coordinator.TakeTurn] blocks the
caller until its index is eligible, runs the caller's [Task], advances
the counter by exactly one, and wakes every other waiter. Waking is
always a broadcast: the next eligible participant cannot be singled out
without each waiter re-checking its own predicate, and a single-target
wake risks waking an ineligible participant while the eligible one
starves.

Fairness is provided among actively-waiting participants only. A
participant that never takes its turn stalls the rotation for everyone;
callers that need to bound that exposure pass a timeout to TakeTurn
and decide for themselves whether to retry (see the retry package) or
give up.
*/
package turnset
