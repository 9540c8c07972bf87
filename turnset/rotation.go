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

package turnset

import (
	"context"
	"fmt"

	"github.com/cockroachdb/field-eng-turntools/notify"
)

// Outcome is a convenience type alias. It reports the terminal Status
// of one participant in a rotation started by [Coordinator.Rotate].
type Outcome = *notify.Var[*Status]

// NewOutcome is a convenience method to allocate an Outcome.
func NewOutcome() Outcome {
	return notify.VarOf(polling)
}

// Rotate drives the full rotation: one unit of concurrency per
// participant, started through the runner, each taking its turn with
// its task until it has completed the given number of cycles. If
// cycles is not positive the rotation continues until
// [Coordinator.Shutdown].
//
// There must be exactly one task per participant. The returned
// outcomes are indexed by participant; a participant the runner
// refuses to start reports the runner's error through its outcome.
func (c *Coordinator) Rotate(runner Runner, tasks []Task, cycles int) ([]Outcome, error) {
	if len(tasks) != c.participants {
		return nil, fmt.Errorf(
			"rotation needs exactly %d tasks, have %d", c.participants, len(tasks))
	}
	if runner == nil {
		runner = GoRunner(context.Background())
	}

	outcomes := make([]Outcome, len(tasks))
	for i := range outcomes {
		outcomes[i] = NewOutcome()
	}
	for i, task := range tasks {
		i, task := i, task // Capture.
		err := runner.Go(func(ctx context.Context) {
			outcomes[i].Set(c.rotate(ctx, i, task, cycles))
		})
		if err != nil {
			outcomes[i].Set(StatusFor(err))
		}
	}
	return outcomes, nil
}

// rotate takes turns for a single participant until the cycle budget
// is spent or a turn does not complete cleanly.
func (c *Coordinator) rotate(ctx context.Context, index int, task Task, cycles int) *Status {
	for done := 0; cycles <= 0 || done < cycles; done++ {
		status := c.TakeTurn(ctx, index, NoTimeout, task)
		if !status.Granted() || status.Err() != nil {
			return status
		}
	}
	return granted
}

// Wait blocks until every outcome is terminal, returning the first
// error. A stopped participant is an orderly result, not an error.
func Wait(ctx context.Context, outcomes []Outcome) error {
outcome:
	for _, outcome := range outcomes {
		for {
			status, changed := outcome.Get()
			if err := status.Err(); err != nil {
				return err
			}
			if status.Completed() {
				continue outcome
			}
			select {
			case <-changed:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
	return nil
}
