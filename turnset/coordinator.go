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
	"sync"
	"time"
)

// NoTimeout makes [Coordinator.TakeTurn] wait indefinitely for the
// participant to become eligible.
const NoTimeout time.Duration = 0

// A Coordinator grants each of a fixed number of participants its turn
// in strict round-robin order. The participant whose index equals the
// turn counter modulo the participant count is the single eligible
// participant; everyone else waits.
//
// A Coordinator is internally synchronized and is safe for concurrent
// use. A Coordinator should not be copied after it has been created.
type Coordinator struct {
	events       *Events
	participants int

	mu struct {
		sync.Mutex
		turn    uint64
		stopped bool
		changed chan struct{} // Closed and replaced on every state change.
	}
}

// New constructs a Coordinator for the given number of participants,
// indexed 0 through participants-1. The turn counter starts at zero,
// so participant 0 is the first to be eligible.
func New(participants int) (*Coordinator, error) {
	if participants <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrNoParticipants, participants)
	}
	c := &Coordinator{participants: participants}
	c.mu.changed = make(chan struct{})
	return c, nil
}

// Participants returns the number of participants in the rotation.
func (c *Coordinator) Participants() int {
	return c.participants
}

// SetEvents allows monitoring callbacks to be injected into the
// Coordinator. This method should be called prior to any call to
// [Coordinator.TakeTurn].
func (c *Coordinator) SetEvents(events *Events) {
	c.events = events
}

// Shutdown marks the Coordinator stopped and wakes all waiters. Every
// blocked and future [Coordinator.TakeTurn] call returns a stopped
// Status. Shutdown is idempotent. Shutdown does not interrupt a Task
// that is already running; its turn still advances when it returns.
func (c *Coordinator) Shutdown() {
	c.mu.Lock()
	if c.mu.stopped {
		c.mu.Unlock()
		return
	}
	c.mu.stopped = true
	c.broadcastLocked()
	c.mu.Unlock()
	c.events.doShutdown()
}

// TakeTurn blocks until the participant with the given index holds the
// turn, runs the task, advances the turn counter by exactly one, and
// wakes all waiters. A nil task advances the turn as soon as it is
// granted.
//
// The wait is bounded by the timeout ([NoTimeout] waits indefinitely)
// and by the context. A timed-out or canceled wait leaves the turn
// counter untouched; the rotation will still reach this participant,
// and it is up to the caller to retry or abandon its slot.
//
// The coordinator's lock is released before the task runs, so the
// guarantee is mutual exclusion with the turn check, not with the task
// body. Because the counter advances only after the task returns, at
// most one task in the rotation is running at any instant.
//
// Each index must be driven by at most one goroutine at a time;
// concurrent calls with the same index are a programming error.
func (c *Coordinator) TakeTurn(
	ctx context.Context, index int, timeout time.Duration, task Task,
) *Status {
	if index < 0 || index >= c.participants {
		return StatusFor(fmt.Errorf(
			"%w: index %d with %d participants",
			ErrInvalidParticipant, index, c.participants))
	}

	start := time.Now()
	var expired <-chan time.Time
	if timeout > NoTimeout {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		expired = timer.C
	}

	c.mu.Lock()
eligible:
	for {
		if c.mu.stopped {
			c.mu.Unlock()
			return stopped
		}
		if c.eligibleLocked(index) {
			break eligible
		}
		// The classic monitor wait: release the lock for the duration
		// of the block, then re-check the predicate on every wake. A
		// wake never implies eligibility.
		changed := c.mu.changed
		c.mu.Unlock()
		select {
		case <-changed:
			c.mu.Lock()
		case <-expired:
			// The turn may have arrived in the same instant the timer
			// fired; only report a timeout if the predicate is still
			// unmet.
			c.mu.Lock()
			if c.mu.stopped {
				c.mu.Unlock()
				return stopped
			}
			if c.eligibleLocked(index) {
				break eligible
			}
			c.mu.Unlock()
			c.events.doTimeout(index, time.Since(start))
			return timedOut
		case <-ctx.Done():
			return StatusFor(ctx.Err())
		}
	}
	turn := c.mu.turn
	c.mu.Unlock()

	c.events.doGranted(index, time.Since(start))

	var err error
	if task != nil {
		err = tryCall(ctx, task)
	}

	c.mu.Lock()
	c.mu.turn = turn + 1
	c.broadcastLocked()
	c.mu.Unlock()
	c.events.doAdvance(turn + 1)

	return grantedWith(err)
}

// Turn returns the current value of the turn counter. The counter is
// monotonically non-decreasing for the lifetime of the Coordinator.
func (c *Coordinator) Turn() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mu.turn
}

// broadcastLocked wakes every waiter. Waking all of them is the only
// race-free strategy without per-participant wait queues: the next
// eligible participant is indistinguishable from the rest until each
// re-checks its own predicate.
func (c *Coordinator) broadcastLocked() {
	close(c.mu.changed)
	c.mu.changed = make(chan struct{})
}

func (c *Coordinator) eligibleLocked(index int) bool {
	return c.mu.turn%uint64(c.participants) == uint64(index)
}
