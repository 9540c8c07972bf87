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
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/cockroachdb/field-eng-turntools/stopper"
	"github.com/cockroachdb/field-eng-turntools/workgroup"
	"github.com/stretchr/testify/require"
)

func TestRotate(t *testing.T) {
	const participants = 3
	const cycles = 5
	r := require.New(t)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	c, err := New(participants)
	r.NoError(err)

	var mu sync.Mutex
	var log []int
	tasks := make([]Task, participants)
	for i := range tasks {
		i := i // Capture.
		tasks[i] = TaskFunc(func(context.Context) error {
			mu.Lock()
			log = append(log, i)
			mu.Unlock()
			return nil
		})
	}

	outcomes, err := c.Rotate(GoRunner(ctx), tasks, cycles)
	r.NoError(err)
	r.NoError(Wait(ctx, outcomes))

	r.Len(log, participants*cycles)
	for pos, index := range log {
		r.Equalf(pos%participants, index, "grant %d out of order", pos)
	}
	for _, outcome := range outcomes {
		status := outcome.Peek()
		r.True(status.Granted())
		r.NoError(status.Err())
	}
}

func TestRotateUntilShutdown(t *testing.T) {
	const participants = 3
	r := require.New(t)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	c, err := New(participants)
	r.NoError(err)

	tasks := make([]Task, participants)
	for i := range tasks {
		tasks[i] = TaskFunc(func(context.Context) error { return nil })
	}

	stop := stopper.WithContext(ctx)
	outcomes, err := c.Rotate(GoRunner(stop), tasks, 0)
	r.NoError(err)

	// Let the rotation spin for a few full cycles, then stop it.
	require.Eventually(t, func() bool {
		return c.Turn() >= 3*participants
	}, 20*time.Second, time.Millisecond)

	stop.Go(func(ctx *stopper.Context) error {
		<-ctx.Stopping()
		c.Shutdown()
		return nil
	})
	stop.Stop(time.Second)
	r.NoError(stop.Wait())

	r.NoError(Wait(ctx, outcomes))
	for _, outcome := range outcomes {
		r.True(outcome.Peek().Stopped())
	}
	// Counter never goes backwards and every grant advanced it once.
	r.GreaterOrEqual(c.Turn(), uint64(3*participants))
}

func TestRotateTaskCountMismatch(t *testing.T) {
	r := require.New(t)

	c, err := New(2)
	r.NoError(err)

	_, err = c.Rotate(nil, []Task{TaskFunc(func(context.Context) error { return nil })}, 1)
	r.ErrorContains(err, "exactly 2 tasks")
}

func TestRotateRunnerRejection(t *testing.T) {
	r := require.New(t)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	c, err := New(2)
	r.NoError(err)

	// A single worker with no queue can only host the first
	// participant; the second is rejected and its outcome reports it.
	runner := workgroup.WithSize(ctx, 1, 0)
	tasks := []Task{
		TaskFunc(func(context.Context) error { return nil }),
		TaskFunc(func(context.Context) error {
			r.Fail("should not execute")
			return nil
		}),
	}
	outcomes, err := c.Rotate(runner, tasks, 1)
	r.NoError(err)

	// Wait settles the first outcome before it reports the rejection
	// from the second.
	r.ErrorContains(Wait(ctx, outcomes), "queue depth 0 exceeded")
	r.True(outcomes[0].Peek().Granted())
	r.Equal(uint64(1), c.Turn())
}

func TestRotateTaskError(t *testing.T) {
	r := require.New(t)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	c, err := New(1)
	r.NoError(err)

	boom := errors.New("boom")
	calls := 0
	outcomes, err := c.Rotate(GoRunner(ctx), []Task{
		TaskFunc(func(context.Context) error {
			calls++
			if calls == 2 {
				return boom
			}
			return nil
		}),
	}, 5)
	r.NoError(err)

	// The rotation halts at the failing turn; the error is surfaced
	// and the turn still advanced.
	r.ErrorIs(Wait(ctx, outcomes), boom)
	r.Equal(uint64(2), c.Turn())
}

func TestNewOutcome(t *testing.T) {
	r := require.New(t)

	status := NewOutcome().Peek()
	r.True(status.Polling())
	r.False(status.Completed())
}
