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

// Package retry provides a utility to retry turns that time out, based
// on a supplied backoff strategy. The coordinator never retries on the
// caller's behalf; this package is the caller-side loop.
package retry

import (
	"errors"
	"time"

	"github.com/cockroachdb/field-eng-turntools/stopper"
	"github.com/cockroachdb/field-eng-turntools/turnset"
)

// ErrMaxRetries is raised when we reach the maximum number of retries.
var ErrMaxRetries = errors.New("too many retries")

// Attempt makes a single, time-bounded bid for the turn. It would
// typically wrap [turnset.Coordinator.TakeTurn] with a fixed index,
// timeout, and task.
type Attempt func(*stopper.Context) *turnset.Status

// Backoff strategy
type Backoff interface {
	// Next determines how long we have to wait before the following
	// attempt. Returns true if we have to stop.
	Next() (time.Duration, bool)
}

// Take repeats the attempt, using the given backoff strategy, for as
// long as it times out. The terminal Status is returned along with
// [ErrMaxRetries] if the strategy gave up first. An orderly shutdown
// of the stopper or of the coordinator ends the loop without error.
// Backoff strategies from https://github.com/sethvargo/go-retry can be
// used as well.
func Take(ctx *stopper.Context, strategy Backoff, attempt Attempt) (*turnset.Status, error) {
	for {
		status := attempt(ctx)
		if !status.TimedOut() {
			return status, nil
		}
		delay, stop := strategy.Next()
		if stop {
			return status, ErrMaxRetries
		}
		select {
		case <-time.After(delay):
			// try again
		case <-ctx.Stopping():
			return status, nil
		}
	}
}
