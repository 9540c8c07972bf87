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
	"errors"
	"fmt"
)

// ErrInvalidParticipant is wrapped by statuses returned from
// [Coordinator.TakeTurn] when the participant index is outside the
// range the coordinator was constructed with. It indicates a
// programming error in the caller; the index is never clamped.
var ErrInvalidParticipant = errors.New("participant index out of range")

// ErrNoParticipants is wrapped by the error returned from [New] when
// the participant count is not positive.
var ErrNoParticipants = errors.New("participant count must be positive")

// Status is returned by [Coordinator.TakeTurn].
type Status struct {
	granted bool
	err     error
}

// StatusFor returns the granted sentinel if err is nil. Otherwise, it
// returns a new Status object that reports the error.
func StatusFor(err error) *Status {
	if err == nil {
		return granted
	}
	return &Status{err: err}
}

// Sentinel instances of Status.
var (
	granted  = &Status{granted: true}
	polling  = &Status{}
	stopped  = &Status{}
	timedOut = &Status{}
)

// Err returns the error, if any, associated with the Status. A granted
// turn carries the error returned by the caller's [Task].
func (s *Status) Err() error {
	return s.err
}

// Granted returns true if the turn was taken and the turn counter
// advanced. The turn advances even when the Task returned an error;
// check [Status.Err] as well.
func (s *Status) Granted() bool {
	return s.granted
}

// Polling returns true if the participant is still taking turns in a
// rotation started by [Coordinator.Rotate].
func (s *Status) Polling() bool {
	return s == polling
}

// Stopped returns true if the coordinator was shut down before the
// turn could be granted. This is an orderly result, not an error; the
// caller should stop retrying.
func (s *Status) Stopped() bool {
	return s == stopped
}

// TimedOut returns true if the wait ended before the participant
// became eligible. This is a normal result, not an error; the caller
// decides whether to retry or give up.
func (s *Status) TimedOut() bool {
	return s == timedOut
}

// Completed returns true once the Status is terminal.
func (s *Status) Completed() bool {
	return s.granted || s == stopped || s == timedOut || s.err != nil
}

func (s *Status) String() string {
	switch s {
	case granted:
		return "granted"
	case polling:
		return "polling"
	case stopped:
		return "stopped"
	case timedOut:
		return "timed out"
	default:
		if s.granted {
			return fmt.Sprintf("granted, task error: %v", s.err)
		}
		return fmt.Sprintf("error: %v", s.err)
	}
}

// grantedWith attaches a Task error to a granted turn.
func grantedWith(err error) *Status {
	if err == nil {
		return granted
	}
	return &Status{granted: true, err: err}
}
