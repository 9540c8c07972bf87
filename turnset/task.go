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
)

// A Task is the work a participant performs each time it is granted
// the turn. The coordinator does not hold its lock while Call runs; a
// Task that needs mutual exclusion with the caller's own state must
// provide its own.
type Task interface {
	// Call contains the logic associated with one turn.
	Call(ctx context.Context) error
}

// TaskFunc adapts a function to the [Task] interface.
func TaskFunc(fn func(ctx context.Context) error) Task {
	return taskFunc(fn)
}

type taskFunc func(ctx context.Context) error

func (t taskFunc) Call(ctx context.Context) error { return t(ctx) }

// tryCall invokes the task with a panic handler so that a faulty
// participant cannot leave the turn counter stuck.
func tryCall(ctx context.Context, task Task) (err error) {
	// Install panic handler before executing user code.
	defer func() {
		x := recover()
		switch t := x.(type) {
		case nil:
		// Success.
		case error:
			err = t
		default:
			err = fmt.Errorf("panic in task: %v", t)
		}
	}()

	return task.Call(ctx)
}
