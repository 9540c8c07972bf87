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

// Package notify contains a utility for observing changes to a
// variable shared between goroutines.
package notify

import "sync"

// A Var is a variable whose updates can be waited upon. The zero value
// of a Var is ready to use with the zero value of its type parameter.
//
// A Var is internally synchronized and should not be copied after
// first use.
type Var[T any] struct {
	mu struct {
		sync.Mutex
		value   T
		updated chan struct{} // Closed and replaced on each Set.
	}
}

// VarOf returns a Var that has been initialized to the given value.
func VarOf[T any](value T) *Var[T] {
	v := &Var[T]{}
	v.mu.value = value
	return v
}

// Get returns the current value and a channel that will be closed the
// next time the value is updated. Waiting on the channel and calling
// Get again is the broadcast-and-recheck discipline: a wake never
// implies that the value is the one the caller is waiting for.
func (v *Var[T]) Get() (value T, changed <-chan struct{}) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.mu.value, v.updatedLocked()
}

// Peek returns the current value without the notification channel.
func (v *Var[T]) Peek() T {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.mu.value
}

// Set stores a new value and wakes all goroutines blocked on a channel
// previously returned from [Var.Get].
func (v *Var[T]) Set(value T) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.mu.value = value
	v.notifyLocked()
}

// Swap stores a new value, wakes any waiters, and returns the value
// that was replaced.
func (v *Var[T]) Swap(value T) T {
	v.mu.Lock()
	defer v.mu.Unlock()
	old := v.mu.value
	v.mu.value = value
	v.notifyLocked()
	return old
}

func (v *Var[T]) notifyLocked() {
	if v.mu.updated != nil {
		close(v.mu.updated)
		v.mu.updated = nil
	}
}

func (v *Var[T]) updatedLocked() <-chan struct{} {
	if v.mu.updated == nil {
		v.mu.updated = make(chan struct{})
	}
	return v.mu.updated
}
