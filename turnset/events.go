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

import "time"

// Events provides a [Coordinator] with optional callbacks to monitor
// the progress of the rotation. Callbacks are invoked outside the
// coordinator's lock and may be invoked concurrently.
//
// See [Coordinator.SetEvents].
type Events struct {
	OnAdvance  func(turn uint64)
	OnGranted  func(index int, waited time.Duration)
	OnShutdown func()
	OnTimeout  func(index int, waited time.Duration)
}

func (e *Events) doAdvance(turn uint64) {
	if e != nil && e.OnAdvance != nil {
		e.OnAdvance(turn)
	}
}

func (e *Events) doGranted(index int, waited time.Duration) {
	if e != nil && e.OnGranted != nil {
		e.OnGranted(index, waited)
	}
}

func (e *Events) doShutdown() {
	if e != nil && e.OnShutdown != nil {
		e.OnShutdown()
	}
}

func (e *Events) doTimeout(index int, waited time.Duration) {
	if e != nil && e.OnTimeout != nil {
		e.OnTimeout(index, waited)
	}
}
