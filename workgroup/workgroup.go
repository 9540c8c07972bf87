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

// Package workgroup contains a bounded analogue to the go keyword.
package workgroup

import (
	"context"
	"fmt"
	"sync"
)

// A Group executes functions with a bounded number of goroutines,
// holding a bounded number of pending functions in an overflow queue.
//
// A Group is internally synchronized and is safe for concurrent use.
type Group struct {
	ctx   context.Context
	queue chan func(context.Context)
	size  int

	mu struct {
		sync.Mutex
		workers int
	}
}

// WithSize returns a Group that executes functions using at most size
// goroutines, queueing at most queueDepth functions when all workers
// are busy.
func WithSize(ctx context.Context, size, queueDepth int) *Group {
	if size < 1 {
		size = 1
	}
	if queueDepth < 0 {
		queueDepth = 0
	}
	return &Group{
		ctx:   ctx,
		queue: make(chan func(context.Context), queueDepth),
		size:  size,
	}
}

// Go executes the function in a non-blocking fashion, starting a new
// worker goroutine if the Group is below its size limit. If all
// workers are busy and the queue is full, an error is returned and the
// function will not be executed.
func (g *Group) Go(fn func(context.Context)) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.mu.workers < g.size {
		g.mu.workers++
		go g.worker(fn)
		return nil
	}
	select {
	case g.queue <- fn:
		return nil
	default:
		return fmt.Errorf("queue depth %d exceeded", cap(g.queue))
	}
}

// worker executes fn and then drains the overflow queue. The dequeue
// and the worker-count decrement happen under the same lock that
// enqueues, so a queued function is never stranded without a worker.
func (g *Group) worker(fn func(context.Context)) {
	for {
		fn(g.ctx)
		g.mu.Lock()
		select {
		case next := <-g.queue:
			g.mu.Unlock()
			fn = next
		default:
			g.mu.workers--
			g.mu.Unlock()
			return
		}
	}
}
