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

// Package stopper provides a two-phase, cooperative shutdown for
// groups of goroutines. Stopping a [Context] first signals the
// [Context.Stopping] channel so that well-behaved goroutines can exit
// at their next wake point; the underlying [context.Context] is only
// canceled once a grace period has elapsed.
package stopper

import (
	"context"
	"sync"
	"time"
)

// A Context manages a group of goroutines and signals them to stop.
// Use [WithContext] to construct one. A Context implements
// [context.Context] and may be passed to code that is unaware of the
// soft-stop protocol; such code observes only the hard cancellation.
type Context struct {
	context.Context
	cancel   context.CancelFunc
	stopping chan struct{}

	mu struct {
		sync.Mutex
		err     error // First error returned from a managed goroutine.
		stopped bool
	}
	wg sync.WaitGroup
}

// WithContext wraps the given context. Cancellation of the outer
// context stops the returned Context with no grace period.
func WithContext(ctx context.Context) *Context {
	inner, cancel := context.WithCancel(ctx)
	s := &Context{
		Context:  inner,
		cancel:   cancel,
		stopping: make(chan struct{}),
	}
	go func() {
		<-inner.Done()
		s.Stop(0)
	}()
	return s
}

// Go starts the function in a new goroutine tracked by the Context.
// The first non-nil error returned by any managed goroutine is
// retained, stops the Context, and is reported by [Context.Wait].
func (c *Context) Go(fn func(ctx *Context) error) {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		if err := fn(c); err != nil {
			c.mu.Lock()
			if c.mu.err == nil {
				c.mu.err = err
			}
			c.mu.Unlock()
			c.Stop(0)
		}
	}()
}

// IsStopping returns true once [Context.Stop] has been called.
func (c *Context) IsStopping() bool {
	select {
	case <-c.stopping:
		return true
	default:
		return false
	}
}

// Stop begins a shutdown. The [Context.Stopping] channel is closed
// immediately; the context itself is canceled once the grace period
// has elapsed, or immediately if the grace period is not positive.
// Stop is idempotent.
func (c *Context) Stop(gracePeriod time.Duration) {
	c.mu.Lock()
	if c.mu.stopped {
		c.mu.Unlock()
		return
	}
	c.mu.stopped = true
	c.mu.Unlock()

	close(c.stopping)
	if gracePeriod > 0 {
		time.AfterFunc(gracePeriod, c.cancel)
	} else {
		c.cancel()
	}
}

// Stopping returns a channel that is closed when a shutdown has been
// requested. Goroutines that block should include it as a select arm.
func (c *Context) Stopping() <-chan struct{} {
	return c.stopping
}

// Wait blocks until all goroutines started by [Context.Go] have
// returned, then reports the first error any of them produced.
func (c *Context) Wait() error {
	c.wg.Wait()
	c.cancel()
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mu.err
}
