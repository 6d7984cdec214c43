// Copyright 2025 The Verso Authors
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

package verso

import "sort"

// Middleware is a unit of cross-cutting logic run before the handler. It
// may mutate the request, stage response headers, or short-circuit the
// pipeline by returning a *Response or *Error. Any other return value,
// nil included, means "continue to the next middleware".
//
// Chains are cooperative and synchronous: middleware runs in ascending
// priority order, insertion order within a priority, and nothing yields
// mid-chain.
type Middleware func(*Request, *RouteMeta) any

// DefaultPriority is the priority used when none is given. Lower
// priorities run earlier.
const DefaultPriority = 10

// MiddlewareOption configures one middleware registration.
type MiddlewareOption func(*middlewareConfig)

type middlewareConfig struct {
	priority int
}

// WithPriority sets the middleware's priority bucket. Buckets execute in
// ascending order; middleware at priority 5 always runs before priority
// 10 regardless of registration order.
func WithPriority(p int) MiddlewareOption {
	return func(c *middlewareConfig) {
		c.priority = p
	}
}

// bucket is one priority's ordered middleware list.
type bucket struct {
	priority int
	fns      []Middleware
}

// chain is a priority-bucketed middleware list. Buckets are kept sorted by
// ascending priority on every insert; registration happens at startup so
// insert cost is irrelevant, and dispatch never sorts.
//
// Every insert replaces the buckets slice wholesale and never writes into
// the old backing array, so a dispatch that snapshotted the slice header
// under the read lock keeps a coherent view even if registration overlaps
// with traffic.
type chain struct {
	buckets []bucket
}

func newChain() *chain {
	return &chain{}
}

// add appends fn to the bucket for priority, creating the bucket in sorted
// position when absent.
func (c *chain) add(fn Middleware, priority int) {
	idx := sort.Search(len(c.buckets), func(i int) bool {
		return c.buckets[i].priority >= priority
	})

	if idx < len(c.buckets) && c.buckets[idx].priority == priority {
		fns := make([]Middleware, 0, len(c.buckets[idx].fns)+1)
		fns = append(fns, c.buckets[idx].fns...)
		fns = append(fns, fn)

		next := make([]bucket, len(c.buckets))
		copy(next, c.buckets)
		next[idx].fns = fns
		c.buckets = next

		return
	}

	next := make([]bucket, 0, len(c.buckets)+1)
	next = append(next, c.buckets[:idx]...)
	next = append(next, bucket{priority: priority, fns: []Middleware{fn}})
	next = append(next, c.buckets[idx:]...)
	c.buckets = next
}

// apply runs the chain against the request. The first middleware whose
// return value is a *Response or *Error terminates the chain and that
// value is returned; a nil return means every middleware passed.
func (c *chain) apply(req *Request, meta *RouteMeta) any {
	for _, b := range c.buckets {
		for _, fn := range b.fns {
			if out := asResult(fn(req, meta)); out != nil {
				return out
			}
		}
	}

	return nil
}

func (c *chain) size() int {
	n := 0
	for _, b := range c.buckets {
		n += len(b.fns)
	}

	return n
}

// AddMiddleware registers middleware on a version's own chain, creating
// the version with defaults when absent. Version middleware runs after the
// global chain for every request to that version.
func (a *API) AddMiddleware(versionID string, fn Middleware, opts ...MiddlewareOption) {
	if fn == nil {
		panic(ErrNilMiddleware)
	}
	cfg := middlewareConfig{priority: DefaultPriority}
	for _, opt := range opts {
		opt(&cfg)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	a.versionLocked(versionID).chain.add(fn, cfg.priority)
}

// AddGlobalMiddleware registers middleware that runs for every request,
// strictly before any version-scoped middleware.
func (a *API) AddGlobalMiddleware(fn Middleware, opts ...MiddlewareOption) {
	if fn == nil {
		panic(ErrNilMiddleware)
	}
	cfg := middlewareConfig{priority: DefaultPriority}
	for _, opt := range opts {
		opt(&cfg)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	a.global.add(fn, cfg.priority)
}
