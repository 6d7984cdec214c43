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

import (
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAPI(t *testing.T) *API {
	t.Helper()
	api, err := New()
	require.NoError(t, err)

	return api
}

func dispatchTo(t *testing.T, api *API, versionID, path string) any {
	t.Helper()
	req := NewRequest(nil)
	meta := api.MetaFor(versionID, path)
	require.NotNil(t, meta)
	req.SetMeta(meta)

	return api.HandleRequest(req)
}

func TestMiddlewarePriorityOrdering(t *testing.T) {
	api := newTestAPI(t)
	api.Get("v1", "/x", func(*Request) any { return "ok" })

	var order []string
	track := func(name string) Middleware {
		return func(*Request, *RouteMeta) any {
			order = append(order, name)

			return nil
		}
	}

	// Registration order deliberately reversed from priority order.
	api.AddMiddleware("v1", track("ten"), WithPriority(10))
	api.AddMiddleware("v1", track("five"), WithPriority(5))
	api.AddMiddleware("v1", track("one"), WithPriority(1))

	dispatchTo(t, api, "v1", "/x")

	assert.Equal(t, []string{"one", "five", "ten"}, order)
}

func TestMiddlewareInsertionOrderWithinPriority(t *testing.T) {
	api := newTestAPI(t)
	api.Get("v1", "/x", func(*Request) any { return "ok" })

	var order []string
	for _, name := range []string{"a", "b", "c"} {
		name := name
		api.AddMiddleware("v1", func(*Request, *RouteMeta) any {
			order = append(order, name)

			return nil
		})
	}

	dispatchTo(t, api, "v1", "/x")

	assert.Equal(t, []string{"a", "b", "c"}, order)
}

func TestMiddlewareShortCircuit(t *testing.T) {
	api := newTestAPI(t)
	handlerRan := false
	api.Get("v1", "/x", func(*Request) any {
		handlerRan = true

		return "ok"
	})

	invoked := map[string]bool{}
	api.AddMiddleware("v1", func(*Request, *RouteMeta) any {
		invoked["a"] = true

		return ErrorResponse(CodeForbidden, "stop right there", nil, http.StatusForbidden)
	})
	api.AddMiddleware("v1", func(*Request, *RouteMeta) any {
		invoked["b"] = true

		return nil
	})
	api.AddMiddleware("v1", func(*Request, *RouteMeta) any {
		invoked["c"] = true

		return nil
	})

	result := dispatchTo(t, api, "v1", "/x")

	err, ok := result.(*Error)
	require.True(t, ok)
	assert.Equal(t, CodeForbidden, err.Code)
	assert.True(t, invoked["a"])
	assert.False(t, invoked["b"], "later middleware must not run after a short-circuit")
	assert.False(t, invoked["c"])
	assert.False(t, handlerRan)
}

func TestMiddlewareResponseShortCircuit(t *testing.T) {
	api := newTestAPI(t)
	api.Get("v1", "/x", func(*Request) any { return "handler" })

	cached := SuccessResponse("cached", "", http.StatusOK)
	api.AddMiddleware("v1", func(*Request, *RouteMeta) any { return cached })

	result := dispatchTo(t, api, "v1", "/x")

	resp, ok := result.(*Response)
	require.True(t, ok)
	assert.Same(t, cached, resp)
	assert.Equal(t, "v1", resp.Headers.Get("X-API-Version"))
}

func TestGlobalMiddlewareRunsBeforeVersionMiddleware(t *testing.T) {
	api := newTestAPI(t)
	api.Get("v1", "/x", func(*Request) any { return "ok" })

	var order []string
	api.AddMiddleware("v1", func(*Request, *RouteMeta) any {
		order = append(order, "version")

		return nil
	}, WithPriority(1))
	api.AddGlobalMiddleware(func(*Request, *RouteMeta) any {
		order = append(order, "global")

		return nil
	}, WithPriority(99))

	dispatchTo(t, api, "v1", "/x")

	// Global runs first even though its priority is numerically higher:
	// priorities only order middleware within the same chain.
	assert.Equal(t, []string{"global", "version"}, order)
}

func TestGlobalMiddlewareShortCircuitSkipsVersionChain(t *testing.T) {
	api := newTestAPI(t)
	api.Get("v1", "/x", func(*Request) any { return "ok" })

	versionRan := false
	api.AddGlobalMiddleware(func(*Request, *RouteMeta) any {
		return ErrorResponse(CodeForbidden, "blocked", nil, http.StatusForbidden)
	})
	api.AddMiddleware("v1", func(*Request, *RouteMeta) any {
		versionRan = true

		return nil
	})

	result := dispatchTo(t, api, "v1", "/x")

	_, ok := result.(*Error)
	require.True(t, ok)
	assert.False(t, versionRan)
}

func TestMiddlewareReceivesRouteMeta(t *testing.T) {
	api := newTestAPI(t)
	api.Get("v2", "/things", func(*Request) any { return "ok" })

	var gotVersion string
	api.AddGlobalMiddleware(func(_ *Request, meta *RouteMeta) any {
		gotVersion = meta.Version

		return nil
	})

	dispatchTo(t, api, "v2", "/things")

	assert.Equal(t, "v2", gotVersion)
}

func TestNilMiddlewarePanics(t *testing.T) {
	api := newTestAPI(t)

	assert.Panics(t, func() { api.AddGlobalMiddleware(nil) })
	assert.Panics(t, func() { api.AddMiddleware("v1", nil) })
}

func TestChainSize(t *testing.T) {
	c := newChain()
	c.add(func(*Request, *RouteMeta) any { return nil }, 10)
	c.add(func(*Request, *RouteMeta) any { return nil }, 5)
	c.add(func(*Request, *RouteMeta) any { return nil }, 10)

	assert.Equal(t, 3, c.size())
	assert.Equal(t, 5, c.buckets[0].priority)
	assert.Equal(t, 10, c.buckets[1].priority)
	assert.Len(t, c.buckets[1].fns, 2)
}

func TestChainAddLeavesSnapshotUntouched(t *testing.T) {
	c := newChain()
	c.add(func(*Request, *RouteMeta) any { return nil }, 10)

	snapshot := chain{buckets: c.buckets}
	// Inserting into an existing priority bucket must not write into the
	// backing array a concurrent dispatch snapshotted.
	c.add(func(*Request, *RouteMeta) any { return nil }, 10)

	assert.Equal(t, 1, snapshot.size())
	assert.Equal(t, 2, c.size())
}

func TestRegistrationOverlappingDispatch(t *testing.T) {
	api := newTestAPI(t)
	api.Get("v1", "/widgets", func(*Request) any { return "ok" })
	api.AddGlobalMiddleware(func(*Request, *RouteMeta) any { return nil })
	api.AddMiddleware("v1", func(*Request, *RouteMeta) any { return nil })

	done := make(chan struct{})
	go func() {
		defer close(done)
		// Same default priority every time, so each insert lands in an
		// already existing bucket.
		for i := 0; i < 100; i++ {
			api.AddGlobalMiddleware(func(*Request, *RouteMeta) any { return nil })
			api.AddMiddleware("v1", func(*Request, *RouteMeta) any { return nil })
		}
	}()

	var wg sync.WaitGroup
	for g := 0; g < 4; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				req := NewRequest(nil)
				req.SetMeta(api.MetaFor("v1", "/widgets"))
				_, ok := api.HandleRequest(req).(*Response)
				assert.True(t, ok)
			}
		}()
	}
	wg.Wait()
	<-done
}
