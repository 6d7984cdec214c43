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

// Package verso is a versioned HTTP API routing layer. It registers named
// API versions, attaches routes and ordered middleware chains to each
// version, and dispatches requests through a deterministic pipeline:
// deprecation gate, global middleware, version middleware, parameter
// validation, parameter sanitization, handler invocation, and response
// shaping.
//
// # Registration
//
// All registration happens at startup, before the transport accepts
// traffic. Versions are created explicitly with RegisterVersion or
// implicitly by the first AddRoute or AddMiddleware call that names them:
//
//	api := verso.MustNew(verso.WithNamespace("acme/api"))
//
//	api.RegisterVersion("v1")
//	api.Get("v1", "/widgets", listWidgets)
//	api.AddRoute("v1", "/widgets/create", verso.Route{
//	    Methods:  []string{http.MethodPost},
//	    Callback: createWidget,
//	    Args: map[string]*verso.Arg{
//	        "name": {Required: true, Type: "string"},
//	    },
//	})
//
// # Deprecation
//
// A deprecated version keeps serving requests but every response carries
// deprecation headers. Once the removal date passes, requests are rejected
// with 410 Gone and the handler never runs:
//
//	api.DeprecateVersion("v1", "2025-06-01", "2026-01-01", "v2")
//	api.CopyRoutes("v1", "v2")
//
// # Dispatch
//
// The host transport matches a request to a registered (version, path)
// pair, attaches the RouteMeta, and calls HandleRequest. The bundled
// ServeHTTP adapter does exactly that for net/http hosts. The pipeline
// returns either a *Response or an *Error; both are plain values, never
// panics. The only place the pipeline recovers a panic is around the
// handler itself, which is converted to a 500 error.
//
// # Middleware
//
// Middleware runs in ascending priority order, global chain first, then
// the version's own chain. The first middleware that returns a *Response
// or *Error short-circuits everything after it:
//
//	api.AddGlobalMiddleware(requestid.New())
//	api.AddMiddleware("v1", authCheck, verso.WithPriority(5))
package verso
