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
	"slices"
	"sort"
	"strings"

	"dario.cat/mergo"
)

// Handler is a route's callback. It receives the sanitized request and
// returns a raw result which the pipeline shapes: a *Response or *Error
// passes through, a map carrying an "error" key becomes an error envelope,
// anything else is wrapped as a 200 success.
type Handler func(*Request) any

// PermissionFunc gates access to a route. Returning true or nil allows the
// request; returning false or a *Error denies it. Evaluated by the host
// transport before dispatch.
type PermissionFunc func(*Request) any

// ValidateFunc checks one parameter value. A false return fails the
// request with CodeInvalidParameter.
type ValidateFunc func(value any, req *Request, name string) bool

// SanitizeFunc rewrites one parameter value before the handler runs.
type SanitizeFunc func(value any, req *Request, name string) any

// AllowAll is the default permission callback: every request passes.
var AllowAll PermissionFunc = func(*Request) any { return true }

// Arg describes one route parameter.
type Arg struct {
	// Required fails the request with CodeMissingParameter when absent.
	Required bool

	// Default is applied when the parameter is absent and not required.
	Default any

	// Type constrains the value: "string", "integer", "number", "boolean"
	// or "array". When no Sanitize callback is set, the sanitization stage
	// also coerces the value to this type.
	Type string

	// Enum restricts the value to a fixed set.
	Enum []any

	// Rules is a declarative validation tag expression, e.g. "numeric" or
	// "email,max=64", evaluated against the value.
	Rules string

	// Validate runs after the declarative checks; a false return rejects
	// the value.
	Validate ValidateFunc

	// Sanitize replaces the value in place before the handler runs.
	Sanitize SanitizeFunc

	// Description documents the parameter for introspection.
	Description string
}

// Route is one (version, path) entry in the route table.
type Route struct {
	// Methods lists the HTTP verbs the route answers. Defaults to GET.
	Methods []string

	// Callback handles the request. A route dispatched without one fails
	// with CodeInvalidCallback.
	Callback Handler

	// Permission gates access. Defaults to AllowAll.
	Permission PermissionFunc

	// Args maps parameter names to their specs.
	Args map[string]*Arg

	// Deprecated marks the route (not the version) as deprecated. The gate
	// stages a Warning header carrying DeprecationMessage.
	Deprecated         bool
	DeprecationMessage string

	// RateLimit and CacheTTL are reserved hints for the transport layer.
	// The dispatch pipeline does not enforce them.
	RateLimit int
	CacheTTL  int
}

// defaultRoute holds the documented route defaults merged under every
// registered config. The permission default is applied separately because
// callable fields sit outside the merge.
func defaultRoute() Route {
	return Route{
		Methods: []string{http.MethodGet},
	}
}

// normalizePath stores paths with exactly one leading slash and no
// trailing slash (the root path stays "/").
func normalizePath(p string) string {
	p = strings.Trim(p, "/")
	if p == "" {
		return "/"
	}

	return "/" + p
}

// AddRoute registers a route under a version, creating the version with
// defaults when it does not exist yet. The config is merged over the
// documented defaults; registering the same (version, path) twice
// overwrites the earlier entry.
func (a *API) AddRoute(versionID, path string, route Route) {
	if err := mergo.Merge(&route, defaultRoute()); err != nil {
		// Merging two plain structs cannot fail; keep the raw config.
		a.logger.Error("route defaults merge failed", "error", err)
	}
	if route.Permission == nil {
		route.Permission = AllowAll
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	rec := a.versionLocked(versionID)
	rec.routes[normalizePath(path)] = &route
	a.docs = nil
}

// AddRoutes registers several routes under a version in one call. Paths
// are processed in sorted order so registration is deterministic.
func (a *API) AddRoutes(versionID string, routes map[string]Route) {
	paths := make([]string, 0, len(routes))
	for p := range routes {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	for _, p := range paths {
		a.AddRoute(versionID, p, routes[p])
	}
}

// Get registers a GET route with the given handler.
func (a *API) Get(versionID, path string, fn Handler) {
	a.addVerbRoute(versionID, path, http.MethodGet, fn)
}

// Post registers a POST route with the given handler.
func (a *API) Post(versionID, path string, fn Handler) {
	a.addVerbRoute(versionID, path, http.MethodPost, fn)
}

// Put registers a PUT route with the given handler.
func (a *API) Put(versionID, path string, fn Handler) {
	a.addVerbRoute(versionID, path, http.MethodPut, fn)
}

// Delete registers a DELETE route with the given handler.
func (a *API) Delete(versionID, path string, fn Handler) {
	a.addVerbRoute(versionID, path, http.MethodDelete, fn)
}

func (a *API) addVerbRoute(versionID, path, method string, fn Handler) {
	if fn == nil {
		panic(ErrNilHandler)
	}
	a.AddRoute(versionID, path, Route{
		Methods:  []string{method},
		Callback: fn,
	})
}

// CopyRoutes copies every route from one version into another, skipping
// paths listed in exclude. It is the backward-compatibility fan-out used
// when a new version keeps most of the old surface. Returns false when the
// source version is unknown; the destination is created when absent.
//
// Copies share the source's *Route values. Mutating a shared config after
// the copy is visible to both versions; register a fresh route on the
// destination to diverge.
func (a *API) CopyRoutes(fromVersion, toVersion string, exclude ...string) bool {
	skip := make(map[string]struct{}, len(exclude))
	for _, p := range exclude {
		skip[normalizePath(p)] = struct{}{}
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	src, ok := a.versions[fromVersion]
	if !ok {
		return false
	}
	dst := a.versionLocked(toVersion)

	for path, route := range src.routes {
		if _, excluded := skip[path]; excluded {
			continue
		}
		dst.routes[path] = route
	}
	a.docs = nil

	return true
}

// RouteFor returns the route registered at (version, path), or nil. The
// path is normalized before lookup.
func (a *API) RouteFor(versionID, path string) *Route {
	a.mu.RLock()
	defer a.mu.RUnlock()

	rec, ok := a.versions[versionID]
	if !ok {
		return nil
	}

	return rec.routes[normalizePath(path)]
}

// MetaFor resolves the RouteMeta for a registered (version, path) pair, or
// nil when either is unknown. Hosts use it to attach metadata to a request
// before calling HandleRequest.
func (a *API) MetaFor(versionID, path string) *RouteMeta {
	a.mu.RLock()
	defer a.mu.RUnlock()

	rec, ok := a.versions[versionID]
	if !ok {
		return nil
	}
	route := rec.routes[normalizePath(path)]
	if route == nil {
		return nil
	}

	return &RouteMeta{Version: versionID, Route: route, record: rec}
}

// allowsMethod reports whether the route answers the given HTTP verb.
func (r *Route) allowsMethod(method string) bool {
	return slices.Contains(r.Methods, method)
}

// sortedArgNames fixes the parameter iteration order for validation and
// sanitization: fail-fast must be deterministic.
func sortedArgNames(args map[string]*Arg) []string {
	names := make([]string, 0, len(args))
	for name := range args {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}
