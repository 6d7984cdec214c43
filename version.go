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
	"slices"

	"verso.dev/verso/version"
)

// record is one version's registry entry: its routes, its middleware
// chain, and its lifecycle state. Records are created explicitly by
// RegisterVersion or auto-vivified by the first AddRoute or AddMiddleware
// naming the version. There is no removal API; records live for the
// process lifetime.
type record struct {
	id        string
	lifecycle *version.Config
	routes    map[string]*Route
	chain     *chain
}

func newRecord(id string) *record {
	return &record{
		id:        id,
		lifecycle: version.New(),
		routes:    make(map[string]*Route),
		chain:     newChain(),
	}
}

// RegisterVersion registers a version with the given lifecycle options.
// Re-registering an existing id fully replaces its record, routes and
// middleware included; the last full registration wins. The version keeps
// its original position in registration order.
func (a *API) RegisterVersion(id string, opts ...version.Option) {
	a.mu.Lock()
	defer a.mu.Unlock()

	rec := newRecord(id)
	rec.lifecycle = version.New(opts...)

	if _, exists := a.versions[id]; !exists {
		a.order = append(a.order, id)
	}
	a.versions[id] = rec
	a.docs = nil
}

// DeprecateVersion marks a version as deprecated. removalDate and
// successor may be empty. It returns false when the version is unknown.
//
// Dates are ISO-8601 strings and are stored as given; validating them is
// the caller's responsibility. An unparsable removal date never triggers
// removal.
func (a *API) DeprecateVersion(id, deprecationDate, removalDate, successor string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	rec, ok := a.versions[id]
	if !ok {
		return false
	}

	rec.lifecycle.Deprecated = true
	rec.lifecycle.DeprecationDate = deprecationDate
	rec.lifecycle.RemovalDate = removalDate
	rec.lifecycle.Successor = successor
	a.docs = nil

	a.logger.Info("version deprecated",
		"version", id,
		"deprecation_date", deprecationDate,
		"removal_date", removalDate,
		"successor", successor,
	)

	return true
}

// AvailableVersions returns registered version ids in registration order.
// Deprecated versions are filtered out unless includeDeprecated is true.
func (a *API) AvailableVersions(includeDeprecated bool) []string {
	a.mu.RLock()
	defer a.mu.RUnlock()

	out := make([]string, 0, len(a.order))
	for _, id := range a.order {
		if !includeDeprecated && a.versions[id].lifecycle.Deprecated {
			continue
		}
		out = append(out, id)
	}

	return out
}

// HasVersion reports whether the version id is registered.
func (a *API) HasVersion(id string) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	_, ok := a.versions[id]

	return ok
}

// Lifecycle returns a copy of the version's lifecycle state, or nil when
// the version is unknown.
func (a *API) Lifecycle(id string) *version.Config {
	a.mu.RLock()
	defer a.mu.RUnlock()

	rec, ok := a.versions[id]
	if !ok {
		return nil
	}

	return rec.lifecycle.Clone()
}

// versionLocked returns the record for id, creating it with defaults when
// absent. Callers must hold the write lock.
func (a *API) versionLocked(id string) *record {
	rec, ok := a.versions[id]
	if !ok {
		rec = newRecord(id)
		a.versions[id] = rec
		a.order = append(a.order, id)
	}

	return rec
}

// orderedVersionIDs returns registration-order ids; used by introspection
// which wants a stable view while holding the read lock.
func (a *API) orderedVersionIDs() []string {
	return slices.Clone(a.order)
}
