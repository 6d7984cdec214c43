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
	"net/url"
	"sort"
)

// Documentation is the read-only introspection tree describing the
// registered API surface: base namespace, default version, and per-version
// route and deprecation metadata.
type Documentation struct {
	Namespace      string                `json:"namespace"`
	DefaultVersion string                `json:"default_version"`
	Versions       map[string]VersionDoc `json:"versions"`
}

// VersionDoc documents one registered version.
type VersionDoc struct {
	Deprecated      bool                `json:"deprecated"`
	DeprecationDate string              `json:"deprecation_date,omitempty"`
	RemovalDate     string              `json:"removal_date,omitempty"`
	Successor       string              `json:"successor,omitempty"`
	Routes          map[string]RouteDoc `json:"routes"`
}

// RouteDoc documents one route.
type RouteDoc struct {
	Methods            []string          `json:"methods"`
	Deprecated         bool              `json:"deprecated,omitempty"`
	DeprecationMessage string            `json:"deprecation_message,omitempty"`
	Args               map[string]ArgDoc `json:"args,omitempty"`
}

// ArgDoc documents one route parameter.
type ArgDoc struct {
	Required    bool   `json:"required"`
	Type        string `json:"type,omitempty"`
	Enum        []any  `json:"enum,omitempty"`
	Default     any    `json:"default,omitempty"`
	Description string `json:"description,omitempty"`
}

// FullNamespace returns the namespace path for a version, e.g.
// "acme/api/v2". An empty version id resolves to the default version.
func (a *API) FullNamespace(versionID string) string {
	if versionID == "" {
		versionID = a.defaultVersion
	}

	return a.baseNamespace + "/" + versionID
}

// RouteURL builds the URL for a registered route with the given query
// parameters, e.g. "/acme/api/v1/widgets?id=42". The path does not need to
// be registered; the URL is composed, not looked up.
func (a *API) RouteURL(versionID, path string, params map[string]string) string {
	u := "/" + a.FullNamespace(versionID) + normalizePath(path)
	if len(params) == 0 {
		return u
	}

	query := url.Values{}
	for key, value := range params {
		query.Set(key, value)
	}

	return u + "?" + query.Encode()
}

// Documentation returns the introspection tree. The tree is built on first
// call and cached; any registration mutation invalidates the cache. The
// returned value is shared, so callers must treat it as read-only.
func (a *API) Documentation() *Documentation {
	a.mu.RLock()
	if a.docs != nil {
		docs := a.docs
		a.mu.RUnlock()

		return docs
	}
	a.mu.RUnlock()

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.docs == nil {
		a.docs = a.buildDocumentation()
	}

	return a.docs
}

// buildDocumentation walks the registry. Callers must hold the write lock.
func (a *API) buildDocumentation() *Documentation {
	docs := &Documentation{
		Namespace:      a.baseNamespace,
		DefaultVersion: a.defaultVersion,
		Versions:       make(map[string]VersionDoc, len(a.versions)),
	}

	for _, id := range a.orderedVersionIDs() {
		rec := a.versions[id]
		vd := VersionDoc{
			Deprecated:      rec.lifecycle.Deprecated,
			DeprecationDate: rec.lifecycle.DeprecationDate,
			RemovalDate:     rec.lifecycle.RemovalDate,
			Successor:       rec.lifecycle.Successor,
			Routes:          make(map[string]RouteDoc, len(rec.routes)),
		}

		paths := make([]string, 0, len(rec.routes))
		for p := range rec.routes {
			paths = append(paths, p)
		}
		sort.Strings(paths)

		for _, p := range paths {
			vd.Routes[p] = documentRoute(rec.routes[p])
		}
		docs.Versions[id] = vd
	}

	return docs
}

func documentRoute(route *Route) RouteDoc {
	rd := RouteDoc{
		Methods:            route.Methods,
		Deprecated:         route.Deprecated,
		DeprecationMessage: route.DeprecationMessage,
	}
	if len(route.Args) == 0 {
		return rd
	}

	rd.Args = make(map[string]ArgDoc, len(route.Args))
	for name, arg := range route.Args {
		rd.Args[name] = ArgDoc{
			Required:    arg.Required,
			Type:        arg.Type,
			Enum:        arg.Enum,
			Default:     arg.Default,
			Description: arg.Description,
		}
	}

	return rd
}
