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

import "net/http"

// RouteMeta is the per-request bundle resolving which version and route
// configuration applies. The host attaches it to the request before calling
// HandleRequest; a request without it fails with CodeRouteNotFound.
type RouteMeta struct {
	// Version is the id of the version that matched, e.g. "v1".
	Version string

	// Route is the matched route configuration.
	Route *Route

	record *record
}

// Request is the unit of work flowing through the pipeline. It carries the
// decoded parameters, the attached route metadata, and a staging area for
// response headers that middleware wants on the final response.
//
// A Request belongs to exactly one dispatch. The sanitization stage mutates
// parameters in place; nothing outside that request observes the mutation.
type Request struct {
	params  map[string]any
	meta    *RouteMeta
	httpReq *http.Request
	headers http.Header
}

// NewRequest creates a request with the given parameters. A nil map is
// replaced with an empty one so SetParam always works.
func NewRequest(params map[string]any) *Request {
	if params == nil {
		params = make(map[string]any)
	}

	return &Request{
		params:  params,
		headers: make(http.Header),
	}
}

// Param returns the named parameter, or nil when absent.
func (r *Request) Param(name string) any {
	return r.params[name]
}

// HasParam reports whether the parameter is present, even with a nil value.
func (r *Request) HasParam(name string) bool {
	_, ok := r.params[name]

	return ok
}

// SetParam sets a parameter in place. The sanitization stage uses this to
// replace values before the handler sees them.
func (r *Request) SetParam(name string, value any) {
	r.params[name] = value
}

// Params returns the live parameter map. Mutations are visible to the
// request; handlers normally use Param and SetParam instead.
func (r *Request) Params() map[string]any {
	return r.params
}

// Meta returns the attached route metadata, or nil if the host never
// resolved one.
func (r *Request) Meta() *RouteMeta {
	return r.meta
}

// SetMeta attaches route metadata. Called by the host transport once the
// request has been matched to a registered (version, path) pair.
func (r *Request) SetMeta(meta *RouteMeta) {
	r.meta = meta
}

// HTTP returns the underlying transport request, or nil when the request
// was constructed directly (as tests do).
func (r *Request) HTTP() *http.Request {
	return r.httpReq
}

// SetHTTP attaches the underlying transport request.
func (r *Request) SetHTTP(req *http.Request) {
	r.httpReq = req
}

// SetHeader stages a response header. Staged headers are merged onto the
// final response during header injection, whether the pipeline ends in a
// success or an error.
func (r *Request) SetHeader(key, value string) {
	r.headers.Set(key, value)
}

func (r *Request) stagedHeaders() http.Header {
	return r.headers
}
