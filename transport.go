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
	"encoding/json"
	"mime"
	"net/http"
	"strings"
)

// ServeHTTP is the bundled host adapter for net/http. It plays the role
// the pipeline assigns to the host transport: match the URL to a
// registered (version, path) pair, decode parameters, attach RouteMeta,
// evaluate the route's permission callback, call HandleRequest, and write
// the JSON envelope back.
//
// URLs follow /{namespace}/{version}/{path}. Requests outside the
// namespace, to unknown versions, or to unregistered paths get the
// standard route_not_found envelope; a matched path with a wrong verb gets
// 405 with an Allow header.
func (a *API) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	versionID, routePath, ok := a.splitPath(r.URL.Path)
	if !ok {
		a.writeResult(w, routeNotFound())

		return
	}

	a.mu.RLock()
	rec, known := a.versions[versionID]
	var route *Route
	if known {
		route = rec.routes[routePath]
	}
	a.mu.RUnlock()

	if route == nil {
		a.writeResult(w, routeNotFound())

		return
	}
	if !route.allowsMethod(r.Method) {
		notAllowed := ErrorResponse(CodeMethodNotAllowed,
			"The request method is not supported for this route.",
			nil, http.StatusMethodNotAllowed)
		notAllowed.Header("Allow", strings.Join(route.Methods, ", "))
		a.writeResult(w, notAllowed)

		return
	}

	req := NewRequest(decodeParams(r))
	req.SetHTTP(r)
	req.SetMeta(&RouteMeta{
		Version: versionID,
		Route:   route,
		record:  rec,
	})

	if route.Permission != nil {
		switch out := route.Permission(req).(type) {
		case *Response:
			a.writeResult(w, out)

			return
		case *Error:
			a.writeResult(w, out)

			return
		case bool:
			if !out {
				a.writeResult(w, CheckPermissions(false))

				return
			}
		}
	}

	a.writeResult(w, a.HandleRequest(req))
}

// splitPath extracts the version id and normalized route path from a
// request URL. The second segment after the namespace is always the
// version; version validity is decided against the registry by the caller.
func (a *API) splitPath(path string) (versionID, routePath string, ok bool) {
	trimmed := strings.Trim(path, "/")
	prefix := a.baseNamespace + "/"
	if !strings.HasPrefix(trimmed, prefix) {
		return "", "", false
	}

	rest := trimmed[len(prefix):]
	if rest == "" {
		return "", "", false
	}

	versionID, tail, _ := strings.Cut(rest, "/")

	return versionID, normalizePath(tail), true
}

// decodeParams merges query string, form body, and JSON body parameters
// into one map. Later sources win: query, then form, then JSON body.
func decodeParams(r *http.Request) map[string]any {
	params := make(map[string]any)

	mergeFormValues(params, r.URL.Query())

	contentType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch contentType {
	case "application/x-www-form-urlencoded":
		if err := r.ParseForm(); err == nil {
			mergeFormValues(params, r.PostForm)
		}
	case "multipart/form-data":
		if err := r.ParseMultipartForm(32 << 20); err == nil {
			mergeFormValues(params, r.PostForm)
		}
	case "application/json":
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err == nil {
			for key, value := range body {
				params[key] = value
			}
		}
	}

	return params
}

func mergeFormValues(params map[string]any, form map[string][]string) {
	for key, values := range form {
		if len(values) == 1 {
			params[key] = values[0]
		} else {
			params[key] = values
		}
	}
}

// writeResult serializes a pipeline result onto the wire. Unknown result
// kinds cannot happen through HandleRequest; they are answered with a 500
// envelope anyway rather than a broken response.
func (a *API) writeResult(w http.ResponseWriter, result any) {
	var (
		status  int
		headers http.Header
		body    any
	)

	switch r := result.(type) {
	case *Response:
		status, headers, body = r.Status, r.Headers, r.Body
	case *Error:
		status, headers, body = r.Status, r.Headers, r
	default:
		fallback := ErrorResponse(CodeInternalError, "Unexpected dispatch result.", nil, http.StatusInternalServerError)
		status, headers, body = fallback.Status, fallback.Headers, fallback
	}

	for key, values := range headers {
		for _, v := range values {
			w.Header().Add(key, v)
		}
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		a.logger.Error("response encode failed", "error", err)
	}
}

func routeNotFound() *Error {
	return ErrorResponse(CodeRouteNotFound,
		"No route was found matching the URL and request method.",
		nil, http.StatusNotFound)
}
