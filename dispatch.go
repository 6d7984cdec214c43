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
	"fmt"
	"net/http"
	"reflect"
	"time"

	"github.com/spf13/cast"

	"verso.dev/verso/version"
)

// HandleRequest dispatches one request through the pipeline and returns a
// *Response or *Error. The host transport calls it once per matched route
// after attaching RouteMeta to the request.
//
// The stages run in strict order, each a potential exit point: metadata
// resolution, deprecation gate, global middleware, version middleware,
// validation, sanitization, handler invocation, response formatting, and
// header injection. No stage retries; the only panic recovery sits around
// the handler invocation.
func (a *API) HandleRequest(req *Request) any {
	start := a.now()

	if req == nil {
		req = NewRequest(nil)
	}
	meta := req.Meta()
	if meta == nil || meta.Route == nil {
		return a.finish(req, nil, nil, routeNotFound(), start)
	}

	dep, removed := a.deprecationGate(req, meta)
	if removed != nil {
		return a.finish(req, meta, dep, removed, start)
	}

	global, scoped := a.snapshotChains(meta)
	if out := global.apply(req, meta); out != nil {
		return a.finish(req, meta, dep, out, start)
	}
	if out := scoped.apply(req, meta); out != nil {
		return a.finish(req, meta, dep, out, start)
	}

	if errv := a.validateParams(req, meta.Route); errv != nil {
		return a.finish(req, meta, dep, errv, start)
	}
	a.sanitizeParams(req, meta.Route)

	raw := a.invoke(req, meta)

	return a.finish(req, meta, dep, a.formatResult(raw), start)
}

// snapshotChains reads the chain bucket slices under the read lock so a
// dispatch keeps a coherent view even if registration overlaps traffic.
func (a *API) snapshotChains(meta *RouteMeta) (chain, chain) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	global := chain{buckets: a.global.buckets}
	scoped := chain{}
	rec := meta.record
	if rec == nil {
		rec = a.versions[meta.Version]
	}
	if rec != nil {
		scoped.buckets = rec.chain.buckets
	}

	return global, scoped
}

// deprecationGate checks the resolved version's lifecycle. For a
// deprecated version it builds the response carrying the deprecation
// headers; that response is not returned but carried forward so its
// headers ride along with the final result. When the removal date is in
// the past it additionally returns the terminal VersionRemoved error,
// which forbids running the handler entirely.
func (a *API) deprecationGate(req *Request, meta *RouteMeta) (*Response, *Error) {
	if meta.Route.Deprecated && meta.Route.DeprecationMessage != "" {
		req.SetHeader("Warning", fmt.Sprintf("299 - %q", meta.Route.DeprecationMessage))
	}

	lc := a.Lifecycle(meta.Version)
	if lc == nil || !lc.Deprecated {
		return nil, nil
	}

	dep := NewResponse(nil, http.StatusOK)
	dep.Header(version.HeaderDeprecated, "true")
	dep.Header("Warning", deprecationWarning(meta.Version, lc))
	if lc.DeprecationDate != "" {
		dep.Header(version.HeaderDeprecationDate, lc.DeprecationDate)
	}
	if lc.RemovalDate != "" {
		dep.Header(version.HeaderRemovalDate, lc.RemovalDate)
	}
	if lc.Successor != "" {
		dep.Header(version.HeaderSuccessor, lc.Successor)
	}

	if removal, ok := lc.RemovalTime(); ok && removal.Before(a.now()) {
		successor := lc.Successor
		if successor == "" {
			successor = "latest"
		}
		removed := ErrorResponse(CodeVersionRemoved,
			fmt.Sprintf("API version %s has been removed. Please use version %s instead.", meta.Version, successor),
			nil, http.StatusGone)

		a.logger.Warn("removed version rejected",
			"version", meta.Version,
			"removal_date", lc.RemovalDate,
			"successor", successor,
		)
		a.recordDeprecatedUse(req, meta.Version)

		return dep, removed
	}

	a.logger.Warn("deprecated version accessed", "version", meta.Version)
	a.recordDeprecatedUse(req, meta.Version)

	return dep, nil
}

func deprecationWarning(versionID string, lc *version.Config) string {
	msg := fmt.Sprintf("API version %s is deprecated", versionID)
	if lc.RemovalDate != "" {
		msg += " and will be removed on " + lc.RemovalDate
	}
	if lc.Successor != "" {
		msg += ". Please migrate to version " + lc.Successor
	}

	return fmt.Sprintf("299 - %q", msg+".")
}

// validateParams runs the validation stage: required presence first, then
// defaults, then the declarative checks (type, enum, rules), then the
// per-arg callback. The first failing parameter stops validation; no error
// aggregation. Parameters are visited in sorted name order so fail-fast is
// deterministic.
func (a *API) validateParams(req *Request, route *Route) *Error {
	for _, name := range sortedArgNames(route.Args) {
		arg := route.Args[name]

		if !req.HasParam(name) || req.Param(name) == nil {
			if arg.Required {
				return ErrorResponse(CodeMissingParameter,
					fmt.Sprintf("Missing required parameter: %s", name),
					map[string]any{"param": name}, http.StatusBadRequest)
			}
			if arg.Default != nil {
				req.SetParam(name, arg.Default)
			}

			continue
		}

		value := req.Param(name)
		if arg.Type != "" && !typeMatches(value, arg.Type) {
			return invalidParam(name, fmt.Sprintf("expected type %s", arg.Type))
		}
		if len(arg.Enum) > 0 && !enumContains(arg.Enum, value) {
			return invalidParam(name, "value is not one of the allowed choices")
		}
		if arg.Rules != "" {
			if err := a.checker.Var(value, arg.Rules); err != nil {
				return invalidParam(name, err.Error())
			}
		}
		if arg.Validate != nil && !arg.Validate(value, req, name) {
			return invalidParam(name, "validation callback rejected the value")
		}
	}

	return nil
}

func invalidParam(name, reason string) *Error {
	return ErrorResponse(CodeInvalidParameter,
		fmt.Sprintf("Invalid parameter %s: %s", name, reason),
		map[string]any{"param": name}, http.StatusBadRequest)
}

// sanitizeParams runs the sanitization stage, mutating the request's
// parameters in place before the handler sees them. A custom Sanitize
// callback wins; otherwise a declared Type coerces the value.
func (a *API) sanitizeParams(req *Request, route *Route) {
	for _, name := range sortedArgNames(route.Args) {
		arg := route.Args[name]
		value := req.Param(name)
		if value == nil {
			continue
		}

		if arg.Sanitize != nil {
			req.SetParam(name, arg.Sanitize(value, req, name))

			continue
		}
		if arg.Type != "" {
			if coerced, ok := coerceType(value, arg.Type); ok {
				req.SetParam(name, coerced)
			}
		}
	}
}

// invoke runs the handler. A nil callback is a registration bug surfaced
// as a 500; a panicking handler is contained here and converted to an
// internal error, never propagated to the transport as a raw fault.
func (a *API) invoke(req *Request, meta *RouteMeta) (out any) {
	callback := meta.Route.Callback
	if callback == nil {
		a.logger.Error("route has no callback", "version", meta.Version)

		return ErrorResponse(CodeInvalidCallback,
			"The handler for this route is invalid.",
			nil, http.StatusInternalServerError)
	}

	defer func() {
		if r := recover(); r != nil {
			a.logger.Error("handler panic recovered", "version", meta.Version, "panic", r)
			out = ErrorResponse(CodeInternalError, fmt.Sprint(r), nil, http.StatusInternalServerError)
		}
	}()

	return callback(req)
}

// formatResult normalizes raw handler output. A *Response or *Error passes
// through unchanged. A map carrying an "error" key becomes an error
// envelope using its "code" and "status" fields, code defaulting to the
// generic "error" and status to 400. A plain Go error is treated like a
// contained fault. Everything else is wrapped as a 200 success.
func (a *API) formatResult(raw any) any {
	switch v := raw.(type) {
	case *Response:
		return v
	case *Error:
		return v
	case error:
		return ErrorResponse(CodeInternalError, v.Error(), nil, http.StatusInternalServerError)
	case map[string]any:
		if msg, ok := v["error"]; ok {
			code := cast.ToString(v["code"])
			if code == "" {
				code = CodeError
			}
			status := cast.ToInt(v["status"])
			if status == 0 {
				status = http.StatusBadRequest
			}

			return ErrorResponse(code, cast.ToString(msg), v["data"], status)
		}
	}

	return SuccessResponse(raw, "", http.StatusOK)
}

// finish is the single exit point: it injects the version header on
// success, merges staged and carried-forward deprecation headers onto the
// result (success or error), and records dispatch metrics.
func (a *API) finish(req *Request, meta *RouteMeta, dep *Response, result any, start time.Time) any {
	elapsed := a.now().Sub(start)

	switch r := result.(type) {
	case *Response:
		if r.Headers == nil {
			r.Headers = make(http.Header)
		}
		if meta != nil {
			r.Headers.Set(version.HeaderVersion, meta.Version)
		}
		mergeHeaders(r.Headers, req.stagedHeaders())
		if dep != nil {
			mergeHeaders(r.Headers, dep.Headers)
		}
		a.recordDispatch(req, meta, r.Status, elapsed)
	case *Error:
		if r.Headers == nil {
			r.Headers = make(http.Header)
		}
		mergeHeaders(r.Headers, req.stagedHeaders())
		if dep != nil {
			mergeHeaders(r.Headers, dep.Headers)
		}
		a.recordDispatch(req, meta, r.Status, elapsed)
	}

	return result
}

// typeMatches reports whether the value can be read as the declared type.
// Matching is lenient the way form and query decoding needs it to be:
// "42" matches integer, "on" matches boolean.
func typeMatches(value any, typ string) bool {
	switch typ {
	case "string":
		_, err := cast.ToStringE(value)

		return err == nil
	case "integer":
		_, err := cast.ToInt64E(value)

		return err == nil
	case "number":
		_, err := cast.ToFloat64E(value)

		return err == nil
	case "boolean":
		_, err := cast.ToBoolE(value)

		return err == nil
	case "array":
		kind := reflect.ValueOf(value).Kind()

		return kind == reflect.Slice || kind == reflect.Array
	default:
		return true
	}
}

// coerceType converts the value to the declared type's canonical Go
// representation. The bool return is false when conversion fails; the
// original value is then left untouched.
func coerceType(value any, typ string) (any, bool) {
	switch typ {
	case "string":
		out, err := cast.ToStringE(value)

		return out, err == nil
	case "integer":
		out, err := cast.ToInt64E(value)

		return out, err == nil
	case "number":
		out, err := cast.ToFloat64E(value)

		return out, err == nil
	case "boolean":
		out, err := cast.ToBoolE(value)

		return out, err == nil
	default:
		return value, false
	}
}

// enumContains checks membership using string comparison so "2" and 2
// compare equal, matching the lenient type model above.
func enumContains(enum []any, value any) bool {
	want := cast.ToString(value)
	for _, candidate := range enum {
		if cast.ToString(candidate) == want {
			return true
		}
	}

	return false
}
