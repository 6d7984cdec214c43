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

import "errors"

// Error codes carried in the error envelope. Each code maps to exactly one
// HTTP status (see the dispatch pipeline).
const (
	// CodeRouteNotFound is returned when a request arrives without resolvable
	// route metadata. Maps to 404.
	CodeRouteNotFound = "route_not_found"

	// CodeVersionRemoved is returned when a deprecated version is past its
	// removal date. Maps to 410.
	CodeVersionRemoved = "version_removed"

	// CodeMissingParameter is returned when a required parameter is absent.
	// Maps to 400.
	CodeMissingParameter = "missing_parameter"

	// CodeInvalidParameter is returned when a parameter fails validation.
	// Maps to 400.
	CodeInvalidParameter = "invalid_parameter"

	// CodeInvalidCallback signals a registration bug: the route has no
	// callable handler. Maps to 500.
	CodeInvalidCallback = "invalid_callback"

	// CodeInternalError is produced when a handler panics or returns a plain
	// Go error. Maps to 500.
	CodeInternalError = "internal_error"

	// CodeForbidden is returned by the permission guard. Maps to 403.
	CodeForbidden = "forbidden"

	// CodeNonceInvalid is returned by the nonce guard. Maps to 403.
	CodeNonceInvalid = "nonce_invalid"

	// CodeMethodNotAllowed is emitted by the HTTP adapter when the path
	// matches but the method does not. Maps to 405.
	CodeMethodNotAllowed = "method_not_allowed"

	// CodeError is the generic code used when a handler returns an error
	// shaped map without naming a code.
	CodeError = "error"
)

// Static errors for startup configuration validation. These surface through
// New, never through the dispatch pipeline.
var (
	// ErrEmptyNamespace indicates the base namespace is empty.
	ErrEmptyNamespace = errors.New("base namespace cannot be empty")

	// ErrEmptyDefaultVersion indicates the default version is empty.
	ErrEmptyDefaultVersion = errors.New("default version cannot be empty")

	// ErrNilMiddleware indicates a nil middleware was registered.
	ErrNilMiddleware = errors.New("middleware cannot be nil")

	// ErrNilHandler indicates a nil handler was passed to a verb helper.
	ErrNilHandler = errors.New("handler cannot be nil")
)
