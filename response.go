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

	"github.com/spf13/cast"
)

// Response is a shaped success result: a status code, response headers, and
// a body ready for the transport to serialize.
type Response struct {
	Status  int
	Headers http.Header
	Body    any
}

// NewResponse creates a response with the given body and status.
func NewResponse(body any, status int) *Response {
	return &Response{
		Status:  status,
		Headers: make(http.Header),
		Body:    body,
	}
}

// Header sets a response header, replacing any existing value.
func (r *Response) Header(key, value string) {
	if r.Headers == nil {
		r.Headers = make(http.Header)
	}
	r.Headers.Set(key, value)
}

// Error is the error envelope returned by the pipeline. It is a value, not
// a panic: every pipeline stage reports failure by returning one.
//
// Error implements the error interface so handlers can return it where a
// plain error is expected.
type Error struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Status  int         `json:"status"`
	Data    any         `json:"data,omitempty"`
	Headers http.Header `json:"-"`
}

// Error returns the human readable message.
func (e *Error) Error() string {
	return e.Message
}

// Header sets a response header on the error envelope.
func (e *Error) Header(key, value string) {
	if e.Headers == nil {
		e.Headers = make(http.Header)
	}
	e.Headers.Set(key, value)
}

// SuccessResponse builds the standard success envelope
// {success: true, data, message?}. The message field is only present when
// message is non-empty. A zero status defaults to 200.
func SuccessResponse(data any, message string, status int) *Response {
	if status == 0 {
		status = http.StatusOK
	}
	body := map[string]any{
		"success": true,
		"data":    data,
	}
	if message != "" {
		body["message"] = message
	}

	return NewResponse(body, status)
}

// ErrorResponse builds the standard error envelope. A zero status defaults
// to 400.
func ErrorResponse(code, message string, data any, status int) *Error {
	if status == 0 {
		status = http.StatusBadRequest
	}

	return &Error{
		Code:    code,
		Message: message,
		Status:  status,
		Data:    data,
		Headers: make(http.Header),
	}
}

// CheckPermissions is a reusable guard for permission callbacks. It passes
// through true when allowed and returns a Forbidden error otherwise:
//
//	route.Permission = func(req *verso.Request) any {
//	    return verso.CheckPermissions(currentUserCanManage(req))
//	}
func CheckPermissions(allowed bool) any {
	if !allowed {
		return ErrorResponse(CodeForbidden, "You do not have permission to perform this action.", nil, http.StatusForbidden)
	}

	return true
}

// VerifyNonce is a reusable guard for state-changing routes. It reads the
// nonce token from the named request parameter and checks it against the
// verifier configured via WithNonceVerifier. An empty token always fails;
// without a configured verifier any non-empty token passes.
func (a *API) VerifyNonce(req *Request, action, param string) any {
	token := cast.ToString(req.Param(param))
	if token == "" || (a.nonceVerify != nil && !a.nonceVerify(token, action)) {
		return ErrorResponse(CodeNonceInvalid, "Nonce verification failed.", nil, http.StatusForbidden)
	}

	return true
}

// asResult recognizes the two terminal value kinds a middleware or guard
// can produce. Anything else, nil included, means "continue".
func asResult(v any) any {
	switch v.(type) {
	case *Response, *Error:
		return v
	default:
		return nil
	}
}

// mergeHeaders copies every header from src into dst without overwriting
// keys dst already has. Warning is list-valued (RFC 9110), so its values
// combine instead: a route-level deprecation warning and a version-level
// one both reach the client.
func mergeHeaders(dst, src http.Header) {
	for key, values := range src {
		if _, exists := dst[key]; exists && key != "Warning" {
			continue
		}
		for _, v := range values {
			dst.Add(key, v)
		}
	}
}
