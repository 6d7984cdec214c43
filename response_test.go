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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSuccessResponseEnvelope(t *testing.T) {
	resp := SuccessResponse(map[string]any{"name": "foo"}, "", 0)

	assert.Equal(t, http.StatusOK, resp.Status)
	body := resp.Body.(map[string]any)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, map[string]any{"name": "foo"}, body["data"])
	assert.NotContains(t, body, "message", "message is only present when non-empty")

	withMessage := SuccessResponse(nil, "created", http.StatusCreated)
	assert.Equal(t, http.StatusCreated, withMessage.Status)
	assert.Equal(t, "created", withMessage.Body.(map[string]any)["message"])
}

func TestErrorResponseEnvelope(t *testing.T) {
	err := ErrorResponse("widget_exists", "already there", map[string]any{"id": 1}, 0)

	assert.Equal(t, "widget_exists", err.Code)
	assert.Equal(t, "already there", err.Message)
	assert.Equal(t, http.StatusBadRequest, err.Status, "status defaults to 400")
	assert.Equal(t, map[string]any{"id": 1}, err.Data)
	assert.Equal(t, "already there", err.Error(), "Error satisfies the error interface")
}

func TestCheckPermissions(t *testing.T) {
	assert.Equal(t, true, CheckPermissions(true))

	denied, ok := CheckPermissions(false).(*Error)
	require.True(t, ok)
	assert.Equal(t, CodeForbidden, denied.Code)
	assert.Equal(t, http.StatusForbidden, denied.Status)
}

func TestVerifyNonceWithoutVerifier(t *testing.T) {
	api := newTestAPI(t)

	req := NewRequest(map[string]any{"_nonce": "anything"})
	assert.Equal(t, true, api.VerifyNonce(req, "delete-widget", "_nonce"))

	missing, ok := api.VerifyNonce(NewRequest(nil), "delete-widget", "_nonce").(*Error)
	require.True(t, ok)
	assert.Equal(t, CodeNonceInvalid, missing.Code)
	assert.Equal(t, http.StatusForbidden, missing.Status)
}

func TestVerifyNonceWithVerifier(t *testing.T) {
	api := MustNew(WithNonceVerifier(func(token, action string) bool {
		return token == "tok-"+action
	}))

	good := NewRequest(map[string]any{"_nonce": "tok-save"})
	assert.Equal(t, true, api.VerifyNonce(good, "save", "_nonce"))

	bad := NewRequest(map[string]any{"_nonce": "tok-other"})
	denied, ok := api.VerifyNonce(bad, "save", "_nonce").(*Error)
	require.True(t, ok)
	assert.Equal(t, CodeNonceInvalid, denied.Code)
}

func TestAsResult(t *testing.T) {
	assert.Nil(t, asResult(nil))
	assert.Nil(t, asResult("continue"))
	assert.Nil(t, asResult(true))

	resp := NewResponse(nil, http.StatusOK)
	assert.Equal(t, resp, asResult(resp))

	err := ErrorResponse(CodeError, "x", nil, 0)
	assert.Equal(t, err, asResult(err))
}

func TestMergeHeadersKeepsExisting(t *testing.T) {
	dst := http.Header{}
	dst.Set("X-Request-ID", "original")
	src := http.Header{}
	src.Set("X-Request-ID", "incoming")
	src.Set("X-Extra", "1")

	mergeHeaders(dst, src)

	assert.Equal(t, "original", dst.Get("X-Request-ID"))
	assert.Equal(t, "1", dst.Get("X-Extra"))
}

func TestMergeHeadersCombinesWarnings(t *testing.T) {
	dst := http.Header{}
	dst.Set("Warning", `299 - "use /new instead"`)
	src := http.Header{}
	src.Set("Warning", `299 - "API version v1 is deprecated."`)

	mergeHeaders(dst, src)

	assert.Equal(t, []string{
		`299 - "use /new instead"`,
		`299 - "API version v1 is deprecated."`,
	}, dst.Values("Warning"))
}
