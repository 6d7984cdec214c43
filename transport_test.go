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
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"
)

// TransportTestSuite exercises the bundled net/http host adapter
// end to end.
type TransportTestSuite struct {
	suite.Suite

	api *API
}

func (s *TransportTestSuite) SetupTest() {
	s.api = MustNew(WithNamespace("acme/api"))
}

func (s *TransportTestSuite) serve(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	s.api.ServeHTTP(w, req)

	return w
}

func (s *TransportTestSuite) decode(w *httptest.ResponseRecorder) map[string]any {
	var body map[string]any
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &body))

	return body
}

func (s *TransportTestSuite) TestSuccessRoundTrip() {
	s.api.AddRoute("v1", "/widgets", Route{
		Callback: func(req *Request) any {
			return map[string]any{"id": req.Param("id")}
		},
		Args: map[string]*Arg{
			"id": {Required: true, Type: "integer"},
		},
	})

	w := s.serve(httptest.NewRequest(http.MethodGet, "/acme/api/v1/widgets?id=42", nil))

	s.Equal(http.StatusOK, w.Code)
	s.Equal("v1", w.Header().Get("X-API-Version"))
	s.Contains(w.Header().Get("Content-Type"), "application/json")

	body := s.decode(w)
	s.Equal(true, body["success"])
	s.Equal(map[string]any{"id": float64(42)}, body["data"])
}

func (s *TransportTestSuite) TestUnknownPathIs404() {
	w := s.serve(httptest.NewRequest(http.MethodGet, "/acme/api/v1/ghosts", nil))

	s.Equal(http.StatusNotFound, w.Code)
	s.Equal(CodeRouteNotFound, s.decode(w)["code"])
}

func (s *TransportTestSuite) TestOutsideNamespaceIs404() {
	w := s.serve(httptest.NewRequest(http.MethodGet, "/elsewhere/v1/widgets", nil))

	s.Equal(http.StatusNotFound, w.Code)
}

func (s *TransportTestSuite) TestUnknownVersionIs404() {
	s.api.Get("v1", "/widgets", func(*Request) any { return "ok" })

	w := s.serve(httptest.NewRequest(http.MethodGet, "/acme/api/v9/widgets", nil))

	s.Equal(http.StatusNotFound, w.Code)
}

func (s *TransportTestSuite) TestWrongMethodIs405() {
	s.api.Get("v1", "/widgets", func(*Request) any { return "ok" })

	w := s.serve(httptest.NewRequest(http.MethodDelete, "/acme/api/v1/widgets", nil))

	s.Equal(http.StatusMethodNotAllowed, w.Code)
	s.Equal(http.MethodGet, w.Header().Get("Allow"))
	s.Equal(CodeMethodNotAllowed, s.decode(w)["code"])
}

func (s *TransportTestSuite) TestJSONBodyParams() {
	s.api.AddRoute("v1", "/widgets", Route{
		Methods: []string{http.MethodPost},
		Callback: func(req *Request) any {
			return req.Param("name")
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/acme/api/v1/widgets",
		strings.NewReader(`{"name":"gizmo"}`))
	req.Header.Set("Content-Type", "application/json")
	w := s.serve(req)

	s.Equal(http.StatusOK, w.Code)
	s.Equal("gizmo", s.decode(w)["data"])
}

func (s *TransportTestSuite) TestFormBodyParams() {
	s.api.AddRoute("v1", "/widgets", Route{
		Methods:  []string{http.MethodPost},
		Callback: func(req *Request) any { return req.Param("name") },
	})

	req := httptest.NewRequest(http.MethodPost, "/acme/api/v1/widgets",
		strings.NewReader("name=gadget"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := s.serve(req)

	s.Equal("gadget", s.decode(w)["data"])
}

func (s *TransportTestSuite) TestPermissionDenied() {
	handlerRan := false
	s.api.AddRoute("v1", "/admin", Route{
		Callback: func(*Request) any {
			handlerRan = true

			return "secret"
		},
		Permission: func(req *Request) any {
			return CheckPermissions(req.Param("token") == "letmein")
		},
	})

	w := s.serve(httptest.NewRequest(http.MethodGet, "/acme/api/v1/admin", nil))
	s.Equal(http.StatusForbidden, w.Code)
	s.Equal(CodeForbidden, s.decode(w)["code"])
	s.False(handlerRan)

	w = s.serve(httptest.NewRequest(http.MethodGet, "/acme/api/v1/admin?token=letmein", nil))
	s.Equal(http.StatusOK, w.Code)
}

func (s *TransportTestSuite) TestPermissionBoolDeny() {
	s.api.AddRoute("v1", "/admin", Route{
		Callback:   func(*Request) any { return "secret" },
		Permission: func(*Request) any { return false },
	})

	w := s.serve(httptest.NewRequest(http.MethodGet, "/acme/api/v1/admin", nil))

	s.Equal(http.StatusForbidden, w.Code)
}

func (s *TransportTestSuite) TestDeprecationHeadersOnWire() {
	s.api.RegisterVersion("v1")
	s.api.Get("v1", "/widgets", func(*Request) any { return "ok" })
	s.api.DeprecateVersion("v1", "2025-01-01", "2099-01-01", "v2")

	w := s.serve(httptest.NewRequest(http.MethodGet, "/acme/api/v1/widgets", nil))

	s.Equal(http.StatusOK, w.Code)
	s.Equal("true", w.Header().Get("X-API-Deprecated"))
	s.Equal("v2", w.Header().Get("X-API-Successor-Version"))
	s.NotEmpty(w.Header().Get("Warning"))
}

func (s *TransportTestSuite) TestValidationErrorOnWire() {
	s.api.AddRoute("v1", "/widgets", Route{
		Callback: func(*Request) any { return "ok" },
		Args:     map[string]*Arg{"id": {Required: true}},
	})

	w := s.serve(httptest.NewRequest(http.MethodGet, "/acme/api/v1/widgets", nil))

	s.Equal(http.StatusBadRequest, w.Code)
	body := s.decode(w)
	s.Equal(CodeMissingParameter, body["code"])
	s.Equal(float64(http.StatusBadRequest), body["status"])
}

func TestTransportTestSuite(t *testing.T) {
	suite.Run(t, new(TransportTestSuite))
}
