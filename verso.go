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
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-playground/validator/v10"
)

// API is the versioned routing layer. It owns the version registry, the
// per-version route tables and middleware chains, and the global middleware
// chain, and dispatches requests through HandleRequest.
//
// Registration (RegisterVersion, AddRoute, AddMiddleware, ...) is expected
// to happen at startup, before the transport accepts traffic. Dispatch only
// reads the registry. A read-write lock guards the registry anyway so that
// implementations which register during live traffic stay correct.
type API struct {
	mu sync.RWMutex

	baseNamespace  string
	defaultVersion string

	versions map[string]*record
	order    []string

	global *chain

	docs *Documentation

	logger      *log.Logger
	checker     *validator.Validate
	metrics     *metricsRecorder
	nonceVerify func(token, action string) bool
	now         func() time.Time
}

// New creates an API with the given options.
//
// Defaults: namespace "api", default version "v1", a discarding logger, no
// metrics. Configuration is validated eagerly so misconfiguration fails at
// startup rather than on the first request.
func New(opts ...Option) (*API, error) {
	a := &API{
		baseNamespace:  "api",
		defaultVersion: "v1",
		versions:       make(map[string]*record),
		global:         newChain(),
		logger:         log.New(io.Discard),
		checker:        validator.New(validator.WithRequiredStructEnabled()),
		now:            time.Now,
	}

	for _, opt := range opts {
		opt(a)
	}

	if err := a.validateConfig(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return a, nil
}

// MustNew is like New but panics on configuration errors. Intended for
// startup code where a bad configuration should abort the process.
func MustNew(opts ...Option) *API {
	a, err := New(opts...)
	if err != nil {
		panic(err)
	}

	return a
}

func (a *API) validateConfig() error {
	if a.baseNamespace == "" {
		return ErrEmptyNamespace
	}
	if a.defaultVersion == "" {
		return ErrEmptyDefaultVersion
	}

	return nil
}

// Namespace returns the base namespace all route URLs live under.
func (a *API) Namespace() string {
	return a.baseNamespace
}

// DefaultVersion returns the version used when the host does not name one.
func (a *API) DefaultVersion() string {
	return a.defaultVersion
}

// normalizeNamespace trims surrounding slashes so the namespace composes
// cleanly into URLs.
func normalizeNamespace(ns string) string {
	return strings.Trim(ns, "/")
}
