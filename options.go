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
	"time"

	"github.com/charmbracelet/log"
)

// Option configures the API at construction time.
type Option func(*API)

// WithNamespace sets the base namespace all versions live under, e.g.
// "acme/api" producing URLs like /acme/api/v1/widgets. Surrounding slashes
// are trimmed.
func WithNamespace(ns string) Option {
	return func(a *API) {
		a.baseNamespace = normalizeNamespace(ns)
	}
}

// WithDefaultVersion sets the version used when the host does not name one.
func WithDefaultVersion(v string) Option {
	return func(a *API) {
		a.defaultVersion = v
	}
}

// WithLogger sets the notice sink. The pipeline logs deprecated version
// access, removal rejections, and recovered handler panics through it.
// The default logger discards everything.
func WithLogger(logger *log.Logger) Option {
	return func(a *API) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithSettings reads the base namespace and default version from a settings
// store, keeping the current values as fallbacks. Later options still
// override what the store provided.
func WithSettings(s Settings) Option {
	return func(a *API) {
		if s == nil {
			return
		}
		a.baseNamespace = normalizeNamespace(StringSetting(s, SettingBaseNamespace, a.baseNamespace))
		a.defaultVersion = StringSetting(s, SettingDefaultVersion, a.defaultVersion)
	}
}

// WithMetrics enables OpenTelemetry dispatch metrics: a request counter, a
// duration histogram, and a deprecated-use counter, recorded against the
// globally registered meter provider.
func WithMetrics() Option {
	return func(a *API) {
		a.metrics = newMetricsRecorder()
	}
}

// WithNonceVerifier installs the token check used by VerifyNonce. Without
// one, any non-empty token passes.
func WithNonceVerifier(verify func(token, action string) bool) Option {
	return func(a *API) {
		a.nonceVerify = verify
	}
}

// WithClock overrides the wall clock used by the deprecation gate.
// Tests use this to pin removal-date comparisons.
func WithClock(now func() time.Time) Option {
	return func(a *API) {
		if now != nil {
			a.now = now
		}
	}
}
