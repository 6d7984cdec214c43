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

package version

import "time"

// Response headers emitted by the dispatch pipeline for version lifecycle.
const (
	// HeaderVersion carries the version that served the request.
	HeaderVersion = "X-API-Version"

	// HeaderDeprecated is set to "true" on every response served by a
	// deprecated version.
	HeaderDeprecated = "X-API-Deprecated"

	// HeaderDeprecationDate carries the date the version was deprecated.
	HeaderDeprecationDate = "X-API-Deprecation-Date"

	// HeaderRemovalDate carries the date the version will be (or was) removed.
	HeaderRemovalDate = "X-API-Removal-Date"

	// HeaderSuccessor names the version clients should migrate to.
	HeaderSuccessor = "X-API-Successor-Version"
)

// Config holds the lifecycle state of one registered API version.
//
// Dates are ISO-8601 strings ("2006-01-02" or RFC 3339). Keeping them as
// strings is a deliberate caller contract: the registry stores whatever it
// is given and the pipeline parses lazily at dispatch time.
type Config struct {
	Deprecated      bool
	DeprecationDate string
	RemovalDate     string
	Successor       string
}

// Option configures a version's lifecycle at registration time.
type Option func(*Config)

// Deprecated marks the version as deprecated.
func Deprecated() Option {
	return func(c *Config) {
		c.Deprecated = true
	}
}

// DeprecatedOn marks the version as deprecated since the given ISO-8601 date.
func DeprecatedOn(date string) Option {
	return func(c *Config) {
		c.Deprecated = true
		c.DeprecationDate = date
	}
}

// RemovedOn sets the ISO-8601 date after which the version is gone and
// requests to it are rejected outright.
func RemovedOn(date string) Option {
	return func(c *Config) {
		c.RemovalDate = date
	}
}

// Successor names the version clients should migrate to. It is included in
// deprecation headers and in the rejection message once the removal date
// has passed.
func Successor(v string) Option {
	return func(c *Config) {
		c.Successor = v
	}
}

// New builds a Config by applying opts over the zero (not deprecated) state.
func New(opts ...Option) *Config {
	c := &Config{}
	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Clone returns a copy of the config. The registry hands clones to
// introspection callers so the stored record stays private.
func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}
	dup := *c

	return &dup
}

// dateLayouts are tried in order when parsing lifecycle dates.
var dateLayouts = []string{"2006-01-02", time.RFC3339}

// RemovalTime parses the removal date. The second return is false when no
// removal date is set or it does not parse as ISO-8601.
func (c *Config) RemovalTime() (time.Time, bool) {
	return parseDate(c.RemovalDate)
}

func parseDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}

	return time.Time{}, false
}
