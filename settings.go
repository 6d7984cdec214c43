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

	"github.com/spf13/cast"
)

// Settings keys the API reads at construction time.
const (
	// SettingBaseNamespace holds the base namespace, e.g. "acme/api".
	SettingBaseNamespace = "api_base_namespace"

	// SettingDefaultVersion holds the default version id, e.g. "v1".
	SettingDefaultVersion = "api_default_version"
)

// Settings is the boundary to the host's key/value settings store. The API
// only ever reads from it; persistence and admin surfaces belong to the
// host. Values come back untyped and are sanitized through the typed
// accessors below.
type Settings interface {
	// Get returns the raw value for key and whether the key exists.
	Get(key string) (any, bool)
}

// MapSettings is an in-memory Settings backed by a plain map. Useful for
// tests and for hosts that load settings once at boot.
type MapSettings map[string]any

// Get implements Settings.
func (m MapSettings) Get(key string) (any, bool) {
	v, ok := m[key]

	return v, ok
}

// StringSetting reads key as a string, returning fallback when the key is
// missing or the value cannot be represented as a string.
func StringSetting(s Settings, key, fallback string) string {
	v, ok := s.Get(key)
	if !ok {
		return fallback
	}
	out, err := cast.ToStringE(v)
	if err != nil || out == "" {
		return fallback
	}

	return out
}

// IntSetting reads key as an int, returning fallback when the key is
// missing or not numeric.
func IntSetting(s Settings, key string, fallback int) int {
	v, ok := s.Get(key)
	if !ok {
		return fallback
	}
	out, err := cast.ToIntE(v)
	if err != nil {
		return fallback
	}

	return out
}

// BoolSetting reads key as a bool, returning fallback when the key is
// missing or not boolean-ish ("1", "true", "on" all count).
func BoolSetting(s Settings, key string, fallback bool) bool {
	v, ok := s.Get(key)
	if !ok {
		return fallback
	}
	out, err := cast.ToBoolE(v)
	if err != nil {
		return fallback
	}

	return out
}

// DurationSetting reads key as a duration, returning fallback when the key
// is missing or unparsable.
func DurationSetting(s Settings, key string, fallback time.Duration) time.Duration {
	v, ok := s.Get(key)
	if !ok {
		return fallback
	}
	out, err := cast.ToDurationE(v)
	if err != nil {
		return fallback
	}

	return out
}
