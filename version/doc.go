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

// Package version holds the lifecycle configuration for a registered API
// version: whether it is deprecated, when it was deprecated, when it will
// be removed, and which version supersedes it.
//
// Lifecycle options are passed to the registry when a version is created:
//
//	api.RegisterVersion("v1",
//	    version.Deprecated(),
//	    version.RemovedOn("2026-01-01"),
//	    version.Successor("v2"),
//	)
//
// Dates are ISO-8601 strings. They are stored verbatim and never validated
// at registration time; the dispatch pipeline parses the removal date
// lazily when it needs to decide whether a version is past its removal
// date. A date that does not parse never triggers removal.
package version
