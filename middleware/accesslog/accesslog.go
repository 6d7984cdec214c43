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

package accesslog

import (
	"os"

	"github.com/charmbracelet/log"

	"verso.dev/verso"
)

// Option defines functional options for accesslog middleware configuration.
type Option func(*config)

type config struct {
	logger  *log.Logger
	message string
}

func defaultConfig() *config {
	return &config{
		logger:  log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true}),
		message: "api request",
	}
}

// New returns a middleware that logs one structured line per dispatch:
// version, method, path, and the request id when an earlier middleware set
// one. It never short-circuits.
//
//	api.AddGlobalMiddleware(accesslog.New(), verso.WithPriority(2))
func New(opts ...Option) verso.Middleware {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	return func(req *verso.Request, meta *verso.RouteMeta) any {
		fields := []any{"version", meta.Version}
		if r := req.HTTP(); r != nil {
			fields = append(fields, "method", r.Method, "path", r.URL.Path)
		}
		if id := req.Param("request_id"); id != nil {
			fields = append(fields, "request_id", id)
		}
		cfg.logger.Info(cfg.message, fields...)

		return nil
	}
}

// WithLogger sets the destination logger. Default logs to stderr with
// timestamps.
func WithLogger(logger *log.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithMessage sets the log line message. Default "api request".
func WithMessage(msg string) Option {
	return func(c *config) {
		if msg != "" {
			c.message = msg
		}
	}
}
