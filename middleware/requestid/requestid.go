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

package requestid

import (
	"crypto/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"

	"verso.dev/verso"
)

// ParamName is the request parameter the middleware stores the id under,
// so handlers and later middleware can read it back.
const ParamName = "request_id"

// Option defines functional options for requestid middleware configuration.
type Option func(*config)

type config struct {
	headerName    string
	generator     func() string
	allowClientID bool
}

func defaultConfig() *config {
	return &config{
		headerName:    "X-Request-ID",
		generator:     generateUUIDv7,
		allowClientID: true,
	}
}

// generateUUIDv7 generates a UUID v7 string for request IDs.
// UUID v7 is time-ordered and lexicographically sortable (RFC 9562).
func generateUUIDv7() string {
	return uuid.Must(uuid.NewV7()).String()
}

// ulidEntropy is a thread-safe entropy source for ULID generation.
// It provides monotonic ordering within the same millisecond.
var (
	ulidEntropy     = ulid.Monotonic(rand.Reader, 0)
	ulidEntropyLock sync.Mutex
)

// generateULID generates a ULID string: time-ordered and a compact
// 26-character representation.
func generateULID() string {
	ulidEntropyLock.Lock()
	defer ulidEntropyLock.Unlock()

	return ulid.MustNew(ulid.Timestamp(time.Now()), ulidEntropy).String()
}

// New returns a middleware that attaches a unique request id to each
// dispatch. The id is stored as the "request_id" parameter and staged as a
// response header, so it rides along with success and error results alike.
//
// By default UUID v7 is used. An id already present in the configured
// request header is reused unless WithAllowClientID(false) is set.
//
//	api.AddGlobalMiddleware(requestid.New(), verso.WithPriority(1))
//
// Using ULID instead:
//
//	api.AddGlobalMiddleware(requestid.New(requestid.WithULID()))
func New(opts ...Option) verso.Middleware {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	return func(req *verso.Request, _ *verso.RouteMeta) any {
		id := ""
		if cfg.allowClientID && req.HTTP() != nil {
			id = req.HTTP().Header.Get(cfg.headerName)
		}
		if id == "" {
			id = cfg.generator()
		}

		req.SetParam(ParamName, id)
		req.SetHeader(cfg.headerName, id)

		return nil
	}
}

// WithHeader sets the header name used for client-supplied ids and for the
// staged response header. Default "X-Request-ID".
func WithHeader(name string) Option {
	return func(c *config) {
		if name != "" {
			c.headerName = name
		}
	}
}

// WithULID switches id generation to ULID.
func WithULID() Option {
	return func(c *config) {
		c.generator = generateULID
	}
}

// WithGenerator sets a custom id generator.
func WithGenerator(generate func() string) Option {
	return func(c *config) {
		if generate != nil {
			c.generator = generate
		}
	}
}

// WithAllowClientID controls whether ids supplied by clients in the
// request header are trusted. Default true.
func WithAllowClientID(allow bool) Option {
	return func(c *config) {
		c.allowClientID = allow
	}
}
