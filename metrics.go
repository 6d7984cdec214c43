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
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "verso.dev/verso"

// metricsRecorder records dispatch metrics against the globally registered
// OpenTelemetry meter provider. Instrument creation failures degrade to
// no-op instruments; dispatch never fails because of metrics.
type metricsRecorder struct {
	requests   metric.Int64Counter
	duration   metric.Float64Histogram
	deprecated metric.Int64Counter
}

func newMetricsRecorder() *metricsRecorder {
	meter := otel.Meter(meterName)

	requests, err := meter.Int64Counter("api.requests",
		metric.WithDescription("Dispatched API requests by version and status"),
	)
	if err != nil {
		otel.Handle(err)
	}
	duration, err := meter.Float64Histogram("api.request.duration",
		metric.WithDescription("Dispatch pipeline duration"),
		metric.WithUnit("s"),
	)
	if err != nil {
		otel.Handle(err)
	}
	deprecated, err := meter.Int64Counter("api.deprecated.requests",
		metric.WithDescription("Requests served by deprecated versions"),
	)
	if err != nil {
		otel.Handle(err)
	}

	return &metricsRecorder{
		requests:   requests,
		duration:   duration,
		deprecated: deprecated,
	}
}

// recordDispatch records one completed dispatch. No-op unless WithMetrics
// was configured.
func (a *API) recordDispatch(req *Request, meta *RouteMeta, status int, elapsed time.Duration) {
	if a.metrics == nil {
		return
	}

	ctx := requestContext(req)
	attrs := metric.WithAttributes(
		attribute.String("api.version", metaVersion(meta)),
		attribute.Int("http.status_code", status),
	)
	if a.metrics.requests != nil {
		a.metrics.requests.Add(ctx, 1, attrs)
	}
	if a.metrics.duration != nil {
		a.metrics.duration.Record(ctx, elapsed.Seconds(), attrs)
	}
}

// recordDeprecatedUse counts accesses to deprecated versions, including
// requests rejected past the removal date.
func (a *API) recordDeprecatedUse(req *Request, versionID string) {
	if a.metrics == nil || a.metrics.deprecated == nil {
		return
	}

	a.metrics.deprecated.Add(requestContext(req), 1,
		metric.WithAttributes(attribute.String("api.version", versionID)),
	)
}

func requestContext(req *Request) context.Context {
	if req != nil && req.HTTP() != nil {
		return req.HTTP().Context()
	}

	return context.Background()
}

func metaVersion(meta *RouteMeta) string {
	if meta == nil {
		return "unresolved"
	}

	return meta.Version
}
