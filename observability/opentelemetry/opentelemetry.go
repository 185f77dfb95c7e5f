// Copyright 2021-2022
// SPDX-License-Identifier: Apache-2.0
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

// Package opentelemetry names the tracer engine/ spans are recorded
// against. Span wiring stays on the no-op global TracerProvider unless a
// caller registers a real one, so tracing is free to instrument
// unconditionally without ever needing a collector present.
package opentelemetry

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"go.opentelemetry.io/otel/attribute"
	semconv "go.opentelemetry.io/otel/semconv/v1.10.0"
)

// Name identifies the tracer every span in this module is recorded under.
const Name = "github.com/swr-sim/swr-api"

// Setup is a placeholder hook for wiring a real exporter in. Without one
// configured (no otlp.endpoint set), spans recorded against Name are
// silently dropped by otel's default no-op TracerProvider; Shutdown is a
// no-op to match.
func Setup(_ context.Context) (func(context.Context) error, error) {
	return func(context.Context) error { return nil }, nil
}

// SpanAttributesFromFiber captures the request attributes worth attaching
// to a simulation span: caller IP, method, user agent.
func SpanAttributesFromFiber(c *fiber.Ctx) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(string(semconv.HTTPClientIPKey), c.IP()),
		attribute.String(string(semconv.HTTPMethodKey), c.Method()),
		attribute.String(string(semconv.HTTPUserAgentKey), string(c.Context().UserAgent())),
	}
}
