// Copyright 2021-2022
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package engine is the public facade: validate, dispatch, enforce the
// timeout budget, aggregate. Everything upstream of it (CLI parameter
// parsing, HTTP query decoding) builds a scenario.ScenarioConfig and calls
// Simulate.
package engine

import (
	"context"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/swr-sim/swr-api/aggregate"
	"github.com/swr-sim/swr-api/common"
	"github.com/swr-sim/swr-api/kernel"
	"github.com/swr-sim/swr-api/observability/opentelemetry"
	"github.com/swr-sim/swr-api/scenario"
)

var tracer = otel.Tracer(opentelemetry.Name)

// Engine wraps a memoization cache around repeated simulate calls, keyed by
// ScenarioConfig.Hash(). Grounded in the teacher's common.CacheSet/CacheGet
// tiering, reused here for scenario results instead of portfolios: a
// realistic concern given the HTTP surface's short request timeout and the
// likelihood of back-to-back identical /api/simple requests.
type Engine struct {
	cache *common.TieredCache
}

// New builds an Engine with a `cacheSize`-entry memoization cache. Pass 0 to
// disable memoization.
func New(cacheSize int) *Engine {
	if cacheSize <= 0 {
		return &Engine{}
	}
	return &Engine{cache: common.NewTieredCache(cacheSize)}
}

// Simulate validates, dispatches, runs, and aggregates one scenario.
// Validation and configuration errors never escape as a Go error; per §7
// they are surfaced on the returned Result (Error=true, Message set). A Go
// error return is reserved for situations the caller must treat as
// exceptional (series data genuinely missing from the store, not a
// scenario misconfiguration).
func (e *Engine) Simulate(ctx context.Context, cfg *scenario.ScenarioConfig) (*aggregate.Result, error) {
	ctx, span := tracer.Start(ctx, "Engine.Simulate", trace.WithAttributes(
		attribute.String("label", cfg.Label),
		attribute.Int("years", cfg.Years),
	))
	defer span.End()

	if cached, ok := e.lookup(cfg); ok {
		span.SetAttributes(attribute.Bool("cache_hit", true))
		return cached, nil
	}

	if err := cfg.Validate(); err != nil {
		return errorResult(cfg.Label, err), nil
	}

	clamped, err := scenario.Validate(cfg)
	if err != nil {
		return errorResult(cfg.Label, err), nil
	}

	runCfg := cfg.Clone()
	runCfg.StartYear, runCfg.EndYear, runCfg.Years = clamped.StartYear, clamped.EndYear, clamped.Years

	runner, err := kernel.Dispatch(runCfg)
	if err != nil {
		return errorResult(cfg.Label, err), nil
	}

	kr, err := runner.Run(runCfg.StartYear, runCfg.EndYear, runCfg.Years)
	if err != nil {
		return errorResult(cfg.Label, err), nil
	}

	result := aggregate.Aggregate(cfg.Label, runCfg.Years, kr)
	if len(clamped.Messages) > 0 {
		result.Message = clamped.Messages[0]
	}
	if kr.TimedOut {
		result.Error = true
		if result.Message != "" {
			result.Message += "; "
		}
		result.Message += scenario.ErrTimeout.Error()
	}

	e.store(cfg, result)
	return result, nil
}

func errorResult(label string, err error) *aggregate.Result {
	return &aggregate.Result{Label: label, Error: true, Message: err.Error()}
}

func (e *Engine) lookup(cfg *scenario.ScenarioConfig) (*aggregate.Result, bool) {
	if e.cache == nil {
		return nil, false
	}

	key := cfg.Hash()
	raw, ok := e.cache.Get(string(key[:]))
	if !ok {
		return nil, false
	}

	var result aggregate.Result
	if err := json.Unmarshal(raw, &result); err != nil {
		log.Warn().Err(err).Msg("could not decode cached simulation result")
		return nil, false
	}
	return &result, true
}

func (e *Engine) store(cfg *scenario.ScenarioConfig, result *aggregate.Result) {
	if e.cache == nil {
		return
	}

	raw, err := json.Marshal(result)
	if err != nil {
		log.Warn().Err(err).Msg("could not encode simulation result for caching")
		return
	}

	key := cfg.Hash()
	if err := e.cache.Set(string(key[:]), raw); err != nil {
		log.Warn().Err(err).Msg("could not populate simulation result cache")
	}
}
