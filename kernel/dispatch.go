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

// Package kernel implements the per-window time-stepping state machine:
// enumeration of every retirement window in a historical range, the
// strictly-ordered monthly step, yearly post-processing, and failure
// detection.
package kernel

import (
	"fmt"

	"github.com/swr-sim/swr-api/scenario"
)

// Runner executes every window for one ScenarioConfig. Dispatch is kept as
// its own function, distinct from Run, so the "select a specialization by
// asset count" responsibility of §4.4 remains visible in the code even
// though the specialization itself is now the single generic assetVec
// implementation rather than five hand-written code paths.
type Runner struct {
	cfg *scenario.ScenarioConfig
}

// Dispatch validates that the portfolio has between 1 and 5 assets
// (inclusive) and returns a Runner for it. More than 5 assets fails
// ConfigurationError, exactly as the source's template switch would have
// had no specialization to dispatch to.
func Dispatch(cfg *scenario.ScenarioConfig) (*Runner, error) {
	n := len(cfg.Portfolio)
	if n < 1 {
		return nil, fmt.Errorf("%w: portfolio has no assets", scenario.ErrConfigurationError)
	}
	if n > 5 {
		return nil, fmt.Errorf("%w: %d assets exceeds the dispatcher's specialized arities (max 5)", scenario.ErrConfigurationError, n)
	}
	return &Runner{cfg: cfg}, nil
}
