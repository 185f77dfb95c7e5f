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

package kernel

import "github.com/swr-sim/swr-api/scenario"

// isFailure implements §4.5.6. Before the final month, any non-positive
// total is a failure (depletion). At the final month, the glossary's
// "Final threshold" defines failure as ending *below* the retained
// fraction, so the horizon check is strict: ending exactly at the
// threshold is a pass.
func isFailure(cfg *scenario.ScenarioConfig, ctx *scenario.Context, total float64) bool {
	if ctx.Months < ctx.TotalMonths {
		return total <= 0
	}
	if cfg.FinalInflation {
		return total < cfg.FinalThreshold*ctx.TargetValue
	}
	return total < cfg.FinalThreshold*cfg.InitialValue
}
