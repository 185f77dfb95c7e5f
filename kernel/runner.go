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

import (
	"time"
)

// Run enumerates every window per §4.5.1 — each (year, month) start with
// year in [startYear, endYear-years] and month in [1,12] — and runs it to
// completion or first failure. Cooperative cancellation: elapsed wall-clock
// time is checked at window boundaries against cfg.TimeoutMsecs (§4.5.7);
// when exceeded, Run returns the partial RunResult with TimedOut set rather
// than an error, per §7's "partial successes keep a prefix of results".
func (r *Runner) Run(startYear, endYear, years int) (*RunResult, error) {
	cfg := r.cfg
	result := &RunResult{}

	deadline := time.Duration(cfg.TimeoutMsecs) * time.Millisecond
	started := time.Now()

	for y := startYear; y <= endYear-years; y++ {
		for m := 1; m <= 12; m++ {
			outcome, err := r.runWindow(y, m)
			if err != nil {
				return result, err
			}

			result.Outcomes = append(result.Outcomes, outcome)
			updateExtrema(result, &outcome)

			if deadline > 0 && time.Since(started) > deadline {
				result.TimedOut = true
				return result, nil
			}
		}
	}

	return result, nil
}

// updateExtrema folds one window's outcome into the cross-window tracked
// extrema (§4.5.4, §4.5.8).
func updateExtrema(result *RunResult, outcome *WindowOutcome) {
	if outcome.Failed {
		duration := outcome.FailedAtMonth
		if result.WorstDuration == 0 || duration < result.WorstDuration {
			result.WorstDuration = duration
			result.WorstStartingYear = outcome.StartYear
			result.WorstStartingMonth = outcome.StartMonth
		}
	}

	if result.WorstTVYear == 0 || outcome.TerminalValue < result.WorstTV {
		result.WorstTV = outcome.TerminalValue
		result.WorstTVYear = outcome.StartYear
		result.WorstTVMonth = outcome.StartMonth
	}
	if outcome.TerminalValue > result.BestTV {
		result.BestTV = outcome.TerminalValue
		result.BestTVYear = outcome.StartYear
		result.BestTVMonth = outcome.StartMonth
	}

	if outcome.LowestEffWRYear != 0 && (result.LowestEffWRYear == 0 || outcome.LowestEffWR < result.LowestEffWR) {
		result.LowestEffWR = outcome.LowestEffWR
		result.LowestEffWRYear = outcome.StartYear
		result.LowestEffWRMonth = outcome.StartMonth
		result.LowestEffWRRelYear = outcome.LowestEffWRYear
	}
	if outcome.HighestEffWRYear != 0 && outcome.HighestEffWR > result.HighestEffWR {
		result.HighestEffWR = outcome.HighestEffWR
		result.HighestEffWRYear = outcome.StartYear
		result.HighestEffWRMonth = outcome.StartMonth
		result.HighestEffWRRelYear = outcome.HighestEffWRYear
	}
}
