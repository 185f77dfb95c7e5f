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

// WindowOutcome is the raw per-window output (§4.5.8), handed upstream to
// the Aggregator. It is pure data; no printing or formatting happens here
// (§9 "graph/CSV emitters stay downstream of Result").
type WindowOutcome struct {
	StartYear  int
	StartMonth int

	Failed        bool
	FailedAtMonth int // 1-based month within the window; 0 if not failed

	TerminalValue float64
	Flexible      bool

	// YearlySpending holds one entry per calendar year the window reached
	// (the first and last are partial when the window does not start in
	// January), for failed windows too; the aggregator leaves failed windows
	// out of the spending statistics.
	YearlySpending []float64

	// YearlyTerminalValues is a supplemented trace (beyond spec's literal
	// Result fields) recording total portfolio value at each year boundary,
	// not only the final one — used by the fi_planner HTTP endpoint and the
	// times_graph/income_graph CLI commands.
	YearlyTerminalValues []float64

	TotalWithdrawn float64

	LowestEffWR       float64
	LowestEffWRYear   int // calendar year within the window (1-based)
	HighestEffWR      float64
	HighestEffWRYear  int
}

// RunResult aggregates every enumerated window plus the cross-window
// extrema the kernel tracks as it goes (§4.5.4, §4.5.8): worst duration,
// worst/best terminal value, and the global lowest/highest effective
// withdrawal rate, each with their window coordinates.
type RunResult struct {
	Outcomes []WindowOutcome

	WorstDuration      int
	WorstStartingMonth int
	WorstStartingYear  int

	WorstTV      float64
	WorstTVMonth int
	WorstTVYear  int

	BestTV      float64
	BestTVMonth int
	BestTVYear  int

	LowestEffWR       float64
	LowestEffWRMonth  int
	LowestEffWRYear   int
	LowestEffWRRelYear int

	HighestEffWR       float64
	HighestEffWRMonth  int
	HighestEffWRYear   int
	HighestEffWRRelYear int

	TimedOut bool
}
