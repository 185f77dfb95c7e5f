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

// Package aggregate collapses per-window kernel outcomes into the
// distributional summary an engine caller actually wants. It is pure data
// transformation: no printing, no formatting (§9 "graph/CSV emitters stay
// downstream of Result").
package aggregate

// Result is the complete output of one simulation (§3). It is pure data;
// CLI graph/sheet emitters and HTTP handlers are strictly downstream
// consumers.
type Result struct {
	Label string `json:"label,omitempty"`

	Successes   int     `json:"successes"`
	Failures    int     `json:"failures"`
	SuccessRate float64 `json:"success_rate"`

	TVMin    float64 `json:"tv_min"`
	TVAvg    float64 `json:"tv_avg"`
	TVMedian float64 `json:"tv_median"`
	TVMax    float64 `json:"tv_max"`
	// TVStdDev is supplemented beyond spec's four required TV fields
	// (gonum.org/v1/gonum/stat), a volatility summary alongside them.
	TVStdDev float64 `json:"tv_std_dev"`

	WorstDuration      int `json:"worst_duration"`
	WorstStartingMonth int `json:"worst_starting_month"`
	WorstStartingYear  int `json:"worst_starting_year"`

	LowestEffWR      float64 `json:"lowest_eff_wr"`
	LowestEffWRMonth int     `json:"lowest_eff_wr_month"`
	LowestEffWRYear  int     `json:"lowest_eff_wr_year"`
	LowestEffWRRelYear int   `json:"lowest_eff_wr_rel_year"`

	HighestEffWR      float64 `json:"highest_eff_wr"`
	HighestEffWRMonth int     `json:"highest_eff_wr_month"`
	HighestEffWRYear  int     `json:"highest_eff_wr_year"`
	HighestEffWRRelYear int   `json:"highest_eff_wr_rel_year"`

	WorstTV      float64 `json:"worst_tv"`
	WorstTVMonth int     `json:"worst_tv_month"`
	WorstTVYear  int     `json:"worst_tv_year"`

	BestTV      float64 `json:"best_tv"`
	BestTVMonth int     `json:"best_tv_month"`
	BestTVYear  int     `json:"best_tv_year"`

	TotalWithdrawn   float64 `json:"total_withdrawn"`
	WithdrawnPerYear float64 `json:"withdrawn_per_year"`

	SpendingMin    float64 `json:"spending_min"`
	SpendingAvg    float64 `json:"spending_avg"`
	SpendingMedian float64 `json:"spending_median"`
	SpendingMax    float64 `json:"spending_max"`
	// SpendingStdDev is supplemented beyond spec's four required spending
	// fields, computed the same way as TVStdDev.
	SpendingStdDev float64 `json:"spending_std_dev"`

	YearsSmallSpending      int `json:"years_small_spending"`
	YearsLargeSpending      int `json:"years_large_spending"`
	YearsVolatileUpSpending int `json:"years_volatile_up_spending"`
	YearsVolatileDownSpending int `json:"years_volatile_down_spending"`

	FlexibleSuccesses int `json:"flexible_successes"`
	FlexibleFailures  int `json:"flexible_failures"`

	TerminalValues []float64 `json:"terminal_values,omitempty"`
	Flexible       []bool    `json:"flexible,omitempty"`

	// YearlyTerminalValues traces are a supplemented field, not part of
	// spec's literal Result but carried from the kernel's per-window trace
	// for the fi_planner endpoint and the times_graph/income_graph CLI
	// commands (one slice per window, indexed the same as TerminalValues).
	YearlyTerminalValues [][]float64 `json:"yearly_terminal_values,omitempty"`

	// YearlySpending mirrors YearlyTerminalValues but traces each window's
	// per-year withdrawal amount, the series income_graph plots.
	YearlySpending [][]float64 `json:"yearly_spending,omitempty"`

	Message string `json:"message,omitempty"`
	Error   bool   `json:"error"`
}
