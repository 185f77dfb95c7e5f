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

package scenario

// Context is the per-window scratch state (§3). The kernel creates one
// fresh per enumerated window and never shares it across goroutines or
// reuses it between windows.
type Context struct {
	Months      int // 1-based, current month within the window
	TotalMonths int

	Withdrawal float64 // real withdrawal amount, inflates monthly
	Minimum    float64 // floor, inflates monthly

	TargetValue float64 // capital-preservation target, inflates if FinalInflation

	Cash float64

	YearStartValue float64
	YearWithdrawn  float64
	YearSpending   float64

	LastWithdrawal float64

	VanguardPrevYearWithdrawal float64
	VanguardThisYearWithdrawal float64

	HistoricalHigh float64 // for MARKET flexibility

	FlexibleFlag bool

	WithdrawIndex int // for BONDS/STOCKS selection overflow direction

	StartYear  int
	StartMonth int
}

// NewContext builds a Context for a window of the given length, seeded with
// the config's initial withdrawal/minimum/target values.
func NewContext(cfg *ScenarioConfig, startYear, startMonth int) *Context {
	totalMonths := cfg.Years * 12
	return &Context{
		Months:      1,
		TotalMonths: totalMonths,
		Withdrawal:  cfg.InitialValue * cfg.WithdrawalRate / 100,
		Minimum:     cfg.InitialValue * cfg.MinimumFraction / 100,
		TargetValue: cfg.InitialValue,
		Cash:        cfg.InitialCash,
		StartYear:   startYear,
		StartMonth:  startMonth,
	}
}
