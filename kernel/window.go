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
	"fmt"

	"github.com/swr-sim/swr-api/common"
	"github.com/swr-sim/swr-api/scenario"
)

// buildAssets assembles the per-window asset vector from the config's
// portfolio and series maps, resolving each asset's absolute start index
// once (§9's O(1) index cursor replacing the source's linear iterator
// advance).
func (r *Runner) buildAssets(startYear, startMonth int) (*assetVec, error) {
	cfg := r.cfg
	assets := &assetVec{}

	for _, alloc := range cfg.Portfolio {
		rs, ok := cfg.AssetSeries[alloc.Asset]
		if !ok {
			return nil, fmt.Errorf("%w: no return series loaded for asset %q", scenario.ErrMissingData, alloc.Asset)
		}
		idx0, ok := rs.GetStart(uint(startYear), uint8(startMonth))
		if !ok {
			return nil, fmt.Errorf("%w: asset %q has no data at %d-%02d", scenario.ErrMissingData, alloc.Asset, startYear, startMonth)
		}

		state := assetState{
			name:              alloc.Asset,
			targetAllocation:  alloc.Allocation,
			workingAllocation: alloc.Allocation,
			returns:           rs,
			returnsIdx0:       idx0,
			exchangeIdx0:      -1,
		}

		if ex, ok := cfg.ExchangeSeries[alloc.Asset]; ok {
			exIdx0, ok := ex.GetStart(uint(startYear), uint8(startMonth))
			if !ok {
				return nil, fmt.Errorf("%w: exchange series for %q has no data at %d-%02d", scenario.ErrMissingData, alloc.Asset, startYear, startMonth)
			}
			state.exchange = ex
			state.exchangeIdx0 = exIdx0
		}

		if err := assets.push(state); err != nil {
			return nil, fmt.Errorf("%w: %v", scenario.ErrConfigurationError, err)
		}
	}

	return assets, nil
}

// runWindow executes §4.5.2 (init) through §4.5.8 (per-window output) for
// one enumerated start.
func (r *Runner) runWindow(startYear, startMonth int) (WindowOutcome, error) {
	cfg := r.cfg

	assets, err := r.buildAssets(startYear, startMonth)
	if err != nil {
		return WindowOutcome{}, err
	}

	// §4.5.2 per-window initialization.
	for i := 0; i < assets.len(); i++ {
		a := assets.at(i)
		a.currentValue = cfg.InitialValue * a.workingAllocation / 100
		a.marketValue = a.currentValue
	}

	ctx := scenario.NewContext(cfg, startYear, startMonth)
	ctx.YearStartValue = assets.totalCurrent()

	inflationIdx0, ok := cfg.InflationSeries.GetStart(uint(startYear), uint8(startMonth))
	if !ok {
		return WindowOutcome{}, fmt.Errorf("%w: inflation series has no data at %d-%02d", scenario.ErrMissingData, startYear, startMonth)
	}

	outcome := WindowOutcome{StartYear: startYear, StartMonth: startMonth}

	currentYear := startYear
	currentMonth := startMonth

	for ctx.Months = 1; ctx.Months <= ctx.TotalMonths; ctx.Months++ {
		t := ctx.Months - 1
		failed := r.monthlyStep(assets, ctx, inflationIdx0+t)

		isYearEnd := currentMonth == 12 || ctx.Months == ctx.TotalMonths
		if isYearEnd || failed {
			r.yearlyPostStep(assets, ctx, currentYear, startYear, &outcome)
			ctx.YearStartValue = assets.totalCurrent()
		}

		if failed {
			outcome.Failed = true
			outcome.FailedAtMonth = ctx.Months
			break
		}

		currentMonth++
		if currentMonth > 12 {
			currentMonth = 1
			currentYear++
		}
	}

	if outcome.Failed {
		outcome.TerminalValue = 0
	} else {
		outcome.TerminalValue = assets.totalCurrent()
	}
	return outcome, nil
}

// monthlyStep runs the eight strictly-ordered steps of §4.5.3 for one
// month. Returns whether failure was flagged during this month; once
// flagged, the caller skips remaining per-month work but still runs the
// current year's post-step before terminating.
func (r *Runner) monthlyStep(assets *assetVec, ctx *scenario.Context, absIdx int) bool {
	cfg := r.cfg
	failed := false

	// 1. Apply returns and exchange.
	for i := 0; i < assets.len(); i++ {
		a := assets.at(i)
		rv, _ := a.returns.ValueAt(absIdx)
		a.currentValue *= rv
		a.marketValue *= rv
		if a.exchange != nil {
			xIdx := a.exchangeIdx0 + (absIdx - a.returnsIdx0)
			ev, _ := a.exchange.ValueAt(xIdx)
			a.currentValue *= ev
			a.marketValue *= ev
		}
	}

	// 2. Market-loss failure check.
	if isFailure(cfg, ctx, assets.totalCurrent()) {
		failed = true
	}

	// 3. Glidepath step.
	if !failed && cfg.Glidepath && assets.len() >= 2 {
		a0, a1 := assets.at(0), assets.at(1)
		if a0.workingAllocation != cfg.GPGoal {
			a0.workingAllocation += cfg.GPPass
			a1.workingAllocation -= cfg.GPPass
			if (cfg.GPPass > 0 && a0.workingAllocation > cfg.GPGoal) ||
				(cfg.GPPass < 0 && a0.workingAllocation < cfg.GPGoal) {
				delta := a0.workingAllocation - cfg.GPGoal
				a0.workingAllocation = cfg.GPGoal
				a1.workingAllocation += delta
			}

			if cfg.RebalancePolicy == scenario.RebalanceNone {
				rebalance(assets, common.MonthlyRebalanceCost)
				if isFailure(cfg, ctx, assets.totalCurrent()) {
					failed = true
				}
			}
		}
	}

	// 4. Monthly/Threshold rebalance.
	if !failed {
		switch cfg.RebalancePolicy {
		case scenario.RebalanceMonthly:
			rebalance(assets, common.MonthlyRebalanceCost)
			if isFailure(cfg, ctx, assets.totalCurrent()) {
				failed = true
			}
		case scenario.RebalanceThreshold:
			if thresholdBreached(assets, cfg.RebalanceThreshold) {
				rebalance(assets, common.ThresholdRebalanceCost)
				if isFailure(cfg, ctx, assets.totalCurrent()) {
					failed = true
				}
			}
		}
	}

	// 5. Fees (TER).
	if !failed {
		for i := 0; i < assets.len(); i++ {
			assets.at(i).currentValue *= 1 - cfg.Fees/100/12
		}
		if isFailure(cfg, ctx, assets.totalCurrent()) {
			failed = true
		}
	}

	// 6. Inflate.
	if !failed {
		inflationRate, _ := cfg.InflationSeries.ValueAt(absIdx)
		ctx.Withdrawal *= inflationRate
		ctx.Minimum *= inflationRate
		if cfg.FinalInflation {
			ctx.TargetValue *= inflationRate
		}
	}

	// 7. Withdrawal.
	if !failed && (ctx.Months-1)%cfg.WithdrawFrequency == 0 {
		if r.withdraw(assets, ctx) {
			failed = true
		}
	}

	// 8. Record monthly spending into the current year's bucket happens
	// inside withdraw (ctx.YearSpending), since only withdrawal months
	// move money; non-withdrawal months contribute nothing.

	return failed
}

// rebalance pays costPercent (already in percent units, e.g. 0.005 for
// monthly_rebalance_cost's 0.005%) against every asset, then reallocates to
// working targets.
func rebalance(assets *assetVec, costPercent float64) {
	if costPercent > 0 {
		for i := 0; i < assets.len(); i++ {
			assets.at(i).currentValue *= 1 - costPercent/100
		}
	}

	total := assets.totalCurrent()
	if total <= 0 {
		return
	}
	for i := 0; i < assets.len(); i++ {
		a := assets.at(i)
		a.currentValue = total * a.workingAllocation / 100
	}
}

// thresholdBreached reports whether any asset's current share of the
// portfolio deviates from its working target by at least threshold
// (percentage points).
func thresholdBreached(assets *assetVec, threshold float64) bool {
	total := assets.totalCurrent()
	if total <= 0 {
		return false
	}
	for i := 0; i < assets.len(); i++ {
		a := assets.at(i)
		share := 100 * a.currentValue / total
		if diff := share - a.workingAllocation; diff >= threshold || -diff >= threshold {
			return true
		}
	}
	return false
}

// yearlyPostStep implements §4.5.4: accumulate total withdrawn, perform a
// YEARLY rebalance if selected, and record effective-WR extrema.
func (r *Runner) yearlyPostStep(assets *assetVec, ctx *scenario.Context, calendarYear, startYear int, outcome *WindowOutcome) {
	cfg := r.cfg

	outcome.TotalWithdrawn += ctx.YearWithdrawn

	if cfg.RebalancePolicy == scenario.RebalanceYearly {
		rebalance(assets, common.YearlyRebalanceCost)
	}

	relYear := calendarYear - startYear + 1
	if ctx.YearStartValue > 0 {
		effWR := ctx.YearWithdrawn / ctx.YearStartValue

		if outcome.LowestEffWRYear == 0 || effWR < outcome.LowestEffWR {
			outcome.LowestEffWR = effWR
			outcome.LowestEffWRYear = relYear
		}
		if effWR > outcome.HighestEffWR {
			outcome.HighestEffWR = effWR
			outcome.HighestEffWRYear = relYear
		}
	}

	outcome.YearlyTerminalValues = append(outcome.YearlyTerminalValues, assets.totalCurrent())
	outcome.YearlySpending = append(outcome.YearlySpending, ctx.YearSpending)

	ctx.YearWithdrawn = 0
	ctx.YearSpending = 0
}
