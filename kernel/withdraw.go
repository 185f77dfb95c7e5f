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
	"math"

	"github.com/swr-sim/swr-api/scenario"
)

// withdraw implements step 7 of §4.5.3: only invoked on months satisfying
// (months-1) mod withdraw_frequency == 0. Returns whether the
// post-withdrawal failure check flagged failure.
func (r *Runner) withdraw(assets *assetVec, ctx *scenario.Context) bool {
	cfg := r.cfg

	periods := cfg.WithdrawFrequency
	if remaining := ctx.TotalMonths - (ctx.Months - 1); remaining < periods {
		periods = remaining
	}

	total := assets.totalCurrent()
	amount := grossAmount(cfg, ctx, assets, total, periods)

	if cfg.SocialSecurity && ctx.Months/12 >= cfg.SocialDelay {
		amount -= cfg.SocialCoverage * amount
	}

	if amount <= 0 {
		return false
	}

	drawFromCash(cfg, ctx, &amount)

	ctx.WithdrawIndex = selectionIndex(cfg.WithdrawalSelection)
	debit(assets, cfg.WithdrawalSelection, ctx.WithdrawIndex, amount)

	ctx.LastWithdrawal = amount
	ctx.YearWithdrawn += amount
	ctx.YearSpending += amount

	return isFailure(cfg, ctx, assets.totalCurrent())
}

// grossAmount computes the pre-social-security withdrawal amount for one of
// the three withdrawal methods.
func grossAmount(cfg *scenario.ScenarioConfig, ctx *scenario.Context, assets *assetVec, total float64, periods int) float64 {
	switch cfg.WithdrawalMethod {
	case scenario.WithdrawalCurrent:
		amount := total * cfg.WithdrawalRate / 100 * float64(periods) / 12
		floor := ctx.Minimum * float64(periods) / 12
		if amount < floor {
			amount = floor
		}
		return amount

	case scenario.WithdrawalVanguard:
		if ctx.Months == 1 {
			ctx.VanguardThisYearWithdrawal = total * cfg.WithdrawalRate / 100
			ctx.VanguardPrevYearWithdrawal = ctx.VanguardThisYearWithdrawal
		} else if (ctx.Months-1)%12 == 0 {
			proposed := total * cfg.WithdrawalRate / 100
			lo := ctx.VanguardPrevYearWithdrawal * (1 - cfg.VanguardMaxDecrease)
			hi := ctx.VanguardPrevYearWithdrawal * (1 + cfg.VanguardMaxIncrease)
			switch {
			case proposed < lo:
				proposed = lo
			case proposed > hi:
				proposed = hi
			}
			ctx.VanguardThisYearWithdrawal = proposed
			ctx.VanguardPrevYearWithdrawal = proposed
		}

		amount := ctx.VanguardThisYearWithdrawal * float64(periods) / 12
		floor := ctx.Minimum * float64(periods) / 12
		if amount < floor {
			amount = floor
		}
		return amount

	default: // WithdrawalStandard
		amount := ctx.Withdrawal * float64(periods) / 12
		amount, flexible := applyFlexibility(cfg, ctx, assets, amount)
		if flexible {
			ctx.FlexibleFlag = true
		}
		return amount
	}
}

// drawFromCash implements the cash-buffer rule: simple mode always draws
// from cash first; smart mode only does so when the effective monthly
// withdrawal rate is already at or above the nominal monthly rate.
func drawFromCash(cfg *scenario.ScenarioConfig, ctx *scenario.Context, amount *float64) {
	if ctx.Cash <= 0 {
		return
	}

	useCash := cfg.CashMethod == scenario.CashSimple
	if !useCash && ctx.YearStartValue > 0 {
		effMonthlyWR := *amount / ctx.YearStartValue * 100
		useCash = effMonthlyWR >= cfg.WithdrawalRate/12
	}
	if !useCash {
		return
	}

	draw := math.Min(*amount, ctx.Cash)
	ctx.Cash -= draw
	*amount -= draw
}

// selectionIndex maps a WithdrawalSelection to the asset index it draws
// from first (index 0 is conventionally the equity/stocks asset, index 1
// the bond asset).
func selectionIndex(sel scenario.WithdrawalSelection) int {
	switch sel {
	case scenario.SelectionBonds:
		return 1
	case scenario.SelectionStocks:
		return 0
	default:
		return -1
	}
}

// debit removes amount from the portfolio per the configured selection
// policy: ALLOCATION debits every asset proportionally to its current
// share; BONDS/STOCKS debits entirely from the designated asset, and any
// shortfall overflows to the other asset (the only defined case: a
// two-asset portfolio — see §9 open question).
func debit(assets *assetVec, sel scenario.WithdrawalSelection, index int, amount float64) {
	if sel == scenario.SelectionAllocation || assets.len() < 2 {
		debitProportional(assets, amount)
		return
	}

	primary := assets.at(index)
	draw := math.Min(amount, primary.currentValue)
	primary.currentValue -= draw
	shortfall := amount - draw

	if shortfall > 0 {
		other := assets.at(1 - index)
		other.currentValue -= shortfall
	}
}

func debitProportional(assets *assetVec, amount float64) {
	total := assets.totalCurrent()
	if total <= 0 {
		return
	}
	for i := 0; i < assets.len(); i++ {
		a := assets.at(i)
		share := a.currentValue / total
		a.currentValue -= amount * share
	}
}
