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

package handler

import (
	"context"
	"fmt"
	"math"

	"github.com/gofiber/fiber/v2"

	"github.com/swr-sim/swr-api/engine"
	"github.com/swr-sim/swr-api/portfolio"
	"github.com/swr-sim/swr-api/scenario"
	"github.com/swr-sim/swr-api/series"
)

// assumedRealMonthlyReturn is the constant real (after-inflation) monthly
// growth rate the accumulation-phase projection compounds contributions at.
// A real projection in the style of the classic "4% rule" calculators, not
// a historical simulation: the historical engine only ever runs over the
// withdrawal phase, so the accumulation estimate needs its own simple
// closed-form model.
const assumedRealMonthlyReturn = 0.07 / 12

// retirementHorizons are the withdrawal-phase lengths /api/retirement
// sweeps every preset portfolio across.
var retirementHorizons = []int{30, 40, 50}

// retirementResult is the body /api/retirement answers with: the
// accumulation-phase estimate plus, for each preset portfolio and horizon, a
// historical success rate starting from the projected FI number.
type retirementResult struct {
	MonthsToFI  float64                      `json:"months_to_fi"`
	YearsToFI   float64                      `json:"years_to_fi"`
	FINumber    float64                      `json:"fi_number"`
	MonthlySave float64                      `json:"monthly_savings"`
	Portfolios  map[string]map[string]float64 `json:"portfolios"`
	Message     string                        `json:"message,omitempty"`
	Error       bool                          `json:"error"`
}

// Retirement serves GET /api/retirement: accumulation-phase months-to-FI
// plus withdrawal-phase success rates for three preset portfolios across
// 30/40/50-year horizons (§6).
func Retirement(store *series.Store, sim *engine.Engine) fiber.Handler {
	return func(c *fiber.Ctx) error {
		expenses := queryFloat(c, "expenses", 0)
		income := queryFloat(c, "income", 0)
		wr := queryFloat(c, "wr", 4)
		sr := queryFloat(c, "sr", 0)
		nw := queryFloat(c, "nw", 0)

		if expenses <= 0 || wr <= 0 {
			return writeResults(c, retirementResult{Error: true, Message: "expenses and wr must be positive"})
		}

		monthlySave := income * sr
		if monthlySave <= 0 {
			monthlySave = income - expenses
		}

		fiNumber := expenses * 12 / (wr / 100)
		months := monthsToTarget(nw, monthlySave, fiNumber)

		presets, err := series.LoadPresetPortfolios("")
		if err != nil {
			return writeError(c, err.Error())
		}

		rebalance := c.Query("rebalance", "none")

		out := retirementResult{
			MonthsToFI:  months,
			YearsToFI:   months / 12,
			FINumber:    fiNumber,
			MonthlySave: monthlySave,
			Portfolios:  make(map[string]map[string]float64, len(presets)),
		}

		for _, preset := range presets {
			horizonRates := make(map[string]float64, len(retirementHorizons))

			for _, horizon := range retirementHorizons {
				cfg, err := presetScenario(c.Context(), store, preset, horizon, wr, rebalance, fiNumber)
				if err != nil {
					return writeError(c, err.Error())
				}

				result, err := sim.Simulate(c.Context(), cfg)
				if err != nil {
					return writeError(c, err.Error())
				}
				if result.Error {
					return writeResults(c, retirementResult{Error: true, Message: result.Message})
				}

				horizonRates[fmt.Sprintf("%d", horizon)] = result.SuccessRate
			}

			out.Portfolios[preset.Name] = horizonRates
		}

		return writeResults(c, out)
	}
}

// monthsToTarget solves the compound-growth annuity equation for n, the
// number of months a starting balance plus a fixed monthly contribution
// take to reach target at assumedRealMonthlyReturn. Returns +Inf if the
// contribution is non-positive and the starting balance never reaches
// target on its own.
func monthsToTarget(start, contribution, target float64) float64 {
	r := assumedRealMonthlyReturn

	if start >= target {
		return 0
	}

	if contribution <= 0 {
		if r <= 0 {
			return math.Inf(1)
		}
		n := math.Log(target/start) / math.Log(1+r)
		if math.IsNaN(n) || n < 0 {
			return math.Inf(1)
		}
		return n
	}

	num := target*r + contribution
	den := start*r + contribution
	if den <= 0 || num/den <= 0 {
		return math.Inf(1)
	}
	return math.Log(num/den) / math.Log(1+r)
}

// presetScenario builds a fixed-WR historical simulation over preset's
// allocation, starting from the projected FI number, the way /api/simple
// would for a single named portfolio.
func presetScenario(ctx context.Context, store *series.Store, preset series.PresetPortfolio, years int, wr float64, rebalanceStr string, initial float64) (*scenario.ScenarioConfig, error) {
	p, err := portfolio.Parse(preset.Portfolio, false)
	if err != nil {
		return nil, err
	}
	p = portfolio.Normalize(p)

	assetNames := make([]string, len(p))
	for i, a := range p {
		assetNames[i] = a.Asset
	}

	assetSeries, err := store.LoadPortfolioSeries(ctx, assetNames)
	if err != nil {
		return nil, err
	}

	inflationSeries, err := store.LoadInflation(ctx, series.NoInflationSentinel, assetSeries[assetNames[0]])
	if err != nil {
		return nil, err
	}

	rebalancePolicy, err := lookupEnum(rebalanceStr, map[string]int{
		"none": int(scenario.RebalanceNone), "monthly": int(scenario.RebalanceMonthly),
		"threshold": int(scenario.RebalanceThreshold), "yearly": int(scenario.RebalanceYearly),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: rebalance %v", scenario.ErrConfigurationError, err)
	}

	return &scenario.ScenarioConfig{
		Label:              preset.Name,
		Portfolio:          p,
		AssetSeries:        assetSeries,
		InflationSeries:    inflationSeries,
		StartYear:          1871,
		EndYear:            2021,
		Years:              years,
		WithdrawalRate:     wr,
		WithdrawFrequency:  1,
		RebalancePolicy:    scenario.RebalancePolicy(rebalancePolicy),
		RebalanceThreshold: 5,
		Fees:               0.1,
		InitialValue:       initial,
		MinimumFraction:    0,
		TimeoutMsecs:       60_000,
	}, nil
}
