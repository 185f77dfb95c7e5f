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
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/swr-sim/swr-api/common"
	"github.com/swr-sim/swr-api/portfolio"
	"github.com/swr-sim/swr-api/scenario"
	"github.com/swr-sim/swr-api/series"
)

// presetAssets mirrors cmd's list of assets with a dedicated p_<asset>
// query parameter, per §6's "eight p_<asset> fractions".
var presetAssets = []string{
	"us_stocks", "us_bonds", "ex_us_stocks", "ch_stocks", "ch_bonds", "gold", "commodities", "cash",
}

func queryFloat(c *fiber.Ctx, key string, def float64) float64 {
	raw := c.Query(key)
	if raw == "" {
		return def
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return def
	}
	return v
}

func queryInt(c *fiber.Ctx, key string, def int) int {
	raw := c.Query(key)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}

func queryBool(c *fiber.Ctx, key string, def bool) bool {
	raw := c.Query(key)
	if raw == "" {
		return def
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return def
	}
	return v
}

func lookupEnum(val string, options map[string]int) (int, error) {
	if v, ok := options[strings.ToLower(val)]; ok {
		return v, nil
	}
	return 0, fmt.Errorf("unrecognized value %q", val)
}

// portfolioFromQuery prefers the "portfolio" spec string, falling back to
// the per-asset p_<asset> percentage parameters.
func portfolioFromQuery(c *fiber.Ctx) (portfolio.Portfolio, error) {
	if spec := c.Query("portfolio"); spec != "" {
		return portfolio.Parse(spec, false)
	}

	var p portfolio.Portfolio
	for _, asset := range presetAssets {
		pct := queryFloat(c, "p_"+asset, 0)
		if pct == 0 {
			continue
		}
		p = append(p, portfolio.AssetAllocation{Asset: asset, Allocation: pct, WorkingAllocation: pct})
	}
	if len(p) == 0 {
		return nil, fmt.Errorf("%w: specify portfolio or at least one p_<asset> parameter", portfolio.ErrEmpty)
	}
	return p, nil
}

// scenarioFromQuery builds a ScenarioConfig from an /api/simple-shaped
// request, loading series through store. label tags the config
// (/api/simple passes "simple", /api/fi_planner passes "fi_planner").
func scenarioFromQuery(ctx context.Context, c *fiber.Ctx, store *series.Store, label string) (*scenario.ScenarioConfig, error) {
	p, err := portfolioFromQuery(c)
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

	inflationName := c.Query("inflation", series.NoInflationSentinel)
	inflationSeries, err := store.LoadInflation(ctx, inflationName, assetSeries[assetNames[0]])
	if err != nil {
		return nil, err
	}

	rebalancePolicy, err := lookupEnum(c.Query("rebalance", "none"), map[string]int{
		"none": int(scenario.RebalanceNone), "monthly": int(scenario.RebalanceMonthly),
		"threshold": int(scenario.RebalanceThreshold), "yearly": int(scenario.RebalanceYearly),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: rebalance %v", scenario.ErrConfigurationError, err)
	}

	withdrawMethod, err := lookupEnum(c.Query("withdraw_method", "standard"), map[string]int{
		"standard": int(scenario.WithdrawalStandard), "current": int(scenario.WithdrawalCurrent), "vanguard": int(scenario.WithdrawalVanguard),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: withdraw_method %v", scenario.ErrConfigurationError, err)
	}

	selection, err := lookupEnum(c.Query("withdraw_selection", "allocation"), map[string]int{
		"allocation": int(scenario.SelectionAllocation), "bonds": int(scenario.SelectionBonds), "stocks": int(scenario.SelectionStocks),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: withdraw_selection %v", scenario.ErrConfigurationError, err)
	}

	cashMethod, err := lookupEnum(c.Query("cash_method", "simple"), map[string]int{"simple": int(scenario.CashSimple), "smart": int(scenario.CashSmart)})
	if err != nil {
		return nil, fmt.Errorf("%w: cash_method %v", scenario.ErrConfigurationError, err)
	}

	flexibility, err := lookupEnum(c.Query("flexibility", "none"), map[string]int{
		"none": int(scenario.FlexibilityNone), "portfolio": int(scenario.FlexibilityPortfolio), "market": int(scenario.FlexibilityMarket),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: flexibility %v", scenario.ErrConfigurationError, err)
	}

	return &scenario.ScenarioConfig{
		Label:               label,
		Portfolio:           p,
		AssetSeries:         assetSeries,
		InflationSeries:     inflationSeries,
		StartYear:           queryInt(c, "start", 1871),
		EndYear:             queryInt(c, "end", 2021),
		Years:               queryInt(c, "years", 30),
		WithdrawalRate:      queryFloat(c, "wr", 4),
		WithdrawalMethod:    scenario.WithdrawalMethod(withdrawMethod),
		WithdrawalSelection: scenario.WithdrawalSelection(selection),
		WithdrawFrequency:   queryInt(c, "withdraw_frequency", 1),
		RebalancePolicy:     scenario.RebalancePolicy(rebalancePolicy),
		RebalanceThreshold:  queryFloat(c, "rebalance_threshold", 5),
		Fees:                queryFloat(c, "fees", common.DefaultFees),
		InitialValue:        queryFloat(c, "initial", common.DefaultInitialValue),
		MinimumFraction:     queryFloat(c, "withdraw_minimum", common.DefaultMinimum),
		FinalThreshold:      queryFloat(c, "final_threshold", 0),
		FinalInflation:      queryBool(c, "final_inflation", false),
		SocialSecurity:      queryBool(c, "social_security", false),
		SocialDelay:         queryInt(c, "social_delay", 0),
		SocialCoverage:      queryFloat(c, "social_coverage", 0),
		InitialCash:         queryFloat(c, "initial_cash", 0),
		CashMethod:          scenario.CashMethod(cashMethod),
		Glidepath:           queryBool(c, "gp", false),
		GPPass:              queryFloat(c, "gp_pass", 0),
		GPGoal:              queryFloat(c, "gp_goal", 0),
		Flexibility:         scenario.FlexibilityMode(flexibility),
		FlexT1:              queryFloat(c, "flex_t1", 0),
		FlexC1:              queryFloat(c, "flex_c1", 1),
		FlexT2:              queryFloat(c, "flex_t2", 0),
		FlexC2:              queryFloat(c, "flex_c2", 1),
		VanguardMaxIncrease: queryFloat(c, "vanguard_max_increase", common.VanguardMaxIncrease/100),
		VanguardMaxDecrease: queryFloat(c, "vanguard_max_decrease", common.VanguardMaxDecrease/100),
		TimeoutMsecs:        int64(queryInt(c, "timeout_msecs", 60_000)),
		StrictValidation:    queryBool(c, "strict", false),
	}, nil
}
