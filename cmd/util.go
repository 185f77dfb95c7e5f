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

package cmd

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/guptarohit/asciigraph"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/swr-sim/swr-api/aggregate"
	"github.com/swr-sim/swr-api/common"
	"github.com/swr-sim/swr-api/engine"
	"github.com/swr-sim/swr-api/portfolio"
	"github.com/swr-sim/swr-api/scenario"
	"github.com/swr-sim/swr-api/series"
)

// presetAssets are the asset names spec §6 recognizes a dedicated p_<asset>
// CLI flag / HTTP query parameter for.
var presetAssets = []string{
	"us_stocks", "us_bonds", "ex_us_stocks", "ch_stocks", "ch_bonds", "gold", "commodities", "cash",
}

var (
	storeOnce  sync.Once
	dataStore  *series.Store
	engineOnce sync.Once
	sim        *engine.Engine
)

// getStore returns the process-wide series store, built once from the
// --data-dir/--cache-size/--cache-redis flags bound in cmd/root.go.
func getStore() *series.Store {
	storeOnce.Do(func() {
		dataStore = series.NewStore(viper.GetString("data.dir"), viper.GetInt("cache.size"))
	})
	return dataStore
}

// getEngine returns the process-wide simulation engine, memoizing scenario
// results behind the same cache-size flag as the series store.
func getEngine() *engine.Engine {
	engineOnce.Do(func() {
		sim = engine.New(viper.GetInt("cache.size"))
	})
	return sim
}

// addScenarioFlags registers every flag named in spec §6's /api/simple
// parameter list onto cmd, with the defaults from common's constants.
func addScenarioFlags(cmd *cobra.Command) {
	f := cmd.Flags()

	f.String("portfolio", "", `Portfolio spec "asset1:pct1;asset2:pct2;…"; overrides the p-* flags`)
	for _, asset := range presetAssets {
		f.Float64("p-"+strings.ReplaceAll(asset, "_", "-"), 0, fmt.Sprintf("Allocation percentage for %s", asset))
	}

	f.String("inflation", series.NoInflationSentinel, "Inflation series name, or no_inflation")
	f.Int("years", 30, "Length of retirement in years")
	f.Float64("wr", 4, "Withdrawal rate, percent of initial value per year")
	f.Int("start", 1871, "Earliest calendar year to enumerate window starts from")
	f.Int("end", 2021, "Latest calendar year to enumerate window starts through")

	f.String("rebalance", "none", "Rebalance policy: none|monthly|threshold|yearly")
	f.Float64("rebalance-threshold", 5, "Percentage-point drift that triggers a THRESHOLD rebalance")

	f.Float64("initial", common.DefaultInitialValue, "Initial portfolio value")
	f.Float64("fees", common.DefaultFees, "Yearly expense ratio, percent")
	f.Float64("final-threshold", 0, "Fraction of initial (or target) value a window must end at or above to succeed")
	f.Bool("final-inflation", false, "Inflate the final threshold's target value alongside withdrawals")

	f.Bool("social-security", false, "Enable a social security style income offset")
	f.Int("social-delay", 0, "Years before the social security offset applies")
	f.Float64("social-coverage", 0, "Fraction of the withdrawal amount social security covers once active")

	f.Int("withdraw-frequency", 1, "Months between withdrawal events")
	f.Float64("withdraw-minimum", common.DefaultMinimum, "Minimum withdrawal, percent of initial value")
	f.String("withdraw-method", "standard", "Withdrawal method: standard|current|vanguard")
	f.String("withdraw-selection", "allocation", "Asset selection for withdrawals: allocation|bonds|stocks")
	f.Float64("vanguard-max-increase", common.VanguardMaxIncrease/100, "Vanguard method: max year-over-year withdrawal increase, fraction")
	f.Float64("vanguard-max-decrease", common.VanguardMaxDecrease/100, "Vanguard method: max year-over-year withdrawal decrease, fraction")

	f.Float64("initial-cash", 0, "Initial cash buffer")
	f.String("cash-method", "simple", "Cash consumption strategy: simple|smart")

	f.Bool("gp", false, "Enable a glidepath that shifts allocation over time")
	f.Float64("gp-pass", 0, "Glidepath: percentage points shifted from asset 2 to asset 1 per month")
	f.Float64("gp-goal", 0, "Glidepath: allocation percentage asset 1 shifts toward")

	f.String("flexibility", "none", "Flexibility mode: none|portfolio|market")
	f.Float64("flex-t1", 0, "Flexibility: first (milder) drawdown ratio threshold")
	f.Float64("flex-c1", 1, "Flexibility: withdrawal multiplier once below flex-t1")
	f.Float64("flex-t2", 0, "Flexibility: second (severe) drawdown ratio threshold")
	f.Float64("flex-c2", 1, "Flexibility: withdrawal multiplier once below flex-t2")

	f.Int64("timeout-msecs", 60_000, "Wall-clock budget for each simulated scenario, in milliseconds")
	f.Bool("strict", false, "Fail instead of clamping when the requested period falls outside available data")
}

func formatFloat(v float64) string { return strconv.FormatFloat(v, 'f', 4, 64) }
func formatInt(v int) string       { return strconv.Itoa(v) }

// parseFloatList parses a comma-separated list of numbers, the format
// --cash-levels and similar overlay flags accept. Malformed entries are
// skipped rather than aborting the whole command.
func parseFloatList(s string) []float64 {
	var out []float64
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if v, err := strconv.ParseFloat(part, 64); err == nil {
			out = append(out, v)
		}
	}
	return out
}

func lookupEnum(val string, options map[string]int) (int, error) {
	if v, ok := options[strings.ToLower(val)]; ok {
		return v, nil
	}
	return 0, fmt.Errorf("unrecognized value %q", val)
}

// scenarioFromFlags builds an immutable ScenarioConfig from every flag
// addScenarioFlags registered on cmd, loading the referenced series through
// store. label is threaded through to ScenarioConfig.Label for commands that
// build several configs to compare (see cmd/trinity.go and friends).
func scenarioFromFlags(ctx context.Context, cmd *cobra.Command, store *series.Store, label string) (*scenario.ScenarioConfig, error) {
	f := cmd.Flags()

	p, err := portfolioFromFlags(cmd)
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

	inflationName, _ := f.GetString("inflation")
	inflationSeries, err := store.LoadInflation(ctx, inflationName, assetSeries[assetNames[0]])
	if err != nil {
		return nil, err
	}

	rebalanceStr, _ := f.GetString("rebalance")
	rebalancePolicy, err := lookupEnum(rebalanceStr, map[string]int{
		"none": int(scenario.RebalanceNone), "monthly": int(scenario.RebalanceMonthly),
		"threshold": int(scenario.RebalanceThreshold), "yearly": int(scenario.RebalanceYearly),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: --rebalance %v", scenario.ErrConfigurationError, err)
	}

	withdrawMethodStr, _ := f.GetString("withdraw-method")
	withdrawMethod, err := lookupEnum(withdrawMethodStr, map[string]int{
		"standard": int(scenario.WithdrawalStandard), "current": int(scenario.WithdrawalCurrent), "vanguard": int(scenario.WithdrawalVanguard),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: --withdraw-method %v", scenario.ErrConfigurationError, err)
	}

	selectionStr, _ := f.GetString("withdraw-selection")
	selection, err := lookupEnum(selectionStr, map[string]int{
		"allocation": int(scenario.SelectionAllocation), "bonds": int(scenario.SelectionBonds), "stocks": int(scenario.SelectionStocks),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: --withdraw-selection %v", scenario.ErrConfigurationError, err)
	}

	cashMethodStr, _ := f.GetString("cash-method")
	cashMethod, err := lookupEnum(cashMethodStr, map[string]int{"simple": int(scenario.CashSimple), "smart": int(scenario.CashSmart)})
	if err != nil {
		return nil, fmt.Errorf("%w: --cash-method %v", scenario.ErrConfigurationError, err)
	}

	flexibilityStr, _ := f.GetString("flexibility")
	flexibility, err := lookupEnum(flexibilityStr, map[string]int{
		"none": int(scenario.FlexibilityNone), "portfolio": int(scenario.FlexibilityPortfolio), "market": int(scenario.FlexibilityMarket),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: --flexibility %v", scenario.ErrConfigurationError, err)
	}

	years, _ := f.GetInt("years")
	wr, _ := f.GetFloat64("wr")
	start, _ := f.GetInt("start")
	end, _ := f.GetInt("end")
	rebalanceThreshold, _ := f.GetFloat64("rebalance-threshold")
	initial, _ := f.GetFloat64("initial")
	fees, _ := f.GetFloat64("fees")
	finalThreshold, _ := f.GetFloat64("final-threshold")
	finalInflation, _ := f.GetBool("final-inflation")
	socialSecurity, _ := f.GetBool("social-security")
	socialDelay, _ := f.GetInt("social-delay")
	socialCoverage, _ := f.GetFloat64("social-coverage")
	withdrawFrequency, _ := f.GetInt("withdraw-frequency")
	withdrawMinimum, _ := f.GetFloat64("withdraw-minimum")
	vanguardMaxIncrease, _ := f.GetFloat64("vanguard-max-increase")
	vanguardMaxDecrease, _ := f.GetFloat64("vanguard-max-decrease")
	initialCash, _ := f.GetFloat64("initial-cash")
	gp, _ := f.GetBool("gp")
	gpPass, _ := f.GetFloat64("gp-pass")
	gpGoal, _ := f.GetFloat64("gp-goal")
	flexT1, _ := f.GetFloat64("flex-t1")
	flexC1, _ := f.GetFloat64("flex-c1")
	flexT2, _ := f.GetFloat64("flex-t2")
	flexC2, _ := f.GetFloat64("flex-c2")
	timeoutMsecs, _ := f.GetInt64("timeout-msecs")
	strict, _ := f.GetBool("strict")

	return &scenario.ScenarioConfig{
		Label:               label,
		Portfolio:           p,
		AssetSeries:         assetSeries,
		InflationSeries:     inflationSeries,
		StartYear:           start,
		EndYear:             end,
		Years:               years,
		WithdrawalRate:      wr,
		WithdrawalMethod:    scenario.WithdrawalMethod(withdrawMethod),
		WithdrawalSelection: scenario.WithdrawalSelection(selection),
		WithdrawFrequency:   withdrawFrequency,
		RebalancePolicy:     scenario.RebalancePolicy(rebalancePolicy),
		RebalanceThreshold:  rebalanceThreshold,
		Fees:                fees,
		InitialValue:        initial,
		MinimumFraction:     withdrawMinimum,
		FinalThreshold:      finalThreshold,
		FinalInflation:      finalInflation,
		SocialSecurity:      socialSecurity,
		SocialDelay:         socialDelay,
		SocialCoverage:      socialCoverage,
		InitialCash:         initialCash,
		CashMethod:          scenario.CashMethod(cashMethod),
		Glidepath:           gp,
		GPPass:              gpPass,
		GPGoal:              gpGoal,
		Flexibility:         scenario.FlexibilityMode(flexibility),
		FlexT1:              flexT1,
		FlexC1:              flexC1,
		FlexT2:              flexT2,
		FlexC2:              flexC2,
		VanguardMaxIncrease: vanguardMaxIncrease,
		VanguardMaxDecrease: vanguardMaxDecrease,
		TimeoutMsecs:        timeoutMsecs,
		StrictValidation:    strict,
	}, nil
}

// portfolioFromFlags parses --portfolio if given, otherwise builds one from
// the per-asset --p-<asset> flags (ignoring zero allocations).
func portfolioFromFlags(cmd *cobra.Command) (portfolio.Portfolio, error) {
	f := cmd.Flags()

	if spec, _ := f.GetString("portfolio"); spec != "" {
		return portfolio.Parse(spec, false)
	}

	var p portfolio.Portfolio
	for _, asset := range presetAssets {
		pct, _ := f.GetFloat64("p-" + strings.ReplaceAll(asset, "_", "-"))
		if pct == 0 {
			continue
		}
		p = append(p, portfolio.AssetAllocation{Asset: asset, Allocation: pct, WorkingAllocation: pct})
	}
	if len(p) == 0 {
		return nil, fmt.Errorf("%w: specify --portfolio or at least one --p-<asset> flag", portfolio.ErrEmpty)
	}
	return p, nil
}

// resultFields flattens a Result's scalar fields into the label/value pairs
// printResult renders, shared by every single-scenario command (fixed,
// analysis, portfolio_analysis, glidepath, …).
func resultFields(r *aggregate.Result) [][2]string {
	f := func(v float64) string { return strconv.FormatFloat(v, 'f', 4, 64) }
	i := func(v int) string { return strconv.Itoa(v) }

	fields := [][2]string{
		{"successes", i(r.Successes)},
		{"failures", i(r.Failures)},
		{"success_rate", f(r.SuccessRate)},
		{"tv_min", f(r.TVMin)},
		{"tv_avg", f(r.TVAvg)},
		{"tv_median", f(r.TVMedian)},
		{"tv_max", f(r.TVMax)},
		{"tv_std_dev", f(r.TVStdDev)},
		{"worst_duration", i(r.WorstDuration)},
		{"worst_starting_month", i(r.WorstStartingMonth)},
		{"worst_starting_year", i(r.WorstStartingYear)},
		{"lowest_eff_wr", f(r.LowestEffWR)},
		{"lowest_eff_wr_year", i(r.LowestEffWRYear)},
		{"highest_eff_wr", f(r.HighestEffWR)},
		{"highest_eff_wr_year", i(r.HighestEffWRYear)},
		{"worst_tv", f(r.WorstTV)},
		{"worst_tv_year", i(r.WorstTVYear)},
		{"best_tv", f(r.BestTV)},
		{"best_tv_year", i(r.BestTVYear)},
		{"total_withdrawn", f(r.TotalWithdrawn)},
		{"withdrawn_per_year", f(r.WithdrawnPerYear)},
		{"spending_min", f(r.SpendingMin)},
		{"spending_avg", f(r.SpendingAvg)},
		{"spending_median", f(r.SpendingMedian)},
		{"spending_max", f(r.SpendingMax)},
		{"spending_std_dev", f(r.SpendingStdDev)},
		{"years_small_spending", i(r.YearsSmallSpending)},
		{"years_large_spending", i(r.YearsLargeSpending)},
		{"years_volatile_up_spending", i(r.YearsVolatileUpSpending)},
		{"years_volatile_down_spending", i(r.YearsVolatileDownSpending)},
		{"flexible_successes", i(r.FlexibleSuccesses)},
		{"flexible_failures", i(r.FlexibleFailures)},
	}
	if r.Message != "" {
		fields = append(fields, [2]string{"message", r.Message})
	}
	fields = append(fields, [2]string{"error", strconv.FormatBool(r.Error)})
	return fields
}

// fatalOnError prints err and exits 1, the exit-code convention §6
// specifies for usage/validation failures.
func fatalOnError(err error) {
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// printResult renders one Result as a vertical key/value table, the format
// `fixed`/`analysis`/`glidepath` use for a single scenario run.
func printResult(label string, fields [][2]string) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{label, ""})
	table.AppendBulk(fieldsToRows(fields))
	table.Render()
}

func fieldsToRows(fields [][2]string) [][]string {
	rows := make([][]string, len(fields))
	for i, f := range fields {
		rows[i] = []string{f[0], f[1]}
	}
	return rows
}

// printSheet renders a sweep's results as an aligned table, the format every
// `*_sheets` command uses.
func printSheet(headers []string, rows [][]string) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader(headers)
	table.AppendBulk(rows)
	table.Render()
}

// printGraph renders one named series as an ASCII line plot, the format
// every `*_graph` command uses.
func printGraph(caption string, series []float64) {
	graph := asciigraph.Plot(series, asciigraph.Caption(caption), asciigraph.Height(15))
	fmt.Println(graph)
}

// printMultiGraph overlays several named series on one ASCII plot, used by
// the trinity_cash_graphs/selection_graph family that compares a handful of
// configurations at once.
func printMultiGraph(caption string, labels []string, data [][]float64) {
	graph := asciigraph.PlotMany(data, asciigraph.Caption(caption+" ("+strings.Join(labels, ", ")+")"), asciigraph.Height(15))
	fmt.Println(graph)
}
