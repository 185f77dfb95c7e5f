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

package cmd

import (
	"context"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/swr-sim/swr-api/aggregate"
	"github.com/swr-sim/swr-api/scenario"
)

func init() {
	addScenarioFlags(incomeGraphCmd)
	rootCmd.AddCommand(incomeGraphCmd)

	addScenarioFlags(flexibilityGraphCmd)
	flexibilityGraphCmd.Flags().Float64("t1-start", 0.5, "First flex_t1 drawdown ratio in the sweep")
	flexibilityGraphCmd.Flags().Float64("t1-end", 1.0, "Last flex_t1 drawdown ratio in the sweep")
	flexibilityGraphCmd.Flags().Float64("t1-step", 0.05, "flex_t1 step")
	rootCmd.AddCommand(flexibilityGraphCmd)

	addScenarioFlags(flexibilityAutoGraphCmd)
	flexibilityAutoGraphCmd.Flags().Float64("t1-start", 0.5, "First flex_t1 drawdown ratio in the sweep")
	flexibilityAutoGraphCmd.Flags().Float64("t1-end", 1.0, "Last flex_t1 drawdown ratio in the sweep")
	flexibilityAutoGraphCmd.Flags().Float64("t1-step", 0.05, "flex_t1 step")
	rootCmd.AddCommand(flexibilityAutoGraphCmd)

	addScenarioFlags(selectionGraphCmd)
	selectionGraphCmd.Flags().Float64("wr-start", 2, "First withdrawal rate in the sweep")
	selectionGraphCmd.Flags().Float64("wr-end", 6, "Last withdrawal rate in the sweep")
	selectionGraphCmd.Flags().Float64("wr-step", 0.25, "Withdrawal rate step")
	rootCmd.AddCommand(selectionGraphCmd)

	addScenarioFlags(timesGraphCmd)
	rootCmd.AddCommand(timesGraphCmd)
}

// incomeGraphCmd plots the median real withdrawal taken across every window,
// year by year, the spending-over-time counterpart to times_graph's
// terminal-value-by-start-year view.
var incomeGraphCmd = &cobra.Command{
	Use:   "income_graph",
	Short: "Plot median yearly spending across every simulated window",
	Run: func(cmd *cobra.Command, args []string) {
		sim := getEngine()
		ctx := context.Background()

		cfg, err := scenarioFromFlags(ctx, cmd, getStore(), "income_graph")
		fatalOnError(err)

		result, err := sim.Simulate(ctx, cfg)
		fatalOnError(err)
		if result.Error {
			fatalOnError(fmt.Errorf("%s", result.Message))
		}

		printGraph("median yearly spending", medianPerYear(result.YearlySpending))
	},
}

// medianPerYear computes the median across every window's trace at each
// year index, ignoring windows that ended before that year.
func medianPerYear(windows [][]float64) []float64 {
	maxYears := 0
	for _, w := range windows {
		if len(w) > maxYears {
			maxYears = len(w)
		}
	}

	out := make([]float64, maxYears)
	for year := 0; year < maxYears; year++ {
		var values []float64
		for _, w := range windows {
			if year < len(w) {
				values = append(values, w[year])
			}
		}
		if len(values) == 0 {
			continue
		}
		sort.Float64s(values)
		out[year] = values[len(values)/2]
	}
	return out
}

var flexibilityGraphCmd = &cobra.Command{
	Use:   "flexibility_graph",
	Short: "Sweep the PORTFOLIO flexibility drawdown threshold and plot success_rate",
	Run: func(cmd *cobra.Command, args []string) {
		runFlexibilitySweep(cmd, scenario.FlexibilityPortfolio, "flexibility_graph")
	},
}

// flexibilityAutoGraphCmd sweeps the same threshold under MARKET
// flexibility, which reacts to the untouched market track's drawdown
// instead of the portfolio's own, the "auto" variant spec §6 names
// alongside flexibility_graph.
var flexibilityAutoGraphCmd = &cobra.Command{
	Use:   "flexibility_auto_graph",
	Short: "Sweep the MARKET flexibility drawdown threshold and plot success_rate",
	Run: func(cmd *cobra.Command, args []string) {
		runFlexibilitySweep(cmd, scenario.FlexibilityMarket, "flexibility_auto_graph")
	},
}

func runFlexibilitySweep(cmd *cobra.Command, mode scenario.FlexibilityMode, label string) {
	sim := getEngine()
	ctx := context.Background()

	cfg, err := scenarioFromFlags(ctx, cmd, getStore(), label)
	fatalOnError(err)
	cfg.Flexibility = mode
	if cfg.FlexC1 == 1 {
		cfg.FlexC1 = 0.9
	}

	start, _ := cmd.Flags().GetFloat64("t1-start")
	end, _ := cmd.Flags().GetFloat64("t1-end")
	step, _ := cmd.Flags().GetFloat64("t1-step")
	points := frange(start, end, step)

	results, err := runSweep(ctx, sim, cfg, points, func(c *scenario.ScenarioConfig, v float64) { c.FlexT1 = v })
	fatalOnError(err)

	warnIfAnyErrored(results)
	sweepGraph("success_rate by flex_t1", results, func(r *aggregate.Result) float64 { return r.SuccessRate })
}

// selectionGraphCmd overlays success_rate-by-wr for every withdrawal
// asset-selection policy (allocation/bonds/stocks), comparing them the way
// trinity_cash_graphs compares cash-buffer levels.
var selectionGraphCmd = &cobra.Command{
	Use:   "selection_graph",
	Short: "Overlay success_rate-by-wr for every withdrawal-selection policy",
	Run: func(cmd *cobra.Command, args []string) {
		sim := getEngine()
		ctx := context.Background()

		base, err := scenarioFromFlags(ctx, cmd, getStore(), "selection_graph")
		fatalOnError(err)

		start, _ := cmd.Flags().GetFloat64("wr-start")
		end, _ := cmd.Flags().GetFloat64("wr-end")
		step, _ := cmd.Flags().GetFloat64("wr-step")
		points := frange(start, end, step)

		policies := []struct {
			label     string
			selection scenario.WithdrawalSelection
		}{
			{"allocation", scenario.SelectionAllocation},
			{"bonds", scenario.SelectionBonds},
			{"stocks", scenario.SelectionStocks},
		}

		labels := make([]string, 0, len(policies))
		data := make([][]float64, 0, len(policies))

		for _, pol := range policies {
			cfg := base.Clone()
			cfg.WithdrawalSelection = pol.selection

			results, err := runSweep(ctx, sim, cfg, points, func(c *scenario.ScenarioConfig, v float64) { c.WithdrawalRate = v })
			if err != nil {
				fmt.Println("warning: skipping selection", pol.label, err)
				continue
			}

			successRates := make([]float64, 0, len(results))
			for _, r := range results {
				if r != nil {
					successRates = append(successRates, r.SuccessRate)
				}
			}

			labels = append(labels, pol.label)
			data = append(data, successRates)
		}

		printMultiGraph("success_rate by wr", labels, data)
	},
}

// timesGraphCmd plots terminal value against each window's starting year,
// the "outcomes over calendar time" view spec §6 names.
var timesGraphCmd = &cobra.Command{
	Use:   "times_graph",
	Short: "Plot terminal value by historical starting year",
	Run: func(cmd *cobra.Command, args []string) {
		sim := getEngine()
		ctx := context.Background()

		cfg, err := scenarioFromFlags(ctx, cmd, getStore(), "times_graph")
		fatalOnError(err)

		result, err := sim.Simulate(ctx, cfg)
		fatalOnError(err)
		if result.Error {
			fatalOnError(fmt.Errorf("%s", result.Message))
		}

		printGraph(fmt.Sprintf("terminal value by starting year (%d-%d)", cfg.StartYear, cfg.EndYear), result.TerminalValues)
	},
}
