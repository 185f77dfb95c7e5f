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

	"github.com/spf13/cobra"

	"github.com/swr-sim/swr-api/common"
	"github.com/swr-sim/swr-api/portfolio"
	"github.com/swr-sim/swr-api/scenario"
	"github.com/swr-sim/swr-api/series"
)

func init() {
	addScenarioFlags(analysisCmd)
	analysisCmd.Flags().Float64("precision", 0.01, "Failsafe bisection precision, percent")
	rootCmd.AddCommand(analysisCmd)

	portfolioAnalysisCmd.Flags().Int("years", 30, "Length of retirement in years")
	portfolioAnalysisCmd.Flags().Float64("wr", 4, "Withdrawal rate, percent")
	portfolioAnalysisCmd.Flags().String("inflation", series.NoInflationSentinel, "Inflation series name")
	portfolioAnalysisCmd.Flags().Int("start", 1871, "Earliest calendar year")
	portfolioAnalysisCmd.Flags().Int("end", 2021, "Latest calendar year")
	rootCmd.AddCommand(portfolioAnalysisCmd)

	allocationCmd.Flags().String("asset1", "us_stocks", "First asset")
	allocationCmd.Flags().String("asset2", "us_bonds", "Second asset")
	allocationCmd.Flags().Int("years", 30, "Length of retirement in years")
	allocationCmd.Flags().Float64("wr", 4, "Withdrawal rate, percent")
	allocationCmd.Flags().String("inflation", series.NoInflationSentinel, "Inflation series name")
	allocationCmd.Flags().Int("start", 1871, "Earliest calendar year")
	allocationCmd.Flags().Int("end", 2021, "Latest calendar year")
	allocationCmd.Flags().Float64("step", 10, "Allocation percentage-point step")
	rootCmd.AddCommand(allocationCmd)

	addScenarioFlags(termCmd)
	termCmd.Flags().Int("years-start", 10, "First term length, years")
	termCmd.Flags().Int("years-end", 50, "Last term length, years")
	termCmd.Flags().Int("years-step", 5, "Term length step, years")
	rootCmd.AddCommand(termCmd)
}

var analysisCmd = &cobra.Command{
	Use:   "analysis",
	Short: "Run a single scenario and print its result plus failsafe withdrawal rate",
	Run: func(cmd *cobra.Command, args []string) {
		store := getStore()
		sim := getEngine()
		ctx := context.Background()

		precision, _ := cmd.Flags().GetFloat64("precision")

		cfg, err := scenarioFromFlags(ctx, cmd, store, "analysis")
		fatalOnError(err)

		result, err := sim.Simulate(ctx, cfg)
		fatalOnError(err)
		printResult("analysis", resultFields(result))

		wr, _, err := bisectWR(ctx, sim, cfg, 100, precision)
		fatalOnError(err)
		fmt.Printf("failsafe withdrawal rate: %.4f%%\n", wr)
	},
}

// portfolioAnalysisCmd sweeps every preset reference portfolio
// (series.LoadPresetPortfolios) at a fixed wr/years, the single-parameter
// comparison `allocation`/`term` generalize to the WR axis.
var portfolioAnalysisCmd = &cobra.Command{
	Use:   "portfolio_analysis",
	Short: "Compare success_rate across the preset reference portfolios",
	Run: func(cmd *cobra.Command, args []string) {
		store := getStore()
		sim := getEngine()
		ctx := context.Background()

		years, _ := cmd.Flags().GetInt("years")
		wr, _ := cmd.Flags().GetFloat64("wr")
		inflation, _ := cmd.Flags().GetString("inflation")
		start, _ := cmd.Flags().GetInt("start")
		end, _ := cmd.Flags().GetInt("end")

		presets, err := series.LoadPresetPortfolios("")
		fatalOnError(err)

		headers := []string{"portfolio", "success_rate", "tv_avg", "tv_median", "worst_duration"}
		var rows [][]string

		for _, preset := range presets {
			cfg, err := presetAnalysisScenario(ctx, store, preset.Name, preset.Portfolio, years, wr, inflation, start, end)
			fatalOnError(err)

			result, err := sim.Simulate(ctx, cfg)
			fatalOnError(err)

			rows = append(rows, []string{
				preset.Name,
				fmt.Sprintf("%.4f", result.SuccessRate),
				fmt.Sprintf("%.2f", result.TVAvg),
				fmt.Sprintf("%.2f", result.TVMedian),
				fmt.Sprintf("%d", result.WorstDuration),
			})
		}

		printSheet(headers, rows)
	},
}

// allocationCmd sweeps the percentage assigned to asset1 (the remainder
// going to asset2) across [0, 100] by --step, comparing success_rate.
var allocationCmd = &cobra.Command{
	Use:   "allocation",
	Short: "Sweep a two-asset split and compare success_rate",
	Run: func(cmd *cobra.Command, args []string) {
		store := getStore()
		sim := getEngine()
		ctx := context.Background()

		asset1, _ := cmd.Flags().GetString("asset1")
		asset2, _ := cmd.Flags().GetString("asset2")
		years, _ := cmd.Flags().GetInt("years")
		wr, _ := cmd.Flags().GetFloat64("wr")
		inflation, _ := cmd.Flags().GetString("inflation")
		start, _ := cmd.Flags().GetInt("start")
		end, _ := cmd.Flags().GetInt("end")
		step, _ := cmd.Flags().GetFloat64("step")

		points := frange(0, 100, step)
		headers := []string{"pct_" + asset1, "success_rate", "tv_avg", "tv_median", "worst_duration"}
		var rows [][]string

		for _, pct := range points {
			spec := fmt.Sprintf("%s:%g;%s:%g", asset1, pct, asset2, 100-pct)
			cfg, err := presetAnalysisScenario(ctx, store, spec, spec, years, wr, inflation, start, end)
			fatalOnError(err)

			result, err := sim.Simulate(ctx, cfg)
			fatalOnError(err)

			rows = append(rows, []string{
				fmt.Sprintf("%g", pct),
				fmt.Sprintf("%.4f", result.SuccessRate),
				fmt.Sprintf("%.2f", result.TVAvg),
				fmt.Sprintf("%.2f", result.TVMedian),
				fmt.Sprintf("%d", result.WorstDuration),
			})
		}

		printSheet(headers, rows)
	},
}

var termCmd = &cobra.Command{
	Use:   "term",
	Short: "Sweep retirement length in years and compare success_rate",
	Run: func(cmd *cobra.Command, args []string) {
		sim := getEngine()
		ctx := context.Background()

		cfg, err := scenarioFromFlags(ctx, cmd, getStore(), "term")
		fatalOnError(err)

		start, _ := cmd.Flags().GetInt("years-start")
		end, _ := cmd.Flags().GetInt("years-end")
		step, _ := cmd.Flags().GetInt("years-step")
		if step < 1 {
			step = 1
		}

		var points []float64
		for v := start; v <= end; v += step {
			points = append(points, float64(v))
		}

		results, err := runSweep(ctx, sim, cfg, points, func(c *scenario.ScenarioConfig, v float64) { c.Years = int(v) })
		fatalOnError(err)

		warnIfAnyErrored(results)
		sweepSheet("years", points, results)
	},
}

// presetAnalysisScenario builds a fixed-WR historical scenario from a
// portfolio spec string, the shared core of portfolio_analysis and
// allocation.
func presetAnalysisScenario(ctx context.Context, store *series.Store, label, portfolioSpec string, years int, wr float64, inflationName string, start, end int) (*scenario.ScenarioConfig, error) {
	p, err := portfolio.Parse(portfolioSpec, false)
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

	inflationSeries, err := store.LoadInflation(ctx, inflationName, assetSeries[assetNames[0]])
	if err != nil {
		return nil, err
	}

	return &scenario.ScenarioConfig{
		Label:             label,
		Portfolio:         p,
		AssetSeries:       assetSeries,
		InflationSeries:   inflationSeries,
		StartYear:         start,
		EndYear:           end,
		Years:             years,
		WithdrawalRate:    wr,
		WithdrawFrequency: 1,
		Fees:              common.DefaultFees,
		InitialValue:      common.DefaultInitialValue,
		TimeoutMsecs:      60_000,
	}, nil
}
