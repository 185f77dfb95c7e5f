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

// trinity.go implements the family of commands performing a classic
// "Trinity study" style withdrawal-rate sweep at a fixed term length, each
// differing only in which Result field it tabulates or plots.
package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/swr-sim/swr-api/aggregate"
	"github.com/swr-sim/swr-api/series"

	"github.com/swr-sim/swr-api/scenario"
)

// trinityMetric names one Result field a trinity_* command tabulates or
// plots, and the field accessor used for both its sheet and graph variant.
type trinityMetric struct {
	name  string
	field func(*aggregate.Result) float64
}

var trinityMetrics = map[string]trinityMetric{
	"success":  {"success_rate", func(r *aggregate.Result) float64 { return r.SuccessRate }},
	"duration": {"worst_duration", func(r *aggregate.Result) float64 { return float64(r.WorstDuration) }},
	"tv":       {"tv_median", func(r *aggregate.Result) float64 { return r.TVMedian }},
	"spending": {"spending_median", func(r *aggregate.Result) float64 { return r.SpendingMedian }},
}

func init() {
	for key, metric := range trinityMetrics {
		key, metric := key, metric

		sheetCmd := &cobra.Command{
			Use:   "trinity_" + key + "_sheets",
			Short: "Sweep withdrawal rate and tabulate " + metric.name,
			Run: func(cmd *cobra.Command, args []string) { runTrinitySheet(cmd, metric) },
		}
		addScenarioFlags(sheetCmd)
		sheetCmd.Flags().Float64("wr-start", 2, "First withdrawal rate in the sweep")
		sheetCmd.Flags().Float64("wr-end", 6, "Last withdrawal rate in the sweep")
		sheetCmd.Flags().Float64("wr-step", 0.25, "Withdrawal rate step")
		rootCmd.AddCommand(sheetCmd)

		graphCmd := &cobra.Command{
			Use:   "trinity_" + key + "_graph",
			Short: "Sweep withdrawal rate and plot " + metric.name,
			Run: func(cmd *cobra.Command, args []string) { runTrinityGraph(cmd, metric) },
		}
		addScenarioFlags(graphCmd)
		graphCmd.Flags().Float64("wr-start", 2, "First withdrawal rate in the sweep")
		graphCmd.Flags().Float64("wr-end", 6, "Last withdrawal rate in the sweep")
		graphCmd.Flags().Float64("wr-step", 0.25, "Withdrawal rate step")
		rootCmd.AddCommand(graphCmd)
	}

	addScenarioFlags(trinityLowYieldSheetsCmd)
	trinityLowYieldSheetsCmd.Flags().Float64("wr-start", 2, "First withdrawal rate in the sweep")
	trinityLowYieldSheetsCmd.Flags().Float64("wr-end", 6, "Last withdrawal rate in the sweep")
	trinityLowYieldSheetsCmd.Flags().Float64("wr-step", 0.25, "Withdrawal rate step")
	trinityLowYieldSheetsCmd.Flags().Float64("haircut", 0.2, "Fraction shaved off every monthly return above 1.0")
	rootCmd.AddCommand(trinityLowYieldSheetsCmd)

	addScenarioFlags(trinityLowYieldGraphCmd)
	trinityLowYieldGraphCmd.Flags().Float64("wr-start", 2, "First withdrawal rate in the sweep")
	trinityLowYieldGraphCmd.Flags().Float64("wr-end", 6, "Last withdrawal rate in the sweep")
	trinityLowYieldGraphCmd.Flags().Float64("wr-step", 0.25, "Withdrawal rate step")
	trinityLowYieldGraphCmd.Flags().Float64("haircut", 0.2, "Fraction shaved off every monthly return above 1.0")
	rootCmd.AddCommand(trinityLowYieldGraphCmd)

	addScenarioFlags(trinityCashCmd)
	trinityCashCmd.Flags().Float64("cash-start", 0, "First initial-cash buffer in the sweep")
	trinityCashCmd.Flags().Float64("cash-end", 400, "Last initial-cash buffer in the sweep")
	trinityCashCmd.Flags().Float64("cash-step", 50, "Initial-cash buffer step")
	rootCmd.AddCommand(trinityCashCmd)

	addScenarioFlags(trinityCashGraphCmd)
	trinityCashGraphCmd.Flags().Float64("cash-start", 0, "First initial-cash buffer in the sweep")
	trinityCashGraphCmd.Flags().Float64("cash-end", 400, "Last initial-cash buffer in the sweep")
	trinityCashGraphCmd.Flags().Float64("cash-step", 50, "Initial-cash buffer step")
	rootCmd.AddCommand(trinityCashGraphCmd)

	addScenarioFlags(trinityCashGraphsCmd)
	trinityCashGraphsCmd.Flags().String("cash-levels", "0,100,200,300", "Comma-separated initial-cash levels to overlay")
	trinityCashGraphsCmd.Flags().Float64("wr-start", 2, "First withdrawal rate in the sweep")
	trinityCashGraphsCmd.Flags().Float64("wr-end", 6, "Last withdrawal rate in the sweep")
	trinityCashGraphsCmd.Flags().Float64("wr-step", 0.25, "Withdrawal rate step")
	rootCmd.AddCommand(trinityCashGraphsCmd)
}

func wrSweepPoints(cmd *cobra.Command) []float64 {
	start, _ := cmd.Flags().GetFloat64("wr-start")
	end, _ := cmd.Flags().GetFloat64("wr-end")
	step, _ := cmd.Flags().GetFloat64("wr-step")
	return frange(start, end, step)
}

func runTrinitySheet(cmd *cobra.Command, metric trinityMetric) {
	sim := getEngine()
	ctx := context.Background()

	cfg, err := scenarioFromFlags(ctx, cmd, getStore(), cmd.Use)
	fatalOnError(err)

	points := wrSweepPoints(cmd)
	results, err := runSweep(ctx, sim, cfg, points, func(c *scenario.ScenarioConfig, v float64) { c.WithdrawalRate = v })
	fatalOnError(err)

	warnIfAnyErrored(results)
	headers := []string{"wr", metric.name}
	var rows [][]string
	for i, r := range results {
		if r == nil {
			continue
		}
		rows = append(rows, []string{fmt.Sprintf("%g", points[i]), fmt.Sprintf("%.4f", metric.field(r))})
	}
	printSheet(headers, rows)
}

func runTrinityGraph(cmd *cobra.Command, metric trinityMetric) {
	sim := getEngine()
	ctx := context.Background()

	cfg, err := scenarioFromFlags(ctx, cmd, getStore(), cmd.Use)
	fatalOnError(err)

	points := wrSweepPoints(cmd)
	results, err := runSweep(ctx, sim, cfg, points, func(c *scenario.ScenarioConfig, v float64) { c.WithdrawalRate = v })
	fatalOnError(err)

	warnIfAnyErrored(results)
	sweepGraph(metric.name+" by wr", results, metric.field)
}

// haircutSeries scales every return value above 1.0 down by fraction,
// simulating a sustained low-yield regime for the trinity_low_yield family.
func haircutSeries(in map[string]*series.DataSeries, fraction float64) map[string]*series.DataSeries {
	out := make(map[string]*series.DataSeries, len(in))
	for name, s := range in {
		clone := s.Clone()
		for i, p := range clone.Points {
			if p.Value > 1.0 {
				clone.Points[i].Value = 1.0 + (p.Value-1.0)*(1-fraction)
			}
		}
		out[name] = clone
	}
	return out
}

var trinityLowYieldSheetsCmd = &cobra.Command{
	Use:   "trinity_low_yield_sheets",
	Short: "Sweep withdrawal rate under a haircut-reduced return series and tabulate success_rate",
	Run: func(cmd *cobra.Command, args []string) {
		sim := getEngine()
		ctx := context.Background()

		haircut, _ := cmd.Flags().GetFloat64("haircut")

		cfg, err := scenarioFromFlags(ctx, cmd, getStore(), "trinity_low_yield_sheets")
		fatalOnError(err)
		cfg.AssetSeries = haircutSeries(cfg.AssetSeries, haircut)

		points := wrSweepPoints(cmd)
		results, err := runSweep(ctx, sim, cfg, points, func(c *scenario.ScenarioConfig, v float64) { c.WithdrawalRate = v })
		fatalOnError(err)

		warnIfAnyErrored(results)
		sweepSheet("wr", points, results)
	},
}

var trinityLowYieldGraphCmd = &cobra.Command{
	Use:   "trinity_low_yield_graph",
	Short: "Sweep withdrawal rate under a haircut-reduced return series and plot success_rate",
	Run: func(cmd *cobra.Command, args []string) {
		sim := getEngine()
		ctx := context.Background()

		haircut, _ := cmd.Flags().GetFloat64("haircut")

		cfg, err := scenarioFromFlags(ctx, cmd, getStore(), "trinity_low_yield_graph")
		fatalOnError(err)
		cfg.AssetSeries = haircutSeries(cfg.AssetSeries, haircut)

		points := wrSweepPoints(cmd)
		results, err := runSweep(ctx, sim, cfg, points, func(c *scenario.ScenarioConfig, v float64) { c.WithdrawalRate = v })
		fatalOnError(err)

		warnIfAnyErrored(results)
		sweepGraph("success_rate by wr (low yield)", results, func(r *aggregate.Result) float64 { return r.SuccessRate })
	},
}

var trinityCashCmd = &cobra.Command{
	Use:   "trinity_cash",
	Short: "Sweep the initial cash buffer and tabulate success_rate",
	Run: func(cmd *cobra.Command, args []string) {
		sim := getEngine()
		ctx := context.Background()

		cfg, err := scenarioFromFlags(ctx, cmd, getStore(), "trinity_cash")
		fatalOnError(err)

		start, _ := cmd.Flags().GetFloat64("cash-start")
		end, _ := cmd.Flags().GetFloat64("cash-end")
		step, _ := cmd.Flags().GetFloat64("cash-step")
		points := frange(start, end, step)

		results, err := runSweep(ctx, sim, cfg, points, func(c *scenario.ScenarioConfig, v float64) { c.InitialCash = v })
		fatalOnError(err)

		warnIfAnyErrored(results)
		sweepSheet("initial_cash", points, results)
	},
}

var trinityCashGraphCmd = &cobra.Command{
	Use:   "trinity_cash_graph",
	Short: "Sweep the initial cash buffer and plot success_rate",
	Run: func(cmd *cobra.Command, args []string) {
		sim := getEngine()
		ctx := context.Background()

		cfg, err := scenarioFromFlags(ctx, cmd, getStore(), "trinity_cash_graph")
		fatalOnError(err)

		start, _ := cmd.Flags().GetFloat64("cash-start")
		end, _ := cmd.Flags().GetFloat64("cash-end")
		step, _ := cmd.Flags().GetFloat64("cash-step")
		points := frange(start, end, step)

		results, err := runSweep(ctx, sim, cfg, points, func(c *scenario.ScenarioConfig, v float64) { c.InitialCash = v })
		fatalOnError(err)

		warnIfAnyErrored(results)
		sweepGraph("success_rate by initial_cash", results, func(r *aggregate.Result) float64 { return r.SuccessRate })
	},
}

// trinityCashGraphsCmd overlays success_rate-by-wr for several discrete
// cash-buffer levels at once, comparing them the way selection_graph
// compares withdrawal-selection policies.
var trinityCashGraphsCmd = &cobra.Command{
	Use:   "trinity_cash_graphs",
	Short: "Overlay success_rate-by-wr for several initial-cash levels",
	Run: func(cmd *cobra.Command, args []string) {
		sim := getEngine()
		ctx := context.Background()

		base, err := scenarioFromFlags(ctx, cmd, getStore(), "trinity_cash_graphs")
		fatalOnError(err)

		levelsStr, _ := cmd.Flags().GetString("cash-levels")
		levels := parseFloatList(levelsStr)
		points := wrSweepPoints(cmd)

		labels := make([]string, 0, len(levels))
		data := make([][]float64, 0, len(levels))

		for _, cash := range levels {
			cfg := base.Clone()
			cfg.InitialCash = cash

			results, err := runSweep(ctx, sim, cfg, points, func(c *scenario.ScenarioConfig, v float64) { c.WithdrawalRate = v })
			fatalOnError(err)

			successRates := make([]float64, 0, len(results))
			for _, r := range results {
				if r != nil {
					successRates = append(successRates, r.SuccessRate)
				}
			}

			labels = append(labels, fmt.Sprintf("cash=%g", cash))
			data = append(data, successRates)
		}

		printMultiGraph("success_rate by wr", labels, data)
	},
}
