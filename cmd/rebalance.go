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

	"github.com/spf13/cobra"

	"github.com/swr-sim/swr-api/aggregate"
	"github.com/swr-sim/swr-api/scenario"
)

func init() {
	addScenarioFlags(rebalanceSheetsCmd)
	rootCmd.AddCommand(rebalanceSheetsCmd)

	addScenarioFlags(rebalanceGraphCmd)
	rootCmd.AddCommand(rebalanceGraphCmd)

	addScenarioFlags(thresholdRebalanceSheetsCmd)
	thresholdRebalanceSheetsCmd.Flags().Float64("threshold-start", 1, "First rebalance threshold, percentage points")
	thresholdRebalanceSheetsCmd.Flags().Float64("threshold-end", 20, "Last rebalance threshold, percentage points")
	thresholdRebalanceSheetsCmd.Flags().Float64("threshold-step", 1, "Rebalance threshold step, percentage points")
	rootCmd.AddCommand(thresholdRebalanceSheetsCmd)

	addScenarioFlags(thresholdRebalanceGraphCmd)
	thresholdRebalanceGraphCmd.Flags().Float64("threshold-start", 1, "First rebalance threshold, percentage points")
	thresholdRebalanceGraphCmd.Flags().Float64("threshold-end", 20, "Last rebalance threshold, percentage points")
	thresholdRebalanceGraphCmd.Flags().Float64("threshold-step", 1, "Rebalance threshold step, percentage points")
	rootCmd.AddCommand(thresholdRebalanceGraphCmd)
}

// rebalancePolicyNames are swept in this fixed order by rebalance_sheets/
// rebalance_graph, comparing every rebalance policy against the same
// scenario.
var rebalancePolicyNames = []struct {
	label  string
	policy scenario.RebalancePolicy
}{
	{"none", scenario.RebalanceNone},
	{"monthly", scenario.RebalanceMonthly},
	{"threshold", scenario.RebalanceThreshold},
	{"yearly", scenario.RebalanceYearly},
}

func sweepRebalancePolicies(ctx context.Context, cmd *cobra.Command) ([]string, []*aggregate.Result) {
	sim := getEngine()

	base, err := scenarioFromFlags(ctx, cmd, getStore(), cmd.Use)
	fatalOnError(err)

	labels := make([]string, len(rebalancePolicyNames))
	results := make([]*aggregate.Result, len(rebalancePolicyNames))

	for i, rp := range rebalancePolicyNames {
		cfg := base.Clone()
		cfg.RebalancePolicy = rp.policy
		cfg.Label = rp.label

		result, err := sim.Simulate(ctx, cfg)
		fatalOnError(err)

		labels[i] = rp.label
		results[i] = result
	}

	return labels, results
}

var rebalanceSheetsCmd = &cobra.Command{
	Use:   "rebalance_sheets",
	Short: "Compare success_rate across every rebalance policy",
	Run: func(cmd *cobra.Command, args []string) {
		labels, results := sweepRebalancePolicies(context.Background(), cmd)

		headers := []string{"rebalance", "success_rate", "tv_avg", "tv_median", "worst_duration"}
		var rows [][]string
		for i, r := range results {
			rows = append(rows, []string{
				labels[i],
				formatFloat(r.SuccessRate),
				formatFloat(r.TVAvg),
				formatFloat(r.TVMedian),
				formatInt(r.WorstDuration),
			})
		}
		printSheet(headers, rows)
	},
}

var rebalanceGraphCmd = &cobra.Command{
	Use:   "rebalance_graph",
	Short: "Plot success_rate across every rebalance policy",
	Run: func(cmd *cobra.Command, args []string) {
		_, results := sweepRebalancePolicies(context.Background(), cmd)
		sweepGraph("success_rate by rebalance policy", results, func(r *aggregate.Result) float64 { return r.SuccessRate })
	},
}

var thresholdRebalanceSheetsCmd = &cobra.Command{
	Use:   "threshold_rebalance_sheets",
	Short: "Sweep the THRESHOLD rebalance trigger and tabulate success_rate",
	Run: func(cmd *cobra.Command, args []string) {
		sim := getEngine()
		ctx := context.Background()

		cfg, err := scenarioFromFlags(ctx, cmd, getStore(), "threshold_rebalance_sheets")
		fatalOnError(err)
		cfg.RebalancePolicy = scenario.RebalanceThreshold

		start, _ := cmd.Flags().GetFloat64("threshold-start")
		end, _ := cmd.Flags().GetFloat64("threshold-end")
		step, _ := cmd.Flags().GetFloat64("threshold-step")
		points := frange(start, end, step)

		results, err := runSweep(ctx, sim, cfg, points, func(c *scenario.ScenarioConfig, v float64) { c.RebalanceThreshold = v })
		fatalOnError(err)

		warnIfAnyErrored(results)
		sweepSheet("rebalance_threshold", points, results)
	},
}

var thresholdRebalanceGraphCmd = &cobra.Command{
	Use:   "threshold_rebalance_graph",
	Short: "Sweep the THRESHOLD rebalance trigger and plot success_rate",
	Run: func(cmd *cobra.Command, args []string) {
		sim := getEngine()
		ctx := context.Background()

		cfg, err := scenarioFromFlags(ctx, cmd, getStore(), "threshold_rebalance_graph")
		fatalOnError(err)
		cfg.RebalancePolicy = scenario.RebalanceThreshold

		start, _ := cmd.Flags().GetFloat64("threshold-start")
		end, _ := cmd.Flags().GetFloat64("threshold-end")
		step, _ := cmd.Flags().GetFloat64("threshold-step")
		points := frange(start, end, step)

		results, err := runSweep(ctx, sim, cfg, points, func(c *scenario.ScenarioConfig, v float64) { c.RebalanceThreshold = v })
		fatalOnError(err)

		warnIfAnyErrored(results)
		sweepGraph("success_rate by rebalance_threshold", results, func(r *aggregate.Result) float64 { return r.SuccessRate })
	},
}
