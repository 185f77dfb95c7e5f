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

	"github.com/swr-sim/swr-api/aggregate"
	"github.com/swr-sim/swr-api/scenario"
	"github.com/swr-sim/swr-api/series"
)

func init() {
	addScenarioFlags(socialSheetsCmd)
	socialSheetsCmd.Flags().Float64("coverage-start", 0, "First social_coverage fraction in the sweep")
	socialSheetsCmd.Flags().Float64("coverage-end", 1, "Last social_coverage fraction in the sweep")
	socialSheetsCmd.Flags().Float64("coverage-step", 0.1, "social_coverage step")
	rootCmd.AddCommand(socialSheetsCmd)

	addScenarioFlags(socialGraphCmd)
	socialGraphCmd.Flags().Float64("coverage-start", 0, "First social_coverage fraction in the sweep")
	socialGraphCmd.Flags().Float64("coverage-end", 1, "Last social_coverage fraction in the sweep")
	socialGraphCmd.Flags().Float64("coverage-step", 0.1, "social_coverage step")
	rootCmd.AddCommand(socialGraphCmd)

	socialPFSheetsCmd.Flags().Int("years", 30, "Length of retirement in years")
	socialPFSheetsCmd.Flags().Float64("wr", 4, "Withdrawal rate, percent")
	socialPFSheetsCmd.Flags().Int("social-delay", 10, "Years before the social security offset applies")
	socialPFSheetsCmd.Flags().Float64("social-coverage", 0.5, "Fraction of the withdrawal amount social security covers once active")
	rootCmd.AddCommand(socialPFSheetsCmd)

	socialPFGraphCmd.Flags().Int("years", 30, "Length of retirement in years")
	socialPFGraphCmd.Flags().Float64("wr", 4, "Withdrawal rate, percent")
	socialPFGraphCmd.Flags().Int("social-delay", 10, "Years before the social security offset applies")
	socialPFGraphCmd.Flags().Float64("social-coverage", 0.5, "Fraction of the withdrawal amount social security covers once active")
	rootCmd.AddCommand(socialPFGraphCmd)
}

var socialSheetsCmd = &cobra.Command{
	Use:   "social_sheets",
	Short: "Sweep social_coverage and tabulate success_rate",
	Run: func(cmd *cobra.Command, args []string) {
		sim := getEngine()
		ctx := context.Background()

		cfg, err := scenarioFromFlags(ctx, cmd, getStore(), "social_sheets")
		fatalOnError(err)
		cfg.SocialSecurity = true

		start, _ := cmd.Flags().GetFloat64("coverage-start")
		end, _ := cmd.Flags().GetFloat64("coverage-end")
		step, _ := cmd.Flags().GetFloat64("coverage-step")
		points := frange(start, end, step)

		results, err := runSweep(ctx, sim, cfg, points, func(c *scenario.ScenarioConfig, v float64) { c.SocialCoverage = v })
		fatalOnError(err)

		warnIfAnyErrored(results)
		sweepSheet("social_coverage", points, results)
	},
}

var socialGraphCmd = &cobra.Command{
	Use:   "social_graph",
	Short: "Sweep social_coverage and plot success_rate",
	Run: func(cmd *cobra.Command, args []string) {
		sim := getEngine()
		ctx := context.Background()

		cfg, err := scenarioFromFlags(ctx, cmd, getStore(), "social_graph")
		fatalOnError(err)
		cfg.SocialSecurity = true

		start, _ := cmd.Flags().GetFloat64("coverage-start")
		end, _ := cmd.Flags().GetFloat64("coverage-end")
		step, _ := cmd.Flags().GetFloat64("coverage-step")
		points := frange(start, end, step)

		results, err := runSweep(ctx, sim, cfg, points, func(c *scenario.ScenarioConfig, v float64) { c.SocialCoverage = v })
		fatalOnError(err)

		warnIfAnyErrored(results)
		sweepGraph("success_rate by social_coverage", results, func(r *aggregate.Result) float64 { return r.SuccessRate })
	},
}

// socialPFSheetsCmd runs portfolio_analysis's preset-portfolio comparison
// but with Social Security enabled on every preset, the pairing spec §6
// names alongside the bare portfolio_analysis/social sweeps.
var socialPFSheetsCmd = &cobra.Command{
	Use:   "social_pf_sheets",
	Short: "Compare success_rate across preset portfolios with social security enabled",
	Run: func(cmd *cobra.Command, args []string) {
		labels, results := runSocialPFSweep(cmd)

		headers := []string{"portfolio", "success_rate", "tv_avg", "tv_median", "worst_duration"}
		var rows [][]string
		for i, r := range results {
			rows = append(rows, []string{labels[i], formatFloat(r.SuccessRate), formatFloat(r.TVAvg), formatFloat(r.TVMedian), formatInt(r.WorstDuration)})
		}
		printSheet(headers, rows)
	},
}

var socialPFGraphCmd = &cobra.Command{
	Use:   "social_pf_graph",
	Short: "Plot success_rate across preset portfolios with social security enabled",
	Run: func(cmd *cobra.Command, args []string) {
		labels, results := runSocialPFSweep(cmd)
		successRates := make([]float64, len(results))
		for i, r := range results {
			successRates[i] = r.SuccessRate
		}
		fmt.Println(labels)
		printGraph("success_rate by preset portfolio (social security)", successRates)
	},
}

func runSocialPFSweep(cmd *cobra.Command) ([]string, []*aggregate.Result) {
	store := getStore()
	sim := getEngine()
	ctx := context.Background()

	years, _ := cmd.Flags().GetInt("years")
	wr, _ := cmd.Flags().GetFloat64("wr")
	socialDelay, _ := cmd.Flags().GetInt("social-delay")
	socialCoverage, _ := cmd.Flags().GetFloat64("social-coverage")

	presets, err := series.LoadPresetPortfolios("")
	fatalOnError(err)

	labels := make([]string, len(presets))
	results := make([]*aggregate.Result, len(presets))

	for i, preset := range presets {
		cfg, err := presetAnalysisScenario(ctx, store, preset.Name, preset.Portfolio, years, wr, series.NoInflationSentinel, 1871, 2021)
		fatalOnError(err)
		cfg.SocialSecurity = true
		cfg.SocialDelay = socialDelay
		cfg.SocialCoverage = socialCoverage

		result, err := sim.Simulate(ctx, cfg)
		fatalOnError(err)

		labels[i] = preset.Name
		results[i] = result
	}

	return labels, results
}
