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
	"strconv"

	"github.com/spf13/cobra"

	"github.com/swr-sim/swr-api/scenario"
)

func init() {
	addScenarioFlags(multipleWRCmd)
	multipleWRCmd.Flags().Float64("wr-start", 2, "First withdrawal rate in the sweep")
	multipleWRCmd.Flags().Float64("wr-end", 6, "Last withdrawal rate in the sweep")
	multipleWRCmd.Flags().Float64("wr-step", 0.25, "Withdrawal rate step")
	rootCmd.AddCommand(multipleWRCmd)

	addScenarioFlags(withdrawFrequencyCmd)
	withdrawFrequencyCmd.Flags().Int("freq-start", 1, "First withdraw frequency, months")
	withdrawFrequencyCmd.Flags().Int("freq-end", 12, "Last withdraw frequency, months")
	withdrawFrequencyCmd.Flags().Int("freq-step", 1, "Withdraw frequency step, months")
	rootCmd.AddCommand(withdrawFrequencyCmd)
	rootCmd.AddCommand(frequencyAliasCmd)

	addScenarioFlags(currentWRCmd)
	currentWRCmd.Flags().Float64("precision", 0.01, "Stop the bisection once the bracket is this narrow, percent")
	rootCmd.AddCommand(currentWRCmd)

	addScenarioFlags(currentWRGraphCmd)
	currentWRGraphCmd.Flags().Int("years-start", 10, "First horizon length, years")
	currentWRGraphCmd.Flags().Int("years-end", 50, "Last horizon length, years")
	currentWRGraphCmd.Flags().Int("years-step", 5, "Horizon length step, years")
	currentWRGraphCmd.Flags().Float64("precision", 0.05, "Bisection precision per point, percent")
	rootCmd.AddCommand(currentWRGraphCmd)
}

var multipleWRCmd = &cobra.Command{
	Use:   "multiple_wr",
	Short: "Sweep withdrawal rate and print a success_rate/tv table",
	Run: func(cmd *cobra.Command, args []string) {
		sim := getEngine()
		ctx := context.Background()

		cfg, err := scenarioFromFlags(ctx, cmd, getStore(), "multiple_wr")
		fatalOnError(err)

		start, _ := cmd.Flags().GetFloat64("wr-start")
		end, _ := cmd.Flags().GetFloat64("wr-end")
		step, _ := cmd.Flags().GetFloat64("wr-step")
		points := frange(start, end, step)

		results, err := runSweep(ctx, sim, cfg, points, func(c *scenario.ScenarioConfig, v float64) { c.WithdrawalRate = v })
		fatalOnError(err)

		warnIfAnyErrored(results)
		sweepSheet("wr", points, results)
	},
}

var withdrawFrequencyCmd = &cobra.Command{
	Use:   "withdraw_frequency",
	Short: "Sweep withdraw frequency and print a success_rate/tv table",
	Run:   runWithdrawFrequencySweep,
}

// frequencyAliasCmd is the short alias spec §6 lists alongside
// withdraw_frequency.
var frequencyAliasCmd = &cobra.Command{
	Use:   "frequency",
	Short: "Alias for withdraw_frequency",
	Run:   runWithdrawFrequencySweep,
}

func init() {
	addScenarioFlags(frequencyAliasCmd)
	frequencyAliasCmd.Flags().Int("freq-start", 1, "First withdraw frequency, months")
	frequencyAliasCmd.Flags().Int("freq-end", 12, "Last withdraw frequency, months")
	frequencyAliasCmd.Flags().Int("freq-step", 1, "Withdraw frequency step, months")
}

func runWithdrawFrequencySweep(cmd *cobra.Command, args []string) {
	sim := getEngine()
	ctx := context.Background()

	cfg, err := scenarioFromFlags(ctx, cmd, getStore(), cmd.Use)
	fatalOnError(err)

	start, _ := cmd.Flags().GetInt("freq-start")
	end, _ := cmd.Flags().GetInt("freq-end")
	step, _ := cmd.Flags().GetInt("freq-step")
	if step < 1 {
		step = 1
	}

	var points []float64
	for v := start; v <= end; v += step {
		points = append(points, float64(v))
	}

	results, err := runSweep(ctx, sim, cfg, points, func(c *scenario.ScenarioConfig, v float64) { c.WithdrawFrequency = int(v) })
	fatalOnError(err)

	warnIfAnyErrored(results)
	sweepSheet("withdraw_frequency", points, results)
}

var currentWRCmd = &cobra.Command{
	Use:   "current_wr",
	Short: "Bisect for the highest withdrawal rate under the CURRENT method clearing 100% success",
	Run: func(cmd *cobra.Command, args []string) {
		sim := getEngine()
		ctx := context.Background()

		precision, _ := cmd.Flags().GetFloat64("precision")

		cfg, err := scenarioFromFlags(ctx, cmd, getStore(), "current_wr")
		fatalOnError(err)
		cfg.WithdrawalMethod = scenario.WithdrawalCurrent

		wr, result, err := bisectWR(ctx, sim, cfg, 100, precision)
		fatalOnError(err)

		printResult("current_wr", append([][2]string{{"wr", strconv.FormatFloat(wr, 'f', 4, 64)}}, resultFields(result)...))
	},
}

var currentWRGraphCmd = &cobra.Command{
	Use:   "current_wr_graph",
	Short: "Plot the CURRENT-method failsafe withdrawal rate across a range of horizon lengths",
	Run: func(cmd *cobra.Command, args []string) {
		sim := getEngine()
		ctx := context.Background()

		precision, _ := cmd.Flags().GetFloat64("precision")
		yStart, _ := cmd.Flags().GetInt("years-start")
		yEnd, _ := cmd.Flags().GetInt("years-end")
		yStep, _ := cmd.Flags().GetInt("years-step")
		if yStep < 1 {
			yStep = 1
		}

		base, err := scenarioFromFlags(ctx, cmd, getStore(), "current_wr_graph")
		fatalOnError(err)
		base.WithdrawalMethod = scenario.WithdrawalCurrent

		var wrs []float64
		for years := yStart; years <= yEnd; years += yStep {
			cfg := base.Clone()
			cfg.Years = years
			wr, _, err := bisectWR(ctx, sim, cfg, 100, precision)
			fatalOnError(err)
			wrs = append(wrs, wr)
		}

		printGraph("current_wr by horizon length (years)", wrs)
	},
}
