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
)

func init() {
	addScenarioFlags(glidepathCmd)
	rootCmd.AddCommand(glidepathCmd)

	addScenarioFlags(reverseGlidepathCmd)
	rootCmd.AddCommand(reverseGlidepathCmd)
}

var glidepathCmd = &cobra.Command{
	Use:   "glidepath",
	Short: "Run one simulation with the glidepath reallocation enabled",
	Run: func(cmd *cobra.Command, args []string) {
		store := getStore()
		sim := getEngine()
		ctx := context.Background()

		cfg, err := scenarioFromFlags(ctx, cmd, store, "glidepath")
		fatalOnError(err)
		cfg.Glidepath = true

		result, err := sim.Simulate(ctx, cfg)
		fatalOnError(err)
		printResult("glidepath", resultFields(result))
	},
}

// reverseGlidepathCmd runs the same glidepath mechanics with the pass
// direction negated, shifting allocation away from --gp-goal instead of
// toward it (e.g. de-risking into bonds as retirement progresses instead of
// the accumulation-phase equity glide).
var reverseGlidepathCmd = &cobra.Command{
	Use:   "reverse_glidepath",
	Short: "Run one simulation with the glidepath direction reversed",
	Run: func(cmd *cobra.Command, args []string) {
		store := getStore()
		sim := getEngine()
		ctx := context.Background()

		cfg, err := scenarioFromFlags(ctx, cmd, store, "reverse_glidepath")
		fatalOnError(err)
		cfg.Glidepath = true
		cfg.GPPass = -cfg.GPPass

		result, err := sim.Simulate(ctx, cfg)
		fatalOnError(err)
		printResult("reverse_glidepath", resultFields(result))
	},
}
