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
	addScenarioFlags(fixedCmd)
	rootCmd.AddCommand(fixedCmd)
}

var fixedCmd = &cobra.Command{
	Use:   "fixed",
	Short: "Run one simulation at a fixed withdrawal rate and print the full result",
	Run: func(cmd *cobra.Command, args []string) {
		store := getStore()
		sim := getEngine()

		cfg, err := scenarioFromFlags(context.Background(), cmd, store, "fixed")
		fatalOnError(err)

		result, err := sim.Simulate(context.Background(), cfg)
		fatalOnError(err)

		printResult("fixed", resultFields(result))
	},
}
