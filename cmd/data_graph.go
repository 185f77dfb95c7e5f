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

	"github.com/swr-sim/swr-api/series"
)

func init() {
	rootCmd.AddCommand(dataGraphCmd)
	rootCmd.AddCommand(dataTimeGraphCmd)
}

var dataGraphCmd = &cobra.Command{
	Use:   "data_graph <asset>",
	Short: "Plot an asset's normalized monthly price series",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		s, err := getStore().Load(context.Background(), args[0])
		fatalOnError(err)

		norm := series.Normalize(s)
		values := make([]float64, len(norm.Points))
		for i, p := range norm.Points {
			values[i] = p.Value
		}

		printGraph(fmt.Sprintf("%s (monthly, normalized)", args[0]), values)
	},
}

// dataTimeGraphCmd plots the same normalized series sampled once per
// calendar year (every December point), the coarser "over time" view
// spec §6 names alongside data_graph's full monthly resolution.
var dataTimeGraphCmd = &cobra.Command{
	Use:   "data_time_graph <asset>",
	Short: "Plot an asset's normalized price series, one point per year",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		s, err := getStore().Load(context.Background(), args[0])
		fatalOnError(err)

		norm := series.Normalize(s)
		var values []float64
		for _, p := range norm.Points {
			if p.Month == 12 {
				values = append(values, p.Value)
			}
		}

		printGraph(fmt.Sprintf("%s (yearly, normalized)", args[0]), values)
	},
}
