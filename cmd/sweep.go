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
	"strconv"

	"github.com/swr-sim/swr-api/aggregate"
	"github.com/swr-sim/swr-api/engine"
	"github.com/swr-sim/swr-api/scenario"
)

// frange produces the closed range [start, end] stepped by step, the way
// every *_sheets/*_graph sweep command enumerates its varying parameter.
func frange(start, end, step float64) []float64 {
	if step <= 0 {
		return []float64{start}
	}
	var out []float64
	for v := start; v <= end+1e-9; v += step {
		out = append(out, v)
	}
	return out
}

// runSweep clones base once per point, applies mutate, labels the clone
// with its point's formatted value, and runs every point concurrently
// through sim.RunMany.
func runSweep(ctx context.Context, sim *engine.Engine, base *scenario.ScenarioConfig, points []float64, mutate func(cfg *scenario.ScenarioConfig, v float64)) ([]*aggregate.Result, error) {
	configs := make([]*scenario.ScenarioConfig, len(points))
	for i, v := range points {
		cfg := base.Clone()
		mutate(cfg, v)
		cfg.Label = strconv.FormatFloat(v, 'g', -1, 64)
		configs[i] = cfg
	}
	return sim.RunMany(ctx, configs)
}

// sweepSheet renders a swept parameter against a handful of Result fields
// the *_sheets commands print: parameter value, success_rate, tv_avg,
// tv_median, worst_duration.
func sweepSheet(paramName string, points []float64, results []*aggregate.Result) {
	headers := []string{paramName, "success_rate", "tv_avg", "tv_median", "worst_duration"}
	rows := make([][]string, 0, len(results))
	for i, r := range results {
		if r == nil {
			continue
		}
		rows = append(rows, []string{
			strconv.FormatFloat(points[i], 'g', -1, 64),
			strconv.FormatFloat(r.SuccessRate, 'f', 4, 64),
			strconv.FormatFloat(r.TVAvg, 'f', 2, 64),
			strconv.FormatFloat(r.TVMedian, 'f', 2, 64),
			strconv.Itoa(r.WorstDuration),
		})
	}
	printSheet(headers, rows)
}

// sweepGraph plots one Result field (selected by field) against the swept
// parameter, the format every *_graph sweep command uses.
func sweepGraph(caption string, results []*aggregate.Result, field func(*aggregate.Result) float64) {
	series := make([]float64, 0, len(results))
	for _, r := range results {
		if r == nil {
			continue
		}
		series = append(series, field(r))
	}
	printGraph(caption, series)
}

func firstErrorMessage(results []*aggregate.Result) string {
	for _, r := range results {
		if r != nil && r.Error {
			return r.Message
		}
	}
	return ""
}

func warnIfAnyErrored(results []*aggregate.Result) {
	if msg := firstErrorMessage(results); msg != "" {
		fmt.Println("warning: one or more sweep points errored:", msg)
	}
}
