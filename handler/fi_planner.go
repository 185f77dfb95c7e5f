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

package handler

import (
	"sort"

	"github.com/gofiber/fiber/v2"

	"github.com/swr-sim/swr-api/aggregate"
	"github.com/swr-sim/swr-api/engine"
	"github.com/swr-sim/swr-api/series"
)

// fiPlannerResult combines the accumulation-phase estimate with one
// withdrawal-phase historical simulation and its yearly net-worth
// percentile bands (§6).
type fiPlannerResult struct {
	MonthsToFI float64           `json:"months_to_fi"`
	YearsToFI  float64           `json:"years_to_fi"`
	FINumber   float64           `json:"fi_number"`
	Simulation *aggregate.Result `json:"simulation"`
	NetWorth   netWorthBands     `json:"net_worth"`
	Message    string            `json:"message,omitempty"`
	Error      bool              `json:"error"`
}

// netWorthBands traces, per retirement year, the 10th/50th/90th percentile
// terminal value across every enumerated historical window, the "low/med/
// high percentile yearly returns" projection spec §6 names.
type netWorthBands struct {
	Low  []float64 `json:"low"`
	Med  []float64 `json:"med"`
	High []float64 `json:"high"`
}

// FiPlanner serves GET /api/fi_planner: accumulation estimate plus a
// historical withdrawal simulation with percentile net-worth bands.
func FiPlanner(store *series.Store, sim *engine.Engine) fiber.Handler {
	return func(c *fiber.Ctx) error {
		expenses := queryFloat(c, "expenses", 0)
		income := queryFloat(c, "income", 0)
		wr := queryFloat(c, "wr", 4)
		sr := queryFloat(c, "sr", 0)
		nw := queryFloat(c, "nw", 0)

		if expenses <= 0 || wr <= 0 {
			return writeResults(c, fiPlannerResult{Error: true, Message: "expenses and wr must be positive"})
		}

		monthlySave := income * sr
		if monthlySave <= 0 {
			monthlySave = income - expenses
		}

		fiNumber := expenses * 12 / (wr / 100)
		months := monthsToTarget(nw, monthlySave, fiNumber)

		cfg, err := scenarioFromQuery(c.Context(), c, store, "fi_planner")
		if err != nil {
			return writeError(c, err.Error())
		}
		if cfg.InitialValue == 0 || c.Query("initial") == "" {
			cfg.InitialValue = fiNumber
		}

		result, err := sim.Simulate(c.Context(), cfg)
		if err != nil {
			return writeError(c, err.Error())
		}

		out := fiPlannerResult{
			MonthsToFI: months,
			YearsToFI:  months / 12,
			FINumber:   fiNumber,
			Simulation: result,
		}
		if result.Error {
			out.Error = true
			out.Message = result.Message
			return writeResults(c, out)
		}

		out.NetWorth = percentileBands(result.YearlyTerminalValues)

		return writeResults(c, out)
	}
}

// percentileBands computes, for each year index, the 10th/50th/90th
// percentile across every window's YearlyTerminalValues trace. Windows
// shorter than a given year (a failed window stopped early) simply don't
// contribute a value for that year.
func percentileBands(windows [][]float64) netWorthBands {
	maxYears := 0
	for _, w := range windows {
		if len(w) > maxYears {
			maxYears = len(w)
		}
	}

	bands := netWorthBands{
		Low:  make([]float64, maxYears),
		Med:  make([]float64, maxYears),
		High: make([]float64, maxYears),
	}

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
		bands.Low[year] = percentile(values, 0.10)
		bands.Med[year] = percentile(values, 0.50)
		bands.High[year] = percentile(values, 0.90)
	}

	return bands
}

// percentile returns the value at fraction p (0..1) of an already-sorted
// slice, clamping the index to bounds.
func percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	idx := int(p * float64(n))
	if idx >= n {
		idx = n - 1
	}
	return sorted[idx]
}
