// Copyright 2021-2022
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package aggregate

import (
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/swr-sim/swr-api/kernel"
)

// Aggregate implements §4.6 over one scenario's kernel.RunResult.
func Aggregate(label string, years int, kr *kernel.RunResult) *Result {
	r := &Result{Label: label}

	r.Successes, r.Failures = countOutcomes(kr.Outcomes)
	total := r.Successes + r.Failures
	if total > 0 {
		r.SuccessRate = 100 * float64(r.Successes) / float64(total)
	}

	r.WorstDuration = kr.WorstDuration
	r.WorstStartingMonth = kr.WorstStartingMonth
	r.WorstStartingYear = kr.WorstStartingYear

	r.LowestEffWR = kr.LowestEffWR * 100
	r.LowestEffWRMonth = kr.LowestEffWRMonth
	r.LowestEffWRYear = kr.LowestEffWRYear
	r.LowestEffWRRelYear = kr.LowestEffWRRelYear

	r.HighestEffWR = kr.HighestEffWR * 100
	r.HighestEffWRMonth = kr.HighestEffWRMonth
	r.HighestEffWRYear = kr.HighestEffWRYear
	r.HighestEffWRRelYear = kr.HighestEffWRRelYear

	r.WorstTV = kr.WorstTV
	r.WorstTVMonth = kr.WorstTVMonth
	r.WorstTVYear = kr.WorstTVYear
	r.BestTV = kr.BestTV
	r.BestTVMonth = kr.BestTVMonth
	r.BestTVYear = kr.BestTVYear

	tvs := make([]float64, len(kr.Outcomes))
	yearlyTVs := make([][]float64, len(kr.Outcomes))
	yearlySpending := make([][]float64, len(kr.Outcomes))
	for i, o := range kr.Outcomes {
		tvs[i] = o.TerminalValue
		yearlyTVs[i] = o.YearlyTerminalValues
		yearlySpending[i] = o.YearlySpending
		if o.Flexible {
			if o.Failed {
				r.FlexibleFailures++
			} else {
				r.FlexibleSuccesses++
			}
		}
		r.TotalWithdrawn += o.TotalWithdrawn
		r.TerminalValues = append(r.TerminalValues, o.TerminalValue)
		r.Flexible = append(r.Flexible, o.Flexible)
	}
	r.YearlyTerminalValues = yearlyTVs
	r.YearlySpending = yearlySpending

	sortedTV := append([]float64(nil), tvs...)
	sort.Float64s(sortedTV)
	r.TVMin, r.TVAvg, r.TVMedian, r.TVMax = distribution(sortedTV)
	if len(sortedTV) > 1 {
		r.TVStdDev = stat.StdDev(sortedTV, nil)
	}

	if years > 0 && r.Successes > 0 {
		r.WithdrawnPerYear = r.TotalWithdrawn / float64(years) / float64(r.Successes)
	}

	aggregateSpending(r, kr.Outcomes, years)

	return r
}

func countOutcomes(outcomes []kernel.WindowOutcome) (successes, failures int) {
	for _, o := range outcomes {
		if o.Failed {
			failures++
		} else {
			successes++
		}
	}
	return
}

// distribution returns min, mean, median, max of an already-sorted slice.
// The median index is `n/2 + 1`, a deliberate off-by-one on the upper
// median for even-sized samples, preserved exactly per §9's open question
// for determinism with the source's outputs — not "corrected" to `n/2`.
func distribution(sorted []float64) (min, avg, median, max float64) {
	n := len(sorted)
	if n == 0 {
		return 0, 0, 0, 0
	}

	min, max = sorted[0], sorted[n-1]

	var sum float64
	for _, v := range sorted {
		sum += v
	}
	avg = sum / float64(n)

	idx := n/2 + 1
	if idx >= n {
		idx = n - 1
	}
	median = sorted[idx]

	return
}

// aggregateSpending totals each successful window's yearly spending vector,
// builds the spending distribution, and classifies years by volatility
// relative to that window's own first year and previous year.
func aggregateSpending(r *Result, outcomes []kernel.WindowOutcome, years int) {
	var totals []float64

	for _, o := range outcomes {
		if o.Failed {
			continue
		}

		var windowTotal float64
		for i, spend := range o.YearlySpending {
			windowTotal += spend

			if i == 0 {
				continue
			}
			firstYear := o.YearlySpending[0]
			prevYear := o.YearlySpending[i-1]

			if spend >= 1.5*firstYear {
				r.YearsLargeSpending++
			}
			if spend <= 0.5*firstYear {
				r.YearsSmallSpending++
			}
			if spend >= 1.1*prevYear {
				r.YearsVolatileUpSpending++
			}
			if spend <= 0.9*prevYear {
				r.YearsVolatileDownSpending++
			}
		}

		totals = append(totals, windowTotal)
	}

	if len(totals) == 0 || years == 0 {
		return
	}

	sort.Float64s(totals)
	min, avg, median, max := distribution(totals)
	r.SpendingMin = min / float64(years)
	r.SpendingAvg = avg / float64(years)
	r.SpendingMedian = median / float64(years)
	r.SpendingMax = max / float64(years)
	if len(totals) > 1 {
		r.SpendingStdDev = stat.StdDev(totals, nil) / float64(years)
	}
}
