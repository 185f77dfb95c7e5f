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
	"testing"

	"github.com/swr-sim/swr-api/kernel"
)

func TestDistributionOffByOneMedian(t *testing.T) {
	// n=4, sorted [1,2,3,4]; idx = 4/2+1 = 3 -> value 4 (upper median,
	// deliberately not the conventional average-of-middle-two).
	min, avg, median, max := distribution([]float64{1, 2, 3, 4})
	if min != 1 || max != 4 {
		t.Fatalf("unexpected min/max: %v/%v", min, max)
	}
	if avg != 2.5 {
		t.Errorf("expected avg 2.5, got %v", avg)
	}
	if median != 4 {
		t.Errorf("expected off-by-one median 4, got %v", median)
	}
}

func TestAggregateSuccessRate(t *testing.T) {
	kr := &kernel.RunResult{
		Outcomes: []kernel.WindowOutcome{
			{TerminalValue: 100, YearlySpending: []float64{40, 40}},
			{Failed: true, FailedAtMonth: 200},
		},
	}

	r := Aggregate("test", 2, kr)
	if r.Successes != 1 || r.Failures != 1 {
		t.Fatalf("expected 1 success 1 failure, got %d/%d", r.Successes, r.Failures)
	}
	if r.SuccessRate != 50 {
		t.Errorf("expected success_rate 50, got %v", r.SuccessRate)
	}
}

func TestAggregateSpendingVolatilityClassification(t *testing.T) {
	kr := &kernel.RunResult{
		Outcomes: []kernel.WindowOutcome{
			{TerminalValue: 500, YearlySpending: []float64{100, 160, 40, 95}},
		},
	}

	r := Aggregate("test", 4, kr)
	if r.YearsLargeSpending != 1 {
		t.Errorf("expected 1 large-spending year, got %d", r.YearsLargeSpending)
	}
	if r.YearsSmallSpending != 1 {
		t.Errorf("expected 1 small-spending year, got %d", r.YearsSmallSpending)
	}
	if r.YearsVolatileUpSpending != 2 {
		t.Errorf("expected 2 volatile-up years (year 2 and year 4 relative to their priors), got %d", r.YearsVolatileUpSpending)
	}
	if r.YearsVolatileDownSpending != 1 {
		t.Errorf("expected 1 volatile-down year (160->40), got %d", r.YearsVolatileDownSpending)
	}
}
