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

package engine

import (
	"context"
	"testing"

	"github.com/swr-sim/swr-api/portfolio"
	"github.com/swr-sim/swr-api/scenario"
	"github.com/swr-sim/swr-api/series"
)

func flatSeries(name string, startYear, endYear int, value float64) *series.DataSeries {
	var pts []series.DataPoint
	for y := startYear; y <= endYear; y++ {
		for m := 1; m <= 12; m++ {
			pts = append(pts, series.DataPoint{Year: uint(y), Month: uint8(m), Value: value})
		}
	}
	return &series.DataSeries{Name: name, Points: pts}
}

func baseConfig(label string) *scenario.ScenarioConfig {
	return &scenario.ScenarioConfig{
		Label:             label,
		Portfolio:         portfolio.Portfolio{{Asset: "us_stocks", Allocation: 100, WorkingAllocation: 100}},
		AssetSeries:       map[string]*series.DataSeries{"us_stocks": flatSeries("us_stocks", 1980, 2010, 1.01)},
		InflationSeries:   flatSeries("cpi", 1980, 2010, 1.0),
		StartYear:         1980,
		EndYear:           2010,
		Years:             20,
		WithdrawalRate:    4,
		WithdrawFrequency: 1,
		InitialValue:      1000,
	}
}

func TestSimulateReturnsResult(t *testing.T) {
	e := New(0)
	result, err := e.Simulate(context.Background(), baseConfig("plain"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Error {
		t.Fatalf("unexpected error result: %s", result.Message)
	}
	if result.Successes+result.Failures == 0 {
		t.Fatal("expected at least one outcome")
	}
}

func TestSimulateSurfacesConfigurationErrorOnResult(t *testing.T) {
	cfg := baseConfig("bad")
	cfg.WithdrawFrequency = 0

	e := New(0)
	result, err := e.Simulate(context.Background(), cfg)
	if err != nil {
		t.Fatalf("configuration errors must surface on Result, not as a Go error: %v", err)
	}
	if !result.Error {
		t.Fatal("expected Error=true for an invalid withdraw frequency")
	}
}

func TestSimulateMemoizesByHash(t *testing.T) {
	e := New(16)
	cfg := baseConfig("cached")

	first, err := e.Simulate(context.Background(), cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	second, err := e.Simulate(context.Background(), cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if first.SuccessRate != second.SuccessRate || first.WorstDuration != second.WorstDuration {
		t.Fatalf("expected cached result to match original: %+v vs %+v", first, second)
	}
}

func TestRunManyPreservesOrderAndClonesConfigs(t *testing.T) {
	e := New(0)
	configs := []*scenario.ScenarioConfig{
		baseConfig("one"),
		baseConfig("two"),
		baseConfig("three"),
	}

	results, err := e.RunMany(context.Background(), configs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != len(configs) {
		t.Fatalf("expected %d results, got %d", len(configs), len(results))
	}
	for i, r := range results {
		if r == nil {
			t.Fatalf("result %d is nil", i)
		}
		if r.Label != configs[i].Label {
			t.Errorf("expected ordered label %q, got %q", configs[i].Label, r.Label)
		}
	}
}
