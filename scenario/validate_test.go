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

package scenario

import (
	"errors"
	"testing"

	"github.com/swr-sim/swr-api/series"
)

func makeSeries(name string, startYear, endYear int) *series.DataSeries {
	var pts []series.DataPoint
	for y := startYear; y <= endYear; y++ {
		for m := 1; m <= 12; m++ {
			pts = append(pts, series.DataPoint{Year: uint(y), Month: uint8(m), Value: 1.0})
		}
	}
	return &series.DataSeries{Name: name, Points: pts}
}

func baseConfig() *ScenarioConfig {
	return &ScenarioConfig{
		StartYear:       1970,
		EndYear:         2020,
		Years:           30,
		InflationSeries: makeSeries("cpi", 1970, 2020),
		AssetSeries: map[string]*series.DataSeries{
			"us_stocks": makeSeries("us_stocks", 1970, 2020),
		},
	}
}

func TestValidateStartAfterEnd(t *testing.T) {
	cfg := baseConfig()
	cfg.StartYear, cfg.EndYear = 2000, 1990
	_, err := Validate(cfg)
	if !errors.Is(err, ErrInvalidPeriod) {
		t.Fatalf("expected ErrInvalidPeriod, got %v", err)
	}
}

func TestValidateZeroYears(t *testing.T) {
	cfg := baseConfig()
	cfg.Years = 0
	_, err := Validate(cfg)
	if !errors.Is(err, ErrInvalidPeriod) {
		t.Fatalf("expected ErrInvalidPeriod, got %v", err)
	}
}

func TestValidateUnchangedWhenInsideSupport(t *testing.T) {
	cfg := baseConfig()
	cfg.StartYear, cfg.EndYear = 1980, 2000
	cfg.Years = 20

	res, err := Validate(cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.StartYear != 1980 || res.EndYear != 2000 {
		t.Errorf("expected unchanged period, got [%d,%d]", res.StartYear, res.EndYear)
	}
	if len(res.Messages) != 0 {
		t.Errorf("expected no informational messages, got %v", res.Messages)
	}
}

func TestValidateClampsToIntersection(t *testing.T) {
	cfg := baseConfig()
	cfg.AssetSeries["us_stocks"] = makeSeries("us_stocks", 1985, 2010)

	res, err := Validate(cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.StartYear != 1985 || res.EndYear != 2010 {
		t.Errorf("expected clamp to [1985,2010], got [%d,%d]", res.StartYear, res.EndYear)
	}
	if len(res.Messages) == 0 {
		t.Errorf("expected informational clamp message")
	}
}

func TestValidateShortensWindow(t *testing.T) {
	cfg := baseConfig()
	cfg.AssetSeries["us_stocks"] = makeSeries("us_stocks", 2000, 2010)
	cfg.InflationSeries = makeSeries("cpi", 2000, 2010)
	cfg.StartYear, cfg.EndYear = 1970, 2020
	cfg.Years = 30

	res, err := Validate(cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Years != 10 {
		t.Errorf("expected years shortened to 10, got %d", res.Years)
	}
}

func TestValidateStrictOutOfRange(t *testing.T) {
	cfg := baseConfig()
	cfg.StrictValidation = true
	cfg.AssetSeries["us_stocks"] = makeSeries("us_stocks", 2030, 2040)

	_, err := Validate(cfg)
	if !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("expected ErrOutOfRange, got %v", err)
	}
}
