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
	"fmt"

	"github.com/swr-sim/swr-api/series"
)

// ValidationResult is the clamped period plus any informational messages
// accumulated along the way (§4.3 step 6). It never carries a failure; a
// failure is returned as an error from Validate.
type ValidationResult struct {
	StartYear int
	EndYear   int
	Years     int
	Messages  []string
}

// Validate implements the period validator (§4.3), applied in the order
// the spec lists: ordering/degenerate checks first, then strict
// out-of-range rejection, then clamping to the intersection of every
// required series' support, then window shortening.
func Validate(cfg *ScenarioConfig) (*ValidationResult, error) {
	startYear, endYear, years := cfg.StartYear, cfg.EndYear, cfg.Years

	if startYear >= endYear {
		return nil, fmt.Errorf("%w: start year %d not before end year %d", ErrInvalidPeriod, startYear, endYear)
	}
	if years == 0 {
		return nil, fmt.Errorf("%w: zero-length window requested", ErrInvalidPeriod)
	}

	required := requiredSeries(cfg)

	if cfg.StrictValidation {
		for _, s := range required {
			lo, hi := seriesYearBounds(s)
			if endYear < lo || startYear > hi {
				return nil, fmt.Errorf("%w: requested [%d,%d] outside series %q support [%d,%d]",
					ErrOutOfRange, startYear, endYear, s.Name, lo, hi)
			}
		}
	}

	adjusted := false
	for _, s := range required {
		lo, hi := seriesYearBounds(s)
		if lo > startYear {
			startYear = lo
			adjusted = true
		}
		if hi < endYear {
			endYear = hi
			adjusted = true
		}
	}

	if startYear >= endYear {
		return nil, fmt.Errorf("%w: clamped period collapsed to a single year", ErrInvalidPeriod)
	}

	result := &ValidationResult{StartYear: startYear, EndYear: endYear, Years: years}

	if adjusted {
		result.Messages = append(result.Messages, fmt.Sprintf(
			"requested period clamped to [%d,%d] to fit available data", startYear, endYear))
	}

	if endYear-startYear < years {
		result.Years = endYear - startYear
		result.Messages = append(result.Messages, fmt.Sprintf(
			"window shortened from %d to %d years to fit the clamped period", years, result.Years))
	}

	return result, nil
}

func requiredSeries(cfg *ScenarioConfig) []*series.DataSeries {
	var out []*series.DataSeries
	if cfg.InflationSeries != nil {
		out = append(out, cfg.InflationSeries)
	}
	for _, s := range cfg.AssetSeries {
		out = append(out, s)
	}
	for _, s := range cfg.ExchangeSeries {
		out = append(out, s)
	}
	return out
}

func seriesYearBounds(s *series.DataSeries) (lo, hi int) {
	if len(s.Points) == 0 {
		return 0, 0
	}
	return int(s.Points[0].Year), int(s.Points[len(s.Points)-1].Year)
}
