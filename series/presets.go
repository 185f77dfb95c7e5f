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

package series

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// PresetPortfolio names one of the three reference allocations /api/retirement
// sweeps across standard 30/40/50-year horizons.
type PresetPortfolio struct {
	Name      string `yaml:"name"`
	Portfolio string `yaml:"portfolio"`
}

// LoadPresetPortfolios reads the named YAML file (a list of PresetPortfolio),
// defaulting to a conservative/balanced/aggressive trio when path is empty or
// missing, matching the "three preset portfolios" spec §6 requires for the
// accumulation-phase endpoints.
func LoadPresetPortfolios(path string) ([]PresetPortfolio, error) {
	if path == "" {
		return defaultPresets, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return defaultPresets, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrMissingData, err)
	}

	var presets []PresetPortfolio
	if err := yaml.Unmarshal(raw, &presets); err != nil {
		return nil, fmt.Errorf("could not parse preset portfolio file: %w", err)
	}
	if len(presets) == 0 {
		return defaultPresets, nil
	}
	return presets, nil
}

var defaultPresets = []PresetPortfolio{
	{Name: "conservative", Portfolio: "us_stocks:30;us_bonds:70"},
	{Name: "balanced", Portfolio: "us_stocks:60;us_bonds:40"},
	{Name: "aggressive", Portfolio: "us_stocks:90;us_bonds:10"},
}
