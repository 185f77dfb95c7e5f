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

package kernel

import "github.com/swr-sim/swr-api/scenario"

// applyFlexibility implements §4.5.5. Called only on a STANDARD withdrawal
// month, before the gross amount is finalized. Returns the (possibly
// reduced) amount and whether this month was flagged flexible.
func applyFlexibility(cfg *scenario.ScenarioConfig, ctx *scenario.Context, assets *assetVec, amount float64) (float64, bool) {
	if cfg.Flexibility == scenario.FlexibilityNone {
		return amount, false
	}

	var ratio float64
	switch cfg.Flexibility {
	case scenario.FlexibilityPortfolio:
		ratio = assets.totalCurrent() / cfg.InitialValue
	case scenario.FlexibilityMarket:
		total := assets.totalMarket()
		if total > ctx.HistoricalHigh {
			ctx.HistoricalHigh = total
		}
		if ctx.HistoricalHigh == 0 {
			return amount, false
		}
		ratio = total / ctx.HistoricalHigh
	default:
		return amount, false
	}

	switch {
	case ratio < cfg.FlexT2:
		return amount * cfg.FlexC2, true
	case ratio < cfg.FlexT1:
		return amount * cfg.FlexC1, true
	default:
		return amount, false
	}
}
