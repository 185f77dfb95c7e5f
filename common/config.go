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

package common

// Constants named in the external interface (spec §6). Viper keys of the
// same name (with dots instead of underscores) let operators override them
// without a recompile; these are the values used when unset.
const (
	MonthlyRebalanceCost   = 0.005 // percent
	YearlyRebalanceCost    = 0.01  // percent
	ThresholdRebalanceCost = 0.01  // percent
	DefaultFees            = 0.1   // percent per year (TER)
	DefaultInitialValue    = 1000.0
	DefaultMinimum         = 3.0 // percent of initial value
	VanguardMaxIncrease    = 5.0 // percent
	VanguardMaxDecrease    = 2.0 // percent

	NoInflationSentinel = "no_inflation"

	TickerSuffixDoubled = "_x2"
)
