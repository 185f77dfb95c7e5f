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

// Package scenario bundles every input to one simulation run. Per the §9
// design note, the source's single mutable struct is split here into an
// immutable ScenarioConfig (this file) and a per-window mutable Context
// (context.go), created fresh by the kernel for every enumerated window.
package scenario

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/zeebo/blake3"

	"github.com/swr-sim/swr-api/portfolio"
	"github.com/swr-sim/swr-api/series"
)

type RebalancePolicy int

const (
	RebalanceNone RebalancePolicy = iota
	RebalanceMonthly
	RebalanceThreshold
	RebalanceYearly
)

type WithdrawalMethod int

const (
	WithdrawalStandard WithdrawalMethod = iota
	WithdrawalCurrent
	WithdrawalVanguard
)

type WithdrawalSelection int

const (
	SelectionAllocation WithdrawalSelection = iota
	SelectionBonds
	SelectionStocks
)

type FlexibilityMode int

const (
	FlexibilityNone FlexibilityMode = iota
	FlexibilityPortfolio
	FlexibilityMarket
)

type CashMethod int

const (
	CashSimple CashMethod = iota
	CashSmart
)

// ScenarioConfig is the immutable bundle of inputs to one simulation run.
// Series references are shared read-only across scenarios (§5); only
// Portfolio is ever reset per window, and that reset clones rather than
// mutates (see portfolio.Portfolio.ResetWorking).
type ScenarioConfig struct {
	// Label identifies this config in a sweep's results (multiple_wr,
	// trinity_*, …); not part of the simulated inputs.
	Label string

	Portfolio portfolio.Portfolio

	AssetSeries    map[string]*series.DataSeries
	ExchangeSeries map[string]*series.DataSeries // subset of assets requiring currency conversion
	InflationSeries *series.DataSeries

	StartYear int
	EndYear   int
	Years     int

	WithdrawalRate      float64
	WithdrawalMethod    WithdrawalMethod
	WithdrawalSelection WithdrawalSelection
	WithdrawFrequency   int // months between withdrawal events

	RebalancePolicy    RebalancePolicy
	RebalanceThreshold float64

	Fees float64 // yearly TER, percent

	InitialValue    float64
	MinimumFraction float64 // percent of initial value

	FinalThreshold float64
	FinalInflation bool

	SocialSecurity bool
	SocialDelay    int // years before offset applies
	SocialCoverage float64

	InitialCash float64
	CashMethod  CashMethod

	Glidepath bool
	GPPass    float64
	GPGoal    float64

	Flexibility FlexibilityMode
	FlexT1      float64
	FlexC1      float64
	FlexT2      float64
	FlexC2      float64

	// VanguardMaxIncrease/VanguardMaxDecrease bound the year-over-year
	// change of a VANGUARD withdrawal as fractions (e.g. 0.05 for 5%),
	// configurable per scenario rather than fixed at the common package's
	// defaults so a sweep can vary them.
	VanguardMaxIncrease float64
	VanguardMaxDecrease float64

	TimeoutMsecs     int64
	StrictValidation bool
}

// Validate checks the ConfigurationError conditions from §7 that are purely
// structural (not dependent on period clamping, which the validator handles
// separately).
func (c *ScenarioConfig) Validate() error {
	if err := c.Portfolio.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrConfigurationError, err)
	}

	if c.Glidepath {
		if len(c.Portfolio) < 2 {
			return fmt.Errorf("%w: glidepath requires at least two assets", ErrConfigurationError)
		}
		if c.RebalancePolicy != RebalanceNone && c.RebalancePolicy != RebalanceMonthly {
			return fmt.Errorf("%w: glidepath requires NONE or MONTHLY rebalance", ErrConfigurationError)
		}
		if c.GPPass == 0 {
			return fmt.Errorf("%w: glidepath pass must be non-zero", ErrConfigurationError)
		}
		start := c.Portfolio[0].Allocation
		if (c.GPPass > 0 && c.GPGoal < start) || (c.GPPass < 0 && c.GPGoal > start) {
			return fmt.Errorf("%w: glidepath pass direction does not reach goal", ErrConfigurationError)
		}
	}

	if c.Flexibility != FlexibilityNone {
		if c.FlexT1 <= c.FlexT2 {
			return fmt.Errorf("%w: flexibility thresholds must satisfy t1 > t2", ErrConfigurationError)
		}
	}

	if c.InitialCash > 0 && c.SocialSecurity {
		return fmt.Errorf("%w: cash buffer and social security cannot combine", ErrConfigurationError)
	}

	if c.SocialSecurity && c.WithdrawalMethod != WithdrawalStandard {
		return fmt.Errorf("%w: social security requires STANDARD withdrawal", ErrConfigurationError)
	}

	if c.WithdrawFrequency < 1 {
		return fmt.Errorf("%w: withdraw frequency must be at least 1 month", ErrConfigurationError)
	}

	if c.WithdrawalMethod == WithdrawalVanguard && c.WithdrawFrequency != 1 {
		return fmt.Errorf("%w: vanguard withdrawal requires monthly frequency", ErrConfigurationError)
	}

	if c.WithdrawalSelection != SelectionAllocation && len(c.Portfolio) > 2 {
		return fmt.Errorf("%w: stocks/bonds selection requires a two-asset portfolio", ErrConfigurationError)
	}

	return nil
}

// Hash returns a blake3 digest of every field that affects simulation
// output, used by the engine's memoization cache. The technique mirrors the
// teacher's content-addressed transaction-source-id hashing: a stable
// textual encoding fed through blake3 rather than a hand-rolled struct
// hash, so adding a field later is a one-line change here instead of a
// silent cache-key bug.
func (c *ScenarioConfig) Hash() [16]byte {
	h := blake3.New()

	write := func(s string) { _, _ = h.Write([]byte(s)) }
	writeFloat := func(f float64) { write(strconv.FormatFloat(f, 'g', -1, 64)) }
	writeInt := func(i int) { write(strconv.Itoa(i)) }

	write(c.Label)
	for _, a := range c.Portfolio {
		write(a.Asset)
		writeFloat(a.Allocation)
	}

	assetNames := make([]string, 0, len(c.AssetSeries))
	for name := range c.AssetSeries {
		assetNames = append(assetNames, name)
	}
	sort.Strings(assetNames)
	for _, name := range assetNames {
		write(name)
	}

	if c.InflationSeries != nil {
		write(c.InflationSeries.Name)
	}

	writeInt(c.StartYear)
	writeInt(c.EndYear)
	writeInt(c.Years)
	writeFloat(c.WithdrawalRate)
	writeInt(int(c.WithdrawalMethod))
	writeInt(int(c.WithdrawalSelection))
	writeInt(c.WithdrawFrequency)
	writeInt(int(c.RebalancePolicy))
	writeFloat(c.RebalanceThreshold)
	writeFloat(c.Fees)
	writeFloat(c.InitialValue)
	writeFloat(c.MinimumFraction)
	writeFloat(c.FinalThreshold)
	write(strconv.FormatBool(c.FinalInflation))
	write(strconv.FormatBool(c.SocialSecurity))
	writeInt(c.SocialDelay)
	writeFloat(c.SocialCoverage)
	writeFloat(c.InitialCash)
	writeInt(int(c.CashMethod))
	write(strconv.FormatBool(c.Glidepath))
	writeFloat(c.GPPass)
	writeFloat(c.GPGoal)
	writeInt(int(c.Flexibility))
	writeFloat(c.FlexT1)
	writeFloat(c.FlexC1)
	writeFloat(c.FlexT2)
	writeFloat(c.FlexC2)
	writeFloat(c.VanguardMaxIncrease)
	writeFloat(c.VanguardMaxDecrease)

	var out [16]byte
	copy(out[:], h.Sum(nil))
	return out
}

// Clone returns a shallow copy suitable for handing to one worker in a
// sweep: the Portfolio slice is deep-copied (it is mutated per-window by
// the kernel), series maps are shared read-only per §5's ownership rule.
func (c *ScenarioConfig) Clone() *ScenarioConfig {
	cp := *c
	cp.Portfolio = make(portfolio.Portfolio, len(c.Portfolio))
	copy(cp.Portfolio, c.Portfolio)
	return &cp
}
