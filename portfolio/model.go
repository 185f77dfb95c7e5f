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

// Package portfolio parses and validates a target asset allocation. It is
// unrelated to a brokerage transaction ledger; this is purely the weight
// vector the kernel rebalances toward.
package portfolio

import (
	"fmt"
	"strconv"
	"strings"
)

// maxAssets is the smallvec inline capacity the kernel uses for per-window
// asset vectors (§9 design note). It is kept generously above the
// Dispatcher's N∈{1..5} "specialized" ceiling so the two checks stay
// visually distinct in the code: Validate rejects portfolios the kernel's
// data structures cannot hold at all, Dispatch rejects arities it has no
// specialization for.
const maxAssets = 8

// AssetAllocation is one line of a Portfolio: a named asset, its target
// allocation percentage, and the working allocation used during the current
// simulation window (reset from Allocation at window start, mutated by
// glidepath during the window).
type AssetAllocation struct {
	Asset             string
	Allocation        float64
	WorkingAllocation float64
}

// Portfolio is an ordered list of AssetAllocations.
type Portfolio []AssetAllocation

// Parse reads "asset1:pct1;asset2:pct2;…" into a Portfolio. If allowZeroSum
// is false, a portfolio whose allocations sum to zero is rejected.
func Parse(spec string, allowZeroSum bool) (Portfolio, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return nil, ErrEmpty
	}

	parts := strings.Split(spec, ";")
	p := make(Portfolio, 0, len(parts))

	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		fields := strings.SplitN(part, ":", 2)
		if len(fields) != 2 {
			return nil, fmt.Errorf("%w: %q", ErrMalformed, part)
		}

		asset := strings.TrimSpace(fields[0])
		if asset == "" {
			return nil, fmt.Errorf("%w: %q", ErrMalformed, part)
		}

		pct, err := strconv.ParseFloat(strings.TrimSpace(fields[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrBadAllocation, fields[1])
		}

		p = append(p, AssetAllocation{Asset: asset, Allocation: pct, WorkingAllocation: pct})
	}

	if len(p) == 0 {
		return nil, ErrEmpty
	}

	if !allowZeroSum && TotalAllocation(p) == 0 {
		return nil, ErrZeroSum
	}

	return p, nil
}

// Normalize scales every allocation by 100/sum when the sum is positive and
// not already 100.
func Normalize(p Portfolio) Portfolio {
	sum := TotalAllocation(p)
	if sum <= 0 || sum == 100 {
		return p
	}

	out := make(Portfolio, len(p))
	scale := 100 / sum
	for i, a := range p {
		a.Allocation *= scale
		a.WorkingAllocation = a.Allocation
		out[i] = a
	}
	return out
}

// TotalAllocation sums the target allocations.
func TotalAllocation(p Portfolio) float64 {
	var total float64
	for _, a := range p {
		total += a.Allocation
	}
	return total
}

// MaxAssets is the structural upper bound the kernel's fixed-capacity
// vectors can hold.
func (p Portfolio) MaxAssets() int {
	return maxAssets
}

// Validate rejects portfolios the kernel's data structures cannot represent.
// Distinct from the Dispatcher's N∈{1..5} arity-specialization check.
func (p Portfolio) Validate() error {
	if len(p) == 0 {
		return ErrEmpty
	}
	if len(p) > maxAssets {
		return fmt.Errorf("%w: %d assets, max %d", ErrTooManyAssets, len(p), maxAssets)
	}
	return nil
}

// ResetWorking restores every asset's WorkingAllocation to its target,
// returning a fresh clone suitable for a new simulation window (per §9,
// rewinding by cloning rather than mutating in place).
func (p Portfolio) ResetWorking() Portfolio {
	out := make(Portfolio, len(p))
	for i, a := range p {
		a.WorkingAllocation = a.Allocation
		out[i] = a
	}
	return out
}
