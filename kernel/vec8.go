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

import (
	"fmt"

	"github.com/swr-sim/swr-api/series"
)

// assetCapacity is the smallvec inline capacity referenced by §9: Go has no
// const-generic array sizes, so the source's "template switch over N∈{1..5}"
// becomes a single Runner operating over a fixed-capacity stack array
// instead of five monomorphized code paths. The Dispatcher still only
// accepts 1..5 assets (see dispatch.go); 8 leaves headroom so the vector
// itself is never the limiting factor.
const assetCapacity = 8

// assetState is one asset's per-window mutable state: current/market value
// tracks, working allocation, and the return/exchange series it reads from.
type assetState struct {
	name string

	targetAllocation  float64
	workingAllocation float64

	currentValue float64
	marketValue  float64

	returns  *series.DataSeries
	exchange *series.DataSeries // nil if no currency conversion applies

	// returnsIdx0/exchangeIdx0 are the absolute index of this window's
	// first month within each series, computed once at window init so the
	// monthly loop indexes directly instead of scanning (§9 "iterator
	// advance over series"). exchangeIdx0 is -1 when exchange is nil.
	returnsIdx0  int
	exchangeIdx0 int
}

// assetVec is a fixed-capacity, stack-allocated vector of assetState. It
// never grows past assetCapacity and never allocates on the heap: the
// kernel's monthly loop is the system's hot path and must not allocate.
type assetVec struct {
	items [assetCapacity]assetState
	n     int
}

func (v *assetVec) push(a assetState) error {
	if v.n >= assetCapacity {
		return fmt.Errorf("asset vector at capacity %d", assetCapacity)
	}
	v.items[v.n] = a
	v.n++
	return nil
}

func (v *assetVec) len() int { return v.n }

func (v *assetVec) at(i int) *assetState { return &v.items[i] }

// totalCurrent sums CurrentValue across all assets.
func (v *assetVec) totalCurrent() float64 {
	var total float64
	for i := 0; i < v.n; i++ {
		total += v.items[i].currentValue
	}
	return total
}

// totalMarket sums MarketValue across all assets.
func (v *assetVec) totalMarket() float64 {
	var total float64
	for i := 0; i < v.n; i++ {
		total += v.items[i].marketValue
	}
	return total
}
