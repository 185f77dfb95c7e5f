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

package portfolio

import (
	"errors"
	"math"
	"testing"
)

func TestParseBasic(t *testing.T) {
	p, err := Parse("us_stocks:60;us_bonds:40;", false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(p) != 2 {
		t.Fatalf("expected 2 assets, got %d", len(p))
	}
	if p[0].Asset != "us_stocks" || p[0].Allocation != 60 {
		t.Errorf("unexpected first asset: %+v", p[0])
	}
}

func TestParseZeroSumRejected(t *testing.T) {
	_, err := Parse("us_stocks:0;us_bonds:0", false)
	if !errors.Is(err, ErrZeroSum) {
		t.Fatalf("expected ErrZeroSum, got %v", err)
	}
}

func TestParseZeroSumAllowed(t *testing.T) {
	p, err := Parse("us_stocks:0;us_bonds:0", true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(p) != 2 {
		t.Fatalf("expected 2 assets, got %d", len(p))
	}
}

func TestNormalizeScalesTo100(t *testing.T) {
	p, _ := Parse("us_stocks:30;us_bonds:30", false)
	n := Normalize(p)
	if math.Abs(TotalAllocation(n)-100) > 1e-9 {
		t.Errorf("expected total 100, got %v", TotalAllocation(n))
	}
	if n[0].WorkingAllocation != n[0].Allocation {
		t.Errorf("expected working allocation reset to new target")
	}
}

func TestValidateTooManyAssets(t *testing.T) {
	spec := ""
	for i := 0; i < 9; i++ {
		spec += "a" + string(rune('0'+i)) + ":10;"
	}
	p, err := Parse(spec, true)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if err := p.Validate(); !errors.Is(err, ErrTooManyAssets) {
		t.Fatalf("expected ErrTooManyAssets, got %v", err)
	}
}

func TestResetWorkingDoesNotAliasOriginal(t *testing.T) {
	p, _ := Parse("us_stocks:60;us_bonds:40", false)
	p[0].WorkingAllocation = 10
	reset := p.ResetWorking()
	if reset[0].WorkingAllocation != 60 {
		t.Errorf("expected working allocation reset to 60, got %v", reset[0].WorkingAllocation)
	}
	if p[0].WorkingAllocation != 10 {
		t.Errorf("ResetWorking should not mutate receiver")
	}
}
