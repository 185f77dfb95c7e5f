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
	"context"
	"strings"
	"testing"
)

func TestParseCSVStripsThousands(t *testing.T) {
	csv := "1,2020,100\n2,2020,\"1,234.56\"\n3,2020,1250\n"
	s, err := parseCSV("test", strings.NewReader(csv))
	if err != nil {
		t.Fatalf("parseCSV returned error: %v", err)
	}
	if len(s.Points) != 3 {
		t.Fatalf("expected 3 points, got %d", len(s.Points))
	}
	if s.Points[1].Value != 1234.56 {
		t.Errorf("expected 1234.56, got %v", s.Points[1].Value)
	}
}

func TestNormalizeTrimsAndRescales(t *testing.T) {
	s := &DataSeries{Name: "x", Points: []DataPoint{
		{Year: 2019, Month: 11, Value: 50},
		{Year: 2019, Month: 12, Value: 55},
		{Year: 2020, Month: 1, Value: 100},
		{Year: 2020, Month: 2, Value: 110},
		{Year: 2020, Month: 3, Value: 120},
	}}
	for m := 4; m <= 12; m++ {
		s.Points = append(s.Points, DataPoint{Year: 2020, Month: uint8(m), Value: 120})
	}
	s.Points = append(s.Points, DataPoint{Year: 2021, Month: 1, Value: 130})
	s.buildIndex()

	n := Normalize(s)

	if len(n.Points) != 12 || n.Points[0].Month != 1 || n.Points[len(n.Points)-1].Month != 12 {
		t.Fatalf("unexpected trimmed bounds: %+v", n.Points)
	}
	if n.Points[0].Value != 1.0 {
		t.Errorf("expected rescaled first value 1.0, got %v", n.Points[0].Value)
	}
	want := 110.0 / 100.0
	got := n.Points[1].Value / n.Points[0].Value
	if diff := got - want; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("ratio not preserved: got %v want %v", got, want)
	}
}

func TestToReturnsFirstValueIsOne(t *testing.T) {
	s := &DataSeries{Name: "x", Points: []DataPoint{
		{Year: 2020, Month: 1, Value: 1.0},
		{Year: 2020, Month: 2, Value: 1.1},
		{Year: 2020, Month: 3, Value: 1.21},
	}}
	s.buildIndex()

	r := ToReturns(s)
	if r.Points[0].Value != 1.0 {
		t.Errorf("expected 1.0 at index 0, got %v", r.Points[0].Value)
	}
	if diff := r.Points[1].Value - 1.1; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("expected 1.1 return, got %v", r.Points[1].Value)
	}
}

func TestInvertReciprocal(t *testing.T) {
	s := &DataSeries{Name: "x", Points: []DataPoint{{Year: 2020, Month: 1, Value: 4.0}}}
	s.buildIndex()
	inv := Invert(s)
	if inv.Points[0].Value != 0.25 {
		t.Errorf("expected 0.25, got %v", inv.Points[0].Value)
	}
}

func TestValueAtAndGetStart(t *testing.T) {
	s := &DataSeries{Name: "x", Points: []DataPoint{
		{Year: 2020, Month: 1, Value: 1.0},
		{Year: 2020, Month: 2, Value: 1.1},
	}}
	s.buildIndex()

	v, ok := s.ValueAt(1)
	if !ok || v != 1.1 {
		t.Fatalf("expected (1.1,true), got (%v,%v)", v, ok)
	}

	idx, ok := s.GetStart(2020, 2)
	if !ok || idx != 1 {
		t.Fatalf("expected (1,true), got (%v,%v)", idx, ok)
	}

	if s.IsStartValid(2021, 1) {
		t.Errorf("expected invalid start")
	}
}

func TestLoadInflationNoInflationSentinel(t *testing.T) {
	st := NewStore(t.TempDir(), 8)
	ref := &DataSeries{Name: "us_stocks", Points: []DataPoint{
		{Year: 2020, Month: 1, Value: 1.02},
		{Year: 2020, Month: 2, Value: 0.98},
	}}
	ref.buildIndex()

	neutral, err := st.LoadInflation(context.Background(), NoInflationSentinel, ref)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, p := range neutral.Points {
		if p.Value != 1.0 {
			t.Errorf("expected neutral inflation value 1.0, got %v", p.Value)
		}
	}
}

func TestFabricateDoubledPreservesValues(t *testing.T) {
	var pts []DataPoint
	for m := 1; m <= 12; m++ {
		pts = append(pts, DataPoint{Year: 2020, Month: uint8(m), Value: 1.0 + 0.05*float64(m-1)})
	}
	norm := &DataSeries{Name: "us_stocks", Points: pts}
	norm.buildIndex()

	doubled := fabricateDoubled(norm)
	if len(doubled.Points) != 24 {
		t.Fatalf("expected 24 points, got %d", len(doubled.Points))
	}
	if doubled.Points[12].Value != norm.Points[0].Value || doubled.Points[13].Value != norm.Points[1].Value {
		t.Errorf("expected duplicated values to match original tail")
	}
}
