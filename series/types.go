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

// DataPoint is one monthly observation. Value is either a normalized price
// (1.0 at the first kept month) or a monthly multiplicative return,
// depending on which stage of the pipeline produced the series.
type DataPoint struct {
	Year  uint    `json:"year"`
	Month uint8   `json:"month"`
	Value float64 `json:"value"`
}

// DataSeries is a named, ordered, gap-free run of monthly DataPoints. After
// Normalize the first point has Month==1 and the last has Month==12.
type DataSeries struct {
	Name   string      `json:"name"`
	Points []DataPoint `json:"points"`

	// index maps (year,month) to a position in Points, built once so
	// GetStart is O(1) instead of a linear scan. parseCSV, Normalize,
	// ToReturns and Invert each call buildIndex on the series they return;
	// GetStart builds it on first use when it is missing.
	index map[monthKey]int
}

type monthKey struct {
	year  uint
	month uint8
}

func (s *DataSeries) buildIndex() {
	s.index = make(map[monthKey]int, len(s.Points))
	for i, p := range s.Points {
		s.index[monthKey{p.Year, p.Month}] = i
	}
}

// ValueAt returns the value at an absolute month index (0-based position
// within Points), replacing the source's linear iterator-advance pattern
// with direct indexing.
func (s *DataSeries) ValueAt(absoluteMonthIndex int) (float64, bool) {
	if absoluteMonthIndex < 0 || absoluteMonthIndex >= len(s.Points) {
		return 0, false
	}
	return s.Points[absoluteMonthIndex].Value, true
}

// GetStart locates the index of the point matching (year, month).
func (s *DataSeries) GetStart(year uint, month uint8) (int, bool) {
	if s.index == nil {
		s.buildIndex()
	}
	idx, ok := s.index[monthKey{year, month}]
	return idx, ok
}

// IsStartValid reports whether a (year, month) start exists in the series.
func (s *DataSeries) IsStartValid(year uint, month uint8) bool {
	_, ok := s.GetStart(year, month)
	return ok
}

// Clone returns a deep copy; callers mutating a series (e.g. building a
// neutral inflation series) must not mutate a shared cached series.
func (s *DataSeries) Clone() *DataSeries {
	cp := &DataSeries{
		Name:   s.Name,
		Points: make([]DataPoint, len(s.Points)),
	}
	copy(cp.Points, s.Points)
	return cp
}

// Normalize trims partial leading/trailing years (front.month must be 1,
// back.month must be 12) and rescales so the first kept value is 1.0,
// preserving the ratios between consecutive months.
func Normalize(s *DataSeries) *DataSeries {
	pts := s.Points

	start := 0
	for start < len(pts) && pts[start].Month != 1 {
		start++
	}
	end := len(pts)
	for end > start && pts[end-1].Month != 12 {
		end--
	}

	trimmed := make([]DataPoint, end-start)
	copy(trimmed, pts[start:end])

	if len(trimmed) > 0 && trimmed[0].Value != 1.0 && trimmed[0].Value != 0 {
		scale := 1.0 / trimmed[0].Value
		for i := range trimmed {
			trimmed[i].Value *= scale
		}
	}

	out := &DataSeries{Name: s.Name, Points: trimmed}
	out.buildIndex()
	return out
}

// ToReturns replaces each value after index 0 with value[t]/value[t-1]; the
// value at index 0 stays 1.0 by convention, acting as the neutral first
// multiplier in a window that begins there.
func ToReturns(s *DataSeries) *DataSeries {
	out := s.Clone()
	for i := len(out.Points) - 1; i > 0; i-- {
		prev := s.Points[i-1].Value
		if prev == 0 {
			out.Points[i].Value = 0
			continue
		}
		out.Points[i].Value = s.Points[i].Value / prev
	}
	if len(out.Points) > 0 {
		out.Points[0].Value = 1.0
	}
	out.buildIndex()
	return out
}

// Invert replaces each value by its reciprocal, used on exchange-rate series
// before Normalize+ToReturns.
func Invert(s *DataSeries) *DataSeries {
	out := s.Clone()
	for i := range out.Points {
		if out.Points[i].Value != 0 {
			out.Points[i].Value = 1.0 / out.Points[i].Value
		}
	}
	out.buildIndex()
	return out
}
