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
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"

	"github.com/swr-sim/swr-api/common"
)

// NoInflationSentinel names the neutral inflator requested in place of a
// real inflation series.
const NoInflationSentinel = "no_inflation"

// TickerSuffixDoubled triggers the fabricated-doubled-history extension.
const TickerSuffixDoubled = "_x2"

// Store loads monthly series from CSV and caches them by name. It replaces
// the source's process-wide mutable map with a load-time mutex-guarded
// cache owned by one instance per process, per §9's "cache + mutex for
// series" design note: loaders are idempotent, and the mutex only ever
// guards a read-modify-write of the cache, never the hot simulation loop.
type Store struct {
	mu       sync.Mutex
	cache    *common.TieredCache
	baseDir  string
	inMemory map[string]*DataSeries
}

// NewStore constructs a Store rooted at baseDir (default "stock-data"),
// backed by a TieredCache of `cacheSize` local entries.
func NewStore(baseDir string, cacheSize int) *Store {
	if baseDir == "" {
		baseDir = "stock-data"
	}
	return &Store{
		cache:    common.NewTieredCache(cacheSize),
		baseDir:  baseDir,
		inMemory: make(map[string]*DataSeries),
	}
}

// Load reads stock-data/{name}.csv, caching the parsed (not yet normalized)
// series by name. Each line is "month,year,value"; value may be quoted and
// contain embedded thousands-separator commas that must be stripped.
func (st *Store) Load(ctx context.Context, name string) (*DataSeries, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	if s, ok := st.inMemory[name]; ok {
		return s, nil
	}

	if raw, ok := st.cache.Get(name); ok {
		s := &DataSeries{}
		if err := json.Unmarshal(raw, s); err != nil {
			log.Warn().Err(err).Str("Series", name).Msg("could not decode cached series, reloading")
		} else {
			s.buildIndex()
			st.inMemory[name] = s
			return s, nil
		}
	}

	s, err := st.loadFromDisk(name)
	if err != nil {
		return nil, err
	}

	st.inMemory[name] = s
	if raw, err := json.Marshal(s); err == nil {
		if err := st.cache.Set(name, raw); err != nil {
			log.Warn().Err(err).Str("Series", name).Msg("could not populate series cache")
		}
	}

	return s, nil
}

// Refresh drops every in-memory series so the next Load re-reads from disk
// (and repopulates the tiered cache), picking up CSV edits without a
// process restart.
func (st *Store) Refresh() {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.inMemory = make(map[string]*DataSeries)
}

func (st *Store) loadFromDisk(name string) (*DataSeries, error) {
	path := filepath.Join(st.baseDir, name+".csv")

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrMissingData, name)
	}
	defer f.Close()

	return parseCSV(name, f)
}

func parseCSV(name string, r io.Reader) (*DataSeries, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	lines := strings.Split(string(data), "\n")
	pts := make([]DataPoint, 0, len(lines))

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		fields := strings.Split(line, ",")
		fields = rejoinQuotedValue(fields)
		if len(fields) < 3 {
			return nil, fmt.Errorf("%w: %q", ErrBadLine, line)
		}

		month, err := strconv.Atoi(strings.TrimSpace(fields[0]))
		if err != nil || month < 1 || month > 12 {
			return nil, fmt.Errorf("%w: %q", ErrInvalidMonth, fields[0])
		}

		year, err := strconv.Atoi(strings.TrimSpace(fields[1]))
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrBadLine, fields[1])
		}

		valueStr := stripThousands(fields[2])
		value, err := strconv.ParseFloat(valueStr, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrBadValue, fields[2])
		}

		pts = append(pts, DataPoint{Year: uint(year), Month: uint8(month), Value: value})
	}

	if len(pts) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptySeries, name)
	}

	s := &DataSeries{Name: name, Points: pts}
	s.buildIndex()
	return s, nil
}

// rejoinQuotedValue re-joins any comma-separated fragments after field index
// 1 that originated from a quoted value column containing thousands
// separators, e.g. `3,2021,"1,234.56"` split naively into 4 fields.
func rejoinQuotedValue(fields []string) []string {
	if len(fields) <= 3 {
		return fields
	}
	value := strings.Join(fields[2:], ",")
	return []string{fields[0], fields[1], value}
}

func stripThousands(v string) string {
	v = strings.TrimSpace(v)
	v = strings.Trim(v, `"`)
	v = strings.ReplaceAll(v, ",", "")
	return v
}

// LoadPortfolioSeries loads one return series per asset name: each asset's
// price history is normalized then converted to monthly multiplicative
// returns, since the kernel's monthly step multiplies current_values by
// return_series[i][t].value directly (§4.5.3 step 1). An asset ending in
// TickerSuffixDoubled loads the base series and fabricates a doubled-length
// price history before that conversion: a back-dated duplicate prefix
// followed by the original, a synthetic extension kept literal per §9 (not
// "corrected").
func (st *Store) LoadPortfolioSeries(ctx context.Context, assets []string) (map[string]*DataSeries, error) {
	out := make(map[string]*DataSeries, len(assets))

	for _, asset := range assets {
		if strings.HasSuffix(asset, TickerSuffixDoubled) {
			base := strings.TrimSuffix(asset, TickerSuffixDoubled)
			s, err := st.Load(ctx, base)
			if err != nil {
				return nil, err
			}
			out[asset] = ToReturns(fabricateDoubled(s))
			continue
		}

		s, err := st.Load(ctx, asset)
		if err != nil {
			return nil, err
		}
		out[asset] = ToReturns(Normalize(s))
	}

	return out, nil
}

// fabricateDoubled concatenates a back-dated duplicate of s before s itself,
// back-dating the duplicate month-by-month so the combined series is
// contiguous; the normalized values in the duplicate prefix are copied verbatim
// from the original, per the literal source semantics §9 calls out.
func fabricateDoubled(s *DataSeries) *DataSeries {
	norm := Normalize(s)
	n := len(norm.Points)
	if n == 0 {
		return norm
	}

	totalMonths := 2 * n
	firstYear := norm.Points[0].Year
	backYears := (n + 11) / 12
	startYear := firstYear - uint(backYears)

	combined := make([]DataPoint, 0, totalMonths)
	month := uint8(1)
	year := startYear
	for i := 0; i < n; i++ {
		combined = append(combined, DataPoint{Year: year, Month: month, Value: norm.Points[i].Value})
		month++
		if month > 12 {
			month = 1
			year++
		}
	}
	combined = append(combined, norm.Points...)

	out := &DataSeries{Name: s.Name + TickerSuffixDoubled, Points: combined}
	out.buildIndex()
	return out
}

// LoadInflation loads and normalizes an inflation series, converting it to
// returns, unless name is NoInflationSentinel, in which case a neutral
// series (every value 1.0) is fabricated by cloning the shape of
// referenceAsset.
func (st *Store) LoadInflation(ctx context.Context, name string, referenceAsset *DataSeries) (*DataSeries, error) {
	if name == NoInflationSentinel {
		neutral := referenceAsset.Clone()
		neutral.Name = NoInflationSentinel
		for i := range neutral.Points {
			neutral.Points[i].Value = 1.0
		}
		neutral.buildIndex()
		return neutral, nil
	}

	s, err := st.Load(ctx, name)
	if err != nil {
		return nil, err
	}

	return ToReturns(Normalize(s)), nil
}
