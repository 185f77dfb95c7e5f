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

package engine

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/swr-sim/swr-api/aggregate"
	"github.com/swr-sim/swr-api/scenario"
)

// RunMany runs every scenario concurrently, per §5: each worker gets its
// own cloned ScenarioConfig (series references shared read-only), kernels
// never suspend or share mutable state, so a bounded worker pool is all the
// coordination needed. Results are returned in the same order as configs.
func (e *Engine) RunMany(ctx context.Context, configs []*scenario.ScenarioConfig) ([]*aggregate.Result, error) {
	results := make([]*aggregate.Result, len(configs))

	sem := semaphore.NewWeighted(int64(runtime.GOMAXPROCS(0)))
	g, gctx := errgroup.WithContext(ctx)

	for i, cfg := range configs {
		i, cfg := i, cfg.Clone()

		if err := sem.Acquire(gctx, 1); err != nil {
			break
		}

		g.Go(func() error {
			defer sem.Release(1)

			result, err := e.Simulate(gctx, cfg)
			if err != nil {
				return err
			}
			results[i] = result
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}
