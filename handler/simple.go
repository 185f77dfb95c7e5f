// Copyright 2021-2022
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/swr-sim/swr-api/engine"
	"github.com/swr-sim/swr-api/series"
)

// Simple serves GET /api/simple: one historical simulation over the
// requested scenario, answering every numeric field of aggregate.Result
// plus message/error (§6).
func Simple(store *series.Store, sim *engine.Engine) fiber.Handler {
	return func(c *fiber.Ctx) error {
		cfg, err := scenarioFromQuery(c.Context(), c, store, "simple")
		if err != nil {
			return writeError(c, err.Error())
		}

		result, err := sim.Simulate(c.Context(), cfg)
		if err != nil {
			return writeError(c, err.Error())
		}

		return writeResults(c, result)
	}
}
