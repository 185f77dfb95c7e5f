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

// Package router wires the HTTP surface's three endpoints onto a Fiber app.
package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/swr-sim/swr-api/engine"
	"github.com/swr-sim/swr-api/handler"
	"github.com/swr-sim/swr-api/series"
)

// SetupRoutes wires /api/simple, /api/retirement, and /api/fi_planner onto
// app, backed by the shared series store and simulation engine.
func SetupRoutes(app *fiber.App, store *series.Store, sim *engine.Engine) {
	api := app.Group("/api")

	api.Get("/simple", handler.Simple(store, sim))
	api.Get("/retirement", handler.Retirement(store, sim))
	api.Get("/fi_planner", handler.FiPlanner(store, sim))
}
