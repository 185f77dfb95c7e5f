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

// Package handler implements the HTTP surface: /api/simple, /api/retirement,
// /api/fi_planner. Every endpoint always answers HTTP 200 and carries its
// own success/failure signal in the body's "error" field, per §7's "at the
// HTTP boundary, any error Result becomes a JSON error response with HTTP
// 200" propagation policy.
package handler

import "github.com/gofiber/fiber/v2"

// envelope wraps every response under a "results" key, matching the shape
// `{"results":{...}}` spec §6 requires for both success and error bodies.
type envelope struct {
	Results interface{} `json:"results"`
}

// writeResults answers 200 with body wrapped under "results".
func writeResults(c *fiber.Ctx, results interface{}) error {
	return c.Status(fiber.StatusOK).JSON(envelope{Results: results})
}

// errorResult is the `{"message":"…","error":true}` shape used whenever
// request parsing fails before a scenario.ScenarioConfig can even be built
// (the engine itself already returns this shape from a bad ScenarioConfig).
type errorResult struct {
	Message string `json:"message"`
	Error   bool   `json:"error"`
}

func writeError(c *fiber.Ctx, message string) error {
	return writeResults(c, errorResult{Message: message, Error: true})
}
