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

package scenario

import "errors"

// Taxonomy from §7: one sentinel per named failure mode. These never panic
// out of the kernel; the engine facade catches them and populates
// Result.Message/Result.Error instead.
var (
	ErrMissingData       = errors.New("missing data")
	ErrInvalidPeriod     = errors.New("invalid period")
	ErrOutOfRange        = errors.New("requested period out of range")
	ErrConfigurationError = errors.New("invalid scenario configuration")
	ErrTimeout           = errors.New("simulation timed out")
)
