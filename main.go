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

package main

import (
	"github.com/spf13/viper"

	"github.com/swr-sim/swr-api/cmd"
)

func configureViper() {
	viper.SetConfigName("config")
	viper.SetConfigType("toml")
	viper.AddConfigPath("/etc/swr-api/")
	viper.AddConfigPath("$HOME/.config/swr-api")
	viper.AddConfigPath(".")

	viper.SetEnvPrefix("SWR")
	viper.AutomaticEnv()

	// Config file is optional: CLI flags and environment variables cover
	// every setting on their own.
	_ = viper.ReadInConfig()
}

func main() {
	configureViper()
	cmd.Execute()
}
