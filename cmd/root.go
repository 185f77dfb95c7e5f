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

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/swr-sim/swr-api/common"
)

func init() {
	viper.BindEnv("data.dir", "SWR_DATA_DIR")
	rootCmd.PersistentFlags().String("data-dir", "stock-data", "Directory holding asset/inflation CSV files")
	viper.BindPFlag("data.dir", rootCmd.PersistentFlags().Lookup("data-dir"))

	viper.BindEnv("cache.size", "SWR_CACHE_SIZE")
	rootCmd.PersistentFlags().Int("cache-size", 256, "Number of series/results to hold in the local LRU cache")
	viper.BindPFlag("cache.size", rootCmd.PersistentFlags().Lookup("cache-size"))

	viper.BindEnv("cache.redis", "SWR_CACHE_REDIS")
	rootCmd.PersistentFlags().Bool("cache-redis", false, "Enable a Redis-backed second cache tier")
	viper.BindPFlag("cache.redis", rootCmd.PersistentFlags().Lookup("cache-redis"))

	viper.BindEnv("cache.redis_url", "SWR_CACHE_REDIS_URL")
	rootCmd.PersistentFlags().String("cache-redis-url", "redis://localhost:6379/0", "Redis connection string, used when --cache-redis is set")
	viper.BindPFlag("cache.redis_url", rootCmd.PersistentFlags().Lookup("cache-redis-url"))

	viper.BindEnv("log.level", "SWR_LOG_LEVEL")
	rootCmd.PersistentFlags().String("log-level", "warning", "Logging level")
	viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))

	viper.BindEnv("log.output", "SWR_LOG_OUTPUT")
	rootCmd.PersistentFlags().String("log-output", "stdout", "Write logs to specified output: a file path, `stdout`, or `stderr`")
	viper.BindPFlag("log.output", rootCmd.PersistentFlags().Lookup("log-output"))

	viper.BindEnv("log.report_caller", "SWR_LOG_REPORT_CALLER")
	rootCmd.PersistentFlags().Bool("log-report-caller", false, "Log the function name that emitted each log line")
	viper.BindPFlag("log.report_caller", rootCmd.PersistentFlags().Lookup("log-report-caller"))

	cobra.OnInitialize(common.SetupLogging)
}

var rootCmd = &cobra.Command{
	Use:     "swr",
	Version: common.CurrentVersion.String(),
	Short:   "Historical safe-withdrawal-rate retirement simulator",
	Long:    `Simulate retirement withdrawal strategies against historical asset return sequences.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
