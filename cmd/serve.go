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
	"os/signal"
	"syscall"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/swr-sim/swr-api/middleware"
	"github.com/swr-sim/swr-api/router"
)

func init() {
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "server <host> <port>",
	Short: "Run the HTTP API server",
	Long:  `Start the Fiber HTTP server exposing /api/simple, /api/retirement, and /api/fi_planner.`,
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		host, port := args[0], args[1]

		store := getStore()
		sim := getEngine()

		app := fiber.New()

		app.Use(cors.New(cors.Config{
			AllowOrigins: "*",
			AllowHeaders: "*",
			AllowMethods: "GET,HEAD",
		}))
		app.Use(middleware.RequestLogger())

		router.SetupRoutes(app, store, sim)

		// Periodically drop the in-memory series cache so stale CSV edits on
		// disk are eventually picked up without a restart.
		scheduler := gocron.NewScheduler(time.UTC)
		scheduler.Every(1).Hours().Do(func() {
			log.Info().Msg("refreshing series cache")
			store.Refresh()
		})
		scheduler.StartAsync()

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		go func() {
			sig := <-sigCh
			fmt.Printf("received signal %q, shutting down\n", sig.String())
			if err := app.Shutdown(); err != nil {
				log.Fatal().Err(err).Msg("error during shutdown")
			}
		}()

		addr := host + ":" + port
		log.Info().Str("addr", addr).Msg("starting server")
		if err := app.Listen(addr); err != nil {
			log.Fatal().Err(err).Msg("server exited")
		}
	},
}
