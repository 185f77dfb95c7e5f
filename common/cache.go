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

package common

import (
	"context"
	"os"
	"time"

	"github.com/go-redis/redis/v8"
	lru "github.com/hashicorp/golang-lru"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// TieredCache is a local LRU cache backed by an optional Redis tier. It is
// used both by the series store (cached CSV-backed histories, keyed by
// series name) and by the engine's scenario-result memoization (keyed by a
// blake3 scenario hash). Values are lz4-compressed before crossing either
// tier, mirroring how the teacher compresses cached portfolio snapshots.
type TieredCache struct {
	local *lru.Cache
	rdb   *redis.Client
	ttl   time.Duration
}

// NewTieredCache builds a cache with `size` local entries. If
// viper.GetBool("cache.redis") is set, a Redis client is also constructed
// from "cache.redis_url"; entries are written through to it with the TTL in
// "cache.ttl" seconds (0 disables expiration).
func NewTieredCache(size int) *TieredCache {
	local, err := lru.New(size)
	if err != nil {
		log.Error().Err(err).Msg("could not create LRU cache")
		os.Exit(1)
	}

	tc := &TieredCache{local: local}

	if viper.GetBool("cache.redis") {
		opt, err := redis.ParseURL(viper.GetString("cache.redis_url"))
		if err != nil {
			log.Error().Err(err).Msg("could not parse redis URL; continuing with local cache only")
			return tc
		}
		tc.rdb = redis.NewClient(opt)
		tc.ttl = time.Duration(viper.GetInt("cache.ttl")) * time.Second
	}

	return tc
}

func (c *TieredCache) Set(key string, raw []byte) error {
	compressed, err := Compress(raw)
	if err != nil {
		return err
	}
	c.local.Add(key, compressed)

	if c.rdb != nil {
		return c.rdb.Set(context.Background(), key, compressed, c.ttl).Err()
	}
	return nil
}

func (c *TieredCache) Get(key string) ([]byte, bool) {
	if v, ok := c.local.Get(key); ok {
		raw, err := Decompress(v.([]byte))
		if err != nil {
			log.Warn().Err(err).Str("Key", key).Msg("could not decompress cached value")
			return nil, false
		}
		return raw, true
	}

	if c.rdb != nil {
		compressed, err := c.rdb.Get(context.Background(), key).Bytes()
		if err != nil {
			return nil, false
		}
		raw, err := Decompress(compressed)
		if err != nil {
			log.Warn().Err(err).Str("Key", key).Msg("could not decompress cached value")
			return nil, false
		}
		c.local.Add(key, compressed)
		return raw, true
	}

	return nil, false
}

func (c *TieredCache) Purge() {
	c.local.Purge()
}
