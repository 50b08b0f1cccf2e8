// Copyright (c) 2026 Comicshelf. All rights reserved.
// Author: lin.kaiwen.tw@gmail.com

package comic

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/linkaiwen/comicshelf/internal/platform/constants"
)

// # Summary Cache (Redis)

// RedisSummaryCache implements SummaryCache on a shared Redis instance.
//
// Every method is fail-soft: Redis problems are logged at Warn and the caller
// proceeds as if the cache missed. The catalog is the source of truth.
type RedisSummaryCache struct {
	client *redis.Client
	logger *slog.Logger
}

// NewSummaryCache creates a Redis-backed summary cache.
func NewSummaryCache(client *redis.Client, logger *slog.Logger) *RedisSummaryCache {
	return &RedisSummaryCache{client: client, logger: logger}
}

/*
Get returns the cached summary list.

Parameters:
  - context: context.Context

Returns:
  - []Summary: The cached projection, nil on miss
  - bool: True on cache hit
*/
func (cache *RedisSummaryCache) Get(context context.Context) ([]Summary, bool) {

	// Fetch the serialized list
	payload, err := cache.client.Get(context, constants.RedisPrefixSummaries).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			cache.logger.Warn("summary cache read failed", "error", err)
		}
		return nil, false
	}

	// A corrupt entry is treated as a miss and evicted
	var summaries []Summary
	if err := json.Unmarshal(payload, &summaries); err != nil {
		cache.logger.Warn("summary cache entry corrupt, evicting", "error", err)
		cache.Invalidate(context)
		return nil, false
	}

	return summaries, true
}

/*
Set stores the summary list with the cache TTL.

Parameters:
  - context: context.Context
  - summaries: []Summary
*/
func (cache *RedisSummaryCache) Set(context context.Context, summaries []Summary) {

	payload, err := json.Marshal(summaries)
	if err != nil {
		cache.logger.Warn("summary cache encode failed", "error", err)
		return
	}

	if err := cache.client.Set(context, constants.RedisPrefixSummaries, payload, constants.SummaryCacheTTL).Err(); err != nil {
		cache.logger.Warn("summary cache write failed", "error", err)
	}
}

/*
Invalidate drops the cached list after a catalog mutation.

Parameters:
  - context: context.Context
*/
func (cache *RedisSummaryCache) Invalidate(context context.Context) {

	if err := cache.client.Del(context, constants.RedisPrefixSummaries).Err(); err != nil {
		cache.logger.Warn("summary cache invalidation failed", "error", err)
	}
}

// compile-time interface check
var _ SummaryCache = (*RedisSummaryCache)(nil)

// noopSummaryCache satisfies SummaryCache without storing anything.
// Used by tests and by deployments that run without Redis.
type noopSummaryCache struct{}

// NewNoopSummaryCache returns a cache that always misses.
func NewNoopSummaryCache() SummaryCache { return noopSummaryCache{} }

func (noopSummaryCache) Get(context.Context) ([]Summary, bool) { return nil, false }
func (noopSummaryCache) Set(context.Context, []Summary)        {}
func (noopSummaryCache) Invalidate(context.Context)            {}
