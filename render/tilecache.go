/*
 Copyright 2019 - 2025 Crunchy Data Solutions, Inc.
 Licensed under the Apache License, Version 2.0 (the "License");
 you may not use this file except in compliance with the License.
 You may obtain a copy of the License at
      http://www.apache.org/licenses/LICENSE-2.0
 Unless required by applicable law or agreed to in writing, software
 distributed under the License is distributed on an "AS IS" BASIS,
 WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 See the License for the specific language governing permissions and
 limitations under the License.
*/

package render

import (
	"context"
	"fmt"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
	log "github.com/sirupsen/logrus"
)

// TileCache provides thread-safe LRU caching for rendered tile images,
// grounded on tobilg-duckdb-tileserver/internal/cache/lru.go's
// TileCache, generalized from []byte MVT payloads to rendered image
// bytes (PNG-encoded canvases).
type TileCache struct {
	cache       *lru.Cache[string, []byte]
	enabled     bool
	maxMemoryMB int64

	hits         atomic.Int64
	misses       atomic.Int64
	evictions    atomic.Int64
	currentSize  atomic.Int64
	currentBytes atomic.Int64
}

// Stats reports cache counters.
type Stats struct {
	Hits        int64   `json:"hits"`
	Misses      int64   `json:"misses"`
	Evictions   int64   `json:"evictions"`
	Size        int     `json:"size"`
	MemoryBytes int64   `json:"memory_bytes"`
	HitRate     float64 `json:"hit_rate"`
}

// NewTileCache creates an LRU tile cache bounded by item count. Total
// memory is tracked against maxMemoryMB but not enforced: a Set that
// exceeds it only logs a debug message and still stores the tile.
func NewTileCache(maxItems int, maxMemoryMB int) (*TileCache, error) {
	if maxItems <= 0 {
		return nil, fmt.Errorf("render: maxItems must be positive, got %d", maxItems)
	}
	tc := &TileCache{enabled: true, maxMemoryMB: int64(maxMemoryMB)}
	cache, err := lru.NewWithEvict(maxItems, tc.onEvict)
	if err != nil {
		return nil, err
	}
	tc.cache = cache
	log.Infof("render: tile cache initialized max_items=%d max_memory=%dMB", maxItems, maxMemoryMB)
	return tc, nil
}

// NewDisabledCache returns a cache that always misses, for callers
// that want to run the render path without caching.
func NewDisabledCache() *TileCache {
	return &TileCache{enabled: false}
}

// Get retrieves a rendered tile's bytes.
func (tc *TileCache) Get(ctx context.Context, key string) ([]byte, bool) {
	if !tc.enabled {
		return nil, false
	}
	tile, ok := tc.cache.Get(key)
	if ok {
		tc.hits.Add(1)
		log.Debugf("render: cache hit %s", key)
		return tile, true
	}
	tc.misses.Add(1)
	log.Debugf("render: cache miss %s", key)
	return nil, false
}

// Set stores a rendered tile's bytes under key.
func (tc *TileCache) Set(ctx context.Context, key string, data []byte) error {
	if !tc.enabled || len(data) == 0 {
		return nil
	}
	tileSize := int64(len(data))
	if tc.maxMemoryMB > 0 {
		currentMB := tc.currentBytes.Load() / 1024 / 1024
		tileMB := tileSize / 1024 / 1024
		if currentMB+tileMB > tc.maxMemoryMB {
			log.Debugf("render: cache memory limit exceeded")
		}
	}
	tileCopy := make([]byte, len(data))
	copy(tileCopy, data)
	tc.cache.Add(key, tileCopy)
	tc.currentBytes.Add(tileSize)
	tc.currentSize.Add(1)
	log.Debugf("render: cache set %s (%d bytes)", key, tileSize)
	return nil
}

func (tc *TileCache) onEvict(key string, value []byte) {
	tc.evictions.Add(1)
	tc.currentSize.Add(-1)
	tc.currentBytes.Add(-int64(len(value)))
	log.Debugf("render: cache evict %s", key)
}

// Clear empties the cache.
func (tc *TileCache) Clear() {
	if !tc.enabled {
		return
	}
	tc.cache.Purge()
	tc.currentSize.Store(0)
	tc.currentBytes.Store(0)
	log.Info("render: tile cache cleared")
}

// Stats reports current counters.
func (tc *TileCache) Stats() Stats {
	if !tc.enabled {
		return Stats{}
	}
	hits := tc.hits.Load()
	misses := tc.misses.Load()
	total := hits + misses
	hitRate := 0.0
	if total > 0 {
		hitRate = float64(hits) / float64(total) * 100.0
	}
	return Stats{
		Hits:        hits,
		Misses:      misses,
		Evictions:   tc.evictions.Load(),
		Size:        tc.cache.Len(),
		MemoryBytes: tc.currentBytes.Load(),
		HitRate:     hitRate,
	}
}

// Enabled reports whether the cache is active.
func (tc *TileCache) Enabled() bool {
	return tc.enabled
}
