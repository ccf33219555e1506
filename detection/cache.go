// Copyright 2026 The Zaparoo Project Contributors.
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

package detection

import (
	"maps"
	"time"

	"github.com/ZaparooProject/go-zwave/internal/syncutil"
)

// A passive scan must never answer a later probing request, so results are
// stored per transport and mode.
type cacheKey struct {
	transport string
	mode      Mode
}

type cacheEntry struct {
	stored  time.Time
	devices []DeviceInfo
}

type resultCache struct {
	mu      syncutil.RWMutex
	entries map[cacheKey]cacheEntry
}

var cache = resultCache{entries: map[cacheKey]cacheEntry{}}

func (c *resultCache) get(k cacheKey, ttl time.Duration) ([]DeviceInfo, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[k]
	if !ok || time.Since(e.stored) > ttl {
		return nil, false
	}
	return cloneDevices(e.devices), true
}

func (c *resultCache) put(k cacheKey, devices []DeviceInfo) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[k] = cacheEntry{stored: time.Now(), devices: cloneDevices(devices)}
}

// drop removes the entries match selects; a nil match removes all of them.
func (c *resultCache) drop(match func(cacheKey) bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if match == nil {
		clear(c.entries)
		return
	}
	maps.DeleteFunc(c.entries, func(k cacheKey, _ cacheEntry) bool { return match(k) })
}

// cloneDevices copies the slice and each metadata map so callers can
// modify what they get back.
func cloneDevices(in []DeviceInfo) []DeviceInfo {
	if in == nil {
		return nil
	}
	out := make([]DeviceInfo, len(in))
	for i, d := range in {
		d.Metadata = maps.Clone(d.Metadata)
		out[i] = d
	}
	return out
}

func getCached(transport string, mode Mode, ttl time.Duration) ([]DeviceInfo, bool) {
	return cache.get(cacheKey{transport, mode}, ttl)
}

func setCached(transport string, mode Mode, devices []DeviceInfo) {
	cache.put(cacheKey{transport, mode}, devices)
}

func clearCache() { cache.drop(nil) }

func clearCacheForTransport(transport string) {
	cache.drop(func(k cacheKey) bool { return k.transport == transport })
}
