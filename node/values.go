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

package node

import (
	"maps"
	"slices"
	"time"

	"github.com/ZaparooProject/go-zwave/command"
	"github.com/ZaparooProject/go-zwave/internal/syncutil"
)

// Command class version markers kept in the version map.
const (
	// NoVersion marks a class the endpoint announced but whose version has
	// not been reported yet.
	NoVersion = -1
	// BadVersion is what an endpoint reports for a class it does not
	// support.
	BadVersion = 0
)

// Entry is one cached value with the time it was received.
type Entry struct {
	Time   time.Time
	Values command.Values
}

// SubKey selects one value of a map-valued command: a class, parameter,
// group, scene or user number in ID, plus the unit for sensor and meter
// readings.
type SubKey struct {
	ID   int
	Unit int
}

// ValueCache holds the most recent value of every command an endpoint
// reported. Commands that answer a parameterised Get are kept per SubKey;
// everything else keeps a single value. No history is retained.
type ValueCache struct {
	values map[command.Key]Entry
	maps   map[command.Key]map[SubKey]Entry
	mu     syncutil.RWMutex
}

// NewValueCache creates an empty cache.
func NewValueCache() *ValueCache {
	return &ValueCache{
		values: make(map[command.Key]Entry),
		maps:   make(map[command.Key]map[SubKey]Entry),
	}
}

// Set stores the single value of key. A value older than the stored one
// is ignored.
func (c *ValueCache) Set(ts time.Time, key command.Key, v command.Values) {
	if v == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if old, ok := c.values[key]; ok && ts.Before(old.Time) {
		return
	}
	c.values[key] = Entry{Time: ts, Values: v}
}

// SetMapEntry stores the value of key for one subkey. A value older than
// the stored one is ignored.
func (c *ValueCache) SetMapEntry(ts time.Time, key command.Key, sub SubKey, v command.Values) {
	if v == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	m := c.maps[key]
	if m == nil {
		m = make(map[SubKey]Entry)
		c.maps[key] = m
	}
	if old, ok := m[sub]; ok && ts.Before(old.Time) {
		return
	}
	m[sub] = Entry{Time: ts, Values: v}
}

// HasValue reports whether a single value is stored for key.
func (c *ValueCache) HasValue(key command.Key) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.values[key]
	return ok
}

// Get returns the single value of key, or nil.
func (c *ValueCache) Get(key command.Key) command.Values {
	e, _ := c.GetEntry(key)
	return e.Values
}

// GetEntry returns the single value of key with its timestamp.
func (c *ValueCache) GetEntry(key command.Key) (Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.values[key]
	return e, ok
}

// GetMap returns a copy of the per-subkey values of key.
func (c *ValueCache) GetMap(key command.Key) map[SubKey]Entry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return maps.Clone(c.maps[key])
}

// GetMapEntry returns the value of key for one subkey.
func (c *ValueCache) GetMapEntry(key command.Key, sub SubKey) (Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.maps[key][sub]
	return e, ok
}

// Keys returns the keys that have a single value, sorted.
func (c *ValueCache) Keys() []command.Key {
	c.mu.RLock()
	defer c.mu.RUnlock()
	keys := slices.Collect(maps.Keys(c.values))
	slices.SortFunc(keys, compareKeys)
	return keys
}

func compareKeys(a, b command.Key) int {
	if a.Class != b.Class {
		return int(a.Class) - int(b.Class)
	}
	return int(a.Command) - int(b.Command)
}

func sortedSubKeys[V any](m map[SubKey]V) []SubKey {
	keys := slices.Collect(maps.Keys(m))
	slices.SortFunc(keys, func(a, b SubKey) int {
		if a.ID != b.ID {
			return a.ID - b.ID
		}
		return a.Unit - b.Unit
	})
	return keys
}

// =============================================================================
// Command classes
// =============================================================================

func classKey(c command.Class) SubKey {
	return SubKey{ID: int(c)}
}

// CommandVersion returns the stored version of a class: NoVersion when the
// class was announced but not queried, BadVersion when it is unsupported.
func (c *ValueCache) CommandVersion(class command.Class) (int, bool) {
	e, ok := c.GetMapEntry(command.VersionCommandClassReport, classKey(class))
	if !ok {
		return 0, false
	}
	v, _ := e.Values.Int("version")
	return v, true
}

// HasCommandClass reports whether the endpoint is known to support class.
func (c *ValueCache) HasCommandClass(class command.Class) bool {
	v, ok := c.CommandVersion(class)
	return ok && v != BadVersion
}

// markUnversioned records class as announced unless anything is known
// about it already.
func (c *ValueCache) markUnversioned(class command.Class) {
	c.mu.Lock()
	defer c.mu.Unlock()
	m := c.maps[command.VersionCommandClassReport]
	if m == nil {
		m = make(map[SubKey]Entry)
		c.maps[command.VersionCommandClassReport] = m
	}
	if _, ok := m[classKey(class)]; ok {
		return
	}
	m[classKey(class)] = Entry{Values: command.Values{"class": int(class), "version": NoVersion}}
}

// Classes returns every class in the version map, sorted.
func (c *ValueCache) Classes() []command.Class {
	m := c.GetMap(command.VersionCommandClassReport)
	out := make([]command.Class, 0, len(m))
	for _, k := range sortedSubKeys(m) {
		out = append(out, command.Class(k.ID))
	}
	return out
}

// NumCommands returns the number of classes in the version map.
func (c *ValueCache) NumCommands() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.maps[command.VersionCommandClassReport])
}

// HasAlternativeForBasic reports whether a switch class can be used
// instead of Basic.
func (c *ValueCache) HasAlternativeForBasic() bool {
	_, bin := c.CommandVersion(command.ClassSwitchBinary)
	_, multi := c.CommandVersion(command.ClassSwitchMultilevel)
	return bin || multi
}
