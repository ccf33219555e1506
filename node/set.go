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

	zwave "github.com/ZaparooProject/go-zwave"
	"github.com/ZaparooProject/go-zwave/command"
	"github.com/ZaparooProject/go-zwave/internal/syncutil"
)

// SetOption configures an EndpointSet.
type SetOption func(*EndpointSet)

// WithSecurityHook enables secure inclusion for every endpoint the set
// creates.
func WithSecurityHook(hook SecurityHook) SetOption {
	return func(s *EndpointSet) {
		s.security = hook
	}
}

// EndpointSet owns the endpoints of a network. It implements
// translator.Listener: register it with the translator to feed it.
type EndpointSet struct {
	sender     Sender
	security   SecurityHook
	endpoints  map[int]*Endpoint
	controller int
	mu         syncutil.RWMutex
}

// NewEndpointSet creates an empty set. controller is the node id of the
// local controller.
func NewEndpointSet(sender Sender, controller int, opts ...SetOption) *EndpointSet {
	s := &EndpointSet{
		sender:     sender,
		controller: controller,
		endpoints:  make(map[int]*Endpoint),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns the endpoint for id, creating it on first reference.
// Concurrent callers for the same id always receive the same endpoint.
func (s *EndpointSet) Get(id int) *Endpoint {
	s.mu.RLock()
	e, ok := s.endpoints[id]
	s.mu.RUnlock()
	if ok {
		return e
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.endpoints[id]; ok {
		return e
	}
	e = NewEndpoint(id, s.sender, id == s.controller)
	if s.security != nil {
		e.SetSecurityHook(s.security)
	}
	s.endpoints[id] = e
	return e
}

// Lookup returns the endpoint for id without creating it.
func (s *EndpointSet) Lookup(id int) (*Endpoint, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.endpoints[id]
	return e, ok
}

// Drop forgets an endpoint, e.g. after the node was excluded.
func (s *EndpointSet) Drop(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.endpoints, id)
}

// IDs returns the known endpoint ids in ascending order.
func (s *EndpointSet) IDs() []int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Sorted(maps.Keys(s.endpoints))
}

// All returns the known endpoints ordered by id.
func (s *EndpointSet) All() []*Endpoint {
	ids := s.IDs()
	out := make([]*Endpoint, 0, len(ids))
	for _, id := range ids {
		if e, ok := s.Lookup(id); ok {
			out = append(out, e)
		}
	}
	return out
}

// Len returns the number of known endpoints.
func (s *EndpointSet) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.endpoints)
}

// OnEvent routes an event to its endpoint.
func (s *EndpointSet) OnEvent(id int, ts time.Time, key command.Key, values command.Values) {
	if id < 1 {
		zwave.Debugf("dropping %s for invalid endpoint %d", key, id)
		return
	}
	s.Get(id).Put(ts, key, values)
}
