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

package zwave

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/ZaparooProject/go-zwave/internal/syncutil"
)

// NodeStats aggregates resolved messages addressed to one node.
type NodeStats struct {
	Count    int
	Cans     int
	Bad      int // timed out or aborted
	Duration time.Duration
}

// MessageStats aggregates resolved messages. It is safe for concurrent use.
type MessageStats struct {
	mu        syncutil.Mutex
	processed int
	withCan   int
	cans      int
	duration  time.Duration
	byState   map[MessageState]int
	byNode    map[int]*NodeStats
}

// NewMessageStats creates an empty aggregate.
func NewMessageStats() *MessageStats {
	return &MessageStats{
		byState: make(map[MessageState]int),
		byNode:  make(map[int]*NodeStats),
	}
}

// Record folds a resolved message into the aggregate.
func (s *MessageStats) Record(m *Message) {
	state, cans, d := m.State(), m.Cans(), m.Duration()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.processed++
	s.cans += cans
	if cans > 0 {
		s.withCan++
	}
	s.duration += d
	s.byState[state]++

	ns, ok := s.byNode[m.Node]
	if !ok {
		ns = &NodeStats{}
		s.byNode[m.Node] = ns
	}
	ns.Count++
	ns.Cans += cans
	ns.Duration += d
	if state != MessageCompleted {
		ns.Bad++
	}
}

// StatsSnapshot is a point-in-time copy of MessageStats.
type StatsSnapshot struct {
	ByState   map[MessageState]int
	ByNode    map[int]NodeStats
	Processed int
	WithCan   int
	Cans      int
	Average   time.Duration
}

// Snapshot copies the current aggregate.
func (s *MessageStats) Snapshot() StatsSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := StatsSnapshot{
		Processed: s.processed,
		WithCan:   s.withCan,
		Cans:      s.cans,
		ByState:   make(map[MessageState]int, len(s.byState)),
		ByNode:    make(map[int]NodeStats, len(s.byNode)),
	}
	if s.processed > 0 {
		out.Average = s.duration / time.Duration(s.processed)
	}
	for k, v := range s.byState {
		out.ByState[k] = v
	}
	for k, v := range s.byNode {
		out.ByNode[k] = *v
	}
	return out
}

// String renders the snapshot as a multi-line report.
func (s StatsSnapshot) String() string {
	var sb strings.Builder
	_, _ = fmt.Fprintf(&sb, "processed: %d with-can: %d (total can: %d) avg-time: %s\n",
		s.Processed, s.WithCan, s.Cans, s.Average.Round(time.Millisecond))

	states := make([]MessageState, 0, len(s.ByState))
	for k := range s.ByState {
		states = append(states, k)
	}
	sort.Slice(states, func(i, j int) bool { return states[i] < states[j] })
	for _, st := range states {
		_, _ = fmt.Fprintf(&sb, "  %-10s %d\n", st, s.ByState[st])
	}

	nodes := make([]int, 0, len(s.ByNode))
	for k := range s.ByNode {
		nodes = append(nodes, k)
	}
	sort.Ints(nodes)
	for _, n := range nodes {
		ns := s.ByNode[n]
		avg := time.Duration(0)
		if ns.Count > 0 {
			avg = ns.Duration / time.Duration(ns.Count)
		}
		_, _ = fmt.Fprintf(&sb, "  node %3d: count=%d can=%d bad=%d avg=%s\n",
			n, ns.Count, ns.Cans, ns.Bad, avg.Round(time.Millisecond))
	}
	return sb.String()
}
