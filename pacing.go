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
	"sync/atomic"
	"time"
)

// pacer holds the per-node send delay. It is owned by the send goroutine;
// other goroutines read the published snapshot.
type pacer struct {
	delays   map[int]time.Duration
	snapshot atomic.Pointer[map[int]time.Duration]
	step     time.Duration
	ceiling  time.Duration
}

func newPacer(step, ceiling time.Duration) *pacer {
	p := &pacer{
		delays:  make(map[int]time.Duration),
		step:    step,
		ceiling: ceiling,
	}
	p.publish()
	return p
}

// delay returns the wait to apply before sending to node.
func (p *pacer) delay(node int) time.Duration {
	return p.delays[node]
}

// update backs off a node whose last message needed a retry or never
// resolved, and relaxes it otherwise.
func (p *pacer) update(node int, troubled bool) {
	if node == NodeNone {
		return
	}
	cur := p.delays[node]
	next := cur
	if troubled {
		next = min(cur+p.step, p.ceiling)
	} else {
		next = max(cur-p.step, 0)
	}
	if next == cur {
		return
	}
	if next == 0 {
		delete(p.delays, node)
	} else {
		p.delays[node] = next
	}
	p.publish()
}

func (p *pacer) publish() {
	snap := make(map[int]time.Duration, len(p.delays))
	for k, v := range p.delays {
		snap[k] = v
	}
	p.snapshot.Store(&snap)
}

// load returns the last published delays. The map must not be modified.
func (p *pacer) load() map[int]time.Duration {
	return *p.snapshot.Load()
}
