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
	"container/heap"
	"fmt"
	"sync"

	"github.com/ZaparooProject/go-zwave/internal/syncutil"
)

// Priority levels, highest first.
const (
	LevelController = 1
	LevelNodeHi     = 2
	LevelNodeLo     = 3
	LevelLowest     = 1000
)

// Priority orders outbound messages by (Level, Seq, Node). Seq is assigned
// by the queue on Push.
type Priority struct {
	Level int
	Seq   int64
	Node  int
}

// ControllerPriority is used for controller-local queries and pairing.
func ControllerPriority() Priority {
	return Priority{Level: LevelController}
}

// NodePriorityHi is used for user-initiated and discovery-critical traffic.
func NodePriorityHi(node int) Priority {
	return Priority{Level: LevelNodeHi, Node: node}
}

// NodePriorityLo is used for background refresh traffic.
func NodePriorityLo(node int) Priority {
	return Priority{Level: LevelNodeLo, Node: node}
}

// LowestPriority is used for barriers.
func LowestPriority() Priority {
	return Priority{Level: LevelLowest}
}

// Less reports whether p sorts before o.
func (p Priority) Less(o Priority) bool {
	if p.Level != o.Level {
		return p.Level < o.Level
	}
	if p.Seq != o.Seq {
		return p.Seq < o.Seq
	}
	return p.Node < o.Node
}

func (p Priority) String() string {
	return fmt.Sprintf("(%d,%d,%d)", p.Level, p.Seq, p.Node)
}

type queueItem struct {
	msg   *Message
	order int64
}

type messageHeap []queueItem

func (h messageHeap) Len() int { return len(h) }
func (h messageHeap) Less(i, j int) bool {
	if h[i].msg.Priority == h[j].msg.Priority {
		return h[i].order < h[j].order
	}
	return h[i].msg.Priority.Less(h[j].msg.Priority)
}
func (h messageHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *messageHeap) Push(x any)   { *h = append(*h, x.(queueItem)) } //nolint:forcetypeassert // heap contract
func (h *messageHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = queueItem{}
	*h = old[:n-1]
	return item
}

// OutboundQueue is the fairness-aware priority queue feeding the driver.
//
// Within the per-node levels each node keeps its own sequence counter. A push
// takes max(counter+1, floor) where floor is the sequence of the message most
// recently popped at that level. A node that floods the queue therefore only
// competes with messages enqueued after its backlog started draining.
type OutboundQueue struct {
	mu     syncutil.Mutex
	cond   *sync.Cond
	items  messageHeap
	counts map[int]map[int]int64 // level -> node -> last sequence
	floors map[int]int64         // level -> floor
	sizes  map[int]int           // target node -> queued messages
	seq    int64                 // global sequence for the other levels
	order  int64
	closed bool
}

// NewOutboundQueue creates an empty queue.
func NewOutboundQueue() *OutboundQueue {
	q := &OutboundQueue{
		sizes: make(map[int]int),
	}
	q.cond = sync.NewCond(&q.mu)
	q.resetFairness()
	return q
}

func (q *OutboundQueue) resetFairness() {
	q.counts = map[int]map[int]int64{
		LevelNodeHi: {},
		LevelNodeLo: {},
	}
	q.floors = map[int]int64{
		LevelNodeHi: 0,
		LevelNodeLo: 0,
	}
}

// Push enqueues a message, assigning its sequence number. It never blocks.
func (q *OutboundQueue) Push(m *Message) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return ErrQueueClosed
	}

	if len(q.items) == 0 {
		q.resetFairness()
	}

	p := m.Priority
	if counts, ok := q.counts[p.Level]; ok {
		next := counts[p.Node] + 1
		if floor := q.floors[p.Level]; floor > next {
			next = floor
		}
		counts[p.Node] = next
		p.Seq = next
	} else {
		p.Seq = q.seq
		q.seq++
	}
	m.Priority = p

	q.order++
	heap.Push(&q.items, queueItem{msg: m, order: q.order})
	q.sizes[m.Node]++
	q.cond.Signal()
	return nil
}

// Pop removes the highest priority message, blocking while the queue is
// empty. It returns false once the queue is closed and drained of waiters.
func (q *OutboundQueue) Pop() (*Message, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for len(q.items) == 0 && !q.closed {
		q.cond.Wait()
	}
	if q.closed {
		return nil, false
	}
	return q.popLocked(), true
}

// TryPop removes the highest priority message without blocking.
func (q *OutboundQueue) TryPop() (*Message, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return nil, false
	}
	return q.popLocked(), true
}

func (q *OutboundQueue) popLocked() *Message {
	item := heap.Pop(&q.items).(queueItem) //nolint:forcetypeassert // heap contract
	p := item.msg.Priority
	if _, ok := q.floors[p.Level]; ok {
		q.floors[p.Level] = p.Seq
	}
	q.sizes[item.msg.Node]--
	if q.sizes[item.msg.Node] <= 0 {
		delete(q.sizes, item.msg.Node)
	}
	return item.msg
}

// Len returns the number of queued messages.
func (q *OutboundQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// LenByEndpoint returns the number of queued messages per node.
func (q *OutboundQueue) LenByEndpoint() map[int]int {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make(map[int]int, len(q.sizes))
	for k, v := range q.sizes {
		out[k] = v
	}
	return out
}

// Close wakes any blocked Pop and rejects further pushes. Messages still
// queued are returned so the caller can resolve them.
func (q *OutboundQueue) Close() []*Message {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return nil
	}
	q.closed = true
	rest := make([]*Message, 0, len(q.items))
	for len(q.items) > 0 {
		rest = append(rest, q.popLocked())
	}
	q.cond.Broadcast()
	return rest
}
