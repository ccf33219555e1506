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
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func queued(p Priority) *Message {
	return NewMessage(MakeRawMessage(FuncGetVersion, nil), p, nil, p.Node)
}

func popAll(t *testing.T, q *OutboundQueue) []*Message {
	t.Helper()
	var out []*Message
	for {
		m, ok := q.TryPop()
		if !ok {
			return out
		}
		out = append(out, m)
	}
}

func TestOutboundQueue_LevelOrder(t *testing.T) {
	t.Parallel()

	q := NewOutboundQueue()
	lo := queued(NodePriorityLo(4))
	hi := queued(NodePriorityHi(4))
	ctrl := queued(ControllerPriority())
	barrier := NewBarrier(nil)

	for _, m := range []*Message{barrier, lo, hi, ctrl} {
		require.NoError(t, q.Push(m))
	}

	assert.Equal(t, []*Message{ctrl, hi, lo, barrier}, popAll(t, q))
}

func TestOutboundQueue_FIFOPerNode(t *testing.T) {
	t.Parallel()

	q := NewOutboundQueue()
	var want []*Message
	for range 5 {
		m := queued(NodePriorityLo(9))
		want = append(want, m)
		require.NoError(t, q.Push(m))
	}
	assert.Equal(t, want, popAll(t, q))
}

func TestOutboundQueue_ControllerFIFO(t *testing.T) {
	t.Parallel()

	q := NewOutboundQueue()
	a := queued(ControllerPriority())
	b := queued(ControllerPriority())
	c := queued(ControllerPriority())
	for _, m := range []*Message{a, b, c} {
		require.NoError(t, q.Push(m))
	}
	assert.Equal(t, []*Message{a, b, c}, popAll(t, q))
}

func TestOutboundQueue_Interleaving(t *testing.T) {
	t.Parallel()

	q := NewOutboundQueue()
	// node 5 floods the queue before node 6 asks for anything
	a1, a2, a3 := queued(NodePriorityLo(5)), queued(NodePriorityLo(5)), queued(NodePriorityLo(5))
	b1, b2 := queued(NodePriorityLo(6)), queued(NodePriorityLo(6))
	for _, m := range []*Message{a1, a2, a3, b1, b2} {
		require.NoError(t, q.Push(m))
	}

	assert.Equal(t, []*Message{a1, b1, a2, b2, a3}, popAll(t, q))
}

func TestOutboundQueue_FloorAfterPop(t *testing.T) {
	t.Parallel()

	q := NewOutboundQueue()
	a1, a2, a3 := queued(NodePriorityLo(5)), queued(NodePriorityLo(5)), queued(NodePriorityLo(5))
	for _, m := range []*Message{a1, a2, a3} {
		require.NoError(t, q.Push(m))
	}

	m, ok := q.TryPop()
	require.True(t, ok)
	require.Equal(t, a1, m)

	// a late node starts at the floor and is served ahead of the backlog
	b1 := queued(NodePriorityLo(6))
	require.NoError(t, q.Push(b1))
	assert.Equal(t, int64(1), b1.Priority.Seq)
	assert.Equal(t, []*Message{b1, a2, a3}, popAll(t, q))
}

func TestOutboundQueue_HiLevelFloor(t *testing.T) {
	t.Parallel()

	q := NewOutboundQueue()
	for range 4 {
		require.NoError(t, q.Push(queued(NodePriorityHi(2))))
	}
	for range 3 {
		_, ok := q.TryPop()
		require.True(t, ok)
	}

	late := queued(NodePriorityHi(3))
	require.NoError(t, q.Push(late))
	assert.Equal(t, int64(3), late.Priority.Seq)
}

func TestOutboundQueue_ResetWhenEmpty(t *testing.T) {
	t.Parallel()

	q := NewOutboundQueue()
	for range 3 {
		require.NoError(t, q.Push(queued(NodePriorityLo(5))))
	}
	popAll(t, q)

	m := queued(NodePriorityLo(5))
	require.NoError(t, q.Push(m))
	assert.Equal(t, int64(1), m.Priority.Seq)
}

func TestOutboundQueue_LenByEndpoint(t *testing.T) {
	t.Parallel()

	q := NewOutboundQueue()
	require.NoError(t, q.Push(queued(NodePriorityLo(5))))
	require.NoError(t, q.Push(queued(NodePriorityHi(5))))
	require.NoError(t, q.Push(queued(NodePriorityLo(7))))
	require.NoError(t, q.Push(queued(ControllerPriority())))

	assert.Equal(t, 4, q.Len())
	assert.Equal(t, map[int]int{NodeNone: 1, 5: 2, 7: 1}, q.LenByEndpoint())

	popAll(t, q)
	assert.Empty(t, q.LenByEndpoint())
}

func TestOutboundQueue_LenByEndpointCountsTarget(t *testing.T) {
	t.Parallel()

	q := NewOutboundQueue()
	m := NewMessage(MakeRawMessage(FuncGetVersion, nil), ControllerPriority(), nil, 5)
	require.NoError(t, q.Push(m))
	require.NoError(t, q.Push(queued(NodePriorityLo(5))))

	assert.Equal(t, map[int]int{5: 2}, q.LenByEndpoint())

	_, ok := q.TryPop()
	require.True(t, ok)
	assert.Equal(t, map[int]int{5: 1}, q.LenByEndpoint())
	assert.Len(t, q.Close(), 1)
	assert.Empty(t, q.LenByEndpoint())
}

func TestOutboundQueue_PopBlocksUntilPush(t *testing.T) {
	t.Parallel()

	q := NewOutboundQueue()
	got := make(chan *Message, 1)
	go func() {
		m, ok := q.Pop()
		if ok {
			got <- m
		}
	}()

	select {
	case <-got:
		t.Fatal("Pop returned on an empty queue")
	case <-time.After(20 * time.Millisecond):
	}

	m := queued(ControllerPriority())
	require.NoError(t, q.Push(m))
	select {
	case popped := <-got:
		assert.Equal(t, m, popped)
	case <-time.After(time.Second):
		t.Fatal("Pop did not wake")
	}
}

func TestOutboundQueue_Close(t *testing.T) {
	t.Parallel()

	q := NewOutboundQueue()
	m := queued(NodePriorityLo(3))
	require.NoError(t, q.Push(m))

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		// a second waiter after the queue drains
		for {
			if _, ok := q.Pop(); !ok {
				return
			}
		}
	}()

	rest := q.Close()
	wg.Wait()
	// the waiter may have taken the message before Close
	assert.LessOrEqual(t, len(rest), 1)
	require.ErrorIs(t, q.Push(queued(NodePriorityLo(3))), ErrQueueClosed)
	assert.Nil(t, q.Close())
}

func TestPriority_Less(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		a, b Priority
		want bool
	}{
		{name: "level wins", a: Priority{Level: 1, Seq: 9}, b: Priority{Level: 2}, want: true},
		{name: "seq within level", a: Priority{Level: 3, Seq: 1, Node: 9}, b: Priority{Level: 3, Seq: 2, Node: 1}, want: true},
		{name: "node breaks ties", a: Priority{Level: 3, Seq: 1, Node: 2}, b: Priority{Level: 3, Seq: 1, Node: 3}, want: true},
		{name: "equal is not less", a: Priority{Level: 3, Seq: 1, Node: 2}, b: Priority{Level: 3, Seq: 1, Node: 2}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.a.Less(tt.b))
		})
	}
}
