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
	"sync/atomic"
	"time"

	"github.com/ZaparooProject/go-zwave/internal/frame"
	"github.com/ZaparooProject/go-zwave/internal/syncutil"
)

// Default message timeouts
const (
	DefaultMessageTimeout     = time.Second
	ControllerCallbackTimeout = 2 * time.Second
	PairingTimeout            = 15 * time.Second
)

// MessageState tracks an outbound message through its lifecycle.
type MessageState int

const (
	MessageQueued MessageState = iota
	MessageInFlight
	MessageCompleted
	MessageTimedOut
	MessageAborted
)

func (s MessageState) String() string {
	switch s {
	case MessageQueued:
		return "Queued"
	case MessageInFlight:
		return "InFlight"
	case MessageCompleted:
		return "Completed"
	case MessageTimedOut:
		return "TimedOut"
	case MessageAborted:
		return "Aborted"
	default:
		return fmt.Sprintf("MessageState(%d)", int(s))
	}
}

// ReplyKind is one step of the reply sequence a message waits for.
type ReplyKind int

const (
	// AwaitACK waits for the stick's link-level ACK.
	AwaitACK ReplyKind = iota
	// AwaitResponse waits for a RESPONSE frame with the message's function id.
	AwaitResponse
	// AwaitResponseStatus waits for a RESPONSE whose first payload byte
	// equals Reply.Status. Any other status resolves the message with that
	// response.
	AwaitResponseStatus
	// AwaitCallback waits for a REQUEST carrying the message's callback id.
	AwaitCallback
	// AwaitCallbacks accepts REQUEST callbacks until the progress handler
	// reports the operation finished.
	AwaitCallbacks
)

// Reply is one expected reply.
type Reply struct {
	Kind   ReplyKind
	Status byte
}

// Handler receives the frame that resolved a message. It receives nil when
// the message timed out, was aborted, or is a barrier. Handlers run on the
// driver's send goroutine and must not block.
type Handler func(reply []byte)

// ProgressHandler receives every callback of a multi-callback operation and
// reports whether the operation has finished.
type ProgressHandler func(reply []byte) bool

var (
	replyACKOnly       = []Reply{{Kind: AwaitACK}}
	replyReport        = []Reply{{Kind: AwaitACK}, {Kind: AwaitResponse}}
	replySendData      = []Reply{{Kind: AwaitACK}, {Kind: AwaitResponseStatus, Status: 1}, {Kind: AwaitCallback}}
	replyMultiCallback = []Reply{{Kind: AwaitACK}, {Kind: AwaitCallbacks}}
	replyRemoveFailed  = []Reply{{Kind: AwaitACK}, {Kind: AwaitResponseStatus, Status: 0}, {Kind: AwaitCallback}}
	replyCallback      = []Reply{{Kind: AwaitACK}, {Kind: AwaitCallback}}
)

// ExpectedReplies returns the reply sequence the serial API produces for a
// function id.
func ExpectedReplies(fn byte) []Reply {
	switch fn {
	case FuncGetSUCNodeID, FuncGetVersion, FuncMemoryGetID, FuncGetControllerCapabilities,
		FuncSerialAPIGetCapabilities, FuncGetRandom, FuncSerialAPIGetInitData,
		FuncSerialAPISetTimeouts, FuncGetNodeProtocolInfo, FuncIsFailedNodeID,
		FuncGetRoutingInfo, FuncReadMemory, FuncSerialAPISoftReset, FuncEnableSUC,
		FuncSetSUCNodeID, FuncRequestNodeInfo:
		return replyReport
	case FuncSendData, FuncSendDataMulti, FuncSendNodeInformation, FuncReplicationSendData:
		return replySendData
	case FuncSerialAPIApplNodeInformation, FuncSetPromiscuousMode:
		return replyACKOnly
	case FuncAddNodeToNetwork, FuncRemoveNodeFromNetwork, FuncControllerChange, FuncSetLearnMode:
		return replyMultiCallback
	case FuncRemoveFailedNodeID:
		return replyRemoveFailed
	case FuncSetDefault:
		return replyCallback
	default:
		return replyReport
	}
}

// Message is one outbound unit of work. The receive goroutine advances its
// reply sequence through the on* transition methods; the send goroutine
// waits on the replies channel.
type Message struct {
	Payload  []byte
	Priority Priority
	Node     int
	Timeout  time.Duration

	handler  Handler
	progress ProgressHandler

	mu      syncutil.Mutex
	expect  []Reply
	state   MessageState
	start   time.Time
	end     time.Time
	cans    int
	replies chan []byte
	// finished is closed by the send goroutine once it stops listening.
	finished chan struct{}
}

// MessageOption customises a message at construction.
type MessageOption func(*Message)

// WithTimeout overrides the default timeout.
func WithTimeout(d time.Duration) MessageOption {
	return func(m *Message) { m.Timeout = d }
}

// WithNoResponse makes the message complete on the link ACK alone.
func WithNoResponse() MessageOption {
	return func(m *Message) { m.expect = append([]Reply(nil), replyACKOnly...) }
}

// WithProgress installs the handler for multi-callback operations.
func WithProgress(p ProgressHandler) MessageOption {
	return func(m *Message) { m.progress = p }
}

// WithReplies overrides the reply sequence derived from the function id.
func WithReplies(r ...Reply) MessageOption {
	return func(m *Message) { m.expect = append([]Reply(nil), r...) }
}

// NewMessage creates a message for a complete raw frame. A nil payload makes
// a barrier.
func NewMessage(payload []byte, priority Priority, handler Handler, node int, opts ...MessageOption) *Message {
	m := &Message{
		Payload:  payload,
		Priority: priority,
		Node:     node,
		Timeout:  DefaultMessageTimeout,
		handler:  handler,
		replies:  make(chan []byte, 1),
		finished: make(chan struct{}),
	}
	if payload != nil {
		m.expect = append([]Reply(nil), ExpectedReplies(frame.Function(payload))...)
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// NewBarrier creates a payload-less message at the lowest priority.
func NewBarrier(handler Handler) *Message {
	return NewMessage(nil, LowestPriority(), handler, NodeNone)
}

// IsBarrier reports whether the message carries no payload.
func (m *Message) IsBarrier() bool {
	return m.Payload == nil
}

// Function returns the function id of the payload.
func (m *Message) Function() byte {
	return frame.Function(m.Payload)
}

// CallbackID returns the callback id carried just before the checksum.
func (m *Message) CallbackID() byte {
	if len(m.Payload) < frame.MinFrameLength+1 {
		return 0
	}
	return m.Payload[len(m.Payload)-2]
}

// State returns the current lifecycle state.
func (m *Message) State() MessageState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Cans returns how many times the stick cancelled the message.
func (m *Message) Cans() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cans
}

// Duration returns the time between transmission and resolution.
func (m *Message) Duration() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.start.IsZero() {
		return 0
	}
	if m.end.IsZero() {
		return time.Since(m.start)
	}
	return m.end.Sub(m.start)
}

// Pending returns a copy of the replies still awaited.
func (m *Message) Pending() []Reply {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Reply(nil), m.expect...)
}

func (m *Message) String() string {
	if m.IsBarrier() {
		return "barrier"
	}
	return fmt.Sprintf("%s node=%d %s", FuncName(m.Function()), m.Node, frame.Describe(m.Payload))
}

func (m *Message) markStarted(now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = MessageInFlight
	m.start = now
}

// finish records the terminal state. The first call wins.
func (m *Message) finish(state MessageState, now time.Time) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state >= MessageCompleted {
		return false
	}
	m.state = state
	m.end = now
	close(m.finished)
	return true
}

// deliver hands a resolving frame to the send goroutine. It never blocks
// past the message's resolution. Callers hold m.mu.
func (m *Message) deliver(reply []byte) {
	select {
	case m.replies <- reply:
	case <-m.finished:
	default:
		// single slot already holds an unconsumed reply; wait for the send
		// goroutine without holding the lock it needs for finish
		m.mu.Unlock()
		select {
		case m.replies <- reply:
		case <-m.finished:
		}
		m.mu.Lock()
	}
}

// onCAN counts a collision. The caller retransmits the payload.
func (m *Message) onCAN() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cans++
	return m.cans
}

// onACK advances past a pending ACK. The message resolves when nothing else
// is awaited.
func (m *Message) onACK(f []byte) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.expect) == 0 || m.expect[0].Kind != AwaitACK {
		return false
	}
	m.expect = m.expect[1:]
	if len(m.expect) == 0 {
		m.deliver(f)
		return true
	}
	return false
}

// onResponse applies a RESPONSE frame with the message's function id. A
// missing ACK is tolerated; the response implies the stick accepted the
// frame.
func (m *Message) onResponse(f []byte) (matched, resolved bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.skipACK()
	if len(m.expect) == 0 {
		return false, false
	}
	step := m.expect[0]
	switch step.Kind {
	case AwaitResponse:
		m.expect = m.expect[1:]
	case AwaitResponseStatus:
		if len(frame.Payload(f)) < 1 || frame.Payload(f)[0] != step.Status {
			m.expect = nil
			m.deliver(f)
			return true, true
		}
		m.expect = m.expect[1:]
	default:
		return false, false
	}
	if len(m.expect) == 0 {
		m.deliver(f)
		return true, true
	}
	return true, false
}

// onCallback applies a REQUEST carrying a callback id.
func (m *Message) onCallback(f []byte) (matched, resolved bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.skipACK()
	if len(m.expect) == 0 {
		return false, false
	}
	payload := frame.Payload(f)
	if len(payload) < 1 || payload[0] != m.CallbackID() {
		return false, false
	}
	switch m.expect[0].Kind {
	case AwaitCallback:
		m.expect = m.expect[1:]
		m.deliver(f)
		return true, true
	case AwaitCallbacks:
		// the send goroutine decides when the sequence is over
		m.deliver(f)
		return true, false
	case AwaitResponse, AwaitResponseStatus:
		// the response was lost; the callback implies it
		if len(m.expect) > 1 && m.expect[1].Kind == AwaitCallback {
			m.expect = nil
			m.deliver(f)
			return true, true
		}
	}
	return false, false
}

// abort resolves the message with nil.
func (m *Message) abort() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.expect = nil
	m.deliver(nil)
}

func (m *Message) skipACK() {
	if len(m.expect) > 0 && m.expect[0].Kind == AwaitACK {
		m.expect = m.expect[1:]
	}
}

var callbackCounter atomic.Uint32

func init() {
	callbackCounter.Store(66)
}

// NextCallbackID returns the next callback id. Ids wrap at 256.
func NextCallbackID() byte {
	return byte(callbackCounter.Add(1))
}

// MakeRawMessage builds a host REQUEST frame.
func MakeRawMessage(fn byte, data []byte) []byte {
	return frame.Make(frame.Request, fn, data)
}

// MakeRawMessageWithID builds a host REQUEST frame with a fresh callback id
// appended to data.
func MakeRawMessageWithID(fn byte, data []byte) []byte {
	return MakeRawMessageWithCallback(fn, data, NextCallbackID())
}

// MakeRawMessageWithCallback builds a host REQUEST frame with the given
// callback id appended to data.
func MakeRawMessageWithCallback(fn byte, data []byte, cbid byte) []byte {
	d := make([]byte, 0, len(data)+1)
	d = append(d, data...)
	return frame.Make(frame.Request, fn, append(d, cbid))
}

// MakeRawCommandWithID wraps an application command in ZW_SEND_DATA.
func MakeRawCommandWithID(node byte, cmd []byte, xmit byte) []byte {
	d := make([]byte, 0, len(cmd)+3)
	d = append(d, node, byte(len(cmd)))
	d = append(d, cmd...)
	return MakeRawMessageWithID(FuncSendData, append(d, xmit))
}

// MakeRawCommandMultiWithID wraps an application command in
// ZW_SEND_DATA_MULTI.
func MakeRawCommandMultiWithID(nodes []byte, cmd []byte, xmit byte) []byte {
	d := make([]byte, 0, len(nodes)+len(cmd)+3)
	d = append(d, byte(len(nodes)))
	d = append(d, nodes...)
	d = append(d, byte(len(cmd)))
	d = append(d, cmd...)
	return MakeRawMessageWithID(FuncSendDataMulti, append(d, xmit))
}

// MakeRawReplicationCommandWithID wraps an application command in
// ZW_REPLICATION_SEND_DATA.
func MakeRawReplicationCommandWithID(node byte, cmd []byte, xmit byte) []byte {
	d := make([]byte, 0, len(cmd)+3)
	d = append(d, node, byte(len(cmd)))
	d = append(d, cmd...)
	return MakeRawMessageWithID(FuncReplicationSendData, append(d, xmit))
}
