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

// Package translator sits between the link driver and the endpoint state.
//
// Inbound, it decodes APPLICATION_COMMAND_HANDLER and APPLICATION_UPDATE
// frames into (endpoint, timestamp, key, values) events and fans them out
// to listeners. Outbound, it assembles command values into ZW_SEND_DATA
// messages. Multi-channel endpoints are wrapped in and unwrapped from
// MultiChannel ChannelEncap on the way.
package translator

import (
	"errors"
	"fmt"
	"time"

	zwave "github.com/ZaparooProject/go-zwave"
	"github.com/ZaparooProject/go-zwave/command"
	"github.com/ZaparooProject/go-zwave/internal/frame"
	"github.com/ZaparooProject/go-zwave/internal/syncutil"
)

// ErrChannelMulticast is returned when a multicast target is a
// multi-channel endpoint.
var ErrChannelMulticast = errors.New("multicast to a multi-channel endpoint")

// Link is the part of the driver the translator uses.
type Link interface {
	SendMessage(m *zwave.Message)
	AddAsyncHandler(h zwave.AsyncHandler)
	Post(fn func()) bool
}

// Listener receives every decoded event. It runs on the dispatch goroutine
// and must not block.
type Listener interface {
	OnEvent(endpoint int, ts time.Time, key command.Key, values command.Values)
}

// ListenerFunc adapts a function to Listener.
type ListenerFunc func(endpoint int, ts time.Time, key command.Key, values command.Values)

// OnEvent calls fn.
func (fn ListenerFunc) OnEvent(endpoint int, ts time.Time, key command.Key, values command.Values) {
	fn(endpoint, ts, key, values)
}

// Translator converts between wire frames and command events.
type Translator struct {
	link      Link
	listeners []Listener
	mu        syncutil.RWMutex
}

// New creates a translator and registers it with the link for unsolicited
// frames.
func New(link Link) *Translator {
	t := &Translator{link: link}
	link.AddAsyncHandler(t)
	return t
}

// AddListener registers a listener. Listeners are called in registration
// order.
func (t *Translator) AddListener(l Listener) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.listeners = append(t.listeners, l)
}

func (t *Translator) publish(endpoint int, ts time.Time, key command.Key, values command.Values) {
	t.mu.RLock()
	listeners := t.listeners
	t.mu.RUnlock()
	for _, l := range listeners {
		l.OnEvent(endpoint, ts, key, values)
	}
}

// publishLater hands an event raised by a reply handler to the dispatch
// goroutine so listeners only ever run there.
func (t *Translator) publishLater(endpoint int, key command.Key, values command.Values, then func()) {
	ts := time.Now()
	ok := t.link.Post(func() {
		t.publish(endpoint, ts, key, values)
		if then != nil {
			then()
		}
	})
	if !ok {
		zwave.Debugf("[%s] dropping %s: %v", EndpointName(endpoint), key, zwave.ErrDriverStopped)
	}
}

// =============================================================================
// Outbound
// =============================================================================

// Send assembles a command and queues it for the endpoint. A multi-channel
// endpoint is addressed through its node with a ChannelEncap envelope. An
// assembly error is logged and returned; nothing is queued.
func (t *Translator) Send(endpoint int, key command.Key, values command.Values, priority zwave.Priority, xmit byte) error {
	raw, err := command.Assemble(key, values)
	if err != nil {
		zwave.Debugf("[%s] cannot assemble %s %v: %v", EndpointName(endpoint), key, values, err)
		return err
	}
	node := endpoint
	if IsChannel(endpoint) {
		var channel int
		node, channel = SplitEndpoint(endpoint)
		raw, err = command.Assemble(command.MultiChannelChannelEncap, command.Values{
			"src":     0,
			"dst":     channel,
			"command": command.Command{Key: key, Values: values},
		})
		if err != nil {
			zwave.Debugf("[%s] cannot encapsulate %s: %v", EndpointName(endpoint), key, err)
			return err
		}
	}
	payload := zwave.MakeRawCommandWithID(byte(node), raw, xmit)
	t.link.SendMessage(zwave.NewMessage(payload, priority, sendDone(endpoint, key), node))
	return nil
}

// SendMulti assembles a command and queues it as a ZW_SEND_DATA_MULTI to
// the given nodes. Multi-channel endpoints cannot be multicast targets.
func (t *Translator) SendMulti(nodes []int, key command.Key, values command.Values, priority zwave.Priority, xmit byte) error {
	if len(nodes) == 0 {
		return nil
	}
	targets := make([]byte, len(nodes))
	for i, n := range nodes {
		if IsChannel(n) {
			zwave.Debugf("[%s] %s: %v", EndpointName(n), key, ErrChannelMulticast)
			return fmt.Errorf("node %s: %w", EndpointName(n), ErrChannelMulticast)
		}
		targets[i] = byte(n)
	}
	raw, err := command.Assemble(key, values)
	if err != nil {
		zwave.Debugf("cannot assemble multicast %s %v: %v", key, values, err)
		return err
	}
	payload := zwave.MakeRawCommandMultiWithID(targets, raw, xmit)
	t.link.SendMessage(zwave.NewMessage(payload, priority, sendDone(nodes[0], key), nodes[0]))
	return nil
}

func sendDone(endpoint int, key command.Key) zwave.Handler {
	return func(reply []byte) {
		if reply == nil {
			zwave.Debugf("[%s] %s got no transmit report", EndpointName(endpoint), key)
			return
		}
		if frame.Direction(reply) != frame.Request {
			zwave.Debugf("[%s] %s rejected by controller: %s", EndpointName(endpoint), key, frame.Describe(reply))
			return
		}
		if p := frame.Payload(reply); len(p) > 1 && p[1] != zwave.TransmitCompleteOK {
			zwave.Debugf("[%s] %s transmit status %#02x", EndpointName(endpoint), key, p[1])
		}
	}
}

// replyStatus returns the first payload byte of a RESPONSE.
func replyStatus(reply []byte) (byte, bool) {
	p := frame.Payload(reply)
	if len(p) == 0 {
		return 0, false
	}
	return p[0], true
}

// GetNodeProtocolInfo queries the controller's view of a node and publishes
// the decoded result as a ProtocolInfo event.
func (t *Translator) GetNodeProtocolInfo(node int) {
	handler := func(reply []byte) {
		if reply == nil {
			zwave.Debugf("[%d] protocol info query failed", node)
			return
		}
		info, err := DecodeProtocolInfo(frame.Payload(reply))
		if err != nil {
			zwave.Debugf("[%d] bad protocol info: %v", node, err)
			return
		}
		t.publishLater(node, command.ProtocolInfo, info.Values(), nil)
	}
	zwave.Debugf("[%d] get node protocol info", node)
	payload := zwave.MakeRawMessage(zwave.FuncGetNodeProtocolInfo, []byte{byte(node)})
	t.link.SendMessage(zwave.NewMessage(payload, zwave.ControllerPriority(), handler, node))
}

// IsFailed asks the controller whether it considers the node failed,
// publishes a FailedNode event and then calls cb, if any, on the dispatch
// goroutine. Nothing is published when the query times out.
func (t *Translator) IsFailed(node int, cb func(failed bool)) {
	handler := func(reply []byte) {
		status, ok := replyStatus(reply)
		if !ok {
			return
		}
		failed := status != 0
		zwave.Debugf("[%d] is failed check: %t", node, failed)
		var then func()
		if cb != nil {
			then = func() { cb(failed) }
		}
		t.publishLater(node, command.FailedNode, command.Values{"failed": failed}, then)
	}
	payload := zwave.MakeRawMessage(zwave.FuncIsFailedNodeID, []byte{byte(node)})
	t.link.SendMessage(zwave.NewMessage(payload, zwave.ControllerPriority(), handler, node))
}

// RequestNodeInfo asks the node for its node information frame, which
// arrives later as an APPLICATION_UPDATE. A rejected or unanswered request
// is retried until retries runs out.
func (t *Translator) RequestNodeInfo(node, retries int) {
	if retries <= 0 {
		zwave.Debugf("[%d] request node info: %v", node, zwave.ErrRetriesExhausted)
		return
	}
	handler := func(reply []byte) {
		if status, ok := replyStatus(reply); ok && status != 0 {
			return
		}
		zwave.Debugf("[%d] request node info failed: %s", node, frame.Describe(reply))
		t.RequestNodeInfo(node, retries-1)
	}
	zwave.Debugf("[%d] request node info, %d tries left", node, retries)
	payload := zwave.MakeRawMessage(zwave.FuncRequestNodeInfo, []byte{byte(node)})
	t.link.SendMessage(zwave.NewMessage(payload, zwave.ControllerPriority(), handler, node))
}

// Ping re-discovers an endpoint. A node gets a protocol info query and a
// failed check followed, unless the node is failed or force is set, by a
// node info request. With force the node info request is sent regardless.
// A multi-channel endpoint is pinged with a CapabilityGet to its node.
func (t *Translator) Ping(endpoint, retries int, force bool, reason string) {
	if IsChannel(endpoint) {
		node, channel := SplitEndpoint(endpoint)
		zwave.Debugf("[%s] ping (%s)", EndpointName(endpoint), reason)
		_ = t.Send(node, command.MultiChannelCapabilityGet, command.Values{"endpoint": channel},
			zwave.ControllerPriority(), zwave.XmitOptions)
		return
	}
	zwave.Debugf("[%d] ping (%s) retries %d, force %t", endpoint, reason, retries, force)
	t.GetNodeProtocolInfo(endpoint)
	if force {
		t.IsFailed(endpoint, nil)
		t.RequestNodeInfo(endpoint, retries)
		return
	}
	t.IsFailed(endpoint, func(failed bool) {
		if !failed {
			t.RequestNodeInfo(endpoint, retries)
		}
	})
}

// =============================================================================
// Inbound
// =============================================================================

// HandleFrame implements zwave.AsyncHandler.
func (t *Translator) HandleFrame(ts time.Time, f []byte) {
	switch frame.Function(f) {
	case zwave.FuncApplicationCommandHandler:
		t.handleCommand(ts, frame.Payload(f))
	case zwave.FuncApplicationUpdate:
		t.handleUpdate(ts, frame.Payload(f))
	default:
		zwave.Debugf("translator ignoring %s", frame.Describe(f))
	}
}

// handleCommand decodes status, node, size, command...
func (t *Translator) handleCommand(ts time.Time, p []byte) {
	if len(p) < 3 {
		zwave.Debugf("short application command % x", p)
		return
	}
	node, size := int(p[1]), int(p[2])
	if 3+size > len(p) {
		zwave.Debugf("[%d] application command size %d exceeds frame % x", node, size, p)
		return
	}
	data := p[3 : 3+size]
	if len(data) < 2 {
		zwave.Debugf("[%d] impossibly short command % x", node, data)
		return
	}
	key, values, err := command.ParseCommand(data)
	if err != nil {
		zwave.Debugf("[%d] dropping command: %v", node, err)
		return
	}

	endpoint := node
	switch key {
	case command.MultiChannelCapabilityReport:
		t.publishCapability(node, ts, values)
		return
	case command.MultiChannelChannelEncap:
		src, _ := values.Int("src")
		inner, ok := command.As[command.Command](values, "command")
		if !ok {
			zwave.Debugf("[%d] channel encapsulation without command % x", node, data)
			return
		}
		endpoint = ChannelEndpoint(node, src)
		key, values = inner.Key, inner.Values
	}
	t.publish(endpoint, ts, key, values)
}

// publishCapability turns a multi-channel capability report into the
// application update of the endpoint it describes.
func (t *Translator) publishCapability(node int, ts time.Time, values command.Values) {
	ep, _ := values.Int("endpoint")
	generic, _ := values.Int("generic")
	specific, _ := values.Int("specific")
	classes, _ := values.Bytes("classes")
	commands, controls := command.SplitNodeInfo(classes)
	endpoint := ChannelEndpoint(node, ep&0x7f)
	zwave.Debugf("[%s] found multi-channel endpoint", EndpointName(endpoint))
	t.publish(endpoint, ts, command.ApplicationUpdate, command.Values{
		"endpoint": ep,
		"generic":  generic,
		"specific": specific,
		"commands": commands,
		"controls": controls,
	})
}

// handleUpdate decodes state, node, length, node information...
func (t *Translator) handleUpdate(ts time.Time, p []byte) {
	if len(p) < 2 {
		zwave.Debugf("short application update % x", p)
		return
	}
	state, node := p[0], int(p[1])
	switch state {
	case zwave.UpdateStateNodeInfoReceived:
		if len(p) < 3 || 3+int(p[2]) > len(p) || p[2] < 3 {
			zwave.Debugf("[%d] malformed node info % x", node, p)
			return
		}
		info := p[3 : 3+int(p[2])]
		commands, controls := command.SplitNodeInfo(info[3:])
		t.publish(node, ts, command.ApplicationUpdate, command.Values{
			"basic":    int(info[0]),
			"generic":  int(info[1]),
			"specific": int(info[2]),
			"commands": commands,
			"controls": controls,
		})
	case zwave.UpdateStateNodeInfoReqFailed:
		// the controller does not always say which node failed
		if node == 0 {
			zwave.Debugf("node info request failed")
			return
		}
		t.publish(node, ts, command.NodeInfoFailed, command.Values{})
	case zwave.UpdateStateSUCID:
		zwave.Debugf("SUC id update: node %d", node)
	default:
		zwave.Debugf("[%d] unhandled application update state %#02x", node, state)
	}
}
