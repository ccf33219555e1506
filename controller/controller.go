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

// Package controller drives the local Z-Wave controller through the serial
// API: initialization, network membership, node maintenance and pairing.
package controller

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	zwave "github.com/ZaparooProject/go-zwave"
	"github.com/ZaparooProject/go-zwave/internal/frame"
	"github.com/ZaparooProject/go-zwave/internal/syncutil"
)

// ErrShortReply is returned for controller replies too short to decode.
var ErrShortReply = errors.New("controller: reply too short")

// Status values passed to RemoveFailedNode callbacks besides the
// controller's own status byte.
const (
	StatusTimeout      = 100
	StatusNotDelivered = 101
)

// Serial API timeouts installed by Initialize.
const (
	DefaultACKTimeout  = time.Second
	DefaultByteTimeout = 150 * time.Millisecond
)

// applNodeInfoListening advertises an always-listening node.
const applNodeInfoListening = 0x01

// Link is the part of the driver the controller uses.
type Link interface {
	SendMessage(m *zwave.Message)
	SendBarrier(fn func())
}

// Option configures a Controller.
type Option func(*Controller)

// WithPairingTimeout overrides how long add, remove and learn operations
// wait for the user.
func WithPairingTimeout(d time.Duration) Option {
	return func(c *Controller) {
		c.pairingTimeout = d
	}
}

// WithSerialTimeouts overrides the ACK and byte timeouts installed on the
// stick during Initialize.
func WithSerialTimeouts(ack, byteTimeout time.Duration) Option {
	return func(c *Controller) {
		c.ackTimeout = ack
		c.byteTimeout = byteTimeout
	}
}

// WithMessageTimeout overrides how long plain request/response exchanges
// wait for their reply.
func WithMessageTimeout(d time.Duration) Option {
	return func(c *Controller) {
		c.messageTimeout = d
	}
}

// Controller is the local controller node.
type Controller struct {
	link           Link
	initialized    chan struct{}
	nodes          map[int]struct{}
	failed         map[int]struct{}
	routes         map[int][]int
	props          Properties
	pairingTimeout time.Duration
	messageTimeout time.Duration
	ackTimeout     time.Duration
	byteTimeout    time.Duration
	mu             syncutil.RWMutex
}

// New creates a controller that talks through link.
func New(link Link, opts ...Option) *Controller {
	c := &Controller{
		link:           link,
		pairingTimeout: zwave.PairingTimeout,
		messageTimeout: zwave.DefaultMessageTimeout,
		ackTimeout:     DefaultACKTimeout,
		byteTimeout:    DefaultByteTimeout,
		initialized:    make(chan struct{}),
		nodes:          make(map[int]struct{}),
		failed:         make(map[int]struct{}),
		routes:         make(map[int][]int),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Properties returns a copy of the controller's properties.
func (c *Controller) Properties() Properties {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p := c.props
	p.attrs = slices.Clone(c.props.attrs)
	return p
}

// NodeID returns the controller's own node id.
func (c *Controller) NodeID() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return int(c.props.NodeID)
}

// HomeID returns the network's home id.
func (c *Controller) HomeID() uint32 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.props.HomeID
}

// HasAPI reports whether the controller implements a serial API function.
func (c *Controller) HasAPI(fn byte) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.props.HasAPI(fn)
}

// Nodes returns the ids of the network's nodes, including the controller.
func (c *Controller) Nodes() []int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Sorted(maps.Keys(c.nodes))
}

// FailedNodes returns the nodes the controller last reported as failed.
func (c *Controller) FailedNodes() []int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Sorted(maps.Keys(c.failed))
}

// Routes returns the last routing info of node.
func (c *Controller) Routes(node int) []int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.routes[node])
}

// =============================================================================
// Sending
// =============================================================================

func (c *Controller) send(fn byte, data []byte, handler zwave.Handler, opts ...zwave.MessageOption) {
	raw := zwave.MakeRawMessage(fn, data)
	opts = append([]zwave.MessageOption{zwave.WithTimeout(c.messageTimeout)}, opts...)
	c.link.SendMessage(zwave.NewMessage(raw, zwave.ControllerPriority(), handler, zwave.NodeNone, opts...))
}

func (c *Controller) sendWithID(fn byte, data []byte, handler zwave.Handler, opts ...zwave.MessageOption) {
	raw := zwave.MakeRawMessageWithID(fn, data)
	opts = append([]zwave.MessageOption{zwave.WithTimeout(zwave.ControllerCallbackTimeout)}, opts...)
	c.link.SendMessage(zwave.NewMessage(raw, zwave.ControllerPriority(), handler, zwave.NodeNone, opts...))
}

// payloadOf returns the payload of a reply, or nil when there was none.
func payloadOf(reply []byte) []byte {
	if reply == nil {
		return nil
	}
	return frame.Payload(reply)
}

// =============================================================================
// Initialization
// =============================================================================

// Initialize queries the controller's identity and capabilities, installs
// the serial API timeouts and advertises the application node info. The
// controller counts as initialized once the last step completes.
func (c *Controller) Initialize() {
	c.UpdateVersion()
	c.UpdateID()
	c.UpdateControllerCapabilities()
	c.UpdateSerialAPICapabilities()
	c.UpdateInitData()
	c.SetTimeouts(c.ackTimeout, c.byteTimeout)
	c.UpdateSUCNodeID()
	c.ApplNodeInformation()
}

// WaitUntilInitialized blocks until Initialize has completed or ctx ends.
func (c *Controller) WaitUntilInitialized(ctx context.Context) error {
	select {
	case <-c.initialized:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for controller initialization: %w", ctx.Err())
	}
}

// UpdateVersion reads the library version string and type.
func (c *Controller) UpdateVersion() {
	c.send(zwave.FuncGetVersion, nil, func(reply []byte) {
		p := payloadOf(reply)
		if p == nil {
			zwave.Debugln("cannot read controller version, check the serial device")
			return
		}
		c.mu.Lock()
		err := c.props.setVersion(p)
		c.mu.Unlock()
		if err != nil {
			zwave.Debugf("version: %v", err)
		}
	})
}

// UpdateID reads the home id and the controller's node id.
func (c *Controller) UpdateID() {
	c.send(zwave.FuncMemoryGetID, nil, func(reply []byte) {
		p := payloadOf(reply)
		if p == nil {
			return
		}
		c.mu.Lock()
		err := c.props.setID(p)
		c.mu.Unlock()
		if err != nil {
			zwave.Debugf("memory id: %v", err)
			return
		}
		zwave.Debugf("home-id: %#x node-id: %d", c.HomeID(), c.NodeID())
	})
}

// UpdateControllerCapabilities reads the controller role bits.
func (c *Controller) UpdateControllerCapabilities() {
	c.send(zwave.FuncGetControllerCapabilities, nil, func(reply []byte) {
		p := payloadOf(reply)
		if len(p) < 1 {
			return
		}
		zwave.Debugf("controller capabilities: %#02x", p[0])
		c.mu.Lock()
		c.props.setControllerCapabilities(p[0])
		c.mu.Unlock()
	})
}

// UpdateSerialAPICapabilities reads the product ids and supported functions.
func (c *Controller) UpdateSerialAPICapabilities() {
	c.send(zwave.FuncSerialAPIGetCapabilities, nil, func(reply []byte) {
		p := payloadOf(reply)
		if p == nil {
			return
		}
		c.mu.Lock()
		err := c.props.setSerialCapabilities(p)
		c.mu.Unlock()
		if err != nil {
			zwave.Debugf("serial capabilities: %v", err)
		}
	})
}

// UpdateInitData reads the list of nodes in the network.
func (c *Controller) UpdateInitData() {
	c.send(zwave.FuncSerialAPIGetInitData, nil, func(reply []byte) {
		p := payloadOf(reply)
		if p == nil {
			return
		}
		c.mu.Lock()
		defer c.mu.Unlock()
		bits, err := c.props.setInitData(p)
		if err != nil {
			zwave.Debugf("init data: %v", err)
			return
		}
		c.nodes = make(map[int]struct{})
		for _, n := range NodesFromBitfield(bits) {
			c.nodes[n] = struct{}{}
		}
	})
}

// SetTimeouts installs the serial API ACK and byte timeouts, which the
// controller keeps in units of 10ms.
func (c *Controller) SetTimeouts(ack, byteTimeout time.Duration) {
	data := []byte{byte(ack / (10 * time.Millisecond)), byte(byteTimeout / (10 * time.Millisecond))}
	c.send(zwave.FuncSerialAPISetTimeouts, data, func(reply []byte) {
		if p := payloadOf(reply); len(p) >= 2 {
			zwave.Debugf("previous timeouts: %dms %dms", int(p[0])*10, int(p[1])*10)
		}
	})
}

// UpdateSUCNodeID reads the static update controller's node id.
func (c *Controller) UpdateSUCNodeID() {
	c.send(zwave.FuncGetSUCNodeID, nil, func(reply []byte) {
		if p := payloadOf(reply); len(p) >= 1 {
			zwave.Debugf("suc node id: %d", p[0])
		}
	})
}

// ApplNodeInformation advertises the controller as an always-listening
// static controller. Its completion marks the controller initialized.
func (c *Controller) ApplNodeInformation() {
	data := []byte{applNodeInfoListening, 0x02, 0x01, 0x00}
	c.send(zwave.FuncSerialAPIApplNodeInformation, data, func([]byte) {
		zwave.Debugln("controller is now initialized")
		select {
		case <-c.initialized:
		default:
			close(c.initialized)
		}
	})
}

// Update refreshes the controller's view of the network and the failed
// state of every node. done, if not nil, runs once all of it completed.
func (c *Controller) Update(done func()) {
	zwave.Debugln("controller update")
	c.UpdateID()
	c.UpdateControllerCapabilities()
	c.UpdateSerialAPICapabilities()
	c.UpdateInitData()
	// the node list may change with the init data above; the barrier
	// below orders the failed checks after it
	c.link.SendBarrier(func() {
		for _, n := range c.Nodes() {
			c.UpdateFailedNode(n)
		}
		c.link.SendBarrier(func() {
			if done != nil {
				done()
			}
		})
	})
}

// TriggerNodesUpdate asks every other node for its node info.
func (c *Controller) TriggerNodesUpdate() {
	own := c.NodeID()
	for _, n := range c.Nodes() {
		if n != own {
			c.RequestNodeInfo(n, nil)
		}
	}
}

// SendBarrier runs fn once every message queued before it has resolved.
func (c *Controller) SendBarrier(fn func()) {
	c.link.SendBarrier(fn)
}

// =============================================================================
// Node maintenance
// =============================================================================

// RequestNodeInfo makes the node send its node info frame. cb, if not nil,
// receives the controller's accept status.
func (c *Controller) RequestNodeInfo(node int, cb func(status byte)) {
	zwave.Debugf("requesting node info for %d", node)
	c.send(zwave.FuncRequestNodeInfo, []byte{byte(node)}, func(reply []byte) {
		if p := payloadOf(reply); len(p) >= 1 && cb != nil {
			cb(p[0])
		}
	})
}

// UpdateFailedNode refreshes the failed state of node.
func (c *Controller) UpdateFailedNode(node int) {
	c.send(zwave.FuncIsFailedNodeID, []byte{byte(node)}, func(reply []byte) {
		p := payloadOf(reply)
		if len(p) < 1 {
			return
		}
		c.mu.Lock()
		defer c.mu.Unlock()
		if p[0] != 0 {
			c.failed[node] = struct{}{}
		} else {
			delete(c.failed, node)
		}
	})
}

// RemoveFailedNode removes a node the controller considers failed. cb
// receives the callback status, StatusNotDelivered when the controller
// refused, or StatusTimeout.
func (c *Controller) RemoveFailedNode(node int, cb func(status int)) {
	c.sendWithID(zwave.FuncRemoveFailedNodeID, []byte{byte(node)}, func(reply []byte) {
		switch {
		case reply == nil:
			cb(StatusTimeout)
		case frame.Direction(reply) == frame.Response:
			cb(StatusNotDelivered)
		default:
			p := payloadOf(reply)
			if len(p) < 2 {
				cb(StatusTimeout)
				return
			}
			cb(int(p[1]))
		}
	})
}

// GetRoutingInfo reads the neighbours of node.
func (c *Controller) GetRoutingInfo(node int, removeBad, removeNonRepeaters bool, cb func(node int, neighbors []int)) {
	data := []byte{byte(node), boolByte(removeBad), boolByte(removeNonRepeaters), 3}
	c.send(zwave.FuncGetRoutingInfo, data, func(reply []byte) {
		p := payloadOf(reply)
		if p == nil {
			return
		}
		cb(node, NodesFromBitfield(p))
	})
}

// UpdateRoutingInfo refreshes the routing table of every node.
func (c *Controller) UpdateRoutingInfo() {
	for _, n := range c.Nodes() {
		c.GetRoutingInfo(n, false, false, func(node int, neighbors []int) {
			zwave.Debugf("[%d] routing info: %v", node, neighbors)
			c.mu.Lock()
			c.routes[node] = neighbors
			c.mu.Unlock()
		})
	}
}

// ReadMemory reads length bytes of the controller's NVM at offset.
func (c *Controller) ReadMemory(offset uint16, length byte, cb func(data []byte)) {
	c.send(zwave.FuncReadMemory, []byte{byte(offset >> 8), byte(offset), length}, func(reply []byte) {
		p := payloadOf(reply)
		zwave.Debugf("received %d bytes of memory", len(p))
		cb(p)
	})
}

// GetRandom asks the controller's radio for count random bytes.
func (c *Controller) GetRandom(count byte, cb func(ok bool, data []byte)) {
	c.send(zwave.FuncGetRandom, []byte{count}, func(reply []byte) {
		p := payloadOf(reply)
		if len(p) < 2 {
			cb(false, nil)
			return
		}
		n := min(int(p[1]), len(p)-2)
		cb(p[0] != 0, p[2:2+n])
	})
}

// SetPromiscuousMode makes the controller pass on frames not addressed to
// it.
func (c *Controller) SetPromiscuousMode(on bool) {
	c.send(zwave.FuncSetPromiscuousMode, []byte{boolByte(on)}, nil)
}

// SendNodeInformation broadcasts or sends the controller's node info to
// dst. cb receives the transmit status payload.
func (c *Controller) SendNodeInformation(dst byte, xmit byte, cb func(payload []byte)) {
	c.sendWithID(zwave.FuncSendNodeInformation, []byte{dst, xmit}, func(reply []byte) {
		if cb != nil {
			cb(payloadOf(reply))
		}
	})
}

// SetDefault factory resets the controller.
func (c *Controller) SetDefault() {
	c.sendWithID(zwave.FuncSetDefault, nil, func(reply []byte) {
		zwave.Debugf("set default response: % x", payloadOf(reply))
	})
}

// SoftReset restarts the controller's firmware.
func (c *Controller) SoftReset() {
	c.send(zwave.FuncSerialAPISoftReset, nil, func(reply []byte) {
		zwave.Debugf("soft reset response: % x", payloadOf(reply))
	}, zwave.WithNoResponse())
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}

// =============================================================================
// Rendering
// =============================================================================

// StringBasic renders the properties and node lists.
func (c *Controller) StringBasic() string {
	p := c.Properties()
	return strings.Join([]string{
		p.String(),
		fmt.Sprintf("nodes: %v", c.Nodes()),
		fmt.Sprintf("failed_nodes: %v", c.FailedNodes()),
	}, "\n")
}

// StringRoutes renders the routing table as a node by node matrix.
func (c *Controller) StringRoutes() string {
	nodes := c.Nodes()
	lines := make([]string, 0, len(nodes))
	for _, n := range nodes {
		routes := c.Routes(n)
		var b strings.Builder
		fmt.Fprintf(&b, "%2d: ", n)
		for _, m := range nodes {
			if slices.Contains(routes, m) {
				b.WriteByte('#')
			} else {
				b.WriteByte(' ')
			}
		}
		lines = append(lines, b.String())
	}
	return strings.Join(lines, "\n")
}

func (c *Controller) String() string {
	return c.StringBasic() + "\n\n" + c.StringRoutes()
}
