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

// Package node tracks what is known about every endpoint of the network.
//
// An Endpoint consumes the events of the translator, caches them in its
// ValueCache and drives its discovery and interview by submitting query
// batches back through the translator. An EndpointSet creates endpoints
// on first reference and routes events to them.
package node

import (
	"fmt"
	"slices"
	"strings"
	"time"

	zwave "github.com/ZaparooProject/go-zwave"
	"github.com/ZaparooProject/go-zwave/command"
	"github.com/ZaparooProject/go-zwave/internal/syncutil"
	"github.com/ZaparooProject/go-zwave/translator"
)

// State is the lifecycle state of an endpoint. States only ever increase.
type State int

// The security states sit between Discovered and Interviewed and are only
// entered when secure inclusion is enabled.
const (
	StateNone                 State = 0
	StateDiscovered           State = 20
	StateKexGet               State = 21
	StateKexReport            State = 22
	StateKexSet               State = 23
	StatePublicKeyReportOther State = 24
	StatePublicKeyReportSelf  State = 25
	StateInterviewed          State = 30
)

func (s State) String() string {
	switch s {
	case StateNone:
		return "None"
	case StateDiscovered:
		return "Discovered"
	case StateKexGet:
		return "KexGet"
	case StateKexReport:
		return "KexReport"
	case StateKexSet:
		return "KexSet"
	case StatePublicKeyReportOther:
		return "PublicKeyReportOther"
	case StatePublicKeyReportSelf:
		return "PublicKeyReportSelf"
	case StateInterviewed:
		return "Interviewed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Retries of the node info request sent when an undiscovered endpoint
// speaks.
const undiscoveredPingRetries = 3

// S2 KEX fail types.
const (
	kexFailKey  = 0x01
	kexFailAuth = 0x07
)

// Sender is the part of the translator an endpoint uses.
type Sender interface {
	Send(endpoint int, key command.Key, values command.Values, priority zwave.Priority, xmit byte) error
	Ping(endpoint, retries int, force bool, reason string)
}

// SecurityHook performs the key agreement of S2 bootstrapping. Without a
// hook secure inclusion is off and security reports are only cached.
type SecurityHook interface {
	// GenerateSharedKey derives the temporary CCM key and personalization
	// string from the peer's public key and returns the local public key.
	GenerateSharedKey(peerPublic []byte) (key, personalization, ownPublic []byte, err error)
	// ReceiverEntropy returns the 16 bytes sent in a nonce report.
	ReceiverEntropy() ([]byte, error)
}

// Endpoint is one node or multi-channel endpoint.
type Endpoint struct {
	lastContact     time.Time
	sender          Sender
	security        SecurityHook
	values          *ValueCache
	controls        map[command.Class]struct{}
	tempKey         []byte
	personalization []byte
	id              int
	state           State
	mu              syncutil.Mutex
	controller      bool
}

// NewEndpoint creates an endpoint in StateNone. controller marks the
// endpoint of the local controller.
func NewEndpoint(id int, sender Sender, controller bool) *Endpoint {
	return &Endpoint{
		id:         id,
		sender:     sender,
		controller: controller,
		values:     NewValueCache(),
		controls:   make(map[command.Class]struct{}),
	}
}

// SetSecurityHook enables secure inclusion with hook.
func (e *Endpoint) SetSecurityHook(hook SecurityHook) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.security = hook
}

// ID returns the endpoint id.
func (e *Endpoint) ID() int { return e.id }

// Name returns "node" or "node.channel".
func (e *Endpoint) Name() string { return translator.EndpointName(e.id) }

// IsController reports whether this is the local controller.
func (e *Endpoint) IsController() bool { return e.controller }

// Values returns the endpoint's value cache.
func (e *Endpoint) Values() *ValueCache { return e.values }

// State returns the lifecycle state.
func (e *Endpoint) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// LastContact returns when the endpoint was last heard from.
func (e *Endpoint) LastContact() time.Time {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastContact
}

// IsInterviewed reports whether the static interview has completed.
func (e *Endpoint) IsInterviewed() bool {
	return e.State() == StateInterviewed
}

// IsFailed reports whether the controller last declared the node failed.
func (e *Endpoint) IsFailed() bool {
	failed, _ := command.As[bool](e.values.Get(command.FailedNode), "failed")
	return failed
}

// Controls returns the classes the endpoint controls, sorted.
func (e *Endpoint) Controls() []command.Class {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]command.Class, 0, len(e.controls))
	for c := range e.controls {
		out = append(out, c)
	}
	slices.Sort(out)
	return out
}

// TempKey returns the temporary key and personalization string derived
// during S2 bootstrapping.
func (e *Endpoint) TempKey() (key, personalization []byte) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tempKey, e.personalization
}

// InitializeUnversioned adds announced classes to the version map with
// the NoVersion marker. Classes already in the map are left alone.
func (e *Endpoint) InitializeUnversioned(commands, controls, stdCommands, stdControls []command.Class) {
	e.mu.Lock()
	for _, c := range controls {
		e.controls[c] = struct{}{}
	}
	for _, c := range stdControls {
		e.controls[c] = struct{}{}
	}
	all := make([]command.Class, 0, len(commands)+len(e.controls)+len(stdCommands))
	all = append(all, commands...)
	for c := range e.controls {
		all = append(all, c)
	}
	all = append(all, stdCommands...)
	e.mu.Unlock()

	for _, c := range all {
		e.values.markUnversioned(c)
	}
}

// =============================================================================
// Events
// =============================================================================

// Put processes one event for this endpoint.
func (e *Endpoint) Put(ts time.Time, key command.Key, v command.Values) {
	e.mu.Lock()
	e.lastContact = ts
	e.mu.Unlock()

	if key == command.ApplicationUpdate {
		e.applicationUpdate(ts, v)
		return
	}

	if e.State() < StateDiscovered && !key.IsCustom() {
		e.sender.Ping(e.id, undiscoveredPingRetries, false, "undiscovered")
	}

	if extract, ok := mapValued[key]; ok {
		for _, it := range extract(v) {
			e.values.SetMapEntry(ts, key, it.sub, it.values)
		}
	} else {
		e.values.Set(ts, key, v)
	}
	e.sideEffects(ts, key, v)
}

func (e *Endpoint) applicationUpdate(ts time.Time, v command.Values) {
	generic, _ := v.Int("generic")
	specific, _ := v.Int("specific")
	if !e.values.HasValue(command.ProtocolInfo) {
		basic, _ := v.Int("basic")
		e.values.Set(ts, command.ProtocolInfo, command.Values{
			"basic":    basic,
			"generic":  generic,
			"specific": specific,
		})
	}
	dc, ok := command.LookupDevice(command.DeviceType{Generic: byte(generic), Specific: byte(specific)})
	if !ok {
		zwave.Debugf("[%s] unknown device type %02x:%02x", e.Name(), generic, specific)
	}
	commands, _ := command.As[[]command.Class](v, "commands")
	controls, _ := command.As[[]command.Class](v, "controls")
	e.InitializeUnversioned(commands, controls, dc.Commands, dc.Controls)

	e.MaybeChangeState(StateDiscovered)
	if e.State() >= StateInterviewed {
		e.RefreshDynamicValues()
		e.RefreshSemiStaticValues()
	}
}

func (e *Endpoint) sideEffects(ts time.Time, key command.Key, v command.Values) {
	switch key {
	case command.ManufacturerSpecificReport:
		e.MaybeChangeState(StateInterviewed)
	case command.SceneActuatorConfReport:
		e.values.Set(ts, command.ActiveScene, v)
	case command.Security2KexReport:
		if e.hook() != nil {
			e.MaybeChangeState(StateKexReport)
		}
	case command.Security2PublicKeyReport:
		if e.hook() != nil {
			e.MaybeChangeState(StatePublicKeyReportOther)
		}
	case command.Security2NonceGet:
		seq, _ := v.Int("seq")
		e.sendNonce(seq)
	}
}

func (e *Endpoint) hook() SecurityHook {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.security
}

// advance moves to next if it is later than the current state.
func (e *Endpoint) advance(next State) (State, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	old := e.state
	if old >= next {
		return old, false
	}
	e.state = next
	return old, true
}

// MaybeChangeState moves the endpoint to next unless it is already there
// or further, and starts the work the new state calls for.
func (e *Endpoint) MaybeChangeState(next State) {
	old, ok := e.advance(next)
	if !ok {
		return
	}
	zwave.Debugf("[%s] state %s -> %s", e.Name(), old, next)

	switch next {
	case StateDiscovered:
		if e.hook() != nil && (e.values.HasCommandClass(command.ClassSecurity) ||
			e.values.HasCommandClass(command.ClassSecurity2)) {
			e.advance(StateKexGet)
			zwave.Debugf("[%s] starting S2 bootstrapping", e.Name())
			e.SubmitFast(command.Batch{command.Q(command.Security2KexGet)})
			return
		}
		e.RefreshStaticValues()
	case StateKexReport:
		e.kexReport()
	case StatePublicKeyReportOther:
		e.publicKeyReport()
	case StateInterviewed:
		e.RefreshDynamicValues()
		e.RefreshSemiStaticValues()
	}
}

// abandonHandshake gives up on secure inclusion and interviews the
// endpoint without it.
func (e *Endpoint) abandonHandshake(failType int, reason error) {
	zwave.Debugf("[%s] S2 bootstrapping failed: %v", e.Name(), reason)
	e.SubmitFast(command.Batch{command.Q(command.Security2KexFail, "type", failType)})
	e.RefreshStaticValues()
}

func (e *Endpoint) kexReport() {
	keys, _ := e.values.Get(command.Security2KexReport).Int("keys")
	// only the S2 unauthenticated class is granted
	if keys&0x01 == 0 {
		e.abandonHandshake(kexFailKey, fmt.Errorf("requested keys %#02x", keys))
		return
	}
	e.SubmitFast(command.Batch{command.Q(command.Security2KexSet,
		"mode", 0, "schemes", 0x02, "profiles", 0x01, "keys", keys&0x01)})
	e.advance(StateKexSet)
}

func (e *Endpoint) publicKeyReport() {
	hook := e.hook()
	peer, _ := e.values.Get(command.Security2PublicKeyReport).Bytes("key")
	key, personalization, own, err := hook.GenerateSharedKey(peer)
	if err != nil {
		e.abandonHandshake(kexFailAuth, err)
		return
	}
	e.mu.Lock()
	e.tempKey, e.personalization = key, personalization
	e.mu.Unlock()
	e.SubmitFast(command.Batch{command.Q(command.Security2PublicKeyReport, "mode", 1, "key", own)})
	e.advance(StatePublicKeyReportSelf)
}

func (e *Endpoint) sendNonce(seq int) {
	hook := e.hook()
	if hook == nil {
		return
	}
	entropy, err := hook.ReceiverEntropy()
	if err != nil {
		zwave.Debugf("[%s] no entropy for nonce report: %v", e.Name(), err)
		return
	}
	e.SubmitFast(command.Batch{command.Q(command.Security2NonceReport, "seq", seq, "mode", 1, "nonce", entropy)})
}

// =============================================================================
// Batches
// =============================================================================

// SubmitBatch sends every query whose class the endpoint supports.
func (e *Endpoint) SubmitBatch(b command.Batch, priority zwave.Priority, xmit byte) {
	for _, q := range b {
		if !e.values.HasCommandClass(q.Key.Class) {
			continue
		}
		_ = e.sender.Send(e.id, q.Key, q.Values, priority, xmit)
	}
}

// SubmitSlow sends a batch at the endpoint's low priority. Interview and
// refresh traffic goes here so it never delays user commands.
func (e *Endpoint) SubmitSlow(b command.Batch) {
	e.SubmitBatch(b, zwave.NodePriorityLo(e.id), zwave.XmitOptions)
}

// SubmitFast sends a batch at the endpoint's high priority.
func (e *Endpoint) SubmitFast(b command.Batch) {
	e.SubmitBatch(b, zwave.NodePriorityHi(e.id), zwave.XmitOptions)
}

// ProbeNode sends a NoOperation to check the node is reachable.
func (e *Endpoint) ProbeNode() {
	e.SubmitFast(command.Batch{command.Q(command.NoOperationSet)})
}

func intRange(lo, hi int) []int {
	out := make([]int, 0, hi-lo)
	for i := lo; i < hi; i++ {
		out = append(out, i)
	}
	return out
}

// RefreshAllCommandVersions asks for the version of every class id.
func (e *Endpoint) RefreshAllCommandVersions() {
	classes := make([]command.Class, 0, 255)
	for _, c := range intRange(0, 255) {
		classes = append(classes, command.Class(c))
	}
	e.SubmitSlow(command.CommandVersionQueries(classes))
}

// RefreshAllSceneActuatorConfigurations asks for every scene, then scene 0
// for the active one.
func (e *Endpoint) RefreshAllSceneActuatorConfigurations() {
	e.SubmitSlow(command.SceneActuatorConfQueries(append(intRange(1, 256), 0)))
}

// RefreshAllParameters asks for every configuration parameter.
func (e *Endpoint) RefreshAllParameters() {
	zwave.Debugf("[%s] refresh all parameters", e.Name())
	e.SubmitSlow(command.ParameterQueries(intRange(0, 255)))
}

// RefreshDynamicValues asks for the values that change during operation.
func (e *Endpoint) RefreshDynamicValues() {
	zwave.Debugf("[%s] refresh dynamic", e.Name())
	b := command.DynamicQueries()
	b = append(b, command.SensorMultilevelQueries(e.values.SensorSupported())...)
	b = append(b, command.MeterQueries(e.values.MeterSupported())...)
	b = append(b, command.ColorQueries(e.values.ColorSwitchSupported())...)
	e.SubmitSlow(b)
}

// RefreshStaticValues runs the static interview. Its last query is the
// manufacturer specific get whose report completes the interview.
func (e *Endpoint) RefreshStaticValues() {
	zwave.Debugf("[%s] refresh static", e.Name())
	e.SubmitSlow(command.StaticQueries(e.values.Classes()))
}

// RefreshSemiStaticValues asks for associations and multi-channel
// endpoints.
func (e *Endpoint) RefreshSemiStaticValues() {
	zwave.Debugf("[%s] refresh semi-static", e.Name())
	b := command.AssociationQueries(e.values.AssociationGroupIDs())
	b = append(b, command.MultiChannelEndpointQueries(e.values.MultiChannelEndPointIDs())...)
	e.SubmitSlow(b)
}

// SmartRefresh refreshes what the current state allows.
func (e *Endpoint) SmartRefresh() {
	switch e.State() {
	case StateNone:
	case StateDiscovered:
		e.RefreshStaticValues()
	case StateInterviewed:
		e.RefreshSemiStaticValues()
		e.RefreshDynamicValues()
	}
}

// =============================================================================
// Rendering
// =============================================================================

// BasicString is a one-line summary.
func (e *Endpoint) BasicString() string {
	state := e.State().String()
	if e.IsFailed() {
		state = "FAILED"
	}
	v := e.values.Versions()
	p := e.values.ProductInfo()
	return strings.Join([]string{
		"NODE: " + e.Name(),
		"state: " + state,
		fmt.Sprintf("version: %d:%d:%d:%d", v.Library, v.Protocol, v.Firmware, v.Hardware),
		fmt.Sprintf("product: %04x:%04x:%04x", p.Manufacturer, p.Type, p.Product),
		fmt.Sprintf("groups: %d", len(e.values.AssociationGroupIDs())),
	}, "  ")
}

func (e *Endpoint) String() string {
	return e.BasicString() + "\n" + e.values.String()
}
