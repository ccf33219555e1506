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

package controller

import (
	"time"

	zwave "github.com/ZaparooProject/go-zwave"
)

// Activity names a pairing operation.
type Activity string

// Pairing activities.
const (
	ActivityAddNode          Activity = "AddNode"
	ActivityStopAddNode      Activity = "StopAddNode"
	ActivityRemoveNode       Activity = "RemoveNode"
	ActivitySetLearnMode     Activity = "SetLearnMode"
	ActivityChangeController Activity = "ChangeController"
	ActivityNeighborUpdate   Activity = "NeighborUpdate"
)

// Event is a step of a pairing operation.
type Event string

// Pairing events.
const (
	EventStarted    Event = "Started"
	EventInProgress Event = "InProgress"
	EventSuccess    Event = "Success"
	EventFailed     Event = "Failed"
	EventAborted    Event = "Aborted"
)

// EventFunc receives pairing progress. node is 0 when unknown.
type EventFunc func(activity Activity, event Event, node int)

type pairingAction int

const (
	actionContinue pairingAction = iota + 1
	actionDone
	actionFailed
	// actionDoneUpdate completes and refreshes the network view.
	actionDoneUpdate
)

type statusTable map[byte]pairingAction

var (
	addNodeActions = statusTable{
		zwave.AddNodeStatusLearnReady:             actionContinue,
		zwave.AddNodeStatusAddingSlave:            actionContinue,
		zwave.AddNodeStatusAddingController:       actionContinue,
		zwave.AddNodeStatusNodeFound:              actionContinue,
		zwave.AddNodeStatusFailed:                 actionFailed,
		zwave.AddNodeStatusNotInclusionController: actionFailed,
		zwave.AddNodeStatusDone:                   actionDoneUpdate,
		zwave.AddNodeStatusProtocolDone:           actionDoneUpdate,
	}
	stopActions = statusTable{
		zwave.AddNodeStatusLearnReady:             actionContinue,
		zwave.AddNodeStatusAddingSlave:            actionContinue,
		zwave.AddNodeStatusAddingController:       actionContinue,
		zwave.AddNodeStatusNodeFound:              actionContinue,
		zwave.AddNodeStatusFailed:                 actionDone,
		zwave.AddNodeStatusNotInclusionController: actionDone,
		zwave.AddNodeStatusDone:                   actionDone,
		zwave.AddNodeStatusProtocolDone:           actionDone,
	}
	removeNodeActions = statusTable{
		zwave.RemoveNodeStatusLearnReady:             actionContinue,
		zwave.RemoveNodeStatusRemovingSlave:          actionContinue,
		zwave.RemoveNodeStatusRemovingController:     actionContinue,
		zwave.RemoveNodeStatusNodeFound:              actionContinue,
		zwave.RemoveNodeStatusNotInclusionController: actionFailed,
		zwave.RemoveNodeStatusFailed:                 actionFailed,
		zwave.RemoveNodeStatusDone:                   actionDoneUpdate,
	}
	learnModeActions = statusTable{
		zwave.LearnModeStatusStarted: actionContinue,
		zwave.LearnModeStatusFailed:  actionFailed,
		zwave.LearnModeStatusDone:    actionDoneUpdate,
	}
)

// stopPairingTimeout bounds the wait for the controller to confirm a
// stopped add.
const stopPairingTimeout = 5 * time.Second

// pairing sends a multi-callback operation and translates every status
// callback through table into events.
func (c *Controller) pairing(activity Activity, fn, mode byte, table statusTable, timeout time.Duration, ev EventFunc) {
	zwave.Debugf("%s", activity)
	progress := func(reply []byte) bool {
		p := payloadOf(reply)
		if len(p) < 3 {
			zwave.Debugf("[%s] short status % x", activity, p)
			return false
		}
		status, node := p[1], int(p[2])
		action, ok := table[status]
		if !ok {
			zwave.Debugf("[%s] unexpected status %#02x", activity, status)
			return false
		}
		switch action {
		case actionContinue:
			zwave.Debugf("[%s] in progress: status %#02x node %d", activity, status, node)
			ev(activity, EventInProgress, node)
			return false
		case actionDone:
			ev(activity, EventSuccess, node)
		case actionDoneUpdate:
			zwave.Debugf("[%s] success, updating node %d", activity, node)
			ev(activity, EventSuccess, node)
			// harmless after a removal
			c.RequestNodeInfo(node, nil)
			c.Update(nil)
		case actionFailed:
			zwave.Debugf("[%s] failed: status %#02x node %d", activity, status, node)
			ev(activity, EventFailed, node)
		}
		return true
	}
	handler := func(reply []byte) {
		if reply == nil {
			zwave.Debugf("[%s] aborted", activity)
			ev(activity, EventAborted, 0)
		}
	}
	ev(activity, EventStarted, 0)
	c.sendWithID(fn, []byte{mode}, handler, zwave.WithTimeout(timeout), zwave.WithProgress(progress))
}

// stop sends a mode change that only needs the controller's ACK.
func (c *Controller) stop(fn, mode byte) {
	c.sendWithID(fn, []byte{mode}, nil, zwave.WithNoResponse())
}

// AddNodeToNetwork puts the controller into inclusion mode.
func (c *Controller) AddNodeToNetwork(ev EventFunc) {
	c.pairing(ActivityAddNode, zwave.FuncAddNodeToNetwork, zwave.AddNodeAny, addNodeActions, c.pairingTimeout, ev)
}

// StopAddNodeToNetwork ends inclusion mode.
func (c *Controller) StopAddNodeToNetwork(ev EventFunc) {
	c.pairing(ActivityStopAddNode, zwave.FuncAddNodeToNetwork, zwave.AddNodeStop, stopActions, stopPairingTimeout, ev)
}

// RemoveNodeFromNetwork puts the controller into exclusion mode.
func (c *Controller) RemoveNodeFromNetwork(ev EventFunc) {
	c.pairing(ActivityRemoveNode, zwave.FuncRemoveNodeFromNetwork, zwave.RemoveNodeAny, removeNodeActions, c.pairingTimeout, ev)
}

// StopRemoveNodeFromNetwork ends exclusion mode. The controller sometimes
// answers with a stray status callback, which the driver drops.
func (c *Controller) StopRemoveNodeFromNetwork() {
	c.stop(zwave.FuncRemoveNodeFromNetwork, zwave.RemoveNodeStop)
}

// SetLearnMode lets another controller include this one.
func (c *Controller) SetLearnMode(ev EventFunc) {
	c.pairing(ActivitySetLearnMode, zwave.FuncSetLearnMode, zwave.LearnModeNWI, learnModeActions, c.pairingTimeout, ev)
}

// StopSetLearnMode leaves learn mode.
func (c *Controller) StopSetLearnMode() {
	c.stop(zwave.FuncSetLearnMode, zwave.LearnModeDisable)
}

// ChangeController hands the primary role to a controller being included.
func (c *Controller) ChangeController(ev EventFunc) {
	c.pairing(ActivityChangeController, zwave.FuncControllerChange, zwave.ControllerChangeStart, addNodeActions, c.pairingTimeout, ev)
}

// StopChangeController ends a controller change.
func (c *Controller) StopChangeController() {
	c.stop(zwave.FuncControllerChange, zwave.ControllerChangeStop)
}

// NeighborUpdate makes node rediscover its neighbours.
func (c *Controller) NeighborUpdate(node int, ev EventFunc) {
	zwave.Debugf("neighbor update for %d", node)
	progress := func(reply []byte) bool {
		p := payloadOf(reply)
		if len(p) < 2 {
			return false
		}
		switch p[1] {
		case zwave.RequestNeighborUpdateStarted:
			ev(ActivityNeighborUpdate, EventInProgress, node)
			return false
		case zwave.RequestNeighborUpdateDone:
			ev(ActivityNeighborUpdate, EventSuccess, node)
		case zwave.RequestNeighborUpdateFailed:
			ev(ActivityNeighborUpdate, EventFailed, node)
		default:
			zwave.Debugf("[%s] unknown status %#02x", ActivityNeighborUpdate, p[1])
		}
		return true
	}
	handler := func(reply []byte) {
		if reply == nil {
			ev(ActivityNeighborUpdate, EventAborted, node)
		}
	}
	ev(ActivityNeighborUpdate, EventStarted, node)
	c.sendWithID(zwave.FuncRequestNodeNeighborUpdate, []byte{byte(node)}, handler,
		zwave.WithTimeout(c.pairingTimeout),
		zwave.WithReplies(zwave.Reply{Kind: zwave.AwaitACK}, zwave.Reply{Kind: zwave.AwaitCallbacks}),
		zwave.WithProgress(progress))
}
