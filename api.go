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

// Serial API function ids.
const (
	FuncSerialAPIGetInitData         = 0x02
	FuncSerialAPIApplNodeInformation = 0x03
	FuncApplicationCommandHandler    = 0x04
	FuncGetControllerCapabilities    = 0x05
	FuncSerialAPISetTimeouts         = 0x06
	FuncSerialAPIGetCapabilities     = 0x07
	FuncSerialAPISoftReset           = 0x08
	FuncSendNodeInformation          = 0x12
	FuncSendData                     = 0x13
	FuncSendDataMulti                = 0x14
	FuncGetVersion                   = 0x15
	FuncGetRandom                    = 0x1c
	FuncMemoryGetID                  = 0x20
	FuncReadMemory                   = 0x23
	FuncGetNodeProtocolInfo          = 0x41
	FuncSetDefault                   = 0x42
	FuncReplicationSendData          = 0x45
	FuncRequestNodeNeighborUpdate    = 0x48
	FuncApplicationUpdate            = 0x49
	FuncAddNodeToNetwork             = 0x4a
	FuncRemoveNodeFromNetwork        = 0x4b
	FuncControllerChange             = 0x4d
	FuncSetLearnMode                 = 0x50
	FuncEnableSUC                    = 0x52
	FuncSetSUCNodeID                 = 0x54
	FuncGetSUCNodeID                 = 0x56
	FuncRequestNodeInfo              = 0x60
	FuncRemoveFailedNodeID           = 0x61
	FuncIsFailedNodeID               = 0x62
	FuncGetRoutingInfo               = 0x80
	FuncSetPromiscuousMode           = 0xd0
)

var funcNames = map[byte]string{
	FuncSerialAPIGetInitData:         "SERIAL_API_GET_INIT_DATA",
	FuncSerialAPIApplNodeInformation: "SERIAL_API_APPL_NODE_INFORMATION",
	FuncApplicationCommandHandler:    "APPLICATION_COMMAND_HANDLER",
	FuncGetControllerCapabilities:    "ZW_GET_CONTROLLER_CAPABILITIES",
	FuncSerialAPISetTimeouts:         "SERIAL_API_SET_TIMEOUTS",
	FuncSerialAPIGetCapabilities:     "SERIAL_API_GET_CAPABILITIES",
	FuncSerialAPISoftReset:           "SERIAL_API_SOFT_RESET",
	FuncSendNodeInformation:          "ZW_SEND_NODE_INFORMATION",
	FuncSendData:                     "ZW_SEND_DATA",
	FuncSendDataMulti:                "ZW_SEND_DATA_MULTI",
	FuncGetVersion:                   "ZW_GET_VERSION",
	FuncGetRandom:                    "ZW_GET_RANDOM",
	FuncMemoryGetID:                  "ZW_MEMORY_GET_ID",
	FuncReadMemory:                   "ZW_READ_MEMORY",
	FuncGetNodeProtocolInfo:          "ZW_GET_NODE_PROTOCOL_INFO",
	FuncSetDefault:                   "ZW_SET_DEFAULT",
	FuncReplicationSendData:          "ZW_REPLICATION_SEND_DATA",
	FuncRequestNodeNeighborUpdate:    "ZW_REQUEST_NODE_NEIGHBOR_UPDATE",
	FuncApplicationUpdate:            "ZW_APPLICATION_UPDATE",
	FuncAddNodeToNetwork:             "ZW_ADD_NODE_TO_NETWORK",
	FuncRemoveNodeFromNetwork:        "ZW_REMOVE_NODE_FROM_NETWORK",
	FuncControllerChange:             "ZW_CONTROLLER_CHANGE",
	FuncSetLearnMode:                 "ZW_SET_LEARN_MODE",
	FuncEnableSUC:                    "ZW_ENABLE_SUC",
	FuncSetSUCNodeID:                 "ZW_SET_SUC_NODE_ID",
	FuncGetSUCNodeID:                 "ZW_GET_SUC_NODE_ID",
	FuncRequestNodeInfo:              "ZW_REQUEST_NODE_INFO",
	FuncRemoveFailedNodeID:           "ZW_REMOVE_FAILED_NODE_ID",
	FuncIsFailedNodeID:               "ZW_IS_FAILED_NODE_ID",
	FuncGetRoutingInfo:               "ZW_GET_ROUTING_INFO",
	FuncSetPromiscuousMode:           "ZW_SET_PROMISCUOUS_MODE",
}

// FuncName returns the serial API name of a function id.
func FuncName(fn byte) string {
	if name, ok := funcNames[fn]; ok {
		return name
	}
	return "UNKNOWN_FUNC"
}

// Transmit options for SEND_DATA.
const (
	TransmitOptionACK       = 0x01
	TransmitOptionLowPower  = 0x02
	TransmitOptionAutoRoute = 0x04
	TransmitOptionNoRoute   = 0x10
	TransmitOptionExplore   = 0x20

	// XmitOptions is the default for routed traffic.
	XmitOptions = TransmitOptionACK | TransmitOptionAutoRoute | TransmitOptionExplore
	// XmitOptionsNoRoute disables the routing table for the send.
	XmitOptionsNoRoute = TransmitOptionACK | TransmitOptionExplore
	// XmitOptionsSecure is used for the security handshake.
	XmitOptionsSecure = TransmitOptionACK | TransmitOptionAutoRoute
)

// Transmit completion codes carried in SEND_DATA callbacks.
const (
	TransmitCompleteOK      = 0x00
	TransmitCompleteNoACK   = 0x01
	TransmitCompleteFail    = 0x02
	TransmitCompleteNotIdle = 0x03
	TransmitCompleteNoRoute = 0x04
	TransmitCompleteHop0    = 0x05
	TransmitCompleteHop1    = 0x06
	TransmitCompleteHop2    = 0x07
	TransmitCompleteHop3    = 0x08
	TransmitCompleteHop4    = 0x09
)

// Add-node modes and statuses.
const (
	AddNodeAny        = 0x01
	AddNodeController = 0x02
	AddNodeSlave      = 0x03
	AddNodeExisting   = 0x04
	AddNodeStop       = 0x05
	AddNodeStopFailed = 0x06
	AddNodeHighPower  = 0x80

	AddNodeStatusLearnReady             = 0x01
	AddNodeStatusNodeFound              = 0x02
	AddNodeStatusAddingSlave            = 0x03
	AddNodeStatusAddingController       = 0x04
	AddNodeStatusProtocolDone           = 0x05
	AddNodeStatusDone                   = 0x06
	AddNodeStatusFailed                 = 0x07
	AddNodeStatusNotInclusionController = 0x23
)

// Remove-node modes and statuses.
const (
	RemoveNodeAny        = 0x01
	RemoveNodeController = 0x02
	RemoveNodeSlave      = 0x03
	RemoveNodeStop       = 0x05

	RemoveNodeStatusLearnReady             = 0x01
	RemoveNodeStatusNodeFound              = 0x02
	RemoveNodeStatusRemovingSlave          = 0x03
	RemoveNodeStatusRemovingController     = 0x04
	RemoveNodeStatusDone                   = 0x06
	RemoveNodeStatusFailed                 = 0x07
	RemoveNodeStatusNotInclusionController = 0x23
)

// Learn mode and controller change.
const (
	LearnModeDisable = 0x00
	LearnModeClassic = 0x01
	LearnModeNWI     = 0x02

	LearnModeStatusStarted = 0x01
	LearnModeStatusDone    = 0x06
	LearnModeStatusFailed  = 0x07
	LearnModeStatusDeleted = 0x80

	ControllerChangeStart      = 0x02
	ControllerChangeStop       = 0x05
	ControllerChangeStopFailed = 0x06
)

// Receive status flags of APPLICATION_COMMAND_HANDLER.
const (
	ReceiveStatusRoutedBusy     = 0x01
	ReceiveStatusRoutedLowPower = 0x02
	ReceiveStatusTypeBroad      = 0x04
	ReceiveStatusTypeMulti      = 0x08
)

// APPLICATION_UPDATE states.
const (
	UpdateStateNodeInfoReceived  = 0x84
	UpdateStateNodeInfoReqDone   = 0x82
	UpdateStateNodeInfoReqFailed = 0x81
	UpdateStateRoutingPending    = 0x80
	UpdateStateNewIDAssigned     = 0x40
	UpdateStateDeleteDone        = 0x20
	UpdateStateSUCID             = 0x10
)

// Controller capability bits (ZW_GET_CONTROLLER_CAPABILITIES).
const (
	CapControllerSecondary      = 0x01
	CapControllerOnOtherNetwork = 0x02
	CapControllerSIS            = 0x04
	CapControllerRealPrimary    = 0x08
	CapControllerSUC            = 0x10
)

// Serial API capability bits (SERIAL_API_GET_INIT_DATA).
const (
	SerialCapSlave        = 0x01
	SerialCapTimerSupport = 0x02
	SerialCapSecondary    = 0x04
	SerialCapSUC          = 0x08
)

// Neighbour update statuses.
const (
	RequestNeighborUpdateStarted = 0x21
	RequestNeighborUpdateDone    = 0x22
	RequestNeighborUpdateFailed  = 0x23
)

// Addressing constants.
const (
	NodeBroadcast        = 0xff
	NumNodeBitfieldBytes = 29
	// MaxNodes is the highest node id a classic network addresses.
	MaxNodes = 232
	// NodeNone marks link-level messages that address no endpoint.
	NodeNone = 0
)

// LibraryTypes maps the library type byte of ZW_GET_VERSION to its name.
var LibraryTypes = []string{
	"Unknown",
	"Static Controller",
	"Controller",
	"Enhanced Slave",
	"Slave",
	"Installer",
	"Routing Slave",
	"Bridge Controller",
	"Device Under Test",
}

// LibraryTypeName returns the name for a library type byte.
func LibraryTypeName(t byte) string {
	if int(t) < len(LibraryTypes) {
		return LibraryTypes[t]
	}
	return LibraryTypes[0]
}
