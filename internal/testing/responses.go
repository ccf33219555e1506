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

package testing

import "github.com/ZaparooProject/go-zwave/internal/frame"

// Function ids the simulated controller answers. They mirror the zwave
// package constants.
const (
	fnGetInitData          = 0x02
	fnApplNodeInformation  = 0x03
	fnAppCommandHandler    = 0x04
	fnGetControllerCaps    = 0x05
	fnGetCapabilities      = 0x07
	fnSendData             = 0x13
	fnGetVersion           = 0x15
	fnMemoryGetID          = 0x20
	fnGetNodeProtocolInfo  = 0x41
	fnApplicationUpdate    = 0x49
	fnAddNodeToNetwork     = 0x4a
	fnGetSUCNodeID         = 0x56
	fnRequestNodeInfo      = 0x60
	fnSetPromiscuousMode   = 0xd0
	updateNodeInfoReceived = 0x84
)

// Default identity of the simulated controller.
var (
	DefaultHomeID   = []byte{0xC0, 0xFF, 0xEE, 0x01}
	DefaultNodeID   = byte(1)
	DefaultVersion  = "Z-Wave 4.05"
	DefaultLibrary  = byte(0x01)
	DefaultNodeList = []byte{1, 2, 3}
)

// ResponseFrame builds a controller RESPONSE frame.
func ResponseFrame(fn byte, data ...byte) []byte {
	return frame.Make(frame.Response, fn, data)
}

// RequestFrame builds a controller REQUEST frame (callbacks and unsolicited
// traffic).
func RequestFrame(fn byte, data ...byte) []byte {
	return frame.Make(frame.Request, fn, data)
}

// CallbackID returns the callback id a host frame carries before its
// checksum.
func CallbackID(req []byte) byte {
	if len(req) < frame.MinFrameLength+1 {
		return 0
	}
	return req[len(req)-2]
}

// BuildVersionResponse creates a GET_VERSION response.
func BuildVersionResponse(version string, library byte) []byte {
	data := make([]byte, 0, len(version)+2)
	data = append(data, version...)
	data = append(data, 0x00, library)
	return ResponseFrame(fnGetVersion, data...)
}

// BuildMemoryGetIDResponse creates a MEMORY_GET_ID response.
func BuildMemoryGetIDResponse(homeID []byte, nodeID byte) []byte {
	data := make([]byte, 0, len(homeID)+1)
	data = append(data, homeID...)
	data = append(data, nodeID)
	return ResponseFrame(fnMemoryGetID, data...)
}

// BuildInitDataResponse creates a SERIAL_API_GET_INIT_DATA response listing
// the given nodes.
func BuildInitDataResponse(nodes []byte) []byte {
	bits := make([]byte, 29)
	for _, n := range nodes {
		if n == 0 {
			continue
		}
		bits[(n-1)/8] |= 1 << ((n - 1) % 8)
	}
	data := make([]byte, 0, 34)
	data = append(data, 0x05, 0x00, byte(len(bits)))
	data = append(data, bits...)
	data = append(data, 0x03, 0x01)
	return ResponseFrame(fnGetInitData, data...)
}

// BuildCapabilitiesResponse creates a SERIAL_API_GET_CAPABILITIES response
// advertising the given function ids.
func BuildCapabilitiesResponse(funcs []byte) []byte {
	bits := make([]byte, 32)
	for _, fn := range funcs {
		if fn == 0 {
			continue
		}
		bits[(fn-1)/8] |= 1 << ((fn - 1) % 8)
	}
	data := make([]byte, 0, 40)
	// application version, revision, manufacturer, product type, product id
	data = append(data, 0x01, 0x02, 0x00, 0x86, 0x00, 0x01, 0x00, 0x5A)
	data = append(data, bits...)
	return ResponseFrame(fnGetCapabilities, data...)
}

// BuildNodeProtocolInfoResponse creates a GET_NODE_PROTOCOL_INFO response.
func BuildNodeProtocolInfoResponse(basic, generic, specific byte) []byte {
	return ResponseFrame(fnGetNodeProtocolInfo, 0xD3, 0x9C, 0x01, basic, generic, specific)
}

// BuildSendDataReplies creates the RESPONSE and callback of a successful
// SEND_DATA.
func BuildSendDataReplies(req []byte, txStatus byte) [][]byte {
	return [][]byte{
		ResponseFrame(fnSendData, 0x01),
		RequestFrame(fnSendData, CallbackID(req), txStatus, 0x00, 0x02),
	}
}

// BuildApplicationCommand creates an unsolicited APPLICATION_COMMAND_HANDLER
// frame from a node.
func BuildApplicationCommand(node byte, cmd ...byte) []byte {
	data := make([]byte, 0, len(cmd)+3)
	data = append(data, 0x00, node, byte(len(cmd)))
	data = append(data, cmd...)
	return RequestFrame(fnAppCommandHandler, data...)
}

// BuildNodeInfoUpdate creates an unsolicited APPLICATION_UPDATE carrying a
// node information frame.
func BuildNodeInfoUpdate(node, basic, generic, specific byte, classes ...byte) []byte {
	data := make([]byte, 0, len(classes)+6)
	data = append(data, updateNodeInfoReceived, node, byte(len(classes)+3), basic, generic, specific)
	data = append(data, classes...)
	return RequestFrame(fnApplicationUpdate, data...)
}

// BuildAddNodeProgress creates an ADD_NODE_TO_NETWORK callback.
func BuildAddNodeProgress(cbid, status, node byte) []byte {
	return RequestFrame(fnAddNodeToNetwork, cbid, status, node, 0x00)
}

// InstallDefaultController registers responders for the controller queries
// issued at startup, a SEND_DATA that always succeeds and a REQUEST_NODE_INFO
// that is accepted.
func InstallDefaultController(s *VirtualStick) {
	s.OnFunction(fnGetVersion, func([]byte) [][]byte {
		return [][]byte{BuildVersionResponse(DefaultVersion, DefaultLibrary)}
	})
	s.OnFunction(fnMemoryGetID, func([]byte) [][]byte {
		return [][]byte{BuildMemoryGetIDResponse(DefaultHomeID, DefaultNodeID)}
	})
	s.OnFunction(fnGetInitData, func([]byte) [][]byte {
		return [][]byte{BuildInitDataResponse(DefaultNodeList)}
	})
	s.OnFunction(fnGetCapabilities, func([]byte) [][]byte {
		return [][]byte{BuildCapabilitiesResponse([]byte{
			fnGetInitData, fnApplNodeInformation, fnGetControllerCaps, fnGetCapabilities,
			fnSendData, fnGetVersion, fnMemoryGetID, fnGetNodeProtocolInfo,
			fnAddNodeToNetwork, fnGetSUCNodeID, fnRequestNodeInfo, fnSetPromiscuousMode,
		})}
	})
	s.OnFunction(fnGetControllerCaps, func([]byte) [][]byte {
		return [][]byte{ResponseFrame(fnGetControllerCaps, 0x1C)}
	})
	s.OnFunction(fnGetSUCNodeID, func([]byte) [][]byte {
		return [][]byte{ResponseFrame(fnGetSUCNodeID, DefaultNodeID)}
	})
	s.OnFunction(fnGetNodeProtocolInfo, func([]byte) [][]byte {
		return [][]byte{BuildNodeProtocolInfoResponse(0x04, 0x10, 0x01)}
	})
	s.OnFunction(fnSendData, func(req []byte) [][]byte {
		return BuildSendDataReplies(req, 0x00)
	})
	s.OnFunction(fnRequestNodeInfo, func([]byte) [][]byte {
		return [][]byte{ResponseFrame(fnRequestNodeInfo, 0x01)}
	})
}
