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

package translator

import "fmt"

// Endpoint ids above 0xff address a multi-channel endpoint of a node: the
// node id is in the upper bits and the channel in the low byte.
const channelShift = 8

// ChannelEndpoint returns the endpoint id of channel c on node n.
func ChannelEndpoint(node, channel int) int {
	return node<<channelShift + channel
}

// IsChannel reports whether id addresses a multi-channel endpoint.
func IsChannel(id int) bool {
	return id > 0xff
}

// SplitEndpoint returns the node and channel of an endpoint id. The
// channel is 0 for a plain node.
func SplitEndpoint(id int) (node, channel int) {
	if !IsChannel(id) {
		return id, 0
	}
	return id >> channelShift, id & 0xff
}

// EndpointName renders an endpoint id as "node" or "node.channel".
func EndpointName(id int) string {
	if !IsChannel(id) {
		return fmt.Sprintf("%d", id)
	}
	n, c := SplitEndpoint(id)
	return fmt.Sprintf("%d.%d", n, c)
}
