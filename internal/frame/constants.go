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

// Package frame implements the serial API link-layer framing: single-byte
// control frames and checksummed SOF data frames.
package frame

// Control bytes. Every frame on the wire starts with one of these.
const (
	SOF = 0x01 // start of a data frame
	ACK = 0x06
	NAK = 0x15
	CAN = 0x18
)

// Frame direction, carried in byte 2 of a data frame.
const (
	Request  = 0x00
	Response = 0x01
)

// Frame size limits
const (
	// MinFrameLength is SOF, length, direction, function and checksum.
	MinFrameLength = 5
	// MaxFrameLength is the largest frame a one-byte length field can describe.
	MaxFrameLength = 0xFF + 2
	// HeaderLength is the number of bytes before the payload of a data frame.
	HeaderLength = 4
)

// checksumSeed is the initial value of the XOR checksum.
const checksumSeed = 0xFF
