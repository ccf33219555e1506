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

// Package capture records serial API traffic. PcapWriter produces files
// Wireshark can open; TraceRecorder produces compact CBOR traces. Both
// plug into a driver as frame observers.
package capture

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"time"

	"github.com/ZaparooProject/go-zwave"
)

// Record is one frame seen on the wire.
type Record struct {
	Time      time.Time
	Direction zwave.TraceDirection
	Frame     []byte
}

// Direction pseudo-header values, the first byte of every pcap packet.
const (
	dirHostToStick byte = 0x00
	dirStickToHost byte = 0x01
)

func encodeDirection(d zwave.TraceDirection) byte {
	if d == zwave.TraceRX {
		return dirStickToHost
	}
	return dirHostToStick
}

func decodeDirection(b byte) (zwave.TraceDirection, error) {
	switch b {
	case dirHostToStick:
		return zwave.TraceTX, nil
	case dirStickToHost:
		return zwave.TraceRX, nil
	default:
		return "", fmt.Errorf("%w: direction byte %#02x", ErrMalformed, b)
	}
}

// pcapMagics are the file magics of microsecond and nanosecond pcap files
// in both byte orders.
var pcapMagics = [][]byte{
	{0xd4, 0xc3, 0xb2, 0xa1},
	{0xa1, 0xb2, 0xc3, 0xd4},
	{0x4d, 0x3c, 0xb2, 0xa1},
	{0xa1, 0xb2, 0x3c, 0x4d},
}

// ReadAll reads a pcap file or a CBOR trace, whichever r holds.
func ReadAll(r io.Reader) ([]Record, error) {
	br := bufio.NewReader(r)
	head, _ := br.Peek(4)
	for _, m := range pcapMagics {
		if bytes.Equal(head, m) {
			pr, err := NewPcapReader(br)
			if err != nil {
				return nil, err
			}
			return pr.All()
		}
	}
	return ReadTrace(br)
}
