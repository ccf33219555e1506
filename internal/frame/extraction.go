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

package frame

import "fmt"

// Status is the outcome of trying to pull one frame off a receive buffer.
type Status int

const (
	// Incomplete means more bytes are needed; nothing was consumed.
	Incomplete Status = iota
	// Complete means a control byte or a checksum-verified data frame.
	Complete
	// Corrupt means a data frame whose checksum did not verify. The frame
	// bytes are consumed so the caller can move past them.
	Corrupt
	// Unknown means the leading byte is not a valid frame start. One byte
	// is consumed.
	Unknown
)

func (s Status) String() string {
	switch s {
	case Incomplete:
		return "incomplete"
	case Complete:
		return "complete"
	case Corrupt:
		return "corrupt"
	case Unknown:
		return "unknown"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// TryExtract returns the next frame at the start of buf, the number of
// bytes it occupies and a status. The returned slice aliases buf.
func TryExtract(buf []byte) (f []byte, n int, st Status) {
	if len(buf) == 0 {
		return nil, 0, Incomplete
	}
	switch buf[0] {
	case ACK, NAK, CAN:
		return buf[:1], 1, Complete
	case SOF:
	default:
		return buf[:1], 1, Unknown
	}
	if len(buf) < 2 {
		return nil, 0, Incomplete
	}
	length := int(buf[1])
	if length < MinFrameLength-2 {
		// A length this small cannot hold direction, function and checksum.
		return buf[:1], 1, Unknown
	}
	total := length + 2
	if len(buf) < total {
		return nil, 0, Incomplete
	}
	f = buf[:total]
	if Sum(f) != SOF {
		return f, total, Corrupt
	}
	return f, total, Complete
}

// Make builds a data frame for the given direction and function id.
func Make(direction, function byte, data []byte) []byte {
	f := make([]byte, 0, len(data)+MinFrameLength)
	f = append(f, SOF, byte(len(data)+3), direction, function)
	f = append(f, data...)
	return append(f, Checksum(f))
}

// Function returns the function id of a data frame, or 0 for frames too
// short to carry one.
func Function(f []byte) byte {
	if len(f) < MinFrameLength {
		return 0
	}
	return f[3]
}

// Direction returns the direction byte of a data frame.
func Direction(f []byte) byte {
	if len(f) < MinFrameLength {
		return 0
	}
	return f[2]
}

// Payload returns the bytes between the function id and the checksum.
func Payload(f []byte) []byte {
	if len(f) < MinFrameLength {
		return nil
	}
	return f[HeaderLength : len(f)-1]
}

// Describe renders a frame for diagnostics.
func Describe(f []byte) string {
	if len(f) == 1 {
		switch f[0] {
		case ACK:
			return "ACK"
		case NAK:
			return "NAK"
		case CAN:
			return "CAN"
		}
	}
	if len(f) < MinFrameLength {
		return fmt.Sprintf("% x", f)
	}
	dir := "REQ"
	if f[2] == Response {
		dir = "RES"
	}
	return fmt.Sprintf("%s func=0x%02x [% x]", dir, f[3], Payload(f))
}
