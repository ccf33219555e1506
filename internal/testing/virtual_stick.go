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

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/ZaparooProject/go-zwave/internal/frame"
)

// TransportType mirrors zwave.TransportType to avoid import cycle
type TransportType string

const (
	// TransportMock represents a mock transport for testing
	TransportMock TransportType = "mock"
)

// ErrStickClosed is returned by reads and writes after Close. It wraps
// io.ErrClosedPipe so the driver treats it as the stick going away.
var ErrStickClosed = fmt.Errorf("virtual stick closed: %w", io.ErrClosedPipe)

// Responder produces the frames the stick sends back after it has ACKed a
// host request. It runs with the stick locked and must not call back into
// the stick.
type Responder func(req []byte) [][]byte

// VirtualStick simulates a Z-Wave controller at the wire level.
//
// Every host data frame is ACKed (unless a CAN or a dropped ACK is scripted)
// and then handed to the responder registered for its function id. Bytes
// queued for the host are returned by Read.
type VirtualStick struct {
	responders map[byte]Responder
	ready      chan struct{}
	rx         []byte
	partial    []byte
	hostFrames [][]byte
	timeout    time.Duration
	mu         sync.Mutex
	hostACKs   int
	hostNAKs   int
	cans       int
	dropACKs   int
	corrupt    bool
	closed     bool
}

// NewVirtualStick creates a stick with no responders. Requests without a
// responder are ACKed and otherwise ignored.
func NewVirtualStick() *VirtualStick {
	return &VirtualStick{
		responders: make(map[byte]Responder),
		ready:      make(chan struct{}, 1),
		timeout:    50 * time.Millisecond,
	}
}

// OnFunction registers the responder for a function id, replacing any
// previous one.
func (s *VirtualStick) OnFunction(fn byte, r Responder) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.responders[fn] = r
}

// CANNext makes the stick answer the next n host data frames with CAN
// instead of ACK. Cancelled frames are not passed to responders.
func (s *VirtualStick) CANNext(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cans += n
}

// DropACKs makes the stick skip the ACK for the next n host data frames.
// The responder still runs.
func (s *VirtualStick) DropACKs(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dropACKs += n
}

// CorruptNextResponse flips the checksum of the next data frame the stick
// sends.
func (s *VirtualStick) CorruptNextResponse() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.corrupt = true
}

// Inject queues unsolicited bytes for the host.
func (s *VirtualStick) Inject(frames ...[]byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, f := range frames {
		s.pushLocked(f)
	}
}

// HostFrames returns copies of the data frames the host has written.
func (s *VirtualStick) HostFrames() [][]byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([][]byte, len(s.hostFrames))
	for i, f := range s.hostFrames {
		out[i] = append([]byte(nil), f...)
	}
	return out
}

// HostFramesFor returns the host data frames carrying the function id.
func (s *VirtualStick) HostFramesFor(fn byte) [][]byte {
	var out [][]byte
	for _, f := range s.HostFrames() {
		if frame.Function(f) == fn {
			out = append(out, f)
		}
	}
	return out
}

// HostACKCount returns how many ACK bytes the host has written.
func (s *VirtualStick) HostACKCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hostACKs
}

// HostNAKCount returns how many NAK bytes the host has written.
func (s *VirtualStick) HostNAKCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hostNAKs
}

// Read returns queued bytes, or (0, nil) once the read timeout expires.
func (s *VirtualStick) Read(buf []byte) (int, error) {
	deadline := time.NewTimer(s.readTimeout())
	defer deadline.Stop()
	for {
		s.mu.Lock()
		if s.closed {
			s.mu.Unlock()
			return 0, ErrStickClosed
		}
		if len(s.rx) > 0 {
			n := copy(buf, s.rx)
			s.rx = s.rx[n:]
			if len(s.rx) > 0 {
				s.signal()
			}
			s.mu.Unlock()
			return n, nil
		}
		s.mu.Unlock()

		select {
		case <-s.ready:
		case <-deadline.C:
			return 0, nil
		}
	}
}

// Write consumes host bytes and runs the scripted stick behaviour for every
// complete frame.
func (s *VirtualStick) Write(data []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, ErrStickClosed
	}
	s.partial = append(s.partial, data...)
	for len(s.partial) > 0 {
		f, n, st := frame.TryExtract(s.partial)
		if st == frame.Incomplete {
			break
		}
		if st == frame.Complete {
			s.handleHostFrame(append([]byte(nil), f...))
		}
		s.partial = s.partial[n:]
	}
	return len(data), nil
}

func (s *VirtualStick) handleHostFrame(f []byte) {
	switch f[0] {
	case frame.ACK:
		s.hostACKs++
		return
	case frame.NAK:
		s.hostNAKs++
		return
	case frame.CAN:
		return
	}

	s.hostFrames = append(s.hostFrames, f)
	if s.cans > 0 {
		s.cans--
		s.pushLocked([]byte{frame.CAN})
		return
	}
	if s.dropACKs > 0 {
		s.dropACKs--
	} else {
		s.pushLocked([]byte{frame.ACK})
	}
	r, ok := s.responders[frame.Function(f)]
	if !ok {
		return
	}
	for _, out := range r(f) {
		s.pushLocked(out)
	}
}

func (s *VirtualStick) pushLocked(f []byte) {
	f = append([]byte(nil), f...)
	if s.corrupt && len(f) >= frame.MinFrameLength && f[0] == frame.SOF {
		f[len(f)-1] ^= 0xFF
		s.corrupt = false
	}
	s.rx = append(s.rx, f...)
	s.signal()
}

func (s *VirtualStick) signal() {
	select {
	case s.ready <- struct{}{}:
	default:
	}
}

func (s *VirtualStick) readTimeout() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timeout
}

// Flush discards bytes queued for the host.
func (s *VirtualStick) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rx = nil
	return nil
}

// SetTimeout sets the read timeout.
func (s *VirtualStick) SetTimeout(timeout time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.timeout = timeout
	return nil
}

// Close makes every further read and write fail.
func (s *VirtualStick) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.signal()
	return nil
}

// Type returns the transport type
func (*VirtualStick) Type() TransportType {
	return TransportMock
}
