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
	"math/rand/v2"
	"sync"
	"time"
)

// Backend is the stick side a JitteryTransport wraps.
type Backend interface {
	Read(buf []byte) (int, error)
	Write(data []byte) (int, error)
	Flush() error
	SetTimeout(timeout time.Duration) error
	Close() error
	Type() TransportType
}

// JitterConfig selects which line artefacts a JitteryTransport produces.
// A zero Seed picks a random one.
type JitterConfig struct {
	MaxLatencyMs      int
	FragmentMinBytes  int
	Seed              uint64
	FragmentReads     bool
	USBBoundaryStress bool
}

// DefaultJitterConfig splits reads at random points and adds up to 5ms of
// latency to each.
func DefaultJitterConfig() JitterConfig {
	return JitterConfig{MaxLatencyMs: 5, FragmentReads: true, FragmentMinBytes: 1}
}

// usbPacket is the bulk transfer size of a full-speed USB serial bridge.
const usbPacket = 64

// JitteryTransport hands out what the backend produced in random pieces,
// the way FTDI and CH340 bridges do. Nothing is lost: leftovers wait for the
// next Read. Writes and control calls go straight to the backend.
type JitteryTransport struct {
	Backend
	cfg JitterConfig

	mu      sync.Mutex
	rng     *rand.Rand
	pending []byte
	served  int
}

// NewJitteryTransport wraps backend.
func NewJitteryTransport(backend Backend, config JitterConfig) *JitteryTransport {
	seed := config.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	config.FragmentMinBytes = max(config.FragmentMinBytes, 1)
	return &JitteryTransport{
		Backend: backend,
		cfg:     config,
		rng:     rand.New(rand.NewPCG(seed, ^seed)), //nolint:gosec // test randomness
	}
}

func (j *JitteryTransport) Read(buf []byte) (int, error) {
	if d := j.latency(); d > 0 {
		time.Sleep(d)
	}

	j.mu.Lock()
	refill := len(j.pending) == 0
	j.mu.Unlock()
	if refill {
		chunk := make([]byte, 512)
		n, err := j.Backend.Read(chunk)
		if n == 0 || err != nil {
			return 0, err //nolint:wrapcheck // pass-through
		}
		j.mu.Lock()
		j.pending = append(j.pending, chunk[:n]...)
		j.mu.Unlock()
	}

	j.mu.Lock()
	defer j.mu.Unlock()
	n := j.pieceLen(min(len(j.pending), len(buf)))
	copy(buf, j.pending[:n])
	j.pending = j.pending[n:]
	j.served += n
	return n, nil
}

func (j *JitteryTransport) latency() time.Duration {
	if j.cfg.MaxLatencyMs <= 0 {
		return 0
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	return time.Duration(j.rng.IntN(j.cfg.MaxLatencyMs+1)) * time.Millisecond
}

// pieceLen shortens a read of n bytes. Called with mu held.
func (j *JitteryTransport) pieceLen(n int) int {
	if j.cfg.USBBoundaryStress {
		n = min(n, usbPacket-j.served%usbPacket)
	}
	if lo := j.cfg.FragmentMinBytes; j.cfg.FragmentReads && n > lo {
		n = lo + j.rng.IntN(n-lo+1)
	}
	return n
}

// Flush drops the bytes held back for later reads as well.
func (j *JitteryTransport) Flush() error {
	j.mu.Lock()
	j.pending = nil
	j.mu.Unlock()
	return j.Backend.Flush() //nolint:wrapcheck // pass-through
}
