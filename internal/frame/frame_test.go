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

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChecksum(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		data []byte
		want byte
	}{
		{name: "empty", data: []byte{}, want: 0xFF},
		{name: "sof only", data: []byte{SOF}, want: 0xFF},
		{name: "get version", data: []byte{SOF, 0x03, Request, 0x15}, want: 0xE9},
		{name: "soft reset", data: []byte{SOF, 0x03, Request, 0x08}, want: 0xF4},
		{name: "memory get id", data: []byte{SOF, 0x03, Request, 0x20}, want: 0xDC},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Checksum(tt.data))
		})
	}
}

func TestMakeSumsToSOF(t *testing.T) {
	t.Parallel()
	payloads := [][]byte{
		nil,
		{0x00},
		{0x05, 0x03, 0x20, 0x01, 0xFF, 0x25, 0x42},
		make([]byte, 200),
	}
	for _, p := range payloads {
		for _, dir := range []byte{Request, Response} {
			f := Make(dir, 0x13, p)
			assert.Equal(t, byte(SOF), Sum(f), "frame % x", f)
			assert.True(t, Valid(f))
			assert.Equal(t, len(p)+3, int(f[1]))
			assert.Len(t, Payload(f), len(p))
			assert.True(t, bytes.Equal(p, Payload(f)), "payload % x", Payload(f))
			assert.Equal(t, byte(0x13), Function(f))
			assert.Equal(t, dir, Direction(f))
		}
	}
}

func TestTryExtract(t *testing.T) {
	t.Parallel()
	good := Make(Response, 0x15, []byte{0x5A, 0x2D, 0x57, 0x61, 0x76, 0x65})
	bad := append([]byte(nil), good...)
	bad[len(bad)-1] ^= 0xFF

	tests := []struct {
		name   string
		buf    []byte
		want   []byte
		n      int
		status Status
	}{
		{name: "empty", buf: nil, status: Incomplete},
		{name: "ack", buf: []byte{ACK, SOF}, want: []byte{ACK}, n: 1, status: Complete},
		{name: "nak", buf: []byte{NAK}, want: []byte{NAK}, n: 1, status: Complete},
		{name: "can", buf: []byte{CAN}, want: []byte{CAN}, n: 1, status: Complete},
		{name: "garbage byte", buf: []byte{0x42, SOF}, want: []byte{0x42}, n: 1, status: Unknown},
		{name: "sof alone", buf: []byte{SOF}, status: Incomplete},
		{name: "short length", buf: []byte{SOF, 0x01, 0x00}, want: []byte{SOF}, n: 1, status: Unknown},
		{name: "partial", buf: good[:len(good)-1], status: Incomplete},
		{name: "complete", buf: good, want: good, n: len(good), status: Complete},
		{name: "complete with trailer", buf: append(append([]byte(nil), good...), ACK), want: good, n: len(good), status: Complete},
		{name: "bad checksum", buf: bad, want: bad, n: len(bad), status: Corrupt},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f, n, st := TryExtract(tt.buf)
			assert.Equal(t, tt.status, st)
			assert.Equal(t, tt.n, n)
			if tt.want != nil {
				assert.Equal(t, tt.want, f)
			}
		})
	}
}

func TestTryExtractStream(t *testing.T) {
	t.Parallel()
	a := Make(Response, 0x07, []byte{0x01, 0x02})
	b := Make(Request, 0x04, []byte{0x00, 0x05, 0x03, 0x20, 0x03, 0xFF})
	stream := append([]byte{ACK}, a...)
	stream = append(stream, CAN)
	stream = append(stream, b...)

	var got [][]byte
	for len(stream) > 0 {
		f, n, st := TryExtract(stream)
		require.Equal(t, Complete, st)
		got = append(got, f)
		stream = stream[n:]
	}
	require.Len(t, got, 4)
	assert.Equal(t, []byte{ACK}, got[0])
	assert.Equal(t, a, got[1])
	assert.Equal(t, []byte{CAN}, got[2])
	assert.Equal(t, b, got[3])
}

func TestDescribe(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "ACK", Describe([]byte{ACK}))
	assert.Equal(t, "CAN", Describe([]byte{CAN}))
	assert.Equal(t, "REQ func=0x15 []", Describe(Make(Request, 0x15, nil)))
	assert.Equal(t, "RES func=0x07 [01]", Describe(Make(Response, 0x07, []byte{0x01})))
}
