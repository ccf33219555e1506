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
	"testing"
	"time"

	"github.com/ZaparooProject/go-zwave/internal/frame"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// readFrames reads from the stick until want frames have arrived or the
// deadline passes.
func readFrames(t *testing.T, r interface{ Read([]byte) (int, error) }, want int) [][]byte {
	t.Helper()
	var (
		buf    []byte
		frames [][]byte
	)
	chunk := make([]byte, 64)
	deadline := time.Now().Add(time.Second)
	for len(frames) < want && time.Now().Before(deadline) {
		n, err := r.Read(chunk)
		require.NoError(t, err)
		buf = append(buf, chunk[:n]...)
		for len(buf) > 0 {
			f, used, st := frame.TryExtract(buf)
			if st == frame.Incomplete {
				break
			}
			if st == frame.Complete {
				frames = append(frames, append([]byte(nil), f...))
			}
			buf = buf[used:]
		}
	}
	return frames
}

func TestVirtualStick_ACKAndRespond(t *testing.T) {
	t.Parallel()

	stick := NewVirtualStick()
	InstallDefaultController(stick)

	req := frame.Make(frame.Request, fnGetVersion, nil)
	n, err := stick.Write(req)
	require.NoError(t, err)
	assert.Equal(t, len(req), n)

	frames := readFrames(t, stick, 2)
	require.Len(t, frames, 2)
	assert.Equal(t, []byte{frame.ACK}, frames[0])
	assert.Equal(t, byte(fnGetVersion), frame.Function(frames[1]))
	assert.Equal(t, byte(frame.Response), frame.Direction(frames[1]))
	assert.Equal(t, [][]byte{req}, stick.HostFrames())
}

func TestVirtualStick_SplitWrite(t *testing.T) {
	t.Parallel()

	stick := NewVirtualStick()
	req := frame.Make(frame.Request, fnGetVersion, nil)
	_, err := stick.Write(req[:2])
	require.NoError(t, err)
	assert.Empty(t, stick.HostFrames())

	_, err = stick.Write(req[2:])
	require.NoError(t, err)
	assert.Len(t, stick.HostFrames(), 1)
}

func TestVirtualStick_CANNext(t *testing.T) {
	t.Parallel()

	stick := NewVirtualStick()
	InstallDefaultController(stick)
	stick.CANNext(1)

	req := frame.Make(frame.Request, fnGetVersion, nil)
	_, err := stick.Write(req)
	require.NoError(t, err)

	frames := readFrames(t, stick, 1)
	require.Len(t, frames, 1)
	assert.Equal(t, []byte{frame.CAN}, frames[0])
}

func TestVirtualStick_CorruptNextResponse(t *testing.T) {
	t.Parallel()

	stick := NewVirtualStick()
	InstallDefaultController(stick)
	stick.CorruptNextResponse()

	_, err := stick.Write(frame.Make(frame.Request, fnGetVersion, nil))
	require.NoError(t, err)

	// the corrupt response is skipped by readFrames, only the ACK survives
	frames := readFrames(t, stick, 2)
	assert.Equal(t, [][]byte{{frame.ACK}}, frames)
}

func TestVirtualStick_CountsHostControlBytes(t *testing.T) {
	t.Parallel()

	stick := NewVirtualStick()
	_, err := stick.Write([]byte{frame.NAK, frame.ACK, frame.ACK, frame.NAK, frame.NAK})
	require.NoError(t, err)
	assert.Equal(t, 2, stick.HostACKCount())
	assert.Equal(t, 3, stick.HostNAKCount())
	assert.Empty(t, stick.HostFrames())
}

func TestVirtualStick_ReadTimeout(t *testing.T) {
	t.Parallel()

	stick := NewVirtualStick()
	require.NoError(t, stick.SetTimeout(10*time.Millisecond))

	n, err := stick.Read(make([]byte, 8))
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestVirtualStick_Close(t *testing.T) {
	t.Parallel()

	stick := NewVirtualStick()
	require.NoError(t, stick.Close())

	_, err := stick.Read(make([]byte, 8))
	require.ErrorIs(t, err, ErrStickClosed)
	_, err = stick.Write([]byte{frame.ACK})
	require.ErrorIs(t, err, ErrStickClosed)
	assert.Equal(t, TransportMock, stick.Type())
}

func TestBuildInitDataResponse(t *testing.T) {
	t.Parallel()

	f := BuildInitDataResponse([]byte{1, 2, 9})
	payload := frame.Payload(f)
	require.Len(t, payload, 34)
	assert.Equal(t, byte(29), payload[2])
	assert.Equal(t, byte(0x03), payload[3])
	assert.Equal(t, byte(0x01), payload[4])
	assert.True(t, frame.Valid(f))
}
