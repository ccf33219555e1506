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

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTraceBuffer_CircularBuffer(t *testing.T) {
	t.Parallel()

	tb := NewTraceBuffer("/dev/ttyACM0", 3)
	for i := range 5 {
		tb.RecordTX([]byte{byte(i)}, "")
	}
	entries := tb.Entries()
	require.Len(t, entries, 3)
	assert.Equal(t, []byte{2}, entries[0].Data)
	assert.Equal(t, []byte{4}, entries[2].Data)

	tb.Clear()
	assert.Empty(t, tb.Entries())

	tb.RecordRX([]byte{9}, "")
	entries = tb.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, TraceRX, entries[0].Direction)
}

func TestTraceBuffer_WrapError(t *testing.T) {
	t.Parallel()

	tb := NewTraceBuffer("/dev/ttyACM0", 8)
	require.NoError(t, tb.WrapError(nil))

	tb.RecordTX([]byte{0x01, 0x03, 0x00, 0x15, 0xE9}, "send")
	tb.RecordRX([]byte{0x06}, "")
	tb.RecordTimeout("ZW_GET_VERSION")

	err := tb.WrapError(ErrTransportTimeout)
	require.ErrorIs(t, err, ErrTransportTimeout)

	te := GetTrace(err)
	require.NotNil(t, te)
	assert.Equal(t, "transport timeout", te.Error())
	assert.Len(t, te.Trace, 3)

	out := te.FormatTrace()
	assert.Contains(t, out, "[/dev/ttyACM0] Wire trace (3 entries)")
	assert.Contains(t, out, "> 01 03 00 15 E9 (send)")
	assert.Contains(t, out, "< 06")
	assert.Contains(t, out, "TIMEOUT: ZW_GET_VERSION")
}

func TestTraceableError_FormatTrace_Empty(t *testing.T) {
	t.Parallel()

	te := &TraceableError{Err: ErrTransportTimeout, Port: "COM3"}
	assert.Equal(t, "[COM3] (no trace data)", te.FormatTrace())
	assert.Nil(t, GetTrace(errors.New("plain")))
}

func TestFormatHexBytes(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "(empty)", formatHexBytes(nil))
	assert.Equal(t, "01 FF", formatHexBytes([]byte{0x01, 0xFF}))

	long := formatHexBytes(make([]byte, 40))
	assert.True(t, strings.HasSuffix(long, "... (40 bytes total)"))
}

func TestTraceEntry_String(t *testing.T) {
	t.Parallel()

	tb := NewTraceBuffer("", 2)
	tb.RecordRX([]byte{0x18}, "can")
	s := tb.Entries()[0].String()
	assert.Contains(t, s, "RX: 18 (can)")
}
