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
	"fmt"
	"strings"
	"time"
)

// TraceDirection tells which way a traced frame travelled.
type TraceDirection string

const (
	// TraceTX is host to stick.
	TraceTX TraceDirection = "TX"
	// TraceRX is stick to host.
	TraceRX TraceDirection = "RX"
)

// hexLimit caps how many bytes of one frame are rendered.
const hexLimit = 32

// TraceEntry is one frame or timeout seen on the wire.
type TraceEntry struct {
	Timestamp time.Time
	Direction TraceDirection
	Note      string
	Data      []byte
}

func (e TraceEntry) String() string {
	var sb strings.Builder
	sb.WriteString("[" + e.Timestamp.Format("15:04:05.000") + "] ")
	sb.WriteString(string(e.Direction) + ": " + formatHexBytes(e.Data))
	if e.Note != "" {
		sb.WriteString(" (" + e.Note + ")")
	}
	return sb.String()
}

// TraceableError carries the frames exchanged before err happened.
// Pull it out of a returned error with GetTrace.
type TraceableError struct {
	Err   error
	Port  string
	Trace []TraceEntry
}

func (e *TraceableError) Error() string { return e.Err.Error() }

func (e *TraceableError) Unwrap() error { return e.Err }

// FormatTrace renders the trace one frame per line, '>' for TX and '<' for RX.
func (e *TraceableError) FormatTrace() string {
	if len(e.Trace) == 0 {
		return "[" + e.Port + "] (no trace data)"
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "[%s] Wire trace (%d entries):\n", e.Port, len(e.Trace))
	for _, entry := range e.Trace {
		arrow := '>'
		if entry.Direction == TraceRX {
			arrow = '<'
		}
		fmt.Fprintf(&sb, "  %c %s", arrow, formatHexBytes(entry.Data))
		if entry.Note != "" {
			fmt.Fprintf(&sb, " (%s)", entry.Note)
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

// GetTrace returns the TraceableError in err's chain, or nil.
func GetTrace(err error) *TraceableError {
	var te *TraceableError
	if !errors.As(err, &te) {
		return nil
	}
	return te
}

func formatHexBytes(data []byte) string {
	switch {
	case len(data) == 0:
		return "(empty)"
	case len(data) > hexLimit:
		return fmt.Sprintf("% X ... (%d bytes total)", data[:hexLimit], len(data))
	default:
		return fmt.Sprintf("% X", data)
	}
}

// TraceBuffer keeps the last N wire events in a ring. The caller provides
// locking.
type TraceBuffer struct {
	port string
	ring []TraceEntry
	next int
	full bool
}

// NewTraceBuffer returns a ring holding size entries, 32 when size is not
// positive.
func NewTraceBuffer(port string, size int) *TraceBuffer {
	if size <= 0 {
		size = 32
	}
	return &TraceBuffer{port: port, ring: make([]TraceEntry, size)}
}

// RecordTX notes a frame written to the stick.
func (tb *TraceBuffer) RecordTX(data []byte, note string) { tb.push(TraceTX, data, note) }

// RecordRX notes a frame read from the stick.
func (tb *TraceBuffer) RecordRX(data []byte, note string) { tb.push(TraceRX, data, note) }

// RecordTimeout notes a wait that expired with nothing received.
func (tb *TraceBuffer) RecordTimeout(note string) { tb.push(TraceRX, nil, "TIMEOUT: "+note) }

func (tb *TraceBuffer) push(dir TraceDirection, data []byte, note string) {
	tb.ring[tb.next] = TraceEntry{
		Timestamp: time.Now(),
		Direction: dir,
		Note:      note,
		Data:      append([]byte(nil), data...),
	}
	tb.next++
	if tb.next == len(tb.ring) {
		tb.next = 0
		tb.full = true
	}
}

// Entries copies out the buffered events, oldest first.
func (tb *TraceBuffer) Entries() []TraceEntry {
	if !tb.full {
		return append([]TraceEntry(nil), tb.ring[:tb.next]...)
	}
	out := make([]TraceEntry, 0, len(tb.ring))
	out = append(out, tb.ring[tb.next:]...)
	return append(out, tb.ring[:tb.next]...)
}

// WrapError attaches a snapshot of the buffer to err. A nil err stays nil.
func (tb *TraceBuffer) WrapError(err error) error {
	if err == nil {
		return nil
	}
	return &TraceableError{Err: err, Port: tb.port, Trace: tb.Entries()}
}

// Clear drops every buffered event.
func (tb *TraceBuffer) Clear() {
	clear(tb.ring)
	tb.next = 0
	tb.full = false
}
