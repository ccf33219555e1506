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

package capture

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/ZaparooProject/go-zwave"
	"github.com/ZaparooProject/go-zwave/internal/syncutil"
	"github.com/fxamacker/cbor/v2"
)

// traceRecord is the CBOR form of a Record. Integer keys keep a busy
// trace small.
type traceRecord struct {
	Frame []byte `cbor:"3,keyasint"`
	Nanos int64  `cbor:"1,keyasint"`
	RX    bool   `cbor:"2,keyasint,omitempty"`
}

// TraceRecorder appends CBOR records to a stream, one map per frame. It is
// safe for concurrent use and satisfies zwave.FrameObserver.
type TraceRecorder struct {
	buf   *bufio.Writer
	enc   *cbor.Encoder
	c     io.Closer
	err   error
	count int
	mu    syncutil.Mutex
}

// NewTraceRecorder writes to w. If w is also an io.Closer it is closed by
// Close.
func NewTraceRecorder(w io.Writer) *TraceRecorder {
	buf := bufio.NewWriter(w)
	c, _ := w.(io.Closer)
	return &TraceRecorder{buf: buf, enc: cbor.NewEncoder(buf), c: c}
}

// ObserveFrame encodes one record.
func (t *TraceRecorder) ObserveFrame(ts time.Time, dir zwave.TraceDirection, f []byte) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.err != nil {
		return
	}
	rec := traceRecord{Nanos: ts.UnixNano(), RX: dir == zwave.TraceRX, Frame: f}
	if err := t.enc.Encode(rec); err != nil {
		t.err = fmt.Errorf("encode trace record: %w", err)
		return
	}
	t.count++
}

// Count returns the number of records written.
func (t *TraceRecorder) Count() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.count
}

// Flush pushes buffered records to the underlying writer.
func (t *TraceRecorder) Flush() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.err != nil {
		return t.err
	}
	if err := t.buf.Flush(); err != nil {
		return fmt.Errorf("flush trace: %w", err)
	}
	return nil
}

// Close flushes, closes the underlying writer and reports the first error.
func (t *TraceRecorder) Close() error {
	err := t.Flush()
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.c != nil {
		if cerr := t.c.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("close trace: %w", cerr)
		}
		t.c = nil
	}
	return err
}

// ReadTrace decodes every record from r.
func ReadTrace(r io.Reader) ([]Record, error) {
	dec := cbor.NewDecoder(bufio.NewReader(r))
	var out []Record
	for {
		var rec traceRecord
		err := dec.Decode(&rec)
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return out, fmt.Errorf("%w: %w", ErrMalformed, err)
		}
		dir := zwave.TraceTX
		if rec.RX {
			dir = zwave.TraceRX
		}
		out = append(out, Record{Time: time.Unix(0, rec.Nanos), Direction: dir, Frame: rec.Frame})
	}
}
