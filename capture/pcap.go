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
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/ZaparooProject/go-zwave"
	"github.com/ZaparooProject/go-zwave/internal/syncutil"
	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"
)

// LinkType is DLT_USER0. Each packet is one direction byte followed by
// the raw frame.
const LinkType = layers.LinkType(147)

const snapLen = 512

var (
	// ErrMalformed reports a capture that does not decode.
	ErrMalformed = errors.New("malformed capture")
	// ErrLinkType reports a pcap file with a different link type.
	ErrLinkType = errors.New("unexpected pcap link type")
)

// PcapWriter writes frames to a pcap stream. It is safe for concurrent use
// and satisfies zwave.FrameObserver.
type PcapWriter struct {
	w     *pcapgo.Writer
	c     io.Closer
	err   error
	count int
	mu    syncutil.Mutex
}

// NewPcapWriter writes the file header to w. If w is also an io.Closer it
// is closed by Close.
func NewPcapWriter(w io.Writer) (*PcapWriter, error) {
	pw := pcapgo.NewWriter(w)
	if err := pw.WriteFileHeader(snapLen, LinkType); err != nil {
		return nil, fmt.Errorf("write pcap header: %w", err)
	}
	c, _ := w.(io.Closer)
	return &PcapWriter{w: pw, c: c}, nil
}

// ObserveFrame appends one packet. Write errors are kept and reported by
// Close; later frames are dropped.
func (p *PcapWriter) ObserveFrame(ts time.Time, dir zwave.TraceDirection, f []byte) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return
	}
	data := make([]byte, 0, len(f)+1)
	data = append(data, encodeDirection(dir))
	data = append(data, f...)
	ci := gopacket.CaptureInfo{Timestamp: ts, CaptureLength: len(data), Length: len(data)}
	if err := p.w.WritePacket(ci, data); err != nil {
		p.err = fmt.Errorf("write pcap packet: %w", err)
		return
	}
	p.count++
}

// Count returns the number of packets written.
func (p *PcapWriter) Count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.count
}

// Close reports the first write error and closes the underlying writer.
func (p *PcapWriter) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	err := p.err
	if p.c != nil {
		if cerr := p.c.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("close pcap: %w", cerr)
		}
		p.c = nil
	}
	return err
}

// PcapReader reads records from a stream written by PcapWriter.
type PcapReader struct {
	r *pcapgo.Reader
}

// NewPcapReader reads and checks the file header.
func NewPcapReader(r io.Reader) (*PcapReader, error) {
	pr, err := pcapgo.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	if pr.LinkType() != LinkType {
		return nil, fmt.Errorf("%w: %s", ErrLinkType, pr.LinkType())
	}
	return &PcapReader{r: pr}, nil
}

// Next returns the next record, or io.EOF at the end of the stream.
func (p *PcapReader) Next() (Record, error) {
	data, ci, err := p.r.ReadPacketData()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return Record{}, io.EOF
		}
		return Record{}, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	if len(data) < 2 {
		return Record{}, fmt.Errorf("%w: %d byte packet", ErrMalformed, len(data))
	}
	dir, err := decodeDirection(data[0])
	if err != nil {
		return Record{}, err
	}
	return Record{Time: ci.Timestamp, Direction: dir, Frame: append([]byte(nil), data[1:]...)}, nil
}

// All reads every remaining record.
func (p *PcapReader) All() ([]Record, error) {
	var out []Record
	for {
		rec, err := p.Next()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		out = append(out, rec)
	}
}
