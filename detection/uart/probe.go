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

package uart

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ZaparooProject/go-zwave"
	"github.com/ZaparooProject/go-zwave/detection"
	"github.com/ZaparooProject/go-zwave/internal/frame"
	"github.com/ZaparooProject/go-zwave/transport/uart"
)

var errProbeRejected = errors.New("request rejected")

// port is the part of a transport the probe needs.
type port interface {
	Read(buf []byte) (int, error)
	Write(data []byte) (int, error)
	Flush() error
}

// probeDevice opens path and checks that a serial API answers on it.
//
// There is one attempt per port. Retrying here would keep poking at
// unrelated serial devices; retries belong to the caller once a port is
// known to host a controller.
func probeDevice(ctx context.Context, path string, mode detection.Mode) (map[string]string, bool) {
	t, err := uart.New(path)
	if err != nil {
		return nil, false
	}
	defer func() { _ = t.Close() }()
	_ = t.SetTimeout(50 * time.Millisecond)

	meta, err := probe(ctx, t, mode)
	if err != nil {
		zwave.Debugf("probe %s: %v", path, err)
		return nil, false
	}
	return meta, true
}

// probe runs the detection handshake on an open port. Safe mode asks for
// the serial API capabilities; Full mode also reads the library version
// and the home id.
func probe(ctx context.Context, p port, mode detection.Mode) (map[string]string, error) {
	// A lone NAK makes a stick drop any half-received frame.
	if _, err := p.Write([]byte{frame.NAK}); err != nil {
		return nil, fmt.Errorf("write: %w", err)
	}
	_ = p.Flush()

	caps, err := exchange(ctx, p, zwave.FuncSerialAPIGetCapabilities)
	if err != nil {
		return nil, fmt.Errorf("capabilities: %w", err)
	}
	if len(caps) < 8 {
		return nil, fmt.Errorf("capabilities: %w: % x", zwave.ErrInvalidResponse, caps)
	}
	meta := map[string]string{
		"api_version":     fmt.Sprintf("%d.%d", caps[0], caps[1]),
		"manufacturer_id": fmt.Sprintf("0x%04x", binary.BigEndian.Uint16(caps[2:4])),
		"product_type":    fmt.Sprintf("0x%04x", binary.BigEndian.Uint16(caps[4:6])),
		"product_id":      fmt.Sprintf("0x%04x", binary.BigEndian.Uint16(caps[6:8])),
	}
	if mode != detection.Full {
		return meta, nil
	}

	version, err := exchange(ctx, p, zwave.FuncGetVersion)
	if err != nil {
		return nil, fmt.Errorf("version: %w", err)
	}
	if s, _, ok := strings.Cut(string(version), "\x00"); ok {
		meta["version"] = s
	}
	id, err := exchange(ctx, p, zwave.FuncMemoryGetID)
	if err != nil {
		return nil, fmt.Errorf("memory id: %w", err)
	}
	if len(id) >= 5 {
		meta["home_id"] = fmt.Sprintf("%08x", binary.BigEndian.Uint32(id[:4]))
		meta["node_id"] = fmt.Sprint(id[4])
	}
	return meta, nil
}

// exchange sends a request without data and returns the payload of the
// matching response. Unsolicited requests from the stick are ACKed and
// skipped.
func exchange(ctx context.Context, p port, fn byte) ([]byte, error) {
	if _, err := p.Write(frame.Make(frame.Request, fn, nil)); err != nil {
		return nil, fmt.Errorf("write: %w", err)
	}

	var buf []byte
	tmp := make([]byte, 64)
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		n, err := p.Read(tmp)
		if err != nil {
			return nil, fmt.Errorf("read: %w", err)
		}
		buf = append(buf, tmp[:n]...)

		for {
			f, used, st := frame.TryExtract(buf)
			if st == frame.Incomplete {
				break
			}
			buf = buf[used:]
			if st != frame.Complete {
				continue
			}
			switch {
			case f[0] == frame.NAK || f[0] == frame.CAN:
				return nil, errProbeRejected
			case len(f) == 1:
				continue
			}
			if _, err := p.Write([]byte{frame.ACK}); err != nil {
				return nil, fmt.Errorf("write: %w", err)
			}
			if frame.Direction(f) == frame.Response && frame.Function(f) == fn {
				return append([]byte(nil), frame.Payload(f)...), nil
			}
		}
	}
}
