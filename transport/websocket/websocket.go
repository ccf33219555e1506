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

// Package websocket provides a transport for sticks exposed by a remote
// serial bridge. Every binary message carries raw serial bytes.
package websocket

import (
	"context"
	"crypto/tls"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	zwave "github.com/ZaparooProject/go-zwave"
	gws "github.com/gorilla/websocket"
)

// ErrUnsupportedScheme is returned for URLs that are not ws:// or wss://.
var ErrUnsupportedScheme = errors.New("unsupported URL scheme")

const (
	handshakeTimeout = 10 * time.Second
	dialTimeout      = 15 * time.Second
	writeTimeout     = 5 * time.Second
)

// Config describes the bridge to dial.
type Config struct {
	URL      string
	Username string
	Password string
	// SkipVerify disables TLS certificate checks for wss:// bridges.
	SkipVerify bool
}

// Transport implements zwave.Transport over a WebSocket connection.
type Transport struct {
	conn    *gws.Conn
	url     string
	in      chan []byte
	done    chan struct{}
	pending []byte
	readErr error
	timeout time.Duration
	mu      sync.Mutex
	writeMu sync.Mutex
	once    sync.Once
}

// Dial connects to the bridge with HTTP basic auth when a username is set.
func Dial(ctx context.Context, cfg Config) (*Transport, error) {
	u, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}
	switch u.Scheme {
	case "ws", "wss":
	default:
		return nil, fmt.Errorf("%w: %s (use ws:// or wss://)", ErrUnsupportedScheme, u.Scheme)
	}

	dialer := gws.Dialer{HandshakeTimeout: handshakeTimeout}
	if u.Scheme == "wss" {
		//nolint:gosec // opt-in for bridges with self-signed certificates
		dialer.TLSClientConfig = &tls.Config{InsecureSkipVerify: cfg.SkipVerify}
	}

	headers := http.Header{}
	if cfg.Username != "" {
		credentials := base64.StdEncoding.EncodeToString([]byte(cfg.Username + ":" + cfg.Password))
		headers.Set("Authorization", "Basic "+credentials)
	}

	ctx, cancel := context.WithTimeout(ctx, dialTimeout)
	defer cancel()
	conn, resp, err := dialer.DialContext(ctx, cfg.URL, headers)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		if resp != nil {
			return nil, &zwave.TransportError{
				Op: "dial", Port: cfg.URL,
				Err:       fmt.Errorf("WebSocket connection failed (HTTP %d): %w", resp.StatusCode, err),
				Type:      zwave.ErrorTypePermanent,
				Retryable: false,
			}
		}
		return nil, zwave.NewTransportError("dial", cfg.URL, err, zwave.ErrorTypeTransient)
	}

	zwave.Debugf("connected to bridge %s", cfg.URL)
	return newTransport(conn, cfg.URL), nil
}

func newTransport(conn *gws.Conn, addr string) *Transport {
	t := &Transport{
		conn:    conn,
		url:     addr,
		in:      make(chan []byte, 64),
		done:    make(chan struct{}),
		timeout: 50 * time.Millisecond,
	}
	go t.readLoop()
	return t
}

// readLoop pumps binary messages into in until the connection fails.
func (t *Transport) readLoop() {
	defer close(t.in)
	for {
		kind, data, err := t.conn.ReadMessage()
		if err != nil {
			t.mu.Lock()
			t.readErr = err
			t.mu.Unlock()
			return
		}
		if kind != gws.BinaryMessage || len(data) == 0 {
			continue
		}
		select {
		case t.in <- data:
		case <-t.done:
			return
		}
	}
}

// Read returns buffered bytes, or (0, nil) when nothing arrives within the
// read timeout.
func (t *Transport) Read(buf []byte) (int, error) {
	t.mu.Lock()
	if len(t.pending) > 0 {
		n := copy(buf, t.pending)
		t.pending = t.pending[n:]
		t.mu.Unlock()
		return n, nil
	}
	timeout := t.timeout
	t.mu.Unlock()

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case data, ok := <-t.in:
		if !ok {
			return 0, t.closedError("read")
		}
		n := copy(buf, data)
		if n < len(data) {
			t.mu.Lock()
			t.pending = append(t.pending, data[n:]...)
			t.mu.Unlock()
		}
		return n, nil
	case <-t.done:
		return 0, zwave.NewTransportClosedError("read", t.url)
	case <-timer.C:
		return 0, nil
	}
}

func (t *Transport) closedError(op string) error {
	t.mu.Lock()
	err := t.readErr
	t.mu.Unlock()
	if err == nil {
		return zwave.NewTransportClosedError(op, t.url)
	}
	return zwave.NewTransportError(op, t.url, fmt.Errorf("%w: %w", zwave.ErrTransportClosed, err), zwave.ErrorTypePermanent)
}

// Write sends data as one binary message.
func (t *Transport) Write(data []byte) (int, error) {
	select {
	case <-t.done:
		return 0, zwave.NewTransportClosedError("write", t.url)
	default:
	}
	t.writeMu.Lock()
	defer t.writeMu.Unlock()
	_ = t.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := t.conn.WriteMessage(gws.BinaryMessage, data); err != nil {
		return 0, zwave.NewTransportError("write", t.url, err, zwave.ErrorTypeTransient)
	}
	return len(data), nil
}

// Flush drops bytes received but not yet read.
func (t *Transport) Flush() error {
	t.mu.Lock()
	t.pending = nil
	t.mu.Unlock()
	for {
		select {
		case _, ok := <-t.in:
			if !ok {
				return nil
			}
		default:
			return nil
		}
	}
}

// SetTimeout sets the read timeout for the transport
func (t *Transport) SetTimeout(timeout time.Duration) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.timeout = timeout
	return nil
}

// Close sends a close frame and shuts the connection.
func (t *Transport) Close() error {
	var err error
	t.once.Do(func() {
		close(t.done)
		t.writeMu.Lock()
		_ = t.conn.WriteControl(gws.CloseMessage,
			gws.FormatCloseMessage(gws.CloseNormalClosure, ""), time.Now().Add(time.Second))
		t.writeMu.Unlock()
		if cerr := t.conn.Close(); cerr != nil {
			err = fmt.Errorf("WebSocket close failed: %w", cerr)
		}
	})
	return err
}

// URL returns the bridge address.
func (t *Transport) URL() string {
	return t.url
}

// Type returns the transport type
func (*Transport) Type() zwave.TransportType {
	return zwave.TransportWebSocket
}

// Ensure Transport implements zwave.Transport
var _ zwave.Transport = (*Transport)(nil)
