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

package websocket

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	zwave "github.com/ZaparooProject/go-zwave"
	"github.com/ZaparooProject/go-zwave/controller"
	testutil "github.com/ZaparooProject/go-zwave/internal/testing"
	gws "github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newBridge serves a virtual stick the way a remote serial bridge does.
func newBridge(t *testing.T, stick *testutil.VirtualStick, user, password string) string {
	t.Helper()
	upgrader := gws.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if user != "" {
			u, p, ok := r.BasicAuth()
			if !ok || u != user || p != password {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer func() { _ = conn.Close() }()

		done := make(chan struct{})
		go func() {
			defer close(done)
			buf := make([]byte, 256)
			for {
				select {
				case <-r.Context().Done():
					return
				default:
				}
				n, err := stick.Read(buf)
				if err != nil {
					return
				}
				if n == 0 {
					continue
				}
				if err := conn.WriteMessage(gws.BinaryMessage, append([]byte(nil), buf[:n]...)); err != nil {
					return
				}
			}
		}()
		for {
			kind, data, err := conn.ReadMessage()
			if err != nil {
				_ = stick.Close()
				<-done
				return
			}
			if kind == gws.BinaryMessage {
				_, _ = stick.Write(data)
			}
		}
	}))
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestDial_RejectsScheme(t *testing.T) {
	t.Parallel()

	_, err := Dial(context.Background(), Config{URL: "http://localhost:1"})
	require.ErrorIs(t, err, ErrUnsupportedScheme)
}

func TestDial_Unauthorized(t *testing.T) {
	t.Parallel()

	addr := newBridge(t, testutil.NewVirtualStick(), "admin", "secret")
	_, err := Dial(context.Background(), Config{URL: addr, Username: "admin", Password: "wrong"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 401")
	assert.False(t, zwave.IsRetryable(err))
}

func TestTransport_ReadTimeoutAndClose(t *testing.T) {
	t.Parallel()

	addr := newBridge(t, testutil.NewVirtualStick(), "", "")
	tr, err := Dial(context.Background(), Config{URL: addr})
	require.NoError(t, err)
	assert.Equal(t, zwave.TransportWebSocket, tr.Type())
	assert.Equal(t, addr, tr.URL())

	require.NoError(t, tr.SetTimeout(10*time.Millisecond))
	n, err := tr.Read(make([]byte, 16))
	require.NoError(t, err)
	assert.Zero(t, n)

	require.NoError(t, tr.Close())
	require.NoError(t, tr.Close())
	_, err = tr.Write([]byte{0x15})
	require.ErrorIs(t, err, zwave.ErrTransportClosed)
	_, err = tr.Read(make([]byte, 16))
	require.ErrorIs(t, err, zwave.ErrTransportClosed)
}

func TestTransport_SplitsLargeMessages(t *testing.T) {
	t.Parallel()

	stick := testutil.NewVirtualStick()
	addr := newBridge(t, stick, "", "")
	tr, err := Dial(context.Background(), Config{URL: addr})
	require.NoError(t, err)
	t.Cleanup(func() { _ = tr.Close() })

	f := testutil.RequestFrame(zwave.FuncApplicationCommandHandler, 0x00, 0x05, 0x03, 0x20, 0x03, 0x63)
	stick.Inject(f)

	var got []byte
	buf := make([]byte, 3)
	require.Eventually(t, func() bool {
		n, err := tr.Read(buf)
		if err != nil {
			return false
		}
		got = append(got, buf[:n]...)
		return len(got) >= len(f)
	}, 5*time.Second, time.Millisecond)
	assert.Equal(t, f, got)
}

func TestTransport_ControllerOverBridge(t *testing.T) {
	t.Parallel()

	stick := testutil.NewVirtualStick()
	testutil.InstallDefaultController(stick)
	stick.OnFunction(zwave.FuncSerialAPISetTimeouts, func([]byte) [][]byte {
		return [][]byte{testutil.ResponseFrame(zwave.FuncSerialAPISetTimeouts, 0x0f, 0x0a)}
	})
	addr := newBridge(t, stick, "admin", "secret")

	tr, err := Dial(context.Background(), Config{URL: addr, Username: "admin", Password: "secret"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = tr.Close() })

	cfg := zwave.DefaultDriverConfig()
	cfg.ReadTimeout = 10 * time.Millisecond
	d := zwave.NewDriver(tr, cfg)
	require.NoError(t, d.Start(context.Background()))
	t.Cleanup(func() { _ = d.Terminate() })

	c := controller.New(d)
	c.Initialize()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	require.NoError(t, c.WaitUntilInitialized(ctx))
	assert.Equal(t, []int{1, 2, 3}, c.Nodes())
	assert.Equal(t, "Z-Wave 4.05", c.Properties().Version)
}
