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
	"errors"
	"sync"
	"testing"
	"time"

	zwave "github.com/ZaparooProject/go-zwave"
	"github.com/ZaparooProject/go-zwave/controller"
	testutil "github.com/ZaparooProject/go-zwave/internal/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.bug.st/serial"
)

// errPortClosed is returned when operations are attempted on a closed port
var errPortClosed = errors.New("port is closed")

// mockSerialPort wraps a stick simulator to implement serial.Port
type mockSerialPort struct {
	backend     testutil.Backend
	readTimeout time.Duration
	mu          sync.Mutex
	drains      int
	resets      int
	closed      bool
}

func newMockSerialPort(backend testutil.Backend) *mockSerialPort {
	return &mockSerialPort{backend: backend, readTimeout: 50 * time.Millisecond}
}

func (*mockSerialPort) SetMode(_ *serial.Mode) error { return nil }

func (m *mockSerialPort) Read(p []byte) (int, error) {
	m.mu.Lock()
	closed := m.closed
	m.mu.Unlock()
	if closed {
		return 0, errPortClosed
	}
	return m.backend.Read(p) //nolint:wrapcheck // mock
}

func (m *mockSerialPort) Write(p []byte) (int, error) {
	m.mu.Lock()
	closed := m.closed
	m.mu.Unlock()
	if closed {
		return 0, errPortClosed
	}
	return m.backend.Write(p) //nolint:wrapcheck // mock
}

func (m *mockSerialPort) Drain() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.drains++
	return nil
}

func (m *mockSerialPort) ResetInputBuffer() error {
	m.mu.Lock()
	m.resets++
	m.mu.Unlock()
	return m.backend.Flush() //nolint:wrapcheck // mock
}

func (*mockSerialPort) ResetOutputBuffer() error { return nil }

func (*mockSerialPort) SetDTR(_ bool) error { return nil }

func (*mockSerialPort) SetRTS(_ bool) error { return nil }

func (*mockSerialPort) GetModemStatusBits() (*serial.ModemStatusBits, error) {
	return &serial.ModemStatusBits{}, nil
}

func (m *mockSerialPort) SetReadTimeout(t time.Duration) error {
	m.mu.Lock()
	m.readTimeout = t
	m.mu.Unlock()
	return m.backend.SetTimeout(t) //nolint:wrapcheck // mock
}

func (m *mockSerialPort) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func (*mockSerialPort) Break(_ time.Duration) error { return nil }

var _ serial.Port = (*mockSerialPort)(nil)

func newTestTransport(backend testutil.Backend) (*Transport, *mockSerialPort) {
	port := newMockSerialPort(backend)
	return &Transport{port: port, portName: "mock://test"}, port
}

func TestUART_Type(t *testing.T) {
	t.Parallel()

	tr, _ := newTestTransport(testutil.NewVirtualStick())
	assert.Equal(t, zwave.TransportUART, tr.Type())
	assert.Equal(t, "mock://test", tr.PortName())
}

func TestUART_WriteDrains(t *testing.T) {
	t.Parallel()

	stick := testutil.NewVirtualStick()
	tr, port := newTestTransport(stick)
	f := zwave.MakeRawMessage(zwave.FuncGetVersion, nil)
	n, err := tr.Write(f)
	require.NoError(t, err)
	assert.Equal(t, len(f), n)
	assert.Equal(t, 1, port.drains)
	assert.Len(t, stick.HostFramesFor(zwave.FuncGetVersion), 1)
}

func TestUART_FlushAndTimeout(t *testing.T) {
	t.Parallel()

	tr, port := newTestTransport(testutil.NewVirtualStick())
	require.NoError(t, tr.Flush())
	require.NoError(t, tr.SetTimeout(20*time.Millisecond))
	assert.Equal(t, 1, port.resets)
	assert.Equal(t, 20*time.Millisecond, port.readTimeout)
}

func TestUART_Close(t *testing.T) {
	t.Parallel()

	tr, _ := newTestTransport(testutil.NewVirtualStick())
	require.NoError(t, tr.Close())
	require.NoError(t, tr.Close())

	_, err := tr.Read(make([]byte, 8))
	require.ErrorIs(t, err, zwave.ErrTransportClosed)
	assert.True(t, zwave.IsFatal(err))
	_, err = tr.Write([]byte{0x06})
	require.ErrorIs(t, err, zwave.ErrTransportClosed)
	require.ErrorIs(t, tr.Flush(), zwave.ErrTransportClosed)
	require.ErrorIs(t, tr.SetTimeout(time.Second), zwave.ErrTransportClosed)
}

func TestUART_Classify(t *testing.T) {
	t.Parallel()

	tr, _ := newTestTransport(testutil.NewVirtualStick())

	tests := []struct {
		err   error
		name  string
		fatal bool
	}{
		{name: "noise", err: errors.New("framing error"), fatal: false},
		{name: "busy port", err: &serial.PortError{}, fatal: false},
		{name: "eof", err: zwave.ErrTransportClosed, fatal: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tr.classify("read", tt.err)
			var te *zwave.TransportError
			require.ErrorAs(t, err, &te)
			assert.Equal(t, "read", te.Op)
			assert.Equal(t, tt.fatal, zwave.IsFatal(err))
		})
	}
}

func TestIsInterruptedSystemCall(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err  error
		name string
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "eintr", err: errors.New("read: EINTR"), want: true},
		{name: "interrupted", err: errors.New("interrupted system call"), want: true},
		{name: "other", err: errors.New("no such device"), want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, isInterruptedSystemCall(tt.err))
		})
	}
}

func TestOpenError(t *testing.T) {
	t.Parallel()

	// the zero code is PortBusy
	busy := openError("/dev/ttyACM9", &serial.PortError{})
	assert.True(t, zwave.IsRetryable(busy))

	plain := openError("/dev/ttyACM9", errors.New("boom"))
	assert.True(t, zwave.IsFatal(plain))
}

func TestOptions(t *testing.T) {
	t.Parallel()

	o := options{baudRate: DefaultBaudRate}
	WithBaudRate(0)(&o)
	assert.Equal(t, DefaultBaudRate, o.baudRate)
	WithBaudRate(230400)(&o)
	WithResetPin("GPIO17")(&o)
	assert.Equal(t, 230400, o.baudRate)
	assert.Equal(t, "GPIO17", o.resetPin)
}

// The driver and controller run unchanged over a fragmented serial line.
func TestUART_ControllerOverJitteryLine(t *testing.T) {
	t.Parallel()

	stick := testutil.NewVirtualStick()
	testutil.InstallDefaultController(stick)
	stick.OnFunction(zwave.FuncSerialAPISetTimeouts, func([]byte) [][]byte {
		return [][]byte{testutil.ResponseFrame(zwave.FuncSerialAPISetTimeouts, 0x0f, 0x0a)}
	})
	jitter := testutil.DefaultJitterConfig()
	jitter.Seed = 42
	tr, _ := newTestTransport(testutil.NewJitteryTransport(stick, jitter))

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
	require.NoError(t, d.WaitForDrain(ctx))

	assert.Equal(t, uint32(0xC0FFEE01), c.HomeID())
	assert.Equal(t, []int{1, 2, 3}, c.Nodes())
}
