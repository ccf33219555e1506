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

// Package uart provides the serial transport for USB and GPIO Z-Wave sticks.
package uart

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	zwave "github.com/ZaparooProject/go-zwave"
	"go.bug.st/serial"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

// DefaultBaudRate is the serial API line speed.
const DefaultBaudRate = 115200

const (
	resetPulse  = 100 * time.Millisecond
	resetSettle = time.Second
)

// ErrResetPin is returned when the configured reset GPIO cannot be driven.
var ErrResetPin = errors.New("reset pin unavailable")

// Option configures a Transport.
type Option func(*options)

type options struct {
	resetPin string
	baudRate int
}

// WithBaudRate overrides DefaultBaudRate.
func WithBaudRate(rate int) Option {
	return func(o *options) {
		if rate > 0 {
			o.baudRate = rate
		}
	}
}

// WithResetPin names a GPIO wired to the module's RESET line. The pin is
// pulsed low before the port is opened, which recovers modules that stopped
// answering.
func WithResetPin(name string) Option {
	return func(o *options) { o.resetPin = name }
}

// Transport implements zwave.Transport over a serial port.
type Transport struct {
	port     serial.Port
	portName string
	mu       sync.Mutex
	closed   atomic.Bool
}

// isWindows returns true if running on Windows
func isWindows() bool {
	return runtime.GOOS == "windows"
}

// defaultReadTimeout returns the platform read timeout
func defaultReadTimeout() time.Duration {
	if isWindows() {
		return 100 * time.Millisecond
	}
	return 50 * time.Millisecond
}

// New opens portName at 8N1.
func New(portName string, opts ...Option) (*Transport, error) {
	o := options{baudRate: DefaultBaudRate}
	for _, opt := range opts {
		opt(&o)
	}

	if o.resetPin != "" {
		if err := pulseReset(o.resetPin); err != nil {
			return nil, err
		}
	}

	port, err := serial.Open(portName, &serial.Mode{
		BaudRate: o.baudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		return nil, openError(portName, err)
	}

	if err := port.SetReadTimeout(defaultReadTimeout()); err != nil {
		_ = port.Close()
		return nil, fmt.Errorf("failed to set UART read timeout: %w", err)
	}

	zwave.Debugf("opened %s at %d baud", portName, o.baudRate)
	return &Transport{
		port:     port,
		portName: portName,
	}, nil
}

// Open is New with retries, for sticks that are still enumerating after a
// USB replug.
func Open(ctx context.Context, portName string, opts ...Option) (*Transport, error) {
	var t *Transport
	err := zwave.RetryWithConfig(ctx, zwave.ConnectionRetryConfig(), func() error {
		var err error
		t, err = New(portName, opts...)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", portName, err)
	}
	return t, nil
}

// openError marks a port that is missing or busy as retryable.
func openError(portName string, err error) error {
	var perr *serial.PortError
	if errors.As(err, &perr) {
		switch perr.Code() {
		case serial.PortNotFound:
			return &zwave.TransportError{
				Op: "open", Port: portName,
				Err:       fmt.Errorf("%w: %w", zwave.ErrDeviceNotFound, err),
				Type:      zwave.ErrorTypeTransient,
				Retryable: true,
			}
		case serial.PortBusy:
			return zwave.NewTransportError("open", portName, err, zwave.ErrorTypeTransient)
		}
	}
	return &zwave.TransportError{
		Op: "open", Port: portName,
		Err:       fmt.Errorf("failed to open UART port %s: %w", portName, err),
		Type:      zwave.ErrorTypePermanent,
		Retryable: false,
	}
}

// pulseReset drives the reset GPIO low and releases it.
func pulseReset(name string) error {
	if _, err := host.Init(); err != nil {
		return fmt.Errorf("failed to initialize periph host: %w", err)
	}
	pin := gpioreg.ByName(name)
	if pin == nil {
		return fmt.Errorf("%w: %s", ErrResetPin, name)
	}
	zwave.Debugf("pulsing reset pin %s", name)
	if err := pin.Out(gpio.Low); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrResetPin, name, err)
	}
	time.Sleep(resetPulse)
	if err := pin.Out(gpio.High); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrResetPin, name, err)
	}
	time.Sleep(resetSettle)
	return nil
}

// Read reads whatever the stick has sent. A read timeout returns (0, nil).
func (t *Transport) Read(buf []byte) (int, error) {
	if t.closed.Load() {
		return 0, zwave.NewTransportClosedError("read", t.portName)
	}
	n, err := t.port.Read(buf)
	if err != nil {
		if isInterruptedSystemCall(err) {
			return n, nil
		}
		return n, t.classify("read", err)
	}
	return n, nil
}

// Write sends data and waits for it to leave the host.
func (t *Transport) Write(data []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed.Load() {
		return 0, zwave.NewTransportClosedError("write", t.portName)
	}
	written := 0
	for written < len(data) {
		n, err := t.port.Write(data[written:])
		if err != nil {
			return written, t.classify("write", err)
		}
		if n == 0 {
			return written, zwave.NewTransportWriteError("write", t.portName)
		}
		written += n
	}
	return written, t.drainWithRetry("write")
}

// Flush discards unread input and unsent output.
func (t *Transport) Flush() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed.Load() {
		return zwave.NewTransportClosedError("flush", t.portName)
	}
	if err := t.port.ResetInputBuffer(); err != nil {
		return fmt.Errorf("UART input flush failed: %w", err)
	}
	if err := t.port.ResetOutputBuffer(); err != nil {
		return fmt.Errorf("UART output flush failed: %w", err)
	}
	return nil
}

// SetTimeout sets the read timeout for the transport
func (t *Transport) SetTimeout(timeout time.Duration) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed.Load() {
		return zwave.NewTransportClosedError("set timeout", t.portName)
	}
	if err := t.port.SetReadTimeout(timeout); err != nil {
		return fmt.Errorf("UART set timeout failed: %w", err)
	}
	return nil
}

// Close closes the transport connection. Closing twice is a no-op.
func (t *Transport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed.Swap(true) || t.port == nil {
		return nil
	}
	if err := t.port.Close(); err != nil {
		return fmt.Errorf("UART close failed: %w", err)
	}
	return nil
}

// PortName returns the device path.
func (t *Transport) PortName() string {
	return t.portName
}

// Type returns the transport type
func (*Transport) Type() zwave.TransportType {
	return zwave.TransportUART
}

// classify wraps err so the driver can tell an unplugged stick from noise.
func (t *Transport) classify(op string, err error) error {
	var perr *serial.PortError
	if errors.As(err, &perr) && perr.Code() == serial.PortClosed {
		return zwave.NewTransportError(op, t.portName, fmt.Errorf("%w: %w", zwave.ErrTransportClosed, err), zwave.ErrorTypePermanent)
	}
	if zwave.IsFatal(err) {
		return zwave.NewTransportError(op, t.portName, err, zwave.ErrorTypePermanent)
	}
	return zwave.NewTransportError(op, t.portName, err, zwave.ErrorTypeTransient)
}

// isInterruptedSystemCall checks if an error is caused by an interrupted system call
func isInterruptedSystemCall(err error) bool {
	if err == nil {
		return false
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "interrupted system call") ||
		strings.Contains(errStr, "eintr")
}

// drainWithRetry performs port drain with retry logic for interrupted system calls
func (t *Transport) drainWithRetry(operation string) error {
	const maxRetries = 3
	baseDelay := 2 * time.Millisecond

	for attempt := range maxRetries {
		err := t.port.Drain()
		if err == nil {
			return nil
		}
		if isInterruptedSystemCall(err) && attempt < maxRetries-1 {
			time.Sleep(baseDelay * time.Duration(1<<attempt))
			continue
		}
		return fmt.Errorf("UART %s drain failed: %w", operation, err)
	}

	return fmt.Errorf("UART %s drain failed after %d retries", operation, maxRetries)
}

// Ensure Transport implements zwave.Transport
var _ zwave.Transport = (*Transport)(nil)
