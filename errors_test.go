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
	"io"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsRetryable(t *testing.T) {
	t.Parallel()
	tests := []struct {
		err  error
		name string
		want bool
	}{
		{name: "nil error", err: nil, want: false},
		{name: "transport timeout retryable", err: ErrTransportTimeout, want: true},
		{name: "transport read retryable", err: ErrTransportRead, want: true},
		{name: "transport write retryable", err: ErrTransportWrite, want: true},
		{name: "bad checksum retryable", err: ErrBadChecksum, want: true},
		{name: "wrapped timeout retryable", err: fmt.Errorf("get version: %w", ErrTransportTimeout), want: true},
		{name: "device not found not retryable", err: ErrDeviceNotFound, want: false},
		{name: "queue closed not retryable", err: ErrQueueClosed, want: false},
		{name: "string-wrapped timeout not retryable", err: errors.New("outer: " + ErrTransportTimeout.Error()), want: false},
		{name: "transient transport error", err: NewTransportError("read", "/dev/ttyACM0", io.ErrUnexpectedEOF, ErrorTypeTransient), want: true},
		{name: "permanent transport error", err: NewTransportError("open", "/dev/ttyACM0", ErrDeviceNotFound, ErrorTypePermanent), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, IsRetryable(tt.err))
		})
	}
}

func TestIsFatal(t *testing.T) {
	t.Parallel()
	tests := []struct {
		err  error
		name string
		want bool
	}{
		{name: "nil error", err: nil, want: false},
		{name: "transport closed is fatal", err: ErrTransportClosed, want: true},
		{name: "device not found is fatal", err: ErrDeviceNotFound, want: true},
		{name: "EOF is fatal", err: io.EOF, want: true},
		{name: "closed pipe is fatal", err: fmt.Errorf("read: %w", io.ErrClosedPipe), want: true},
		{name: "timeout is not fatal", err: ErrTransportTimeout, want: false},
		{name: "permanent transport error", err: NewTransportError("read", "", errors.New("boom"), ErrorTypePermanent), want: true},
		{name: "transient transport error", err: NewTransportError("read", "", errors.New("boom"), ErrorTypeTransient), want: false},
		{name: "closed transport error", err: NewTransportClosedError("read", "/dev/ttyUSB0"), want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, IsFatal(tt.err))
		})
	}
}

func TestIsFatal_SyscallErrors(t *testing.T) {
	t.Parallel()

	// EIO is reported by every supported platform when a USB stick is pulled
	err := fmt.Errorf("read /dev/ttyACM0: %w", syscall.Errno(5))
	assert.True(t, IsFatal(err))
	assert.False(t, IsFatal(fmt.Errorf("read: %w", syscall.Errno(0))))
}

func TestTransportError_Error(t *testing.T) {
	t.Parallel()

	withPort := NewTransportError("write", "/dev/ttyACM0", ErrTransportWrite, ErrorTypeTransient)
	assert.Equal(t, "write /dev/ttyACM0: transport write failed", withPort.Error())
	require.ErrorIs(t, withPort, ErrTransportWrite)

	noPort := NewTimeoutError("read", "")
	assert.Equal(t, "read: transport timeout", noPort.Error())
	assert.Equal(t, ErrorTypeTimeout, noPort.Type)
	assert.True(t, noPort.Retryable)
}
