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
)

// Transport errors. Reads, writes and timeouts may succeed on a retry.
var (
	ErrTransportTimeout = errors.New("transport timeout")
	ErrTransportWrite   = errors.New("transport write failed")
	ErrTransportRead    = errors.New("transport read failed")
	ErrTransportClosed  = errors.New("transport is closed")
	ErrDeviceNotFound   = errors.New("device not found")
)

// Link errors. The driver absorbs them and only logs and traces them.
var (
	ErrBadChecksum    = errors.New("bad checksum")
	ErrStrayFrame     = errors.New("frame with nothing in flight")
	ErrUnexpectedByte = errors.New("unexpected frame start byte")
)

// Lifecycle errors.
var (
	ErrDriverStopped = errors.New("driver stopped")
	ErrQueueClosed   = errors.New("outbound queue closed")
)

// Controller errors.
var (
	ErrInvalidResponse = errors.New("invalid response format")
	ErrAPINotSupported = errors.New("serial API function not supported by controller")
)

// Protocol outcomes. They become cached node state and are not returned
// across goroutines.
var (
	ErrNodeFailed       = errors.New("node is failed")
	ErrRetriesExhausted = errors.New("retries exhausted")
)

// ErrorType classifies a TransportError for retry decisions.
type ErrorType int

const (
	// ErrorTypeTransient may go away on a retry.
	ErrorTypeTransient ErrorType = iota
	// ErrorTypePermanent means the stick is gone or the port unusable.
	ErrorTypePermanent
	// ErrorTypeTimeout is a read or write deadline that expired.
	ErrorTypeTimeout
)

func (t ErrorType) String() string {
	switch t {
	case ErrorTypeTransient:
		return "transient"
	case ErrorTypePermanent:
		return "permanent"
	case ErrorTypeTimeout:
		return "timeout"
	}
	return fmt.Sprintf("ErrorType(%d)", int(t))
}

// TransportError is a failed operation on a transport.
type TransportError struct {
	Err       error
	Op        string
	Port      string
	Type      ErrorType
	Retryable bool
}

func (e *TransportError) Error() string {
	if e.Port == "" {
		return e.Op + ": " + e.Err.Error()
	}
	return e.Op + " " + e.Port + ": " + e.Err.Error()
}

func (e *TransportError) Unwrap() error { return e.Err }

// NewTransportError wraps err. Transient and timeout errors are retryable.
func NewTransportError(op, port string, err error, errType ErrorType) *TransportError {
	return &TransportError{
		Op:        op,
		Port:      port,
		Err:       err,
		Type:      errType,
		Retryable: errType != ErrorTypePermanent,
	}
}

// NewTimeoutError reports an expired deadline.
func NewTimeoutError(op, port string) *TransportError {
	return NewTransportError(op, port, ErrTransportTimeout, ErrorTypeTimeout)
}

// NewTransportWriteError reports a short or failed write.
func NewTransportWriteError(op, port string) *TransportError {
	return NewTransportError(op, port, ErrTransportWrite, ErrorTypeTransient)
}

// NewTransportReadError reports a failed read.
func NewTransportReadError(op, port string) *TransportError {
	return NewTransportError(op, port, ErrTransportRead, ErrorTypeTransient)
}

// NewTransportClosedError reports use of a closed transport.
func NewTransportClosedError(op, port string) *TransportError {
	return NewTransportError(op, port, ErrTransportClosed, ErrorTypePermanent)
}

// IsRetryable reports whether repeating the failed operation may succeed.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if te := asTransportError(err); te != nil {
		return te.Retryable
	}
	for _, target := range []error{ErrTransportTimeout, ErrTransportRead, ErrTransportWrite, ErrBadChecksum} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// IsFatal reports whether err means the stick is gone. The driver stops on
// a fatal read error instead of polling a dead port.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	if te := asTransportError(err); te != nil && te.Type == ErrorTypePermanent {
		return true
	}
	if isDeviceGoneError(err) {
		return true
	}
	for _, target := range []error{ErrTransportClosed, ErrDeviceNotFound, io.EOF, io.ErrClosedPipe} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func asTransportError(err error) *TransportError {
	var te *TransportError
	if errors.As(err, &te) {
		return te
	}
	return nil
}
