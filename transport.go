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
	"io"
	"time"
)

// Transport is an opened byte stream to the stick. Opening and line setup
// belong to the transport packages; the driver only reads and writes.
//
// A Read that hits the timeout returns (0, nil) so the receive loop gets a
// chance to notice shutdown.
type Transport interface {
	io.ReadWriter
	// Flush drops pending input and output.
	Flush() error
	SetTimeout(timeout time.Duration) error
	Close() error
	Type() TransportType
}

// TransportType names the kind of link behind a Transport.
type TransportType string

// Known transport kinds.
const (
	TransportUART      TransportType = "uart"
	TransportWebSocket TransportType = "websocket"
	TransportMock      TransportType = "mock"
)

// FrameObserver sees every frame the driver sends or receives. It is called
// inline on the I/O goroutine and must return quickly.
type FrameObserver interface {
	ObserveFrame(ts time.Time, dir TraceDirection, f []byte)
}
