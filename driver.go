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
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/ZaparooProject/go-zwave/internal/frame"
	"github.com/ZaparooProject/go-zwave/internal/syncutil"
	"golang.org/x/sync/errgroup"
)

// DriverConfig tunes the link driver.
type DriverConfig struct {
	// PacingStep is added to a node's send delay after a troubled message
	// and subtracted after a clean one.
	PacingStep time.Duration
	// PacingCeiling caps the per-node send delay.
	PacingCeiling time.Duration
	// ReadTimeout bounds each transport read so shutdown is noticed.
	ReadTimeout time.Duration
	// InboundQueueSize is the capacity of the unsolicited frame queue.
	InboundQueueSize int
	// TraceSize is the number of frames kept for error traces.
	TraceSize int
	// LegacyRequestCompletion lets a REQUEST with the in-flight function id
	// and callback id resolve the in-flight message. Without it such frames
	// are dispatched as unsolicited and the message resolves by timeout.
	LegacyRequestCompletion bool
	// Port names the link in traces and logs.
	Port string
}

// DefaultDriverConfig returns the settings used by the CLI.
func DefaultDriverConfig() DriverConfig {
	return DriverConfig{
		PacingStep:              10 * time.Millisecond,
		PacingCeiling:           250 * time.Millisecond,
		ReadTimeout:             150 * time.Millisecond,
		InboundQueueSize:        256,
		TraceSize:               32,
		LegacyRequestCompletion: true,
	}
}

// AsyncHandler receives unsolicited frames (application commands and
// application updates) on the dispatch goroutine.
type AsyncHandler interface {
	HandleFrame(ts time.Time, f []byte)
}

// AsyncHandlerFunc adapts a function to AsyncHandler.
type AsyncHandlerFunc func(ts time.Time, f []byte)

// HandleFrame calls fn.
func (fn AsyncHandlerFunc) HandleFrame(ts time.Time, f []byte) { fn(ts, f) }

type inboundFrame struct {
	ts time.Time
	f  []byte
	fn func()
}

// Driver owns the link to the stick. It runs three goroutines: send
// (dequeue, pace, transmit, wait), receive (read, frame, ACK, advance the
// in-flight message) and dispatch (fan unsolicited frames out to handlers).
type Driver struct {
	transport Transport
	cfg       DriverConfig
	queue     *OutboundQueue
	pacer     *pacer
	stats     *MessageStats
	inbound   chan inboundFrame

	inflightMu syncutil.Mutex
	inflight   *Message

	writeMu syncutil.Mutex

	traceMu syncutil.Mutex
	trace   *TraceBuffer

	handlersMu syncutil.RWMutex
	handlers   []AsyncHandler
	observers  []FrameObserver

	cancel  context.CancelFunc
	stopped <-chan struct{}
	group   *errgroup.Group
	running atomic.Bool
	err     atomic.Pointer[error]
}

// NewDriver creates a driver over a ready transport. Call Start to run it.
func NewDriver(t Transport, cfg DriverConfig) *Driver {
	def := DefaultDriverConfig()
	if cfg.PacingStep <= 0 {
		cfg.PacingStep = def.PacingStep
	}
	if cfg.PacingCeiling <= 0 {
		cfg.PacingCeiling = def.PacingCeiling
	}
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = def.ReadTimeout
	}
	if cfg.InboundQueueSize <= 0 {
		cfg.InboundQueueSize = def.InboundQueueSize
	}
	return &Driver{
		transport: t,
		cfg:       cfg,
		queue:     NewOutboundQueue(),
		pacer:     newPacer(cfg.PacingStep, cfg.PacingCeiling),
		stats:     NewMessageStats(),
		inbound:   make(chan inboundFrame, cfg.InboundQueueSize),
		trace:     NewTraceBuffer(cfg.Port, cfg.TraceSize),
	}
}

// AddAsyncHandler registers a handler for unsolicited frames. Handlers are
// called in registration order.
func (d *Driver) AddAsyncHandler(h AsyncHandler) {
	d.handlersMu.Lock()
	defer d.handlersMu.Unlock()
	d.handlers = append(d.handlers, h)
}

// AddObserver registers a wire tap.
func (d *Driver) AddObserver(o FrameObserver) {
	d.handlersMu.Lock()
	defer d.handlersMu.Unlock()
	d.observers = append(d.observers, o)
}

// Start clears the line and launches the driver goroutines.
func (d *Driver) Start(ctx context.Context) error {
	if !d.running.CompareAndSwap(false, true) {
		return nil
	}
	if err := d.clearDevice(); err != nil {
		d.running.Store(false)
		return err
	}
	if err := d.transport.SetTimeout(d.cfg.ReadTimeout); err != nil {
		d.running.Store(false)
		return fmt.Errorf("set read timeout: %w", err)
	}

	ctx, d.cancel = context.WithCancel(ctx)
	g, gctx := errgroup.WithContext(ctx)
	d.group = g
	d.stopped = gctx.Done()
	g.Go(func() error { return d.sendLoop(gctx) })
	g.Go(func() error { return d.receiveLoop(gctx) })
	g.Go(func() error { return d.dispatchLoop(gctx) })
	g.Go(func() error {
		<-gctx.Done()
		for _, m := range d.queue.Close() {
			d.resolve(m, MessageAborted)
		}
		return nil
	})
	return nil
}

// clearDevice resynchronises a stick that may be mid-frame.
func (d *Driver) clearDevice() error {
	for range 3 {
		if err := d.write([]byte{frame.NAK}, "clear"); err != nil {
			return err
		}
	}
	if err := d.transport.Flush(); err != nil {
		return fmt.Errorf("flush: %w", err)
	}
	return nil
}

// Terminate stops the goroutines and waits for them. Queued messages are
// resolved as aborted. The transport is left open.
func (d *Driver) Terminate() error {
	if !d.running.Load() || d.cancel == nil {
		return nil
	}
	d.cancel()
	err := d.group.Wait()
	d.running.Store(false)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// Done is closed once the driver stops, by Terminate or a fatal transport
// error. It is nil before Start.
func (d *Driver) Done() <-chan struct{} {
	return d.stopped
}

// Err returns the error that stopped the driver, if any.
func (d *Driver) Err() error {
	if p := d.err.Load(); p != nil {
		return *p
	}
	return nil
}

// SendMessage enqueues a message. It never blocks.
func (d *Driver) SendMessage(m *Message) {
	if err := d.queue.Push(m); err != nil {
		Debugf("dropping %s: %v", m, err)
		d.resolve(m, MessageAborted)
	}
}

// SendBarrier enqueues a barrier. fn runs once every message queued before
// the call has resolved.
func (d *Driver) SendBarrier(fn func()) {
	d.SendMessage(NewBarrier(func([]byte) { fn() }))
}

// WaitForDrain blocks until every message queued before the call has
// resolved or ctx ends.
func (d *Driver) WaitForDrain(ctx context.Context) error {
	done := make(chan struct{})
	d.SendBarrier(func() { close(done) })
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// MaybeCancelLearningOperation aborts an in-flight add or remove node
// operation.
func (d *Driver) MaybeCancelLearningOperation() {
	m := d.inflightMessage()
	if m == nil {
		return
	}
	switch m.Function() {
	case FuncAddNodeToNetwork, FuncRemoveNodeFromNetwork:
		Debugf("cancelling learning operation %s", m)
		m.abort()
	}
}

// Post runs fn on the dispatch goroutine, after every unsolicited frame
// already queued there. Reply handlers use it to publish events in the same
// context as application frames. It reports false once the driver stops.
func (d *Driver) Post(fn func()) bool {
	select {
	case d.inbound <- inboundFrame{ts: time.Now(), fn: fn}:
		return true
	case <-d.stopped:
		return false
	}
}

// Inflight returns the message awaiting replies, or nil.
func (d *Driver) Inflight() *Message {
	return d.inflightMessage()
}

// QueueLen returns the number of queued messages.
func (d *Driver) QueueLen() int { return d.queue.Len() }

// QueueLenByEndpoint returns queued messages per node.
func (d *Driver) QueueLenByEndpoint() map[int]int { return d.queue.LenByEndpoint() }

// PacingSnapshot returns the current per-node send delays.
func (d *Driver) PacingSnapshot() map[int]time.Duration { return d.pacer.load() }

// Stats returns the resolved-message aggregate.
func (d *Driver) Stats() StatsSnapshot { return d.stats.Snapshot() }

// Trace returns the recent wire history.
func (d *Driver) Trace() []TraceEntry {
	d.traceMu.Lock()
	defer d.traceMu.Unlock()
	return d.trace.Entries()
}

func (d *Driver) inflightMessage() *Message {
	d.inflightMu.Lock()
	defer d.inflightMu.Unlock()
	return d.inflight
}

func (d *Driver) setInflight(m *Message) {
	d.inflightMu.Lock()
	defer d.inflightMu.Unlock()
	d.inflight = m
}

// =============================================================================
// Send goroutine
// =============================================================================

func (d *Driver) sendLoop(ctx context.Context) error {
	for {
		m, ok := d.queue.Pop()
		if !ok {
			return nil
		}
		if m.IsBarrier() {
			d.resolve(m, MessageCompleted)
			continue
		}

		if delay := d.pacer.delay(m.Node); delay > 0 {
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				d.resolve(m, MessageAborted)
				return nil
			}
		}

		d.transmit(ctx, m)
	}
}

// transmit sends one message and blocks until it resolves.
func (d *Driver) transmit(ctx context.Context, m *Message) {
	m.markStarted(time.Now())
	d.setInflight(m)
	defer func() {
		d.setInflight(nil)
		d.pacer.update(m.Node, m.State() != MessageCompleted || m.Cans() > 0)
	}()

	if err := d.write(m.Payload, "send"); err != nil {
		Debugf("write failed for %s: %v", m, err)
		d.resolve(m, MessageAborted)
		return
	}

	timer := time.NewTimer(m.Timeout)
	defer timer.Stop()

	for {
		select {
		case reply := <-m.replies:
			if reply == nil {
				Debugf("message was force aborted: %s", m)
				d.resolve(m, MessageAborted)
				return
			}
			if m.progress != nil && pendingMulti(m) {
				if !m.progress(reply) {
					continue
				}
			}
			d.resolveWith(m, MessageCompleted, reply)
			return
		case <-timer.C:
			d.traceMu.Lock()
			d.trace.RecordTimeout(m.String())
			d.traceMu.Unlock()
			Debugf("timeout (%s) for %s", m.Timeout, m)
			d.resolve(m, MessageTimedOut)
			return
		case <-ctx.Done():
			d.resolve(m, MessageAborted)
			return
		}
	}
}

func pendingMulti(m *Message) bool {
	p := m.Pending()
	return len(p) > 0 && p[len(p)-1].Kind == AwaitCallbacks
}

func (d *Driver) resolve(m *Message, state MessageState) {
	d.resolveWith(m, state, nil)
}

// resolveWith finishes the message, runs its handler and records stats.
func (d *Driver) resolveWith(m *Message, state MessageState, reply []byte) {
	if !m.finish(state, time.Now()) {
		return
	}
	if m.handler != nil {
		m.handler(reply)
	}
	if !m.IsBarrier() {
		d.stats.Record(m)
	}
}

// =============================================================================
// Receive goroutine
// =============================================================================

func (d *Driver) receiveLoop(ctx context.Context) error {
	buf := make([]byte, 0, frame.MaxFrameLength*2)
	chunk := make([]byte, 256)
	for {
		if ctx.Err() != nil {
			return nil
		}
		n, err := d.transport.Read(chunk)
		if err != nil {
			if IsFatal(err) {
				d.traceMu.Lock()
				err = d.trace.WrapError(err)
				d.traceMu.Unlock()
				d.err.Store(&err)
				Debugf("receive loop stopping: %v", err)
				return err
			}
			Debugf("read error: %v", err)
			continue
		}
		if n == 0 {
			continue
		}
		buf = append(buf, chunk[:n]...)
		buf = d.drain(buf)
	}
}

// drain processes every complete frame at the head of buf and returns what
// is left.
func (d *Driver) drain(buf []byte) []byte {
	for len(buf) > 0 {
		f, n, st := frame.TryExtract(buf)
		switch st {
		case frame.Incomplete:
			return buf
		case frame.Unknown:
			Debugf("%v: 0x%02x", ErrUnexpectedByte, f[0])
		case frame.Corrupt:
			// No CAN is sent; the stick retransmits after its own timeout.
			d.recordRX(f, "bad checksum")
			Debugf("%v: dropping % x", ErrBadChecksum, f)
		case frame.Complete:
			d.recordRX(f, "")
			d.handleFrame(append([]byte(nil), f...))
		}
		buf = buf[n:]
	}
	return buf[:0]
}

func (d *Driver) handleFrame(f []byte) {
	switch f[0] {
	case frame.NAK:
		Debugln("received NAK")
	case frame.CAN:
		d.handleCAN()
	case frame.ACK:
		d.handleACK(f)
	case frame.SOF:
		if err := d.write([]byte{frame.ACK}, "ack"); err != nil {
			Debugf("failed to ACK frame: %v", err)
		}
		d.handleDataFrame(f)
	}
}

func (d *Driver) handleCAN() {
	m := d.inflightMessage()
	if m == nil {
		Debugf("%v: CAN, nothing to re-send", ErrStrayFrame)
		return
	}
	count := m.onCAN()
	Debugf("CAN #%d, re-sending %s", count, m)
	if err := d.write(m.Payload, "resend"); err != nil {
		Debugf("re-send failed: %v", err)
	}
}

func (d *Driver) handleACK(f []byte) {
	m := d.inflightMessage()
	if m == nil {
		Debugf("%v: ACK", ErrStrayFrame)
		return
	}
	m.onACK(f)
}

func (d *Driver) handleDataFrame(f []byte) {
	fn := frame.Function(f)
	if frame.Direction(f) == frame.Response {
		d.handleResponse(fn, f)
		return
	}
	if fn == FuncApplicationCommandHandler || fn == FuncApplicationUpdate || !d.cfg.LegacyRequestCompletion {
		d.enqueueInbound(f)
		return
	}
	d.completeOnRequest(fn, f)
}

func (d *Driver) handleResponse(fn byte, f []byte) {
	m := d.inflightMessage()
	if m == nil {
		Debugf("%v: unexpected response %s", ErrStrayFrame, frame.Describe(f))
		return
	}
	if fn != m.Function() {
		Debugf("unexpected response %s while waiting for %s", frame.Describe(f), m)
		return
	}
	if matched, _ := m.onResponse(f); !matched {
		Debugf("response %s not expected by %s", frame.Describe(f), m)
	}
}

// completeOnRequest is the legacy path: a REQUEST that is not an
// application frame is taken as the callback of the in-flight message.
func (d *Driver) completeOnRequest(fn byte, f []byte) {
	m := d.inflightMessage()
	if m == nil {
		Debugf("%v: nothing in flight for request %s", ErrStrayFrame, frame.Describe(f))
		return
	}
	if fn != m.Function() {
		Debugf("unexpected request %s while waiting for %s", frame.Describe(f), m)
		return
	}
	if matched, _ := m.onCallback(f); !matched {
		Debugf("unexpected callback id in %s for %s", frame.Describe(f), m)
	}
}

func (d *Driver) enqueueInbound(f []byte) {
	select {
	case d.inbound <- inboundFrame{ts: time.Now(), f: f}:
	case <-d.stopped:
	}
}

// =============================================================================
// Dispatch goroutine
// =============================================================================

func (d *Driver) dispatchLoop(ctx context.Context) error {
	for {
		select {
		case in := <-d.inbound:
			if in.fn != nil {
				in.fn()
				continue
			}
			d.handlersMu.RLock()
			handlers := d.handlers
			d.handlersMu.RUnlock()
			for _, h := range handlers {
				h.HandleFrame(in.ts, in.f)
			}
		case <-ctx.Done():
			return nil
		}
	}
}

// =============================================================================
// Wire
// =============================================================================

func (d *Driver) write(data []byte, note string) error {
	d.writeMu.Lock()
	defer d.writeMu.Unlock()

	d.traceMu.Lock()
	d.trace.RecordTX(data, note)
	d.traceMu.Unlock()
	d.observe(TraceTX, data)

	n, err := d.transport.Write(data)
	if err != nil {
		return NewTransportError("write", d.cfg.Port, err, ErrorTypeTransient)
	}
	if n != len(data) {
		return NewTransportWriteError("write", d.cfg.Port)
	}
	return nil
}

func (d *Driver) recordRX(f []byte, note string) {
	d.traceMu.Lock()
	d.trace.RecordRX(f, note)
	d.traceMu.Unlock()
	d.observe(TraceRX, f)
}

func (d *Driver) observe(dir TraceDirection, f []byte) {
	d.handlersMu.RLock()
	observers := d.observers
	d.handlersMu.RUnlock()
	if len(observers) == 0 {
		return
	}
	ts := time.Now()
	for _, o := range observers {
		o.ObserveFrame(ts, dir, f)
	}
}
