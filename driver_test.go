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
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ZaparooProject/go-zwave/internal/frame"
	testutil "github.com/ZaparooProject/go-zwave/internal/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stickTransport adapts the virtual stick to Transport.
type stickTransport struct {
	testutil.Backend
}

func (stickTransport) Type() TransportType { return TransportMock }

func testDriverConfig() DriverConfig {
	cfg := DefaultDriverConfig()
	cfg.ReadTimeout = 10 * time.Millisecond
	cfg.Port = "virtual"
	return cfg
}

func startDriver(t *testing.T, cfg DriverConfig, wrap func(testutil.Backend) testutil.Backend) (*Driver, *testutil.VirtualStick) {
	t.Helper()
	stick := testutil.NewVirtualStick()
	testutil.InstallDefaultController(stick)
	var backend testutil.Backend = stick
	if wrap != nil {
		backend = wrap(stick)
	}
	d := NewDriver(stickTransport{backend}, cfg)
	require.NoError(t, d.Start(context.Background()))
	t.Cleanup(func() { _ = d.Terminate() })
	return d, stick
}

type pending struct {
	msg     *Message
	replies chan []byte
}

func newPending(payload []byte, p Priority, node int, opts ...MessageOption) pending {
	ch := make(chan []byte, 1)
	return pending{
		msg:     NewMessage(payload, p, func(r []byte) { ch <- r }, node, opts...),
		replies: ch,
	}
}

func (p pending) wait(t *testing.T) []byte {
	t.Helper()
	select {
	case r := <-p.replies:
		return r
	case <-time.After(3 * time.Second):
		t.Fatalf("%s never resolved", p.msg)
		return nil
	}
}

func drain(t *testing.T, d *Driver) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	require.NoError(t, d.WaitForDrain(ctx))
}

func TestDriver_StartClearsLine(t *testing.T) {
	t.Parallel()

	d, stick := startDriver(t, testDriverConfig(), nil)
	assert.Equal(t, 3, stick.HostNAKCount())
	assert.Nil(t, d.Inflight())
	require.NoError(t, d.Start(context.Background()), "second Start is a no-op")
}

func TestDriver_Report(t *testing.T) {
	t.Parallel()

	d, _ := startDriver(t, testDriverConfig(), nil)
	p := newPending(MakeRawMessage(FuncGetVersion, nil), ControllerPriority(), NodeNone)
	d.SendMessage(p.msg)

	reply := p.wait(t)
	assert.Equal(t, testutil.BuildVersionResponse(testutil.DefaultVersion, testutil.DefaultLibrary), reply)
	assert.Equal(t, MessageCompleted, p.msg.State())

	drain(t, d)
	stats := d.Stats()
	assert.Equal(t, 1, stats.Processed)
	assert.Equal(t, 1, stats.ByState[MessageCompleted])
}

func TestDriver_SendDataCallback(t *testing.T) {
	t.Parallel()

	d, stick := startDriver(t, testDriverConfig(), nil)
	p := newPending(MakeRawCommandWithID(5, []byte{0x20, 0x02}, XmitOptions), NodePriorityHi(5), 5)
	d.SendMessage(p.msg)

	reply := p.wait(t)
	require.Equal(t, byte(frame.Request), frame.Direction(reply))
	assert.Equal(t, p.msg.CallbackID(), frame.Payload(reply)[0])
	assert.Equal(t, byte(TransmitCompleteOK), frame.Payload(reply)[1])

	// response and callback were both ACKed by the host
	assert.Eventually(t, func() bool { return stick.HostACKCount() == 2 }, time.Second, 5*time.Millisecond)
}

func TestDriver_SendDataRejected(t *testing.T) {
	t.Parallel()

	d, stick := startDriver(t, testDriverConfig(), nil)
	stick.OnFunction(FuncSendData, func([]byte) [][]byte {
		return [][]byte{testutil.ResponseFrame(FuncSendData, 0x00)}
	})

	p := newPending(MakeRawCommandWithID(5, []byte{0x20, 0x02}, XmitOptions), NodePriorityHi(5), 5)
	d.SendMessage(p.msg)
	assert.Equal(t, testutil.ResponseFrame(FuncSendData, 0x00), p.wait(t))
	assert.Equal(t, MessageCompleted, p.msg.State())
}

func TestDriver_ACKOnly(t *testing.T) {
	t.Parallel()

	d, _ := startDriver(t, testDriverConfig(), nil)
	p := newPending(MakeRawMessage(FuncSetPromiscuousMode, []byte{0x01}), ControllerPriority(), NodeNone)
	d.SendMessage(p.msg)
	assert.Equal(t, []byte{frame.ACK}, p.wait(t))
}

func TestDriver_CANRetransmit(t *testing.T) {
	t.Parallel()

	d, stick := startDriver(t, testDriverConfig(), nil)
	stick.CANNext(3)

	p := newPending(MakeRawCommandWithID(6, []byte{0x25, 0x02}, XmitOptions), NodePriorityLo(6), 6)
	d.SendMessage(p.msg)

	reply := p.wait(t)
	require.NotNil(t, reply)
	assert.Equal(t, MessageCompleted, p.msg.State())
	assert.Equal(t, 3, p.msg.Cans())

	sent := stick.HostFramesFor(FuncSendData)
	require.Len(t, sent, 4)
	for _, f := range sent {
		assert.Equal(t, p.msg.Payload, f)
	}

	drain(t, d)
	assert.Equal(t, 10*time.Millisecond, d.PacingSnapshot()[6])
	stats := d.Stats()
	assert.Equal(t, 1, stats.WithCan)
	assert.Equal(t, 3, stats.Cans)
}

func TestDriver_BadChecksumDropped(t *testing.T) {
	t.Parallel()

	d, stick := startDriver(t, testDriverConfig(), nil)
	stick.CorruptNextResponse()

	p := newPending(MakeRawMessage(FuncGetVersion, nil), ControllerPriority(), NodeNone, WithTimeout(150*time.Millisecond))
	d.SendMessage(p.msg)

	assert.Nil(t, p.wait(t))
	assert.Equal(t, MessageTimedOut, p.msg.State())
	// the corrupt frame was neither ACKed nor answered with CAN
	assert.Zero(t, stick.HostACKCount())

	var notes []string
	for _, e := range d.Trace() {
		notes = append(notes, e.Note)
	}
	assert.Contains(t, notes, "bad checksum")
}

func TestDriver_Unsolicited(t *testing.T) {
	t.Parallel()

	d, stick := startDriver(t, testDriverConfig(), nil)
	got := make(chan []byte, 4)
	d.AddAsyncHandler(AsyncHandlerFunc(func(_ time.Time, f []byte) { got <- f }))

	cmd := testutil.BuildApplicationCommand(4, 0x20, 0x03, 0xFF)
	stick.Inject(cmd)

	select {
	case f := <-got:
		assert.Equal(t, cmd, f)
	case <-time.After(2 * time.Second):
		t.Fatal("application command not dispatched")
	}
	assert.Eventually(t, func() bool { return stick.HostACKCount() == 1 }, time.Second, 5*time.Millisecond)
}

func TestDriver_HandlerOrder(t *testing.T) {
	t.Parallel()

	d, stick := startDriver(t, testDriverConfig(), nil)
	var (
		mu    sync.Mutex
		order []string
	)
	done := make(chan struct{})
	d.AddAsyncHandler(AsyncHandlerFunc(func(time.Time, []byte) {
		mu.Lock()
		order = append(order, "first")
		mu.Unlock()
	}))
	d.AddAsyncHandler(AsyncHandlerFunc(func(time.Time, []byte) {
		mu.Lock()
		order = append(order, "second")
		mu.Unlock()
		close(done)
	}))

	stick.Inject(testutil.BuildNodeInfoUpdate(3, 0x04, 0x10, 0x01, 0x25, 0x27))
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("update not dispatched")
	}
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"first", "second"}, order)
}

type inflightGuard struct {
	violations atomic.Int32
	sent       atomic.Int32
	done       atomic.Int32
}

func (g *inflightGuard) ObserveFrame(_ time.Time, dir TraceDirection, f []byte) {
	if dir != TraceTX || f[0] != frame.SOF {
		return
	}
	if g.sent.Load() != g.done.Load() {
		g.violations.Add(1)
	}
	g.sent.Add(1)
}

func TestDriver_SingleInflight(t *testing.T) {
	t.Parallel()

	d, _ := startDriver(t, testDriverConfig(), nil)
	guard := &inflightGuard{}
	d.AddObserver(guard)

	for i := range 10 {
		node := 2 + i%3
		d.SendMessage(NewMessage(MakeRawCommandWithID(byte(node), []byte{0x25, 0x02}, XmitOptions),
			NodePriorityLo(node), func([]byte) { guard.done.Add(1) }, node))
	}
	drain(t, d)

	assert.Equal(t, int32(10), guard.done.Load())
	assert.Equal(t, int32(10), guard.sent.Load())
	assert.Zero(t, guard.violations.Load())
}

func TestDriver_BarrierRunsAfterQueuedWork(t *testing.T) {
	t.Parallel()

	d, _ := startDriver(t, testDriverConfig(), nil)
	var resolved atomic.Int32
	for range 3 {
		d.SendMessage(NewMessage(MakeRawMessage(FuncGetVersion, nil), ControllerPriority(),
			func([]byte) { resolved.Add(1) }, NodeNone))
	}

	seen := make(chan int32, 1)
	d.SendBarrier(func() { seen <- resolved.Load() })
	select {
	case n := <-seen:
		assert.Equal(t, int32(3), n)
	case <-time.After(3 * time.Second):
		t.Fatal("barrier never ran")
	}
}

func TestDriver_LegacyCompletionDisabled(t *testing.T) {
	t.Parallel()

	cfg := testDriverConfig()
	cfg.LegacyRequestCompletion = false
	d, _ := startDriver(t, cfg, nil)
	got := make(chan []byte, 4)
	d.AddAsyncHandler(AsyncHandlerFunc(func(_ time.Time, f []byte) { got <- f }))

	p := newPending(MakeRawCommandWithID(5, []byte{0x20, 0x02}, XmitOptions), NodePriorityHi(5), 5,
		WithTimeout(200*time.Millisecond))
	d.SendMessage(p.msg)

	assert.Nil(t, p.wait(t))
	assert.Equal(t, MessageTimedOut, p.msg.State())
	select {
	case f := <-got:
		assert.Equal(t, byte(FuncSendData), frame.Function(f))
	default:
		t.Fatal("callback was not dispatched as unsolicited")
	}
}

func TestDriver_MultiCallback(t *testing.T) {
	t.Parallel()

	d, stick := startDriver(t, testDriverConfig(), nil)
	stick.OnFunction(FuncAddNodeToNetwork, func(req []byte) [][]byte {
		cbid := testutil.CallbackID(req)
		return [][]byte{
			testutil.BuildAddNodeProgress(cbid, AddNodeStatusLearnReady, 0),
			testutil.BuildAddNodeProgress(cbid, AddNodeStatusNodeFound, 0),
			testutil.BuildAddNodeProgress(cbid, AddNodeStatusAddingSlave, 7),
			testutil.BuildAddNodeProgress(cbid, AddNodeStatusProtocolDone, 7),
		}
	})

	var steps []byte
	progress := func(r []byte) bool {
		status := frame.Payload(r)[1]
		steps = append(steps, status)
		return status == AddNodeStatusProtocolDone
	}
	p := newPending(MakeRawMessageWithID(FuncAddNodeToNetwork, []byte{AddNodeAny}), ControllerPriority(), NodeNone,
		WithTimeout(2*time.Second), WithProgress(progress))
	d.SendMessage(p.msg)

	reply := p.wait(t)
	assert.Equal(t, byte(AddNodeStatusProtocolDone), frame.Payload(reply)[1])
	assert.Equal(t, []byte{
		AddNodeStatusLearnReady, AddNodeStatusNodeFound, AddNodeStatusAddingSlave, AddNodeStatusProtocolDone,
	}, steps)
}

func TestDriver_CancelLearningOperation(t *testing.T) {
	t.Parallel()

	d, stick := startDriver(t, testDriverConfig(), nil)
	stick.OnFunction(FuncAddNodeToNetwork, func(req []byte) [][]byte {
		return [][]byte{testutil.BuildAddNodeProgress(testutil.CallbackID(req), AddNodeStatusLearnReady, 0)}
	})

	p := newPending(MakeRawMessageWithID(FuncAddNodeToNetwork, []byte{AddNodeAny}), ControllerPriority(), NodeNone,
		WithTimeout(PairingTimeout), WithProgress(func([]byte) bool { return false }))
	d.SendMessage(p.msg)

	require.Eventually(t, func() bool { return d.Inflight() == p.msg }, 2*time.Second, 5*time.Millisecond)
	d.MaybeCancelLearningOperation()

	assert.Nil(t, p.wait(t))
	assert.Equal(t, MessageAborted, p.msg.State())
}

func TestDriver_TerminateAbortsQueued(t *testing.T) {
	t.Parallel()

	stick := testutil.NewVirtualStick()
	d := NewDriver(stickTransport{stick}, testDriverConfig())
	require.NoError(t, d.Start(context.Background()))

	// nothing answers GET_RANDOM, so the first message stays in flight
	first := newPending(MakeRawMessage(FuncGetRandom, []byte{0x08}), ControllerPriority(), NodeNone,
		WithTimeout(10*time.Second))
	second := newPending(MakeRawMessage(FuncGetRandom, []byte{0x08}), ControllerPriority(), NodeNone)
	d.SendMessage(first.msg)
	d.SendMessage(second.msg)
	require.Eventually(t, func() bool { return d.Inflight() == first.msg }, 2*time.Second, 5*time.Millisecond)

	require.NoError(t, d.Terminate())
	assert.Nil(t, first.wait(t))
	assert.Nil(t, second.wait(t))
	assert.Equal(t, MessageAborted, first.msg.State())
	assert.Equal(t, MessageAborted, second.msg.State())

	// sends after shutdown resolve immediately
	late := newPending(MakeRawMessage(FuncGetVersion, nil), ControllerPriority(), NodeNone)
	d.SendMessage(late.msg)
	assert.Nil(t, late.wait(t))
}

func TestDriver_TransportGone(t *testing.T) {
	t.Parallel()

	d, stick := startDriver(t, testDriverConfig(), nil)
	require.NoError(t, stick.Close())

	require.Eventually(t, func() bool { return d.Err() != nil }, 2*time.Second, 5*time.Millisecond)
	require.ErrorIs(t, d.Err(), io.ErrClosedPipe)
	assert.NotNil(t, GetTrace(d.Err()))
}

func TestDriver_FragmentedReads(t *testing.T) {
	t.Parallel()

	jitter := func(b testutil.Backend) testutil.Backend {
		return testutil.NewJitteryTransport(b, testutil.JitterConfig{Seed: 7, FragmentReads: true, FragmentMinBytes: 1})
	}
	d, _ := startDriver(t, testDriverConfig(), jitter)

	for node := 2; node < 6; node++ {
		p := newPending(MakeRawCommandWithID(byte(node), []byte{0x25, 0x02}, XmitOptions), NodePriorityLo(node), node)
		d.SendMessage(p.msg)
		require.NotNil(t, p.wait(t))
	}
	p := newPending(MakeRawMessage(FuncSerialAPIGetInitData, nil), ControllerPriority(), NodeNone)
	d.SendMessage(p.msg)
	assert.Equal(t, testutil.BuildInitDataResponse(testutil.DefaultNodeList), p.wait(t))
}

func TestDriver_DoneClosesOnTerminate(t *testing.T) {
	t.Parallel()

	d, _ := startDriver(t, testDriverConfig(), nil)
	select {
	case <-d.Done():
		t.Fatal("done before terminate")
	default:
	}
	require.NoError(t, d.Terminate())
	select {
	case <-d.Done():
	case <-time.After(time.Second):
		t.Fatal("done not closed")
	}
}
