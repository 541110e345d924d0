package uart

import (
	"bytes"
	"context"
	"encoding/hex"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bnema/orderlink/internal/application"
	"github.com/bnema/orderlink/internal/framing"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testPort struct {
	io.Reader

	mu     sync.Mutex
	out    bytes.Buffer
	closed bool
}

func (p *testPort) Write(b []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.out.Write(b)
}

func (p *testPort) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}

func (p *testPort) Output() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.out.String()
}

type recordingHandler struct {
	mu     sync.Mutex
	conns  []application.ConnectionEvent
	writes []application.WriteRequest
	descs  []application.DescriptorWrite
	err    error
}

func (h *recordingHandler) ConnectionStateChanged(_ context.Context, ev application.ConnectionEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conns = append(h.conns, ev)
	return h.err
}

func (h *recordingHandler) FragmentWritten(_ context.Context, req application.WriteRequest) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.writes = append(h.writes, req)
	return h.err
}

func (h *recordingHandler) DescriptorWritten(_ context.Context, req application.DescriptorWrite) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.descs = append(h.descs, req)
	return h.err
}

func TestBridgeRunDispatchesLinesAndSkipsMalformed(t *testing.T) {
	input := strings.Join([]string{
		"CONN AA:BB 2 Till 1",
		"garbage",
		"WRITE AA:BB 4 00001111-0000-1000-8000-00805f9b34fb 1 4c41",
		"DESC AA:BB 5 00002902-0000-1000-8000-00805f9b34fb 0100",
		"MTU AA:BB 185",
		"",
	}, "\n")
	port := &testPort{Reader: strings.NewReader(input)}
	handler := &recordingHandler{err: errors.New("ignored")}
	bridge := NewBridge(port, zerolog.Nop())

	require.NoError(t, bridge.Run(context.Background(), handler))

	require.Len(t, handler.conns, 1)
	assert.Equal(t, "Till 1", handler.conns[0].Name)
	require.Len(t, handler.writes, 1)
	assert.Equal(t, []byte("LA"), handler.writes[0].Value)
	require.Len(t, handler.descs, 1)
	assert.Equal(t, 182, bridge.MaxFragmentSize("AA:BB"))
	assert.Zero(t, bridge.MaxFragmentSize("CC:DD"))
}

func TestBridgeForgetsMTUOnDisconnect(t *testing.T) {
	port := &testPort{Reader: strings.NewReader("MTU AA:BB 64\nCONN AA:BB 0\n")}
	bridge := NewBridge(port, zerolog.Nop())

	require.NoError(t, bridge.Run(context.Background(), &recordingHandler{}))
	assert.Zero(t, bridge.MaxFragmentSize("AA:BB"))
}

func TestBridgeRunStopsOnContextCancel(t *testing.T) {
	reader, writer := io.Pipe()
	defer writer.Close()

	bridge := NewBridge(&testPort{Reader: reader}, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- bridge.Run(ctx, &recordingHandler{}) }()

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("run did not return after cancel")
	}
}

func TestBridgeWritesOutboundLines(t *testing.T) {
	port := &testPort{Reader: strings.NewReader("")}
	bridge := NewBridge(port, zerolog.Nop())
	ctx := context.Background()

	require.NoError(t, bridge.SendFragment(ctx, "AA:BB", []byte("HI")))
	require.NoError(t, bridge.SendAck(ctx, "AA:BB", 9, nil))
	require.NoError(t, bridge.Disconnect(ctx, "AA:BB"))

	assert.Equal(t, "NOTIFY AA:BB 4849\nACK AA:BB 9 -\nDROP AA:BB\n", port.Output())

	require.NoError(t, bridge.Close())
	assert.ErrorIs(t, bridge.SendFragment(ctx, "AA:BB", []byte("x")), ErrBridgeClosed)
}

func TestBridgeServesPeripheralEndToEnd(t *testing.T) {
	input := strings.Join([]string{
		"CONN AA:BB 2",
		"DESC AA:BB 1 00002902-0000-1000-8000-00805f9b34fb 0100",
		"WRITE AA:BB 2 00001111-0000-1000-8000-00805f9b34fb 0 " + hexOf("TEA"),
		"WRITE AA:BB 3 00001111-0000-1000-8000-00805f9b34fb 0 " + hexOf("END"),
		"",
	}, "\n")
	port := &testPort{Reader: strings.NewReader(input)}
	bridge := NewBridge(port, zerolog.Nop())

	codec, err := framing.New(framing.ModeTerminator, "", framing.DefaultLimits())
	require.NoError(t, err)
	registry := application.NewRegistry(codec, nil, nil, zerolog.Nop())
	chunker := application.NewChunker(codec, bridge, framing.DefaultFragmentSize, nil, zerolog.Nop())
	peripheral := application.NewPeripheral(application.DefaultPeripheralConfig(), registry, chunker, bridge, zerolog.Nop())

	require.NoError(t, bridge.Run(context.Background(), peripheral))

	records := registry.Records()
	require.Len(t, records, 1)
	assert.Equal(t, "TEA", records[0].Text())

	lines := strings.Split(strings.TrimSpace(port.Output()), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "ACK AA:BB 1 -", lines[0])

	var response []byte
	for _, line := range lines[1:] {
		fields := strings.Fields(line)
		require.Len(t, fields, 3)
		assert.Equal(t, "NOTIFY", fields[0])
		assert.Equal(t, "AA:BB", fields[1])
		fragment, err := hex.DecodeString(fields[2])
		require.NoError(t, err)
		assert.LessOrEqual(t, len(fragment), framing.DefaultFragmentSize)
		response = append(response, fragment...)
	}
	assert.Equal(t, "Order Process Complete: Details for TEAEND", string(response))
}

func hexOf(s string) string {
	return encodePayload([]byte(s))
}
