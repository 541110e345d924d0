// Package loopback is an in-memory transport. It drives a handler with
// scripted peer events and records everything the peripheral sends back.
package loopback

import (
	"context"
	"fmt"
	"sync"

	"github.com/bnema/orderlink/internal/application"
	"github.com/bnema/orderlink/internal/domain"
	"github.com/bnema/orderlink/internal/ports"
	"github.com/google/uuid"
)

const attHeaderSize = 3

type FrameKind string

const (
	FrameNotify FrameKind = "notify"
	FrameAck    FrameKind = "ack"
	FrameDrop   FrameKind = "drop"
)

// Frame is one outbound transmission in the order it was sent.
type Frame struct {
	Kind         FrameKind           `json:"kind"`
	ConnectionID domain.ConnectionID `json:"connection_id"`
	RequestID    int                 `json:"request_id,omitempty"`
	Payload      []byte              `json:"payload,omitempty"`
}

type Transport struct {
	mu        sync.Mutex
	handler   application.EventHandler
	mtu       map[domain.ConnectionID]int
	frames    []Frame
	requestID int
	failSends map[domain.ConnectionID]error
	cccd      uuid.UUID
}

var _ ports.Transport = (*Transport)(nil)

func New() *Transport {
	return &Transport{
		mtu:       make(map[domain.ConnectionID]int),
		failSends: make(map[domain.ConnectionID]error),
		cccd:      application.DefaultCCCDUUID,
	}
}

// Attach sets the handler that receives scripted peer events.
func (t *Transport) Attach(handler application.EventHandler) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.handler = handler
}

// SetCCCD overrides the descriptor used by Subscribe.
func (t *Transport) SetCCCD(id uuid.UUID) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.cccd = id
}

func (t *Transport) SendFragment(ctx context.Context, id domain.ConnectionID, fragment []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if err, ok := t.failSends[id]; ok {
		return err
	}
	t.frames = append(t.frames, Frame{Kind: FrameNotify, ConnectionID: id, Payload: append([]byte(nil), fragment...)})
	return nil
}

func (t *Transport) SendAck(ctx context.Context, id domain.ConnectionID, requestID int, payload []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.frames = append(t.frames, Frame{Kind: FrameAck, ConnectionID: id, RequestID: requestID, Payload: append([]byte(nil), payload...)})
	return nil
}

func (t *Transport) MaxFragmentSize(id domain.ConnectionID) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	if mtu, ok := t.mtu[id]; ok && mtu > attHeaderSize {
		return mtu - attHeaderSize
	}
	return 0
}

func (t *Transport) Disconnect(ctx context.Context, id domain.ConnectionID) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	t.mu.Lock()
	t.frames = append(t.frames, Frame{Kind: FrameDrop, ConnectionID: id})
	delete(t.mtu, id)
	handler := t.handler
	t.mu.Unlock()

	if handler == nil {
		return nil
	}
	return handler.ConnectionStateChanged(ctx, application.ConnectionEvent{ID: id, State: domain.LinkDisconnected})
}

// FailSends makes every notification to id fail with err. A nil err clears it.
func (t *Transport) FailSends(id domain.ConnectionID, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err == nil {
		delete(t.failSends, id)
		return
	}
	t.failSends[id] = err
}

func (t *Transport) Frames() []Frame {
	t.mu.Lock()
	defer t.mu.Unlock()

	frames := make([]Frame, len(t.frames))
	copy(frames, t.frames)
	return frames
}

// Notifications returns the concatenated notify payloads sent to id.
func (t *Transport) Notifications(id domain.ConnectionID) []byte {
	t.mu.Lock()
	defer t.mu.Unlock()

	var out []byte
	for _, frame := range t.frames {
		if frame.Kind == FrameNotify && frame.ConnectionID == id {
			out = append(out, frame.Payload...)
		}
	}
	return out
}

func (t *Transport) Connecting(ctx context.Context, id domain.ConnectionID) error {
	return t.changeState(ctx, id, "", domain.LinkConnecting)
}

func (t *Transport) Connect(ctx context.Context, id domain.ConnectionID, name string) error {
	return t.changeState(ctx, id, name, domain.LinkConnected)
}

func (t *Transport) Drop(ctx context.Context, id domain.ConnectionID) error {
	t.mu.Lock()
	delete(t.mtu, id)
	t.mu.Unlock()

	return t.changeState(ctx, id, "", domain.LinkDisconnected)
}

func (t *Transport) NegotiateMTU(id domain.ConnectionID, mtu int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.mtu[id] = mtu
}

// Write delivers a characteristic write from the peer.
func (t *Transport) Write(ctx context.Context, id domain.ConnectionID, characteristic uuid.UUID, value []byte, responseRequired bool) error {
	handler, requestID, err := t.next()
	if err != nil {
		return err
	}

	return handler.FragmentWritten(ctx, application.WriteRequest{
		ID:               id,
		RequestID:        requestID,
		Characteristic:   characteristic,
		Value:            append([]byte(nil), value...),
		ResponseRequired: responseRequired,
	})
}

// Subscribe writes the CCCD on behalf of the peer.
func (t *Transport) Subscribe(ctx context.Context, id domain.ConnectionID, enabled bool) error {
	handler, requestID, err := t.next()
	if err != nil {
		return err
	}

	value := []byte{0x00, 0x00}
	if enabled {
		value = []byte{0x01, 0x00}
	}

	t.mu.Lock()
	cccd := t.cccd
	t.mu.Unlock()

	return handler.DescriptorWritten(ctx, application.DescriptorWrite{
		ID:         id,
		RequestID:  requestID,
		Descriptor: cccd,
		Value:      value,
	})
}

func (t *Transport) changeState(ctx context.Context, id domain.ConnectionID, name string, state domain.LinkState) error {
	handler, _, err := t.next()
	if err != nil {
		return err
	}

	return handler.ConnectionStateChanged(ctx, application.ConnectionEvent{ID: id, Name: name, State: state})
}

func (t *Transport) next() (application.EventHandler, int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.handler == nil {
		return nil, 0, fmt.Errorf("loopback: no handler attached")
	}
	t.requestID++
	return t.handler, t.requestID, nil
}
