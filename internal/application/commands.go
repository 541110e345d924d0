package application

import (
	"context"

	"github.com/bnema/orderlink/internal/domain"
	"github.com/google/uuid"
)

// ConnectionEvent is a raw connection state change as reported by a transport.
type ConnectionEvent struct {
	ID    domain.ConnectionID
	Name  string
	State domain.LinkState
}

// WriteRequest is a characteristic write delivered by a transport.
type WriteRequest struct {
	ID               domain.ConnectionID
	RequestID        int
	Characteristic   uuid.UUID
	Value            []byte
	ResponseRequired bool
}

// DescriptorWrite is a descriptor write delivered by a transport, used for
// the client characteristic configuration descriptor.
type DescriptorWrite struct {
	ID         domain.ConnectionID
	RequestID  int
	Descriptor uuid.UUID
	Value      []byte
}

// EventHandler consumes inbound transport events. Peripheral is the
// production implementation.
type EventHandler interface {
	ConnectionStateChanged(ctx context.Context, ev ConnectionEvent) error
	FragmentWritten(ctx context.Context, req WriteRequest) error
	DescriptorWritten(ctx context.Context, req DescriptorWrite) error
}
