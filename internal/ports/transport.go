package ports

import (
	"context"

	"github.com/bnema/orderlink/internal/domain"
)

// Transport is the link layer that owns the live connections. Implementations
// deliver inbound events to an application.Peripheral and carry its output.
type Transport interface {
	// SendFragment emits one notify/indicate frame to the peer.
	SendFragment(ctx context.Context, id domain.ConnectionID, fragment []byte) error
	// SendAck answers a write request synchronously. payload may be nil.
	SendAck(ctx context.Context, id domain.ConnectionID, requestID int, payload []byte) error
	// MaxFragmentSize returns the negotiated payload size for id, or 0 when
	// nothing was negotiated.
	MaxFragmentSize(id domain.ConnectionID) int
	Disconnect(ctx context.Context, id domain.ConnectionID) error
}
