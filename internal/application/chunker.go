package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/bnema/orderlink/internal/domain"
	"github.com/bnema/orderlink/internal/framing"
	"github.com/bnema/orderlink/internal/ports"
	"github.com/rs/zerolog"
)

// OutboundFragmentSet is an encoded response ready for emission, in send order.
type OutboundFragmentSet struct {
	ConnectionID domain.ConnectionID
	Fragments    [][]byte
}

func (s OutboundFragmentSet) Len() int {
	return len(s.Fragments)
}

// SendError reports the fragment at Index that the transport rejected. Sent
// fragments before it were already delivered and are not recalled.
type SendError struct {
	ConnectionID domain.ConnectionID
	Index        int
	Sent         int
	Total        int
	Err          error
}

func (e *SendError) Error() string {
	return fmt.Sprintf("send fragment %d/%d to %s: %v", e.Index+1, e.Total, e.ConnectionID, e.Err)
}

func (e *SendError) Unwrap() []error {
	return []error{domain.ErrSendFailure, e.Err}
}

// Chunker encodes responses into fragments sized for a connection and emits
// them through the transport. It never retries.
type Chunker struct {
	codec           framing.Codec
	transport       ports.Transport
	defaultFragment int
	metrics         ports.Metrics
	logger          zerolog.Logger
}

func NewChunker(codec framing.Codec, transport ports.Transport, defaultFragment int, metrics ports.Metrics, logger zerolog.Logger) *Chunker {
	if defaultFragment < 1 {
		defaultFragment = framing.DefaultFragmentSize
	}
	if metrics == nil {
		metrics = ports.NopMetrics{}
	}

	return &Chunker{
		codec:           codec,
		transport:       transport,
		defaultFragment: defaultFragment,
		metrics:         metrics,
		logger:          logger,
	}
}

// FragmentSize is the negotiated payload size for id, or the configured
// default when the transport negotiated nothing.
func (c *Chunker) FragmentSize(id domain.ConnectionID) int {
	if size := c.transport.MaxFragmentSize(id); size > 0 {
		return size
	}
	return c.defaultFragment
}

func (c *Chunker) Prepare(id domain.ConnectionID, message []byte) (OutboundFragmentSet, error) {
	fragments, err := c.codec.Encode(message, c.FragmentSize(id))
	if err != nil {
		return OutboundFragmentSet{}, fmt.Errorf("prepare response for %s: %w", id, err)
	}

	return OutboundFragmentSet{ConnectionID: id, Fragments: fragments}, nil
}

// Emit sends the set in order and stops at the first failure.
func (c *Chunker) Emit(ctx context.Context, set OutboundFragmentSet) error {
	total := set.Len()
	for i, fragment := range set.Fragments {
		if err := ctx.Err(); err != nil {
			return &SendError{ConnectionID: set.ConnectionID, Index: i, Sent: i, Total: total, Err: err}
		}

		if err := c.transport.SendFragment(ctx, set.ConnectionID, fragment); err != nil {
			c.metrics.FragmentSent(false)
			c.logger.Error().Err(err).
				Str("conn", string(set.ConnectionID)).
				Int("index", i).
				Int("total", total).
				Msg("fragment send failed")
			return &SendError{ConnectionID: set.ConnectionID, Index: i, Sent: i, Total: total, Err: err}
		}
		c.metrics.FragmentSent(true)
	}

	c.logger.Debug().Str("conn", string(set.ConnectionID)).Int("fragments", total).Msg("response emitted")
	return nil
}

// Send prepares and emits message in one step.
func (c *Chunker) Send(ctx context.Context, id domain.ConnectionID, message []byte) error {
	set, err := c.Prepare(id, message)
	if err != nil {
		return err
	}
	return c.Emit(ctx, set)
}

// IsSendError reports whether err came from a rejected fragment and returns it.
func IsSendError(err error) (*SendError, bool) {
	var sendErr *SendError
	if errors.As(err, &sendErr) {
		return sendErr, true
	}
	return nil, false
}
