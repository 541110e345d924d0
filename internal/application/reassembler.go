package application

import (
	"fmt"
	"time"

	"github.com/bnema/orderlink/internal/domain"
	"github.com/bnema/orderlink/internal/framing"
	"github.com/rs/zerolog"
)

// Reassembler keeps one accumulator per connection and turns fragments into
// records. It is not safe for concurrent use; Registry serializes access.
type Reassembler struct {
	codec   framing.Codec
	buffers map[domain.ConnectionID]*framing.Accumulator
	logger  zerolog.Logger
}

func NewReassembler(codec framing.Codec, logger zerolog.Logger) *Reassembler {
	return &Reassembler{
		codec:   codec,
		buffers: make(map[domain.ConnectionID]*framing.Accumulator),
		logger:  logger,
	}
}

// OnFragment feeds fragment into the buffer for id, creating it on first use.
// The buffer is discarded once a message completes or the codec rejects it.
func (r *Reassembler) OnFragment(id domain.ConnectionID, fragment []byte, now time.Time) (domain.Record, bool, error) {
	acc, ok := r.buffers[id]
	if !ok {
		acc = &framing.Accumulator{}
		r.buffers[id] = acc
	}

	message, complete, err := r.codec.Decode(acc, fragment)

	r.logger.Debug().
		Str("conn", string(id)).
		Int("fragment_len", len(fragment)).
		Int("buffered", acc.Len()).
		Bool("complete", complete).
		Msg("fragment received")

	if err != nil {
		delete(r.buffers, id)
		return domain.Record{}, false, fmt.Errorf("reassemble fragment for %s: %w", id, err)
	}
	if !complete {
		return domain.Record{}, false, nil
	}

	delete(r.buffers, id)
	return domain.NewRecord(id, message, now), true, nil
}

// Discard drops the buffer for id and reports how many bytes it held.
func (r *Reassembler) Discard(id domain.ConnectionID) int {
	acc, ok := r.buffers[id]
	if !ok {
		return 0
	}

	delete(r.buffers, id)
	return acc.Len()
}

func (r *Reassembler) Buffered(id domain.ConnectionID) int {
	if acc, ok := r.buffers[id]; ok {
		return acc.Len()
	}
	return 0
}

func (r *Reassembler) Has(id domain.ConnectionID) bool {
	_, ok := r.buffers[id]
	return ok
}

func (r *Reassembler) TotalBuffered() int {
	total := 0
	for _, acc := range r.buffers {
		total += acc.Len()
	}
	return total
}
