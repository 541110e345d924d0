package application

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/bnema/orderlink/internal/domain"
	"github.com/bnema/orderlink/internal/framing"
	"github.com/bnema/orderlink/internal/ports"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	DefaultAckTemplate      = "Acknowledgment: Data received for order %s"
	DefaultResponseTemplate = "Order Process Complete: Details for %s"
)

var (
	DefaultServiceUUID        = uuid.MustParse("00002222-0000-1000-8000-00805f9b34fb")
	DefaultCharacteristicUUID = uuid.MustParse("00001111-0000-1000-8000-00805f9b34fb")
	DefaultCCCDUUID           = uuid.MustParse("00002902-0000-1000-8000-00805f9b34fb")
)

var (
	enableNotificationValue = []byte{0x01, 0x00}
	enableIndicationValue   = []byte{0x02, 0x00}
)

type PeripheralConfig struct {
	Characteristic   uuid.UUID
	CCCD             uuid.UUID
	AckTemplate      string
	ResponseTemplate string
}

func DefaultPeripheralConfig() PeripheralConfig {
	return PeripheralConfig{
		Characteristic:   DefaultCharacteristicUUID,
		CCCD:             DefaultCCCDUUID,
		AckTemplate:      DefaultAckTemplate,
		ResponseTemplate: DefaultResponseTemplate,
	}
}

// Peripheral turns transport callbacks into registry operations and answers
// the peer: it acks writes, responds to completed orders and drops peers that
// overflow their reassembly buffer.
type Peripheral struct {
	cfg       PeripheralConfig
	registry  *Registry
	chunker   *Chunker
	transport ports.Transport
	logger    zerolog.Logger
}

var _ EventHandler = (*Peripheral)(nil)

func NewPeripheral(cfg PeripheralConfig, registry *Registry, chunker *Chunker, transport ports.Transport, logger zerolog.Logger) *Peripheral {
	defaults := DefaultPeripheralConfig()
	if cfg.Characteristic == uuid.Nil {
		cfg.Characteristic = defaults.Characteristic
	}
	if cfg.CCCD == uuid.Nil {
		cfg.CCCD = defaults.CCCD
	}
	if cfg.AckTemplate == "" {
		cfg.AckTemplate = defaults.AckTemplate
	}
	if cfg.ResponseTemplate == "" {
		cfg.ResponseTemplate = defaults.ResponseTemplate
	}

	return &Peripheral{
		cfg:       cfg,
		registry:  registry,
		chunker:   chunker,
		transport: transport,
		logger:    logger,
	}
}

func (p *Peripheral) Registry() *Registry {
	return p.registry
}

func (p *Peripheral) ConnectionStateChanged(ctx context.Context, ev ConnectionEvent) error {
	if err := ev.ID.Validate(); err != nil {
		p.logger.Warn().Err(err).Msg("connection event dropped")
		return err
	}

	next, err := domain.StateFor(ev.State, domain.NewPeer(ev.ID, ev.Name))
	if err != nil {
		p.logger.Warn().Err(err).Str("conn", string(ev.ID)).Msg("connection event ignored")
		if ev.State == domain.LinkDisconnecting {
			return nil
		}
		return err
	}

	return p.registry.UpdateConnectionState(ev.ID, next)
}

// FragmentWritten handles one characteristic write. Writes to other
// characteristics are ignored.
func (p *Peripheral) FragmentWritten(ctx context.Context, req WriteRequest) error {
	if req.Characteristic != p.cfg.Characteristic {
		p.logger.Debug().
			Str("conn", string(req.ID)).
			Str("characteristic", req.Characteristic.String()).
			Msg("write for unknown characteristic ignored")
		return nil
	}
	if err := req.ID.Validate(); err != nil {
		p.logger.Warn().Err(err).Msg("write dropped")
		return err
	}

	res, err := p.registry.Submit(req.ID, req.Value)
	if err != nil {
		if errors.Is(err, framing.ErrMessageTooLarge) {
			p.logger.Warn().Err(err).Str("conn", string(req.ID)).Msg("dropping peer after oversized message")
			if dErr := p.transport.Disconnect(ctx, req.ID); dErr != nil {
				return errors.Join(err, fmt.Errorf("disconnect %s: %w", req.ID, dErr))
			}
		}
		return err
	}

	var ackErr error
	if req.ResponseRequired {
		// A dropped fragment still gets a response so the peer's write does
		// not time out, but it does not claim the data was received.
		var ack []byte
		if !res.Dropped {
			ack = []byte(fmt.Sprintf(p.cfg.AckTemplate, string(req.Value)))
		}
		if err := p.transport.SendAck(ctx, req.ID, req.RequestID, ack); err != nil {
			ackErr = fmt.Errorf("ack write %d from %s: %w", req.RequestID, req.ID, err)
			p.logger.Warn().Err(ackErr).Str("conn", string(req.ID)).Msg("write ack failed")
		}
	}

	if !res.Complete {
		return ackErr
	}

	return errors.Join(ackErr, p.Respond(ctx, res.Record))
}

// DescriptorWritten handles CCCD writes. The write is acknowledged whatever
// the value.
func (p *Peripheral) DescriptorWritten(ctx context.Context, req DescriptorWrite) error {
	if req.Descriptor != p.cfg.CCCD {
		return nil
	}
	if err := req.ID.Validate(); err != nil {
		p.logger.Warn().Err(err).Msg("descriptor write dropped")
		return err
	}

	enabled := bytes.Equal(req.Value, enableNotificationValue) || bytes.Equal(req.Value, enableIndicationValue)
	if err := p.registry.SetNotifications(req.ID, enabled); err != nil {
		p.logger.Warn().Err(err).Str("conn", string(req.ID)).Msg("notification change rejected")
	} else {
		p.logger.Info().Str("conn", string(req.ID)).Bool("enabled", enabled).Msg("notifications updated")
	}

	if err := p.transport.SendAck(ctx, req.ID, req.RequestID, nil); err != nil {
		return fmt.Errorf("ack descriptor write %d from %s: %w", req.RequestID, req.ID, err)
	}
	return nil
}

// Respond emits the completion response for record back to its peer.
func (p *Peripheral) Respond(ctx context.Context, record domain.Record) error {
	if !p.registry.NotificationsEnabled(record.ConnectionID) {
		p.logger.Warn().Str("conn", string(record.ConnectionID)).Msg("responding without notifications enabled")
	}

	message := fmt.Sprintf(p.cfg.ResponseTemplate, record.Text())
	if err := p.chunker.Send(ctx, record.ConnectionID, []byte(message)); err != nil {
		return fmt.Errorf("respond to order %d: %w", record.Seq, err)
	}
	return nil
}
