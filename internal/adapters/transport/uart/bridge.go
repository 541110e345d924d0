// Package uart bridges a BLE co-processor that speaks a line protocol over a
// serial port. The co-processor owns the radio and the GATT table; the host
// owns framing, reassembly and the order log.
package uart

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/bnema/orderlink/internal/application"
	"github.com/bnema/orderlink/internal/domain"
	"github.com/bnema/orderlink/internal/ports"
	"github.com/rs/zerolog"
)

// attHeaderSize is subtracted from the negotiated MTU to get the usable
// notification payload.
const attHeaderSize = 3

var (
	ErrWriteFailed  = errors.New("short write to serial port")
	ErrBridgeClosed = errors.New("bridge closed")
)

type Bridge struct {
	port   Port
	logger zerolog.Logger

	writeMu sync.Mutex

	mu      sync.RWMutex
	mtu     map[domain.ConnectionID]int
	closing bool
}

var _ ports.Transport = (*Bridge)(nil)

func NewBridge(port Port, logger zerolog.Logger) *Bridge {
	return &Bridge{
		port:   port,
		logger: logger,
		mtu:    make(map[domain.ConnectionID]int),
	}
}

func (b *Bridge) SendFragment(ctx context.Context, id domain.ConnectionID, fragment []byte) error {
	return b.writeLine(ctx, notifyLine(id, fragment))
}

func (b *Bridge) SendAck(ctx context.Context, id domain.ConnectionID, requestID int, payload []byte) error {
	return b.writeLine(ctx, ackLine(id, requestID, payload))
}

func (b *Bridge) Disconnect(ctx context.Context, id domain.ConnectionID) error {
	return b.writeLine(ctx, dropLine(id))
}

func (b *Bridge) MaxFragmentSize(id domain.ConnectionID) int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if mtu, ok := b.mtu[id]; ok && mtu > attHeaderSize {
		return mtu - attHeaderSize
	}
	return 0
}

func (b *Bridge) writeLine(ctx context.Context, line string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	b.mu.RLock()
	closing := b.closing
	b.mu.RUnlock()
	if closing {
		return ErrBridgeClosed
	}

	b.writeMu.Lock()
	defer b.writeMu.Unlock()

	n, err := io.WriteString(b.port, line)
	if err != nil {
		return fmt.Errorf("write bridge line: %w", err)
	}
	if n != len(line) {
		return ErrWriteFailed
	}
	return nil
}

// Run reads lines from the co-processor and dispatches them to handler until
// ctx is cancelled or the port reaches EOF. Malformed lines and handler errors
// are logged and do not stop the loop.
func (b *Bridge) Run(ctx context.Context, handler application.EventHandler) error {
	scan := bufio.NewScanner(b.port)

	lineChan := make(chan string)
	scanErrChan := make(chan error, 1)

	go func() {
		defer close(lineChan)
		for scan.Scan() {
			select {
			case lineChan <- scan.Text():
			case <-ctx.Done():
				return
			}
		}
		if err := scan.Err(); err != nil {
			select {
			case scanErrChan <- err:
			case <-ctx.Done():
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case err := <-scanErrChan:
			return fmt.Errorf("read bridge: %w", err)

		case line, ok := <-lineChan:
			if !ok {
				select {
				case err := <-scanErrChan:
					return fmt.Errorf("read bridge: %w", err)
				default:
				}
				return nil
			}

			b.mu.RLock()
			closing := b.closing
			b.mu.RUnlock()
			if closing {
				return nil
			}

			b.dispatch(ctx, handler, line)
		}
	}
}

func (b *Bridge) dispatch(ctx context.Context, handler application.EventHandler, line string) {
	if line == "" {
		return
	}

	inbound, err := ParseLine(line)
	if err != nil {
		b.logger.Warn().Err(err).Msg("skipping bridge line")
		return
	}

	switch {
	case inbound.Conn != nil:
		if inbound.Conn.State == domain.LinkDisconnected {
			b.forgetMTU(inbound.Conn.ID)
		}
		err = handler.ConnectionStateChanged(ctx, *inbound.Conn)
	case inbound.Write != nil:
		err = handler.FragmentWritten(ctx, *inbound.Write)
	case inbound.Desc != nil:
		err = handler.DescriptorWritten(ctx, *inbound.Desc)
	case inbound.MTU != nil:
		b.setMTU(inbound.MTU.ID, inbound.MTU.MTU)
	}

	if err != nil {
		b.logger.Error().Err(err).Str("line", line).Msg("bridge event failed")
	}
}

func (b *Bridge) setMTU(id domain.ConnectionID, mtu int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.mtu[id] = mtu
	b.logger.Debug().Str("conn", string(id)).Int("mtu", mtu).Msg("mtu negotiated")
}

func (b *Bridge) forgetMTU(id domain.ConnectionID) {
	b.mu.Lock()
	defer b.mu.Unlock()

	delete(b.mtu, id)
}

func (b *Bridge) Close() error {
	b.mu.Lock()
	b.closing = true
	b.mu.Unlock()

	return b.port.Close()
}
