package uart

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/bnema/orderlink/internal/application"
	"github.com/bnema/orderlink/internal/domain"
	"github.com/google/uuid"
)

const (
	verbConn   = "CONN"
	verbWrite  = "WRITE"
	verbDesc   = "DESC"
	verbMTU    = "MTU"
	verbNotify = "NOTIFY"
	verbAck    = "ACK"
	verbDrop   = "DROP"

	emptyPayload = "-"
)

var ErrMalformedLine = errors.New("malformed bridge line")

// Inbound is one decoded co-processor line. Exactly one of the pointer fields
// is set.
type Inbound struct {
	Conn  *application.ConnectionEvent
	Write *application.WriteRequest
	Desc  *application.DescriptorWrite
	MTU   *MTUUpdate
}

type MTUUpdate struct {
	ID  domain.ConnectionID
	MTU int
}

// ParseLine decodes one line of the bridge protocol:
//
//	CONN <addr> <state> [name...]
//	WRITE <addr> <request-id> <char-uuid> <0|1> <hex>
//	DESC <addr> <request-id> <descriptor-uuid> <hex>
//	MTU <addr> <mtu>
func ParseLine(line string) (Inbound, error) {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return Inbound{}, fmt.Errorf("%w: %q", ErrMalformedLine, line)
	}

	verb, id := strings.ToUpper(fields[0]), domain.ConnectionID(fields[1])
	args := fields[2:]

	switch verb {
	case verbConn:
		if len(args) < 1 {
			return Inbound{}, fmt.Errorf("%w: CONN needs a state", ErrMalformedLine)
		}
		state, err := strconv.Atoi(args[0])
		if err != nil {
			return Inbound{}, fmt.Errorf("%w: CONN state %q", ErrMalformedLine, args[0])
		}
		return Inbound{Conn: &application.ConnectionEvent{
			ID:    id,
			Name:  strings.Join(args[1:], " "),
			State: domain.LinkState(state),
		}}, nil

	case verbWrite:
		if len(args) != 4 {
			return Inbound{}, fmt.Errorf("%w: WRITE needs 4 arguments, got %d", ErrMalformedLine, len(args))
		}
		requestID, err := strconv.Atoi(args[0])
		if err != nil {
			return Inbound{}, fmt.Errorf("%w: request id %q", ErrMalformedLine, args[0])
		}
		characteristic, err := uuid.Parse(args[1])
		if err != nil {
			return Inbound{}, fmt.Errorf("%w: characteristic: %w", ErrMalformedLine, err)
		}
		var responseRequired bool
		switch args[2] {
		case "0":
		case "1":
			responseRequired = true
		default:
			return Inbound{}, fmt.Errorf("%w: response flag %q", ErrMalformedLine, args[2])
		}
		value, err := decodePayload(args[3])
		if err != nil {
			return Inbound{}, err
		}
		return Inbound{Write: &application.WriteRequest{
			ID:               id,
			RequestID:        requestID,
			Characteristic:   characteristic,
			Value:            value,
			ResponseRequired: responseRequired,
		}}, nil

	case verbDesc:
		if len(args) != 3 {
			return Inbound{}, fmt.Errorf("%w: DESC needs 3 arguments, got %d", ErrMalformedLine, len(args))
		}
		requestID, err := strconv.Atoi(args[0])
		if err != nil {
			return Inbound{}, fmt.Errorf("%w: request id %q", ErrMalformedLine, args[0])
		}
		descriptor, err := uuid.Parse(args[1])
		if err != nil {
			return Inbound{}, fmt.Errorf("%w: descriptor: %w", ErrMalformedLine, err)
		}
		value, err := decodePayload(args[2])
		if err != nil {
			return Inbound{}, err
		}
		return Inbound{Desc: &application.DescriptorWrite{
			ID:         id,
			RequestID:  requestID,
			Descriptor: descriptor,
			Value:      value,
		}}, nil

	case verbMTU:
		if len(args) != 1 {
			return Inbound{}, fmt.Errorf("%w: MTU needs 1 argument", ErrMalformedLine)
		}
		mtu, err := strconv.Atoi(args[0])
		if err != nil || mtu < 1 {
			return Inbound{}, fmt.Errorf("%w: mtu %q", ErrMalformedLine, args[0])
		}
		return Inbound{MTU: &MTUUpdate{ID: id, MTU: mtu}}, nil
	}

	return Inbound{}, fmt.Errorf("%w: unknown verb %q", ErrMalformedLine, fields[0])
}

func decodePayload(raw string) ([]byte, error) {
	if raw == emptyPayload {
		return nil, nil
	}
	value, err := hex.DecodeString(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: payload: %w", ErrMalformedLine, err)
	}
	return value, nil
}

func encodePayload(payload []byte) string {
	if len(payload) == 0 {
		return emptyPayload
	}
	return hex.EncodeToString(payload)
}

func notifyLine(id domain.ConnectionID, fragment []byte) string {
	return fmt.Sprintf("%s %s %s\n", verbNotify, id, encodePayload(fragment))
}

func ackLine(id domain.ConnectionID, requestID int, payload []byte) string {
	return fmt.Sprintf("%s %s %d %s\n", verbAck, id, requestID, encodePayload(payload))
}

func dropLine(id domain.ConnectionID) string {
	return fmt.Sprintf("%s %s\n", verbDrop, id)
}
