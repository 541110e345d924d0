// Package framing splits logical messages into transport-sized fragments and
// reassembles them again.
//
// The default wire format appends a reserved terminator ("END") to every
// message. The terminator is matched as a plain byte sequence with no
// escaping, so a payload that contains it cannot be carried: Encode rejects
// such payloads and a peer sending one will see its message cut at the first
// occurrence. LengthPrefixCodec removes that limitation but is not wire
// compatible with terminator peers and must be selected explicitly.
package framing

import (
	"errors"
	"fmt"
	"strings"
)

const (
	DefaultTerminator      = "END"
	DefaultFragmentSize    = 20
	DefaultMaxMessageBytes = 64 * 1024
)

var (
	ErrInvalidFragmentSize = errors.New("framing: fragment size must be at least 1")
	ErrReservedTerminator  = errors.New("framing: payload contains the reserved terminator")
	ErrMessageTooLarge     = errors.New("framing: message exceeds buffer limit")
	ErrEmptyTerminator     = errors.New("framing: terminator must not be empty")
)

type Mode string

const (
	ModeTerminator   Mode = "terminator"
	ModeLengthPrefix Mode = "length-prefix"
)

func ParseMode(raw string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(raw))) {
	case "", ModeTerminator:
		return ModeTerminator, nil
	case ModeLengthPrefix, "length_prefix", "length":
		return ModeLengthPrefix, nil
	default:
		return "", fmt.Errorf("framing: unsupported mode %q", raw)
	}
}

// Limits bounds how much a single identity may buffer before its message is
// complete. Zero means unbounded.
type Limits struct {
	MaxMessageBytes int
}

func DefaultLimits() Limits {
	return Limits{MaxMessageBytes: DefaultMaxMessageBytes}
}

func (l Limits) exceeded(n int) bool {
	return l.MaxMessageBytes > 0 && n > l.MaxMessageBytes
}

// Codec encodes a message into bounded fragments and decodes fragments back
// into messages one step at a time.
type Codec interface {
	// Encode returns the fragments for message, each at most maxFragment bytes.
	Encode(message []byte, maxFragment int) ([][]byte, error)
	// Decode appends fragment to acc. When acc holds a complete message it is
	// returned with ok set and acc is reset.
	Decode(acc *Accumulator, fragment []byte) (message []byte, ok bool, err error)
}

// New builds the codec for mode. An empty terminator selects
// DefaultTerminator.
func New(mode Mode, terminator string, limits Limits) (Codec, error) {
	if terminator == "" {
		terminator = DefaultTerminator
	}

	switch mode {
	case "", ModeTerminator:
		return NewTerminatorCodec(terminator, limits)
	case ModeLengthPrefix:
		return NewLengthPrefixCodec(limits), nil
	default:
		return nil, fmt.Errorf("framing: unsupported mode %q", mode)
	}
}

// Split cuts data into consecutive chunks of at most size bytes. The chunks
// do not alias data.
func Split(data []byte, size int) ([][]byte, error) {
	if size < 1 {
		return nil, ErrInvalidFragmentSize
	}

	fragments := make([][]byte, 0, (len(data)+size-1)/size)
	for start := 0; start < len(data); start += size {
		end := min(start+size, len(data))
		fragments = append(fragments, append([]byte(nil), data[start:end]...))
	}

	return fragments, nil
}
