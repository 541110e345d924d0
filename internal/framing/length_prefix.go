package framing

import (
	"encoding/binary"
	"math"
)

const lengthHeaderSize = 4

// LengthPrefixCodec frames a message as a 4-byte big-endian length followed by
// the payload. Any payload can be carried.
type LengthPrefixCodec struct {
	limits Limits
}

var _ Codec = (*LengthPrefixCodec)(nil)

func NewLengthPrefixCodec(limits Limits) *LengthPrefixCodec {
	return &LengthPrefixCodec{limits: limits}
}

func (c *LengthPrefixCodec) Encode(message []byte, maxFragment int) ([][]byte, error) {
	if maxFragment < 1 {
		return nil, ErrInvalidFragmentSize
	}
	if uint64(len(message)) > math.MaxUint32 || c.limits.exceeded(len(message)) {
		return nil, ErrMessageTooLarge
	}

	framed := make([]byte, lengthHeaderSize, lengthHeaderSize+len(message))
	binary.BigEndian.PutUint32(framed, uint32(len(message)))
	framed = append(framed, message...)

	return Split(framed, maxFragment)
}

func (c *LengthPrefixCodec) Decode(acc *Accumulator, fragment []byte) ([]byte, bool, error) {
	acc.append(fragment)
	if acc.Len() < lengthHeaderSize {
		return nil, false, nil
	}

	size := binary.BigEndian.Uint32(acc.buf[:lengthHeaderSize])
	if uint64(size) > math.MaxInt32 || c.limits.exceeded(int(size)) {
		acc.Reset()
		return nil, false, ErrMessageTooLarge
	}

	end := lengthHeaderSize + int(size)
	if acc.Len() < end {
		return nil, false, nil
	}

	message := append([]byte{}, acc.buf[lengthHeaderSize:end]...)
	acc.Reset()
	return message, true, nil
}
