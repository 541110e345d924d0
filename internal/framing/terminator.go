package framing

import "bytes"

type TerminatorCodec struct {
	terminator []byte
	limits     Limits
}

var _ Codec = (*TerminatorCodec)(nil)

func NewTerminatorCodec(terminator string, limits Limits) (*TerminatorCodec, error) {
	if terminator == "" {
		return nil, ErrEmptyTerminator
	}

	return &TerminatorCodec{terminator: []byte(terminator), limits: limits}, nil
}

func (c *TerminatorCodec) Terminator() string {
	return string(c.terminator)
}

// Encode returns message || terminator cut into fragments of at most
// maxFragment bytes. A message whose framed form would be cut before its
// end is rejected with ErrReservedTerminator.
func (c *TerminatorCodec) Encode(message []byte, maxFragment int) ([][]byte, error) {
	if maxFragment < 1 {
		return nil, ErrInvalidFragmentSize
	}

	framed := make([]byte, 0, len(message)+len(c.terminator))
	framed = append(framed, message...)
	framed = append(framed, c.terminator...)

	if bytes.Index(framed, c.terminator) != len(message) {
		return nil, ErrReservedTerminator
	}

	return Split(framed, maxFragment)
}

// Decode searches the accumulated buffer rather than the fragment alone, so a
// terminator split across fragments is still found. The search resumes just
// before the previous end of the buffer. Bytes after the terminator in the
// completing fragment are discarded together with the buffer.
func (c *TerminatorCodec) Decode(acc *Accumulator, fragment []byte) ([]byte, bool, error) {
	acc.append(fragment)

	from := max(acc.scanned-len(c.terminator)+1, 0)
	if idx := bytes.Index(acc.buf[from:], c.terminator); idx >= 0 {
		end := from + idx
		message := append([]byte(nil), acc.buf[:end]...)
		acc.Reset()
		return message, true, nil
	}
	acc.scanned = len(acc.buf)

	if c.limits.exceeded(acc.Len()) {
		acc.Reset()
		return nil, false, ErrMessageTooLarge
	}

	return nil, false, nil
}
