package framing

// Accumulator holds the bytes received so far for one connection. The zero
// value is ready to use.
type Accumulator struct {
	buf []byte
	// scanned is how far the terminator search has already looked.
	scanned int
}

func (a *Accumulator) Len() int {
	return len(a.buf)
}

func (a *Accumulator) Bytes() []byte {
	return append([]byte(nil), a.buf...)
}

func (a *Accumulator) append(p []byte) {
	a.buf = append(a.buf, p...)
}

func (a *Accumulator) Reset() {
	a.buf = nil
	a.scanned = 0
}
