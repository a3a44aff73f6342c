package httpparse

// growBuffer is the growable byte buffer that persists across requests on
// one connection (spec §9 "incremental parsing without allocation bursts").
// Bytes are consumed from the front; remaining bytes are moved down rather
// than the whole buffer being reallocated, so a pipelined client's second
// request — already sitting in the buffer when the first is served — never
// costs a fresh allocation.
type growBuffer struct {
	data []byte
}

// Bytes returns the currently unconsumed bytes.
func (b *growBuffer) Bytes() []byte {
	return b.data
}

// Len returns the number of unconsumed bytes.
func (b *growBuffer) Len() int {
	return len(b.data)
}

// Append adds freshly-read bytes to the tail.
func (b *growBuffer) Append(p []byte) {
	b.data = append(b.data, p...)
}

// Consume drops the first n bytes, shifting survivors to the front in
// place. It never reallocates smaller — the backing array is reused by the
// next Append.
func (b *growBuffer) Consume(n int) {
	if n <= 0 {
		return
	}
	if n >= len(b.data) {
		b.data = b.data[:0]
		return
	}
	copy(b.data, b.data[n:])
	b.data = b.data[:len(b.data)-n]
}
