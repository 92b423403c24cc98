package frame

import "encoding/binary"

// Buffer is a growable byte buffer whose already-written bytes can be
// patched in place. It lets a frame be written front to back in a single
// pass, with length fields reserved up front and filled in once the data
// they describe has been written.
type Buffer struct {
	b []byte
}

// NewBuffer creates a Buffer with the given initial capacity.
func NewBuffer(capacity int) *Buffer {
	return &Buffer{b: make([]byte, 0, capacity)}
}

// Len returns the number of bytes written.
func (b *Buffer) Len() int {
	return len(b.b)
}

// Bytes returns the written bytes. The slice aliases the buffer until the
// next write or Reset.
func (b *Buffer) Bytes() []byte {
	return b.b
}

// Reset empties the buffer, keeping its capacity.
func (b *Buffer) Reset() {
	b.b = b.b[:0]
}

// PutUint8 appends one byte.
func (b *Buffer) PutUint8(v uint8) {
	b.b = append(b.b, v)
}

// PutUint32 appends v big-endian.
func (b *Buffer) PutUint32(v uint32) {
	b.b = binary.BigEndian.AppendUint32(b.b, v)
}

// Reserve32 appends a zero uint32 placeholder and returns its offset for a
// later PatchUint32.
func (b *Buffer) Reserve32() int {
	off := len(b.b)
	b.PutUint32(0)
	return off
}

// PatchUint32 overwrites the four bytes at off with v big-endian. off must
// refer to bytes already written.
func (b *Buffer) PatchUint32(off int, v uint32) {
	binary.BigEndian.PutUint32(b.b[off:off+4], v)
}

// Append runs fn against the buffer's storage so codecs that append to a byte
// slice can write directly into it.
func (b *Buffer) Append(fn func(dst []byte) ([]byte, error)) error {
	out, err := fn(b.b)
	if out != nil {
		b.b = out
	}
	return err
}
