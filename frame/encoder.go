// Package frame serializes the outcome of a request into the single binary
// response frame the host reads back, and parses such frames for host-side
// tooling and tests.
//
// Layout, all integers unsigned big-endian:
//
//	offset  size  field
//	0       4     total_frame_length   (frame length - 4)
//	4       1     module_return_code
//	5       1     packet_count N
//	6..     var   N packed packets, in request order
//	..      4     config_items_length  (bytes of the packed attribute list)
//	..      var   packed attribute list of the request's config items
//
// A reader can find the total length before parsing any packet, and the
// config items length directly after the packets, without decoding
// attribute contents.
package frame

import (
	"fmt"
	"io"
	"math"
	"sync"

	"github.com/tailored-agentic-units/radadapter/radius"
	"github.com/tailored-agentic-units/radadapter/rlm"
)

// Codec packs packets and attribute lists by appending their encoding to
// dst. Encodings must be deterministic; the encoder trusts the returned slice
// length as the number of bytes written.
type Codec interface {
	AppendPacket(dst []byte, p *radius.Packet) ([]byte, error)
	AppendAttributes(dst []byte, l *radius.AttributeList) ([]byte, error)
}

type radiusCodec struct{}

func (radiusCodec) AppendPacket(dst []byte, p *radius.Packet) ([]byte, error) {
	return radius.AppendPacket(dst, p)
}

func (radiusCodec) AppendAttributes(dst []byte, l *radius.AttributeList) ([]byte, error) {
	return radius.AppendAttributes(dst, l)
}

// Flusher is implemented by outputs that buffer writes, such as
// *bufio.Writer.
type Flusher interface {
	Flush() error
}

// EncoderOption configures an Encoder.
type EncoderOption func(*Encoder)

// WithCodec overrides the radius codec.
func WithCodec(c Codec) EncoderOption {
	return func(e *Encoder) { e.codec = c }
}

// Encoder builds response frames. It is safe for concurrent use; frame
// buffers are pooled between calls.
type Encoder struct {
	codec        Codec
	maxFrameSize int
	buffers      sync.Pool
}

// NewEncoder creates an Encoder from configuration.
func NewEncoder(cfg *Config, opts ...EncoderOption) *Encoder {
	c := DefaultConfig()
	if cfg != nil {
		c.Merge(cfg)
	}

	e := &Encoder{
		codec:        radiusCodec{},
		maxFrameSize: c.MaxFrameSize,
	}
	initial := c.InitialBuffer
	e.buffers.New = func() any { return NewBuffer(initial) }

	for _, opt := range opts {
		opt(e)
	}
	return e
}

// EncodeTo writes the frame for the given outcome into buf, replacing its
// contents. Length fields are reserved as zero and patched once the packets
// and config items have been written.
func (e *Encoder) EncodeTo(buf *Buffer, code rlm.Code, packets []*radius.Packet, items *radius.AttributeList) error {
	if len(packets) > math.MaxUint8 {
		return fmt.Errorf("%w: %d packets", ErrTooManyPackets, len(packets))
	}

	buf.Reset()

	totalOff := buf.Reserve32()
	buf.PutUint8(uint8(code))
	buf.PutUint8(uint8(len(packets)))

	for i, p := range packets {
		err := buf.Append(func(dst []byte) ([]byte, error) {
			return e.codec.AppendPacket(dst, p)
		})
		if err != nil {
			return fmt.Errorf("packet %d: %w", i, err)
		}
	}

	itemsOff := buf.Reserve32()

	err := buf.Append(func(dst []byte) ([]byte, error) {
		return e.codec.AppendAttributes(dst, items)
	})
	if err != nil {
		return fmt.Errorf("config items: %w", err)
	}

	end := buf.Len()
	if end > e.maxFrameSize || uint64(end-4) > math.MaxUint32 {
		return fmt.Errorf("%w: %d bytes, limit %d", ErrFrameTooLarge, end, e.maxFrameSize)
	}

	buf.PatchUint32(itemsOff, uint32(end-itemsOff-4))
	buf.PatchUint32(totalOff, uint32(end-4))
	return nil
}

// Encode returns the frame for the given outcome as a new slice.
func (e *Encoder) Encode(code rlm.Code, packets []*radius.Packet, items *radius.AttributeList) ([]byte, error) {
	buf := e.getBuffer()
	defer e.putBuffer(buf)

	if err := e.EncodeTo(buf, code, packets, items); err != nil {
		return nil, err
	}
	return append([]byte(nil), buf.Bytes()...), nil
}

// WriteResponse encodes the frame and hands it to w in a single Write,
// followed by Flush when w is a Flusher. Nothing is written if encoding
// fails. It returns the number of bytes written.
func (e *Encoder) WriteResponse(w io.Writer, code rlm.Code, packets []*radius.Packet, items *radius.AttributeList) (int, error) {
	buf := e.getBuffer()
	defer e.putBuffer(buf)

	if err := e.EncodeTo(buf, code, packets, items); err != nil {
		return 0, fmt.Errorf("encode frame: %w", err)
	}

	n, err := w.Write(buf.Bytes())
	if err != nil {
		return n, fmt.Errorf("write frame: %w", err)
	}
	if n < buf.Len() {
		return n, fmt.Errorf("write frame: %w", io.ErrShortWrite)
	}

	if f, ok := w.(Flusher); ok {
		if err := f.Flush(); err != nil {
			return n, fmt.Errorf("flush frame: %w", err)
		}
	}
	return n, nil
}

func (e *Encoder) getBuffer() *Buffer {
	return e.buffers.Get().(*Buffer)
}

func (e *Encoder) putBuffer(buf *Buffer) {
	// Oversized buffers from rare large frames are left to the GC.
	if cap(buf.b) > e.maxFrameSize {
		return
	}
	buf.Reset()
	e.buffers.Put(buf)
}
