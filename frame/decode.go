package frame

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/tailored-agentic-units/radadapter/radius"
	"github.com/tailored-agentic-units/radadapter/rlm"
)

// Frame is a decoded response frame.
type Frame struct {
	// Length is the total_frame_length field: the frame size minus the
	// four-byte length prefix.
	Length uint32

	Code    rlm.Code
	Packets []*radius.Packet

	// ConfigItemsLength is the config_items_length field.
	ConfigItemsLength uint32
	ConfigItems       *radius.AttributeList
}

// Decode parses a complete frame. The buffer must hold exactly one frame.
func Decode(b []byte) (*Frame, error) {
	const header = 4 + 1 + 1
	if len(b) < header+4 {
		return nil, fmt.Errorf("%w: %d bytes", ErrShortFrame, len(b))
	}

	f := &Frame{
		Length: binary.BigEndian.Uint32(b[0:4]),
		Code:   rlm.Code(b[4]),
	}
	if uint64(f.Length) != uint64(len(b)-4) {
		return nil, fmt.Errorf("%w: header says %d, have %d", ErrLengthMismatch, f.Length, len(b)-4)
	}

	count := int(b[5])
	off := header
	f.Packets = make([]*radius.Packet, 0, count)
	for i := 0; i < count; i++ {
		p, n, err := radius.ReadPacket(b[off:])
		if err != nil {
			return nil, fmt.Errorf("packet %d: %w", i, err)
		}
		f.Packets = append(f.Packets, p)
		off += n
	}

	if len(b)-off < 4 {
		return nil, fmt.Errorf("%w: missing config items length", ErrShortFrame)
	}
	f.ConfigItemsLength = binary.BigEndian.Uint32(b[off:])
	off += 4

	if uint64(f.ConfigItemsLength) != uint64(len(b)-off) {
		return nil, fmt.Errorf("%w: config items length %d, have %d", ErrLengthMismatch, f.ConfigItemsLength, len(b)-off)
	}

	items, err := radius.ReadAttributes(b[off:])
	if err != nil {
		return nil, fmt.Errorf("config items: %w", err)
	}
	f.ConfigItems = items

	return f, nil
}

// ReadFrame reads one frame from r using the length prefix and decodes it.
// Frames longer than maxSize bytes are rejected before their body is read;
// maxSize <= 0 applies the default limit.
func ReadFrame(r io.Reader, maxSize int) (*Frame, error) {
	if maxSize <= 0 {
		maxSize = defaultMaxFrameSize
	}

	var prefix [4]byte
	if _, err := io.ReadFull(r, prefix[:]); err != nil {
		return nil, err
	}

	length := binary.BigEndian.Uint32(prefix[:])
	if uint64(length)+4 > uint64(maxSize) {
		return nil, fmt.Errorf("%w: %d bytes, limit %d", ErrFrameTooLarge, uint64(length)+4, maxSize)
	}

	b := make([]byte, 4+int(length))
	copy(b, prefix[:])
	if _, err := io.ReadFull(r, b[4:]); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrShortFrame, err)
	}

	return Decode(b)
}
