package radius

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Packed layouts, all integers unsigned big-endian:
//
//	packet:    code(4) identifier(4) attributes_length(4) attributes
//	attribute: type(4) value_length(4) op(4) value
const (
	packetHeaderLen    = 12
	attributeHeaderLen = 12
)

// AppendPacket appends the packed form of p to dst. A nil packet is packed
// as code 0 with no attributes.
func AppendPacket(dst []byte, p *Packet) ([]byte, error) {
	if p == nil {
		p = &Packet{}
	}

	dst = binary.BigEndian.AppendUint32(dst, uint32(p.Code))
	dst = binary.BigEndian.AppendUint32(dst, uint32(p.Identifier))

	lengthPos := len(dst)
	dst = binary.BigEndian.AppendUint32(dst, 0)

	dst, err := AppendAttributes(dst, &p.Attributes)
	if err != nil {
		return dst, fmt.Errorf("pack %s: %w", p, err)
	}

	binary.BigEndian.PutUint32(dst[lengthPos:], uint32(len(dst)-lengthPos-4))
	return dst, nil
}

// AppendAttributes appends the packed form of every attribute in l, in order.
func AppendAttributes(dst []byte, l *AttributeList) ([]byte, error) {
	if l == nil {
		return dst, nil
	}
	for _, a := range l.attrs {
		if uint64(len(a.Value)) > math.MaxUint32-attributeHeaderLen {
			return dst, fmt.Errorf("%w: attribute %d is %d bytes", ErrValueTooLong, a.Type, len(a.Value))
		}
		dst = binary.BigEndian.AppendUint32(dst, a.Type)
		dst = binary.BigEndian.AppendUint32(dst, uint32(len(a.Value)))
		dst = binary.BigEndian.AppendUint32(dst, uint32(a.Op))
		dst = append(dst, a.Value...)
	}
	return dst, nil
}

// PackedPacketLen returns the number of bytes AppendPacket writes for p.
func PackedPacketLen(p *Packet) int {
	if p == nil {
		return packetHeaderLen
	}
	return packetHeaderLen + PackedAttributesLen(&p.Attributes)
}

// PackedAttributesLen returns the number of bytes AppendAttributes writes for l.
func PackedAttributesLen(l *AttributeList) int {
	if l == nil {
		return 0
	}
	n := 0
	for _, a := range l.attrs {
		n += attributeHeaderLen + len(a.Value)
	}
	return n
}

// ReadPacket decodes one packed packet from the front of b and returns it
// along with the number of bytes consumed.
func ReadPacket(b []byte) (*Packet, int, error) {
	if len(b) < packetHeaderLen {
		return nil, 0, fmt.Errorf("%w: packet header needs %d bytes, have %d", ErrShortBuffer, packetHeaderLen, len(b))
	}

	code := binary.BigEndian.Uint32(b[0:4])
	identifier := binary.BigEndian.Uint32(b[4:8])
	if code > math.MaxUint8 || identifier > math.MaxUint8 {
		return nil, 0, fmt.Errorf("%w: code %d identifier %d", ErrMalformed, code, identifier)
	}

	attrLen := binary.BigEndian.Uint32(b[8:12])
	if uint64(attrLen) > uint64(len(b)-packetHeaderLen) {
		return nil, 0, fmt.Errorf("%w: attributes need %d bytes, have %d", ErrShortBuffer, attrLen, len(b)-packetHeaderLen)
	}

	attrs, err := ReadAttributes(b[packetHeaderLen : packetHeaderLen+int(attrLen)])
	if err != nil {
		return nil, 0, err
	}

	p := &Packet{Code: uint8(code), Identifier: uint8(identifier)}
	p.Attributes.Add(attrs.attrs...)
	return p, packetHeaderLen + int(attrLen), nil
}

// ReadAttributes decodes a packed attribute list occupying all of b.
func ReadAttributes(b []byte) (*AttributeList, error) {
	l := &AttributeList{}
	for off := 0; off < len(b); {
		if len(b)-off < attributeHeaderLen {
			return nil, fmt.Errorf("%w: attribute header at offset %d", ErrShortBuffer, off)
		}
		typ := binary.BigEndian.Uint32(b[off:])
		n := binary.BigEndian.Uint32(b[off+4:])
		op := binary.BigEndian.Uint32(b[off+8:])
		off += attributeHeaderLen

		if uint64(n) > uint64(len(b)-off) {
			return nil, fmt.Errorf("%w: attribute %d value needs %d bytes, have %d", ErrShortBuffer, typ, n, len(b)-off)
		}

		value := make([]byte, n)
		copy(value, b[off:off+int(n)])
		off += int(n)

		l.Add(Attribute{Type: typ, Op: Op(op), Value: value})
	}
	return l, nil
}
