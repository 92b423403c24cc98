// Package radius models the RADIUS packets and attribute lists exchanged with
// the host module gateway, and packs them into the host's binary layout.
//
// Attribute semantics and the full dictionary live with the host; this
// package treats attribute values as opaque bytes keyed by numeric type.
package radius

import "fmt"

// Packet codes.
const (
	CodeAccessRequest      uint8 = 1
	CodeAccessAccept       uint8 = 2
	CodeAccessReject       uint8 = 3
	CodeAccountingRequest  uint8 = 4
	CodeAccountingResponse uint8 = 5
	CodeAccessChallenge    uint8 = 11
	CodeDisconnectRequest  uint8 = 40
	CodeCoARequest         uint8 = 43
)

// Packet is a single RADIUS packet as seen by the module pipeline.
type Packet struct {
	Code       uint8
	Identifier uint8
	Attributes AttributeList
}

// NewPacket creates a packet with the given code and identifier.
func NewPacket(code, identifier uint8, attrs ...Attribute) *Packet {
	p := &Packet{Code: code, Identifier: identifier}
	p.Attributes.Add(attrs...)
	return p
}

// Reset clears the packet so it can be reused.
func (p *Packet) Reset() {
	p.Code = 0
	p.Identifier = 0
	p.Attributes.Clear()
}

func (p *Packet) String() string {
	return fmt.Sprintf("%s(id=%d, attrs=%d)", CodeName(p.Code), p.Identifier, p.Attributes.Len())
}

// CodeName returns the conventional name of a packet code.
func CodeName(code uint8) string {
	switch code {
	case CodeAccessRequest:
		return "Access-Request"
	case CodeAccessAccept:
		return "Access-Accept"
	case CodeAccessReject:
		return "Access-Reject"
	case CodeAccountingRequest:
		return "Accounting-Request"
	case CodeAccountingResponse:
		return "Accounting-Response"
	case CodeAccessChallenge:
		return "Access-Challenge"
	case CodeDisconnectRequest:
		return "Disconnect-Request"
	case CodeCoARequest:
		return "CoA-Request"
	default:
		return fmt.Sprintf("Code-%d", code)
	}
}
