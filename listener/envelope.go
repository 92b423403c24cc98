package listener

import (
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/tailored-agentic-units/radadapter/radius"
)

// Envelope is one request on the replay transport: a single JSON object per
// line carrying the packets the host received (primary first) and any config
// items already set for the request.
type Envelope struct {
	Packets     []PacketEnvelope    `json:"packets"`
	ConfigItems []AttributeEnvelope `json:"config_items,omitempty"`
}

// PacketEnvelope is one RADIUS packet; attributes keep their order.
type PacketEnvelope struct {
	Code       uint8               `json:"code"`
	Identifier uint8               `json:"identifier"`
	Attributes []AttributeEnvelope `json:"attributes,omitempty"`
}

// AttributeEnvelope carries a value as text, or as hex when Hex is set.
type AttributeEnvelope struct {
	Type  uint32 `json:"type"`
	Op    string `json:"op,omitempty"`
	Value string `json:"value,omitempty"`
	Hex   string `json:"hex,omitempty"`
}

// NewEnvelope builds an Envelope from packets and config items.
func NewEnvelope(packets []*radius.Packet, items *radius.AttributeList) Envelope {
	env := Envelope{Packets: make([]PacketEnvelope, 0, len(packets))}
	for _, p := range packets {
		env.Packets = append(env.Packets, PacketEnvelope{
			Code:       p.Code,
			Identifier: p.Identifier,
			Attributes: attributeEnvelopes(p.Attributes.All()),
		})
	}
	if items != nil {
		env.ConfigItems = attributeEnvelopes(items.All())
	}
	return env
}

// MarshalLine encodes the envelope as a single newline-terminated line.
func (e Envelope) MarshalLine() ([]byte, error) {
	b, err := json.Marshal(e)
	if err != nil {
		return nil, err
	}
	return append(b, '\n'), nil
}

func attributeEnvelopes(attrs []radius.Attribute) []AttributeEnvelope {
	if len(attrs) == 0 {
		return nil
	}
	out := make([]AttributeEnvelope, 0, len(attrs))
	for _, a := range attrs {
		out = append(out, AttributeEnvelope{
			Type: a.Type,
			Op:   a.Op.String(),
			Hex:  hex.EncodeToString(a.Value),
		})
	}
	return out
}

func (a AttributeEnvelope) attribute() (radius.Attribute, error) {
	op, err := radius.ParseOp(a.Op)
	if err != nil {
		return radius.Attribute{}, err
	}

	value := []byte(a.Value)
	if a.Hex != "" {
		if value, err = hex.DecodeString(a.Hex); err != nil {
			return radius.Attribute{}, fmt.Errorf("attribute %d: %w", a.Type, err)
		}
	}

	return radius.Attribute{Type: a.Type, Op: op, Value: value}, nil
}

func (p PacketEnvelope) fill(pkt *radius.Packet) error {
	pkt.Code = p.Code
	pkt.Identifier = p.Identifier
	for _, ae := range p.Attributes {
		attr, err := ae.attribute()
		if err != nil {
			return err
		}
		pkt.Attributes.Add(attr)
	}
	return nil
}
