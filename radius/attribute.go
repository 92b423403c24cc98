package radius

import (
	"fmt"
	"slices"
)

// Well-known attribute types.
const (
	AttrUserName       uint32 = 1
	AttrUserPassword   uint32 = 2
	AttrNASIPAddress   uint32 = 4
	AttrNASPort        uint32 = 5
	AttrServiceType    uint32 = 6
	AttrReplyMessage   uint32 = 18
	AttrState          uint32 = 24
	AttrClass          uint32 = 25
	AttrSessionTimeout uint32 = 27
	AttrCalledStation  uint32 = 30
	AttrCallingStation uint32 = 31
	AttrNASIdentifier  uint32 = 32
	AttrAcctStatusType uint32 = 40
	AttrAcctSessionID  uint32 = 44
)

// Operators attached to attribute-value pairs.
type Op uint32

const (
	OpAdd Op = 9  // +=
	OpSub Op = 10 // -=
	OpSet Op = 11 // :=
	OpEq  Op = 12 // =
	OpNe  Op = 13 // !=
	OpGe  Op = 14 // >=
	OpGt  Op = 15 // >
	OpLe  Op = 16 // <=
	OpLt  Op = 17 // <
)

// Attribute is one attribute-value pair.
type Attribute struct {
	Type  uint32
	Op    Op
	Value []byte
}

// NewAttribute builds an attribute with the default "=" operator.
func NewAttribute(typ uint32, value []byte) Attribute {
	return Attribute{Type: typ, Op: OpEq, Value: value}
}

// StringAttribute builds an attribute from a string value.
func StringAttribute(typ uint32, value string) Attribute {
	return NewAttribute(typ, []byte(value))
}

func (a Attribute) String() string {
	return fmt.Sprintf("%d=%q", a.Type, a.Value)
}

// AttributeList is an ordered sequence of attribute-value pairs. The zero
// value is an empty list ready to use. It is not safe for concurrent use;
// a list belongs to exactly one request.
type AttributeList struct {
	attrs []Attribute
}

// Add appends attributes in order.
func (l *AttributeList) Add(attrs ...Attribute) {
	l.attrs = append(l.attrs, attrs...)
}

// Set replaces every attribute of the given type with a single value, keeping
// the position of the first occurrence.
func (l *AttributeList) Set(attr Attribute) {
	idx := slices.IndexFunc(l.attrs, func(a Attribute) bool { return a.Type == attr.Type })
	if idx < 0 {
		l.attrs = append(l.attrs, attr)
		return
	}

	kept := l.attrs[:idx]
	kept = append(kept, attr)
	for _, a := range l.attrs[idx+1:] {
		if a.Type != attr.Type {
			kept = append(kept, a)
		}
	}
	clear(l.attrs[len(kept):])
	l.attrs = kept
}

// Get returns the first attribute of the given type.
func (l *AttributeList) Get(typ uint32) (Attribute, bool) {
	for _, a := range l.attrs {
		if a.Type == typ {
			return a, true
		}
	}
	return Attribute{}, false
}

// Has reports whether an attribute of the given type is present.
func (l *AttributeList) Has(typ uint32) bool {
	_, ok := l.Get(typ)
	return ok
}

// Remove deletes every attribute of the given type.
func (l *AttributeList) Remove(typ uint32) {
	l.attrs = slices.DeleteFunc(l.attrs, func(a Attribute) bool { return a.Type == typ })
}

// Len returns the number of attributes.
func (l *AttributeList) Len() int {
	return len(l.attrs)
}

// All returns a copy of the attributes in order.
func (l *AttributeList) All() []Attribute {
	return slices.Clone(l.attrs)
}

// Clear discards every attribute while keeping the backing storage.
func (l *AttributeList) Clear() {
	clear(l.attrs)
	l.attrs = l.attrs[:0]
}

var opTokens = map[Op]string{
	OpAdd: "+=",
	OpSub: "-=",
	OpSet: ":=",
	OpEq:  "=",
	OpNe:  "!=",
	OpGe:  ">=",
	OpGt:  ">",
	OpLe:  "<=",
	OpLt:  "<",
}

func (o Op) String() string {
	if tok, ok := opTokens[o]; ok {
		return tok
	}
	return fmt.Sprintf("op%d", uint32(o))
}

// ParseOp resolves an operator token such as ":=". An empty token is "=".
func ParseOp(tok string) (Op, error) {
	if tok == "" {
		return OpEq, nil
	}
	for op, t := range opTokens {
		if t == tok {
			return op, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownOp, tok)
}
