package radius

import "errors"

// Sentinel errors for packing and unpacking.
var (
	ErrShortBuffer  = errors.New("short buffer")
	ErrMalformed    = errors.New("malformed packet")
	ErrValueTooLong = errors.New("attribute value too long")
	ErrUnknownOp    = errors.New("unknown operator")
)
