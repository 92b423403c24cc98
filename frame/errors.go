package frame

import "errors"

// Sentinel errors for frame encoding and decoding.
var (
	ErrTooManyPackets = errors.New("too many packets for one frame")
	ErrFrameTooLarge  = errors.New("frame too large")
	ErrShortFrame     = errors.New("short frame")
	ErrLengthMismatch = errors.New("frame length mismatch")
)
