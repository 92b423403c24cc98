package request

import "errors"

// Sentinel errors for request construction and mutation.
var (
	ErrNoPrimary = errors.New("request has no primary packet")
	ErrNilPacket = errors.New("nil packet")
	ErrReleased  = errors.New("request already released")

	ErrDuplicatePacket = errors.New("packet already belongs to the request")
)
