package listener

import "errors"

var (
	ErrEmptyEnvelope   = errors.New("envelope carries no packets")
	ErrInvalidEnvelope = errors.New("invalid envelope")
	ErrInvalidConfig   = errors.New("invalid listener config")
	ErrTooManyPackets  = errors.New("envelope carries too many packets")
	ErrNoFrame         = errors.New("no response frame delivered")
)
