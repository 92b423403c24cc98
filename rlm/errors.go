package rlm

import "errors"

// ErrUnknownCode is returned by ParseCode for names outside the enumeration.
var ErrUnknownCode = errors.New("unknown result code")
