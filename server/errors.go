package server

import "errors"

var (
	ErrUnsupportedConfig = errors.New("unsupported config file format")
	ErrInvalidLogConfig  = errors.New("invalid log config")
)
