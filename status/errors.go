package status

import "errors"

var (
	ErrDuplicateSource = errors.New("status source already registered")
	ErrEmptyName       = errors.New("status source name is empty")
)
