package client

import "errors"

var (
	ErrUnavailable    = errors.New("server unavailable")
	ErrUnknownService = errors.New("unknown health service")
)
