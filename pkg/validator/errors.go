package validator

import "errors"

var (
	ErrEmptyURL       = errors.New("URL cannot be empty")
	ErrNotAbsolute    = errors.New("URL must be absolute")
	ErrInvalidScheme  = errors.New("URL scheme is not allowed")
	ErrInvalidHost    = errors.New("URL must have a valid host")
	ErrResolveTimeout = errors.New("host lookup timed out")
	ErrNoAddresses    = errors.New("host has no addresses")
)
