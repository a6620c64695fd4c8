package client

import "errors"

// Client-specific errors
var (
	ErrClientClosed     = errors.New("client is closed")
	ErrNotConnected     = errors.New("client is not connected")
	ErrAlreadyConnected = errors.New("client is already connected")
	ErrUnauthorized     = errors.New("feed rejected the token")
	ErrInvalidConfig    = errors.New("invalid client configuration")
)
