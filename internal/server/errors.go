package server

import "errors"

// Feed errors
var (
	ErrFeedRunning    = errors.New("feed is already running")
	ErrFeedNotRunning = errors.New("feed is not running")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrInvalidSector  = errors.New("invalid sector id")
)
