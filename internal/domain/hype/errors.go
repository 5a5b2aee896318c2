package hype

import "errors"

// Sentinel kinds for ledger errors.
var (
	ErrUnauthenticated = errors.New("toggle requires an authenticated user")
	ErrBackpressure    = errors.New("toggle queue full")
)
