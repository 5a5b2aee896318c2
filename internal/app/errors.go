package app

import "errors"

// Sentinel kinds for service errors.
var (
	ErrNotOrganizer = errors.New("event creation requires the organizer role")
)
