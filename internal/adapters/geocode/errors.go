package geocode

import "errors"

// Sentinel kinds for geocoding errors.
var (
	ErrUpstream   = errors.New("geocoder upstream error")
	ErrBadPayload = errors.New("geocoder payload unreadable")
	ErrNoResult   = errors.New("no geocoding result")
)
