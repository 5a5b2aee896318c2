// Package api declares HTTP contracts and route registration helpers.
package api

import "errors"

// ErrBadRequest marks a malformed or unroutable request path or payload.
var ErrBadRequest = errors.New("bad request")
