package client

import "errors"

var (
	ErrUnavailable    = errors.New("server unavailable")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrNotLoggedIn    = errors.New("not logged in")
	ErrMalformedReply = errors.New("malformed server reply")
)
