package domain

import "errors"

var (
	ErrNotFound       = errors.New("not found")
	ErrNetwork        = errors.New("remote directory unavailable")
	ErrMalformedCache = errors.New("malformed cache entry")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrInvalidInput   = errors.New("invalid input")
)
