package domain

import "errors"

var (
	ErrValidation    = errors.New("validation failed")
	ErrNotFound      = errors.New("record not found")
	ErrNotAuthorized = errors.New("not authorized")
	ErrUnavailable   = errors.New("store unavailable")
)
