package domain

import "errors"

var (
	ErrNotFound       = errors.New("not found")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrMissingParent  = errors.New("referenced row does not exist")
	ErrInvalidRecord  = errors.New("record violates a constraint")
	ErrMalformedInput = errors.New("malformed input")
)
