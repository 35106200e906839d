package domain

import "errors"

var (
	ErrValidation         = errors.New("validation failed")
	ErrItemNotFound       = errors.New("item not found")
	ErrInsufficientStock  = errors.New("insufficient stock")
	ErrStaleItem          = errors.New("item modified concurrently")
	ErrConflict           = errors.New("conflicting update")
	ErrDuplicateRequest   = errors.New("duplicate request")
	ErrAccountNotFound    = errors.New("account not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid login credentials")
	ErrUnauthorized       = errors.New("unauthorized")
)
