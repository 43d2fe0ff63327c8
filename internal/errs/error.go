package errs

import (
	"errors"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidTransition  = errors.New("invalid status transition")
	ErrInvalidState       = errors.New("invalid state for this operation")
	ErrInsufficientStock  = errors.New("insufficient stock")
	ErrInvalidRange       = errors.New("invalid date range")
	ErrDuplicatePending   = errors.New("a pending extension already exists")
	ErrConflict           = errors.New("concurrent modification")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
)
