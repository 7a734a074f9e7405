package services

import (
	"errors"

	"influencerdash/internal/session"
)

// Dashboard service errors
var (
	// Session errors
	ErrSessionNotFound = session.ErrNotFound

	// Table errors
	ErrUnknownEntity = errors.New("unknown entity")

	// General errors
	ErrInvalidInput       = errors.New("invalid input")
	ErrServiceUnavailable = errors.New("service temporarily unavailable")
)
