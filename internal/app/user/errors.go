package user

import (
	"errors"

	"chip-ledger/internal/auth"
)

var (
	ErrInvalidRequest  = errors.New("invalid_request")
	ErrHistoryNotFound = errors.New("history_not_found")
	ErrForbidden       = errors.New("forbidden")
	ErrUnauthorized    = auth.ErrUnauthorized
)
