package table

import (
	"errors"

	"chip-ledger/internal/auth"
	"chip-ledger/internal/ledger"
)

var (
	ErrInvalidRequest      = errors.New("invalid_request")
	ErrTableNotFound       = errors.New("table_not_found")
	ErrPlayerNotFound      = errors.New("player_not_found")
	ErrBuyInNotFound       = errors.New("buyin_not_found")
	ErrTableEnded          = errors.New("table_ended")
	ErrForbidden           = errors.New("forbidden")
	ErrUnauthorized        = auth.ErrUnauthorized
	ErrDenominationsNotSet = ledger.ErrDenominationsNotSet
)
