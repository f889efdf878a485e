package ledger

import "errors"

var (
	ErrInvalidAmount     = errors.New("amount must be a positive integer")
	ErrInsufficientFunds = errors.New("insufficient diamonds")
	ErrUnknownItem       = errors.New("unknown shop item")
	ErrInvalidMultiplier = errors.New("event multiplier must be positive")
	ErrAlreadyClaimed    = errors.New("daily bonus already claimed")
	ErrUserNotFound      = errors.New("user not found")
)
