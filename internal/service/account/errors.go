package account

import "errors"

// Sentinel errors for the account service layer.
var (
	ErrNotFound         = errors.New("email account not found")
	ErrDuplicateAddress = errors.New("an account with this address already exists")
	ErrInvalidAddress   = errors.New("invalid email address")
	ErrInvalidInput     = errors.New("invalid account input")
	ErrNotVerifiable    = errors.New("account cannot be verified in its current state")
)
