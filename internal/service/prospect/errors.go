package prospect

import "errors"

// Sentinel errors for the prospect service layer.
var (
	ErrListNotFound     = errors.New("prospect list not found")
	ErrContactNotFound  = errors.New("prospect contact not found")
	ErrDuplicateContact = errors.New("contact already exists in this list")
	ErrInvalidInput     = errors.New("invalid prospect input")
	ErrBadCSV           = errors.New("malformed CSV")
)
