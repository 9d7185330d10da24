package emailsettings

import "errors"

// Sentinel errors for the email settings service layer.
var (
	ErrNotFound      = errors.New("email settings not found")
	ErrAlreadyExists = errors.New("email settings already configured for this user")
	ErrInvalidInput  = errors.New("invalid email settings")
	ErrVerifyFailed  = errors.New("smtp verification failed")
)
