package template

import "errors"

// Sentinel errors for the template service layer.
var (
	ErrNotFound        = errors.New("template not found")
	ErrCompile         = errors.New("mjml compilation failed")
	ErrNotCompiled     = errors.New("template has not been compiled")
	ErrInvalidInput    = errors.New("invalid template")
	ErrSendUnavailable = errors.New("test sending is not configured")
)
