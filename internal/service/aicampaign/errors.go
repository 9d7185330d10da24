package aicampaign

import "errors"

// Sentinel errors for the AI campaign service layer.
var (
	ErrNotFound          = errors.New("campaign not found")
	ErrInvalidTransition = errors.New("invalid campaign status transition")
	ErrLaunchInProgress  = errors.New("campaign launch already in progress")
	ErrEmptyList         = errors.New("prospect list has no active contacts")
	ErrInvalidInput      = errors.New("invalid campaign")
)
