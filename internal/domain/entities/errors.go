package entities

import "errors"

// Domain errors
var (
	ErrProfileNotFound    = errors.New("voice profile not found")
	ErrTranscriptNotFound = errors.New("transcript not found")
)
