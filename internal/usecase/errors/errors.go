package errors

import "errors"

// Common errors
var (
	ErrInvalidInput = errors.New("invalid input")
)

// Transcript errors
var (
	ErrMalformedResponse = errors.New("malformed transcription response")
	ErrNoSegments        = errors.New("no speaker segments")
	ErrVendorFetch       = errors.New("vendor transcript fetch failed")
)

// Name pattern errors
var (
	ErrInvalidPattern      = errors.New("invalid name pattern")
	ErrInvalidCaptureGroup = errors.New("capture group out of range")
)

// Voice profile errors
var (
	ErrSameProfile          = errors.New("cannot merge a profile into itself")
	ErrOrganizationMismatch = errors.New("profiles belong to different organizations")
)
