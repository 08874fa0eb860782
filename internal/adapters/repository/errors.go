package repository

import "errors"

// Sentinel kinds for state store errors.
var (
	ErrEventNotFound      = errors.New("event not found")
	ErrSubmissionNotFound = errors.New("submission not found")
)
