package passcode

import "errors"

var (
	// ErrCodeNotFound is returned by a CodeStore when no live code exists
	// for the subject (never issued, already consumed, or expired).
	ErrCodeNotFound = errors.New("one-time code not found")

	// ErrStorageFailure is returned when the code store is unreachable or
	// errored. During issuance this is fatal to the step.
	ErrStorageFailure = errors.New("code store failure")

	// ErrInvalidSubject is returned when the subject identity is empty.
	ErrInvalidSubject = errors.New("subject identity is required")
)
