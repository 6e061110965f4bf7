package enrollment

import "errors"

var (
	// ErrEnrollmentNotFound is returned when no enrollment exists for the
	// email (setup never initialized or already removed).
	ErrEnrollmentNotFound = errors.New("totp enrollment not found")

	// ErrInvalidPasscode is returned when the submitted code does not match
	// the enrolled secret.
	ErrInvalidPasscode = errors.New("invalid passcode")

	// ErrAlreadyVerified is returned when confirming an enrollment that is
	// already verified.
	ErrAlreadyVerified = errors.New("totp enrollment already verified")
)
