// Package passcode issues and verifies the short-lived one-time codes used
// as the email second factor.
//
// Codes are 6 ASCII digits drawn from a cryptographically strong source,
// stored in a shared CodeStore keyed by subject identity with a short
// absolute expiry, and delivered by email. Issuing a new code supersedes any
// prior unconsumed code for the same subject; a successful verification
// consumes the code.
//
// The service is stateless between invocations so that different process
// instances can serve consecutive steps of one authentication attempt.
package passcode
