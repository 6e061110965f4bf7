// Package enrollment provides the TOTP self-service setup flow: generating
// an authenticator secret with its provisioning QR code, confirming the
// user's first code, and reporting enrollment status. Enrollments are stored
// through EnrollmentRepository; PostgreSQL and in-memory implementations are
// provided.
package enrollment
