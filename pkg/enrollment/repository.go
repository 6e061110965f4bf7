package enrollment

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Enrollment is a TOTP secret registered for a portal user. An enrollment
// starts unverified and becomes usable for login only after the user proves
// possession of the authenticator by confirming a code.
type Enrollment struct {
	ID         uuid.UUID
	Email      string
	Secret     string
	Verified   bool
	CreatedAt  time.Time
	VerifiedAt *time.Time
}

// EnrollmentRepository defines storage for TOTP enrollments, keyed by email.
type EnrollmentRepository interface {
	// Upsert replaces any existing enrollment for the email. Re-running
	// setup supersedes the previous secret.
	Upsert(ctx context.Context, enrollment Enrollment) error
	GetByEmail(ctx context.Context, email string) (Enrollment, error)
	MarkVerified(ctx context.Context, email string, verifiedAt time.Time) error
	Delete(ctx context.Context, email string) error
}
