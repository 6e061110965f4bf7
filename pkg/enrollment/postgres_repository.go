package enrollment

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresEnrollmentRepository implements EnrollmentRepository on PostgreSQL.
type PostgresEnrollmentRepository struct {
	db *pgxpool.Pool
}

// NewPostgresEnrollmentRepository creates a new PostgreSQL-based repository.
func NewPostgresEnrollmentRepository(db *pgxpool.Pool) *PostgresEnrollmentRepository {
	return &PostgresEnrollmentRepository{db: db}
}

func (r *PostgresEnrollmentRepository) Upsert(ctx context.Context, enrollment Enrollment) error {
	query := `
		INSERT INTO totp_enrollments (id, email, secret, verified, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (email) DO UPDATE
		SET id = EXCLUDED.id,
		    secret = EXCLUDED.secret,
		    verified = EXCLUDED.verified,
		    created_at = EXCLUDED.created_at,
		    verified_at = NULL
	`

	_, err := r.db.Exec(ctx, query,
		enrollment.ID,
		enrollment.Email,
		enrollment.Secret,
		enrollment.Verified,
		enrollment.CreatedAt,
	)
	return err
}

func (r *PostgresEnrollmentRepository) GetByEmail(ctx context.Context, email string) (Enrollment, error) {
	query := `
		SELECT id, email, secret, verified, created_at, verified_at
		FROM totp_enrollments
		WHERE email = $1
	`

	var e Enrollment
	err := r.db.QueryRow(ctx, query, email).Scan(
		&e.ID,
		&e.Email,
		&e.Secret,
		&e.Verified,
		&e.CreatedAt,
		&e.VerifiedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Enrollment{}, ErrEnrollmentNotFound
		}
		return Enrollment{}, err
	}

	return e, nil
}

func (r *PostgresEnrollmentRepository) MarkVerified(ctx context.Context, email string, verifiedAt time.Time) error {
	query := `
		UPDATE totp_enrollments
		SET verified = TRUE,
		    verified_at = $2
		WHERE email = $1
	`

	tag, err := r.db.Exec(ctx, query, email, verifiedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrEnrollmentNotFound
	}
	return nil
}

func (r *PostgresEnrollmentRepository) Delete(ctx context.Context, email string) error {
	query := `
		DELETE FROM totp_enrollments
		WHERE email = $1
	`

	_, err := r.db.Exec(ctx, query, email)
	return err
}
