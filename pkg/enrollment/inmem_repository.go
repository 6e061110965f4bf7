package enrollment

import (
	"context"
	"sync"
	"time"
)

// InMemEnrollmentRepository implements EnrollmentRepository with a
// process-local map, for tests and single-instance development.
type InMemEnrollmentRepository struct {
	mutex       sync.RWMutex
	enrollments map[string]Enrollment
}

// NewInMemEnrollmentRepository creates a new in-memory repository.
func NewInMemEnrollmentRepository() *InMemEnrollmentRepository {
	return &InMemEnrollmentRepository{
		enrollments: make(map[string]Enrollment),
	}
}

func (r *InMemEnrollmentRepository) Upsert(ctx context.Context, enrollment Enrollment) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.enrollments[enrollment.Email] = enrollment
	return nil
}

func (r *InMemEnrollmentRepository) GetByEmail(ctx context.Context, email string) (Enrollment, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	enrollment, ok := r.enrollments[email]
	if !ok {
		return Enrollment{}, ErrEnrollmentNotFound
	}
	return enrollment, nil
}

func (r *InMemEnrollmentRepository) MarkVerified(ctx context.Context, email string, verifiedAt time.Time) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	enrollment, ok := r.enrollments[email]
	if !ok {
		return ErrEnrollmentNotFound
	}

	enrollment.Verified = true
	enrollment.VerifiedAt = &verifiedAt
	r.enrollments[email] = enrollment
	return nil
}

func (r *InMemEnrollmentRepository) Delete(ctx context.Context, email string) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	delete(r.enrollments, email)
	return nil
}
