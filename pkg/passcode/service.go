package passcode

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"time"

	"github.com/capsulehq/portal-auth/pkg/notice"
	"github.com/capsulehq/portal-auth/pkg/notification"
)

// Service issues and verifies one-time codes. It keeps no state between
// calls: every outstanding code lives in the shared CodeStore, so any
// instance can verify a code another instance issued.
type Service struct {
	store               CodeStore
	notificationManager *notification.NotificationManager
	codeTTL             time.Duration
	opTimeout           time.Duration
}

// ServiceOption defines configuration options.
type ServiceOption func(*Service)

// WithCodeTTL sets how long an issued code stays valid.
func WithCodeTTL(ttl time.Duration) ServiceOption {
	return func(s *Service) {
		s.codeTTL = ttl
	}
}

// WithOperationTimeout bounds each store and notification call so a slow
// backend fails the corresponding step instead of hanging it.
func WithOperationTimeout(timeout time.Duration) ServiceOption {
	return func(s *Service) {
		s.opTimeout = timeout
	}
}

// NewService creates a passcode service.
func NewService(store CodeStore, notificationManager *notification.NotificationManager, opts ...ServiceOption) *Service {
	service := &Service{
		store:               store,
		notificationManager: notificationManager,
		codeTTL:             5 * time.Minute,
		opTimeout:           10 * time.Second,
	}

	for _, opt := range opts {
		opt(service)
	}

	return service
}

// generateCode draws a 6-digit code uniformly from 000000..999999 using a
// cryptographically strong source. The code is a bearer credential, so
// math/rand is not acceptable here.
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", fmt.Errorf("failed to generate code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// Issue generates a fresh code for the subject, stores it with the
// configured TTL (unconditionally superseding any prior code for that
// subject), and emails it. A store failure aborts the issuance; a delivery
// failure does not, because the code is already live and failing the whole
// attempt over a transient send error is worse than a timed-out retry.
func (s *Service) Issue(ctx context.Context, subject string) error {
	if subject == "" {
		return ErrInvalidSubject
	}

	code, err := generateCode()
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	record := Record{
		Code:      code,
		IssuedAt:  now,
		ExpiresAt: now.Add(s.codeTTL),
	}

	storeCtx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	if err := s.store.Put(storeCtx, subject, record, s.codeTTL); err != nil {
		slog.Error("Failed to store one-time code", "subject", subject, "error", err)
		if errors.Is(err, ErrStorageFailure) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}

	err = s.notificationManager.Send(notice.MFACodeNotice, notification.NotificationData{
		To: subject,
		Data: map[string]string{
			"Code":          code,
			"ExpiryMinutes": fmt.Sprintf("%.0f", s.codeTTL.Minutes()),
		},
	})
	if err != nil {
		// The stored code is still valid; the user may retry delivery.
		slog.Error("Failed to send one-time code email", "subject", subject, "error", err)
	}

	slog.Info("One-time code issued", "subject", subject, "expires_at", record.ExpiresAt)
	return nil
}

// Verify compares the submitted code against the stored one for the subject.
// Absent, expired, or unreadable records all report false. On a match the
// record is deleted (best effort) so the code is single use; on a mismatch
// the record is left untouched so the legitimate user can retry within the
// window.
func (s *Service) Verify(ctx context.Context, subject, submitted string) bool {
	if subject == "" {
		return false
	}

	storeCtx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	record, err := s.store.Get(storeCtx, subject)
	if err != nil {
		if !errors.Is(err, ErrCodeNotFound) {
			slog.Error("Failed to read one-time code", "subject", subject, "error", err)
		}
		return false
	}

	// Tolerate the store lagging behind its own expiry mechanism.
	if time.Now().UTC().After(record.ExpiresAt) {
		slog.Warn("One-time code expired", "subject", subject, "expires_at", record.ExpiresAt)
		return false
	}

	expected := strings.TrimSpace(record.Code)
	answer := strings.TrimSpace(submitted)
	if subtle.ConstantTimeCompare([]byte(expected), []byte(answer)) != 1 {
		slog.Info("One-time code mismatch", "subject", subject)
		return false
	}

	if err := s.store.Delete(storeCtx, subject); err != nil {
		// Verification still succeeds, but the code stays live until the
		// TTL runs out, so this needs operator attention.
		slog.Error("Failed to delete consumed one-time code", "subject", subject, "error", err)
	}

	slog.Info("One-time code verified", "subject", subject)
	return true
}
