package enrollment

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image/png"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"

	"github.com/capsulehq/portal-auth/pkg/notice"
	"github.com/capsulehq/portal-auth/pkg/notification"
)

const (
	defaultIssuer = "CAPSULE Portal"

	totpPeriod = 30
	totpSkew   = 1

	qrImageSize = 200
)

// InitResult is handed to the user so they can register the secret in an
// authenticator app.
type InitResult struct {
	Secret          string
	ProvisioningURI string
	QRCodePNG       string // data URL with base64-encoded PNG
}

// Service manages TOTP enrollment: secret generation, authenticator
// confirmation, and status.
type Service struct {
	repo                EnrollmentRepository
	notificationManager *notification.NotificationManager
	issuer              string
}

// ServiceOption defines configuration options.
type ServiceOption func(*Service)

// WithIssuer sets the issuer name shown in authenticator apps.
func WithIssuer(issuer string) ServiceOption {
	return func(s *Service) {
		s.issuer = issuer
	}
}

// WithNotificationManager enables the best-effort confirmation notice when
// an enrollment is verified.
func WithNotificationManager(nm *notification.NotificationManager) ServiceOption {
	return func(s *Service) {
		s.notificationManager = nm
	}
}

// NewService creates an enrollment service.
func NewService(repo EnrollmentRepository, opts ...ServiceOption) *Service {
	service := &Service{
		repo:   repo,
		issuer: defaultIssuer,
	}

	for _, opt := range opts {
		opt(service)
	}

	return service
}

// Init generates a fresh TOTP secret for the email, stores it unverified
// (superseding any previous enrollment), and returns the provisioning data.
func (s *Service) Init(ctx context.Context, email string) (*InitResult, error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      s.issuer,
		AccountName: email,
	})
	if err != nil {
		slog.Error("Failed to generate totp secret", "email", email, "issuer", s.issuer, "error", err)
		return nil, fmt.Errorf("failed to generate totp secret: %w", err)
	}

	err = s.repo.Upsert(ctx, Enrollment{
		ID:        uuid.New(),
		Email:     email,
		Secret:    key.Secret(),
		Verified:  false,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		slog.Error("Failed to store totp enrollment", "email", email, "error", err)
		return nil, fmt.Errorf("failed to store totp enrollment: %w", err)
	}

	qr, err := encodeKeyImage(key)
	if err != nil {
		slog.Error("Failed to render QR code", "email", email, "error", err)
		return nil, err
	}

	slog.Info("TOTP enrollment initialized", "email", email)
	return &InitResult{
		Secret:          key.Secret(),
		ProvisioningURI: key.URL(),
		QRCodePNG:       qr,
	}, nil
}

// Confirm validates the code against the stored secret and marks the
// enrollment verified. A confirmation notice is sent best effort.
func (s *Service) Confirm(ctx context.Context, email, code string) error {
	enrollment, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return err
	}

	if enrollment.Verified {
		return ErrAlreadyVerified
	}

	valid, err := totp.ValidateCustom(code, enrollment.Secret, time.Now().UTC(), totp.ValidateOpts{
		Period:    totpPeriod,
		Skew:      totpSkew,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
	if err != nil {
		slog.Error("Failed to validate totp passcode", "email", email, "error", err)
		return fmt.Errorf("failed to validate passcode: %w", err)
	}
	if !valid {
		return ErrInvalidPasscode
	}

	if err := s.repo.MarkVerified(ctx, email, time.Now().UTC()); err != nil {
		slog.Error("Failed to mark enrollment verified", "email", email, "error", err)
		return fmt.Errorf("failed to mark enrollment verified: %w", err)
	}

	if s.notificationManager != nil {
		err := s.notificationManager.Send(notice.TOTPEnabledNotice, notification.NotificationData{To: email})
		if err != nil {
			// Enrollment is confirmed either way.
			slog.Error("Failed to send totp enabled notice", "email", email, "error", err)
		}
	}

	slog.Info("TOTP enrollment confirmed", "email", email)
	return nil
}

// Status reports whether the email has a verified enrollment.
func (s *Service) Status(ctx context.Context, email string) (bool, error) {
	enrollment, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrEnrollmentNotFound) {
			return false, nil
		}
		return false, err
	}
	return enrollment.Verified, nil
}

// Disable removes the enrollment for the email.
func (s *Service) Disable(ctx context.Context, email string) error {
	if err := s.repo.Delete(ctx, email); err != nil {
		slog.Error("Failed to delete enrollment", "email", email, "error", err)
		return fmt.Errorf("failed to delete enrollment: %w", err)
	}

	slog.Info("TOTP enrollment removed", "email", email)
	return nil
}

func encodeKeyImage(key *otp.Key) (string, error) {
	img, err := key.Image(qrImageSize, qrImageSize)
	if err != nil {
		return "", fmt.Errorf("failed to render provisioning QR: %w", err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("failed to encode provisioning QR: %w", err)
	}

	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
