package notice

import (
	"embed"
	"log/slog"

	"github.com/capsulehq/portal-auth/pkg/notification"
)

// Notice types delivered by portal-auth.
const (
	MFACodeNotice     notification.NoticeType = "mfa_code"
	TOTPEnabledNotice notification.NoticeType = "totp_enabled"
)

//go:embed templates/*
var templateFiles embed.FS

func loadTemplate(filename string) string {
	content, err := templateFiles.ReadFile(filename)
	if err != nil {
		slog.Error("Error reading template file!", "err", err, "filename", filename)
		return ""
	}
	return string(content)
}

// NewNotificationManager creates a notification manager with the portal-auth
// notices registered for email delivery.
func NewNotificationManager(smtpConfig notification.SMTPConfig) (*notification.NotificationManager, error) {
	notificationManager := notification.NewNotificationManager()

	emailNotifier, err := notification.NewEmailNotifier(smtpConfig)
	if err != nil {
		return nil, err
	}

	notificationManager.RegisterNotifier(notification.EmailSystem, emailNotifier)

	err = notificationManager.RegisterNotification(MFACodeNotice, notification.EmailSystem, notification.NoticeTemplate{
		Subject: "Your CAPSULE Portal Login Code",
		Text:    loadTemplate("templates/email/mfa_code.tmpl"),
	})
	if err != nil {
		return nil, err
	}

	err = notificationManager.RegisterNotification(TOTPEnabledNotice, notification.EmailSystem, notification.NoticeTemplate{
		Subject: "Authenticator App Enabled",
		Text:    loadTemplate("templates/email/totp_enabled.tmpl"),
	})
	if err != nil {
		return nil, err
	}

	return notificationManager, nil
}
