package notification

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendRendersRegisteredTemplate(t *testing.T) {
	nm := NewNotificationManager()
	mock := &MockNotifier{}
	nm.RegisterNotifier(EmailSystem, mock)

	err := nm.RegisterNotification("mfa_code", EmailSystem, NoticeTemplate{
		Subject: "Your Login Code",
		Text:    "Your verification code is: {{.Code}}",
	})
	require.NoError(t, err)

	err = nm.Send("mfa_code", NotificationData{
		To:   "a@b.com",
		Data: map[string]string{"Code": "482913"},
	})
	require.NoError(t, err)

	require.Len(t, mock.Sent, 1)
	assert.Equal(t, NoticeType("mfa_code"), mock.Sent[0].NoticeType)
	assert.Equal(t, "a@b.com", mock.Sent[0].Data.To)
	assert.Equal(t, "Your Login Code", mock.Sent[0].Template.Subject)
}

func TestSendUnregisteredNoticeFails(t *testing.T) {
	nm := NewNotificationManager()
	err := nm.Send("unknown", NotificationData{To: "a@b.com"})
	assert.Error(t, err)
}

func TestSendMissingNotifierFails(t *testing.T) {
	nm := NewNotificationManager()
	err := nm.RegisterNotification("mfa_code", EmailSystem, NoticeTemplate{Subject: "s"})
	require.NoError(t, err)

	err = nm.Send("mfa_code", NotificationData{To: "a@b.com"})
	assert.Error(t, err)
}

func TestSendPropagatesNotifierError(t *testing.T) {
	nm := NewNotificationManager()
	mock := &MockNotifier{Fail: errors.New("smtp down")}
	nm.RegisterNotifier(EmailSystem, mock)
	require.NoError(t, nm.RegisterNotification("mfa_code", EmailSystem, NoticeTemplate{Subject: "s"}))

	err := nm.Send("mfa_code", NotificationData{To: "a@b.com"})
	assert.ErrorContains(t, err, "smtp down")
}

func TestRegisterNotificationValidatesInput(t *testing.T) {
	nm := NewNotificationManager()
	assert.Error(t, nm.RegisterNotification("", EmailSystem, NoticeTemplate{}))
	assert.Error(t, nm.RegisterNotification("mfa_code", "", NoticeTemplate{}))
}
