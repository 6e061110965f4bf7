package passcode

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/capsulehq/portal-auth/pkg/notice"
	"github.com/capsulehq/portal-auth/pkg/notification"
)

func newTestService(t *testing.T, store CodeStore, opts ...ServiceOption) (*Service, *notification.MockNotifier) {
	t.Helper()

	nm := notification.NewNotificationManager()
	mock := &notification.MockNotifier{}
	nm.RegisterNotifier(notification.EmailSystem, mock)
	err := nm.RegisterNotification(notice.MFACodeNotice, notification.EmailSystem, notification.NoticeTemplate{
		Subject: "Your CAPSULE Portal Login Code",
		Text:    "Your verification code is: {{.Code}}",
	})
	require.NoError(t, err)

	return NewService(store, nm, opts...), mock
}

func issuedCode(t *testing.T, mock *notification.MockNotifier) string {
	t.Helper()
	require.NotEmpty(t, mock.Sent)
	code := mock.Sent[len(mock.Sent)-1].Data.Data["Code"]
	require.Regexp(t, regexp.MustCompile(`^\d{6}$`), code)
	return code
}

func TestIssueAndVerifyRoundTrip(t *testing.T) {
	ctx := context.Background()
	svc, mock := newTestService(t, NewInMemCodeStore())

	require.NoError(t, svc.Issue(ctx, "a@b.com"))
	code := issuedCode(t, mock)

	assert.True(t, svc.Verify(ctx, "a@b.com", code))
}

func TestVerifyIsSingleUse(t *testing.T) {
	ctx := context.Background()
	svc, mock := newTestService(t, NewInMemCodeStore())

	require.NoError(t, svc.Issue(ctx, "a@b.com"))
	code := issuedCode(t, mock)

	require.True(t, svc.Verify(ctx, "a@b.com", code))
	assert.False(t, svc.Verify(ctx, "a@b.com", code), "consumed code must not verify again")
}

func TestIssueSupersedesPriorCode(t *testing.T) {
	ctx := context.Background()
	svc, mock := newTestService(t, NewInMemCodeStore())

	require.NoError(t, svc.Issue(ctx, "a@b.com"))
	first := issuedCode(t, mock)

	require.NoError(t, svc.Issue(ctx, "a@b.com"))
	second := issuedCode(t, mock)

	if first != second {
		assert.False(t, svc.Verify(ctx, "a@b.com", first), "superseded code must not verify")
	}
	assert.True(t, svc.Verify(ctx, "a@b.com", second))
}

func TestVerifyTrimsWhitespaceOnly(t *testing.T) {
	ctx := context.Background()
	store := NewInMemCodeStore()
	svc, _ := newTestService(t, store)

	now := time.Now().UTC()
	require.NoError(t, store.Put(ctx, "a@b.com", Record{
		Code:      "123456",
		IssuedAt:  now,
		ExpiresAt: now.Add(5 * time.Minute),
	}, 5*time.Minute))

	assert.True(t, svc.Verify(ctx, "a@b.com", " 123456 "))

	require.NoError(t, store.Put(ctx, "a@b.com", Record{
		Code:      "123456",
		IssuedAt:  now,
		ExpiresAt: now.Add(5 * time.Minute),
	}, 5*time.Minute))

	assert.False(t, svc.Verify(ctx, "a@b.com", "123456x"))
	assert.False(t, svc.Verify(ctx, "a@b.com", ""))
}

func TestVerifyExpiredRecordIsAbsent(t *testing.T) {
	ctx := context.Background()
	store := NewInMemCodeStore()
	svc, _ := newTestService(t, store)

	now := time.Now().UTC()
	require.NoError(t, store.Put(ctx, "a@b.com", Record{
		Code:      "123456",
		IssuedAt:  now.Add(-10 * time.Minute),
		ExpiresAt: now.Add(-5 * time.Minute),
	}, time.Minute))

	assert.False(t, svc.Verify(ctx, "a@b.com", "123456"))
}

func TestVerifyMismatchLeavesRecord(t *testing.T) {
	ctx := context.Background()
	svc, mock := newTestService(t, NewInMemCodeStore())

	require.NoError(t, svc.Issue(ctx, "a@b.com"))
	code := issuedCode(t, mock)

	assert.False(t, svc.Verify(ctx, "a@b.com", "000000x"))
	assert.True(t, svc.Verify(ctx, "a@b.com", code), "record must survive a mismatch")
}

func TestVerifyUnknownSubject(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, NewInMemCodeStore())

	assert.False(t, svc.Verify(ctx, "nobody@b.com", "123456"))
	assert.False(t, svc.Verify(ctx, "", "123456"))
}

type failingStore struct{}

func (failingStore) Put(ctx context.Context, subject string, record Record, ttl time.Duration) error {
	return errors.New("connection refused")
}

func (failingStore) Get(ctx context.Context, subject string) (Record, error) {
	return Record{}, errors.New("connection refused")
}

func (failingStore) Delete(ctx context.Context, subject string) error {
	return errors.New("connection refused")
}

func TestIssueStoreFailureIsFatal(t *testing.T) {
	ctx := context.Background()
	svc, mock := newTestService(t, failingStore{})

	err := svc.Issue(ctx, "a@b.com")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStorageFailure)
	assert.Empty(t, mock.Sent, "no email may go out when the code was not stored")
}

func TestIssueNotificationFailureIsNonFatal(t *testing.T) {
	ctx := context.Background()
	store := NewInMemCodeStore()
	svc, mock := newTestService(t, store)
	mock.Fail = errors.New("smtp down")

	require.NoError(t, svc.Issue(ctx, "a@b.com"))

	// The code is live even though delivery failed.
	record, err := store.Get(ctx, "a@b.com")
	require.NoError(t, err)
	assert.True(t, svc.Verify(ctx, "a@b.com", record.Code))
}

func TestIssueRequiresSubject(t *testing.T) {
	svc, _ := newTestService(t, NewInMemCodeStore())
	assert.ErrorIs(t, svc.Issue(context.Background(), ""), ErrInvalidSubject)
}

func TestGenerateCodeShape(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		code, err := generateCode()
		require.NoError(t, err)
		require.Regexp(t, regexp.MustCompile(`^\d{6}$`), code)
		seen[code] = true
	}
	assert.Greater(t, len(seen), 1, "codes must not be constant")
}
