package notification

import "sync"

// MockNotifier records every send for inspection in tests.
type MockNotifier struct {
	mu   sync.Mutex
	Sent []SentNotice
	Fail error // when set, Send returns this error
}

type SentNotice struct {
	NoticeType NoticeType
	Data       NotificationData
	Template   NoticeTemplate
}

func (m *MockNotifier) Send(noticeType NoticeType, notification NotificationData, noticeTemplate NoticeTemplate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail != nil {
		return m.Fail
	}
	m.Sent = append(m.Sent, SentNotice{NoticeType: noticeType, Data: notification, Template: noticeTemplate})
	return nil
}
