package notification

type NotificationData struct {
	To      string            // Recipient identifier (e.g., email address)
	Subject string            // Optional: overrides the template subject
	Body    string            // Optional: literal body when no template is registered
	Data    map[string]string // Template data (e.g., the one-time code)
}

type Notifier interface {
	Send(noticeType NoticeType, notification NotificationData, noticeTemplate NoticeTemplate) error
}
