package testutil

import (
	"errors"
	"sync"
)

// SentEmail is one email captured by RecordingMailer.
type SentEmail struct {
	To, Subject, Body string
}

// RecordingMailer captures emails instead of sending them. When Fail is set
// every send returns an error.
type RecordingMailer struct {
	mu   sync.Mutex
	Sent []SentEmail
	Fail bool
}

func (m *RecordingMailer) SendEmail(to, subject, htmlBody string) error {
	if m.Fail {
		return errors.New("smtp unavailable")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sent = append(m.Sent, SentEmail{To: to, Subject: subject, Body: htmlBody})
	return nil
}
