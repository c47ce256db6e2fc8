package dummymail

import (
	"sync"

	"github.com/mathstutor/mathstutor-go/core"
)

// Service captures sent messages for assertion in tests; nothing leaves the
// process.
type Service struct {
	subjPrefix string

	mu   sync.Mutex
	sent []core.EmailMessage
}

var _ core.EmailService = (*Service)(nil)

func NewService(appName string) *Service {
	return &Service{subjPrefix: "[" + appName + "] "}
}

func (svc *Service) SendMessages(messages ...*core.EmailMessage) {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	for _, msg := range messages {
		if msg.HasRecipients() && msg.HasContent() {
			m := *msg
			m.Subject = svc.subjPrefix + m.Subject
			svc.sent = append(svc.sent, m)
		}
	}
}

// SentMessages returns a copy of everything captured so far.
func (svc *Service) SentMessages() []core.EmailMessage {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	return append([]core.EmailMessage(nil), svc.sent...)
}

// Reset clears captured messages between test cases.
func (svc *Service) Reset() {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	svc.sent = nil
}
