package app

import (
	"strings"
	"time"

	"livepoll-service/internal/domain"
)

// chatLog is the append-only session chat. Independent of poll state; it
// shares only the broadcast fan-out. Unbounded, full replay on request.
type chatLog struct {
	messages []domain.ChatMessage

	now   func() time.Time
	newID func() string
}

func newChatLog(now func() time.Time, newID func() string) *chatLog {
	return &chatLog{now: now, newID: newID}
}

func (c *chatLog) append(sender *domain.Participant, text string) domain.ChatMessage {
	msg := domain.ChatMessage{
		ID:         c.newID(),
		Text:       strings.TrimSpace(text),
		SenderName: sender.Name,
		SenderRole: sender.Role,
		SentAt:     c.now(),
	}
	c.messages = append(c.messages, msg)
	return msg
}

func (c *chatLog) history() []domain.ChatMessage {
	out := make([]domain.ChatMessage, len(c.messages))
	copy(out, c.messages)
	return out
}
