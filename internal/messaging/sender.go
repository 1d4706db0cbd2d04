// Package messaging delivers outbound patient messages. Delivery is
// simulated: every message becomes a row in the communications log.
package messaging

import (
	"context"
	"fmt"
	"time"

	"github.com/jwalitptl/clinic-booking/internal/model"
	"github.com/jwalitptl/clinic-booking/internal/repository"
	"github.com/jwalitptl/clinic-booking/pkg/dateutil"
	"github.com/jwalitptl/clinic-booking/pkg/logger"
)

// DefaultBodyLimit caps the stored body, in characters.
const DefaultBodyLimit = 4000

// Message is one outbound message addressed to a patient's email and phone.
type Message struct {
	Email   string
	Phone   string
	Subject string
	Body    string
}

type Sender interface {
	Send(ctx context.Context, msg *Message) error
}

// LogSender records messages in the communications log instead of sending them.
type LogSender struct {
	log       repository.CommunicationRepository
	bodyLimit int
	now       func() time.Time
	logger    *logger.Logger
}

func NewLogSender(log repository.CommunicationRepository, bodyLimit int, l *logger.Logger) *LogSender {
	if bodyLimit <= 0 {
		bodyLimit = DefaultBodyLimit
	}
	if l == nil {
		l = logger.Nop()
	}
	return &LogSender{
		log:       log,
		bodyLimit: bodyLimit,
		now:       time.Now,
		logger:    l,
	}
}

// WithClock replaces the clock used to stamp entries.
func (s *LogSender) WithClock(now func() time.Time) *LogSender {
	s.now = now
	return s
}

// Send appends msg to the log, stamped with the current time. Bodies longer
// than the limit are cut.
func (s *LogSender) Send(ctx context.Context, msg *Message) error {
	entry := &model.CommunicationEntry{
		Timestamp: dateutil.FormatLogTimestamp(s.now()),
		Email:     msg.Email,
		Phone:     msg.Phone,
		Subject:   msg.Subject,
		Body:      truncate(msg.Body, s.bodyLimit),
	}
	if err := s.log.Append(ctx, entry); err != nil {
		return fmt.Errorf("failed to log message %q: %w", msg.Subject, err)
	}
	s.logger.WithContext(ctx).Debug("message logged", "subject", msg.Subject, "email", msg.Email)
	return nil
}

func truncate(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit])
}
