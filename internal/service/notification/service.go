package notification

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jwalitptl/clinic-booking/internal/messaging"
	"github.com/jwalitptl/clinic-booking/internal/messaging/templates"
	"github.com/jwalitptl/clinic-booking/internal/model"
	"github.com/jwalitptl/clinic-booking/internal/repository"
	"github.com/jwalitptl/clinic-booking/pkg/dateutil"
	"github.com/jwalitptl/clinic-booking/pkg/logger"
	"github.com/jwalitptl/clinic-booking/pkg/metrics"
)

// DefaultSubjectPrefix is prepended to every subject, separated by a space.
const DefaultSubjectPrefix = "[Clinic]"

// step is one message of the reminder plan, sent lead before the appointment.
// A zero lead means "now".
type step struct {
	subject string
	lead    time.Duration
	body    string
}

var plan = []step{
	{
		subject: "Appointment Confirmation",
		body:    "Your appointment with {{.Doctor}} at {{.Location}} is confirmed for {{.Time}}.",
	},
	{
		subject: "Reminder 72h",
		lead:    72 * time.Hour,
		body:    "Reminder: Appointment with {{.Doctor}} at {{.Location}} on {{.Time}}.",
	},
	{
		subject: "Reminder 24h",
		lead:    24 * time.Hour,
		body:    "Please confirm and complete forms. Appointment with {{.Doctor}} at {{.Location}} on {{.Time}}.",
	},
	{
		subject: "Reminder 2h",
		lead:    2 * time.Hour,
		body:    "Final reminder: Appointment with {{.Doctor}} at {{.Location}} at {{.Time}}. Reply YES to confirm.",
	},
}

type bodyData struct {
	Doctor   string
	Location string
	Time     string
}

type Service struct {
	sender   messaging.Sender
	log      repository.CommunicationRepository
	renderer templates.Renderer
	prefix   string
	now      func() time.Time
	metrics  *metrics.Metrics
	logger   *logger.Logger
}

func NewService(sender messaging.Sender, log repository.CommunicationRepository, prefix string, m *metrics.Metrics, l *logger.Logger) *Service {
	if l == nil {
		l = logger.Nop()
	}
	if prefix = strings.TrimSpace(prefix); prefix != "" {
		prefix += " "
	}
	return &Service{
		sender:  sender,
		log:     log,
		prefix:  prefix,
		now:     time.Now,
		metrics: m,
		logger:  l,
	}
}

// WithClock replaces the clock used for the confirmation's send time.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Plan renders the confirmation and the three reminders for an appointment
// starting at start. Send times are informational only.
func (s *Service) Plan(start time.Time, doctor, location string) ([]model.PlannedMessage, error) {
	data := bodyData{
		Doctor:   doctor,
		Location: location,
		Time:     start.Format(dateutil.DisplayLayout),
	}
	now := s.now()
	out := make([]model.PlannedMessage, 0, len(plan))
	for _, st := range plan {
		body, err := s.renderer.Render(st.subject, st.body, data)
		if err != nil {
			return nil, fmt.Errorf("failed to render %s: %w", st.subject, err)
		}
		sendAt := now
		if st.lead > 0 {
			sendAt = start.Add(-st.lead)
		}
		out = append(out, model.PlannedMessage{
			Subject: s.prefix + st.subject,
			SendAt:  sendAt,
			Body:    body,
		})
	}
	return out, nil
}

// ScheduleReminders logs the confirmation and reminders for patient. Messages
// are written in plan order; a failure stops the remaining ones.
func (s *Service) ScheduleReminders(ctx context.Context, patient *model.Patient, start time.Time, doctor, location string) ([]model.PlannedMessage, error) {
	planned, err := s.Plan(start, doctor, location)
	if err != nil {
		return nil, err
	}
	for _, pm := range planned {
		msg := &messaging.Message{
			Email:   patient.Email,
			Phone:   patient.Phone,
			Subject: pm.Subject,
			Body:    pm.Body,
		}
		if err := s.sender.Send(ctx, msg); err != nil {
			return nil, fmt.Errorf("failed to send %s: %w", pm.Subject, err)
		}
		if s.metrics != nil {
			s.metrics.RemindersLogged.WithLabelValues(pm.Subject).Inc()
		}
		s.logger.WithContext(ctx).Info("reminder logged",
			"patient_id", patient.PatientID,
			"subject", pm.Subject,
			"send_at", dateutil.FormatTimestamp(pm.SendAt),
		)
	}
	return planned, nil
}

// List returns the communications log. found is false before the first message.
func (s *Service) List(ctx context.Context) ([]*model.CommunicationEntry, bool, error) {
	entries, found, err := s.log.List(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("failed to list communications: %w", err)
	}
	return entries, found, nil
}
