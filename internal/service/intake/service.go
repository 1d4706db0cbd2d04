// Package intake runs a front-desk submission end to end: identify the
// patient, book the requested slot and log the confirmation and reminders.
package intake

import (
	"context"
	"time"

	"github.com/jwalitptl/clinic-booking/internal/model"
	"github.com/jwalitptl/clinic-booking/internal/service/appointment"
	"github.com/jwalitptl/clinic-booking/internal/service/patient"
	"github.com/jwalitptl/clinic-booking/pkg/dateutil"
	apperrors "github.com/jwalitptl/clinic-booking/pkg/errors"
	"github.com/jwalitptl/clinic-booking/pkg/logger"
	"github.com/jwalitptl/clinic-booking/pkg/metrics"
)

type Booker interface {
	Book(ctx context.Context, p *model.Patient, req *model.BookingRequest) (*model.BookingResult, error)
}

type Notifier interface {
	ScheduleReminders(ctx context.Context, p *model.Patient, start time.Time, doctor, location string) ([]model.PlannedMessage, error)
}

type Service struct {
	patients patient.Service
	booking  Booker
	notifier Notifier
	metrics  *metrics.Metrics
	log      *logger.Logger
}

func NewService(patients patient.Service, booking Booker, notifier Notifier, m *metrics.Metrics, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		patients: patients,
		booking:  booking,
		notifier: notifier,
		metrics:  m,
		log:      log,
	}
}

// Submit processes one intake form. Unparseable dates and times are rejected
// before anything is written. An unavailable slot is not an error: the
// outcome carries the patient, which stays recorded, and a nil Booking.
func (s *Service) Submit(ctx context.Context, form *model.IntakeForm) (*model.IntakeOutcome, error) {
	if err := validate(form); err != nil {
		s.count(metrics.OutcomeInvalid)
		return nil, err
	}

	p, isNew, err := s.patients.FindOrCreate(ctx, &form.PatientDetails)
	if err != nil {
		s.count(metrics.OutcomeError)
		return nil, err
	}
	outcome := &model.IntakeOutcome{Patient: p, IsNew: isNew}

	res, err := s.booking.Book(ctx, p, &form.BookingRequest)
	if apperrors.IsSlotUnavailable(err) {
		s.count(metrics.OutcomeUnavailable)
		return outcome, nil
	}
	if err != nil {
		s.count(metrics.OutcomeError)
		return nil, err
	}
	outcome.Booking = res

	planned, err := s.notifier.ScheduleReminders(ctx, p, res.Start, res.Doctor, res.Location)
	if err != nil {
		s.count(metrics.OutcomeError)
		return nil, err
	}
	outcome.Reminders = planned

	s.count(metrics.OutcomeBooked)
	s.log.WithContext(ctx).Info("intake completed",
		"patient_id", p.PatientID,
		"new_patient", isNew,
		"doctor", res.Doctor,
		"start", dateutil.FormatTimestamp(res.Start),
	)
	return outcome, nil
}

func validate(form *model.IntakeForm) error {
	if _, err := dateutil.ParseDate(form.DOB); err != nil {
		return apperrors.Parse("date of birth", form.DOB, err)
	}
	_, err := appointment.ParseStart(form.Date, form.Time)
	return err
}

func (s *Service) count(outcome string) {
	if s.metrics != nil {
		s.metrics.IntakeSubmission.WithLabelValues(outcome).Inc()
	}
}
