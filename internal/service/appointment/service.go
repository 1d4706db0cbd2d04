package appointment

import (
	"context"
	"fmt"
	"time"

	"github.com/jwalitptl/clinic-booking/internal/model"
	"github.com/jwalitptl/clinic-booking/internal/repository"
	"github.com/jwalitptl/clinic-booking/pkg/dateutil"
	apperrors "github.com/jwalitptl/clinic-booking/pkg/errors"
	"github.com/jwalitptl/clinic-booking/pkg/logger"
	"github.com/jwalitptl/clinic-booking/pkg/metrics"
)

// DefaultDuration is used when a request leaves the duration unset.
const DefaultDuration = 30

// Service books slots in the ledger. It holds no state between calls: every
// operation re-reads the ledger and rewrites it whole. There is no mutual
// exclusion, so two concurrent bookings of the same slot can both succeed;
// a guarded SlotRepository is the place to add that.
type Service struct {
	slots   repository.SlotRepository
	export  repository.ExportRepository
	metrics *metrics.Metrics
	log     *logger.Logger
}

func NewService(slots repository.SlotRepository, export repository.ExportRepository, m *metrics.Metrics, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		slots:   slots,
		export:  export,
		metrics: m,
		log:     log,
	}
}

// ParseStart combines the free-text date and time into the requested start.
func ParseStart(date, clock string) (time.Time, error) {
	d, err := dateutil.ParseDate(date)
	if err != nil {
		return time.Time{}, apperrors.Parse("date", date, err)
	}
	h, m, sec, err := dateutil.ParseClock(clock)
	if err != nil {
		return time.Time{}, apperrors.Parse("time", clock, err)
	}
	return time.Date(d.Year(), d.Month(), d.Day(), h, m, sec, 0, time.Local), nil
}

// Book marks the first free slot of req.Doctor starting exactly at the
// requested date and time as taken by patient. Slots are matched on their
// start only; the duration shapes the returned end and nothing else.
func (s *Service) Book(ctx context.Context, patient *model.Patient, req *model.BookingRequest) (*model.BookingResult, error) {
	began := time.Now()
	start, err := ParseStart(req.Date, req.Time)
	if err != nil {
		s.count(req.Doctor, metrics.OutcomeInvalid)
		return nil, err
	}
	duration := req.Duration
	if duration <= 0 {
		duration = DefaultDuration
	}
	startKey := dateutil.FormatTimestamp(start)

	ledger, err := s.slots.List(ctx)
	if err != nil {
		s.count(req.Doctor, metrics.OutcomeError)
		return nil, fmt.Errorf("failed to load slot ledger: %w", err)
	}

	slot := findFree(ledger, req.Doctor, startKey)
	if slot == nil {
		s.count(req.Doctor, metrics.OutcomeUnavailable)
		s.log.WithContext(ctx).Info("slot unavailable", "doctor", req.Doctor, "start", startKey)
		return nil, apperrors.SlotUnavailable(req.Doctor, startKey)
	}

	slot.Booked = true
	slot.PatientID = patient.PatientID
	if err := s.slots.ReplaceAll(ctx, ledger); err != nil {
		s.count(req.Doctor, metrics.OutcomeError)
		return nil, fmt.Errorf("failed to save slot ledger: %w", err)
	}
	// The ledger is already committed here. If the export fails it stays
	// stale until the next successful booking rewrites it.
	if err := s.exportBooked(ctx, ledger); err != nil {
		s.count(req.Doctor, metrics.OutcomeError)
		return nil, fmt.Errorf("failed to export booked appointments: %w", err)
	}

	s.count(req.Doctor, metrics.OutcomeBooked)
	if s.metrics != nil {
		s.metrics.BookingLatency.Observe(time.Since(began).Seconds())
	}
	s.log.WithContext(ctx).Info("slot booked",
		"doctor", slot.Doctor,
		"location", slot.Location,
		"start", slot.Start,
		"patient_id", patient.PatientID,
	)

	return &model.BookingResult{
		Doctor:   req.Doctor,
		Location: slot.Location,
		Start:    start,
		End:      start.Add(time.Duration(duration) * time.Minute),
		Duration: duration,
	}, nil
}

// findFree returns the first row in table order for doctor that is unbooked
// and starts at exactly start.
func findFree(ledger []*model.Slot, doctor, start string) *model.Slot {
	for _, slot := range ledger {
		if slot.Doctor == doctor && !slot.Booked && slot.Start == start {
			return slot
		}
	}
	return nil
}

// exportBooked rewrites the export from the booked rows of ledger. An empty
// subset leaves any existing export in place.
func (s *Service) exportBooked(ctx context.Context, ledger []*model.Slot) error {
	booked := filterSlots(ledger, model.SlotFilter{BookedOnly: true})
	if len(booked) == 0 {
		return nil
	}
	return s.export.ReplaceAll(ctx, booked)
}

// ListSlots returns ledger rows matching filter, in table order.
func (s *Service) ListSlots(ctx context.Context, filter model.SlotFilter) ([]*model.Slot, error) {
	ledger, err := s.slots.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list slots: %w", err)
	}
	return filterSlots(ledger, filter), nil
}

// ListBooked reads the booked export. found is false when nothing has been
// booked yet.
func (s *Service) ListBooked(ctx context.Context) ([]*model.Slot, bool, error) {
	slots, found, err := s.export.List(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("failed to list booked appointments: %w", err)
	}
	return slots, found, nil
}

func filterSlots(ledger []*model.Slot, f model.SlotFilter) []*model.Slot {
	out := make([]*model.Slot, 0, len(ledger))
	for _, slot := range ledger {
		if f.Doctor != "" && slot.Doctor != f.Doctor {
			continue
		}
		if f.BookedOnly && !slot.Booked {
			continue
		}
		if f.FreeOnly && slot.Booked {
			continue
		}
		out = append(out, slot)
	}
	return out
}

func (s *Service) count(doctor, outcome string) {
	if s.metrics != nil {
		s.metrics.BookingsTotal.WithLabelValues(doctor, outcome).Inc()
	}
}
