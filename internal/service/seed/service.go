package seed

import (
	"context"
	"fmt"
	"time"

	"github.com/jwalitptl/clinic-booking/internal/model"
	"github.com/jwalitptl/clinic-booking/internal/repository"
	"github.com/jwalitptl/clinic-booking/pkg/dateutil"
	"github.com/jwalitptl/clinic-booking/pkg/logger"
)

// Config shapes the generated roster and slot grid.
type Config struct {
	Doctors      []model.Doctor
	DaysAhead    int
	SlotsPerDay  int
	SlotMinutes  int
	DayStart     string // HH:MM
	SeedPatients int
}

// DefaultConfig is three doctors, a week of 16 half-hour slots from 09:00,
// and ten patients.
func DefaultConfig() Config {
	return Config{
		Doctors: []model.Doctor{
			{Name: "Dr. Rao", Location: "Main Clinic"},
			{Name: "Dr. Iyer", Location: "Downtown"},
			{Name: "Dr. Mehta", Location: "Uptown"},
		},
		DaysAhead:    7,
		SlotsPerDay:  16,
		SlotMinutes:  30,
		DayStart:     "09:00",
		SeedPatients: 10,
	}
}

// dobEpoch is the base date the synthetic birthdays are offset from.
var dobEpoch = time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC)

type Service struct {
	patients repository.PatientRepository
	slots    repository.SlotRepository
	cfg      Config
	now      func() time.Time
	log      *logger.Logger
}

func NewService(patients repository.PatientRepository, slots repository.SlotRepository, cfg Config, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		patients: patients,
		slots:    slots,
		cfg:      cfg,
		now:      time.Now,
		log:      log,
	}
}

// WithClock replaces the clock used to pick "today".
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Ensure writes the patient roster and the slot grid when their files are
// absent. Each store is checked on its own; existing files are left alone.
func (s *Service) Ensure(ctx context.Context) error {
	exists, err := s.patients.Exists(ctx)
	if err != nil {
		return fmt.Errorf("failed to check patient store: %w", err)
	}
	if !exists {
		roster := Patients(s.cfg.SeedPatients)
		if err := s.patients.ReplaceAll(ctx, roster); err != nil {
			return fmt.Errorf("failed to seed patients: %w", err)
		}
		s.log.Info("seeded patient store", "patients", len(roster))
	}

	exists, err = s.slots.Exists(ctx)
	if err != nil {
		return fmt.Errorf("failed to check slot ledger: %w", err)
	}
	if !exists {
		grid, err := Slots(s.cfg, s.now())
		if err != nil {
			return err
		}
		if err := s.slots.ReplaceAll(ctx, grid); err != nil {
			return fmt.Errorf("failed to seed slot ledger: %w", err)
		}
		s.log.Info("seeded slot ledger", "slots", len(grid), "doctors", len(s.cfg.Doctors))
	}
	return nil
}

// Patients generates the synthetic roster P001..Pnnn.
func Patients(n int) []*model.Patient {
	out := make([]*model.Patient, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, &model.Patient{
			PatientID:         fmt.Sprintf("P%03d", i),
			Name:              fmt.Sprintf("Test Patient %d", i),
			DOB:               dobEpoch.AddDate(0, 0, i*200).Format(dateutil.DateLayout),
			Email:             fmt.Sprintf("patient%d@example.com", i),
			Phone:             fmt.Sprintf("+91-90000000%02d", i),
			InsuranceCarrier:  "Acme Health",
			InsuranceMemberID: fmt.Sprintf("ACME-%d", 10000+i),
			InsuranceGroup:    "GRP-01",
		})
	}
	return out
}

// Slots generates the unbooked grid for every doctor, DaysAhead days starting
// with the calendar day of today. Rows are ordered doctor, day, time.
func Slots(cfg Config, today time.Time) ([]*model.Slot, error) {
	h, m, _, err := dateutil.ParseClock(cfg.DayStart)
	if err != nil {
		return nil, fmt.Errorf("invalid day start %q: %w", cfg.DayStart, err)
	}
	length := time.Duration(cfg.SlotMinutes) * time.Minute
	y, mo, d := today.Date()

	out := make([]*model.Slot, 0, len(cfg.Doctors)*cfg.DaysAhead*cfg.SlotsPerDay)
	for _, doc := range cfg.Doctors {
		for day := 0; day < cfg.DaysAhead; day++ {
			first := time.Date(y, mo, d+day, h, m, 0, 0, time.Local)
			for k := 0; k < cfg.SlotsPerDay; k++ {
				start := first.Add(time.Duration(k) * length)
				out = append(out, &model.Slot{
					Doctor:   doc.Name,
					Location: doc.Location,
					Start:    dateutil.FormatTimestamp(start),
					End:      dateutil.FormatTimestamp(start.Add(length)),
				})
			}
		}
	}
	return out, nil
}
