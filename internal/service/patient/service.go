package patient

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/jwalitptl/clinic-booking/internal/model"
	"github.com/jwalitptl/clinic-booking/internal/repository"
	"github.com/jwalitptl/clinic-booking/pkg/dateutil"
	apperrors "github.com/jwalitptl/clinic-booking/pkg/errors"
	"github.com/jwalitptl/clinic-booking/pkg/logger"
	"github.com/jwalitptl/clinic-booking/pkg/metrics"
)

type Service interface {
	FindOrCreate(ctx context.Context, details *model.PatientDetails) (*model.Patient, bool, error)
	List(ctx context.Context) ([]*model.Patient, error)
}

type service struct {
	repo    repository.PatientRepository
	metrics *metrics.Metrics
	log     *logger.Logger
}

func NewService(repo repository.PatientRepository, m *metrics.Metrics, log *logger.Logger) Service {
	if log == nil {
		log = logger.Nop()
	}
	return &service{repo: repo, metrics: m, log: log}
}

// FindOrCreate returns the patient whose name (ignoring case) and normalized
// date of birth match details, appending a new row when none does. The bool
// reports whether the patient was created.
func (s *service) FindOrCreate(ctx context.Context, details *model.PatientDetails) (*model.Patient, bool, error) {
	dob, err := dateutil.NormalizeDate(details.DOB)
	if err != nil {
		return nil, false, apperrors.Parse("date of birth", details.DOB, err)
	}

	patients, err := s.repo.List(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("failed to load patients: %w", err)
	}
	for _, p := range patients {
		if p.Matches(details.Name, dob) {
			if s.metrics != nil {
				s.metrics.PatientsMatched.Inc()
			}
			return p, false, nil
		}
	}

	p := &model.Patient{
		PatientID:         NextID(patients),
		Name:              details.Name,
		DOB:               dob,
		Email:             details.Email,
		Phone:             details.Phone,
		InsuranceCarrier:  details.InsuranceCarrier,
		InsuranceMemberID: details.InsuranceMemberID,
		InsuranceGroup:    details.InsuranceGroup,
	}
	if err := s.repo.ReplaceAll(ctx, append(patients, p)); err != nil {
		return nil, false, fmt.Errorf("failed to save patient: %w", err)
	}
	if s.metrics != nil {
		s.metrics.PatientsCreated.Inc()
	}
	s.log.WithContext(ctx).Info("patient created", "patient_id", p.PatientID)
	return p, true, nil
}

func (s *service) List(ctx context.Context) ([]*model.Patient, error) {
	patients, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list patients: %w", err)
	}
	return patients, nil
}

// NextID is one past the highest numeric Pnnn id in use, so ids stay unique
// even if rows were removed or reordered. With a gap-free roster this equals
// the row count plus one.
func NextID(patients []*model.Patient) string {
	highest := 0
	for _, p := range patients {
		n, err := strconv.Atoi(strings.TrimPrefix(p.PatientID, "P"))
		if err == nil && n > highest {
			highest = n
		}
	}
	if len(patients) > highest {
		highest = len(patients)
	}
	return fmt.Sprintf("P%03d", highest+1)
}
