package patient

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/clinic-booking/internal/model"
	"github.com/jwalitptl/clinic-booking/internal/repository"
	apperrors "github.com/jwalitptl/clinic-booking/pkg/errors"
	"github.com/jwalitptl/clinic-booking/pkg/metrics"
)

// Compile-time check to ensure mockPatientRepository implements PatientRepository
var _ repository.PatientRepository = (*mockPatientRepository)(nil)

type mockPatientRepository struct {
	rows         []*model.Patient
	listErr      error
	replaceErr   error
	replaceCalls int
}

func (m *mockPatientRepository) Exists(ctx context.Context) (bool, error) {
	return m.rows != nil, nil
}

func (m *mockPatientRepository) List(ctx context.Context) ([]*model.Patient, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := make([]*model.Patient, len(m.rows))
	copy(out, m.rows)
	return out, nil
}

func (m *mockPatientRepository) ReplaceAll(ctx context.Context, patients []*model.Patient) error {
	m.replaceCalls++
	if m.replaceErr != nil {
		return m.replaceErr
	}
	m.rows = patients
	return nil
}

func seeded() *mockPatientRepository {
	return &mockPatientRepository{rows: []*model.Patient{
		{PatientID: "P001", Name: "Test Patient 1", DOB: "1990-07-20"},
		{PatientID: "P002", Name: "Test Patient 2", DOB: "1991-02-05"},
	}}
}

func TestFindOrCreateNewPatient(t *testing.T) {
	repo := seeded()
	m := metrics.New("test")
	svc := NewService(repo, m, nil)

	p, isNew, err := svc.FindOrCreate(context.Background(), &model.PatientDetails{
		Name: "Jane Doe", DOB: "1995-03-02", Email: "jane@example.com", InsuranceCarrier: "Blue Shield",
	})
	require.NoError(t, err)
	assert.True(t, isNew)
	assert.Equal(t, "P003", p.PatientID)
	assert.Equal(t, "1995-03-02", p.DOB)
	assert.Equal(t, "Blue Shield", p.InsuranceCarrier)
	assert.Len(t, repo.rows, 3)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PatientsCreated))
}

func TestFindOrCreateIsIdempotent(t *testing.T) {
	repo := seeded()
	svc := NewService(repo, nil, nil)
	ctx := context.Background()
	details := &model.PatientDetails{Name: "Jane Doe", DOB: "1995-03-02"}

	first, isNew, err := svc.FindOrCreate(ctx, details)
	require.NoError(t, err)
	require.True(t, isNew)

	second, isNew, err := svc.FindOrCreate(ctx, &model.PatientDetails{Name: "JANE DOE", DOB: "March 2, 1995"})
	require.NoError(t, err)
	assert.False(t, isNew)
	assert.Equal(t, first.PatientID, second.PatientID)
	assert.Len(t, repo.rows, 3)
	assert.Equal(t, 1, repo.replaceCalls)
}

func TestFindOrCreateMatchReturnsRowUnchanged(t *testing.T) {
	repo := seeded()
	svc := NewService(repo, nil, nil)

	p, isNew, err := svc.FindOrCreate(context.Background(), &model.PatientDetails{
		Name: "test patient 1", DOB: "1990-07-20", Email: "different@example.com",
	})
	require.NoError(t, err)
	assert.False(t, isNew)
	assert.Equal(t, "P001", p.PatientID)
	assert.Equal(t, "Test Patient 1", p.Name)
	assert.Empty(t, p.Email)
	assert.Zero(t, repo.replaceCalls)
}

func TestFindOrCreateUnparseableDOB(t *testing.T) {
	repo := seeded()
	svc := NewService(repo, nil, nil)

	_, _, err := svc.FindOrCreate(context.Background(), &model.PatientDetails{Name: "Jane", DOB: "not a date"})
	assert.True(t, apperrors.IsParse(err))
	assert.Zero(t, repo.replaceCalls)
}

func TestFindOrCreateStorageFailure(t *testing.T) {
	repo := seeded()
	repo.replaceErr = apperrors.Storage("write", "patients.csv", errors.New("disk full"))
	svc := NewService(repo, nil, nil)

	_, _, err := svc.FindOrCreate(context.Background(), &model.PatientDetails{Name: "Jane", DOB: "1995-03-02"})
	assert.True(t, apperrors.IsStorage(err))
}

func TestNextID(t *testing.T) {
	assert.Equal(t, "P001", NextID(nil))
	assert.Equal(t, "P011", NextID(seedRoster(10)))

	gap := []*model.Patient{{PatientID: "P001"}, {PatientID: "P007"}}
	assert.Equal(t, "P008", NextID(gap))

	odd := []*model.Patient{{PatientID: "X"}, {PatientID: "Y"}}
	assert.Equal(t, "P003", NextID(odd))

	assert.Equal(t, "P1000", NextID([]*model.Patient{{PatientID: "P999"}}))
}

func seedRoster(n int) []*model.Patient {
	out := make([]*model.Patient, n)
	for i := range out {
		out[i] = &model.Patient{PatientID: fmt.Sprintf("P%03d", i+1)}
	}
	return out
}
