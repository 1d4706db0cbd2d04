package patient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/clinic-booking/internal/middleware"
	"github.com/jwalitptl/clinic-booking/internal/model"
	"github.com/jwalitptl/clinic-booking/internal/service/patient"
	apperrors "github.com/jwalitptl/clinic-booking/pkg/errors"
)

type fakeService struct {
	patients []*model.Patient
}

var _ patient.Service = (*fakeService)(nil)

func (f *fakeService) FindOrCreate(ctx context.Context, d *model.PatientDetails) (*model.Patient, bool, error) {
	if d.DOB == "bad" {
		return nil, false, apperrors.Parse("date of birth", d.DOB, nil)
	}
	for _, p := range f.patients {
		if p.Matches(d.Name, d.DOB) {
			return p, false, nil
		}
	}
	p := &model.Patient{PatientID: "P002", Name: d.Name, DOB: d.DOB}
	f.patients = append(f.patients, p)
	return p, true, nil
}

func (f *fakeService) List(ctx context.Context) ([]*model.Patient, error) {
	return f.patients, nil
}

func newRouter(t *testing.T, svc patient.Service) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	require.NoError(t, middleware.RegisterValidators(nil, nil))
	r := gin.New()
	r.Use(middleware.ErrorHandler(), middleware.Validation())
	NewHandler(svc).RegisterRoutes(r.Group("/api/v1"))
	return r
}

func lookup(r *gin.Engine, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/patients/lookup", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestLookupPatient(t *testing.T) {
	svc := &fakeService{patients: []*model.Patient{{PatientID: "P001", Name: "Jane Doe", DOB: "1985-04-12"}}}
	r := newRouter(t, svc)

	w := lookup(r, `{"name":"jane doe","dob":"1985-04-12"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"patient_id":"P001"`)

	w = lookup(r, `{"name":"John Roe","dob":"1990-01-01","email":"john@example.com"}`)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"patient_id":"P002"`)
}

func TestLookupPatientInvalid(t *testing.T) {
	r := newRouter(t, &fakeService{})

	w := lookup(r, `{"name":"Jane","dob":"bad"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = lookup(r, `{"name":"Jane","dob":"1985-04-12","email":"nope"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"field":"email"`)
}

func TestListPatients(t *testing.T) {
	r := newRouter(t, &fakeService{patients: []*model.Patient{{PatientID: "P001"}}})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/patients", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "P001")
}
