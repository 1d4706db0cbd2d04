package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPatientMatches(t *testing.T) {
	p := Patient{Name: "Jane Doe", DOB: "1995-03-02"}

	assert.True(t, p.Matches("jane doe", "1995-03-02"))
	assert.True(t, p.Matches("JANE DOE", "1995-03-02"))
	assert.False(t, p.Matches("Jane Doe", "1995-03-03"))
	assert.False(t, p.Matches("Jane  Doe", "1995-03-02"))
}

func TestFormValuesCoversEveryField(t *testing.T) {
	f := IntakeForm{
		PatientDetails: PatientDetails{Name: "Jane", DOB: "1995-03-02", Email: "j@example.com"},
		BookingRequest: BookingRequest{Doctor: "Dr. Rao", Date: "2025-01-01", Time: "09:00", Duration: 30},
	}
	v := f.FormValues()

	assert.Len(t, v, 11)
	assert.Equal(t, "30", v["duration"])
	assert.Equal(t, "Dr. Rao", v["doctor"])
	assert.Equal(t, "j@example.com", v["email"])
}
