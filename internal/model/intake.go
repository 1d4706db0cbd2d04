package model

import "strconv"

// IntakeForm is the full form submitted from the front desk.
type IntakeForm struct {
	PatientDetails
	BookingRequest
}

// IntakeOutcome is what a submission produced. Booking is nil when the
// requested slot was not free.
type IntakeOutcome struct {
	Patient   *Patient         `json:"patient"`
	IsNew     bool             `json:"is_new"`
	Booking   *BookingResult   `json:"booking,omitempty"`
	Reminders []PlannedMessage `json:"reminders,omitempty"`
}

// FormValues flattens the form for re-rendering after a redirect.
func (f *IntakeForm) FormValues() map[string]string {
	return map[string]string{
		"name":                f.Name,
		"dob":                 f.DOB,
		"email":               f.Email,
		"phone":               f.Phone,
		"insurance_carrier":   f.InsuranceCarrier,
		"insurance_member_id": f.InsuranceMemberID,
		"insurance_group":     f.InsuranceGroup,
		"doctor":              f.Doctor,
		"date":                f.Date,
		"time":                f.Time,
		"duration":            strconv.Itoa(f.Duration),
	}
}
