package model

import "strings"

// Patient is one row of the patient directory. Rows are never updated or
// removed once written.
type Patient struct {
	PatientID         string `json:"patient_id"`
	Name              string `json:"name"`
	DOB               string `json:"dob"`
	Email             string `json:"email"`
	Phone             string `json:"phone"`
	InsuranceCarrier  string `json:"insurance_carrier"`
	InsuranceMemberID string `json:"insurance_member_id"`
	InsuranceGroup    string `json:"insurance_group"`
}

// PatientColumns is the header of the patient store.
var PatientColumns = []string{
	"patient_id", "name", "dob", "email", "phone",
	"insurance_carrier", "insurance_member_id", "insurance_group",
}

// Matches reports whether p is the same person: name compared without case,
// dob compared exactly in its normalized form.
func (p *Patient) Matches(name, dob string) bool {
	return strings.EqualFold(p.Name, name) && p.DOB == dob
}

// PatientDetails is the intake data needed to find or create a patient.
type PatientDetails struct {
	Name              string `json:"name" form:"name" binding:"required,max=200"`
	DOB               string `json:"dob" form:"dob" binding:"required"`
	Email             string `json:"email" form:"email" binding:"omitempty,email"`
	Phone             string `json:"phone" form:"phone" binding:"max=40"`
	InsuranceCarrier  string `json:"insurance_carrier" form:"insurance_carrier" binding:"max=200"`
	InsuranceMemberID string `json:"insurance_member_id" form:"insurance_member_id" binding:"max=200"`
	InsuranceGroup    string `json:"insurance_group" form:"insurance_group" binding:"max=200"`
}
