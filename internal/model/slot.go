package model

import "time"

// Slot is one row of the doctor schedule ledger. PatientID is a lookup key
// into the patient directory; nothing enforces that it resolves.
type Slot struct {
	Doctor    string `json:"doctor"`
	Location  string `json:"location"`
	Start     string `json:"start"`
	End       string `json:"end"`
	Booked    bool   `json:"booked"`
	PatientID string `json:"patient_id"`
}

// SlotColumns is the header of the ledger and of the booked export.
var SlotColumns = []string{"doctor", "location", "start", "end", "booked", "patient_id"}

// Doctor is a bookable clinician and the location their slots belong to.
type Doctor struct {
	Name     string `mapstructure:"name" json:"name"`
	Location string `mapstructure:"location" json:"location"`
}

// BookingRequest names the slot a patient asks for. Date and Time are free
// text parsed at booking time.
type BookingRequest struct {
	Doctor   string `json:"doctor" form:"doctor" binding:"required,doctor"`
	Date     string `json:"date" form:"date" binding:"required"`
	Time     string `json:"time" form:"time" binding:"required"`
	Duration int    `json:"duration" form:"duration" binding:"omitempty,duration"`
}

// BookingResult describes a booked appointment. End is start plus the
// requested duration, which may differ from the slot's own end.
type BookingResult struct {
	Doctor   string    `json:"doctor"`
	Location string    `json:"location"`
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
	Duration int       `json:"duration"`
}

// SlotFilter narrows a ledger listing.
type SlotFilter struct {
	Doctor     string `form:"doctor"`
	BookedOnly bool   `form:"booked"`
	FreeOnly   bool   `form:"free"`
}
