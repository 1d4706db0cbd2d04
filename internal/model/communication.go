package model

import "time"

// CommunicationEntry is one simulated outbound message. Entries are only
// ever appended.
type CommunicationEntry struct {
	Timestamp string `json:"ts"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Subject   string `json:"subject"`
	Body      string `json:"body"`
}

// CommunicationColumns is the header of the communications log.
var CommunicationColumns = []string{"ts", "email", "phone", "subject", "body"}

// PlannedMessage is one step of the reminder plan. SendAt is the intended
// delivery time; it is recorded, never scheduled.
type PlannedMessage struct {
	Subject string    `json:"subject"`
	SendAt  time.Time `json:"send_at"`
	Body    string    `json:"body"`
}
