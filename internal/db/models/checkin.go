package models

import (
	"time"

	"github.com/google/uuid"
)

// CheckInState is the per-row state driving which action an attendee row offers.
type CheckInState int

const (
	StateNotCheckedIn CheckInState = iota
	StateCheckedIn
)

func (s CheckInState) String() string {
	if s == StateCheckedIn {
		return "checked in"
	}
	return "not checked in"
}

// CheckInRecord is one attendee's check-in status for one event.
// A nil CheckedInAt means the attendee has not checked in yet.
type CheckInRecord struct {
	UserID      string     `db:"user_id"`
	EventID     uuid.UUID  `db:"event_id"`
	Name        string     `db:"name"`
	CheckedInAt *time.Time `db:"checked_in_at"`
}

func (r *CheckInRecord) State() CheckInState {
	if r.CheckedInAt != nil {
		return StateCheckedIn
	}
	return StateNotCheckedIn
}
