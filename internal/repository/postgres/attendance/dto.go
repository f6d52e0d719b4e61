package attendance

import (
	"time"
)

// SaveDay is one ledger row of a batch save.
type SaveDay struct {
	WorkDay    time.Time
	TotalHours float64 `validate:"gte=0,lte=13"`
	Status     string  `validate:"oneof=normal absence holiday"`
}

type SaveMonthRequest struct {
	StaffID int       `json:"staff_id" validate:"gt=0"`
	Days    []SaveDay `validate:"dive"`
}

// ClockRecord is an accepted clock action.
type ClockRecord struct {
	StaffID  int
	WorkDay  time.Time
	At       time.Time
	Verified bool
	Distance float64
	// Status is the status a row created by this action starts with.
	Status string
}
