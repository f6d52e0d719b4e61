// Package backend is the wire contract between the console core and the
// backend of record.
package backend

import (
	"attendance/console/internal/calendar"

	"github.com/Azure/go-autorest/autorest/date"
)

// Response statuses of the JSON envelope.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Action is a clock action.
type Action string

const (
	ActionCheckIn  Action = "checkin"
	ActionCheckOut Action = "checkout"
)

func (a Action) Valid() bool {
	return a == ActionCheckIn || a == ActionCheckOut
}

// GPS is the geofence verification result attached to a clock verdict.
type GPS struct {
	Verified     bool    `json:"verified"`
	Distance     float64 `json:"distance"`
	Radius       float64 `json:"radius"`
	LocationName string  `json:"location_name"`
}

// ClockRequest submits a check-in or check-out.
type ClockRequest struct {
	StaffID   int     `json:"staff_id" form:"staff_id"`
	Action    Action  `json:"action" form:"action"`
	Latitude  float64 `json:"latitude" form:"latitude"`
	Longitude float64 `json:"longitude" form:"longitude"`
}

// ClockVerdict is the backend's answer to a clock action.
type ClockVerdict struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	GPS     GPS    `json:"gps"`
}

// AttendanceStatus is the live clock state of one staff member for today.
type AttendanceStatus struct {
	CheckedIn        bool     `json:"checked_in"`
	CheckedOut       bool     `json:"checked_out"`
	CheckInTime      *string  `json:"check_in_time"`
	CheckOutTime     *string  `json:"check_out_time"`
	CheckInVerified  bool     `json:"check_in_verified"`
	CheckOutVerified bool     `json:"check_out_verified"`
	CheckInDistance  *float64 `json:"check_in_distance"`
	CheckOutDistance *float64 `json:"check_out_distance"`
}

// DayRow is one persisted ledger row.
type DayRow struct {
	Date       date.Date `json:"date"`
	TotalHours float64   `json:"total_hours"`
	Status     string    `json:"status"`
}

// Holiday is a shop wide company holiday.
type Holiday struct {
	Date        date.Date `json:"date"`
	Description string    `json:"description"`
}

// HolidayList is the company holiday collection of a month together with the
// collection version it was read at.
type HolidayList struct {
	Holidays []Holiday `json:"holidays"`
	Version  int64     `json:"version"`
}

// DailyHours is one day of a ledger save.
type DailyHours struct {
	Date   date.Date `json:"date"`
	Hours  float64   `json:"hours"`
	Status string    `json:"status"`
}

// SaveRequest persists a whole month ledger for one staff member.
type SaveRequest struct {
	StaffID    int            `json:"staff_id"`
	Month      calendar.Month `json:"month"`
	DailyHours []DailyHours   `json:"daily_hours"`
}

// CalculateRequest asks for the payroll breakdown of a month.
type CalculateRequest struct {
	StaffID int            `json:"staff_id"`
	Month   calendar.Month `json:"month"`
}

// MonthlySummary is the attendance overview of a month.
type MonthlySummary struct {
	TotalWorkDays    int     `json:"total_work_days"`
	TotalHours       float64 `json:"total_hours"`
	VerifiedRatio    float64 `json:"verified_ratio"`
	EstimatedBasePay int64   `json:"estimated_base_pay"`
}
