package entity

import (
	"time"

	"github.com/uptrace/bun"
)

// Attendance is the ledger row of one staff member and work day, together
// with the clock times recorded on it.
type Attendance struct {
	bun.BaseModel `bun:"table:attendance"`

	BasicEntity
	StaffID          int        `json:"staff_id" bun:"staff_id"`
	WorkDay          time.Time  `json:"work_day" bun:"work_day,type:date"`
	TotalHours       float64    `json:"total_hours" bun:"total_hours"`
	Status           string     `json:"status" bun:"status"`
	CheckInTime      *time.Time `json:"check_in_time" bun:"check_in_time"`
	CheckOutTime     *time.Time `json:"check_out_time" bun:"check_out_time"`
	CheckInVerified  bool       `json:"check_in_verified" bun:"check_in_verified"`
	CheckOutVerified bool       `json:"check_out_verified" bun:"check_out_verified"`
	CheckInDistance  *float64   `json:"check_in_distance" bun:"check_in_distance"`
	CheckOutDistance *float64   `json:"check_out_distance" bun:"check_out_distance"`
}

// AttendanceLog is one clock action as submitted.
type AttendanceLog struct {
	bun.BaseModel `bun:"table:attendance_log"`

	ID        int       `json:"id" bun:"id,pk,autoincrement"`
	StaffID   int       `json:"staff_id" bun:"staff_id"`
	Action    string    `json:"action" bun:"action"`
	Latitude  float64   `json:"latitude" bun:"latitude"`
	Longitude float64   `json:"longitude" bun:"longitude"`
	Distance  float64   `json:"distance" bun:"distance"`
	Verified  bool      `json:"verified" bun:"verified"`
	Accepted  bool      `json:"accepted" bun:"accepted"`
	LoggedAt  time.Time `json:"logged_at" bun:"logged_at"`
}
