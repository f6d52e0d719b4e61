package ledger

import (
	"math"
	"strconv"
	"strings"

	"github.com/Azure/go-autorest/autorest/date"
)

// MaxHours is the most hours a single day can carry.
const MaxHours = 13.0

// Entry is one day of the month grid.
type Entry struct {
	Day            int       `json:"day"`
	Date           date.Date `json:"date"`
	Hours          float64   `json:"hours"`
	Status         Status    `json:"status"`
	Sunday         bool      `json:"sunday"`
	CompanyHoliday bool      `json:"company_holiday"`
}

// ClampHours forces v into [0, MaxHours]. NaN becomes 0.
func ClampHours(v float64) float64 {
	switch {
	case math.IsNaN(v), v <= 0:
		return 0
	case v > MaxHours:
		return MaxHours
	}
	return v
}

// ParseHours reads an hour input. Empty or unparsable input is 0.
func ParseHours(input string) float64 {
	input = strings.TrimSpace(input)
	if input == "" {
		return 0
	}
	v, err := strconv.ParseFloat(input, 64)
	if err != nil {
		return 0
	}
	return ClampHours(v)
}

// normalise enforces the hour range and that only Normal days carry hours.
func (e Entry) normalise() Entry {
	if !e.Status.Valid() {
		e.Status = Normal
	}
	e.Hours = ClampHours(e.Hours)
	if !e.Status.Working() {
		e.Hours = 0
	}
	return e
}
