// Package calendar holds the pay-month value type and the rule that assigns
// Monday–Sunday weeks to a pay month.
package calendar

import (
	"fmt"
	"time"

	"github.com/Azure/go-autorest/autorest/date"
	"github.com/pkg/errors"
)

const monthLayout = "2006-01"

// Month is a calendar month such as 2024-05.
type Month struct {
	Year  int
	Month time.Month
}

// NewMonth normalises year and month, so NewMonth(2024, 13) is 2025-01.
func NewMonth(year int, month time.Month) Month {
	t := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return Month{Year: t.Year(), Month: t.Month()}
}

// MonthOf returns the month d falls in.
func MonthOf(d date.Date) Month {
	return Month{Year: d.Year(), Month: d.Month()}
}

// ParseMonth parses YYYY-MM.
func ParseMonth(s string) (Month, error) {
	t, err := time.Parse(monthLayout, s)
	if err != nil {
		return Month{}, errors.Wrapf(err, "parsing month %q", s)
	}
	return Month{Year: t.Year(), Month: t.Month()}, nil
}

func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

// IsZero reports whether m is the zero Month.
func (m Month) IsZero() bool {
	return m.Year == 0 && m.Month == 0
}

// First is the 1st of the month.
func (m Month) First() date.Date {
	return Day(m.Year, m.Month, 1)
}

// Last is the last day of the month.
func (m Month) Last() date.Date {
	return Day(m.Year, m.Month, m.Days())
}

// Days is the number of days in the month.
func (m Month) Days() int {
	return time.Date(m.Year, m.Month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// Date returns the given day of the month. Out of range days roll over the
// same way time.Date does.
func (m Month) Date(day int) date.Date {
	return Day(m.Year, m.Month, day)
}

// Contains reports whether d falls in m.
func (m Month) Contains(d date.Date) bool {
	return d.Year() == m.Year && d.Month() == m.Month
}

func (m Month) Next() Month {
	return NewMonth(m.Year, m.Month+1)
}

func (m Month) Prev() Month {
	return NewMonth(m.Year, m.Month-1)
}

// Before reports whether m is earlier than o.
func (m Month) Before(o Month) bool {
	if m.Year != o.Year {
		return m.Year < o.Year
	}
	return m.Month < o.Month
}

func (m Month) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *Month) UnmarshalText(b []byte) error {
	parsed, err := ParseMonth(string(b))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Day builds a date at UTC midnight.
func Day(year int, month time.Month, day int) date.Date {
	return date.Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// Truncate drops the clock and location of t and keeps its calendar day.
func Truncate(t time.Time) date.Date {
	return Day(t.Year(), t.Month(), t.Day())
}

// AddDays returns d shifted by n days.
func AddDays(d date.Date, n int) date.Date {
	return Day(d.Year(), d.Month(), d.Day()+n)
}

// IsSunday reports whether d is a Sunday.
func IsSunday(d date.Date) bool {
	return d.Weekday() == time.Sunday
}
