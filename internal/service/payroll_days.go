package service

import (
	"attendance/console/internal/calendar"
	"attendance/console/internal/entity"
	"attendance/console/internal/ledger"
	"attendance/console/internal/payroll"
)

// PayrollDays turns stored ledger rows into payroll input. Company holidays
// override whatever a row says, and unknown statuses count as normal.
func PayrollDays(rows []entity.Attendance, holidays []entity.CompanyHoliday) []payroll.Day {
	closed := make(map[string]bool, len(holidays))
	for _, h := range holidays {
		closed[calendar.Truncate(h.HolidayDate).String()] = true
	}

	days := make([]payroll.Day, 0, len(rows)+len(holidays))
	seen := make(map[string]bool, len(rows))
	for _, r := range rows {
		d := calendar.Truncate(r.WorkDay)
		st, err := ledger.ParseStatus(r.Status)
		if err != nil {
			st = ledger.Normal
		}
		hours := r.TotalHours
		if closed[d.String()] {
			st = ledger.Holiday
		}
		if !st.Working() {
			hours = 0
		}
		seen[d.String()] = true
		days = append(days, payroll.Day{Date: d, Hours: hours, Status: st})
	}
	for _, h := range holidays {
		d := calendar.Truncate(h.HolidayDate)
		if !seen[d.String()] {
			days = append(days, payroll.Day{Date: d, Status: ledger.Holiday})
		}
	}
	return days
}
