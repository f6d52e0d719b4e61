// Package payroll turns a month of attendance into a pay breakdown: base pay
// for the hours of the calendar month and weekly holiday pay for every week
// the week resolver assigns to that month.
package payroll

import (
	"attendance/console/internal/calendar"
	"attendance/console/internal/ledger"

	"github.com/Azure/go-autorest/autorest/date"
	"github.com/shopspring/decimal"
)

var (
	// MinWeeklyHours is the least a week needs for weekly holiday pay.
	MinWeeklyHours = decimal.NewFromInt(15)
	// FullWeekHours is the week that earns a full paid day.
	FullWeekHours = decimal.NewFromInt(40)
	// PaidDayHours is the length of the paid day.
	PaidDayHours = decimal.NewFromInt(8)
)

// Day is one day of attendance input.
type Day struct {
	Date   date.Date
	Hours  float64
	Status ledger.Status
}

// Input is everything a calculation needs. Days should cover calendar.Span
// of the month so weeks that straddle the month boundary are complete.
type Input struct {
	StaffID         int
	Month           calendar.Month
	HourlyWage      int64
	WithholdingRate decimal.Decimal
	Days            []Day
}

// WeekPay is the weekly holiday pay of one week.
type WeekPay struct {
	Start      date.Date `json:"start"`
	End        date.Date `json:"end"`
	Hours      float64   `json:"hours"`
	Absent     bool      `json:"absent"`
	Eligible   bool      `json:"eligible"`
	HolidayPay int64     `json:"holiday_pay"`
}

// Breakdown is the result of a calculation. Amounts are in won.
type Breakdown struct {
	StaffID          int            `json:"staff_id"`
	Month            calendar.Month `json:"month"`
	HourlyWage       int64          `json:"hourly_wage"`
	WorkDays         int            `json:"work_days"`
	TotalHours       float64        `json:"total_hours"`
	BasePay          int64          `json:"base_pay"`
	Weeks            []WeekPay      `json:"weeks"`
	WeeklyHolidayPay int64          `json:"weekly_holiday_pay"`
	GrossPay         int64          `json:"gross_pay"`
	Deductions       int64          `json:"deductions"`
	NetPay           int64          `json:"net_pay"`
}

// Calculate computes the breakdown of in.
func Calculate(in Input) Breakdown {
	wage := decimal.NewFromInt(in.HourlyWage)

	byDate := make(map[string]Day, len(in.Days))
	for _, d := range in.Days {
		byDate[calendar.Truncate(d.Date.Time).String()] = d
	}

	out := Breakdown{
		StaffID:    in.StaffID,
		Month:      in.Month,
		HourlyWage: in.HourlyWage,
		Weeks:      []WeekPay{},
	}

	monthHours := decimal.Zero
	for day := 1; day <= in.Month.Days(); day++ {
		d, ok := byDate[in.Month.Date(day).String()]
		if !ok || !d.Status.Working() || d.Hours <= 0 {
			continue
		}
		monthHours = monthHours.Add(hours(d))
		out.WorkDays++
	}
	out.TotalHours = monthHours.InexactFloat64()
	out.BasePay = monthHours.Mul(wage).Round(0).IntPart()

	var holidayPay int64
	for _, b := range calendar.MonthBuckets(in.Month) {
		w := week(b, byDate, wage)
		holidayPay += w.HolidayPay
		out.Weeks = append(out.Weeks, w)
	}
	out.WeeklyHolidayPay = holidayPay

	out.GrossPay = out.BasePay + out.WeeklyHolidayPay
	out.Deductions = decimal.NewFromInt(out.GrossPay).Mul(in.WithholdingRate).Floor().IntPart()
	if out.Deductions < 0 {
		out.Deductions = 0
	}
	out.NetPay = out.GrossPay - out.Deductions

	return out
}

func week(b calendar.Bucket, byDate map[string]Day, wage decimal.Decimal) WeekPay {
	w := WeekPay{Start: b.Start, End: b.End}

	total := decimal.Zero
	for _, d := range b.Dates() {
		day, ok := byDate[d.String()]
		if !ok {
			continue
		}
		switch day.Status {
		case ledger.Normal:
			total = total.Add(hours(day))
		case ledger.Absence:
			w.Absent = true
		case ledger.Holiday:
		}
	}
	w.Hours = total.InexactFloat64()

	if w.Absent || total.LessThan(MinWeeklyHours) {
		return w
	}

	paid := decimal.Min(total, FullWeekHours).Div(FullWeekHours).Mul(PaidDayHours)
	w.Eligible = true
	w.HolidayPay = paid.Mul(wage).Round(0).IntPart()
	return w
}

func hours(d Day) decimal.Decimal {
	return decimal.NewFromFloat(ledger.ClampHours(d.Hours))
}
