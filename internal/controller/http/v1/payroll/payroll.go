package payroll

import (
	"fmt"
	"net/http"
	"reflect"

	"attendance/console/foundation/web"
	"attendance/console/internal/auth"
	"attendance/console/internal/backend"
	"attendance/console/internal/calendar"
	"attendance/console/internal/payroll"
	"attendance/console/internal/service"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

type Controller struct {
	payroll    Payroll
	attendance Attendance
	holidays   Holidays
	staff      Staff
	statement  Statement

	hourlyWage  int64
	withholding decimal.Decimal
}

func NewController(payroll Payroll, attendance Attendance, holidays Holidays, staff Staff, statement Statement, hourlyWage int64, withholding decimal.Decimal) *Controller {
	return &Controller{
		payroll:     payroll,
		attendance:  attendance,
		holidays:    holidays,
		staff:       staff,
		statement:   statement,
		hourlyWage:  hourlyWage,
		withholding: withholding,
	}
}

// Calculate recomputes the breakdown of a staff member and month from the
// stored ledger and keeps it as the current payroll.
func (uc Controller) Calculate(c *web.Context) error {
	claims, err := auth.GetClaims(c.Ctx)
	if err != nil {
		return c.RespondError(err)
	}

	var request backend.CalculateRequest
	if err := c.BindFunc(&request, "Month"); err != nil {
		return c.RespondError(err)
	}
	staffID, err := claims.StaffID(request.StaffID)
	if err != nil {
		return c.RespondError(err)
	}

	staff, err := uc.staff.GetByID(c.Ctx, staffID)
	if err != nil {
		return c.RespondError(err)
	}
	wage := uc.hourlyWage
	if staff.HourlyWage != nil && *staff.HourlyWage > 0 {
		wage = *staff.HourlyWage
	}
	if wage <= 0 {
		return c.RespondError(web.NewRequestError(errors.New("시급 정보가 없습니다"), http.StatusUnprocessableEntity))
	}

	// adjacent month rows complete the boundary weeks
	from, to := calendar.Span(request.Month)
	rows, err := uc.attendance.GetRange(c.Ctx, staffID, from.Time, to.Time)
	if err != nil {
		return c.RespondError(err)
	}
	closed, err := uc.holidays.List(c.Ctx, from.Time, to.Time)
	if err != nil {
		return c.RespondError(err)
	}

	b := payroll.Calculate(payroll.Input{
		StaffID:         staffID,
		Month:           request.Month,
		HourlyWage:      wage,
		WithholdingRate: uc.withholding,
		Days:            service.PayrollDays(rows, closed),
	})

	if err := uc.payroll.Save(c.Ctx, b); err != nil {
		return c.RespondError(err)
	}

	return c.Respond(map[string]interface{}{
		"status": backend.StatusSuccess,
		"data":   b,
	}, http.StatusOK)
}

func (uc Controller) GetStatement(c *web.Context) error {
	claims, err := auth.GetClaims(c.Ctx)
	if err != nil {
		return c.RespondError(err)
	}

	var requested int
	if id, ok := c.GetQueryFunc(reflect.Int, "staff_id").(*int); ok {
		requested = *id
	}
	raw := c.RequiredQuery("month")
	if err := c.ValidQuery(); err != nil {
		return c.RespondError(err)
	}
	m, err := calendar.ParseMonth(raw)
	if err != nil {
		return c.RespondError(web.NewRequestError(errors.Wrap(err, "month"), http.StatusBadRequest))
	}
	staffID, err := claims.StaffID(requested)
	if err != nil {
		return c.RespondError(err)
	}

	staff, err := uc.staff.GetByID(c.Ctx, staffID)
	if err != nil {
		return c.RespondError(err)
	}
	detail, err := uc.payroll.Get(c.Ctx, staffID, m)
	if err != nil {
		return c.RespondError(err)
	}

	pdf, err := uc.statement.Render(staff.EmployeeID, staff.FullName, detail.Breakdown)
	if err != nil {
		return c.RespondError(web.NewRequestError(errors.Wrap(err, "rendering statement"), http.StatusInternalServerError))
	}

	return c.RespondFile(fmt.Sprintf("payroll_%s_%s.pdf", staff.EmployeeID, m), "application/pdf", pdf)
}
