package payroll

import (
	"context"
	"time"

	"attendance/console/internal/calendar"
	"attendance/console/internal/entity"
	"attendance/console/internal/payroll"
)

type Payroll interface {
	Save(ctx context.Context, b payroll.Breakdown) error
	Get(ctx context.Context, staffID int, m calendar.Month) (entity.Payroll, error)
}

type Attendance interface {
	GetRange(ctx context.Context, staffID int, from, to time.Time) ([]entity.Attendance, error)
}

type Holidays interface {
	List(ctx context.Context, from, to time.Time) ([]entity.CompanyHoliday, error)
}

type Staff interface {
	GetByID(ctx context.Context, id int) (entity.Staff, error)
}

type Statement interface {
	Render(employeeID, staffName string, b payroll.Breakdown) ([]byte, error)
}
