package attendance

import (
	"context"
	"time"

	"attendance/console/internal/entity"
	"attendance/console/internal/repository/postgres/attendance"
)

type Attendance interface {
	GetRange(ctx context.Context, staffID int, from, to time.Time) ([]entity.Attendance, error)
	GetDay(ctx context.Context, staffID int, day time.Time) (entity.Attendance, error)
	SaveMonth(ctx context.Context, request attendance.SaveMonthRequest) error
	CheckIn(ctx context.Context, rec attendance.ClockRecord) error
	CheckOut(ctx context.Context, rec attendance.ClockRecord, hours float64) error
	Log(ctx context.Context, l entity.AttendanceLog) error
}

type Store interface {
	GetInfo(ctx context.Context) (entity.StoreInfo, error)
}

type Holidays interface {
	List(ctx context.Context, from, to time.Time) ([]entity.CompanyHoliday, error)
}

type Staff interface {
	GetByID(ctx context.Context, id int) (entity.Staff, error)
}
