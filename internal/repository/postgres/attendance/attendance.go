package attendance

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"attendance/console/foundation/web"
	"attendance/console/internal/entity"
	"attendance/console/internal/pkg/repository/postgresql"
	"attendance/console/internal/repository/postgres"

	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

type Repository struct {
	*postgresql.Database
}

func NewRepository(database *postgresql.Database) *Repository {
	return &Repository{Database: database}
}

// GetRange returns the rows of a staff member between from and to inclusive.
func (r Repository) GetRange(ctx context.Context, staffID int, from, to time.Time) ([]entity.Attendance, error) {
	list := []entity.Attendance{}

	err := r.NewSelect().
		Model(&list).
		Where("staff_id = ? AND deleted_at IS NULL", staffID).
		Where("work_day BETWEEN ? AND ?", from.Format(time.DateOnly), to.Format(time.DateOnly)).
		OrderExpr("work_day ASC").
		Scan(ctx)
	if err != nil {
		return nil, web.NewRequestError(errors.Wrap(err, "selecting attendance"), http.StatusInternalServerError)
	}

	return list, nil
}

// GetDay returns the row of one work day.
func (r Repository) GetDay(ctx context.Context, staffID int, day time.Time) (entity.Attendance, error) {
	var detail entity.Attendance

	err := r.NewSelect().
		Model(&detail).
		Where("staff_id = ? AND work_day = ? AND deleted_at IS NULL", staffID, day.Format(time.DateOnly)).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return entity.Attendance{}, web.NewRequestError(postgres.ErrNotFound, http.StatusNotFound)
	}
	if err != nil {
		return entity.Attendance{}, web.NewRequestError(errors.Wrap(err, "selecting attendance day"), http.StatusInternalServerError)
	}

	return detail, nil
}

// SaveMonth upserts the given rows in one transaction.
func (r Repository) SaveMonth(ctx context.Context, request SaveMonthRequest) error {
	claims, err := r.CheckClaims(ctx)
	if err != nil {
		return err
	}

	if err := r.ValidateStruct(&request, "StaffID"); err != nil {
		return err
	}
	if len(request.Days) == 0 {
		return nil
	}

	now := time.Now()
	rows := make([]entity.Attendance, 0, len(request.Days))
	for _, d := range request.Days {
		row := entity.Attendance{
			StaffID:    request.StaffID,
			WorkDay:    d.WorkDay,
			TotalHours: d.TotalHours,
			Status:     d.Status,
		}
		row.CreatedBy = &claims.UserId
		row.UpdatedAt = &now
		row.UpdatedBy = &claims.UserId
		rows = append(rows, row)
	}

	err = r.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.NewInsert().
			Model(&rows).
			Column("staff_id", "work_day", "total_hours", "status", "created_by", "updated_at", "updated_by").
			On("CONFLICT (staff_id, work_day) DO UPDATE").
			Set("total_hours = EXCLUDED.total_hours").
			Set("status = EXCLUDED.status").
			Set("updated_at = EXCLUDED.updated_at").
			Set("updated_by = EXCLUDED.updated_by").
			Returning("NULL").
			Exec(ctx)
		return err
	})
	if err != nil {
		return web.NewRequestError(errors.Wrap(err, "saving attendance"), http.StatusInternalServerError)
	}

	return nil
}

// CheckIn records the check-in of a work day, creating the row if needed.
func (r Repository) CheckIn(ctx context.Context, rec ClockRecord) error {
	row := entity.Attendance{
		StaffID:         rec.StaffID,
		WorkDay:         rec.WorkDay,
		Status:          rec.Status,
		CheckInTime:     &rec.At,
		CheckInVerified: rec.Verified,
		CheckInDistance: &rec.Distance,
	}
	row.CreatedBy = &rec.StaffID

	_, err := r.NewInsert().
		Model(&row).
		Column("staff_id", "work_day", "status", "check_in_time", "check_in_verified", "check_in_distance", "created_by").
		On("CONFLICT (staff_id, work_day) DO UPDATE").
		Set("check_in_time = EXCLUDED.check_in_time").
		Set("check_in_verified = EXCLUDED.check_in_verified").
		Set("check_in_distance = EXCLUDED.check_in_distance").
		Returning("NULL").
		Exec(ctx)
	if err != nil {
		return web.NewRequestError(errors.Wrap(err, "recording check-in"), http.StatusInternalServerError)
	}

	return nil
}

// CheckOut records the check-out of a work day. hours replaces the ledger
// hours only while the row is a normal working day.
func (r Repository) CheckOut(ctx context.Context, rec ClockRecord, hours float64) error {
	q := r.NewUpdate().Table("attendance").
		Where("staff_id = ? AND work_day = ? AND deleted_at IS NULL", rec.StaffID, rec.WorkDay.Format(time.DateOnly)).
		Set("check_out_time = ?", rec.At).
		Set("check_out_verified = ?", rec.Verified).
		Set("check_out_distance = ?", rec.Distance).
		Set("total_hours = CASE WHEN status = 'normal' THEN ? ELSE total_hours END", hours).
		Set("updated_at = ?", time.Now()).
		Set("updated_by = ?", rec.StaffID)

	res, err := q.Exec(ctx)
	if err != nil {
		return web.NewRequestError(errors.Wrap(err, "recording check-out"), http.StatusInternalServerError)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return web.NewRequestError(postgres.ErrNotFound, http.StatusNotFound)
	}

	return nil
}

// Log appends a clock action to the audit log.
func (r Repository) Log(ctx context.Context, l entity.AttendanceLog) error {
	_, err := r.NewInsert().Model(&l).ExcludeColumn("id").Returning("NULL").Exec(ctx)
	if err != nil {
		return web.NewRequestError(errors.Wrap(err, "logging clock action"), http.StatusInternalServerError)
	}
	return nil
}
