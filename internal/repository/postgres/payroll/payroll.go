package payroll

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"attendance/console/foundation/web"
	"attendance/console/internal/calendar"
	"attendance/console/internal/entity"
	"attendance/console/internal/payroll"
	"attendance/console/internal/pkg/repository/postgresql"
	"attendance/console/internal/repository/postgres"

	"github.com/pkg/errors"
)

type Repository struct {
	*postgresql.Database
}

func NewRepository(database *postgresql.Database) *Repository {
	return &Repository{Database: database}
}

// Save stores b as the current breakdown of its staff member and month.
func (r Repository) Save(ctx context.Context, b payroll.Breakdown) error {
	claims, err := r.CheckClaims(ctx)
	if err != nil {
		return err
	}

	row := entity.Payroll{
		StaffID:      b.StaffID,
		Month:        b.Month.String(),
		GrossPay:     b.GrossPay,
		Deductions:   b.Deductions,
		NetPay:       b.NetPay,
		Breakdown:    b,
		CalculatedAt: time.Now(),
		CalculatedBy: claims.UserId,
	}

	_, err = r.NewInsert().
		Model(&row).
		ExcludeColumn("id").
		On("CONFLICT (staff_id, month) DO UPDATE").
		Set("gross_pay = EXCLUDED.gross_pay").
		Set("deductions = EXCLUDED.deductions").
		Set("net_pay = EXCLUDED.net_pay").
		Set("breakdown = EXCLUDED.breakdown").
		Set("calculated_at = EXCLUDED.calculated_at").
		Set("calculated_by = EXCLUDED.calculated_by").
		Returning("NULL").
		Exec(ctx)
	if err != nil {
		return web.NewRequestError(errors.Wrap(err, "saving payroll"), http.StatusInternalServerError)
	}

	return nil
}

// Get returns the stored breakdown of a staff member and month.
func (r Repository) Get(ctx context.Context, staffID int, m calendar.Month) (entity.Payroll, error) {
	var detail entity.Payroll

	err := r.NewSelect().Model(&detail).Where("staff_id = ? AND month = ?", staffID, m.String()).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return entity.Payroll{}, web.NewRequestError(errors.Wrap(postgres.ErrNotFound, "payroll has not been calculated for this month"), http.StatusNotFound)
	}
	if err != nil {
		return entity.Payroll{}, web.NewRequestError(errors.Wrap(err, "selecting payroll"), http.StatusInternalServerError)
	}

	return detail, nil
}
