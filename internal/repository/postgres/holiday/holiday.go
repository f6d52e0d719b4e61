package holiday

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"attendance/console/foundation/web"
	"attendance/console/internal/auth"
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

// List returns the company holidays between from and to inclusive.
func (r Repository) List(ctx context.Context, from, to time.Time) ([]entity.CompanyHoliday, error) {
	list := []entity.CompanyHoliday{}

	err := r.NewSelect().
		Model(&list).
		Where("deleted_at IS NULL").
		Where("holiday_date BETWEEN ? AND ?", from.Format(time.DateOnly), to.Format(time.DateOnly)).
		OrderExpr("holiday_date ASC").
		Scan(ctx)
	if err != nil {
		return nil, web.NewRequestError(errors.Wrap(err, "selecting company holidays"), http.StatusInternalServerError)
	}

	return list, nil
}

// Create adds a company holiday and turns every ledger row of that date into
// a zero hour holiday. Creating an existing holiday updates its description.
func (r Repository) Create(ctx context.Context, day time.Time, description string) error {
	claims, err := r.CheckClaims(ctx, auth.RoleAdmin)
	if err != nil {
		return err
	}

	row := entity.CompanyHoliday{HolidayDate: day, Description: description}
	row.CreatedBy = &claims.UserId

	err = r.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.NewInsert().
			Model(&row).
			Column("holiday_date", "description", "created_by").
			On("CONFLICT (holiday_date) WHERE deleted_at IS NULL DO UPDATE").
			Set("description = EXCLUDED.description").
			Returning("NULL").
			Exec(ctx)
		if err != nil {
			return errors.Wrap(err, "inserting company holiday")
		}

		_, err = tx.NewUpdate().Table("attendance").
			Set("status = 'holiday'").
			Set("total_hours = 0").
			Set("updated_at = ?", time.Now()).
			Set("updated_by = ?", claims.UserId).
			Where("work_day = ? AND deleted_at IS NULL", day.Format(time.DateOnly)).
			Exec(ctx)
		return errors.Wrap(err, "forcing holiday rows")
	})
	if err != nil {
		return web.NewRequestError(errors.Wrap(err, "creating company holiday"), http.StatusInternalServerError)
	}

	return nil
}

// Delete removes the company holiday of a date. Ledger rows keep their
// holiday status.
func (r Repository) Delete(ctx context.Context, day time.Time) error {
	if _, err := r.CheckClaims(ctx, auth.RoleAdmin); err != nil {
		return err
	}

	var id int
	err := r.NewSelect().
		Model((*entity.CompanyHoliday)(nil)).
		Column("id").
		Where("holiday_date = ? AND deleted_at IS NULL", day.Format(time.DateOnly)).
		Limit(1).
		Scan(ctx, &id)
	if errors.Is(err, sql.ErrNoRows) {
		return web.NewRequestError(errors.Wrapf(postgres.ErrNotFound, "holiday %s", day.Format(time.DateOnly)), http.StatusNotFound)
	}
	if err != nil {
		return web.NewRequestError(errors.Wrap(err, "selecting company holiday"), http.StatusInternalServerError)
	}

	return r.DeleteRow(ctx, "company_holiday", id)
}
