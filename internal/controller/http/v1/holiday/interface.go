package holiday

import (
	"context"
	"time"

	"attendance/console/internal/backend"
	"attendance/console/internal/calendar"
	"attendance/console/internal/entity"
)

type Holiday interface {
	List(ctx context.Context, from, to time.Time) ([]entity.CompanyHoliday, error)
	Create(ctx context.Context, day time.Time, description string) error
	Delete(ctx context.Context, day time.Time) error
}

// Cache keeps months keyed by the collection version they were read at.
type Cache interface {
	Get(ctx context.Context, m calendar.Month, version int64) ([]backend.Holiday, bool, error)
	Set(ctx context.Context, m calendar.Month, version int64, list []backend.Holiday) error
	Version(ctx context.Context) (int64, error)
	Bump(ctx context.Context, m calendar.Month) (int64, error)
}
