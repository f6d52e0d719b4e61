package store

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"attendance/console/foundation/web"
	"attendance/console/internal/auth"
	"attendance/console/internal/entity"
	"attendance/console/internal/pkg/repository/postgresql"

	"github.com/pkg/errors"
)

// DefaultRadius is used when an update leaves the radius unset.
const DefaultRadius = 100.0

type Repository struct {
	*postgresql.Database
}

func NewRepository(database *postgresql.Database) *Repository {
	return &Repository{Database: database}
}

// GetInfo returns the current store geofence.
func (r Repository) GetInfo(ctx context.Context) (entity.StoreInfo, error) {
	var detail entity.StoreInfo
	err := r.NewSelect().
		Model(&detail).
		Where("deleted_at IS NULL").
		OrderExpr("created_at DESC").
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return entity.StoreInfo{}, &web.Error{
			Err:    errors.New("store location is not configured"),
			Status: http.StatusNotFound,
		}
	}
	if err != nil {
		return entity.StoreInfo{}, web.NewRequestError(errors.Wrap(err, "selecting store_info"), http.StatusInternalServerError)
	}
	return detail, nil
}

// UpdateAll replaces the store geofence, creating it on first use.
func (r Repository) UpdateAll(ctx context.Context, request UpdateRequest) (entity.StoreInfo, error) {
	claims, err := r.CheckClaims(ctx, auth.RoleAdmin)
	if err != nil {
		return entity.StoreInfo{}, err
	}

	if err := r.ValidateStruct(&request, "store_name", "latitude", "longitude"); err != nil {
		return entity.StoreInfo{}, err
	}

	radius := request.Radius
	if radius == 0 {
		radius = DefaultRadius
	}

	current, err := r.GetInfo(ctx)
	var re *web.Error
	if errors.As(err, &re) && re.Status == http.StatusNotFound {
		row := entity.StoreInfo{
			StoreName: request.StoreName,
			Latitude:  *request.Latitude,
			Longitude: *request.Longitude,
			Radius:    radius,
		}
		row.CreatedBy = &claims.UserId
		_, err = r.NewInsert().Model(&row).ExcludeColumn("id", "created_at").Returning("id").Exec(ctx, &row.ID)
		if err != nil {
			return entity.StoreInfo{}, web.NewRequestError(errors.Wrap(err, "creating store_info"), http.StatusInternalServerError)
		}
		return row, nil
	}
	if err != nil {
		return entity.StoreInfo{}, err
	}

	now := time.Now()
	q := r.NewUpdate().Table("store_info").Where("deleted_at IS NULL AND id = ?", current.ID)
	q.Set("store_name = ?", request.StoreName)
	q.Set("latitude = ?", *request.Latitude)
	q.Set("longitude = ?", *request.Longitude)
	q.Set("radius = ?", radius)
	q.Set("updated_at = ?", now)
	q.Set("updated_by = ?", claims.UserId)

	if _, err = q.Exec(ctx); err != nil {
		return entity.StoreInfo{}, web.NewRequestError(errors.Wrap(err, "updating store_info"), http.StatusInternalServerError)
	}

	current.StoreName = request.StoreName
	current.Latitude = *request.Latitude
	current.Longitude = *request.Longitude
	current.Radius = radius
	current.UpdatedAt = &now
	current.UpdatedBy = &claims.UserId
	return current, nil
}
