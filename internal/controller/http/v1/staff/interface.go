package staff

import (
	"context"

	"attendance/console/internal/entity"
	"attendance/console/internal/repository/postgres/staff"
)

type Staff interface {
	GetByID(ctx context.Context, id int) (entity.Staff, error)
	Create(ctx context.Context, request staff.CreateRequest) (staff.CreateResponse, error)
	Delete(ctx context.Context, id int) error
}
