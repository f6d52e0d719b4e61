package store

import (
	"context"

	"attendance/console/internal/entity"
	"attendance/console/internal/repository/postgres/store"
)

type Store interface {
	GetInfo(ctx context.Context) (entity.StoreInfo, error)
	UpdateAll(ctx context.Context, request store.UpdateRequest) (entity.StoreInfo, error)
}
