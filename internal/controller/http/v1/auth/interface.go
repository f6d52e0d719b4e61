package auth

import (
	"context"

	"attendance/console/internal/entity"
)

type Staff interface {
	GetByEmployeeID(ctx context.Context, employeeID string) (entity.Staff, error)
}

type Tokens interface {
	GenerateToken(userID int, role string) (string, error)
}
