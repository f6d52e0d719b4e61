package staff

import (
	"context"
	"database/sql"
	"net/http"
	"strings"

	"attendance/console/foundation/web"
	"attendance/console/internal/auth"
	"attendance/console/internal/entity"
	"attendance/console/internal/pkg/repository/postgresql"
	"attendance/console/internal/repository/postgres"

	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
)

type Repository struct {
	*postgresql.Database
}

func NewRepository(database *postgresql.Database) *Repository {
	return &Repository{Database: database}
}

func (r Repository) GetByEmployeeID(ctx context.Context, employeeID string) (entity.Staff, error) {
	var detail entity.Staff

	err := r.NewSelect().Model(&detail).Where("employee_id = ? AND deleted_at IS NULL", employeeID).Scan(ctx)
	if err != nil {
		return entity.Staff{}, &web.Error{
			Err:    errors.New("employee not found!"),
			Status: http.StatusUnauthorized,
		}
	}

	return detail, nil
}

func (r Repository) GetByID(ctx context.Context, id int) (entity.Staff, error) {
	var detail entity.Staff

	err := r.NewSelect().Model(&detail).Where("id = ? AND deleted_at IS NULL", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return entity.Staff{}, web.NewRequestError(errors.Wrapf(postgres.ErrNotFound, "staff %d", id), http.StatusNotFound)
	}
	if err != nil {
		return entity.Staff{}, web.NewRequestError(errors.Wrap(err, "selecting staff"), http.StatusInternalServerError)
	}

	return detail, nil
}

func (r Repository) Create(ctx context.Context, request CreateRequest) (CreateResponse, error) {
	claims, err := r.CheckClaims(ctx, auth.RoleAdmin)
	if err != nil {
		return CreateResponse{}, err
	}

	if err := r.ValidateStruct(&request, "EmployeeID", "Password", "FullName"); err != nil {
		return CreateResponse{}, err
	}

	role := strings.ToUpper(request.Role)
	if role == "" {
		role = auth.RoleStaff
	}
	if role != auth.RoleStaff && role != auth.RoleAdmin {
		return CreateResponse{}, web.NewRequestError(errors.New("incorrect role. role should be STAFF or ADMIN"), http.StatusBadRequest)
	}

	exists, err := r.NewSelect().Model((*entity.Staff)(nil)).Where("employee_id = ? AND deleted_at IS NULL", request.EmployeeID).Exists(ctx)
	if err != nil {
		return CreateResponse{}, web.NewRequestError(errors.Wrap(err, "employee_id check"), http.StatusInternalServerError)
	}
	if exists {
		return CreateResponse{}, web.NewRequestError(errors.New("employee_id is used"), http.StatusConflict)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(request.Password), bcrypt.DefaultCost)
	if err != nil {
		return CreateResponse{}, web.NewRequestError(errors.Wrap(err, "hashing password"), http.StatusInternalServerError)
	}
	hashed := string(hash)

	row := entity.Staff{
		EmployeeID: request.EmployeeID,
		FullName:   request.FullName,
		Password:   &hashed,
		Role:       role,
		HourlyWage: request.HourlyWage,
	}
	row.CreatedBy = &claims.UserId

	_, err = r.NewInsert().Model(&row).ExcludeColumn("id", "created_at").Returning("id").Exec(ctx, &row.ID)
	if err != nil {
		return CreateResponse{}, web.NewRequestError(errors.Wrap(err, "creating staff"), http.StatusInternalServerError)
	}

	return CreateResponse{
		ID:         row.ID,
		EmployeeID: row.EmployeeID,
		FullName:   row.FullName,
		Role:       row.Role,
		HourlyWage: row.HourlyWage,
	}, nil
}

func (r Repository) Delete(ctx context.Context, id int) error {
	if _, err := r.CheckClaims(ctx, auth.RoleAdmin); err != nil {
		return err
	}
	return r.DeleteRow(ctx, "staff", id)
}
