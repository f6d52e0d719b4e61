package staff

import (
	"net/http"
	"reflect"

	"attendance/console/foundation/web"
	"attendance/console/internal/auth"
	"attendance/console/internal/backend"
	"attendance/console/internal/repository/postgres/staff"
)

type Controller struct {
	staff Staff
}

func NewController(staff Staff) *Controller {
	return &Controller{staff}
}

func (uc Controller) GetDetailById(c *web.Context) error {
	id := c.GetParam(reflect.Int, "id").(int)

	if err := c.ValidParam(); err != nil {
		return c.RespondError(err)
	}

	claims, err := auth.GetClaims(c.Ctx)
	if err != nil {
		return c.RespondError(err)
	}
	if _, err := claims.StaffID(id); err != nil {
		return c.RespondError(err)
	}

	response, err := uc.staff.GetByID(c.Ctx, id)
	if err != nil {
		return c.RespondError(err)
	}

	return c.Respond(map[string]interface{}{
		"data":   response,
		"status": backend.StatusSuccess,
	}, http.StatusOK)
}

func (uc Controller) Create(c *web.Context) error {
	var request staff.CreateRequest

	if err := c.BindFunc(&request, "EmployeeID", "Password", "FullName"); err != nil {
		return c.RespondError(err)
	}

	response, err := uc.staff.Create(c.Ctx, request)
	if err != nil {
		return c.RespondError(err)
	}

	return c.Respond(map[string]interface{}{
		"data":   response,
		"status": backend.StatusSuccess,
	}, http.StatusCreated)
}

func (uc Controller) Delete(c *web.Context) error {
	id := c.GetParam(reflect.Int, "id").(int)

	if err := c.ValidParam(); err != nil {
		return c.RespondError(err)
	}

	if err := uc.staff.Delete(c.Ctx, id); err != nil {
		return c.RespondError(err)
	}

	return c.Respond(nil, http.StatusNoContent)
}
