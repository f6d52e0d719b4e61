package auth

import (
	"net/http"

	"attendance/console/foundation/web"
	"attendance/console/internal/backend"
	"attendance/console/internal/repository/postgres/staff"

	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
)

type Controller struct {
	staff  Staff
	tokens Tokens
}

func NewController(staff Staff, tokens Tokens) *Controller {
	return &Controller{staff: staff, tokens: tokens}
}

func (uc Controller) SignIn(c *web.Context) error {
	var data staff.SignInRequest

	err := c.BindFunc(&data, "EmployeeID", "Password")
	if err != nil {
		return c.RespondError(err)
	}

	detail, err := uc.staff.GetByEmployeeID(c.Ctx, data.EmployeeID)
	if err != nil {
		return c.RespondError(err)
	}

	if detail.Password == nil {
		return c.RespondError(&web.Error{
			Err:    errors.New("password is not set"),
			Status: http.StatusUnauthorized,
		})
	}

	if err = bcrypt.CompareHashAndPassword([]byte(*detail.Password), []byte(data.Password)); err != nil {
		return c.RespondError(web.NewRequestError(errors.New("incorrect password"), http.StatusUnauthorized))
	}

	accessToken, err := uc.tokens.GenerateToken(detail.ID, detail.Role)
	if err != nil {
		return c.RespondError(web.NewRequestError(errors.Wrap(err, "generating token"), http.StatusInternalServerError))
	}

	return c.Respond(map[string]interface{}{
		"status": backend.StatusSuccess,
		"data": map[string]interface{}{
			"access_token": accessToken,
			"staff_id":     detail.ID,
			"role":         detail.Role,
		},
	}, http.StatusOK)
}
