package store

import (
	"net/http"

	"attendance/console/foundation/web"
	"attendance/console/internal/backend"
	"attendance/console/internal/repository/postgres/store"
)

type Controller struct {
	store Store
}

func NewController(store Store) *Controller {
	return &Controller{store}
}

func (uc Controller) GetInfo(c *web.Context) error {
	info, err := uc.store.GetInfo(c.Ctx)
	if err != nil {
		return c.RespondError(err)
	}

	return c.Respond(map[string]interface{}{
		"data":   info,
		"status": backend.StatusSuccess,
	}, http.StatusOK)
}

func (uc Controller) UpdateAll(c *web.Context) error {
	var request store.UpdateRequest

	if err := c.BindFunc(&request, "StoreName", "Latitude", "Longitude"); err != nil {
		return c.RespondError(err)
	}

	info, err := uc.store.UpdateAll(c.Ctx, request)
	if err != nil {
		return c.RespondError(err)
	}

	return c.Respond(map[string]interface{}{
		"data":   info,
		"status": backend.StatusSuccess,
	}, http.StatusOK)
}
