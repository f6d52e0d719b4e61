package holiday

import (
	"log/slog"
	"net/http"
	"reflect"
	"strings"

	"attendance/console/foundation/web"
	"attendance/console/internal/backend"
	"attendance/console/internal/calendar"
	"attendance/console/internal/ledger"

	"github.com/Azure/go-autorest/autorest/date"
	"github.com/pkg/errors"
)

type Controller struct {
	holiday Holiday
	cache   Cache
	log     *slog.Logger
}

func NewController(holiday Holiday, cache Cache, log *slog.Logger) *Controller {
	if log == nil {
		log = slog.Default()
	}
	return &Controller{holiday: holiday, cache: cache, log: log}
}

// GetList returns the holidays of a month together with the collection
// version. A cache failure falls back to the database.
func (uc Controller) GetList(c *web.Context) error {
	raw := c.RequiredQuery("month")
	if err := c.ValidQuery(); err != nil {
		return c.RespondError(err)
	}
	m, err := calendar.ParseMonth(raw)
	if err != nil {
		return c.RespondError(web.NewRequestError(errors.Wrap(err, "month"), http.StatusBadRequest))
	}

	// The version is read before the database so a fill racing a write is
	// stored under the old version.
	version, err := uc.cache.Version(c.Ctx)
	cached := err == nil
	if err != nil {
		uc.log.Warn("holiday version read failed", "error", err)
	}

	var (
		list []backend.Holiday
		ok   bool
	)
	if cached {
		list, ok, err = uc.cache.Get(c.Ctx, m, version)
		if err != nil {
			uc.log.Warn("holiday cache read failed", "month", m, "error", err)
		}
	}
	if !ok {
		rows, err := uc.holiday.List(c.Ctx, m.First().Time, m.Last().Time)
		if err != nil {
			return c.RespondError(err)
		}
		list = make([]backend.Holiday, 0, len(rows))
		for _, r := range rows {
			list = append(list, backend.Holiday{
				Date:        calendar.Truncate(r.HolidayDate),
				Description: r.Description,
			})
		}
		if cached {
			if err := uc.cache.Set(c.Ctx, m, version, list); err != nil {
				uc.log.Warn("holiday cache write failed", "month", m, "error", err)
			}
		}
	}

	return c.Respond(map[string]interface{}{
		"status": backend.StatusSuccess,
		"data": backend.HolidayList{
			Holidays: list,
			Version:  version,
		},
	}, http.StatusOK)
}

func (uc Controller) Create(c *web.Context) error {
	var request backend.Holiday
	if err := c.BindFunc(&request, "Date"); err != nil {
		return c.RespondError(err)
	}

	description := strings.TrimSpace(request.Description)
	if description == "" {
		description = ledger.DefaultHolidayDescription
	}

	day := calendar.Truncate(request.Date.Time)
	if err := uc.holiday.Create(c.Ctx, day.Time, description); err != nil {
		return c.RespondError(err)
	}

	version := uc.bump(c, calendar.MonthOf(day))

	return c.Respond(map[string]interface{}{
		"status": backend.StatusSuccess,
		"data": map[string]interface{}{
			"date":        day,
			"description": description,
			"version":     version,
		},
	}, http.StatusCreated)
}

func (uc Controller) Delete(c *web.Context) error {
	raw := c.GetParam(reflect.String, "date").(string)
	if err := c.ValidParam(); err != nil {
		return c.RespondError(err)
	}

	day, err := date.ParseDate(raw)
	if err != nil {
		return c.RespondError(web.NewRequestError(errors.Wrap(err, "date"), http.StatusBadRequest))
	}

	if err := uc.holiday.Delete(c.Ctx, day.Time); err != nil {
		return c.RespondError(err)
	}

	version := uc.bump(c, calendar.MonthOf(day))

	return c.Respond(map[string]interface{}{
		"status": backend.StatusSuccess,
		"data":   map[string]interface{}{"version": version},
	}, http.StatusOK)
}

// bump moves the collection to a new version. The write already happened,
// so a failure only costs a stale cache entry until its ttl.
func (uc Controller) bump(c *web.Context, m calendar.Month) int64 {
	version, err := uc.cache.Bump(c.Ctx, m)
	if err != nil {
		uc.log.Error("holiday version bump failed", "month", m, "error", err)
	}
	return version
}
