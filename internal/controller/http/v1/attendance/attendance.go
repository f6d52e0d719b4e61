package attendance

import (
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"reflect"
	"sort"
	"time"

	"attendance/console/foundation/web"
	"attendance/console/internal/auth"
	"attendance/console/internal/backend"
	"attendance/console/internal/calendar"
	"attendance/console/internal/entity"
	"attendance/console/internal/geo"
	"attendance/console/internal/ledger"
	"attendance/console/internal/payroll"
	"attendance/console/internal/repository/postgres/attendance"
	"attendance/console/internal/service"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// Settings are the store wide rules the controller applies.
type Settings struct {
	Location        *time.Location
	AllowOutOfRange bool
	HourlyWage      int64
	Log             *slog.Logger
	Now             func() time.Time
}

type Controller struct {
	attendance Attendance
	store      Store
	holidays   Holidays
	staff      Staff

	loc             *time.Location
	allowOutOfRange bool
	hourlyWage      int64
	log             *slog.Logger
	now             func() time.Time
}

func NewController(attendance Attendance, store Store, holidays Holidays, staff Staff, s Settings) *Controller {
	uc := &Controller{
		attendance:      attendance,
		store:           store,
		holidays:        holidays,
		staff:           staff,
		loc:             s.Location,
		allowOutOfRange: s.AllowOutOfRange,
		hourlyWage:      s.HourlyWage,
		log:             s.Log,
		now:             s.Now,
	}
	if uc.loc == nil {
		uc.loc = time.UTC
	}
	if uc.log == nil {
		uc.log = slog.Default()
	}
	if uc.now == nil {
		uc.now = time.Now
	}
	return uc
}

// postRequest is either a clock action or a batch save, told apart by Action.
type postRequest struct {
	StaffID    int                  `json:"staff_id"`
	Action     backend.Action       `json:"action"`
	Latitude   *float64             `json:"latitude"`
	Longitude  *float64             `json:"longitude"`
	Month      calendar.Month       `json:"month"`
	DailyHours []backend.DailyHours `json:"daily_hours"`
}

func (uc Controller) Post(c *web.Context) error {
	claims, err := auth.GetClaims(c.Ctx)
	if err != nil {
		return c.RespondError(err)
	}

	var req postRequest
	if err := c.BindFunc(&req); err != nil {
		return c.RespondError(err)
	}

	if req.Action != "" {
		return uc.clock(c, claims, req)
	}
	return uc.save(c, claims, req)
}

// today is the current store day as a UTC midnight.
func (uc Controller) today() (time.Time, time.Time) {
	now := uc.now().In(uc.loc)
	return now, time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

func (uc Controller) clock(c *web.Context, claims auth.Claims, req postRequest) error {
	if !req.Action.Valid() {
		return c.RespondError(web.NewRequestError(errors.Errorf("unknown action %q", req.Action), http.StatusBadRequest))
	}
	if req.Latitude == nil || req.Longitude == nil {
		return c.RespondError(web.NewRequestError(errors.New("latitude and longitude are required"), http.StatusBadRequest))
	}
	lat, lng := *req.Latitude, *req.Longitude
	if math.IsNaN(lat) || math.IsNaN(lng) || math.Abs(lat) > 90 || math.Abs(lng) > 180 {
		return c.RespondError(web.NewRequestError(errors.New("invalid coordinates"), http.StatusBadRequest))
	}

	staffID, err := claims.StaffID(req.StaffID)
	if err != nil {
		return c.RespondError(err)
	}

	now, day := uc.today()

	row, err := uc.attendance.GetDay(c.Ctx, staffID, day)
	found := err == nil
	if err != nil && !isNotFound(err) {
		return c.RespondError(err)
	}

	var conflict error
	switch req.Action {
	case backend.ActionCheckIn:
		if found && row.CheckInTime != nil {
			conflict = errors.New("이미 출근 처리되었습니다")
		}
	case backend.ActionCheckOut:
		switch {
		case !found || row.CheckInTime == nil:
			conflict = errors.New("출근 기록이 없습니다")
		case row.CheckOutTime != nil:
			conflict = errors.New("이미 퇴근 처리되었습니다")
		}
	}

	store, err := uc.store.GetInfo(c.Ctx)
	if err != nil {
		return c.RespondError(err)
	}

	within, distance := geo.Within(lat, lng, store.Latitude, store.Longitude, store.Radius)
	distance = math.Round(distance*10) / 10
	gps := backend.GPS{
		Verified:     within,
		Distance:     distance,
		Radius:       store.Radius,
		LocationName: store.StoreName,
	}
	accepted := within || uc.allowOutOfRange

	// Rejected attempts are logged too, duplicates included.
	entry := entity.AttendanceLog{
		StaffID:   staffID,
		Action:    string(req.Action),
		Latitude:  lat,
		Longitude: lng,
		Distance:  distance,
		Verified:  within,
		Accepted:  accepted && conflict == nil,
		LoggedAt:  now,
	}
	if err := uc.attendance.Log(c.Ctx, entry); err != nil {
		uc.log.Warn("clock action not logged", "staff_id", staffID, "action", req.Action, "error", err)
	}

	if conflict != nil {
		return c.RespondError(web.NewRequestError(conflict, http.StatusConflict))
	}
	if !accepted {
		msg := fmt.Sprintf("%s 반경 %.0fm 밖입니다. 현재 거리 %.0fm", store.StoreName, store.Radius, distance)
		return c.RespondError(web.NewRequestErrorWith(errors.New(msg), http.StatusForbidden, map[string]interface{}{"gps": gps}))
	}

	rec := attendance.ClockRecord{
		StaffID:  staffID,
		WorkDay:  day,
		At:       now,
		Verified: within,
		Distance: distance,
		Status:   ledger.Normal.String(),
	}

	var msg string
	switch req.Action {
	case backend.ActionCheckIn:
		closed, err := uc.holidays.List(c.Ctx, day, day)
		if err != nil {
			return c.RespondError(err)
		}
		if len(closed) > 0 {
			rec.Status = ledger.Holiday.String()
		}
		if err := uc.attendance.CheckIn(c.Ctx, rec); err != nil {
			return c.RespondError(err)
		}
		msg = "출근 처리되었습니다"
	case backend.ActionCheckOut:
		if err := uc.attendance.CheckOut(c.Ctx, rec, WorkedHours(*row.CheckInTime, now)); err != nil {
			return c.RespondError(err)
		}
		msg = "퇴근 처리되었습니다"
	}
	if !within {
		msg += " (위치 미확인)"
	}

	return c.Respond(backend.ClockVerdict{
		Status:  backend.StatusSuccess,
		Message: msg,
		GPS:     gps,
	}, http.StatusOK)
}

// WorkedHours is the time between check-in and check-out in hours, rounded
// to two decimals and clamped to the ledger range.
func WorkedHours(in, out time.Time) float64 {
	h := out.Sub(in).Hours()
	return ledger.ClampHours(math.Round(h*100) / 100)
}

func (uc Controller) save(c *web.Context, claims auth.Claims, req postRequest) error {
	if !claims.Authorized(auth.RoleAdmin) {
		return c.RespondError(web.NewRequestError(errors.New("attempted action is not allowed"), http.StatusForbidden))
	}
	if req.StaffID == 0 || req.Month.IsZero() {
		return c.RespondError(web.NewRequestError(errors.New("staff_id and month are required"), http.StatusBadRequest))
	}

	closed, err := uc.holidays.List(c.Ctx, req.Month.First().Time, req.Month.Last().Time)
	if err != nil {
		return c.RespondError(err)
	}
	isClosed := make(map[string]bool, len(closed))
	for _, h := range closed {
		isClosed[calendar.Truncate(h.HolidayDate).String()] = true
	}

	byDate := make(map[string]attendance.SaveDay, len(req.DailyHours))
	for _, dh := range req.DailyHours {
		if !req.Month.Contains(dh.Date) {
			return c.RespondError(web.NewRequestError(errors.Errorf("%s is outside %s", dh.Date, req.Month), http.StatusBadRequest))
		}
		st, err := ledger.ParseStatus(dh.Status)
		if err != nil {
			return c.RespondError(web.NewRequestError(err, http.StatusBadRequest))
		}
		if math.IsNaN(dh.Hours) || dh.Hours < 0 || dh.Hours > ledger.MaxHours {
			return c.RespondError(web.NewRequestError(errors.Errorf("%s: hours must be between 0 and %.0f", dh.Date, ledger.MaxHours), http.StatusBadRequest))
		}

		d := calendar.Truncate(dh.Date.Time)
		hours := dh.Hours
		if isClosed[d.String()] {
			st = ledger.Holiday
		}
		if !st.Working() {
			hours = 0
		}
		byDate[d.String()] = attendance.SaveDay{WorkDay: d.Time, TotalHours: hours, Status: st.String()}
	}

	days := make([]attendance.SaveDay, 0, len(byDate))
	for _, d := range byDate {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].WorkDay.Before(days[j].WorkDay) })

	err = uc.attendance.SaveMonth(c.Ctx, attendance.SaveMonthRequest{StaffID: req.StaffID, Days: days})
	if err != nil {
		return c.RespondError(err)
	}

	return c.Respond(map[string]interface{}{
		"status":  backend.StatusSuccess,
		"message": fmt.Sprintf("%d days saved", len(days)),
	}, http.StatusOK)
}

// staffMonth reads the staff_id and month query parameters.
func (uc Controller) staffMonth(c *web.Context) (int, calendar.Month, error) {
	claims, err := auth.GetClaims(c.Ctx)
	if err != nil {
		return 0, calendar.Month{}, err
	}

	var requested int
	if id, ok := c.GetQueryFunc(reflect.Int, "staff_id").(*int); ok {
		requested = *id
	}
	raw := c.RequiredQuery("month")
	if err := c.ValidQuery(); err != nil {
		return 0, calendar.Month{}, err
	}

	m, err := calendar.ParseMonth(raw)
	if err != nil {
		return 0, calendar.Month{}, web.NewRequestError(errors.Wrap(err, "month"), http.StatusBadRequest)
	}
	staffID, err := claims.StaffID(requested)
	if err != nil {
		return 0, calendar.Month{}, err
	}
	return staffID, m, nil
}

func (uc Controller) GetList(c *web.Context) error {
	staffID, m, err := uc.staffMonth(c)
	if err != nil {
		return c.RespondError(err)
	}

	rows, err := uc.attendance.GetRange(c.Ctx, staffID, m.First().Time, m.Last().Time)
	if err != nil {
		return c.RespondError(err)
	}

	list := make([]backend.DayRow, 0, len(rows))
	for _, r := range rows {
		list = append(list, backend.DayRow{
			Date:       calendar.Truncate(r.WorkDay),
			TotalHours: r.TotalHours,
			Status:     r.Status,
		})
	}

	return c.Respond(map[string]interface{}{
		"status": backend.StatusSuccess,
		"data":   list,
	}, http.StatusOK)
}

func (uc Controller) GetStatus(c *web.Context) error {
	claims, err := auth.GetClaims(c.Ctx)
	if err != nil {
		return c.RespondError(err)
	}

	var requested int
	if id, ok := c.GetQueryFunc(reflect.Int, "staff_id").(*int); ok {
		requested = *id
	}
	if err := c.ValidQuery(); err != nil {
		return c.RespondError(err)
	}
	staffID, err := claims.StaffID(requested)
	if err != nil {
		return c.RespondError(err)
	}

	_, day := uc.today()
	row, err := uc.attendance.GetDay(c.Ctx, staffID, day)
	if err != nil && !isNotFound(err) {
		return c.RespondError(err)
	}

	var st backend.AttendanceStatus
	if err == nil {
		st = backend.AttendanceStatus{
			CheckedIn:        row.CheckInTime != nil,
			CheckedOut:       row.CheckOutTime != nil,
			CheckInTime:      uc.clockTime(row.CheckInTime),
			CheckOutTime:     uc.clockTime(row.CheckOutTime),
			CheckInVerified:  row.CheckInVerified,
			CheckOutVerified: row.CheckOutVerified,
			CheckInDistance:  row.CheckInDistance,
			CheckOutDistance: row.CheckOutDistance,
		}
	}

	return c.Respond(map[string]interface{}{
		"status": backend.StatusSuccess,
		"data":   st,
	}, http.StatusOK)
}

func (uc Controller) clockTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.In(uc.loc).Format("15:04")
	return &s
}

func (uc Controller) wage(staffWage *int64) int64 {
	if staffWage != nil && *staffWage > 0 {
		return *staffWage
	}
	return uc.hourlyWage
}

func (uc Controller) GetMonthlySummary(c *web.Context) error {
	staffID, m, err := uc.staffMonth(c)
	if err != nil {
		return c.RespondError(err)
	}

	staff, err := uc.staff.GetByID(c.Ctx, staffID)
	if err != nil {
		return c.RespondError(err)
	}
	rows, err := uc.attendance.GetRange(c.Ctx, staffID, m.First().Time, m.Last().Time)
	if err != nil {
		return c.RespondError(err)
	}
	closed, err := uc.holidays.List(c.Ctx, m.First().Time, m.Last().Time)
	if err != nil {
		return c.RespondError(err)
	}

	b := payroll.Calculate(payroll.Input{
		StaffID:         staffID,
		Month:           m,
		HourlyWage:      uc.wage(staff.HourlyWage),
		WithholdingRate: decimal.Zero,
		Days:            service.PayrollDays(rows, closed),
	})

	var checkIns, verified int
	for _, r := range rows {
		if r.CheckInTime == nil {
			continue
		}
		checkIns++
		if r.CheckInVerified {
			verified++
		}
	}
	ratio := 0.0
	if checkIns > 0 {
		ratio = math.Round(float64(verified)/float64(checkIns)*100) / 100
	}

	return c.Respond(map[string]interface{}{
		"status": backend.StatusSuccess,
		"data": backend.MonthlySummary{
			TotalWorkDays:    b.WorkDays,
			TotalHours:       b.TotalHours,
			VerifiedRatio:    ratio,
			EstimatedBasePay: b.BasePay,
		},
	}, http.StatusOK)
}

func (uc Controller) Export(c *web.Context) error {
	staffID, m, err := uc.staffMonth(c)
	if err != nil {
		return c.RespondError(err)
	}

	staff, err := uc.staff.GetByID(c.Ctx, staffID)
	if err != nil {
		return c.RespondError(err)
	}
	from, to := calendar.Span(m)
	rows, err := uc.attendance.GetRange(c.Ctx, staffID, from.Time, to.Time)
	if err != nil {
		return c.RespondError(err)
	}
	closed, err := uc.holidays.List(c.Ctx, from.Time, to.Time)
	if err != nil {
		return c.RespondError(err)
	}

	clock := make(map[string]service.ExportDay, len(rows))
	for _, r := range rows {
		d := service.ExportDay{Verified: r.CheckInVerified}
		if t := uc.clockTime(r.CheckInTime); t != nil {
			d.CheckIn = *t
		}
		if t := uc.clockTime(r.CheckOutTime); t != nil {
			d.CheckOut = *t
		}
		clock[calendar.Truncate(r.WorkDay).String()] = d
	}

	days := service.PayrollDays(rows, closed)
	export := make([]service.ExportDay, 0, len(days))
	for _, d := range days {
		e := clock[d.Date.String()]
		e.Date, e.Status, e.Hours = d.Date, d.Status, d.Hours
		export = append(export, e)
	}

	b, err := service.ExportLedger(service.LedgerExport{
		EmployeeID: staff.EmployeeID,
		StaffName:  staff.FullName,
		Month:      m,
		Days:       export,
	})
	if err != nil {
		return c.RespondError(web.NewRequestError(err, http.StatusInternalServerError))
	}

	name := fmt.Sprintf("attendance_%s_%s.xlsx", staff.EmployeeID, m)
	return c.RespondFile(name, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", b)
}

func isNotFound(err error) bool {
	var re *web.Error
	return errors.As(err, &re) && re.Status == http.StatusNotFound
}
