// Package ledger is the editable month of attendance for one staff member:
// one entry per calendar day with hours and a status, company holidays
// forced on top, saved to the backend as one batch.
package ledger

import (
	"context"
	"log/slog"
	"sync"

	"attendance/console/internal/backend"
	"attendance/console/internal/calendar"

	"github.com/Azure/go-autorest/autorest/date"
	"github.com/pkg/errors"
)

// DefaultHolidayDescription is used for holidays created from the grid.
const DefaultHolidayDescription = "회사 휴무일"

var (
	// ErrLocked is returned when a day's status can not be changed.
	ErrLocked = errors.New("day is locked")

	// ErrInFlight is returned while a conflicting request is pending.
	ErrInFlight = errors.New("ledger request already in progress")

	// ErrDayOutOfRange is returned for a day outside the month.
	ErrDayOutOfRange = errors.New("day out of range")
)

// Backend is the part of the backend of record the editor talks to.
type Backend interface {
	Attendance(ctx context.Context, staffID int, month calendar.Month) ([]backend.DayRow, error)
	Holidays(ctx context.Context, month calendar.Month) (backend.HolidayList, error)
	CreateHoliday(ctx context.Context, h backend.Holiday) error
	DeleteHoliday(ctx context.Context, d date.Date) error
	SaveAttendance(ctx context.Context, req backend.SaveRequest) error
}

// Editor owns the working draft of one (staff member, month) ledger. The
// draft only reaches the backend through Save; company holiday toggles are
// persisted immediately.
type Editor struct {
	staffID  int
	month    calendar.Month
	backend  Backend
	holidays *HolidaySet
	log      *slog.Logger

	mu       sync.Mutex
	entries  []Entry
	stash    map[int]float64
	revision int
	saved    int
	saving   bool
	toggling map[int]bool
	// seen is the holiday set version the entries have been forced up to.
	seen int64
}

type Option func(*Editor)

func WithLogger(log *slog.Logger) Option {
	return func(e *Editor) { e.log = log }
}

// Load reads the persisted ledger and the company holidays of month and
// builds the grid. Days without a row default to Normal with no hours.
// holidays may be shared between editors; nil creates a private set.
func Load(ctx context.Context, b Backend, holidays *HolidaySet, staffID int, month calendar.Month, opts ...Option) (*Editor, error) {
	if holidays == nil {
		holidays = NewHolidaySet()
	}

	e := &Editor{
		staffID:  staffID,
		month:    month,
		backend:  b,
		holidays: holidays,
		log:      slog.Default(),
		stash:    make(map[int]float64),
		toggling: make(map[int]bool),
	}
	for _, opt := range opts {
		opt(e)
	}

	rows, err := b.Attendance(ctx, staffID, month)
	if err != nil {
		return nil, syncError("load attendance", err)
	}

	list, err := b.Holidays(ctx, month)
	if err != nil {
		return nil, syncError("load holidays", err)
	}
	holidays.Replace(month, list)
	e.seen = holidays.Version()

	e.entries = make([]Entry, month.Days())
	for i := range e.entries {
		d := month.Date(i + 1)
		e.entries[i] = Entry{
			Day:    i + 1,
			Date:   d,
			Sunday: calendar.IsSunday(d),
		}
	}

	for _, row := range rows {
		if !month.Contains(row.Date) {
			continue
		}
		status, err := ParseStatus(row.Status)
		if err != nil {
			e.log.Warn("ignoring unknown attendance status", "staff_id", staffID, "date", row.Date.String(), "status", row.Status)
		}
		i := row.Date.Day() - 1
		e.entries[i].Status = status
		e.entries[i].Hours = row.TotalHours
		e.entries[i] = e.entries[i].normalise()
	}

	for i := range e.entries {
		if holidays.Has(e.entries[i].Date) {
			e.entries[i].Status = Holiday
			e.entries[i].Hours = 0
		}
	}

	return e, nil
}

func (e *Editor) StaffID() int {
	return e.staffID
}

func (e *Editor) Month() calendar.Month {
	return e.month
}

// Holidays returns the shared company holiday set.
func (e *Editor) Holidays() *HolidaySet {
	return e.holidays
}

// Entries returns the grid as it should be shown.
func (e *Editor) Entries() []Entry {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.sync()

	out := make([]Entry, len(e.entries))
	for i := range e.entries {
		out[i] = e.view(i)
	}
	return out
}

// Entry returns one day of the grid.
func (e *Editor) Entry(day int) (Entry, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.sync()

	i, err := e.index(day)
	if err != nil {
		return Entry{}, err
	}
	return e.view(i), nil
}

// CanCycle reports whether the status control of day is enabled.
func (e *Editor) CanCycle(day int) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.sync()

	i, err := e.index(day)
	if err != nil {
		return false
	}
	v := e.view(i)
	return !v.Sunday && !v.CompanyHoliday
}

// CanEditHours reports whether the hour input of day is enabled.
func (e *Editor) CanEditHours(day int) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.sync()

	i, err := e.index(day)
	if err != nil {
		return false
	}
	v := e.view(i)
	return v.Status.Working() && !v.CompanyHoliday
}

// SetHours sets the hours of day from user input. Empty or invalid input
// is 0 and the value is clamped to [0, MaxHours]. Days that do not carry
// hours are left unchanged.
func (e *Editor) SetHours(day int, input string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.sync()

	i, err := e.index(day)
	if err != nil {
		return err
	}

	v := e.view(i)
	if !v.Status.Working() || v.CompanyHoliday {
		return nil
	}

	hours := ParseHours(input)
	if e.entries[i].Hours != hours {
		e.entries[i].Hours = hours
		e.revision++
	}
	return nil
}

// CycleStatus moves day to the next status. Leaving Normal clears the hours
// and remembers them; returning to Normal restores them.
func (e *Editor) CycleStatus(day int) (Status, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.sync()

	i, err := e.index(day)
	if err != nil {
		return Normal, err
	}

	v := e.view(i)
	if v.Sunday {
		return v.Status, errors.Wrap(ErrLocked, "sunday")
	}
	if v.CompanyHoliday {
		return v.Status, errors.Wrap(ErrLocked, "company holiday")
	}

	cur := e.entries[i]
	next := cur.Status.Next()

	switch next {
	case Normal:
		cur.Hours = e.stash[day]
		delete(e.stash, day)
	case Absence, Holiday:
		if cur.Status.Working() && cur.Hours > 0 {
			e.stash[day] = cur.Hours
		}
		cur.Hours = 0
	}
	cur.Status = next

	e.entries[i] = cur.normalise()
	e.revision++

	return next, nil
}

// ToggleCompanyHoliday creates or removes the company holiday on day. The
// change is applied locally first and persisted right away; when persisting
// fails the local change is rolled back and the error returned. Creating a
// holiday forces the day to Holiday with no hours; removing one leaves the
// day as it is. It reports whether a holiday now exists on day.
func (e *Editor) ToggleCompanyHoliday(ctx context.Context, day int) (bool, error) {
	e.mu.Lock()
	e.sync()

	i, err := e.index(day)
	if err != nil {
		e.mu.Unlock()
		return false, err
	}
	if e.toggling[day] {
		e.mu.Unlock()
		return false, ErrInFlight
	}

	d := e.entries[i].Date
	prev := e.entries[i]
	prevStash, hadStash := e.stash[day]
	prevRevision := e.revision

	removed, existed := e.holidays.Remove(d)
	create := !existed
	if create {
		e.holidays.Add(backend.Holiday{Date: d, Description: DefaultHolidayDescription})
		if prev.Status.Working() && prev.Hours > 0 {
			e.stash[day] = prev.Hours
		}
		e.entries[i].Status = Holiday
		e.entries[i].Hours = 0
		e.revision++
	}
	e.toggling[day] = true
	e.mu.Unlock()

	if create {
		err = e.backend.CreateHoliday(ctx, backend.Holiday{Date: d, Description: DefaultHolidayDescription})
	} else {
		err = e.backend.DeleteHoliday(ctx, d)
	}

	e.mu.Lock()
	delete(e.toggling, day)
	if err != nil {
		if create {
			e.sync()
			e.holidays.Remove(d)
			e.entries[i] = prev
			if hadStash {
				e.stash[day] = prevStash
			} else {
				delete(e.stash, day)
			}
			e.revision = prevRevision
		} else {
			e.holidays.Add(removed)
		}
		e.mu.Unlock()
		return existed, syncError("toggle company holiday", err)
	}
	e.mu.Unlock()

	e.refetchHolidays(ctx)

	return create, nil
}

func (e *Editor) refetchHolidays(ctx context.Context) {
	list, err := e.backend.Holidays(ctx, e.month)
	if err != nil {
		e.log.Warn("refetching company holidays failed", "month", e.month.String(), "error", err)
		return
	}
	e.holidays.Replace(e.month, list)
}

// Save submits every day of the draft as one batch. On failure the draft is
// kept as it is so the save can be retried.
func (e *Editor) Save(ctx context.Context) error {
	e.mu.Lock()
	if e.saving {
		e.mu.Unlock()
		return ErrInFlight
	}
	e.saving = true
	e.sync()
	revision := e.revision

	req := backend.SaveRequest{
		StaffID:    e.staffID,
		Month:      e.month,
		DailyHours: make([]backend.DailyHours, 0, len(e.entries)),
	}
	for i := range e.entries {
		v := e.view(i)
		req.DailyHours = append(req.DailyHours, backend.DailyHours{
			Date:   v.Date,
			Hours:  v.Hours,
			Status: v.Status.String(),
		})
	}
	e.mu.Unlock()

	err := e.backend.SaveAttendance(ctx, req)

	e.mu.Lock()
	defer e.mu.Unlock()
	e.saving = false
	if err != nil {
		return syncError("save attendance", err)
	}
	e.saved = revision
	return nil
}

// Dirty reports whether the draft has edits that are not saved.
func (e *Editor) Dirty() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.revision != e.saved
}

// Saving reports whether a save is in flight.
func (e *Editor) Saving() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.saving
}

// TotalHours sums the hours of the grid as shown.
func (e *Editor) TotalHours() float64 {
	var total float64
	for _, en := range e.Entries() {
		total += en.Hours
	}
	return total
}

func (e *Editor) index(day int) (int, error) {
	if day < 1 || day > len(e.entries) {
		return 0, errors.Wrapf(ErrDayOutOfRange, "day %d of %s", day, e.month)
	}
	return day - 1, nil
}

// sync forces every day that became a company holiday since the last call
// to Holiday with no hours, stashing Normal hours so that cycling back to
// Normal after the holiday is removed restores them. Callers hold mu.
func (e *Editor) sync() {
	added, version := e.holidays.AddedSince(e.seen)
	e.seen = version
	for _, d := range added {
		if !e.month.Contains(d) {
			continue
		}
		i := d.Day() - 1
		en := e.entries[i]
		if en.Status == Holiday && en.Hours == 0 {
			continue
		}
		if en.Status.Working() && en.Hours > 0 {
			e.stash[en.Day] = en.Hours
		}
		e.entries[i].Status = Holiday
		e.entries[i].Hours = 0
	}
}

// view is entry i with the shared company holidays applied. Callers hold mu.
func (e *Editor) view(i int) Entry {
	v := e.entries[i]
	if e.holidays.Has(v.Date) {
		v.CompanyHoliday = true
		v.Status = Holiday
		v.Hours = 0
	}
	return v
}

func syncError(op string, err error) error {
	var se *backend.SyncError
	if errors.As(err, &se) {
		return se
	}
	return &backend.SyncError{Op: op, Err: err}
}
