// Package checkin tracks the daily check-in/check-out lifecycle of one staff
// member. The backend decides every transition; the machine only refuses
// actions that can not be valid and reports the backend's verdict.
package checkin

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"attendance/console/internal/backend"
	"attendance/console/internal/calendar"
	"attendance/console/internal/geo"

	"github.com/Azure/go-autorest/autorest/date"
	"github.com/pkg/errors"
)

var (
	// ErrInvalidTransition is returned for an action the current state does
	// not allow. No request is sent.
	ErrInvalidTransition = errors.New("action not allowed in current attendance state")

	// ErrInFlight is returned while another action is pending.
	ErrInFlight = errors.New("attendance action already in progress")
)

// State is the position in the daily lifecycle.
type State int

const (
	NotCheckedIn State = iota
	CheckedIn
	CheckedOut
)

func (s State) String() string {
	switch s {
	case NotCheckedIn:
		return "not_checked_in"
	case CheckedIn:
		return "checked_in"
	case CheckedOut:
		return "checked_out"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Record is the live clock state for one day.
type Record = backend.AttendanceStatus

// StateOf derives the lifecycle state from a record.
func StateOf(r Record) State {
	switch {
	case r.CheckedOut:
		return CheckedOut
	case r.CheckedIn:
		return CheckedIn
	}
	return NotCheckedIn
}

// Backend is the part of the backend of record the machine talks to.
type Backend interface {
	AttendanceStatus(ctx context.Context, staffID int) (backend.AttendanceStatus, error)
	Clock(ctx context.Context, req backend.ClockRequest) (backend.ClockVerdict, error)
}

// Locator acquires the position submitted with an action.
type Locator interface {
	Acquire(ctx context.Context) (geo.Reading, error)
}

// RejectedError is an error verdict: the backend refused the action and
// reported why, usually with the GPS check that failed.
type RejectedError struct {
	Action  backend.Action
	Message string
	GPS     backend.GPS
}

func (e *RejectedError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("%s rejected", e.Action)
}

// Machine is the attendance state of one staff member.
type Machine struct {
	staffID int
	backend Backend
	locator Locator
	now     func() time.Time
	loc     *time.Location
	log     *slog.Logger

	mu       sync.Mutex
	record   Record
	day      date.Date
	verdict  *backend.ClockVerdict
	inFlight bool
}

type Option func(*Machine)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(m *Machine) { m.now = now }
}

// WithLocation sets the store time zone that decides the calendar day.
func WithLocation(loc *time.Location) Option {
	return func(m *Machine) { m.loc = loc }
}

func WithLogger(log *slog.Logger) Option {
	return func(m *Machine) { m.log = log }
}

// New returns a machine in the NotCheckedIn state. Call Refresh to load the
// persisted state.
func New(staffID int, b Backend, l Locator, opts ...Option) *Machine {
	m := &Machine{
		staffID: staffID,
		backend: b,
		locator: l,
		now:     time.Now,
		loc:     time.Local,
		log:     slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// State returns the current lifecycle state. A record from a previous day
// no longer counts.
func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return StateOf(m.current())
}

// Record returns today's record.
func (m *Machine) Record() Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current()
}

// Verdict returns the verdict of the last action, success or rejection.
func (m *Machine) Verdict() (backend.ClockVerdict, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.verdict == nil {
		return backend.ClockVerdict{}, false
	}
	return *m.verdict, true
}

// InFlight reports whether an action or refresh is pending.
func (m *Machine) InFlight() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.inFlight
}

// Refresh loads today's record from the backend.
func (m *Machine) Refresh(ctx context.Context) error {
	if err := m.begin(nil); err != nil {
		return err
	}
	defer m.end()

	return m.refresh(ctx)
}

// CheckIn acquires the position and submits a check-in.
func (m *Machine) CheckIn(ctx context.Context) (backend.ClockVerdict, error) {
	return m.act(ctx, backend.ActionCheckIn)
}

// CheckOut acquires the position and submits a check-out.
func (m *Machine) CheckOut(ctx context.Context) (backend.ClockVerdict, error) {
	return m.act(ctx, backend.ActionCheckOut)
}

func (m *Machine) act(ctx context.Context, action backend.Action) (backend.ClockVerdict, error) {
	if err := m.begin(func(s State) error { return allowed(action, s) }); err != nil {
		return backend.ClockVerdict{}, err
	}
	defer m.end()

	reading, err := m.locator.Acquire(ctx)
	if err != nil {
		return backend.ClockVerdict{}, err
	}

	verdict, err := m.backend.Clock(ctx, backend.ClockRequest{
		StaffID:   m.staffID,
		Action:    action,
		Latitude:  reading.Lat,
		Longitude: reading.Lng,
	})
	if err != nil {
		return backend.ClockVerdict{}, m.failed(action, err)
	}

	m.apply(action, verdict)

	if err := m.refresh(ctx); err != nil {
		m.log.Warn("attendance refresh after action failed", "staff_id", m.staffID, "action", action, "error", err)
	}

	return verdict, nil
}

func allowed(action backend.Action, s State) error {
	switch action {
	case backend.ActionCheckIn:
		if s == NotCheckedIn {
			return nil
		}
	case backend.ActionCheckOut:
		if s == CheckedIn {
			return nil
		}
	}
	return errors.Wrapf(ErrInvalidTransition, "%s from %s", action, s)
}

// begin marks an operation in flight after check accepts the state.
func (m *Machine) begin(check func(State) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.inFlight {
		return ErrInFlight
	}
	if check != nil {
		if err := check(StateOf(m.current())); err != nil {
			return err
		}
	}
	m.inFlight = true
	return nil
}

func (m *Machine) end() {
	m.mu.Lock()
	m.inFlight = false
	m.mu.Unlock()
}

func (m *Machine) failed(action backend.Action, err error) error {
	var se *backend.SyncError
	if !errors.As(err, &se) {
		return &backend.SyncError{Op: string(action), Err: err}
	}
	if se.GPS == nil || se.Retryable() {
		return se
	}

	rejected := &RejectedError{Action: action, Message: se.Message, GPS: *se.GPS}

	m.mu.Lock()
	m.verdict = &backend.ClockVerdict{Status: backend.StatusError, Message: se.Message, GPS: *se.GPS}
	m.mu.Unlock()

	return rejected
}

func (m *Machine) apply(action backend.Action, verdict backend.ClockVerdict) {
	now := m.now().In(m.loc)
	at := now.Format("15:04")
	distance := verdict.GPS.Distance

	m.mu.Lock()
	defer m.mu.Unlock()

	r := m.current()
	switch action {
	case backend.ActionCheckIn:
		r.CheckedIn = true
		r.CheckInTime = &at
		r.CheckInVerified = verdict.GPS.Verified
		r.CheckInDistance = &distance
	case backend.ActionCheckOut:
		r.CheckedOut = true
		r.CheckOutTime = &at
		r.CheckOutVerified = verdict.GPS.Verified
		r.CheckOutDistance = &distance
	}

	m.record = r
	m.day = calendar.Truncate(now)
	m.verdict = &verdict
}

func (m *Machine) refresh(ctx context.Context) error {
	r, err := m.backend.AttendanceStatus(ctx, m.staffID)
	if err != nil {
		var se *backend.SyncError
		if errors.As(err, &se) {
			return se
		}
		return &backend.SyncError{Op: "attendance status", Err: err}
	}

	if r.CheckedOut && !r.CheckedIn {
		m.log.Warn("attendance status checked out without check-in", "staff_id", m.staffID)
		r.CheckedIn = true
	}

	m.mu.Lock()
	m.record = r
	m.day = calendar.Truncate(m.now().In(m.loc))
	m.mu.Unlock()

	return nil
}

// current returns the record if it belongs to today. Callers hold mu.
func (m *Machine) current() Record {
	today := calendar.Truncate(m.now().In(m.loc))
	if !m.day.Equal(today.Time) {
		return Record{}
	}
	return m.record
}
