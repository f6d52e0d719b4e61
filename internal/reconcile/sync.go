// Package reconcile runs the save-then-calculate sequence that turns an
// edited ledger into a payroll breakdown. Calculation never runs unless the
// save before it succeeded.
package reconcile

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"attendance/console/internal/backend"
	"attendance/console/internal/calendar"
	"attendance/console/internal/payroll"

	"github.com/pkg/errors"
)

var (
	// ErrInFlight is returned while a calculation is pending.
	ErrInFlight = errors.New("calculation already in progress")

	// ErrSaveFailed wraps the save error that stopped a calculation.
	ErrSaveFailed = errors.New("ledger could not be saved; calculation not started")
)

// Ledger is the draft that must be saved before calculating.
type Ledger interface {
	StaffID() int
	Month() calendar.Month
	Save(ctx context.Context) error
}

// Backend computes the payroll breakdown of a saved month.
type Backend interface {
	CalculatePayroll(ctx context.Context, req backend.CalculateRequest) (payroll.Breakdown, error)
}

// Sync serialises calculations for one view.
type Sync struct {
	backend Backend
	log     *slog.Logger

	mu       sync.Mutex
	inFlight bool
	last     *payroll.Breakdown
}

type Option func(*Sync)

func WithLogger(log *slog.Logger) Option {
	return func(s *Sync) { s.log = log }
}

func New(b Backend, opts ...Option) *Sync {
	s := &Sync{backend: b, log: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Calculate saves l and then asks the backend for the breakdown of its
// staff member and month.
func (s *Sync) Calculate(ctx context.Context, l Ledger) (payroll.Breakdown, error) {
	s.mu.Lock()
	if s.inFlight {
		s.mu.Unlock()
		return payroll.Breakdown{}, ErrInFlight
	}
	s.inFlight = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.inFlight = false
		s.mu.Unlock()
	}()

	if err := l.Save(ctx); err != nil {
		s.forget()
		s.log.Warn("calculation stopped by failed save", "staff_id", l.StaffID(), "month", l.Month().String(), "error", err)
		return payroll.Breakdown{}, fmt.Errorf("%w: %w", ErrSaveFailed, err)
	}

	b, err := s.backend.CalculatePayroll(ctx, backend.CalculateRequest{
		StaffID: l.StaffID(),
		Month:   l.Month(),
	})
	if err != nil {
		s.forget()
		var se *backend.SyncError
		if errors.As(err, &se) {
			return payroll.Breakdown{}, se
		}
		return payroll.Breakdown{}, &backend.SyncError{Op: "calculate payroll", Err: err}
	}

	s.mu.Lock()
	s.last = &b
	s.mu.Unlock()

	return b, nil
}

// InFlight reports whether a calculation is pending.
func (s *Sync) InFlight() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inFlight
}

// Last returns the breakdown of the last calculation if it succeeded.
func (s *Sync) Last() (payroll.Breakdown, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.last == nil {
		return payroll.Breakdown{}, false
	}
	return *s.last, true
}

func (s *Sync) forget() {
	s.mu.Lock()
	s.last = nil
	s.mu.Unlock()
}
