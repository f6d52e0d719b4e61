// Package geo acquires a device position for clock actions.
//
// Acquisition runs an ordered list of stages, each a set of device options.
// A stage that times out or reports the position unavailable falls through
// to the next stage; a permission or capability failure ends acquisition
// immediately.
package geo

import (
	"context"
	"log/slog"
	"time"

	"github.com/pkg/errors"
)

// Reading is a single position fix.
type Reading struct {
	Lat      float64 `json:"lat"`
	Lng      float64 `json:"lng"`
	Accuracy float64 `json:"accuracy"`
}

// Options mirror the knobs of a device location API.
type Options struct {
	HighAccuracy bool
	Timeout      time.Duration
	MaximumAge   time.Duration
}

// Device is the platform location capability.
type Device interface {
	CurrentPosition(ctx context.Context, opts Options) (Reading, error)
}

// Stage is one attempt of the acquisition strategy.
type Stage struct {
	Name    string
	Options Options
}

// DefaultStages tries a GPS grade fix first and falls back to a network
// grade fix.
var DefaultStages = []Stage{
	{
		Name:    "high",
		Options: Options{HighAccuracy: true, Timeout: 15 * time.Second, MaximumAge: 30 * time.Second},
	},
	{
		Name:    "low",
		Options: Options{HighAccuracy: false, Timeout: 10 * time.Second, MaximumAge: 60 * time.Second},
	},
}

// EventType marks a step of an acquisition.
type EventType int

const (
	StageStarted EventType = iota + 1
	StageFailed
	Acquired
)

// Event is reported to the Observer for every step.
type Event struct {
	Type    EventType
	Stage   string
	Kind    Kind
	Reading Reading
}

// Banner is the status line for the event.
func (e Event) Banner() string {
	switch e.Type {
	case StageStarted:
		if e.Stage == "high" {
			return "정확한 위치를 확인하는 중입니다…"
		}
		return "네트워크 위치로 다시 확인하는 중입니다…"
	case StageFailed:
		return Message(e.Kind)
	case Acquired:
		return "위치를 확인했습니다."
	}
	return ""
}

// Observer receives acquisition events.
type Observer func(Event)

// Locator runs the staged acquisition strategy against a Device.
type Locator struct {
	device  Device
	stages  []Stage
	observe Observer
	log     *slog.Logger
}

type Option func(*Locator)

func WithStages(stages ...Stage) Option {
	return func(l *Locator) { l.stages = stages }
}

func WithObserver(o Observer) Option {
	return func(l *Locator) { l.observe = o }
}

func WithLogger(log *slog.Logger) Option {
	return func(l *Locator) { l.log = log }
}

// NewLocator returns a Locator for device. A nil device makes every
// acquisition fail with Unsupported.
func NewLocator(device Device, opts ...Option) *Locator {
	l := &Locator{
		device: device,
		stages: DefaultStages,
		log:    slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Acquire returns the first successful reading of the stages. The returned
// error is always an *Error.
func (l *Locator) Acquire(ctx context.Context) (Reading, error) {
	if l.device == nil {
		err := &Error{Kind: Unsupported}
		l.emit(Event{Type: StageFailed, Kind: Unsupported})
		return Reading{}, err
	}

	var last *Error
	for _, stage := range l.stages {
		if err := ctx.Err(); err != nil {
			if last == nil {
				last = &Error{Kind: Timeout, Stage: stage.Name, Err: err}
			}
			break
		}

		l.emit(Event{Type: StageStarted, Stage: stage.Name})

		r, err := l.attempt(ctx, stage)
		if err == nil {
			l.emit(Event{Type: Acquired, Stage: stage.Name, Reading: r})
			return r, nil
		}

		l.log.Debug("position attempt failed", "stage", stage.Name, "kind", err.Kind.String(), "error", err.Err)
		l.emit(Event{Type: StageFailed, Stage: stage.Name, Kind: err.Kind})

		last = err
		if !err.Kind.retryable() {
			break
		}
	}

	if last == nil {
		last = &Error{Kind: PositionUnavailable, Err: errors.New("no acquisition stages configured")}
	}
	return Reading{}, last
}

type result struct {
	reading Reading
	err     error
}

func (l *Locator) attempt(ctx context.Context, stage Stage) (Reading, *Error) {
	sctx := ctx
	if stage.Options.Timeout > 0 {
		var cancel context.CancelFunc
		sctx, cancel = context.WithTimeout(ctx, stage.Options.Timeout)
		defer cancel()
	}

	done := make(chan result, 1)
	go func() {
		r, err := l.device.CurrentPosition(sctx, stage.Options)
		done <- result{reading: r, err: err}
	}()

	select {
	case res := <-done:
		if res.err != nil {
			return Reading{}, classify(stage.Name, res.err)
		}
		if !valid(res.reading) {
			return Reading{}, &Error{Kind: PositionUnavailable, Stage: stage.Name, Err: errors.Errorf("invalid coordinates %v,%v", res.reading.Lat, res.reading.Lng)}
		}
		return res.reading, nil
	case <-sctx.Done():
		return Reading{}, &Error{Kind: Timeout, Stage: stage.Name, Err: sctx.Err()}
	}
}

func classify(stage string, err error) *Error {
	var ge *Error
	if errors.As(err, &ge) {
		return &Error{Kind: ge.Kind, Stage: stage, Err: ge.Err}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &Error{Kind: Timeout, Stage: stage, Err: err}
	}
	return &Error{Kind: PositionUnavailable, Stage: stage, Err: err}
}

func valid(r Reading) bool {
	return r.Lat >= -90 && r.Lat <= 90 && r.Lng >= -180 && r.Lng <= 180
}

func (l *Locator) emit(e Event) {
	if l.observe != nil {
		l.observe(e)
	}
}
