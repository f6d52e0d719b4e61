package geo

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type step struct {
	reading Reading
	err     error
	block   bool
}

type fakeDevice struct {
	mu    sync.Mutex
	steps []step
	calls []Options
}

func (d *fakeDevice) recorded() []Options {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]Options(nil), d.calls...)
}

func (d *fakeDevice) CurrentPosition(ctx context.Context, opts Options) (Reading, error) {
	d.mu.Lock()
	i := len(d.calls)
	d.calls = append(d.calls, opts)
	d.mu.Unlock()
	if i >= len(d.steps) {
		return Reading{}, errors.New("unexpected call")
	}
	s := d.steps[i]
	if s.block {
		<-ctx.Done()
		return Reading{}, ctx.Err()
	}
	return s.reading, s.err
}

var store = Reading{Lat: 37.5665, Lng: 126.9780, Accuracy: 12}

func TestAcquire_HighAccuracySucceeds(t *testing.T) {
	dev := &fakeDevice{steps: []step{{reading: store}}}

	r, err := NewLocator(dev).Acquire(context.Background())

	require.NoError(t, err)
	assert.Equal(t, store, r)
	calls := dev.recorded()
	require.Len(t, calls, 1)
	assert.True(t, calls[0].HighAccuracy)
	assert.Equal(t, 15*time.Second, calls[0].Timeout)
	assert.Equal(t, 30*time.Second, calls[0].MaximumAge)
}

func TestAcquire_FallsBackOnUnavailable(t *testing.T) {
	dev := &fakeDevice{steps: []step{
		{err: NewError(PositionUnavailable, errors.New("no fix"))},
		{reading: store},
	}}

	var events []Event
	r, err := NewLocator(dev, WithObserver(func(e Event) { events = append(events, e) })).Acquire(context.Background())

	require.NoError(t, err)
	assert.Equal(t, store, r)
	calls := dev.recorded()
	require.Len(t, calls, 2)
	assert.False(t, calls[1].HighAccuracy)
	assert.Equal(t, 10*time.Second, calls[1].Timeout)
	assert.Equal(t, 60*time.Second, calls[1].MaximumAge)

	types := make([]EventType, 0, len(events))
	for _, e := range events {
		types = append(types, e.Type)
	}
	assert.Equal(t, []EventType{StageStarted, StageFailed, StageStarted, Acquired}, types)
	assert.Equal(t, "low", events[2].Stage)
}

func TestAcquire_PermissionDeniedShortCircuits(t *testing.T) {
	dev := &fakeDevice{steps: []step{{err: NewError(PermissionDenied, nil)}}}

	_, err := NewLocator(dev).Acquire(context.Background())

	kind, ok := KindOf(err)
	require.True(t, ok)
	assert.Equal(t, PermissionDenied, kind)
	assert.Len(t, dev.recorded(), 1)

	var ge *Error
	require.True(t, errors.As(err, &ge))
	assert.Contains(t, ge.Message(), "위치 권한이 거부되었습니다")
}

func TestAcquire_PermissionDeniedOnSecondStage(t *testing.T) {
	dev := &fakeDevice{steps: []step{
		{err: NewError(Timeout, nil)},
		{err: NewError(PermissionDenied, nil)},
	}}

	_, err := NewLocator(dev).Acquire(context.Background())

	kind, _ := KindOf(err)
	assert.Equal(t, PermissionDenied, kind)
}

func TestAcquire_StageTimeoutIsEnforced(t *testing.T) {
	dev := &fakeDevice{steps: []step{{block: true}, {block: true}}}
	stages := []Stage{
		{Name: "high", Options: Options{HighAccuracy: true, Timeout: 10 * time.Millisecond}},
		{Name: "low", Options: Options{Timeout: 10 * time.Millisecond}},
	}

	_, err := NewLocator(dev, WithStages(stages...)).Acquire(context.Background())

	kind, ok := KindOf(err)
	require.True(t, ok)
	assert.Equal(t, Timeout, kind)
	assert.Len(t, dev.recorded(), 2)
	assert.Contains(t, Message(kind), "창가")
}

func TestAcquire_UnclassifiedDeviceErrorIsUnavailable(t *testing.T) {
	dev := &fakeDevice{steps: []step{
		{err: errors.New("sensor glitch")},
		{reading: Reading{Lat: 200, Lng: 0}},
	}}

	_, err := NewLocator(dev).Acquire(context.Background())

	kind, _ := KindOf(err)
	assert.Equal(t, PositionUnavailable, kind)
	assert.Len(t, dev.recorded(), 2)
}

func TestAcquire_NoDevice(t *testing.T) {
	_, err := NewLocator(nil).Acquire(context.Background())

	kind, _ := KindOf(err)
	assert.Equal(t, Unsupported, kind)
}

func TestAcquire_UnsupportedIsTerminal(t *testing.T) {
	dev := &fakeDevice{steps: []step{{err: NewError(Unsupported, nil)}}}

	_, err := NewLocator(dev).Acquire(context.Background())

	kind, _ := KindOf(err)
	assert.Equal(t, Unsupported, kind)
	assert.Len(t, dev.recorded(), 1)
}

func TestDistance(t *testing.T) {
	assert.InDelta(t, 0, Distance(store.Lat, store.Lng, store.Lat, store.Lng), 1e-9)

	// One thousandth of a degree of latitude is about 111 m.
	d := Distance(37.5665, 126.9780, 37.5675, 126.9780)
	assert.InDelta(t, 111.2, d, 0.5)

	ok, _ := Within(37.5675, 126.9780, 37.5665, 126.9780, 100)
	assert.False(t, ok)
	ok, _ = Within(37.5670, 126.9780, 37.5665, 126.9780, 100)
	assert.True(t, ok)
}
