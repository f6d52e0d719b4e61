package ledger

import (
	"context"
	"sort"
	"sync"

	"attendance/console/internal/backend"
	"attendance/console/internal/calendar"

	"github.com/Azure/go-autorest/autorest/date"
)

// memoryBackend keeps rows and holidays the way the backend of record does.
type memoryBackend struct {
	mu         sync.Mutex
	rows       map[int]map[string]backend.DayRow
	holidays   map[string]backend.Holiday
	version    int64
	saveErr    error
	holidayErr error
	saves      int
	block      chan struct{}
}

func newMemoryBackend() *memoryBackend {
	return &memoryBackend{
		rows:     make(map[int]map[string]backend.DayRow),
		holidays: make(map[string]backend.Holiday),
	}
}

func (b *memoryBackend) Attendance(ctx context.Context, staffID int, month calendar.Month) ([]backend.DayRow, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	var out []backend.DayRow
	for _, r := range b.rows[staffID] {
		if month.Contains(r.Date) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date.Time) })
	return out, nil
}

func (b *memoryBackend) Holidays(ctx context.Context, month calendar.Month) (backend.HolidayList, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	list := backend.HolidayList{Version: b.version}
	for _, h := range b.holidays {
		if month.Contains(h.Date) {
			list.Holidays = append(list.Holidays, h)
		}
	}
	return list, nil
}

func (b *memoryBackend) CreateHoliday(ctx context.Context, h backend.Holiday) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.holidayErr != nil {
		return b.holidayErr
	}
	b.holidays[h.Date.String()] = h
	b.version++
	return nil
}

func (b *memoryBackend) DeleteHoliday(ctx context.Context, d date.Date) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.holidayErr != nil {
		return b.holidayErr
	}
	delete(b.holidays, d.String())
	b.version++
	return nil
}

func (b *memoryBackend) SaveAttendance(ctx context.Context, req backend.SaveRequest) error {
	if b.block != nil {
		<-b.block
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.saves++
	if b.saveErr != nil {
		return b.saveErr
	}
	if b.rows[req.StaffID] == nil {
		b.rows[req.StaffID] = make(map[string]backend.DayRow)
	}
	for _, d := range req.DailyHours {
		b.rows[req.StaffID][d.Date.String()] = backend.DayRow{Date: d.Date, TotalHours: d.Hours, Status: d.Status}
	}
	return nil
}

func (b *memoryBackend) put(staffID int, row backend.DayRow) {
	if b.rows[staffID] == nil {
		b.rows[staffID] = make(map[string]backend.DayRow)
	}
	b.rows[staffID][row.Date.String()] = row
}
