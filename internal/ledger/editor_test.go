package ledger

import (
	"context"
	"strconv"
	"testing"
	"time"

	"attendance/console/internal/backend"
	"attendance/console/internal/calendar"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var may2024 = calendar.NewMonth(2024, time.May)

func load(t *testing.T, b *memoryBackend, set *HolidaySet, staffID int) *Editor {
	t.Helper()
	e, err := Load(context.Background(), b, set, staffID, may2024)
	require.NoError(t, err)
	return e
}

func TestLoad_EmptyMonthDefaults(t *testing.T) {
	e := load(t, newMemoryBackend(), nil, 1)

	entries := e.Entries()
	require.Len(t, entries, 31)

	var sundays []int
	for _, en := range entries {
		assert.Equal(t, Normal, en.Status)
		assert.Zero(t, en.Hours)
		if en.Sunday {
			sundays = append(sundays, en.Day)
		}
	}
	assert.Equal(t, []int{5, 12, 19, 26}, sundays)
	assert.False(t, e.Dirty())
}

func TestScenario_EnterHoursSaveReload(t *testing.T) {
	b := newMemoryBackend()
	e := load(t, b, nil, 1)

	require.NoError(t, e.SetHours(3, "8"))
	assert.True(t, e.Dirty())
	require.NoError(t, e.Save(context.Background()))
	assert.False(t, e.Dirty())

	reloaded := load(t, b, nil, 1)
	en, err := reloaded.Entry(3)
	require.NoError(t, err)
	assert.Equal(t, 8.0, en.Hours)
	assert.Equal(t, Normal, en.Status)
}

func TestSetHours_ClampAndParse(t *testing.T) {
	tests := []struct {
		input string
		want  float64
	}{
		{"", 0},
		{"   ", 0},
		{"abc", 0},
		{"-3", 0},
		{"7.5", 7.5},
		{"13", 13},
		{"20", 13},
		{"NaN", 0},
		{"+Inf", 13},
	}

	e := load(t, newMemoryBackend(), nil, 1)
	for _, tt := range tests {
		t.Run(strconv.Quote(tt.input), func(t *testing.T) {
			require.NoError(t, e.SetHours(2, tt.input))
			en, _ := e.Entry(2)
			assert.Equal(t, tt.want, en.Hours)
		})
	}
}

func TestSetHours_IgnoredForNonWorkingDay(t *testing.T) {
	e := load(t, newMemoryBackend(), nil, 1)

	_, err := e.CycleStatus(2)
	require.NoError(t, err)
	require.NoError(t, e.SetHours(2, "6"))

	en, _ := e.Entry(2)
	assert.Equal(t, Absence, en.Status)
	assert.Zero(t, en.Hours)
	assert.False(t, e.CanEditHours(2))
}

func TestSetHours_OutOfRangeDay(t *testing.T) {
	e := load(t, newMemoryBackend(), nil, 1)

	assert.ErrorIs(t, e.SetHours(0, "8"), ErrDayOutOfRange)
	assert.ErrorIs(t, e.SetHours(32, "8"), ErrDayOutOfRange)
}

func TestCycleStatus_ClosureRestoresHours(t *testing.T) {
	e := load(t, newMemoryBackend(), nil, 1)
	require.NoError(t, e.SetHours(7, "6.5"))

	want := []Status{Absence, Holiday, Normal}
	for _, w := range want {
		got, err := e.CycleStatus(7)
		require.NoError(t, err)
		assert.Equal(t, w, got)

		en, _ := e.Entry(7)
		if w != Normal {
			assert.Zero(t, en.Hours)
		}
	}

	en, _ := e.Entry(7)
	assert.Equal(t, Normal, en.Status)
	assert.Equal(t, 6.5, en.Hours)
}

func TestCycleStatus_SundayLocked(t *testing.T) {
	e := load(t, newMemoryBackend(), nil, 1)

	_, err := e.CycleStatus(5)

	assert.ErrorIs(t, err, ErrLocked)
	assert.False(t, e.CanCycle(5))
	assert.True(t, e.CanEditHours(5))
}

func TestLoad_NormalisesPersistedRows(t *testing.T) {
	b := newMemoryBackend()
	b.put(1, backend.DayRow{Date: may2024.Date(2), TotalHours: 5, Status: "absence"})
	b.put(1, backend.DayRow{Date: may2024.Date(3), TotalHours: 30, Status: "normal"})
	b.put(1, backend.DayRow{Date: may2024.Date(4), TotalHours: 4, Status: "bogus"})

	e := load(t, b, nil, 1)

	d2, _ := e.Entry(2)
	assert.Equal(t, Entry{Day: 2, Date: may2024.Date(2), Status: Absence}, d2)
	d3, _ := e.Entry(3)
	assert.Equal(t, MaxHours, d3.Hours)
	d4, _ := e.Entry(4)
	assert.Equal(t, Normal, d4.Status)
	assert.Equal(t, 4.0, d4.Hours)
}

func TestExclusivitySurvivesReload(t *testing.T) {
	b := newMemoryBackend()
	e := load(t, b, nil, 1)
	require.NoError(t, e.SetHours(9, "8"))
	_, err := e.CycleStatus(9)
	require.NoError(t, err)
	require.NoError(t, e.Save(context.Background()))

	reloaded := load(t, b, nil, 1)
	en, _ := reloaded.Entry(9)
	assert.Equal(t, Absence, en.Status)
	assert.Zero(t, en.Hours)
}

func TestToggleCompanyHoliday_ForcesAllGrids(t *testing.T) {
	b := newMemoryBackend()
	set := NewHolidaySet()
	alice := load(t, b, set, 1)
	bob := load(t, b, set, 2)
	require.NoError(t, alice.SetHours(6, "8"))
	require.NoError(t, bob.SetHours(6, "5"))

	created, err := alice.ToggleCompanyHoliday(context.Background(), 6)
	require.NoError(t, err)
	assert.True(t, created)

	for _, e := range []*Editor{alice, bob} {
		en, _ := e.Entry(6)
		assert.Equal(t, Holiday, en.Status)
		assert.Zero(t, en.Hours)
		assert.True(t, en.CompanyHoliday)
		assert.False(t, e.CanCycle(6))
		assert.False(t, e.CanEditHours(6))

		_, err := e.CycleStatus(6)
		assert.ErrorIs(t, err, ErrLocked)
		require.NoError(t, e.SetHours(6, "9"))
		en, _ = e.Entry(6)
		assert.Zero(t, en.Hours)
	}

	assert.Contains(t, b.holidays, "2024-05-06")
	assert.Equal(t, int64(1), set.RemoteVersion())
}

func TestToggleCompanyHoliday_RemovalLeavesEveryGrid(t *testing.T) {
	b := newMemoryBackend()
	set := NewHolidaySet()
	alice := load(t, b, set, 1)
	bob := load(t, b, set, 2)
	require.NoError(t, alice.SetHours(6, "8"))
	require.NoError(t, bob.SetHours(6, "5"))

	_, err := alice.ToggleCompanyHoliday(context.Background(), 6)
	require.NoError(t, err)
	created, err := alice.ToggleCompanyHoliday(context.Background(), 6)
	require.NoError(t, err)
	require.False(t, created)

	for _, e := range []*Editor{alice, bob} {
		en, _ := e.Entry(6)
		assert.Equal(t, Holiday, en.Status)
		assert.Zero(t, en.Hours)
		assert.False(t, en.CompanyHoliday)
	}

	require.NoError(t, bob.Save(context.Background()))
	assert.Equal(t, backend.DayRow{Date: may2024.Date(6), Status: "holiday"}, b.rows[2]["2024-05-06"])

	status, err := bob.CycleStatus(6)
	require.NoError(t, err)
	assert.Equal(t, Normal, status)
	en, _ := bob.Entry(6)
	assert.Equal(t, 5.0, en.Hours)
}

func TestToggleCompanyHoliday_RemovalLeavesEntry(t *testing.T) {
	b := newMemoryBackend()
	e := load(t, b, nil, 1)
	require.NoError(t, e.SetHours(6, "8"))

	_, err := e.ToggleCompanyHoliday(context.Background(), 6)
	require.NoError(t, err)
	created, err := e.ToggleCompanyHoliday(context.Background(), 6)
	require.NoError(t, err)
	assert.False(t, created)

	en, _ := e.Entry(6)
	assert.Equal(t, Holiday, en.Status)
	assert.Zero(t, en.Hours)
	assert.False(t, en.CompanyHoliday)
	assert.True(t, e.CanCycle(6))
	assert.NotContains(t, b.holidays, "2024-05-06")

	status, err := e.CycleStatus(6)
	require.NoError(t, err)
	assert.Equal(t, Normal, status)
	en, _ = e.Entry(6)
	assert.Equal(t, 8.0, en.Hours)
}

func TestToggleCompanyHoliday_RollbackOnFailure(t *testing.T) {
	b := newMemoryBackend()
	b.holidayErr = errors.New("503 service unavailable")
	set := NewHolidaySet()
	e := load(t, b, set, 1)
	require.NoError(t, e.SetHours(6, "8"))
	require.NoError(t, e.Save(context.Background()))
	version := set.Version()

	_, err := e.ToggleCompanyHoliday(context.Background(), 6)

	var se *backend.SyncError
	require.True(t, errors.As(err, &se))
	assert.False(t, set.Has(may2024.Date(6)))
	en, _ := e.Entry(6)
	assert.Equal(t, Normal, en.Status)
	assert.Equal(t, 8.0, en.Hours)
	assert.False(t, e.Dirty())
	assert.Greater(t, set.Version(), version)
}

func TestToggleCompanyHoliday_RemovalRollback(t *testing.T) {
	b := newMemoryBackend()
	b.holidays["2024-05-15"] = backend.Holiday{Date: may2024.Date(15), Description: "석가탄신일"}
	set := NewHolidaySet()
	e := load(t, b, set, 1)
	b.holidayErr = errors.New("connection refused")

	_, err := e.ToggleCompanyHoliday(context.Background(), 15)

	require.Error(t, err)
	h, ok := set.Get(may2024.Date(15))
	require.True(t, ok)
	assert.Equal(t, "석가탄신일", h.Description)
}

func TestSave_FailureKeepsDraft(t *testing.T) {
	b := newMemoryBackend()
	b.saveErr = errors.New("500 internal server error")
	e := load(t, b, nil, 1)
	require.NoError(t, e.SetHours(10, "9"))

	err := e.Save(context.Background())

	var se *backend.SyncError
	require.True(t, errors.As(err, &se))
	assert.True(t, e.Dirty())
	en, _ := e.Entry(10)
	assert.Equal(t, 9.0, en.Hours)

	b.saveErr = nil
	require.NoError(t, e.Save(context.Background()))
	assert.False(t, e.Dirty())
	assert.Equal(t, 9.0, b.rows[1]["2024-05-10"].TotalHours)
}

func TestSave_SendsWholeMonth(t *testing.T) {
	b := newMemoryBackend()
	b.holidays["2024-05-15"] = backend.Holiday{Date: may2024.Date(15)}
	e := load(t, b, nil, 1)

	require.NoError(t, e.Save(context.Background()))

	assert.Len(t, b.rows[1], 31)
	assert.Equal(t, "holiday", b.rows[1]["2024-05-15"].Status)
}

func TestSave_SecondSaveWhileInFlight(t *testing.T) {
	b := newMemoryBackend()
	b.block = make(chan struct{})
	e := load(t, b, nil, 1)

	done := make(chan error, 1)
	go func() { done <- e.Save(context.Background()) }()
	require.Eventually(t, e.Saving, time.Second, time.Millisecond)

	assert.ErrorIs(t, e.Save(context.Background()), ErrInFlight)

	close(b.block)
	require.NoError(t, <-done)
	assert.Equal(t, 1, b.saves)
}

func TestLedger_Properties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("hours are always within [0, 13]", prop.ForAll(
		func(v float64) bool {
			h := ParseHours(strconv.FormatFloat(v, 'f', -1, 64))
			return h >= 0 && h <= MaxHours
		},
		gen.Float64(),
	))

	properties.Property("cycling three times returns to the start", prop.ForAll(
		func(n int) bool {
			s := Status(n)
			return s.Next().Next().Next() == s
		},
		gen.IntRange(int(Normal), int(Holiday)),
	))

	properties.Property("non-working days carry no hours after any edit sequence", prop.ForAll(
		func(days []int, ops []bool, values []float64) bool {
			e, err := Load(context.Background(), newMemoryBackend(), nil, 1, may2024)
			if err != nil {
				return false
			}
			for i, day := range days {
				if i < len(ops) && ops[i] {
					_, _ = e.CycleStatus(day)
					continue
				}
				v := 0.0
				if i < len(values) {
					v = values[i]
				}
				_ = e.SetHours(day, strconv.FormatFloat(v, 'f', 2, 64))
			}
			for _, en := range e.Entries() {
				if en.Hours < 0 || en.Hours > MaxHours {
					return false
				}
				if en.Status != Normal && en.Hours != 0 {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.IntRange(1, 31)),
		gen.SliceOf(gen.Bool()),
		gen.SliceOf(gen.Float64Range(-50, 50)),
	))

	properties.TestingRun(t)
}
