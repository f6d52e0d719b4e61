package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"attendance/console/internal/backend"
	"attendance/console/internal/calendar"
	"attendance/console/internal/checkin"
	"attendance/console/internal/ledger"
	"attendance/console/internal/reconcile"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	_ checkin.Backend   = (*Client)(nil)
	_ ledger.Backend    = (*Client)(nil)
	_ reconcile.Backend = (*Client)(nil)
)

func newServer(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(srv.URL+"/api/v1", WithToken("secret"))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestAttendanceStatus(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/v1/attendance/status", r.URL.Path)
		assert.Equal(t, "7", r.URL.Query().Get("staff_id"))
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		writeJSON(w, http.StatusOK, map[string]any{
			"status": "success",
			"data": map[string]any{
				"checked_in":        true,
				"check_in_time":     "09:02",
				"check_in_verified": true,
				"check_in_distance": 12.5,
			},
		})
	})

	st, err := c.AttendanceStatus(context.Background(), 7)

	require.NoError(t, err)
	assert.True(t, st.CheckedIn)
	assert.False(t, st.CheckedOut)
	require.NotNil(t, st.CheckInTime)
	assert.Equal(t, "09:02", *st.CheckInTime)
	require.NotNil(t, st.CheckInDistance)
	assert.Equal(t, 12.5, *st.CheckInDistance)
	assert.Nil(t, st.CheckOutTime)
}

func TestClock_Success(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		var req backend.ClockRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, backend.ClockRequest{StaffID: 7, Action: backend.ActionCheckIn, Latitude: 37.5, Longitude: 127.0}, req)
		writeJSON(w, http.StatusOK, map[string]any{
			"status":  "success",
			"message": "출근 처리되었습니다",
			"gps":     map[string]any{"verified": false, "distance": 320.4, "radius": 100, "location_name": "본점"},
		})
	})

	v, err := c.Clock(context.Background(), backend.ClockRequest{StaffID: 7, Action: backend.ActionCheckIn, Latitude: 37.5, Longitude: 127.0})

	require.NoError(t, err)
	assert.Equal(t, backend.StatusSuccess, v.Status)
	assert.False(t, v.GPS.Verified)
	assert.Equal(t, 320.4, v.GPS.Distance)
	assert.Equal(t, "본점", v.GPS.LocationName)
}

func TestClock_ErrorVerdict(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusForbidden, map[string]any{
			"status":  "error",
			"message": "매장 반경 밖입니다",
			"gps":     map[string]any{"verified": false, "distance": 820, "radius": 100, "location_name": "본점"},
		})
	})

	_, err := c.Clock(context.Background(), backend.ClockRequest{StaffID: 7, Action: backend.ActionCheckOut})

	var se *backend.SyncError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusForbidden, se.Status)
	assert.Equal(t, "매장 반경 밖입니다", se.Error())
	require.NotNil(t, se.GPS)
	assert.Equal(t, 820.0, se.GPS.Distance)
	assert.False(t, se.Retryable())
}

func TestAttendanceAndSave(t *testing.T) {
	may := calendar.NewMonth(2024, time.May)
	var saved backend.SaveRequest

	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			assert.Equal(t, "2024-05", r.URL.Query().Get("month"))
			writeJSON(w, http.StatusOK, map[string]any{
				"status": "success",
				"data": []map[string]any{
					{"date": "2024-05-02", "total_hours": 8, "status": "normal"},
					{"date": "2024-05-03", "total_hours": 0, "status": "absence"},
				},
			})
		case http.MethodPost:
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&saved))
			writeJSON(w, http.StatusOK, map[string]any{"status": "success", "message": "saved"})
		}
	})

	rows, err := c.Attendance(context.Background(), 7, may)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, calendar.Day(2024, time.May, 2), rows[0].Date)
	assert.Equal(t, "absence", rows[1].Status)

	err = c.SaveAttendance(context.Background(), backend.SaveRequest{
		StaffID: 7,
		Month:   may,
		DailyHours: []backend.DailyHours{
			{Date: calendar.Day(2024, time.May, 2), Hours: 6.5, Status: "normal"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, may, saved.Month)
	assert.Equal(t, 6.5, saved.DailyHours[0].Hours)
}

func TestHolidays(t *testing.T) {
	var deleted string
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			writeJSON(w, http.StatusOK, map[string]any{
				"status": "success",
				"data": map[string]any{
					"holidays": []map[string]any{{"date": "2024-05-15", "description": "회사 휴무일"}},
					"version":  3,
				},
			})
		case http.MethodDelete:
			deleted = r.URL.Path
			writeJSON(w, http.StatusOK, map[string]any{"status": "success"})
		}
	})

	list, err := c.Holidays(context.Background(), calendar.NewMonth(2024, time.May))
	require.NoError(t, err)
	assert.Equal(t, int64(3), list.Version)
	require.Len(t, list.Holidays, 1)
	assert.Equal(t, calendar.Day(2024, time.May, 15), list.Holidays[0].Date)

	require.NoError(t, c.DeleteHoliday(context.Background(), calendar.Day(2024, time.May, 15)))
	assert.Equal(t, "/api/v1/holidays/2024-05-15", deleted)
}

func TestCalculatePayroll_BackendMessage(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusInternalServerError, map[string]any{"status": "error", "message": "급여 계산에 실패했습니다"})
	})

	_, err := c.CalculatePayroll(context.Background(), backend.CalculateRequest{StaffID: 7, Month: calendar.NewMonth(2024, time.May)})

	var se *backend.SyncError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "급여 계산에 실패했습니다", err.Error())
	assert.True(t, se.Retryable())
}

func TestCalculatePayroll_ErrorEnvelopeOnOK(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"status": "error", "message": "해당 월의 근무 기록이 없습니다"})
	})

	_, err := c.CalculatePayroll(context.Background(), backend.CalculateRequest{StaffID: 7, Month: calendar.NewMonth(2024, time.May)})

	var se *backend.SyncError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "해당 월의 근무 기록이 없습니다", err.Error())
	assert.Equal(t, http.StatusOK, se.Status)
	assert.False(t, se.Retryable())
}

func TestClock_ErrorVerdictOnOK(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"status":  "error",
			"message": "본점 반경 100m 밖입니다. 현재 거리 250m",
			"gps":     map[string]any{"verified": false, "distance": 250.0, "radius": 100.0, "location_name": "본점"},
		})
	})

	v, err := c.Clock(context.Background(), backend.ClockRequest{Action: backend.ActionCheckIn, Latitude: 37.5, Longitude: 127.0})

	assert.Empty(t, v.Status)
	var se *backend.SyncError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "본점 반경 100m 밖입니다. 현재 거리 250m", se.Message)
	require.NotNil(t, se.GPS)
	assert.False(t, se.GPS.Verified)
	assert.Equal(t, 250.0, se.GPS.Distance)
}

func TestTransportFailureIsRetryable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	c := New(srv.URL)

	_, err := c.AttendanceStatus(context.Background(), 1)

	var se *backend.SyncError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, 0, se.Status)
	assert.True(t, se.Retryable())
}

func TestSignInKeepsToken(t *testing.T) {
	var auth string
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/v1/sign-in" {
			writeJSON(w, http.StatusOK, map[string]any{"status": "success", "data": map[string]any{"access_token": "fresh"}})
			return
		}
		auth = r.Header.Get("Authorization")
		writeJSON(w, http.StatusOK, map[string]any{"status": "success", "data": map[string]any{}})
	})

	tok, err := c.SignIn(context.Background(), "E001", "pw")
	require.NoError(t, err)
	assert.Equal(t, "fresh", tok)

	_, err = c.AttendanceStatus(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "Bearer fresh", auth)
}
