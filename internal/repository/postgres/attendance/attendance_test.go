package attendance

import (
	"context"
	"net/http"
	"testing"
	"time"

	"attendance/console/foundation/web"
	"attendance/console/internal/auth"
	"attendance/console/internal/pkg/repository/postgresql"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
)

func newRepo(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	t.Helper()
	sqldb, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqldb.Close() })
	return NewRepository(postgresql.NewWithDB(bun.NewDB(sqldb, pgdialect.New()))), mock
}

func adminCtx() context.Context {
	return context.WithValue(context.Background(), auth.Key, auth.Claims{UserId: 1, Role: auth.RoleAdmin})
}

func day(d int) time.Time {
	return time.Date(2024, time.May, d, 0, 0, 0, 0, time.UTC)
}

func TestGetRange(t *testing.T) {
	repo, mock := newRepo(t)

	rows := sqlmock.NewRows([]string{"id", "staff_id", "work_day", "total_hours", "status", "check_in_verified"}).
		AddRow(1, 7, day(2), 8.0, "normal", true).
		AddRow(2, 7, day(3), 0.0, "absence", false)
	mock.ExpectQuery(`SELECT .* FROM "attendance" .*staff_id = 7 .*work_day BETWEEN '2024-04-29' AND '2024-06-02'.*ORDER BY work_day ASC`).
		WillReturnRows(rows)

	list, err := repo.GetRange(context.Background(), 7, day(29).AddDate(0, -1, 0), day(2).AddDate(0, 1, 0))

	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, 8.0, list[0].TotalHours)
	assert.Equal(t, "absence", list[1].Status)
	assert.True(t, list[0].CheckInVerified)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetDay_NotFound(t *testing.T) {
	repo, mock := newRepo(t)

	mock.ExpectQuery(`SELECT .* FROM "attendance"`).WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.GetDay(context.Background(), 7, day(2))

	var re *web.Error
	require.True(t, errors.As(err, &re))
	assert.Equal(t, http.StatusNotFound, re.Status)
}

func TestSaveMonth(t *testing.T) {
	repo, mock := newRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO "attendance" .*ON CONFLICT \(staff_id, work_day\) DO UPDATE SET total_hours = EXCLUDED.total_hours`).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	err := repo.SaveMonth(adminCtx(), SaveMonthRequest{
		StaffID: 7,
		Days: []SaveDay{
			{WorkDay: day(2), TotalHours: 6.5, Status: "normal"},
			{WorkDay: day(3), TotalHours: 0, Status: "absence"},
		},
	})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveMonth_RejectsInvalidRows(t *testing.T) {
	repo, mock := newRepo(t)

	err := repo.SaveMonth(adminCtx(), SaveMonthRequest{
		StaffID: 7,
		Days:    []SaveDay{{WorkDay: day(2), TotalHours: 14, Status: "normal"}},
	})

	var re *web.Error
	require.True(t, errors.As(err, &re))
	assert.Equal(t, http.StatusBadRequest, re.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveMonth_RollsBack(t *testing.T) {
	repo, mock := newRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO "attendance"`).WillReturnError(errors.New("deadlock"))
	mock.ExpectRollback()

	err := repo.SaveMonth(adminCtx(), SaveMonthRequest{
		StaffID: 7,
		Days:    []SaveDay{{WorkDay: day(2), TotalHours: 8, Status: "normal"}},
	})

	var re *web.Error
	require.True(t, errors.As(err, &re))
	assert.Equal(t, http.StatusInternalServerError, re.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCheckOut_KeepsNonNormalHours(t *testing.T) {
	repo, mock := newRepo(t)

	mock.ExpectExec(`UPDATE "attendance" .*total_hours = CASE WHEN status = 'normal' THEN 8.5 ELSE total_hours END.*work_day = '2024-05-02'`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.CheckOut(context.Background(), ClockRecord{StaffID: 7, WorkDay: day(2), At: day(2).Add(18 * time.Hour), Verified: true}, 8.5)

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCheckIn_Upserts(t *testing.T) {
	repo, mock := newRepo(t)

	mock.ExpectExec(`INSERT INTO "attendance" .*ON CONFLICT \(staff_id, work_day\) DO UPDATE SET check_in_time = EXCLUDED.check_in_time`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.CheckIn(context.Background(), ClockRecord{StaffID: 7, WorkDay: day(2), At: day(2).Add(9 * time.Hour), Verified: true, Distance: 12.5, Status: "normal"})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
