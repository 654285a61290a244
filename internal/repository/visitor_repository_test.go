package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/libvisit-api/internal/models"
	"github.com/noah-isme/libvisit-api/pkg/clock"
)

var visitorRowColumns = []string{"id", "name", "roll_no", "level", "course", "year", "jc_year", "jc_stream", "purpose", "entry_time", "exit_time", "visit_date", "visit_day"}

func newVisitorMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

// fixedCalendar reads 2024-03-15 10:30:00 IST (a Friday).
func fixedCalendar(t *testing.T) *clock.Calendar {
	t.Helper()
	instant := time.Date(2024, 3, 15, 5, 0, 0, 0, time.UTC)
	return clock.MustCalendar(clock.Fixed(instant), "Asia/Kolkata")
}

func strPtr(s string) *string { return &s }

func TestVisitorRepositoryInsertStampsFromCalendar(t *testing.T) {
	db, mock, cleanup := newVisitorMock(t)
	defer cleanup()
	repo := NewVisitorRepository(db, fixedCalendar(t))

	rows := sqlmock.NewRows(visitorRowColumns).
		AddRow(int64(42), "Asha", "AB123", "UG", "BSc", "2", nil, nil, "Study", "10:30:00", nil, "2024-03-15", "Friday")
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO visitors (name, roll_no, level, course, year, jc_year, jc_stream, purpose, entry_time, exit_time, visit_date, visit_day)")).
		WithArgs("Asha", "AB123", "UG", "BSc", "2", sqlmock.AnyArg(), sqlmock.AnyArg(), "Study", "10:30:00", sqlmock.AnyArg(), "2024-03-15", "Friday").
		WillReturnRows(rows)

	visitor, err := repo.Insert(context.Background(), models.VisitorDraft{
		Name: "Asha", RollNo: "AB123", Level: models.LevelUG, Course: "BSc", Year: strPtr("2"), Purpose: "Study",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(42), visitor.ID)
	assert.Equal(t, models.LevelUG, visitor.Level)
	assert.Nil(t, visitor.ExitTime)
	assert.Nil(t, visitor.JcStream)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestVisitorRepositoryInsertWithExplicitStamp(t *testing.T) {
	db, mock, cleanup := newVisitorMock(t)
	defer cleanup()
	repo := NewVisitorRepository(db, fixedCalendar(t))

	rows := sqlmock.NewRows(visitorRowColumns).
		AddRow(int64(7), "Ravi", "JC9", "JC", "Junior College", nil, "FY", "Science", "Reference", "09:00:00", "11:15:00", "2024-01-01", "Monday")
	mock.ExpectQuery("INSERT INTO visitors").
		WithArgs("Ravi", "JC9", "JC", "Junior College", sqlmock.AnyArg(), "FY", "Science", "Reference", "09:00:00", "11:15:00", "2024-01-01", "Monday").
		WillReturnRows(rows)

	exit := "11:15:00"
	visitor, err := repo.Insert(context.Background(), models.VisitorDraft{
		Name: "Ravi", RollNo: "JC9", Level: models.LevelJC, Course: models.DefaultJCCourse,
		JcYear: strPtr("FY"), JcStream: strPtr("Science"), Purpose: "Reference",
		Stamp: &models.VisitStamp{VisitDate: "2024-01-01", EntryTime: "09:00:00", ExitTime: &exit},
	})
	require.NoError(t, err)
	require.NotNil(t, visitor.ExitTime)
	assert.Equal(t, "11:15:00", *visitor.ExitTime)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestVisitorRepositoryInsertRejectsBadStampDate(t *testing.T) {
	db, _, cleanup := newVisitorMock(t)
	defer cleanup()
	repo := NewVisitorRepository(db, fixedCalendar(t))

	_, err := repo.Insert(context.Background(), models.VisitorDraft{
		Name: "X", RollNo: "X1", Level: models.LevelUG, Course: "BA", Purpose: "Study",
		Stamp: &models.VisitStamp{VisitDate: "01-01-2024", EntryTime: "09:00:00"},
	})
	assert.Error(t, err)
}

func TestVisitorRepositoryFindActiveByRollNo(t *testing.T) {
	db, mock, cleanup := newVisitorMock(t)
	defer cleanup()
	repo := NewVisitorRepository(db, fixedCalendar(t))

	rows := sqlmock.NewRows(visitorRowColumns).
		AddRow(int64(3), "Asha", "AB123", "UG", "BSc", "2", nil, nil, "Study", "10:00:00", nil, "2024-03-15", "Friday")
	mock.ExpectQuery(regexp.QuoteMeta("WHERE roll_no = $1 AND visit_date = $2 AND exit_time IS NULL\n        ORDER BY id DESC LIMIT 1")).
		WithArgs("AB123", "2024-03-15").
		WillReturnRows(rows)

	visitor, err := repo.FindActiveByRollNo(context.Background(), "AB123", "2024-03-15")
	require.NoError(t, err)
	require.NotNil(t, visitor)
	assert.Equal(t, int64(3), visitor.ID)
	assert.True(t, visitor.Active())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestVisitorRepositoryFindLatestByRollNoNone(t *testing.T) {
	db, mock, cleanup := newVisitorMock(t)
	defer cleanup()
	repo := NewVisitorRepository(db, fixedCalendar(t))

	mock.ExpectQuery(regexp.QuoteMeta("FROM visitors WHERE roll_no = $1 ORDER BY id DESC LIMIT 1")).
		WithArgs("ZZ9").
		WillReturnRows(sqlmock.NewRows(visitorRowColumns))

	visitor, err := repo.FindLatestByRollNo(context.Background(), "ZZ9")
	require.NoError(t, err)
	assert.Nil(t, visitor)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestVisitorRepositoryMarkExit(t *testing.T) {
	db, mock, cleanup := newVisitorMock(t)
	defer cleanup()
	repo := NewVisitorRepository(db, fixedCalendar(t))

	mock.ExpectExec(regexp.QuoteMeta("UPDATE visitors SET exit_time = $1 WHERE id = $2")).
		WithArgs("10:30:00", int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE visitors SET exit_time = $1 WHERE id = $2")).
		WithArgs("10:30:00", int64(999)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	ok, err := repo.MarkExit(context.Background(), 5)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.MarkExit(context.Background(), 999)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestVisitorRepositoryListByDateRange(t *testing.T) {
	db, mock, cleanup := newVisitorMock(t)
	defer cleanup()
	repo := NewVisitorRepository(db, fixedCalendar(t))

	rows := sqlmock.NewRows(visitorRowColumns).
		AddRow(int64(2), "B", "B2", "PG", "MSc", "1", nil, nil, "Research", "12:00:00", "13:00:00", "2024-03-02", "Saturday").
		AddRow(int64(1), "A", "A1", "UG", "BA", "3", nil, nil, "Study", "09:00:00", nil, "2024-03-01", "Friday")
	mock.ExpectQuery(regexp.QuoteMeta("WHERE visit_date >= $1 AND visit_date <= $2 ORDER BY id DESC")).
		WithArgs("2024-03-01", "2024-03-02").
		WillReturnRows(rows)

	visitors, err := repo.ListByDateRange(context.Background(), "2024-03-01", "2024-03-02")
	require.NoError(t, err)
	require.Len(t, visitors, 2)
	assert.Equal(t, "13:00:00", *visitors[0].ExitTime)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestVisitorRepositoryListAllEmptyIsNotNil(t *testing.T) {
	db, mock, cleanup := newVisitorMock(t)
	defer cleanup()
	repo := NewVisitorRepository(db, fixedCalendar(t))

	mock.ExpectQuery(regexp.QuoteMeta("FROM visitors ORDER BY id DESC")).
		WillReturnRows(sqlmock.NewRows(visitorRowColumns))

	visitors, err := repo.ListAll(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, visitors)
	assert.Empty(t, visitors)
}

func TestVisitorRepositoryDeleteWrapsErrors(t *testing.T) {
	db, mock, cleanup := newVisitorMock(t)
	defer cleanup()
	repo := NewVisitorRepository(db, fixedCalendar(t))

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM visitors WHERE id = $1")).
		WithArgs(int64(8)).
		WillReturnError(errors.New("connection reset"))

	ok, err := repo.Delete(context.Background(), 8)
	assert.False(t, ok)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "delete visitor")
}
