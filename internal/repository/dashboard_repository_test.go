package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDashboardRepositorySummary(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewDashboardRepository(db)

	now := time.Now().UTC()
	count := func(n int) *sqlmock.Rows { return sqlmock.NewRows([]string{"count"}).AddRow(n) }
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM users WHERE active = TRUE")).WillReturnRows(count(40))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM class_schedules")).WillReturnRows(count(12))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM faculty")).WillReturnRows(count(8))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM events WHERE start_date >= $1")).WithArgs(now).WillReturnRows(count(3))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM clubs")).WillReturnRows(count(5))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM menu_items")).WillReturnRows(count(20))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM bus_schedules WHERE active = TRUE")).WillReturnRows(count(4))
	mock.ExpectQuery("FROM lost_found_items GROUP BY status").
		WillReturnRows(sqlmock.NewRows([]string{"status", "count"}).AddRow("pending", 2).AddRow("resolved", 1))
	mock.ExpectQuery("FROM orders GROUP BY status").
		WillReturnRows(sqlmock.NewRows([]string{"status", "count"}).AddRow("completed", 6))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COALESCE(SUM(total), 0) FROM orders WHERE status = 'completed'")).
		WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow(54.0))

	summary, err := repo.Summary(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, 40, summary.Users)
	assert.Equal(t, 3, summary.UpcomingEvents)
	assert.Equal(t, 2, summary.LostFoundByState["pending"])
	assert.Equal(t, 6, summary.OrdersByStatus["completed"])
	assert.Equal(t, 54.0, summary.Revenue)
	assert.NoError(t, mock.ExpectationsWereMet())
}
