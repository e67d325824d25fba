package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unisphere/unisphere-api/internal/models"
)

func TestEventRepositoryUpsertAttendeeWithinCapacity(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewEventRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT capacity FROM events WHERE id = $1 FOR UPDATE")).
		WithArgs("e1").
		WillReturnRows(sqlmock.NewRows([]string{"capacity"}).AddRow(2))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM event_attendees WHERE event_id = $1 AND rsvp_status = 'attending' AND user_id <> $2")).
		WithArgs("e1", "u1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectExec("INSERT INTO event_attendees").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	err := repo.UpsertAttendee(context.Background(), &models.EventAttendee{EventID: "e1", UserID: "u1", Name: "Nadia", RSVPStatus: models.RSVPAttending})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEventRepositoryUpsertAttendeeFull(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewEventRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT capacity FROM events").
		WillReturnRows(sqlmock.NewRows([]string{"capacity"}).AddRow(1))
	mock.ExpectQuery("SELECT COUNT").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectRollback()

	err := repo.UpsertAttendee(context.Background(), &models.EventAttendee{EventID: "e1", UserID: "u2", RSVPStatus: models.RSVPAttending})
	assert.ErrorIs(t, err, ErrEventFull)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEventRepositoryMaybeSkipsCapacityCheck(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewEventRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT capacity FROM events").
		WillReturnRows(sqlmock.NewRows([]string{"capacity"}).AddRow(1))
	mock.ExpectExec("INSERT INTO event_attendees").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	err := repo.UpsertAttendee(context.Background(), &models.EventAttendee{EventID: "e1", UserID: "u2", RSVPStatus: models.RSVPMaybe})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEventRepositoryRemoveAttendeeMissing(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewEventRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM event_attendees WHERE event_id = $1 AND user_id = $2")).
		WithArgs("e1", "u1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.RemoveAttendee(context.Background(), "e1", "u1")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEventRepositoryListUpcomingByTag(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewEventRepository(db)

	where := "FROM events WHERE 1=1 AND $1 = ANY(tags) AND start_date >= $2"
	mock.ExpectQuery(regexp.QuoteMeta("SELECT " + eventColumns + ", " + attendingCountColumn + " " + where + " ORDER BY start_date ASC LIMIT 20 OFFSET 0")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) " + where)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	events, total, err := repo.List(context.Background(), models.EventFilter{Tag: "music", Upcoming: true})
	require.NoError(t, err)
	assert.Empty(t, events)
	assert.Equal(t, 0, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}
