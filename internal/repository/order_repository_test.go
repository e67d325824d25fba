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

const orderStatusUpdate = `UPDATE orders SET status = $3, updated_at = $4 WHERE id = $1 AND status = $2`

func TestOrderRepositoryUpdateStatusGuardsCurrentStatus(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewOrderRepository(db)

	mock.ExpectExec(regexp.QuoteMeta(orderStatusUpdate)).
		WithArgs("o1", models.OrderPending, models.OrderPreparing, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.UpdateStatus(context.Background(), "o1", models.OrderPending, models.OrderPreparing))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepositoryUpdateStatusReportsStaleRow(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewOrderRepository(db)

	mock.ExpectExec(regexp.QuoteMeta(orderStatusUpdate)).
		WithArgs("o1", models.OrderPending, models.OrderCancelled, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateStatus(context.Background(), "o1", models.OrderPending, models.OrderCancelled)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}
