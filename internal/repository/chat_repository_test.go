package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unisphere/unisphere-api/internal/models"
)

var messageRowColumns = []string{"id", "conversation_id", "sender_id", "receiver_id", "type", "payload", "created_at"}

func TestChatRepositoryGetOrCreateConversation(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewChatRepository(db)

	now := time.Now()
	mock.ExpectQuery("INSERT INTO conversations .* ON CONFLICT \\(participant_a, participant_b\\)").
		WithArgs(sqlmock.AnyArg(), "a", "b", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "participant_a", "participant_b", "created_at", "updated_at"}).AddRow("conv-1", "a", "b", now, now))

	conv, err := repo.GetOrCreateConversation(context.Background(), "a", "b")
	require.NoError(t, err)
	assert.Equal(t, "conv-1", conv.ID)
	assert.Equal(t, "b", conv.Peer("a"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestChatRepositoryListMessagesOldestFirst(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewChatRepository(db)

	before := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows(messageRowColumns).
		AddRow("m2", "conv-1", "a", "b", "text", "second", before.Add(-time.Minute)).
		AddRow("m1", "conv-1", "b", "a", "text", "first", before.Add(-2*time.Minute))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT " + messageColumns + " FROM messages WHERE conversation_id = $1 AND created_at < $2 ORDER BY created_at DESC LIMIT 50")).
		WithArgs("conv-1", before).
		WillReturnRows(rows)

	messages, err := repo.ListMessages(context.Background(), "conv-1", &before, 50)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, "m1", messages[0].ID)
	assert.Equal(t, "m2", messages[1].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestChatRepositoryCreateMessageTouchesConversation(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewChatRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO messages").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE conversations SET updated_at = $2 WHERE id = $1")).
		WithArgs("conv-1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	msg := &models.Message{ConversationID: "conv-1", SenderID: "a", ReceiverID: "b", Type: models.MessageText, Payload: "hi"}
	require.NoError(t, repo.CreateMessage(context.Background(), msg))
	assert.NotEmpty(t, msg.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
