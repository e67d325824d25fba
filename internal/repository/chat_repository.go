package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/unisphere/unisphere-api/internal/models"
)

const (
	conversationColumns = `id, participant_a, participant_b, created_at, updated_at`
	messageColumns      = `id, conversation_id, sender_id, receiver_id, type, payload, created_at`
)

// ChatRepository persists conversations and messages.
type ChatRepository struct {
	db *sqlx.DB
}

// NewChatRepository constructs the repository.
func NewChatRepository(db *sqlx.DB) *ChatRepository {
	return &ChatRepository{db: db}
}

// GetOrCreateConversation returns the conversation between a and b, creating
// it on first use. Callers pass participants already ordered.
func (r *ChatRepository) GetOrCreateConversation(ctx context.Context, a, b string) (*models.Conversation, error) {
	now := time.Now().UTC()
	query := `INSERT INTO conversations (id, participant_a, participant_b, created_at, updated_at) VALUES ($1, $2, $3, $4, $4)
ON CONFLICT (participant_a, participant_b) DO UPDATE SET participant_a = EXCLUDED.participant_a
RETURNING ` + conversationColumns
	var conv models.Conversation
	if err := r.db.GetContext(ctx, &conv, query, uuid.NewString(), a, b, now); err != nil {
		return nil, fmt.Errorf("get or create conversation: %w", err)
	}
	return &conv, nil
}

// FindConversation returns a conversation by id.
func (r *ChatRepository) FindConversation(ctx context.Context, id string) (*models.Conversation, error) {
	query := `SELECT ` + conversationColumns + ` FROM conversations WHERE id = $1`
	var conv models.Conversation
	if err := r.db.GetContext(ctx, &conv, query, id); err != nil {
		return nil, err
	}
	return &conv, nil
}

// ListConversations returns the user's conversations, most recently active
// first, each with its latest message attached.
func (r *ChatRepository) ListConversations(ctx context.Context, userID string) ([]models.Conversation, error) {
	query := `SELECT ` + conversationColumns + ` FROM conversations WHERE participant_a = $1 OR participant_b = $1 ORDER BY updated_at DESC`
	var convs []models.Conversation
	if err := r.db.SelectContext(ctx, &convs, query, userID); err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}
	if len(convs) == 0 {
		return convs, nil
	}

	ids := make([]string, len(convs))
	for i := range convs {
		ids[i] = convs[i].ID
	}
	lastQuery := `SELECT DISTINCT ON (conversation_id) ` + messageColumns + ` FROM messages WHERE conversation_id = ANY($1) ORDER BY conversation_id, created_at DESC`
	var last []models.Message
	if err := r.db.SelectContext(ctx, &last, lastQuery, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("load last messages: %w", err)
	}
	byConversation := make(map[string]*models.Message, len(last))
	for i := range last {
		byConversation[last[i].ConversationID] = &last[i]
	}
	for i := range convs {
		convs[i].LastMessage = byConversation[convs[i].ID]
	}
	return convs, nil
}

// ListMessages returns up to limit messages older than before, oldest first.
func (r *ChatRepository) ListMessages(ctx context.Context, conversationID string, before *time.Time, limit int) ([]models.Message, error) {
	args := []interface{}{conversationID}
	query := `SELECT ` + messageColumns + ` FROM messages WHERE conversation_id = $1`
	if before != nil {
		query += ` AND created_at < $2`
		args = append(args, *before)
	}
	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT %d`, limit)

	var messages []models.Message
	if err := r.db.SelectContext(ctx, &messages, query, args...); err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

// CreateMessage stores a message and bumps the conversation activity time.
func (r *ChatRepository) CreateMessage(ctx context.Context, msg *models.Message) (err error) {
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin message transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const insert = `INSERT INTO messages (id, conversation_id, sender_id, receiver_id, type, payload, created_at) VALUES (:id, :conversation_id, :sender_id, :receiver_id, :type, :payload, :created_at)`
	if _, err = tx.NamedExecContext(ctx, insert, msg); err != nil {
		return fmt.Errorf("create message: %w", err)
	}
	if _, err = tx.ExecContext(ctx, `UPDATE conversations SET updated_at = $2 WHERE id = $1`, msg.ConversationID, msg.CreatedAt); err != nil {
		return fmt.Errorf("touch conversation: %w", err)
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit message: %w", err)
	}
	return nil
}
