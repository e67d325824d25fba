package service

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/unisphere/unisphere-api/internal/models"
	appErrors "github.com/unisphere/unisphere-api/pkg/errors"
)

const (
	defaultMessagePage = 50
	maxMessagePage     = 200
)

type chatRepository interface {
	GetOrCreateConversation(ctx context.Context, a, b string) (*models.Conversation, error)
	FindConversation(ctx context.Context, id string) (*models.Conversation, error)
	ListConversations(ctx context.Context, userID string) ([]models.Conversation, error)
	ListMessages(ctx context.Context, conversationID string, before *time.Time, limit int) ([]models.Message, error)
	CreateMessage(ctx context.Context, msg *models.Message) error
}

type chatUserDirectory interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	ListActive(ctx context.Context, excludeID string) ([]models.User, error)
}

// ChatNotifier pushes events to connected users and reports who is online.
type ChatNotifier interface {
	Deliver(userIDs []string, event models.ChatEvent)
	Online() []string
}

// StartConversationRequest opens a 1:1 thread with another user.
type StartConversationRequest struct {
	ParticipantID string `json:"participantId" validate:"required"`
}

// SendMessageRequest posts a message into a conversation.
type SendMessageRequest struct {
	Type    models.MessageType `json:"type" validate:"omitempty,oneof=text file"`
	Payload string             `json:"payload" validate:"required,max=10000"`
}

// ChatService implements the messenger on top of the chat repository and the socket hub.
type ChatService struct {
	repo      chatRepository
	users     chatUserDirectory
	notifier  ChatNotifier
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewChatService constructs the service. The notifier is attached later because the hub depends on the service.
func NewChatService(repo chatRepository, users chatUserDirectory, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *ChatService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChatService{repo: repo, users: users, metrics: metrics, validator: validate, logger: logger}
}

// AttachNotifier sets the component used for realtime delivery.
func (s *ChatService) AttachNotifier(n ChatNotifier) {
	s.notifier = n
}

// Users lists other active users with their presence flag.
func (s *ChatService) Users(ctx context.Context, callerID string) ([]models.ChatUser, error) {
	users, err := s.users.ListActive(ctx, callerID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list chat users")
	}
	online := make(map[string]struct{})
	if s.notifier != nil {
		for _, id := range s.notifier.Online() {
			online[id] = struct{}{}
		}
	}
	result := make([]models.ChatUser, 0, len(users))
	for _, u := range users {
		_, isOnline := online[u.ID]
		result = append(result, models.ChatUser{ID: u.ID, Name: u.Name, Email: u.Email, Department: u.Department, Online: isOnline})
	}
	return result, nil
}

// StartConversation returns the caller's conversation with the participant, creating it once.
func (s *ChatService) StartConversation(ctx context.Context, callerID string, req StartConversationRequest) (*models.Conversation, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, invalid(err, "invalid conversation payload")
	}
	if req.ParticipantID == callerID {
		return nil, appErrors.Validation(nil, "invalid conversation payload", map[string]string{"participantId": "cannot start a conversation with yourself"})
	}
	peer, err := s.users.FindByID(ctx, req.ParticipantID)
	if err != nil {
		return nil, lookupError(err, "participant not found", "failed to load participant")
	}
	if !peer.Active {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "participant not found")
	}
	a, b := orderedPair(callerID, req.ParticipantID)
	conv, err := s.repo.GetOrCreateConversation(ctx, a, b)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to open conversation")
	}
	return conv, nil
}

// Conversations lists the caller's threads with their last message.
func (s *ChatService) Conversations(ctx context.Context, userID string) ([]models.Conversation, error) {
	convs, err := s.repo.ListConversations(ctx, userID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list conversations")
	}
	return convs, nil
}

// Messages returns up to limit messages older than before, oldest first.
func (s *ChatService) Messages(ctx context.Context, userID, conversationID string, before *time.Time, limit int) ([]models.Message, error) {
	if _, err := s.participantConversation(ctx, userID, conversationID); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultMessagePage
	}
	if limit > maxMessagePage {
		limit = maxMessagePage
	}
	messages, err := s.repo.ListMessages(ctx, conversationID, before, limit)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list messages")
	}
	return messages, nil
}

// Send persists a message and pushes it to both participants.
func (s *ChatService) Send(ctx context.Context, senderID, conversationID string, req SendMessageRequest) (*models.Message, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, invalid(err, "invalid message payload")
	}
	if strings.TrimSpace(req.Payload) == "" {
		return nil, appErrors.Validation(nil, "invalid message payload", map[string]string{"payload": "payload must not be blank"})
	}
	conv, err := s.participantConversation(ctx, senderID, conversationID)
	if err != nil {
		return nil, err
	}
	kind := req.Type
	if kind == "" {
		kind = models.MessageText
	}
	msg := &models.Message{
		ConversationID: conv.ID,
		SenderID:       senderID,
		ReceiverID:     conv.Peer(senderID),
		Type:           kind,
		Payload:        req.Payload,
	}
	if err := s.repo.CreateMessage(ctx, msg); err != nil {
		return nil, appErrors.Internal(err, "failed to send message")
	}
	s.metrics.ObserveChatMessage(kind)
	if s.notifier != nil {
		s.notifier.Deliver([]string{msg.SenderID, msg.ReceiverID}, models.ChatEvent{Event: models.ChatEventMessage, Message: msg})
	}
	return msg, nil
}

// Typing forwards a typing indicator to the sender's peer.
func (s *ChatService) Typing(ctx context.Context, senderID, conversationID string) error {
	conv, err := s.participantConversation(ctx, senderID, conversationID)
	if err != nil {
		return err
	}
	if s.notifier != nil {
		s.notifier.Deliver([]string{conv.Peer(senderID)}, models.ChatEvent{Event: models.ChatEventTyping, ConversationID: conv.ID, From: senderID})
	}
	return nil
}

func (s *ChatService) participantConversation(ctx context.Context, userID, conversationID string) (*models.Conversation, error) {
	conv, err := s.repo.FindConversation(ctx, conversationID)
	if err != nil {
		return nil, lookupError(err, "conversation not found", "failed to load conversation")
	}
	if !conv.Has(userID) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "not a participant of this conversation")
	}
	return conv, nil
}

func orderedPair(a, b string) (string, string) {
	if a < b {
		return a, b
	}
	return b, a
}
