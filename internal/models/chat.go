package models

import "time"

// MessageType is the payload kind of a chat message.
type MessageType string

const (
	MessageText MessageType = "text"
	MessageFile MessageType = "file"
)

// Conversation is a 1:1 thread. ParticipantA < ParticipantB always holds.
type Conversation struct {
	ID           string    `db:"id" json:"id"`
	ParticipantA string    `db:"participant_a" json:"participantA"`
	ParticipantB string    `db:"participant_b" json:"participantB"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time `db:"updated_at" json:"updatedAt"`
	LastMessage  *Message  `db:"-" json:"lastMessage,omitempty"`
}

// Peer returns the other participant relative to userID.
func (c *Conversation) Peer(userID string) string {
	if c.ParticipantA == userID {
		return c.ParticipantB
	}
	return c.ParticipantA
}

// Has reports whether userID takes part in the conversation.
func (c *Conversation) Has(userID string) bool {
	return c.ParticipantA == userID || c.ParticipantB == userID
}

// Message is one chat message.
type Message struct {
	ID             string      `db:"id" json:"id"`
	ConversationID string      `db:"conversation_id" json:"conversationId"`
	SenderID       string      `db:"sender_id" json:"senderId"`
	ReceiverID     string      `db:"receiver_id" json:"receiverId"`
	Type           MessageType `db:"type" json:"type"`
	Payload        string      `db:"payload" json:"payload"`
	CreatedAt      time.Time   `db:"created_at" json:"timestamp"`
}

// ChatUser is a directory entry with presence.
type ChatUser struct {
	ID         string `db:"id" json:"id"`
	Name       string `db:"name" json:"name"`
	Email      string `db:"email" json:"email"`
	Department string `db:"department" json:"department"`
	Online     bool   `db:"-" json:"online"`
}

// Chat socket event names.
const (
	ChatEventPresence = "presence"
	ChatEventMessage  = "message"
	ChatEventTyping   = "typing"
	ChatEventPong     = "pong"
	ChatEventError    = "error"
)

// ChatEvent is a server-to-client websocket frame.
type ChatEvent struct {
	Event          string   `json:"event"`
	Message        *Message `json:"message,omitempty"`
	Users          []string `json:"users,omitempty"`
	ConversationID string   `json:"conversationId,omitempty"`
	From           string   `json:"from,omitempty"`
	Error          string   `json:"error,omitempty"`
}
