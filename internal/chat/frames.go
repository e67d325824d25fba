// Package chat runs the messenger websocket hub: one entry per connected
// user, presence broadcasts and realtime delivery of persisted messages.
package chat

import "github.com/unisphere/unisphere-api/internal/models"

// Action is a client-to-server frame kind.
type Action string

const (
	ActionMessage Action = "message"
	ActionPing    Action = "ping"
	ActionTyping  Action = "typing"
)

// Frame is what clients send over the socket.
type Frame struct {
	Action         Action             `json:"action"`
	ConversationID string             `json:"conversationId"`
	Type           models.MessageType `json:"type"`
	Payload        string             `json:"payload"`
}

func errorEvent(msg string) models.ChatEvent {
	return models.ChatEvent{Event: models.ChatEventError, Error: msg}
}
