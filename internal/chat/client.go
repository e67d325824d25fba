package chat

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/unisphere/unisphere-api/internal/models"
	"github.com/unisphere/unisphere-api/internal/service"
	appErrors "github.com/unisphere/unisphere-api/pkg/errors"
)

const (
	writeWait       = 10 * time.Second
	pongWait        = 60 * time.Second
	pingPeriod      = (pongWait * 9) / 10
	maxFrameBytes   = 64 * 1024
	sendBuffer      = 32
	frameTimeout    = 5 * time.Second
	presenceTimeout = 2 * time.Second
)

// Client is one websocket connection of a user.
type Client struct {
	id     string
	userID string
	hub    *Hub
	conn   *websocket.Conn
	send   chan models.ChatEvent
}

func newClient(h *Hub, conn *websocket.Conn, userID string) *Client {
	return &Client{
		id:     uuid.NewString(),
		userID: userID,
		hub:    h,
		conn:   conn,
		send:   make(chan models.ChatEvent, sendBuffer),
	}
}

// enqueue must be called with the hub lock held. It reports false when the buffer is full.
func (c *Client) enqueue(event models.ChatEvent) bool {
	select {
	case c.send <- event:
		return true
	default:
		return false
	}
}

func (c *Client) readPump() {
	defer func() {
		c.hub.unregister(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxFrameBytes)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var frame Frame
		if err := c.conn.ReadJSON(&frame); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.logger.Warn("unexpected chat close", zap.String("user_id", c.userID), zap.Error(err))
			}
			return
		}
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		c.handle(frame)
	}
}

func (c *Client) handle(frame Frame) {
	switch frame.Action {
	case ActionPing:
		c.reply(models.ChatEvent{Event: models.ChatEventPong})
	case ActionMessage:
		ctx, cancel := context.WithTimeout(context.Background(), frameTimeout)
		defer cancel()
		// Delivery to both participants happens inside Send.
		if _, err := c.hub.messages.Send(ctx, c.userID, frame.ConversationID, service.SendMessageRequest{Type: frame.Type, Payload: frame.Payload}); err != nil {
			c.reply(errorEvent(appErrors.FromError(err).Message))
		}
	case ActionTyping:
		ctx, cancel := context.WithTimeout(context.Background(), frameTimeout)
		defer cancel()
		if err := c.hub.messages.Typing(ctx, c.userID, frame.ConversationID); err != nil {
			c.reply(errorEvent(appErrors.FromError(err).Message))
		}
	default:
		c.reply(errorEvent("unknown action: " + string(frame.Action)))
	}
}

func (c *Client) reply(event models.ChatEvent) {
	c.hub.mu.RLock()
	_, live := c.hub.clients[c.userID][c]
	ok := live && c.enqueue(event)
	c.hub.mu.RUnlock()
	if live && !ok {
		c.hub.unregister(c)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case event, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(event); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
