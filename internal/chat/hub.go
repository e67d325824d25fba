package chat

import (
	"context"
	"net/http"
	"sort"
	"strings"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/unisphere/unisphere-api/internal/models"
	"github.com/unisphere/unisphere-api/internal/service"
)

// Messenger persists frames received from clients.
type Messenger interface {
	Send(ctx context.Context, senderID, conversationID string, req service.SendMessageRequest) (*models.Message, error)
	Typing(ctx context.Context, senderID, conversationID string) error
}

// PresenceStore mirrors who is online outside the process.
type PresenceStore interface {
	Add(ctx context.Context, userID string) error
	Remove(ctx context.Context, userID string) error
	Reset(ctx context.Context) error
}

// Hub tracks live connections per user.
type Hub struct {
	mu       sync.RWMutex
	clients  map[string]map[*Client]struct{}
	messages Messenger
	presence PresenceStore
	metrics  *service.MetricsService
	logger   *zap.Logger
	upgrader websocket.Upgrader
}

// HubParams groups hub dependencies.
type HubParams struct {
	Messenger      Messenger
	Presence       PresenceStore
	Metrics        *service.MetricsService
	Logger         *zap.Logger
	AllowedOrigins []string
}

// NewHub builds a hub. An empty AllowedOrigins accepts any origin.
func NewHub(p HubParams) *Hub {
	if p.Logger == nil {
		p.Logger = zap.NewNop()
	}
	return &Hub{
		clients:  make(map[string]map[*Client]struct{}),
		messages: p.Messenger,
		presence: p.Presence,
		metrics:  p.Metrics,
		logger:   p.Logger.With(zap.String("component", "chat_hub")),
		upgrader: buildUpgrader(p.AllowedOrigins),
	}
}

func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if allowed == "*" || strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// ResetPresence clears the external presence mirror, used at startup.
func (h *Hub) ResetPresence(ctx context.Context) {
	if h.presence == nil {
		return
	}
	if err := h.presence.Reset(ctx); err != nil {
		h.logger.Warn("presence reset failed", zap.Error(err))
	}
}

// ServeWS upgrades the request and runs the connection until it closes.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, userID string) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	c := newClient(h, conn, userID)
	h.register(c)
	go c.writePump()
	c.readPump()
	return nil
}

// Deliver queues event for every connection of the given users. Clients
// whose buffers are full are disconnected.
func (h *Hub) Deliver(userIDs []string, event models.ChatEvent) {
	var slow []*Client
	h.mu.RLock()
	seen := make(map[string]struct{}, len(userIDs))
	for _, id := range userIDs {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		for c := range h.clients[id] {
			if !c.enqueue(event) {
				slow = append(slow, c)
			}
		}
	}
	h.mu.RUnlock()

	for _, c := range slow {
		h.logger.Warn("dropping slow chat client", zap.String("user_id", c.userID), zap.String("conn_id", c.id))
		h.unregister(c)
	}
}

// Online returns connected user IDs in sorted order.
func (h *Hub) Online() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.onlineLocked()
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.RLock()
	var all []*Client
	for _, set := range h.clients {
		for c := range set {
			all = append(all, c)
		}
	}
	h.mu.RUnlock()
	for _, c := range all {
		_ = c.conn.Close()
	}
}

func (h *Hub) onlineLocked() []string {
	ids := make([]string, 0, len(h.clients))
	for id := range h.clients {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	set, ok := h.clients[c.userID]
	if !ok {
		set = make(map[*Client]struct{})
		h.clients[c.userID] = set
	}
	set[c] = struct{}{}
	firstConn := !ok
	h.mu.Unlock()

	h.metrics.ChatConnected(1)
	h.logger.Info("chat client connected", zap.String("user_id", c.userID), zap.String("conn_id", c.id))
	if firstConn {
		h.mirror(func(ctx context.Context) error { return h.presence.Add(ctx, c.userID) })
	}
	h.broadcastPresence()
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	set, ok := h.clients[c.userID]
	if !ok {
		h.mu.Unlock()
		return
	}
	if _, present := set[c]; !present {
		h.mu.Unlock()
		return
	}
	delete(set, c)
	close(c.send)
	lastConn := len(set) == 0
	if lastConn {
		delete(h.clients, c.userID)
	}
	h.mu.Unlock()

	h.metrics.ChatConnected(-1)
	h.logger.Info("chat client disconnected", zap.String("user_id", c.userID), zap.String("conn_id", c.id))
	if lastConn {
		h.mirror(func(ctx context.Context) error { return h.presence.Remove(ctx, c.userID) })
		h.broadcastPresence()
	}
}

func (h *Hub) broadcastPresence() {
	h.mu.RLock()
	online := h.onlineLocked()
	h.mu.RUnlock()
	h.Deliver(online, models.ChatEvent{Event: models.ChatEventPresence, Users: online})
}

func (h *Hub) mirror(op func(ctx context.Context) error) {
	if h.presence == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), presenceTimeout)
	defer cancel()
	if err := op(ctx); err != nil {
		h.logger.Warn("presence mirror failed", zap.Error(err))
	}
}
