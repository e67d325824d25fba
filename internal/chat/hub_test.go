package chat

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unisphere/unisphere-api/internal/models"
	"github.com/unisphere/unisphere-api/internal/service"
	appErrors "github.com/unisphere/unisphere-api/pkg/errors"
)

type echoMessenger struct {
	hub *Hub
}

func (m *echoMessenger) Send(_ context.Context, senderID, conversationID string, req service.SendMessageRequest) (*models.Message, error) {
	if conversationID != "conv-1" {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "not a participant")
	}
	msg := &models.Message{ID: "m1", ConversationID: conversationID, SenderID: senderID, ReceiverID: "bob", Type: models.MessageText, Payload: req.Payload}
	m.hub.Deliver([]string{senderID, "bob"}, models.ChatEvent{Event: models.ChatEventMessage, Message: msg})
	return msg, nil
}

func (m *echoMessenger) Typing(_ context.Context, senderID, conversationID string) error {
	m.hub.Deliver([]string{"bob"}, models.ChatEvent{Event: models.ChatEventTyping, ConversationID: conversationID, From: senderID})
	return nil
}

type memoryPresence struct {
	mu     sync.Mutex
	online map[string]bool
}

func (p *memoryPresence) Add(_ context.Context, id string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.online[id] = true
	return nil
}

func (p *memoryPresence) Remove(_ context.Context, id string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.online, id)
	return nil
}

func (p *memoryPresence) Reset(context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.online = map[string]bool{}
	return nil
}

func (p *memoryPresence) has(id string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.online[id]
}

func newTestHub(t *testing.T) (*Hub, *memoryPresence, string) {
	t.Helper()
	presence := &memoryPresence{online: map[string]bool{}}
	messenger := &echoMessenger{}
	hub := NewHub(HubParams{Messenger: messenger, Presence: presence, Metrics: service.NewMetricsService()})
	messenger.hub = hub

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = hub.ServeWS(w, r, r.URL.Query().Get("user"))
	}))
	t.Cleanup(srv.Close)
	return hub, presence, "ws" + strings.TrimPrefix(srv.URL, "http")
}

func dial(t *testing.T, base, user string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(base+"?user="+user, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

// readUntil skips frames until one with the wanted event arrives.
func readUntil(t *testing.T, conn *websocket.Conn, event string) models.ChatEvent {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	for {
		var ev models.ChatEvent
		require.NoError(t, conn.ReadJSON(&ev))
		if ev.Event == event {
			return ev
		}
	}
}

func TestHubBroadcastsPresence(t *testing.T) {
	hub, presence, base := newTestHub(t)

	alice := dial(t, base, "alice")
	ev := readUntil(t, alice, models.ChatEventPresence)
	assert.Equal(t, []string{"alice"}, ev.Users)

	bob := dial(t, base, "bob")
	ev = readUntil(t, bob, models.ChatEventPresence)
	assert.Equal(t, []string{"alice", "bob"}, ev.Users)
	ev = readUntil(t, alice, models.ChatEventPresence)
	assert.Equal(t, []string{"alice", "bob"}, ev.Users)

	assert.True(t, presence.has("bob"))
	assert.Equal(t, []string{"alice", "bob"}, hub.Online())

	require.NoError(t, bob.Close())
	ev = readUntil(t, alice, models.ChatEventPresence)
	assert.Equal(t, []string{"alice"}, ev.Users)
	assert.Eventually(t, func() bool { return !presence.has("bob") }, time.Second, 10*time.Millisecond)
}

func TestHubRoutesMessagesAndTyping(t *testing.T) {
	_, _, base := newTestHub(t)
	alice := dial(t, base, "alice")
	readUntil(t, alice, models.ChatEventPresence)
	bob := dial(t, base, "bob")
	readUntil(t, bob, models.ChatEventPresence)

	require.NoError(t, alice.WriteJSON(Frame{Action: ActionMessage, ConversationID: "conv-1", Payload: "hi bob"}))

	got := readUntil(t, bob, models.ChatEventMessage)
	require.NotNil(t, got.Message)
	assert.Equal(t, "hi bob", got.Message.Payload)
	assert.Equal(t, "alice", got.Message.SenderID)
	echo := readUntil(t, alice, models.ChatEventMessage)
	assert.Equal(t, "m1", echo.Message.ID)

	require.NoError(t, alice.WriteJSON(Frame{Action: ActionTyping, ConversationID: "conv-1"}))
	typing := readUntil(t, bob, models.ChatEventTyping)
	assert.Equal(t, "alice", typing.From)
}

func TestHubPingAndErrors(t *testing.T) {
	_, _, base := newTestHub(t)
	alice := dial(t, base, "alice")

	require.NoError(t, alice.WriteJSON(Frame{Action: ActionPing}))
	readUntil(t, alice, models.ChatEventPong)

	require.NoError(t, alice.WriteJSON(Frame{Action: ActionMessage, ConversationID: "other", Payload: "x"}))
	ev := readUntil(t, alice, models.ChatEventError)
	assert.Equal(t, "not a participant", ev.Error)

	require.NoError(t, alice.WriteJSON(Frame{Action: "dance"}))
	ev = readUntil(t, alice, models.ChatEventError)
	assert.Contains(t, ev.Error, "unknown action")
}

func TestHubMultipleConnectionsKeepUserOnline(t *testing.T) {
	hub, presence, base := newTestHub(t)
	first := dial(t, base, "alice")
	readUntil(t, first, models.ChatEventPresence)
	second := dial(t, base, "alice")
	readUntil(t, second, models.ChatEventPresence)

	require.NoError(t, first.Close())
	// closing one tab must not mark the user offline
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, []string{"alice"}, hub.Online())
	assert.True(t, presence.has("alice"))
}

func TestBuildUpgraderOriginCheck(t *testing.T) {
	up := buildUpgrader([]string{"https://campus.example.edu"})
	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	req.Header.Set("Origin", "https://CAMPUS.example.edu")
	assert.True(t, up.CheckOrigin(req))

	req.Header.Set("Origin", "https://evil.example.com")
	assert.False(t, up.CheckOrigin(req))

	open := buildUpgrader(nil)
	assert.True(t, open.CheckOrigin(req))
}

func TestDeliverToUnknownUserIsNoop(t *testing.T) {
	hub := NewHub(HubParams{})
	hub.Deliver([]string{"ghost"}, models.ChatEvent{Event: models.ChatEventMessage})
	assert.Empty(t, hub.Online())
	hub.ResetPresence(context.Background())
}
