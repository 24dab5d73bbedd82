// Package realtime relays chat events between connected users over
// websockets.
package realtime

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"dukan/internal/metrics"

	"go.uber.org/zap"
)

// Event types. Clients send addUser, getUsers, sendMessage, messageSeen and
// updateLastMessage; the hub emits getUsers, getMessage, messageSeen and
// getLastMessage.
const (
	TypeAddUser           = "addUser"
	TypeGetUsers          = "getUsers"
	TypeSendMessage       = "sendMessage"
	TypeGetMessage        = "getMessage"
	TypeMessageSeen       = "messageSeen"
	TypeUpdateLastMessage = "updateLastMessage"
	TypeGetLastMessage    = "getLastMessage"
)

// Message is the envelope of every frame in either direction.
type Message struct {
	Type           string     `json:"type"`
	SenderID       string     `json:"senderId,omitempty"`
	ReceiverID     string     `json:"receiverId,omitempty"`
	ConversationID string     `json:"conversationId,omitempty"`
	MessageID      string     `json:"messageId,omitempty"`
	Text           string     `json:"text,omitempty"`
	Images         string     `json:"images,omitempty"`
	Seen           bool       `json:"seen,omitempty"`
	LastMessage    string     `json:"lastMessage,omitempty"`
	LastMessageID  string     `json:"lastMessageId,omitempty"`
	Users          []string   `json:"users,omitempty"`
	CreatedAt      *time.Time `json:"createdAt,omitempty"`
}

// Hub maintains the set of active clients and routes messages between
// users. Presence lookups go through the injected Presence.
type Hub struct {
	// Register requests from the clients.
	Register chan *Client

	// Unregister requests from clients.
	Unregister chan *Client

	done     chan struct{}
	presence Presence
	metrics  *metrics.Manager
	log      *zap.Logger
	now      func() time.Time

	// heartbeat is how often local connections are re-registered.
	heartbeat time.Duration

	mu          sync.RWMutex
	userClients map[string][]*Client
}

func NewHub(presence Presence, m *metrics.Manager, log *zap.Logger) *Hub {
	return &Hub{
		Register:    make(chan *Client),
		Unregister:  make(chan *Client),
		done:        make(chan struct{}),
		presence:    presence,
		metrics:     m,
		log:         log,
		now:         time.Now,
		heartbeat:   PresenceTTL / 3,
		userClients: make(map[string][]*Client),
	}
}

// Run serves register and unregister requests until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case <-ticker.C:
			h.refreshPresence(ctx)
		case client := <-h.Register:
			h.add(ctx, client)
		case client := <-h.Unregister:
			h.remove(ctx, client)
		}
	}
}

// register hands client to Run, giving up once the hub has stopped.
func (h *Hub) register(client *Client) bool {
	select {
	case h.Register <- client:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) unregister(client *Client) {
	select {
	case h.Unregister <- client:
	case <-h.done:
	}
}

func (h *Hub) add(ctx context.Context, client *Client) {
	h.mu.Lock()
	h.userClients[client.UserID] = append(h.userClients[client.UserID], client)
	count := len(h.userClients[client.UserID])
	online := len(h.userClients)
	h.mu.Unlock()

	if err := h.presence.Register(ctx, client.UserID, client.ID); err != nil {
		h.log.Warn("failed to register presence", zap.String("user_id", client.UserID), zap.Error(err))
	}
	h.metrics.SetOnlineUsers(online)
	h.log.Debug("user connected", zap.String("user_id", client.UserID), zap.Int("connections", count))
	h.broadcastUsers(ctx)
}

// refreshPresence re-registers every local connection so shared presence
// entries do not expire while the socket is open.
func (h *Hub) refreshPresence(ctx context.Context) {
	h.mu.RLock()
	conns := make(map[string][]string, len(h.userClients))
	for userID, clients := range h.userClients {
		for _, c := range clients {
			conns[userID] = append(conns[userID], c.ID)
		}
	}
	h.mu.RUnlock()

	for userID, ids := range conns {
		for _, id := range ids {
			if err := h.presence.Register(ctx, userID, id); err != nil {
				h.log.Warn("failed to refresh presence", zap.String("user_id", userID), zap.Error(err))
			}
		}
	}
}

func (h *Hub) remove(ctx context.Context, client *Client) {
	h.mu.Lock()
	found := false
	conns := h.userClients[client.UserID]
	for i, c := range conns {
		if c == client {
			h.userClients[client.UserID] = append(conns[:i], conns[i+1:]...)
			found = true
			break
		}
	}
	if len(h.userClients[client.UserID]) == 0 {
		delete(h.userClients, client.UserID)
	}
	online := len(h.userClients)
	h.mu.Unlock()

	if !found {
		return
	}
	close(client.Send)

	if err := h.presence.Unregister(ctx, client.UserID, client.ID); err != nil {
		h.log.Warn("failed to unregister presence", zap.String("user_id", client.UserID), zap.Error(err))
	}
	h.metrics.SetOnlineUsers(online)
	h.log.Debug("user disconnected", zap.String("user_id", client.UserID))
	h.broadcastUsers(ctx)
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for userID, clients := range h.userClients {
		for _, c := range clients {
			close(c.Send)
		}
		delete(h.userClients, userID)
	}
}

// Dispatch handles one event received from client.
func (h *Hub) Dispatch(ctx context.Context, client *Client, in Message) {
	switch in.Type {
	case TypeAddUser:
		h.broadcastUsers(ctx)
	case TypeGetUsers:
		h.send(client, Message{Type: TypeGetUsers, Users: h.online(ctx)})
	case TypeSendMessage:
		if in.ReceiverID == "" {
			return
		}
		now := h.now()
		h.SendToUser(in.ReceiverID, Message{
			Type:           TypeGetMessage,
			SenderID:       client.UserID,
			ReceiverID:     in.ReceiverID,
			ConversationID: in.ConversationID,
			MessageID:      in.MessageID,
			Text:           in.Text,
			Images:         in.Images,
			CreatedAt:      &now,
		})
	case TypeMessageSeen:
		if in.SenderID == "" {
			return
		}
		h.SendToUser(in.SenderID, Message{
			Type:           TypeMessageSeen,
			SenderID:       in.SenderID,
			ReceiverID:     client.UserID,
			ConversationID: in.ConversationID,
			MessageID:      in.MessageID,
			Seen:           true,
		})
	case TypeUpdateLastMessage:
		out := Message{
			Type:           TypeGetLastMessage,
			ConversationID: in.ConversationID,
			LastMessage:    in.LastMessage,
			LastMessageID:  in.LastMessageID,
		}
		h.send(client, out)
		if in.ReceiverID != "" {
			h.SendToUser(in.ReceiverID, out)
		}
	default:
		h.log.Debug("ignoring unknown realtime event", zap.String("type", in.Type), zap.String("user_id", client.UserID))
	}
}

// SendToUser delivers msg to every local connection of userID and reports
// whether there was one.
func (h *Hub) SendToUser(userID string, msg Message) bool {
	payload, err := json.Marshal(msg)
	if err != nil {
		h.log.Error("failed to encode realtime message", zap.Error(err))
		return false
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	clients := h.userClients[userID]
	for _, c := range clients {
		h.trySend(c, payload)
	}
	return len(clients) > 0
}

// Broadcast delivers msg to every local connection.
func (h *Hub) Broadcast(msg Message) {
	payload, err := json.Marshal(msg)
	if err != nil {
		h.log.Error("failed to encode realtime message", zap.Error(err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, clients := range h.userClients {
		for _, c := range clients {
			h.trySend(c, payload)
		}
	}
}

func (h *Hub) send(client *Client, msg Message) {
	payload, err := json.Marshal(msg)
	if err != nil {
		h.log.Error("failed to encode realtime message", zap.Error(err))
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.userClients[client.UserID] {
		if c == client {
			h.trySend(client, payload)
			return
		}
	}
}

// trySend never blocks; a client whose buffer is full misses the frame.
// Callers hold at least the read lock, so Send is still open.
func (h *Hub) trySend(c *Client, payload []byte) {
	select {
	case c.Send <- payload:
	default:
		h.log.Warn("dropping realtime frame for slow client", zap.String("user_id", c.UserID), zap.String("conn_id", c.ID))
	}
}

func (h *Hub) broadcastUsers(ctx context.Context) {
	h.Broadcast(Message{Type: TypeGetUsers, Users: h.online(ctx)})
}

// online lists online users from the presence backend, falling back to the
// local connections when it fails.
func (h *Hub) online(ctx context.Context) []string {
	users, err := h.presence.Online(ctx)
	if err == nil {
		return users
	}
	h.log.Warn("failed to list online users", zap.Error(err))

	h.mu.RLock()
	defer h.mu.RUnlock()
	users = make([]string, 0, len(h.userClients))
	for id := range h.userClients {
		users = append(users, id)
	}
	return users
}
