package realtime

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func startHub(t *testing.T) (*Hub, context.CancelFunc) {
	t.Helper()
	hub := NewHub(NewMemoryPresence(), nil, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	t.Cleanup(cancel)
	return hub, cancel
}

func fakeClient(hub *Hub, userID string) *Client {
	return &Client{ID: userID + "-conn", UserID: userID, Hub: hub, Send: make(chan []byte, 16)}
}

// waitFor reads frames from c until one of type typ arrives.
func waitFor(t *testing.T, c *Client, typ string) Message {
	t.Helper()
	timeout := time.After(2 * time.Second)
	for {
		select {
		case raw, ok := <-c.Send:
			require.True(t, ok, "send channel closed while waiting for %s", typ)
			var msg Message
			require.NoError(t, json.Unmarshal(raw, &msg))
			if msg.Type == typ {
				return msg
			}
		case <-timeout:
			t.Fatalf("timed out waiting for %s frame for %s", typ, c.UserID)
		}
	}
}

func waitForUsers(t *testing.T, c *Client, want []string) {
	t.Helper()
	for {
		msg := waitFor(t, c, TypeGetUsers)
		if assert.ObjectsAreEqual(want, msg.Users) {
			return
		}
	}
}

func TestHub_PresenceBroadcast(t *testing.T) {
	hub, _ := startHub(t)
	alice, bob := fakeClient(hub, "alice"), fakeClient(hub, "bob")

	require.True(t, hub.register(alice))
	waitForUsers(t, alice, []string{"alice"})

	require.True(t, hub.register(bob))
	waitForUsers(t, alice, []string{"alice", "bob"})
	waitForUsers(t, bob, []string{"alice", "bob"})

	hub.unregister(bob)
	waitForUsers(t, alice, []string{"alice"})

	// The hub closes the send channel of a removed client.
	for range bob.Send {
	}
}

func TestHub_SendMessageReachesReceiver(t *testing.T) {
	hub, _ := startHub(t)
	alice, bob := fakeClient(hub, "alice"), fakeClient(hub, "bob")
	require.True(t, hub.register(alice))
	require.True(t, hub.register(bob))
	waitForUsers(t, bob, []string{"alice", "bob"})

	hub.Dispatch(context.Background(), alice, Message{
		Type:       TypeSendMessage,
		SenderID:   "mallory",
		ReceiverID: "bob",
		Text:       "is this still available?",
	})

	got := waitFor(t, bob, TypeGetMessage)
	assert.Equal(t, "alice", got.SenderID, "sender is taken from the connection")
	assert.Equal(t, "is this still available?", got.Text)
	assert.NotNil(t, got.CreatedAt)
}

func TestHub_MessageSeenGoesBackToSender(t *testing.T) {
	hub, _ := startHub(t)
	alice, bob := fakeClient(hub, "alice"), fakeClient(hub, "bob")
	require.True(t, hub.register(alice))
	require.True(t, hub.register(bob))
	waitForUsers(t, alice, []string{"alice", "bob"})

	hub.Dispatch(context.Background(), bob, Message{Type: TypeMessageSeen, SenderID: "alice", MessageID: "m1"})

	got := waitFor(t, alice, TypeMessageSeen)
	assert.Equal(t, "bob", got.ReceiverID)
	assert.Equal(t, "m1", got.MessageID)
	assert.True(t, got.Seen)
}

func TestHub_UpdateLastMessage(t *testing.T) {
	hub, _ := startHub(t)
	alice, bob := fakeClient(hub, "alice"), fakeClient(hub, "bob")
	require.True(t, hub.register(alice))
	require.True(t, hub.register(bob))
	waitForUsers(t, bob, []string{"alice", "bob"})

	hub.Dispatch(context.Background(), alice, Message{
		Type:           TypeUpdateLastMessage,
		ReceiverID:     "bob",
		ConversationID: "conv-1",
		LastMessage:    "see you",
		LastMessageID:  "m9",
	})

	for _, c := range []*Client{alice, bob} {
		got := waitFor(t, c, TypeGetLastMessage)
		assert.Equal(t, "conv-1", got.ConversationID)
		assert.Equal(t, "see you", got.LastMessage)
	}
}

func TestHub_SendToOfflineUser(t *testing.T) {
	hub, _ := startHub(t)
	assert.False(t, hub.SendToUser("ghost", Message{Type: TypeGetMessage}))
}

func TestHub_StopClosesClients(t *testing.T) {
	hub, cancel := startHub(t)
	alice := fakeClient(hub, "alice")
	require.True(t, hub.register(alice))
	waitForUsers(t, alice, []string{"alice"})

	cancel()
	<-hub.done

	for range alice.Send {
	}
	assert.False(t, hub.register(fakeClient(hub, "bob")))
}

// countingPresence records every Register call.
type countingPresence struct {
	*MemoryPresence
	registered chan string
}

func (p *countingPresence) Register(ctx context.Context, userID, connID string) error {
	select {
	case p.registered <- connID:
	default:
	}
	return p.MemoryPresence.Register(ctx, userID, connID)
}

func TestHub_HeartbeatRefreshesPresence(t *testing.T) {
	presence := &countingPresence{MemoryPresence: NewMemoryPresence(), registered: make(chan string, 64)}
	hub := NewHub(presence, nil, zap.NewNop())
	hub.heartbeat = 10 * time.Millisecond
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)

	alice := fakeClient(hub, "alice")
	require.True(t, hub.register(alice))

	seen := 0
	timeout := time.After(2 * time.Second)
	for seen < 3 {
		select {
		case id := <-presence.registered:
			assert.Equal(t, alice.ID, id)
			seen++
		case <-timeout:
			t.Fatalf("presence refreshed %d times, want at least 3", seen)
		}
	}
}
