package hub

import (
	"testing"

	"github.com/pholguinc/api-streaming/internal/config"
)

func newTestClient(h *Hub, id string) *Client {
	return NewClient(id, h, nil, config.WebSocketConfig{})
}

func recv(t *testing.T, c *Client) ([]byte, bool) {
	t.Helper()
	select {
	case data := <-c.Send:
		return data, true
	default:
		return nil, false
	}
}

func TestRegisterUnregister(t *testing.T) {
	h := NewHub()
	c := newTestClient(h, "c1")

	h.Register(c)
	if !h.IsConnected("c1") {
		t.Fatal("client should be connected after register")
	}
	if got, ok := h.Client("c1"); !ok || got != c {
		t.Fatal("Client should return the registered client")
	}

	h.JoinRoom(c, "s1")
	h.Unregister(c)

	if h.IsConnected("c1") {
		t.Fatal("client should be gone after unregister")
	}
	if h.RoomClientCount("s1") != 0 {
		t.Fatal("unregister must evict the client from rooms")
	}
	if _, ok := <-c.Send; ok {
		t.Fatal("send channel should be closed")
	}

	// Double unregister must not close the channel twice.
	h.Unregister(c)
}

func TestRoomMembership(t *testing.T) {
	h := NewHub()
	c1 := newTestClient(h, "c1")
	c2 := newTestClient(h, "c2")
	h.Register(c1)
	h.Register(c2)

	h.JoinRoom(c1, "s1")
	h.JoinRoom(c2, "s1")
	if h.RoomClientCount("s1") != 2 {
		t.Fatalf("RoomClientCount = %d, want 2", h.RoomClientCount("s1"))
	}

	// Joining twice is idempotent.
	h.JoinRoom(c1, "s1")
	if h.RoomClientCount("s1") != 2 {
		t.Fatal("duplicate join must not inflate membership")
	}

	h.LeaveRoom(c1, "s1")
	if h.RoomClientCount("s1") != 1 {
		t.Fatalf("RoomClientCount = %d, want 1", h.RoomClientCount("s1"))
	}

	// Leaving a room you are not in is a no-op.
	h.LeaveRoom(c1, "s1")
	h.LeaveRoom(c1, "unknown")

	clients := h.RoomClients("s1")
	if len(clients) != 1 || clients[0] != c2 {
		t.Fatalf("RoomClients = %v", clients)
	}
	if h.RoomClients("unknown") != nil {
		t.Fatal("unknown room should have no members")
	}
}

func TestBroadcastToRoom(t *testing.T) {
	h := NewHub()
	c1 := newTestClient(h, "c1")
	c2 := newTestClient(h, "c2")
	c3 := newTestClient(h, "c3")
	h.Register(c1)
	h.Register(c2)
	h.Register(c3)
	h.JoinRoom(c1, "s1")
	h.JoinRoom(c2, "s1")
	h.JoinRoom(c3, "s2")

	if err := h.BroadcastToRoom("s1", map[string]string{"type": "ping"}, ""); err != nil {
		t.Fatalf("BroadcastToRoom: %v", err)
	}

	for _, c := range []*Client{c1, c2} {
		if _, ok := recv(t, c); !ok {
			t.Errorf("room member %s got nothing", c.ID)
		}
	}
	if _, ok := recv(t, c3); ok {
		t.Error("other room must not receive the broadcast")
	}

	// Exclusion skips the named sender.
	if err := h.BroadcastToRoom("s1", map[string]string{"type": "ping"}, "c1"); err != nil {
		t.Fatalf("BroadcastToRoom: %v", err)
	}
	if _, ok := recv(t, c1); ok {
		t.Error("excluded client must not receive the broadcast")
	}
	if _, ok := recv(t, c2); !ok {
		t.Error("remaining member should receive the broadcast")
	}
}

func TestBroadcastAll(t *testing.T) {
	h := NewHub()
	c1 := newTestClient(h, "c1")
	c2 := newTestClient(h, "c2")
	h.Register(c1)
	h.Register(c2)
	h.JoinRoom(c1, "s1")

	if err := h.BroadcastAll(map[string]string{"type": "ping"}); err != nil {
		t.Fatalf("BroadcastAll: %v", err)
	}

	for _, c := range []*Client{c1, c2} {
		if _, ok := recv(t, c); !ok {
			t.Errorf("client %s got nothing", c.ID)
		}
	}
}

func TestSendAfterUnregisterIsDropped(t *testing.T) {
	h := NewHub()
	c := newTestClient(h, "c1")
	h.Register(c)

	// A sender can fetch the client, lose the race to an unregister, and
	// only then enqueue. That late send must be a silent drop.
	fetched, ok := h.Client("c1")
	if !ok {
		t.Fatal("client should be registered")
	}
	h.Unregister(c)

	if err := fetched.SendMessage(map[string]string{"type": "ping"}); err != nil {
		t.Fatalf("SendMessage: %v", err)
	}

	if err := h.BroadcastAll(map[string]string{"type": "ping"}); err != nil {
		t.Fatalf("BroadcastAll: %v", err)
	}
}

func TestEnqueueDropsWhenBufferFull(t *testing.T) {
	h := NewHub()
	c := newTestClient(h, "c1")
	h.Register(c)

	for i := 0; i < cap(c.Send)+10; i++ {
		if err := c.SendMessage(map[string]string{"type": "ping"}); err != nil {
			t.Fatalf("SendMessage: %v", err)
		}
	}

	if len(c.Send) != cap(c.Send) {
		t.Fatalf("buffered = %d, want full buffer %d", len(c.Send), cap(c.Send))
	}
}
