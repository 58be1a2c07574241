package service

import (
	"context"
	"testing"

	"github.com/pholguinc/api-streaming/internal/config"
	"github.com/pholguinc/api-streaming/internal/domain"
	"github.com/pholguinc/api-streaming/internal/hub"
	"github.com/pholguinc/api-streaming/internal/registry"
)

type chatFixture struct {
	svc   ChatService
	hub   *hub.Hub
	conns *registry.Connections
}

func newChatFixture(t *testing.T) *chatFixture {
	t.Helper()
	h := hub.NewHub()
	conns := registry.NewConnections()
	return &chatFixture{
		svc:   NewChatService(h, conns),
		hub:   h,
		conns: conns,
	}
}

func (f *chatFixture) addMember(t *testing.T, id string, identity domain.Identity, streamUID string) *hub.Client {
	t.Helper()
	c := hub.NewClient(id, f.hub, nil, config.WebSocketConfig{})
	f.hub.Register(c)
	state := f.conns.Register(id, identity)
	f.hub.JoinRoom(c, streamUID)
	state.SetWatching(streamUID)
	return c
}

func TestSendMessageRelaysToRoomIncludingSender(t *testing.T) {
	f := newChatFixture(t)
	ctx := context.Background()

	sender := f.addMember(t, "c1", viewerIdentity("u1"), "s1")
	other := f.addMember(t, "c2", viewerIdentity("u2"), "s1")
	outsider := f.addMember(t, "c3", viewerIdentity("u3"), "s2")

	if err := f.svc.HandleSendMessage(ctx, sender, "s1", "  hello  "); err != nil {
		t.Fatalf("HandleSendMessage: %v", err)
	}

	for _, c := range []*hub.Client{sender, other} {
		msgs := drain(t, c)
		msg, ok := findType(msgs, domain.MsgTypeNewMessage)
		if !ok {
			t.Fatalf("client %s did not receive new-message", c.ID)
		}
		if msg["message"] != "hello" {
			t.Errorf("message = %q, want trimmed %q", msg["message"], "hello")
		}
		if msg["isBroadcaster"] != false {
			t.Errorf("isBroadcaster = %v", msg["isBroadcaster"])
		}
	}

	if msgs := drain(t, outsider); len(msgs) != 0 {
		t.Errorf("other room received %v", msgs)
	}
}

func TestSendMessageMarksBroadcaster(t *testing.T) {
	f := newChatFixture(t)
	ctx := context.Background()

	b := hub.NewClient("b1", f.hub, nil, config.WebSocketConfig{})
	f.hub.Register(b)
	state := f.conns.Register("b1", broadcasterIdentity("u1"))
	state.SetBroadcasting("s1")
	f.hub.JoinRoom(b, "s1")

	viewer := f.addMember(t, "v1", viewerIdentity("u2"), "s1")

	if err := f.svc.HandleSendMessage(ctx, b, "s1", "hi chat"); err != nil {
		t.Fatalf("HandleSendMessage: %v", err)
	}

	msgs := drain(t, viewer)
	msg, ok := findType(msgs, domain.MsgTypeNewMessage)
	if !ok {
		t.Fatal("viewer did not receive new-message")
	}
	if msg["isBroadcaster"] != true {
		t.Error("messages from the active broadcaster must carry the flag")
	}
}

func TestSendMessageRejectsInvalidInput(t *testing.T) {
	f := newChatFixture(t)
	ctx := context.Background()

	sender := f.addMember(t, "c1", viewerIdentity("u1"), "s1")
	other := f.addMember(t, "c2", viewerIdentity("u2"), "s1")

	tests := []struct {
		name      string
		streamUID string
		message   string
		wantCode  string
	}{
		{"missing stream uid", "", "hello", domain.ErrCodeBadRequest},
		{"empty message", "s1", "", domain.ErrCodeBadRequest},
		{"whitespace-only message", "s1", "   \n\t ", domain.ErrCodeBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := f.svc.HandleSendMessage(ctx, sender, tt.streamUID, tt.message); err != nil {
				t.Fatalf("HandleSendMessage: %v", err)
			}

			msgs := drain(t, sender)
			errMsg, ok := findType(msgs, domain.MsgTypeError)
			if !ok {
				t.Fatal("sender did not receive an error reply")
			}
			if errMsg["code"] != tt.wantCode {
				t.Errorf("code = %v, want %v", errMsg["code"], tt.wantCode)
			}

			// The error goes to the sender only; nothing reaches the room.
			if msgs := drain(t, other); len(msgs) != 0 {
				t.Errorf("room received %v", msgs)
			}
		})
	}
}

func TestSendMessageUnregisteredConnection(t *testing.T) {
	f := newChatFixture(t)
	ctx := context.Background()

	c := hub.NewClient("c1", f.hub, nil, config.WebSocketConfig{})
	f.hub.Register(c)

	if err := f.svc.HandleSendMessage(ctx, c, "s1", "hello"); err != nil {
		t.Fatalf("HandleSendMessage: %v", err)
	}

	msgs := drain(t, c)
	errMsg, ok := findType(msgs, domain.MsgTypeError)
	if !ok || errMsg["code"] != domain.ErrCodeUnauthorized {
		t.Fatalf("expected UNAUTHORIZED error, got %v", msgs)
	}
}

func TestTypingExcludesSender(t *testing.T) {
	f := newChatFixture(t)
	ctx := context.Background()

	sender := f.addMember(t, "c1", viewerIdentity("u1"), "s1")
	other := f.addMember(t, "c2", viewerIdentity("u2"), "s1")

	if err := f.svc.HandleTyping(ctx, sender, "s1", true); err != nil {
		t.Fatalf("HandleTyping: %v", err)
	}

	msgs := drain(t, other)
	typing, ok := findType(msgs, domain.MsgTypeUserTyping)
	if !ok {
		t.Fatal("room member did not receive user-typing")
	}
	if typing["isTyping"] != true {
		t.Errorf("isTyping = %v", typing["isTyping"])
	}

	if msgs := drain(t, sender); len(msgs) != 0 {
		t.Errorf("sender received its own typing indicator: %v", msgs)
	}
}

func TestTypingIsFireAndForget(t *testing.T) {
	f := newChatFixture(t)
	ctx := context.Background()

	// Unregistered connection and missing uid are both silent no-ops.
	c := hub.NewClient("c1", f.hub, nil, config.WebSocketConfig{})
	f.hub.Register(c)

	if err := f.svc.HandleTyping(ctx, c, "s1", true); err != nil {
		t.Fatalf("HandleTyping: %v", err)
	}
	if msgs := drain(t, c); len(msgs) != 0 {
		t.Errorf("expected silence, got %v", msgs)
	}

	member := f.addMember(t, "c2", viewerIdentity("u2"), "s1")
	if err := f.svc.HandleTyping(ctx, member, "", true); err != nil {
		t.Fatalf("HandleTyping: %v", err)
	}
	if msgs := drain(t, member); len(msgs) != 0 {
		t.Errorf("expected silence, got %v", msgs)
	}
}
