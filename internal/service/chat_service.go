package service

import (
	"context"
	"strings"
	"time"

	"github.com/pholguinc/api-streaming/internal/audit"
	"github.com/pholguinc/api-streaming/internal/domain"
	"github.com/pholguinc/api-streaming/internal/hub"
	"github.com/pholguinc/api-streaming/internal/registry"
)

type chatService struct {
	hub   *hub.Hub
	conns *registry.Connections
}

// NewChatService creates the stateless chat relay. Role and identity context
// come from the shared connection registry.
func NewChatService(h *hub.Hub, conns *registry.Connections) ChatService {
	return &chatService{
		hub:   h,
		conns: conns,
	}
}

// HandleSendMessage validates and relays a chat message to the stream's room,
// including the sender, so every UI renders through the same event path.
func (s *chatService) HandleSendMessage(ctx context.Context, c *hub.Client, streamUID, message string) error {
	state, ok := s.conns.Lookup(c.ID)
	if !ok {
		return c.SendMessage(domain.NewErrorMessage(domain.MsgTypeSendMessage, domain.ErrCodeUnauthorized, "connection not registered"))
	}

	if streamUID == "" {
		return c.SendMessage(domain.NewErrorMessage(domain.MsgTypeSendMessage, domain.ErrCodeBadRequest, "streamUid is required"))
	}

	trimmed := strings.TrimSpace(message)
	if trimmed == "" {
		return c.SendMessage(domain.NewErrorMessage(domain.MsgTypeSendMessage, domain.ErrCodeBadRequest, "empty message"))
	}

	active, broadcasting := state.Broadcasting()
	isBroadcaster := broadcasting && active == streamUID

	audit.LogWithDetail(ctx, audit.ActionSendMessage, state.Identity.UserID, streamUID, "chat message relayed")

	return s.hub.BroadcastToRoom(streamUID, &domain.NewMessageMessage{
		Type:          domain.MsgTypeNewMessage,
		StreamUID:     streamUID,
		User:          state.Identity.Public(),
		Message:       trimmed,
		IsBroadcaster: isBroadcaster,
		Timestamp:     time.Now().UnixMilli(),
	}, "")
}

// HandleTyping relays a typing indicator to the room, excluding the sender.
// Fire-and-forget: no validation beyond type checks at decode time.
func (s *chatService) HandleTyping(ctx context.Context, c *hub.Client, streamUID string, isTyping bool) error {
	state, ok := s.conns.Lookup(c.ID)
	if !ok || streamUID == "" {
		return nil
	}

	return s.hub.BroadcastToRoom(streamUID, &domain.UserTypingMessage{
		Type:     domain.MsgTypeUserTyping,
		User:     state.Identity.Public(),
		IsTyping: isTyping,
	}, c.ID)
}
