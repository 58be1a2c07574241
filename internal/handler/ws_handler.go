package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/pholguinc/api-streaming/internal/config"
	"github.com/pholguinc/api-streaming/internal/domain"
	"github.com/pholguinc/api-streaming/internal/hub"
	"github.com/pholguinc/api-streaming/internal/service"
	"github.com/pholguinc/api-streaming/pkg/jwt"
	"github.com/pholguinc/api-streaming/pkg/log"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WSHandler upgrades authenticated connections and dispatches their events.
type WSHandler struct {
	hub      *hub.Hub
	presence service.PresenceService
	chat     service.ChatService
	verifier *jwt.Manager
	wsCfg    config.WebSocketConfig
}

// NewWSHandler creates a new WebSocket handler.
func NewWSHandler(h *hub.Hub, presence service.PresenceService, chat service.ChatService, verifier *jwt.Manager, wsCfg config.WebSocketConfig) *WSHandler {
	return &WSHandler{
		hub:      h,
		presence: presence,
		chat:     chat,
		verifier: verifier,
		wsCfg:    wsCfg,
	}
}

// HandleWebSocket authenticates the handshake before upgrading: a missing or
// invalid credential rejects the connection outright.
func (h *WSHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if token == "" {
		http.Error(w, "missing credential", http.StatusUnauthorized)
		return
	}

	claims, err := h.verifier.ValidateToken(token)
	if err != nil {
		http.Error(w, "invalid credential", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		l := log.L()
		l.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	identity := domain.Identity{
		UserID:      claims.UserID,
		Username:    claims.Username,
		DisplayName: claims.DisplayName,
		Role:        domain.Role(claims.Role),
		Avatar:      claims.Avatar,
	}

	client := hub.NewClient(uuid.New().String(), h.hub, conn, h.wsCfg)

	h.hub.Register(client)

	if err := h.presence.HandleConnect(r.Context(), client, identity); err != nil {
		l := log.L()
		l.Error().Err(err).Str(log.FieldConnID, client.ID).Msg("connect handling failed")
	}

	go client.WritePump()
	go client.ReadPump(h.handleMessage, func(c *hub.Client) {
		if err := h.presence.HandleDisconnect(context.Background(), c); err != nil {
			l := log.L()
			l.Error().Err(err).Str(log.FieldConnID, c.ID).Msg("disconnect handling failed")
		}
	})
}

// handleMessage dispatches one inbound frame. A failure in one event must
// stay contained to that event and that connection.
func (h *WSHandler) handleMessage(client *hub.Client, message []byte) {
	defer func() {
		if rec := recover(); rec != nil {
			l := log.L()
			l.Error().Interface("panic", rec).Str(log.FieldConnID, client.ID).Msg("panic in event handler")
			client.SendMessage(domain.NewErrorMessage("", domain.ErrCodeInternalError, "internal error"))
		}
	}()

	var base domain.BaseMessage
	if err := json.Unmarshal(message, &base); err != nil {
		client.SendMessage(domain.NewErrorMessage("", domain.ErrCodeBadRequest, "invalid message format"))
		return
	}

	ctx := context.Background()
	l := log.L()

	switch base.Type {
	case domain.MsgTypeWatchLive, domain.MsgTypeWatch:
		payload, ok := h.decodeStreamPayload(client, base)
		if !ok {
			return
		}
		if err := h.presence.HandleWatch(ctx, client, payload.StreamUID); err != nil {
			l.Warn().Err(err).Str(log.FieldConnID, client.ID).Str(log.FieldEvent, base.Type).Msg("watch failed")
		}

	case domain.MsgTypeStopWatching:
		payload, ok := h.decodeStreamPayload(client, base)
		if !ok {
			return
		}
		if err := h.presence.HandleStopWatching(ctx, client, payload.StreamUID); err != nil {
			l.Warn().Err(err).Str(log.FieldConnID, client.ID).Str(log.FieldEvent, base.Type).Msg("stop watching failed")
		}

	case domain.MsgTypeStartStreaming:
		payload, ok := h.decodeStreamPayload(client, base)
		if !ok {
			return
		}
		if err := h.presence.HandleStartStream(ctx, client, payload.StreamUID); err != nil {
			l.Warn().Err(err).Str(log.FieldConnID, client.ID).Str(log.FieldEvent, base.Type).Msg("start streaming failed")
		}

	case domain.MsgTypeEndStreaming:
		payload, ok := h.decodeStreamPayload(client, base)
		if !ok {
			return
		}
		if err := h.presence.HandleEndStream(ctx, client, payload.StreamUID); err != nil {
			l.Warn().Err(err).Str(log.FieldConnID, client.ID).Str(log.FieldEvent, base.Type).Msg("end streaming failed")
		}

	case domain.MsgTypeSendMessage:
		var payload domain.ChatPayload
		if err := domain.DecodePayload(base.Data, &payload); err != nil {
			client.SendMessage(domain.NewErrorMessage(base.Type, domain.ErrCodeBadRequest, "invalid payload"))
			return
		}
		if err := h.chat.HandleSendMessage(ctx, client, payload.StreamUID, payload.Message); err != nil {
			l.Warn().Err(err).Str(log.FieldConnID, client.ID).Str(log.FieldEvent, base.Type).Msg("send message failed")
		}

	case domain.MsgTypeTyping:
		var payload domain.TypingPayload
		if err := domain.DecodePayload(base.Data, &payload); err != nil {
			return
		}
		if err := h.chat.HandleTyping(ctx, client, payload.StreamUID, payload.IsTyping); err != nil {
			l.Warn().Err(err).Str(log.FieldConnID, client.ID).Str(log.FieldEvent, base.Type).Msg("typing relay failed")
		}

	default:
		client.SendMessage(domain.NewErrorMessage(base.Type, domain.ErrCodeBadRequest, "unknown event type"))
	}
}

func (h *WSHandler) decodeStreamPayload(client *hub.Client, base domain.BaseMessage) (domain.StreamPayload, bool) {
	var payload domain.StreamPayload
	if err := domain.DecodePayload(base.Data, &payload); err != nil {
		client.SendMessage(domain.NewErrorMessage(base.Type, domain.ErrCodeBadRequest, "invalid payload"))
		return payload, false
	}
	return payload, true
}

// RegisterRoutes mounts the WebSocket endpoint.
func (h *WSHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/live/ws", h.HandleWebSocket)
}

func bearerToken(r *http.Request) string {
	if t := r.URL.Query().Get("token"); t != "" {
		return t
	}
	auth := r.Header.Get("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return ""
}
