package domain

import (
	"encoding/json"
	"time"
)

// WebSocket message types from client.
const (
	MsgTypeWatchLive      = "watch_live"
	MsgTypeWatch          = "watch" // legacy alias of watch_live
	MsgTypeStopWatching   = "stop_watching"
	MsgTypeStartStreaming = "start_streaming"
	MsgTypeEndStreaming   = "end_streaming"
	MsgTypeSendMessage    = "send-message"
	MsgTypeTyping         = "typing"
)

// WebSocket message types to client.
const (
	MsgTypeUserInfo      = "user-info"
	MsgTypeStreamsList   = "streams-list"
	MsgTypeStreamStarted = "stream_started"
	MsgTypeStreamEnded   = "stream_ended"
	MsgTypeViewerUpdate  = "viewer_update"
	MsgTypeNewMessage    = "new-message"
	MsgTypeUserTyping    = "user-typing"
	MsgTypeError         = "error"
)

// Error codes
const (
	ErrCodeUnauthorized  = "UNAUTHORIZED"
	ErrCodeForbidden     = "FORBIDDEN"
	ErrCodeBadRequest    = "BAD_REQUEST"
	ErrCodeNotFound      = "NOT_FOUND"
	ErrCodeInternalError = "INTERNAL_ERROR"
)

// Stream-ended reasons.
const (
	EndReasonManual  = "manual"
	EndReasonTCPLoss = "tcp_disconnection"
)

// Viewer-update actions and reasons.
const (
	ViewerActionJoined = "joined"
	ViewerActionLeft   = "left"

	ViewerReasonDisconnected = "disconnected"
)

// BaseMessage is the envelope for all inbound WebSocket messages. Data may be
// a JSON object or a JSON-encoded string of one; see DecodePayload.
type BaseMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// Client -> Server payloads

type StreamPayload struct {
	StreamUID string `json:"streamUid"`
}

type ChatPayload struct {
	StreamUID string `json:"streamUid"`
	Message   string `json:"message"`
}

type TypingPayload struct {
	StreamUID string `json:"streamUid"`
	IsTyping  bool   `json:"isTyping"`
}

// Server -> Client messages

type UserInfoMessage struct {
	Type string   `json:"type"`
	User Identity `json:"user"`
}

type StreamsListMessage struct {
	Type      string          `json:"type"`
	Streams   []StreamSummary `json:"streams"`
	Count     int             `json:"count"`
	Timestamp int64           `json:"timestamp"`
}

type StreamStartedMessage struct {
	Type      string       `json:"type"`
	StreamUID string       `json:"streamUid"`
	Status    StreamStatus `json:"status"`
}

type StreamEndedMessage struct {
	Type      string `json:"type"`
	StreamUID string `json:"streamUid"`
	Reason    string `json:"reason"`
	Message   string `json:"message"`
}

type ViewerUpdateMessage struct {
	Type           string           `json:"type"`
	StreamUID      string           `json:"streamUid"`
	Action         string           `json:"action"`
	Reason         string           `json:"reason,omitempty"`
	Viewer         PublicIdentity   `json:"viewer"`
	CurrentViewers []PublicIdentity `json:"currentViewers"`
	TotalCount     int              `json:"totalCount"`
}

type NewMessageMessage struct {
	Type          string         `json:"type"`
	StreamUID     string         `json:"streamUid"`
	User          PublicIdentity `json:"user"`
	Message       string         `json:"message"`
	IsBroadcaster bool           `json:"isBroadcaster"`
	Timestamp     int64          `json:"timestamp"`
}

type UserTypingMessage struct {
	Type     string         `json:"type"`
	User     PublicIdentity `json:"user"`
	IsTyping bool           `json:"isTyping"`
}

type ErrorMessage struct {
	Type    string `json:"type"`
	Event   string `json:"event"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewErrorMessage builds the structured error reply for a failed event.
func NewErrorMessage(event, code, message string) *ErrorMessage {
	return &ErrorMessage{
		Type:    MsgTypeError,
		Event:   event,
		Code:    code,
		Message: message,
	}
}

// NewStreamsListMessage wraps a snapshot for fan-out.
func NewStreamsListMessage(streams []StreamSummary) *StreamsListMessage {
	return &StreamsListMessage{
		Type:      MsgTypeStreamsList,
		Streams:   streams,
		Count:     len(streams),
		Timestamp: time.Now().UnixMilli(),
	}
}
