package events

import (
	"context"
	"time"
)

// Event types published on stream lifecycle transitions.
const (
	EventStreamStarted = "stream.started"
	EventStreamStopped = "stream.stopped"
)

// StreamEvent is the payload published for downstream consumers (VOD,
// notifications, analytics).
type StreamEvent struct {
	Type      string    `json:"type"`
	StreamUID string    `json:"stream_uid"`
	OwnerID   string    `json:"owner_id"`
	Reason    string    `json:"reason,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Producer publishes stream lifecycle events. Delivery is best-effort.
type Producer interface {
	Produce(ctx context.Context, event *StreamEvent) error
	Close() error
}
