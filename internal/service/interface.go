package service

import (
	"context"

	"github.com/pholguinc/api-streaming/internal/domain"
	"github.com/pholguinc/api-streaming/internal/hub"
)

// PresenceService is the coordinator for connection roles, room membership
// and the active-streamer registry.
type PresenceService interface {
	HandleConnect(ctx context.Context, client *hub.Client, identity domain.Identity) error
	HandleWatch(ctx context.Context, client *hub.Client, streamUID string) error
	HandleStopWatching(ctx context.Context, client *hub.Client, streamUID string) error
	HandleStartStream(ctx context.Context, client *hub.Client, streamUID string) error
	HandleEndStream(ctx context.Context, client *hub.Client, streamUID string) error
	HandleDisconnect(ctx context.Context, client *hub.Client) error
	ReconcileOrphans(ctx context.Context)
	Snapshot(ctx context.Context) ([]domain.StreamSummary, error)
	Start(ctx context.Context) error
	Stop() error
}

// ChatService relays chat traffic within a stream's room. It keeps no state
// of its own.
type ChatService interface {
	HandleSendMessage(ctx context.Context, client *hub.Client, streamUID, message string) error
	HandleTyping(ctx context.Context, client *hub.Client, streamUID string, isTyping bool) error
}
