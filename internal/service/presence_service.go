package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/pholguinc/api-streaming/internal/audit"
	"github.com/pholguinc/api-streaming/internal/directory"
	"github.com/pholguinc/api-streaming/internal/domain"
	"github.com/pholguinc/api-streaming/internal/events"
	"github.com/pholguinc/api-streaming/internal/hub"
	"github.com/pholguinc/api-streaming/internal/registry"
	"github.com/pholguinc/api-streaming/pkg/log"
)

// Config holds presence coordinator tunables.
type Config struct {
	BroadcastDebounce time.Duration
	ReconcileInterval time.Duration
}

const defaultReconcileInterval = 30 * time.Second

type presenceService struct {
	hub       *hub.Hub
	conns     *registry.Connections
	streamers *registry.Streamers
	dir       directory.StreamDirectory
	producer  events.Producer
	scheduler *BroadcastScheduler
	config    Config

	// Serializes compound in-memory transitions (streamer claims, role
	// flips) across interleaved handlers. Directory I/O happens outside it.
	mu sync.Mutex

	cancel context.CancelFunc
}

// NewPresenceService creates the coordinator. It owns both registries and the
// broadcast scheduler for its lifetime.
func NewPresenceService(
	h *hub.Hub,
	conns *registry.Connections,
	streamers *registry.Streamers,
	dir directory.StreamDirectory,
	producer events.Producer,
	cfg Config,
) PresenceService {
	s := &presenceService{
		hub:       h,
		conns:     conns,
		streamers: streamers,
		dir:       dir,
		producer:  producer,
		config:    cfg,
	}
	s.scheduler = NewBroadcastScheduler(cfg.BroadcastDebounce, s.broadcastSnapshot)
	return s
}

// HandleConnect registers an authenticated connection and pushes its initial
// view of the world.
func (s *presenceService) HandleConnect(ctx context.Context, c *hub.Client, identity domain.Identity) error {
	state := s.conns.Register(c.ID, identity)

	audit.Log(ctx, audit.ActionConnect, identity.UserID, "connection established")

	if err := c.SendMessage(&domain.UserInfoMessage{
		Type: domain.MsgTypeUserInfo,
		User: state.Identity,
	}); err != nil {
		return err
	}

	snapshot, err := s.Snapshot(ctx)
	if err != nil {
		l := log.Ctx(ctx)
		l.Error().Err(err).Str(log.FieldConnID, c.ID).Msg("failed to build initial snapshot")
		return c.SendMessage(domain.NewErrorMessage("connect", domain.ErrCodeInternalError, "failed to load streams"))
	}

	return c.SendMessage(domain.NewStreamsListMessage(snapshot))
}

// HandleWatch validates the target stream and joins its room as a counted
// viewer.
func (s *presenceService) HandleWatch(ctx context.Context, c *hub.Client, streamUID string) error {
	state, ok := s.conns.Lookup(c.ID)
	if !ok {
		return c.SendMessage(domain.NewErrorMessage(domain.MsgTypeWatchLive, domain.ErrCodeUnauthorized, "connection not registered"))
	}

	if streamUID == "" {
		return c.SendMessage(domain.NewErrorMessage(domain.MsgTypeWatchLive, domain.ErrCodeBadRequest, "streamUid is required"))
	}

	if _, broadcasting := state.Broadcasting(); broadcasting {
		return c.SendMessage(domain.NewErrorMessage(domain.MsgTypeWatchLive, domain.ErrCodeBadRequest, "already broadcasting"))
	}

	stream, err := s.dir.FindByID(ctx, streamUID)
	if err != nil {
		if errors.Is(err, directory.ErrStreamNotFound) {
			return c.SendMessage(domain.NewErrorMessage(domain.MsgTypeWatchLive, domain.ErrCodeNotFound, "stream not available"))
		}
		l := log.Ctx(ctx)
		l.Error().Err(err).Str(log.FieldStreamUID, streamUID).Msg("directory lookup failed")
		return c.SendMessage(domain.NewErrorMessage(domain.MsgTypeWatchLive, domain.ErrCodeInternalError, "directory unavailable"))
	}
	if stream.Status != domain.StreamStatusActive {
		return c.SendMessage(domain.NewErrorMessage(domain.MsgTypeWatchLive, domain.ErrCodeNotFound, "stream not available"))
	}

	// Watching the same stream again is a no-op; watching a different one
	// implies leaving the previous room first.
	if current, watching := state.Watching(); watching {
		if current == streamUID {
			return nil
		}
		s.stopWatchingInternal(ctx, c, state, current, "")
	}

	s.hub.JoinRoom(c, streamUID)
	state.SetWatching(streamUID)

	audit.LogWithDetail(ctx, audit.ActionWatch, state.Identity.UserID, streamUID, "viewer joined stream")

	s.notifyViewerChange(streamUID, domain.ViewerActionJoined, "", state.Identity.Public())
	s.scheduler.Schedule()

	return nil
}

// HandleStopWatching leaves the watched room. Calling it when not watching is
// a no-op.
func (s *presenceService) HandleStopWatching(ctx context.Context, c *hub.Client, streamUID string) error {
	state, ok := s.conns.Lookup(c.ID)
	if !ok {
		return nil
	}

	current, watching := state.Watching()
	if !watching || (streamUID != "" && current != streamUID) {
		return nil
	}

	s.stopWatchingInternal(ctx, c, state, current, "")
	s.scheduler.Schedule()
	return nil
}

// stopWatchingInternal leaves the room, clears viewer state and notifies the
// broadcaster. Counts are recomputed after the membership change.
func (s *presenceService) stopWatchingInternal(ctx context.Context, c *hub.Client, state *registry.ConnState, streamUID, reason string) {
	s.hub.LeaveRoom(c, streamUID)
	state.ClearWatching()

	audit.LogWithDetail(ctx, audit.ActionStopWatch, state.Identity.UserID, streamUID, "viewer left stream")

	s.notifyViewerChange(streamUID, domain.ViewerActionLeft, reason, state.Identity.Public())
}

// HandleStartStream promotes the connection to broadcaster of its own stream.
func (s *presenceService) HandleStartStream(ctx context.Context, c *hub.Client, streamUID string) error {
	state, ok := s.conns.Lookup(c.ID)
	if !ok {
		return c.SendMessage(domain.NewErrorMessage(domain.MsgTypeStartStreaming, domain.ErrCodeUnauthorized, "connection not registered"))
	}

	if streamUID == "" {
		return c.SendMessage(domain.NewErrorMessage(domain.MsgTypeStartStreaming, domain.ErrCodeBadRequest, "streamUid is required"))
	}

	if !state.Identity.CanBroadcast() {
		return c.SendMessage(domain.NewErrorMessage(domain.MsgTypeStartStreaming, domain.ErrCodeForbidden, "broadcaster role required"))
	}

	stream, err := s.dir.FindByID(ctx, streamUID)
	if err != nil {
		if errors.Is(err, directory.ErrStreamNotFound) {
			return c.SendMessage(domain.NewErrorMessage(domain.MsgTypeStartStreaming, domain.ErrCodeNotFound, "stream not found"))
		}
		l := log.Ctx(ctx)
		l.Error().Err(err).Str(log.FieldStreamUID, streamUID).Msg("directory lookup failed")
		return c.SendMessage(domain.NewErrorMessage(domain.MsgTypeStartStreaming, domain.ErrCodeInternalError, "directory unavailable"))
	}

	if stream.OwnerID != state.Identity.UserID {
		return c.SendMessage(domain.NewErrorMessage(domain.MsgTypeStartStreaming, domain.ErrCodeForbidden, "not the stream owner"))
	}

	// The lookup above may be stale by now; the conditional update is the
	// authoritative write.
	if err := s.dir.UpdateStatus(ctx, streamUID, domain.StreamStatusActive); err != nil {
		if errors.Is(err, directory.ErrStreamNotFound) {
			return c.SendMessage(domain.NewErrorMessage(domain.MsgTypeStartStreaming, domain.ErrCodeNotFound, "stream not found"))
		}
		l := log.Ctx(ctx)
		l.Error().Err(err).Str(log.FieldStreamUID, streamUID).Msg("failed to activate stream")
		return c.SendMessage(domain.NewErrorMessage(domain.MsgTypeStartStreaming, domain.ErrCodeInternalError, "failed to start stream"))
	}

	s.mu.Lock()
	if current, watching := state.Watching(); watching {
		s.stopWatchingInternal(ctx, c, state, current, "")
	}
	if displaced, replaced := s.streamers.Put(streamUID, c.ID); replaced {
		// Last writer wins: the older connection loses broadcaster status.
		if prev, ok := s.conns.Lookup(displaced.ConnID); ok {
			prev.ClearBroadcasting()
		}
	}
	state.SetBroadcasting(streamUID)
	s.hub.JoinRoom(c, streamUID)
	s.mu.Unlock()

	s.produceEvent(ctx, events.EventStreamStarted, streamUID, state.Identity.UserID, "")

	audit.LogWithDetail(ctx, audit.ActionStartStream, state.Identity.UserID, streamUID, "stream started")

	if err := c.SendMessage(&domain.StreamStartedMessage{
		Type:      domain.MsgTypeStreamStarted,
		StreamUID: streamUID,
		Status:    domain.StreamStatusActive,
	}); err != nil {
		return err
	}

	s.scheduler.Schedule()
	return nil
}

// HandleEndStream terminates a stream explicitly: flips the directory record
// offline and tells every client to drop it.
func (s *presenceService) HandleEndStream(ctx context.Context, c *hub.Client, streamUID string) error {
	state, ok := s.conns.Lookup(c.ID)
	if !ok {
		return c.SendMessage(domain.NewErrorMessage(domain.MsgTypeEndStreaming, domain.ErrCodeUnauthorized, "connection not registered"))
	}

	if streamUID == "" {
		return c.SendMessage(domain.NewErrorMessage(domain.MsgTypeEndStreaming, domain.ErrCodeBadRequest, "streamUid is required"))
	}

	stream, err := s.dir.FindByID(ctx, streamUID)
	if err != nil {
		if errors.Is(err, directory.ErrStreamNotFound) {
			return c.SendMessage(domain.NewErrorMessage(domain.MsgTypeEndStreaming, domain.ErrCodeNotFound, "stream not found"))
		}
		l := log.Ctx(ctx)
		l.Error().Err(err).Str(log.FieldStreamUID, streamUID).Msg("directory lookup failed")
		return c.SendMessage(domain.NewErrorMessage(domain.MsgTypeEndStreaming, domain.ErrCodeInternalError, "directory unavailable"))
	}

	if stream.OwnerID != state.Identity.UserID {
		return c.SendMessage(domain.NewErrorMessage(domain.MsgTypeEndStreaming, domain.ErrCodeForbidden, "not the stream owner"))
	}

	if err := s.dir.UpdateStatus(ctx, streamUID, domain.StreamStatusOffline); err != nil {
		if errors.Is(err, directory.ErrStreamNotFound) {
			return c.SendMessage(domain.NewErrorMessage(domain.MsgTypeEndStreaming, domain.ErrCodeNotFound, "stream not found"))
		}
		l := log.Ctx(ctx)
		l.Error().Err(err).Str(log.FieldStreamUID, streamUID).Msg("failed to mark stream offline")
		return c.SendMessage(domain.NewErrorMessage(domain.MsgTypeEndStreaming, domain.ErrCodeInternalError, "failed to end stream"))
	}

	s.mu.Lock()
	s.streamers.Remove(streamUID)
	if active, broadcasting := state.Broadcasting(); broadcasting && active == streamUID {
		state.ClearBroadcasting()
	}
	s.hub.LeaveRoom(c, streamUID)
	s.mu.Unlock()

	s.produceEvent(ctx, events.EventStreamStopped, streamUID, state.Identity.UserID, domain.EndReasonManual)

	audit.LogWithDetail(ctx, audit.ActionEndStream, state.Identity.UserID, streamUID, "stream ended")

	// Global, not room-scoped: viewers outside the room must drop the stream
	// from their listings too.
	s.hub.BroadcastAll(&domain.StreamEndedMessage{
		Type:      domain.MsgTypeStreamEnded,
		StreamUID: streamUID,
		Reason:    domain.EndReasonManual,
		Message:   "stream ended by broadcaster",
	})

	s.scheduler.Schedule()
	return nil
}

// HandleDisconnect runs role-dependent cleanup when a transport session ends.
// A broadcaster's directory record is deliberately left untouched: the
// transmission may continue on the ingest path and an ordinary disconnect is
// indistinguishable from a reconnect in progress. Only the orphan sweep may
// flip durable state.
func (s *presenceService) HandleDisconnect(ctx context.Context, c *hub.Client) error {
	state, ok := s.conns.Lookup(c.ID)
	if !ok {
		return nil
	}

	if streamUID, broadcasting := state.Broadcasting(); broadcasting {
		s.streamers.RemoveIfConn(streamUID, c.ID)
		state.ClearBroadcasting()
		audit.LogWithDetail(ctx, audit.ActionDisconnect, state.Identity.UserID, streamUID, "broadcaster connection dropped")
	} else if streamUID, watching := state.Watching(); watching {
		state.ClearWatching()
		audit.LogWithDetail(ctx, audit.ActionDisconnect, state.Identity.UserID, streamUID, "viewer connection dropped")
		s.notifyViewerChange(streamUID, domain.ViewerActionLeft, domain.ViewerReasonDisconnected, state.Identity.Public())
		s.scheduler.Schedule()
	}

	s.conns.Remove(c.ID)
	return nil
}

// ReconcileOrphans audits the active-streamer registry against live transport
// sessions. Confirmed loss of the control channel, unlike an ordinary
// disconnect, is authorized to flip the directory record offline.
func (s *presenceService) ReconcileOrphans(ctx context.Context) {
	l := log.Ctx(ctx)

	for streamUID, entry := range s.streamers.Entries() {
		if s.hub.IsConnected(entry.ConnID) {
			s.streamers.Touch(streamUID)
			continue
		}

		// Skip entries a concurrent disconnect already cleaned up or a
		// reconnect re-claimed.
		if !s.streamers.RemoveIfConn(streamUID, entry.ConnID) {
			continue
		}

		var ownerID string
		if stream, err := s.dir.FindByID(ctx, streamUID); err == nil {
			ownerID = stream.OwnerID
		}

		if err := s.dir.UpdateStatus(ctx, streamUID, domain.StreamStatusOffline); err != nil {
			l.Error().Err(err).Str(log.FieldStreamUID, streamUID).Msg("orphan cleanup failed to mark stream offline")
		}

		s.produceEvent(ctx, events.EventStreamStopped, streamUID, ownerID, domain.EndReasonTCPLoss)

		audit.LogWithDetail(ctx, audit.ActionOrphanCleanup, ownerID, streamUID, "orphaned stream reconciled")

		s.hub.BroadcastAll(&domain.StreamEndedMessage{
			Type:      domain.MsgTypeStreamEnded,
			StreamUID: streamUID,
			Reason:    domain.EndReasonTCPLoss,
			Message:   "broadcaster connection lost",
		})

		s.scheduler.Schedule()
	}
}

// Snapshot builds the active-streams view: directory records annotated with
// viewer counts recomputed from live room membership.
func (s *presenceService) Snapshot(ctx context.Context) ([]domain.StreamSummary, error) {
	streams, err := s.dir.FindActive(ctx)
	if err != nil {
		return nil, err
	}

	summaries := make([]domain.StreamSummary, 0, len(streams))
	for _, stream := range streams {
		_, count := s.roomViewers(stream.UID)

		summary := domain.StreamSummary{
			UID:           stream.UID,
			Title:         stream.Title,
			OwnerID:       stream.OwnerID,
			OwnerUsername: stream.OwnerUsername,
			Status:        stream.Status,
			PlaybackURL:   stream.PlaybackURL,
			ViewerCount:   count,
		}

		if entry, ok := s.streamers.Get(stream.UID); ok {
			if state, ok := s.conns.Lookup(entry.ConnID); ok {
				summary.BroadcasterAvatar = state.Identity.Avatar
			}
		}

		summaries = append(summaries, summary)
	}

	return summaries, nil
}

// Start launches the periodic orphan sweep.
func (s *presenceService) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	// A ticker rejects non-positive intervals; a misparsed config value must
	// not take the sweep down with it.
	interval := s.config.ReconcileInterval
	if interval <= 0 {
		interval = defaultReconcileInterval
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.ReconcileOrphans(ctx)
			}
		}
	}()

	l := log.L()
	l.Info().Dur("debounce", s.config.BroadcastDebounce).Dur("reconcile", interval).Msg("presence coordinator started")
	return nil
}

// Stop cancels the sweep and any pending broadcast.
func (s *presenceService) Stop() error {
	if s.cancel != nil {
		s.cancel()
	}
	s.scheduler.Stop()
	return nil
}

// roomViewers recomputes the counted viewers of a stream from live hub
// membership; never from cached state.
func (s *presenceService) roomViewers(streamUID string) ([]domain.PublicIdentity, int) {
	var viewers []domain.PublicIdentity
	for _, client := range s.hub.RoomClients(streamUID) {
		state, ok := s.conns.Lookup(client.ID)
		if !ok {
			continue
		}
		if state.IsCountedViewer(streamUID) {
			viewers = append(viewers, state.Identity.Public())
		}
	}
	return viewers, len(viewers)
}

// notifyViewerChange informs the stream's broadcaster connection, if present,
// of a viewer joining or leaving.
func (s *presenceService) notifyViewerChange(streamUID, action, reason string, viewer domain.PublicIdentity) {
	entry, ok := s.streamers.Get(streamUID)
	if !ok {
		return
	}
	client, ok := s.hub.Client(entry.ConnID)
	if !ok {
		return
	}

	current, total := s.roomViewers(streamUID)
	client.SendMessage(&domain.ViewerUpdateMessage{
		Type:           domain.MsgTypeViewerUpdate,
		StreamUID:      streamUID,
		Action:         action,
		Reason:         reason,
		Viewer:         viewer,
		CurrentViewers: current,
		TotalCount:     total,
	})
}

func (s *presenceService) produceEvent(ctx context.Context, eventType, streamUID, ownerID, reason string) {
	err := s.producer.Produce(ctx, &events.StreamEvent{
		Type:      eventType,
		StreamUID: streamUID,
		OwnerID:   ownerID,
		Reason:    reason,
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		l := log.Ctx(ctx)
		l.Warn().Err(err).Str(log.FieldStreamUID, streamUID).Msg("failed to produce lifecycle event")
	}
}

// broadcastSnapshot is the debounced emission: recompute the snapshot and fan
// it out to every connected client.
func (s *presenceService) broadcastSnapshot() {
	ctx := context.Background()

	snapshot, err := s.Snapshot(ctx)
	if err != nil {
		l := log.L()
		l.Error().Err(err).Msg("failed to build snapshot for broadcast")
		return
	}

	s.hub.BroadcastAll(domain.NewStreamsListMessage(snapshot))
}
