package registry

import (
	"sync"

	"github.com/pholguinc/api-streaming/internal/domain"
)

// ConnState is the fixed per-connection state record. The identity is set
// once at registration; the role flags are mutated only through coordinator
// handlers. A connection is a broadcaster or an auto-counted viewer, never
// both.
type ConnState struct {
	ID       string
	Identity domain.Identity

	mu                sync.RWMutex
	isBroadcaster     bool
	activeStreamUID   string
	watchingStreamUID string
	isAutoViewer      bool
}

// SetBroadcasting marks the connection as the broadcaster of streamUID,
// clearing any viewer state.
func (s *ConnState) SetBroadcasting(streamUID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.isBroadcaster = true
	s.activeStreamUID = streamUID
	s.watchingStreamUID = ""
	s.isAutoViewer = false
}

// ClearBroadcasting clears broadcaster state.
func (s *ConnState) ClearBroadcasting() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.isBroadcaster = false
	s.activeStreamUID = ""
}

// Broadcasting returns the stream this connection is broadcasting, if any.
func (s *ConnState) Broadcasting() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activeStreamUID, s.isBroadcaster
}

// SetWatching marks the connection as an auto-counted viewer of streamUID.
func (s *ConnState) SetWatching(streamUID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.watchingStreamUID = streamUID
	s.isAutoViewer = true
}

// ClearWatching clears viewer state.
func (s *ConnState) ClearWatching() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.watchingStreamUID = ""
	s.isAutoViewer = false
}

// Watching returns the stream this connection is viewing, if any.
func (s *ConnState) Watching() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.watchingStreamUID, s.isAutoViewer
}

// IsCountedViewer reports whether this connection counts toward the viewer
// total of streamUID.
func (s *ConnState) IsCountedViewer(streamUID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isAutoViewer && !s.isBroadcaster && s.watchingStreamUID == streamUID
}

// Connections is the in-memory table of live connection state, keyed by
// connection id. It is owned exclusively by the presence coordinator.
type Connections struct {
	mu    sync.RWMutex
	conns map[string]*ConnState
}

// NewConnections creates an empty connection registry.
func NewConnections() *Connections {
	return &Connections{
		conns: make(map[string]*ConnState),
	}
}

// Register adds a connection with its verified identity and returns the new
// state record.
func (r *Connections) Register(connID string, identity domain.Identity) *ConnState {
	if identity.Avatar == "" {
		identity.Avatar = domain.DefaultAvatar
	}

	state := &ConnState{
		ID:       connID,
		Identity: identity,
	}

	r.mu.Lock()
	r.conns[connID] = state
	r.mu.Unlock()

	return state
}

// Lookup returns the state for a connection id.
func (r *Connections) Lookup(connID string) (*ConnState, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.conns[connID]
	return s, ok
}

// Remove deletes a connection's state.
func (r *Connections) Remove(connID string) {
	r.mu.Lock()
	delete(r.conns, connID)
	r.mu.Unlock()
}

// Len returns the number of registered connections.
func (r *Connections) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}
