package registry

import (
	"sync"
	"time"
)

// StreamerEntry tracks the connection currently broadcasting a stream.
type StreamerEntry struct {
	ConnID   string
	LastSeen time.Time
}

// Streamers maps stream uid -> broadcasting connection. An entry exists iff
// some connected client holds broadcaster state for that stream.
type Streamers struct {
	mu      sync.RWMutex
	entries map[string]StreamerEntry
}

// NewStreamers creates an empty active-streamer registry.
func NewStreamers() *Streamers {
	return &Streamers{
		entries: make(map[string]StreamerEntry),
	}
}

// Put records connID as the broadcaster of streamUID. If another connection
// held the stream, its entry is displaced and returned so the caller can
// clear that connection's state (last writer wins).
func (s *Streamers) Put(streamUID, connID string) (StreamerEntry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, existed := s.entries[streamUID]
	s.entries[streamUID] = StreamerEntry{
		ConnID:   connID,
		LastSeen: time.Now(),
	}

	if existed && prev.ConnID != connID {
		return prev, true
	}
	return StreamerEntry{}, false
}

// Get returns the entry for streamUID.
func (s *Streamers) Get(streamUID string) (StreamerEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[streamUID]
	return e, ok
}

// Remove deletes the entry for streamUID regardless of owner.
func (s *Streamers) Remove(streamUID string) {
	s.mu.Lock()
	delete(s.entries, streamUID)
	s.mu.Unlock()
}

// RemoveIfConn deletes the entry only if it is still held by connID. This is
// what lets a disconnect cleanup and the orphan sweep race safely: whoever
// removes first wins, the other is a no-op.
func (s *Streamers) RemoveIfConn(streamUID, connID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[streamUID]
	if !ok || e.ConnID != connID {
		return false
	}
	delete(s.entries, streamUID)
	return true
}

// Touch refreshes the last-seen timestamp for streamUID.
func (s *Streamers) Touch(streamUID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.entries[streamUID]; ok {
		e.LastSeen = time.Now()
		s.entries[streamUID] = e
	}
}

// Entries returns a copy of the registry for iteration.
func (s *Streamers) Entries() map[string]StreamerEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]StreamerEntry, len(s.entries))
	for uid, e := range s.entries {
		out[uid] = e
	}
	return out
}
