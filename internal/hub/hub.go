package hub

import (
	"encoding/json"
	"sync"

	"github.com/pholguinc/api-streaming/pkg/log"
)

// Hub is the room/broadcast fabric: it groups live connections by stream uid
// and supports point-to-point, room-scoped and global emits. Membership here
// is the single source of truth for who is in a room.
type Hub struct {
	clients map[string]*Client            // clientID -> client
	rooms   map[string]map[string]*Client // streamUID -> clientID -> client
	mu      sync.RWMutex
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]*Client),
		rooms:   make(map[string]map[string]*Client),
	}
}

// Register adds a client to the hub.
func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	h.clients[client.ID] = client
	h.mu.Unlock()

	l := log.L()
	l.Debug().Str(log.FieldConnID, client.ID).Msg("client registered")
}

// Unregister removes a client from the hub and every room, closing its send
// channel.
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	if _, ok := h.clients[client.ID]; ok {
		for room, members := range h.rooms {
			delete(members, client.ID)
			if len(members) == 0 {
				delete(h.rooms, room)
			}
		}
		delete(h.clients, client.ID)
		client.closeSend()
	}
	h.mu.Unlock()

	l := log.L()
	l.Debug().Str(log.FieldConnID, client.ID).Msg("client unregistered")
}

// Client returns the client for the given id if it is still connected.
func (h *Hub) Client(id string) (*Client, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	c, ok := h.clients[id]
	return c, ok
}

// IsConnected reports whether the connection id denotes a live client.
func (h *Hub) IsConnected(id string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.clients[id]
	return ok
}

// JoinRoom adds the client to the room for streamUID.
func (h *Hub) JoinRoom(client *Client, streamUID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.rooms[streamUID]; !ok {
		h.rooms[streamUID] = make(map[string]*Client)
	}
	h.rooms[streamUID][client.ID] = client

	l := log.L()
	l.Info().Str(log.FieldConnID, client.ID).Str(log.FieldStreamUID, streamUID).Msg("client joined room")
}

// LeaveRoom removes the client from the room for streamUID.
func (h *Hub) LeaveRoom(client *Client, streamUID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if members, ok := h.rooms[streamUID]; ok {
		delete(members, client.ID)
		if len(members) == 0 {
			delete(h.rooms, streamUID)
		}
	}

	l := log.L()
	l.Info().Str(log.FieldConnID, client.ID).Str(log.FieldStreamUID, streamUID).Msg("client left room")
}

// RoomClients returns the current members of a room.
func (h *Hub) RoomClients(streamUID string) []*Client {
	h.mu.RLock()
	defer h.mu.RUnlock()

	members, ok := h.rooms[streamUID]
	if !ok {
		return nil
	}
	clients := make([]*Client, 0, len(members))
	for _, c := range members {
		clients = append(clients, c)
	}
	return clients
}

// RoomClientCount returns the number of members in a room.
func (h *Hub) RoomClientCount(streamUID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[streamUID])
}

// BroadcastToRoom sends a message to every member of a room. An empty exclude
// id sends to all members including the original sender.
func (h *Hub) BroadcastToRoom(streamUID string, message interface{}, exclude string) error {
	data, err := json.Marshal(message)
	if err != nil {
		return err
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for clientID, client := range h.rooms[streamUID] {
		if clientID == exclude {
			continue
		}
		client.enqueue(data)
	}
	return nil
}

// BroadcastAll sends a message to every connected client.
func (h *Hub) BroadcastAll(message interface{}) error {
	data, err := json.Marshal(message)
	if err != nil {
		return err
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, client := range h.clients {
		client.enqueue(data)
	}
	return nil
}
