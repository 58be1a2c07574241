package hub

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/pholguinc/api-streaming/internal/config"
	"github.com/pholguinc/api-streaming/pkg/log"
)

// Client is one live transport session.
type Client struct {
	ID     string
	Hub    *Hub
	Conn   *websocket.Conn
	Send   chan []byte
	config config.WebSocketConfig

	sendMu sync.Mutex
	closed bool
}

// NewClient creates a client for an upgraded connection.
func NewClient(id string, hub *Hub, conn *websocket.Conn, cfg config.WebSocketConfig) *Client {
	return &Client{
		ID:     id,
		Hub:    hub,
		Conn:   conn,
		Send:   make(chan []byte, 256),
		config: cfg,
	}
}

// ReadPump reads frames from the socket and hands them to handler. It owns
// unregistration: when the read loop ends, for any reason, the client is
// removed from the hub and onClose runs for role-dependent cleanup.
func (c *Client) ReadPump(handler func(*Client, []byte), onClose func(*Client)) {
	defer func() {
		c.Hub.Unregister(c)
		if onClose != nil {
			onClose(c)
		}
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(c.config.MaxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(c.config.PongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(c.config.PongWait))
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				l := log.L()
				l.Warn().Err(err).Str(log.FieldConnID, c.ID).Msg("websocket read error")
			}
			break
		}

		handler(c, message)
	}
}

// WritePump drains the send channel to the socket and keeps the connection
// alive with pings.
func (c *Client) WritePump() {
	ticker := time.NewTicker(c.config.PingInterval)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(c.config.WriteWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.Conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(c.config.WriteWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// SendMessage marshals and enqueues a message for this client.
func (c *Client) SendMessage(message interface{}) error {
	data, err := json.Marshal(message)
	if err != nil {
		return err
	}
	c.enqueue(data)
	return nil
}

// enqueue drops the frame if the client's send buffer is full; a slow client
// must not stall fan-out for everyone else. Frames enqueued after closeSend
// are dropped: senders may still hold a *Client fetched before unregistration.
func (c *Client) enqueue(data []byte) {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()

	if c.closed {
		return
	}
	select {
	case c.Send <- data:
	default:
	}
}

// closeSend closes the send channel exactly once and marks the client so
// late enqueues become no-ops instead of sends on a closed channel.
func (c *Client) closeSend() {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()

	if !c.closed {
		c.closed = true
		close(c.Send)
	}
}
