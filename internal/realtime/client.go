package realtime

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	maxFrameSize = 8 * 1024
	sendBuffer   = 256
)

// Client is one websocket session. Its room membership is mutated only by
// its own lifecycle events (join frame, disconnect), so no lock beyond the
// hub's is needed.
type Client struct {
	conn   *websocket.Conn
	hub    *Hub
	userID uint64
	send   chan []byte

	closeOnce sync.Once
}

func newClient(h *Hub, conn *websocket.Conn) *Client {
	return &Client{
		conn: conn,
		hub:  h,
		send: make(chan []byte, sendBuffer),
	}
}

// emit sends an event to this session only, dropping it if the buffer is full.
func (c *Client) emit(event string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	frame, err := json.Marshal(Event{Name: event, Data: data})
	if err != nil {
		return
	}
	select {
	case c.send <- frame:
	default:
	}
}

func (c *Client) readPump(h *Handler) {
	defer c.Close()

	c.conn.SetReadLimit(maxFrameSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		var evt Event
		if err := json.Unmarshal(raw, &evt); err != nil {
			h.log.Warn("dropping malformed realtime frame", "err", err)
			continue
		}
		h.dispatch(c, evt)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Close tears the session down: leaves the room, closes the send channel
// (stopping writePump) and the underlying connection.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		c.hub.Leave(c)
		close(c.send)
		_ = c.conn.Close()
	})
}
