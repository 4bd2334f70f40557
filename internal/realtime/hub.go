package realtime

import (
	"encoding/json"
	"log/slog"
	"sync"
)

// Event is the wire frame exchanged with realtime clients:
// {"event": "...", "data": {...}}.
type Event struct {
	Name string          `json:"event"`
	Data json.RawMessage `json:"data"`
}

// Hub tracks which connections are joined under which user id and fans
// events out to them. Membership is runtime-only: it is rebuilt on every
// connect and discarded on disconnect, and is never authoritative for
// message history. The conversation store is the durable source of truth;
// the hub is a best-effort accelerant.
type Hub struct {
	mu    sync.RWMutex
	rooms map[uint64]map[*Client]struct{}
	log   *slog.Logger
}

func NewHub(log *slog.Logger) *Hub {
	return &Hub{
		rooms: make(map[uint64]map[*Client]struct{}),
		log:   log,
	}
}

// Join registers a connection under a user id. A connection joins at most
// one room; a repeated join moves it.
func (h *Hub) Join(userID uint64, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if c.userID != 0 && c.userID != userID {
		h.removeLocked(c.userID, c)
	}
	c.userID = userID
	if h.rooms[userID] == nil {
		h.rooms[userID] = make(map[*Client]struct{})
	}
	h.rooms[userID][c] = struct{}{}
}

// Leave drops a connection from its room. Safe to call for connections
// that never joined.
func (h *Hub) Leave(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if c.userID != 0 {
		h.removeLocked(c.userID, c)
	}
}

func (h *Hub) removeLocked(userID uint64, c *Client) {
	if room := h.rooms[userID]; room != nil {
		delete(room, c)
		if len(room) == 0 {
			delete(h.rooms, userID)
		}
	}
}

// PublishToUsers delivers an event to every connection joined under any of
// the given user ids. Delivery is at-most-once per connected session with
// no persistence or replay; connections that are not currently joined miss
// the event. Slow consumers are skipped rather than blocking delivery.
func (h *Hub) PublishToUsers(userIDs []uint64, event string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		h.log.Error("failed to marshal realtime payload", "event", event, "err", err)
		return
	}
	frame, err := json.Marshal(Event{Name: event, Data: data})
	if err != nil {
		h.log.Error("failed to marshal realtime frame", "event", event, "err", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, id := range userIDs {
		for c := range h.rooms[id] {
			select {
			case c.send <- frame:
			default:
				h.log.Warn("realtime client send buffer full, dropping event",
					"user_id", id, "event", event)
			}
		}
	}
}

// SessionCount returns how many connections are joined under a user id.
func (h *Hub) SessionCount(userID uint64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[userID])
}
