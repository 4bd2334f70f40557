package realtime

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
)

// Ledger persists chat messages. Satisfied by the chat service; the hub
// itself never touches storage.
type Ledger interface {
	SendMessage(ctx context.Context, matchID, senderID uint64, content string) error
}

// Handler upgrades HTTP requests to websocket sessions and routes inbound
// events to the hub and the ledger.
//
// Inbound events: join, private_message, typing, stop_typing.
// Outbound events: new_message (emitted by the ledger path), user_typing,
// user_stop_typing, error.
type Handler struct {
	hub    *Hub
	ledger Ledger
	log    *slog.Logger

	upgrader websocket.Upgrader
}

func NewHandler(hub *Hub, ledger Ledger, log *slog.Logger) *Handler {
	return &Handler{
		hub:    hub,
		ledger: ledger,
		log:    log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Browser clients connect from a different origin than the API.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Register attaches the websocket endpoint to the router.
func (h *Handler) Register(r *mux.Router) {
	r.HandleFunc("/ws", h.ServeWS).Methods(http.MethodGet)
}

// ServeWS handles GET /ws.
func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Error("websocket upgrade failed", "err", err)
		return
	}

	c := newClient(h.hub, conn)
	h.log.Debug("socket connected", "remote", conn.RemoteAddr().String())

	go c.writePump()
	go c.readPump(h)
}

type joinPayload struct {
	UserID uint64 `json:"user_id"`
}

type messagePayload struct {
	FromUser uint64 `json:"from_user"`
	ToUser   uint64 `json:"to_user"`
	MatchID  uint64 `json:"match_id"`
	Message  string `json:"message"`
}

type typingPayload struct {
	FromUser uint64 `json:"from_user"`
	ToUser   uint64 `json:"to_user"`
	MatchID  uint64 `json:"match_id"`
}

type typingEvent struct {
	MatchID uint64 `json:"match_id"`
	UserID  uint64 `json:"user_id"`
}

type errorEvent struct {
	Message string `json:"message"`
}

// dispatch routes one inbound frame. The join is not verified against a
// real account; the socket layer trusts the client-supplied id.
func (h *Handler) dispatch(c *Client, evt Event) {
	switch evt.Name {
	case "join":
		var p joinPayload
		if err := json.Unmarshal(evt.Data, &p); err != nil || p.UserID == 0 {
			h.log.Warn("invalid join payload")
			return
		}
		h.hub.Join(p.UserID, c)
		h.log.Debug("user joined room", "user_id", p.UserID)

	case "private_message":
		var p messagePayload
		if err := json.Unmarshal(evt.Data, &p); err != nil {
			h.log.Warn("invalid private_message payload", "err", err)
			return
		}
		// The ledger persists and fans new_message out to both
		// participants; a failed persist only notifies this socket.
		if err := h.ledger.SendMessage(context.Background(), p.MatchID, p.FromUser, p.Message); err != nil {
			h.log.Error("failed to handle private message", "match_id", p.MatchID, "err", err)
			c.emit("error", errorEvent{Message: "Failed to send message"})
		}

	case "typing":
		var p typingPayload
		if err := json.Unmarshal(evt.Data, &p); err != nil {
			return
		}
		h.hub.PublishToUsers([]uint64{p.ToUser}, "user_typing",
			typingEvent{MatchID: p.MatchID, UserID: p.FromUser})

	case "stop_typing":
		var p typingPayload
		if err := json.Unmarshal(evt.Data, &p); err != nil {
			return
		}
		h.hub.PublishToUsers([]uint64{p.ToUser}, "user_stop_typing",
			typingEvent{MatchID: p.MatchID, UserID: p.FromUser})

	default:
		h.log.Warn("unknown realtime event", "event", evt.Name)
	}
}
