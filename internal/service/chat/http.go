package chat

import (
	"encoding/json"
	"net/http"
	"strconv"

	svcErr "github.com/OTRONTO-F/Rinsohot/internal/errors"
	"github.com/OTRONTO-F/Rinsohot/internal/server"
	"github.com/OTRONTO-F/Rinsohot/internal/service/auth"
	"github.com/gorilla/mux"
)

// Registrar ties the conversation endpoints into the HTTP router. The
// read/unread routes live under /api/matches for client compatibility but
// are ledger operations and are handled here.
type Registrar struct {
	svc    *Service
	authMW mux.MiddlewareFunc
}

// NewRegistrar creates a new Registrar for the chat service.
func NewRegistrar(svc *Service, authMW mux.MiddlewareFunc) *Registrar {
	return &Registrar{svc: svc, authMW: authMW}
}

// Register attaches the conversation routes to the router.
func (reg *Registrar) Register(r *mux.Router) {
	chatSub := r.PathPrefix("/api/chat").Subrouter()
	chatSub.Use(reg.authMW)
	chatSub.HandleFunc("/{matchId}/messages", reg.handleListMessages).Methods(http.MethodGet)
	chatSub.HandleFunc("/{matchId}/messages", reg.handleSend).Methods(http.MethodPost)
	chatSub.HandleFunc("/{matchId}/info", reg.handleInfo).Methods(http.MethodGet)

	matchSub := r.PathPrefix("/api/matches").Subrouter()
	matchSub.Use(reg.authMW)
	matchSub.HandleFunc("/unread/{matchId}", reg.handleUnreadCount).Methods(http.MethodGet)
	matchSub.HandleFunc("/read/{matchId}", reg.handleMarkRead).Methods(http.MethodPost)
}

func matchIDVar(r *http.Request) (uint64, error) {
	id, err := strconv.ParseUint(mux.Vars(r)["matchId"], 10, 64)
	if err != nil || id == 0 {
		return 0, svcErr.Validation("match id must be a valid integer")
	}
	return id, nil
}

func (reg *Registrar) handleListMessages(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())
	matchID, err := matchIDVar(r)
	if err != nil {
		svcErr.WriteHTTP(w, err)
		return
	}

	var token *string
	if t := r.URL.Query().Get("pagination_token"); t != "" {
		token = &t
	}
	limit := 0
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 {
			limit = n
		}
	}

	rows, nextToken, err := reg.svc.ListMessages(r.Context(), matchID, userID, token, limit)
	if err != nil {
		svcErr.WriteHTTP(w, err)
		return
	}

	if nextToken != nil {
		server.WriteJSON(w, http.StatusOK, map[string]any{
			"messages":              rows,
			"next_pagination_token": *nextToken,
		})
		return
	}
	server.WriteJSON(w, http.StatusOK, rows)
}

type sendRequest struct {
	Content string `json:"content"`
}

func (reg *Registrar) handleSend(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())
	matchID, err := matchIDVar(r)
	if err != nil {
		svcErr.WriteHTTP(w, err)
		return
	}

	var in sendRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		svcErr.WriteHTTP(w, svcErr.Validation("invalid request body"))
		return
	}

	row, err := reg.svc.Send(r.Context(), matchID, userID, in.Content)
	if err != nil {
		svcErr.WriteHTTP(w, err)
		return
	}
	server.WriteJSON(w, http.StatusOK, row)
}

func (reg *Registrar) handleInfo(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())
	matchID, err := matchIDVar(r)
	if err != nil {
		svcErr.WriteHTTP(w, err)
		return
	}

	info, err := reg.svc.Info(r.Context(), matchID, userID)
	if err != nil {
		svcErr.WriteHTTP(w, err)
		return
	}
	server.WriteJSON(w, http.StatusOK, info)
}

func (reg *Registrar) handleUnreadCount(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())
	matchID, err := matchIDVar(r)
	if err != nil {
		svcErr.WriteHTTP(w, err)
		return
	}

	count, err := reg.svc.UnreadCount(r.Context(), matchID, userID)
	if err != nil {
		svcErr.WriteHTTP(w, err)
		return
	}
	server.WriteJSON(w, http.StatusOK, map[string]int64{"count": count})
}

func (reg *Registrar) handleMarkRead(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())
	matchID, err := matchIDVar(r)
	if err != nil {
		svcErr.WriteHTTP(w, err)
		return
	}

	if err := reg.svc.MarkRead(r.Context(), matchID, userID); err != nil {
		svcErr.WriteHTTP(w, err)
		return
	}
	server.WriteJSON(w, http.StatusOK, map[string]string{"message": "Messages marked as read"})
}
