package match

import (
	"net/http"
	"strconv"

	svcErr "github.com/OTRONTO-F/Rinsohot/internal/errors"
	"github.com/OTRONTO-F/Rinsohot/internal/server"
	"github.com/OTRONTO-F/Rinsohot/internal/service/auth"
	"github.com/gorilla/mux"
)

// Registrar ties the match endpoints into the HTTP router.
type Registrar struct {
	svc    *Service
	authMW mux.MiddlewareFunc
}

// NewRegistrar creates a new Registrar for the match service.
func NewRegistrar(svc *Service, authMW mux.MiddlewareFunc) *Registrar {
	return &Registrar{svc: svc, authMW: authMW}
}

// Register attaches the match routes to the router.
func (reg *Registrar) Register(r *mux.Router) {
	sub := r.PathPrefix("/api/matches").Subrouter()
	sub.Use(reg.authMW)
	sub.HandleFunc("/suggestions", reg.handleSuggestions).Methods(http.MethodGet)
	sub.HandleFunc("/list", reg.handleList).Methods(http.MethodGet)
	sub.HandleFunc("/{id}/like", reg.handleLike).Methods(http.MethodPost)
}

func (reg *Registrar) handleSuggestions(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())

	profiles, err := reg.svc.Suggestions(r.Context(), userID)
	if err != nil {
		svcErr.WriteHTTP(w, err)
		return
	}
	server.WriteJSON(w, http.StatusOK, profiles)
}

func (reg *Registrar) handleLike(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())

	targetID, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		svcErr.WriteHTTP(w, svcErr.Validation("target user id must be a valid integer"))
		return
	}

	isMatch, err := reg.svc.Like(r.Context(), userID, targetID)
	if err != nil {
		svcErr.WriteHTTP(w, err)
		return
	}
	server.WriteJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"isMatch": isMatch,
	})
}

func (reg *Registrar) handleList(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())

	rows, err := reg.svc.ListMatches(r.Context(), userID)
	if err != nil {
		svcErr.WriteHTTP(w, err)
		return
	}
	server.WriteJSON(w, http.StatusOK, rows)
}
