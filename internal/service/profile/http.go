package profile

import (
	"encoding/json"
	"net/http"

	svcErr "github.com/OTRONTO-F/Rinsohot/internal/errors"
	"github.com/OTRONTO-F/Rinsohot/internal/server"
	"github.com/OTRONTO-F/Rinsohot/internal/service/auth"
	"github.com/gorilla/mux"
)

// Registrar ties the preference and interest endpoints into the HTTP router.
type Registrar struct {
	svc    *Service
	authMW mux.MiddlewareFunc
}

// NewRegistrar creates a new Registrar for the profile service.
func NewRegistrar(svc *Service, authMW mux.MiddlewareFunc) *Registrar {
	return &Registrar{svc: svc, authMW: authMW}
}

// Register attaches the profile routes to the router. The interest catalog
// is public; preference routes require auth.
func (reg *Registrar) Register(r *mux.Router) {
	r.HandleFunc("/api/interests", reg.handleListInterests).Methods(http.MethodGet)

	sub := r.PathPrefix("/api/preferences").Subrouter()
	sub.Use(reg.authMW)
	sub.HandleFunc("", reg.handleSave).Methods(http.MethodPost)
	sub.HandleFunc("/check", reg.handleCheck).Methods(http.MethodGet)
}

func (reg *Registrar) handleListInterests(w http.ResponseWriter, r *http.Request) {
	interests, err := reg.svc.ListInterests(r.Context())
	if err != nil {
		svcErr.WriteHTTP(w, err)
		return
	}
	server.WriteJSON(w, http.StatusOK, interests)
}

func (reg *Registrar) handleSave(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())

	var in PreferencesInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		svcErr.WriteHTTP(w, svcErr.Validation("invalid request body"))
		return
	}

	if err := reg.svc.SavePreferences(r.Context(), userID, in); err != nil {
		svcErr.WriteHTTP(w, err)
		return
	}
	server.WriteJSON(w, http.StatusOK, map[string]string{"message": "Preferences saved successfully"})
}

func (reg *Registrar) handleCheck(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())

	has, err := reg.svc.HasPreferences(r.Context(), userID)
	if err != nil {
		svcErr.WriteHTTP(w, err)
		return
	}
	server.WriteJSON(w, http.StatusOK, map[string]bool{"hasPreferences": has})
}
