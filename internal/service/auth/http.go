package auth

import (
	"encoding/json"
	"net/http"

	svcErr "github.com/OTRONTO-F/Rinsohot/internal/errors"
	"github.com/OTRONTO-F/Rinsohot/internal/server"
	"github.com/gorilla/mux"
)

// Registrar ties the auth endpoints into the HTTP router. These routes are
// the only ones that run without the auth middleware.
type Registrar struct {
	svc *Service
}

// NewRegistrar creates a new Registrar for the auth service.
func NewRegistrar(svc *Service) *Registrar {
	return &Registrar{svc: svc}
}

// Register attaches the auth routes to the router.
func (reg *Registrar) Register(r *mux.Router) {
	sub := r.PathPrefix("/api/auth").Subrouter()
	sub.HandleFunc("/register", reg.handleRegister).Methods(http.MethodPost)
	sub.HandleFunc("/login", reg.handleLogin).Methods(http.MethodPost)
}

func (reg *Registrar) handleRegister(w http.ResponseWriter, r *http.Request) {
	var in RegisterInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		svcErr.WriteHTTP(w, svcErr.Validation("invalid request body"))
		return
	}

	result, err := reg.svc.Register(r.Context(), in)
	if err != nil {
		svcErr.WriteHTTP(w, err)
		return
	}
	server.WriteJSON(w, http.StatusCreated, result)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (reg *Registrar) handleLogin(w http.ResponseWriter, r *http.Request) {
	var in loginRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		svcErr.WriteHTTP(w, svcErr.Validation("invalid request body"))
		return
	}

	result, err := reg.svc.Login(r.Context(), in.Email, in.Password)
	if err != nil {
		svcErr.WriteHTTP(w, err)
		return
	}
	server.WriteJSON(w, http.StatusOK, result)
}
