package mockapi

import (
	"net/http"
	"net/mail"
	"strings"

	"petcare-client/internal/domain/users"
	"petcare-client/internal/middleware"
	"petcare-client/internal/ports/auth"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Access  string      `json:"access"`
	Refresh string      `json:"refresh"`
	User    *users.User `json:"user,omitempty"`
}

func (h *handlers) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decode(w, r, &req) {
		return
	}
	u, ok := h.store.Authenticate(req.Email, req.Password)
	if !ok {
		writeDetail(w, http.StatusUnauthorized, "No active account found with the given credentials")
		return
	}
	pair, err := h.issuer.Issue(auth.Claims{UserID: u.ID, Email: u.Email, Role: string(u.Role)})
	if err != nil {
		writeError(w, err)
		return
	}

	out := tokenResponse{Access: pair.Access, Refresh: pair.Refresh}
	if !h.opts.LoginOmitsUser {
		out.User = &u
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *handlers) refresh(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Refresh string `json:"refresh"`
	}
	if !decode(w, r, &req) {
		return
	}
	pair, err := h.issuer.Refresh(r.Context(), req.Refresh)
	if err != nil {
		writeDetail(w, http.StatusUnauthorized, "Token is invalid or expired")
		return
	}
	writeJSON(w, http.StatusOK, tokenResponse{Access: pair.Access, Refresh: pair.Refresh})
}

func (h *handlers) register(w http.ResponseWriter, r *http.Request) {
	var in users.RegisterInput
	if !decode(w, r, &in) {
		return
	}
	if _, err := mail.ParseAddress(strings.TrimSpace(in.Email)); err != nil {
		writeField(w, "email", "Enter a valid email address.")
		return
	}
	if len(in.Password) < 8 {
		writeField(w, "password", "Ensure this field has at least 8 characters.")
		return
	}
	if strings.TrimSpace(in.FirstName) == "" {
		writeField(w, "first_name", "This field is required.")
		return
	}
	if in.Role != "" {
		role, ok := users.ParseRole(string(in.Role))
		if !ok {
			writeField(w, "role", "Invalid role.")
			return
		}
		in.Role = role
	}

	u, err := h.store.Register(in)
	if err != nil {
		if err == errDuplicate {
			writeField(w, "email", "user with this email already exists.")
			return
		}
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, u)
}

func (h *handlers) me(w http.ResponseWriter, r *http.Request) {
	if h.opts.NoWhoami {
		writeDetail(w, http.StatusNotFound, "Not found.")
		return
	}
	u, ok := h.store.User(middleware.UserID(r.Context()))
	if !ok {
		writeDetail(w, http.StatusUnauthorized, "User not found")
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (h *handlers) getUser(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	u, ok := h.store.User(id)
	if !ok {
		writeDetail(w, http.StatusNotFound, "Not found.")
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (h *handlers) updateUser(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var in users.UpdateInput
	if !decode(w, r, &in) {
		return
	}
	u, err := h.store.UpdateUser(middleware.UserID(r.Context()), id, in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (h *handlers) switchRole(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Role string `json:"role"`
	}
	if !decode(w, r, &req) {
		return
	}
	role, ok := users.ParseRole(req.Role)
	if !ok {
		writeField(w, "role", "Invalid role.")
		return
	}
	u, err := h.store.SwitchRole(middleware.UserID(r.Context()), role)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}
