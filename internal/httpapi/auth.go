package httpapi

import (
	"net/http"

	"github.com/mindsoothe/backend/internal/errors"
	authsvc "github.com/mindsoothe/backend/internal/services/auth"
	"github.com/mindsoothe/backend/pkg/logger"
)

type authHandler struct {
	svc   *authsvc.Service
	audit *auditLog
	log   *logger.Logger
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
}

func (h *authHandler) signup(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.log, err)
		return
	}

	pub, token, err := h.svc.Signup(r.Context(), req.Email, req.Password, req.FullName)
	if err != nil {
		h.audit.record(r, "auth.signup", "", false)
		writeError(w, h.log, err)
		return
	}

	h.audit.record(r, "auth.signup", pub.ID, true)
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"user":  pub,
		"token": token,
	})
}

func (h *authHandler) signin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.log, err)
		return
	}

	pub, token, err := h.svc.Signin(r.Context(), req.Email, req.Password)
	if err != nil {
		h.audit.record(r, "auth.signin", "", false)
		writeError(w, h.log, err)
		return
	}

	h.audit.record(r, "auth.signin", pub.ID, true)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"user":  pub,
		"token": token,
	})
}

func (h *authHandler) signout(w http.ResponseWriter, r *http.Request) {
	u, ok := userFromContext(r.Context())
	if !ok {
		writeError(w, h.log, errors.AuthRequired())
		return
	}

	token := bearerToken(r)
	if err := h.svc.Signout(r.Context(), token); err != nil {
		writeError(w, h.log, err)
		return
	}

	h.audit.record(r, "auth.signout", u.ID, true)
	writeJSON(w, http.StatusOK, map[string]string{"message": "signed out"})
}

func (h *authHandler) me(w http.ResponseWriter, r *http.Request) {
	u, ok := userFromContext(r.Context())
	if !ok {
		writeError(w, h.log, errors.AuthRequired())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"user": u.Public()})
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if len(header) > 7 && header[:7] == "Bearer " {
		return header[7:]
	}
	return ""
}
