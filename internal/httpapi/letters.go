package httpapi

import (
	"net/http"

	domain "github.com/mindsoothe/backend/internal/domain/letter"
	"github.com/mindsoothe/backend/internal/errors"
	letterssvc "github.com/mindsoothe/backend/internal/services/letters"
	"github.com/mindsoothe/backend/pkg/logger"
)

type lettersHandler struct {
	svc *letterssvc.Service
	log *logger.Logger
}

func (h *lettersHandler) list(w http.ResponseWriter, r *http.Request) {
	u, ok := userFromContext(r.Context())
	if !ok {
		writeError(w, h.log, errors.AuthRequired())
		return
	}

	letters, err := h.svc.List(r.Context(), u.ID)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"letters": letters})
}

func (h *lettersHandler) getByWeek(w http.ResponseWriter, r *http.Request) {
	u, ok := userFromContext(r.Context())
	if !ok {
		writeError(w, h.log, errors.AuthRequired())
		return
	}

	weekStart, err := domain.ParseDate(r.URL.Query().Get("weekStart"))
	if err != nil {
		writeError(w, h.log, errors.InvalidInput("weekStart is required"))
		return
	}
	weekEnd, err := domain.ParseDate(r.URL.Query().Get("weekEnd"))
	if err != nil {
		writeError(w, h.log, errors.InvalidInput("weekEnd is required"))
		return
	}

	letter, err := h.svc.GetByWeek(r.Context(), u.ID, weekStart, weekEnd)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"letter": letter})
}
