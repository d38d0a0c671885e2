package httpapi

import (
	"net/http"

	domain "github.com/mindsoothe/backend/internal/domain/profile"
	"github.com/mindsoothe/backend/internal/errors"
	profilesvc "github.com/mindsoothe/backend/internal/services/profile"
	"github.com/mindsoothe/backend/pkg/logger"
)

type profileHandler struct {
	svc *profilesvc.Service
	log *logger.Logger
}

func (h *profileHandler) get(w http.ResponseWriter, r *http.Request) {
	u, ok := userFromContext(r.Context())
	if !ok {
		writeError(w, h.log, errors.AuthRequired())
		return
	}

	p, err := h.svc.Get(r.Context(), u.ID)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *profileHandler) update(w http.ResponseWriter, r *http.Request) {
	u, ok := userFromContext(r.Context())
	if !ok {
		writeError(w, h.log, errors.AuthRequired())
		return
	}

	var patch domain.Patch
	if err := decodeJSON(r, &patch); err != nil {
		writeError(w, h.log, err)
		return
	}

	p, err := h.svc.Update(r.Context(), u.ID, patch)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}
