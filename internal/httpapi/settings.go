package httpapi

import (
	"net/http"

	domain "github.com/mindsoothe/backend/internal/domain/settings"
	"github.com/mindsoothe/backend/internal/errors"
	settingssvc "github.com/mindsoothe/backend/internal/services/settings"
	"github.com/mindsoothe/backend/pkg/logger"
)

type settingsHandler struct {
	svc *settingssvc.Service
	log *logger.Logger
}

func (h *settingsHandler) get(w http.ResponseWriter, r *http.Request) {
	u, ok := userFromContext(r.Context())
	if !ok {
		writeError(w, h.log, errors.AuthRequired())
		return
	}

	set, err := h.svc.Get(r.Context(), u.ID)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, set)
}

func (h *settingsHandler) update(w http.ResponseWriter, r *http.Request) {
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

	set, err := h.svc.Update(r.Context(), u.ID, patch)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, set)
}
