package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	domain "github.com/mindsoothe/backend/internal/domain/journal"
	"github.com/mindsoothe/backend/internal/errors"
	journalsvc "github.com/mindsoothe/backend/internal/services/journal"
	"github.com/mindsoothe/backend/pkg/logger"
)

type journalHandler struct {
	svc *journalsvc.Service
	log *logger.Logger
}

func (h *journalHandler) create(w http.ResponseWriter, r *http.Request) {
	u, ok := userFromContext(r.Context())
	if !ok {
		writeError(w, h.log, errors.AuthRequired())
		return
	}

	var in journalsvc.CreateInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, h.log, err)
		return
	}

	entry, err := h.svc.Create(r.Context(), u.ID, in)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

func (h *journalHandler) list(w http.ResponseWriter, r *http.Request) {
	u, ok := userFromContext(r.Context())
	if !ok {
		writeError(w, h.log, errors.AuthRequired())
		return
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("pageSize"))

	entries, err := h.svc.List(r.Context(), u.ID, page, pageSize)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (h *journalHandler) get(w http.ResponseWriter, r *http.Request) {
	u, ok := userFromContext(r.Context())
	if !ok {
		writeError(w, h.log, errors.AuthRequired())
		return
	}

	entry, err := h.svc.Get(r.Context(), u.ID, mux.Vars(r)["id"])
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (h *journalHandler) update(w http.ResponseWriter, r *http.Request) {
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

	entry, err := h.svc.Update(r.Context(), u.ID, mux.Vars(r)["id"], patch)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (h *journalHandler) delete(w http.ResponseWriter, r *http.Request) {
	u, ok := userFromContext(r.Context())
	if !ok {
		writeError(w, h.log, errors.AuthRequired())
		return
	}

	if err := h.svc.Delete(r.Context(), u.ID, mux.Vars(r)["id"]); err != nil {
		writeError(w, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *journalHandler) unlocked(w http.ResponseWriter, r *http.Request) {
	u, ok := userFromContext(r.Context())
	if !ok {
		writeError(w, h.log, errors.AuthRequired())
		return
	}

	entries, err := h.svc.Unlocked(r.Context(), u.ID)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (h *journalHandler) moodStats(w http.ResponseWriter, r *http.Request) {
	u, ok := userFromContext(r.Context())
	if !ok {
		writeError(w, h.log, errors.AuthRequired())
		return
	}

	from, err := parseRangeParam(r, "startDate", "from")
	if err != nil {
		writeError(w, h.log, errors.InvalidInput("invalid startDate"))
		return
	}
	to, err := parseRangeParam(r, "endDate", "to")
	if err != nil {
		writeError(w, h.log, errors.InvalidInput("invalid endDate"))
		return
	}

	stats, err := h.svc.MoodStats(r.Context(), u.ID, from, to)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// parseRangeParam reads a range bound under its primary or alias name,
// accepting both full timestamps and date-only values. Absent means the
// zero time, which the service treats as an open bound.
func parseRangeParam(r *http.Request, name, alias string) (time.Time, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		v = r.URL.Query().Get(alias)
	}
	if v == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", v)
}

func (h *journalHandler) weeklySummary(w http.ResponseWriter, r *http.Request) {
	u, ok := userFromContext(r.Context())
	if !ok {
		writeError(w, h.log, errors.AuthRequired())
		return
	}

	summary, err := h.svc.WeeklySummary(r.Context(), u.ID)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}
