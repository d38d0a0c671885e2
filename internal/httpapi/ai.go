package httpapi

import (
	stderrors "errors"
	"net/http"

	domain "github.com/mindsoothe/backend/internal/domain/letter"
	"github.com/mindsoothe/backend/internal/errors"
	"github.com/mindsoothe/backend/internal/metrics"
	"github.com/mindsoothe/backend/internal/services/analysis"
	letterssvc "github.com/mindsoothe/backend/internal/services/letters"
	settingssvc "github.com/mindsoothe/backend/internal/services/settings"
	"github.com/mindsoothe/backend/pkg/logger"
)

type aiHandler struct {
	analyzer analysis.Client
	letters  *letterssvc.Service
	settings *settingssvc.Service
	metrics  *metrics.Metrics
	log      *logger.Logger
}

type analyzeRequest struct {
	Content string `json:"content"`
	// isKindFriendMode overrides; absent falls back to the saved setting.
	IsKindFriendMode *bool `json:"isKindFriendMode"`
}

func (h *aiHandler) analyzeEntry(w http.ResponseWriter, r *http.Request) {
	u, ok := userFromContext(r.Context())
	if !ok {
		writeError(w, h.log, errors.AuthRequired())
		return
	}
	if h.analyzer == nil {
		writeError(w, h.log, errors.AnalysisFailed(stderrors.New("analysis not configured")))
		return
	}

	var req analyzeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.log, err)
		return
	}

	kindFriend := false
	if req.IsKindFriendMode != nil {
		kindFriend = *req.IsKindFriendMode
	} else if set, err := h.settings.Get(r.Context(), u.ID); err == nil {
		kindFriend = set.KindFriendMode
	}

	res, err := h.analyzer.AnalyzeEntry(r.Context(), req.Content, kindFriend)
	if err != nil {
		h.countAnalysis("analyze_entry", "error")
		writeError(w, h.log, err)
		return
	}

	h.countAnalysis("analyze_entry", "ok")
	writeJSON(w, http.StatusOK, res)
}

type generateLetterRequest struct {
	WeekStart domain.Date `json:"weekStart"`
	WeekEnd   domain.Date `json:"weekEnd"`
}

func (h *aiHandler) generateWeeklyLetter(w http.ResponseWriter, r *http.Request) {
	u, ok := userFromContext(r.Context())
	if !ok {
		writeError(w, h.log, errors.AuthRequired())
		return
	}

	var req generateLetterRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.log, err)
		return
	}

	letter, err := h.letters.Generate(r.Context(), u.ID, req.WeekStart, req.WeekEnd)
	if err != nil {
		h.countAnalysis("generate_letter", "error")
		writeError(w, h.log, err)
		return
	}

	h.countAnalysis("generate_letter", "ok")
	writeJSON(w, http.StatusOK, map[string]interface{}{"letter": letter})
}

func (h *aiHandler) countAnalysis(operation, outcome string) {
	if h.metrics != nil {
		h.metrics.AnalysisCalls.WithLabelValues(operation, outcome).Inc()
	}
}
