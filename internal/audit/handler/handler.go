package handler

import (
	"net/http"
	"strconv"

	"github.com/fekuna/omnipos-menu-service/internal/api"
	"github.com/fekuna/omnipos-menu-service/internal/audit"
	"github.com/fekuna/omnipos-menu-service/pkg/logger"
	"github.com/go-chi/chi/v5"
)

const (
	defaultLimit = 50
	maxLimit     = 500
)

type AuditHandler struct {
	recorder audit.Recorder
	logger   logger.ZapLogger
}

func NewAuditHandler(recorder audit.Recorder, log logger.ZapLogger) *AuditHandler {
	return &AuditHandler{
		recorder: recorder,
		logger:   log,
	}
}

func (h *AuditHandler) Mount(r chi.Router) {
	r.Get("/audit/{entity_id}", h.ListByEntity)
}

// ListByEntity returns the newest catalog events of one category or dish.
func (h *AuditHandler) ListByEntity(w http.ResponseWriter, r *http.Request) {
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	events, err := h.recorder.ListByEntity(r.Context(), chi.URLParam(r, "entity_id"), limit)
	if err != nil {
		api.Fail(w, r, h.logger, err)
		return
	}
	api.List(w, events, len(events))
}
