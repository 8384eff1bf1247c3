package handlers

import (
	"ModPlanner/internal/service"
	"net/http"
	"strconv"

	"go.uber.org/zap"
)

// FlaggedHandler — список деталей для модерации.
type FlaggedHandler struct {
	FlaggingService *service.FlaggingService
	Logger          *zap.SugaredLogger
}

func NewFlaggedHandler(flagging *service.FlaggingService, logger *zap.SugaredLogger) *FlaggedHandler {
	return &FlaggedHandler{FlaggingService: flagging, Logger: logger}
}

// parseFlagConfig читает параметры поверх значений по умолчанию.
// threshold — устаревший синоним min_downvote_ratio, учитывается только без него.
func parseFlagConfig(r *http.Request, defaults service.FlagConfig) (service.FlagConfig, error) {
	q := r.URL.Query()
	cfg := defaults
	var err error
	if cfg.MinVotes, err = queryInt(r, "min_votes", defaults.MinVotes); err != nil {
		return cfg, err
	}
	if cfg.DaysBack, err = queryInt(r, "days_back", defaults.DaysBack); err != nil {
		return cfg, err
	}
	if cfg.Offset, err = queryInt(r, "skip", 0); err != nil {
		return cfg, err
	}
	if cfg.Limit, err = queryInt(r, "limit", 0); err != nil {
		return cfg, err
	}
	ratio := q.Get("min_downvote_ratio")
	if ratio == "" {
		ratio = q.Get("threshold")
	}
	if ratio != "" {
		if cfg.MinDownvoteRatio, err = strconv.ParseFloat(ratio, 64); err != nil {
			return cfg, err
		}
	}
	return cfg, nil
}

// List доступен только модераторам.
func (h *FlaggedHandler) List(w http.ResponseWriter, r *http.Request) {
	caller := identity(r)
	if !caller.Authenticated() {
		writeServiceError(w, h.Logger, "ListFlagged", service.ErrUnauthorized)
		return
	}
	if !caller.IsAdmin {
		writeServiceError(w, h.Logger, "ListFlagged", service.ErrForbidden)
		return
	}
	cfg, err := parseFlagConfig(r, h.FlaggingService.Defaults())
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_input", "invalid query parameter")
		return
	}
	page, err := h.FlaggingService.ListFlagged(r.Context(), cfg)
	if err != nil {
		writeServiceError(w, h.Logger, "ListFlagged", err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}
