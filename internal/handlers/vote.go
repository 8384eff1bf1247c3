package handlers

import (
	"ModPlanner/internal/model"
	"ModPlanner/internal/service"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

const maxBatchParts = 100

// VoteHandler — голосование и агрегаты.
type VoteHandler struct {
	VoteService *service.VoteService
	Logger      *zap.SugaredLogger
}

func NewVoteHandler(votes *service.VoteService, logger *zap.SugaredLogger) *VoteHandler {
	return &VoteHandler{VoteService: votes, Logger: logger}
}

type voteRequest struct {
	Direction model.VoteDirection `json:"direction"`
}

// Vote применяет голос с семантикой переключателя и отдаёт текущий агрегат.
func (h *VoteHandler) Vote(w http.ResponseWriter, r *http.Request) {
	partID, ok := idParam(r, "partID")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_input", "invalid part id")
		return
	}
	var req voteRequest
	if err := decodeJSON(r, &req, false); err != nil {
		h.Logger.Warnw("Vote: invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "invalid_input", "invalid request body")
		return
	}
	caller := identity(r)
	if _, err := h.VoteService.Upsert(r.Context(), caller, partID, req.Direction); err != nil {
		writeServiceError(w, h.Logger, "Vote", err)
		return
	}
	h.writeSummary(w, r, partID, caller.UserID)
}

// Unvote снимает голос. Отсутствие голоса — не ошибка.
func (h *VoteHandler) Unvote(w http.ResponseWriter, r *http.Request) {
	partID, ok := idParam(r, "partID")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_input", "invalid part id")
		return
	}
	caller := identity(r)
	if err := h.VoteService.Remove(r.Context(), caller, partID); err != nil {
		writeServiceError(w, h.Logger, "Unvote", err)
		return
	}
	h.writeSummary(w, r, partID, caller.UserID)
}

func (h *VoteHandler) Summary(w http.ResponseWriter, r *http.Request) {
	partID, ok := idParam(r, "partID")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_input", "invalid part id")
		return
	}
	h.writeSummary(w, r, partID, identity(r).UserID)
}

func (h *VoteHandler) writeSummary(w http.ResponseWriter, r *http.Request, partID, userID int64) {
	sum, err := h.VoteService.Summarize(r.Context(), partID, userID)
	if err != nil {
		writeServiceError(w, h.Logger, "VoteSummary", err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

// BatchSummary — агрегаты по списку ?part_ids=1,2,3.
func (h *VoteHandler) BatchSummary(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("part_ids")
	if raw == "" {
		writeError(w, http.StatusBadRequest, "invalid_input", "part_ids is required")
		return
	}
	parts := strings.Split(raw, ",")
	if len(parts) > maxBatchParts {
		writeError(w, http.StatusBadRequest, "invalid_input", "too many part ids")
		return
	}
	ids := make([]int64, 0, len(parts))
	for _, s := range parts {
		id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
		if err != nil || id <= 0 {
			writeError(w, http.StatusBadRequest, "invalid_input", "invalid part id "+strconv.Quote(s))
			return
		}
		ids = append(ids, id)
	}
	res, err := h.VoteService.SummarizeMany(r.Context(), ids, identity(r).UserID)
	if err != nil {
		writeServiceError(w, h.Logger, "BatchSummary", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
