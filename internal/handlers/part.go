package handlers

import (
	"ModPlanner/internal/model"
	"ModPlanner/internal/service"
	"net/http"

	"go.uber.org/zap"
)

// PartHandler — CRUD глобальных деталей.
type PartHandler struct {
	PartService *service.PartService
	VoteService *service.VoteService
	Logger      *zap.SugaredLogger
}

func NewPartHandler(parts *service.PartService, votes *service.VoteService, logger *zap.SugaredLogger) *PartHandler {
	return &PartHandler{PartService: parts, VoteService: votes, Logger: logger}
}

// PartResponse — деталь вместе с агрегатом голосов.
type PartResponse struct {
	*model.GlobalPart
	Votes service.VoteSummary `json:"votes"`
}

type verifyRequest struct {
	Verified *bool `json:"is_verified"`
}

func (h *PartHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req service.PartInput
	if err := decodeJSON(r, &req, false); err != nil {
		h.Logger.Warnw("CreatePart: invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "invalid_input", "invalid request body")
		return
	}
	p, err := h.PartService.Create(r.Context(), identity(r), req)
	if err != nil {
		writeServiceError(w, h.Logger, "CreatePart", err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (h *PartHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "partID")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_input", "invalid part id")
		return
	}
	p, err := h.PartService.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, h.Logger, "GetPart", err)
		return
	}
	sum, err := h.VoteService.Summarize(r.Context(), id, identity(r).UserID)
	if err != nil {
		writeServiceError(w, h.Logger, "GetPart", err)
		return
	}
	writeJSON(w, http.StatusOK, PartResponse{GlobalPart: p, Votes: sum})
}

func (h *PartHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "partID")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_input", "invalid part id")
		return
	}
	var req service.PartPatch
	if err := decodeJSON(r, &req, false); err != nil {
		h.Logger.Warnw("UpdatePart: invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "invalid_input", "invalid request body")
		return
	}
	p, err := h.PartService.Update(r.Context(), identity(r), id, req)
	if err != nil {
		writeServiceError(w, h.Logger, "UpdatePart", err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *PartHandler) Verify(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "partID")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_input", "invalid part id")
		return
	}
	req := verifyRequest{}
	if err := decodeJSON(r, &req, true); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_input", "invalid request body")
		return
	}
	verified := true
	if req.Verified != nil {
		verified = *req.Verified
	}
	p, err := h.PartService.SetVerified(r.Context(), identity(r), id, verified)
	if err != nil {
		writeServiceError(w, h.Logger, "VerifyPart", err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// Delete удаляет деталь вместе со всеми ссылками из build-листов.
func (h *PartHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "partID")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_input", "invalid part id")
		return
	}
	if err := h.PartService.Delete(r.Context(), identity(r), id); err != nil {
		writeServiceError(w, h.Logger, "DeletePart", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
