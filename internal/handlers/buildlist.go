package handlers

import (
	"ModPlanner/internal/service"
	"net/http"

	"go.uber.org/zap"
)

// BuildListHandler — build-листы и связи с глобальными деталями.
type BuildListHandler struct {
	BuildListService *service.BuildListService
	Linker           *service.ReferenceLinker
	Logger           *zap.SugaredLogger
}

func NewBuildListHandler(lists *service.BuildListService, linker *service.ReferenceLinker, logger *zap.SugaredLogger) *BuildListHandler {
	return &BuildListHandler{BuildListService: lists, Linker: linker, Logger: logger}
}

type createBuildListRequest struct {
	Name string `json:"name"`
}

type notesRequest struct {
	Notes *string `json:"notes"`
}

func (h *BuildListHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createBuildListRequest
	if err := decodeJSON(r, &req, false); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_input", "invalid request body")
		return
	}
	bl, err := h.BuildListService.Create(r.Context(), identity(r), req.Name)
	if err != nil {
		writeServiceError(w, h.Logger, "CreateBuildList", err)
		return
	}
	writeJSON(w, http.StatusCreated, bl)
}

func (h *BuildListHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "listID")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_input", "invalid build list id")
		return
	}
	view, err := h.BuildListService.Get(r.Context(), identity(r), id)
	if err != nil {
		writeServiceError(w, h.Logger, "GetBuildList", err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func pairParams(r *http.Request) (listID, partID int64, ok bool) {
	listID, ok = idParam(r, "listID")
	if !ok {
		return 0, 0, false
	}
	partID, ok = idParam(r, "partID")
	return listID, partID, ok
}

func (h *BuildListHandler) Attach(w http.ResponseWriter, r *http.Request) {
	listID, partID, ok := pairParams(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_input", "invalid build list or part id")
		return
	}
	var req notesRequest
	if err := decodeJSON(r, &req, true); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_input", "invalid request body")
		return
	}
	j, err := h.Linker.Attach(r.Context(), identity(r), listID, partID, req.Notes)
	if err != nil {
		writeServiceError(w, h.Logger, "AttachPart", err)
		return
	}
	writeJSON(w, http.StatusCreated, j)
}

func (h *BuildListHandler) UpdateNotes(w http.ResponseWriter, r *http.Request) {
	listID, partID, ok := pairParams(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_input", "invalid build list or part id")
		return
	}
	var req notesRequest
	if err := decodeJSON(r, &req, false); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_input", "invalid request body")
		return
	}
	j, err := h.Linker.UpdateNotesByPair(r.Context(), identity(r), listID, partID, req.Notes)
	if err != nil {
		writeServiceError(w, h.Logger, "UpdateNotes", err)
		return
	}
	writeJSON(w, http.StatusOK, j)
}

func (h *BuildListHandler) Detach(w http.ResponseWriter, r *http.Request) {
	listID, partID, ok := pairParams(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_input", "invalid build list or part id")
		return
	}
	if err := h.Linker.DetachByPair(r.Context(), identity(r), listID, partID); err != nil {
		writeServiceError(w, h.Logger, "DetachPart", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
