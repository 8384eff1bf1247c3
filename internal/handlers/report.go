package handlers

import (
	"ModPlanner/internal/model"
	"ModPlanner/internal/repo"
	"ModPlanner/internal/service"
	"net/http"
	"strconv"

	"go.uber.org/zap"
)

// ReportHandler — жалобы на детали и их рассмотрение.
type ReportHandler struct {
	ReportService *service.ReportService
	Logger        *zap.SugaredLogger
}

func NewReportHandler(reports *service.ReportService, logger *zap.SugaredLogger) *ReportHandler {
	return &ReportHandler{ReportService: reports, Logger: logger}
}

type createReportRequest struct {
	Reason      string  `json:"reason"`
	Description *string `json:"description,omitempty"`
}

type reviewRequest struct {
	Status     model.ReportStatus `json:"status"`
	AdminNotes *string            `json:"admin_notes,omitempty"`
}

// ReportListResponse — страница жалоб.
type ReportListResponse struct {
	Items []model.Report `json:"items"`
	Total int64          `json:"total"`
}

func (h *ReportHandler) Create(w http.ResponseWriter, r *http.Request) {
	partID, ok := idParam(r, "partID")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_input", "invalid part id")
		return
	}
	var req createReportRequest
	if err := decodeJSON(r, &req, false); err != nil {
		h.Logger.Warnw("CreateReport: invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "invalid_input", "invalid request body")
		return
	}
	rep, err := h.ReportService.Create(r.Context(), identity(r), partID, req.Reason, req.Description)
	if err != nil {
		writeServiceError(w, h.Logger, "CreateReport", err)
		return
	}
	writeJSON(w, http.StatusCreated, rep)
}

// List — жалобы с фильтрами status, part_id и пагинацией skip/limit.
func (h *ReportHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := repo.ReportFilter{Status: model.ReportStatus(q.Get("status"))}
	if v := q.Get("part_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil || id <= 0 {
			writeError(w, http.StatusBadRequest, "invalid_input", "invalid part_id")
			return
		}
		f.PartID = id
	}
	var err error
	if f.Offset, err = queryInt(r, "skip", 0); err != nil || f.Offset < 0 {
		writeError(w, http.StatusBadRequest, "invalid_input", "invalid skip")
		return
	}
	if f.Limit, err = queryInt(r, "limit", 0); err != nil || f.Limit < 0 {
		writeError(w, http.StatusBadRequest, "invalid_input", "invalid limit")
		return
	}

	items, total, err := h.ReportService.List(r.Context(), identity(r), f)
	if err != nil {
		writeServiceError(w, h.Logger, "ListReports", err)
		return
	}
	writeJSON(w, http.StatusOK, ReportListResponse{Items: items, Total: total})
}

// Review применяет переход pending -> resolved|dismissed.
func (h *ReportHandler) Review(w http.ResponseWriter, r *http.Request) {
	reportID, ok := idParam(r, "reportID")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_input", "invalid report id")
		return
	}
	var req reviewRequest
	if err := decodeJSON(r, &req, false); err != nil {
		h.Logger.Warnw("ReviewReport: invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "invalid_input", "invalid request body")
		return
	}
	rep, err := h.ReportService.Review(r.Context(), identity(r), reportID, req.Status, req.AdminNotes)
	if err != nil {
		writeServiceError(w, h.Logger, "ReviewReport", err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}
