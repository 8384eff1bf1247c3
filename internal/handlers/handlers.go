package handlers

import (
	"ModPlanner/internal/config"
	"ModPlanner/internal/metrics"
	"ModPlanner/internal/middleware"
	"ModPlanner/internal/service"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type Handler struct {
	Router chi.Router
}

// Services — сервисы, которые обслуживает HTTP-слой.
type Services struct {
	Parts      *service.PartService
	Votes      *service.VoteService
	Reports    *service.ReportService
	Flagging   *service.FlaggingService
	BuildLists *service.BuildListService
	Linker     *service.ReferenceLinker
}

// NewHandler разводящий для хендлеров
func NewHandler(
	svc Services,
	m *metrics.Metrics,
	logger *zap.SugaredLogger,
	config *config.Config,
) *Handler {
	r := chi.NewRouter()

	r.Use(middleware.WithGzip)
	r.Use(middleware.WithLogging)
	r.Use(middleware.WithMetrics(m))
	r.Use(middleware.WithAuth(config.AuthSecret))

	// Handlers
	partHandler := NewPartHandler(svc.Parts, svc.Votes, logger)
	voteHandler := NewVoteHandler(svc.Votes, logger)
	reportHandler := NewReportHandler(svc.Reports, logger)
	flaggedHandler := NewFlaggedHandler(svc.Flagging, logger)
	buildListHandler := NewBuildListHandler(svc.BuildLists, svc.Linker, logger)

	r.Get("/api/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", m.Handler())

	// Parts
	r.Post("/api/parts", partHandler.Create)
	r.Get("/api/parts/flagged", flaggedHandler.List)
	r.Get("/api/parts/votes", voteHandler.BatchSummary)
	r.Get("/api/parts/{partID}", partHandler.Get)
	r.Put("/api/parts/{partID}", partHandler.Update)
	r.Delete("/api/parts/{partID}", partHandler.Delete)
	r.Put("/api/parts/{partID}/verify", partHandler.Verify)

	// Votes
	r.Post("/api/parts/{partID}/vote", voteHandler.Vote)
	r.Delete("/api/parts/{partID}/vote", voteHandler.Unvote)
	r.Get("/api/parts/{partID}/votes", voteHandler.Summary)

	// Reports
	r.Post("/api/parts/{partID}/reports", reportHandler.Create)
	r.Get("/api/reports", reportHandler.List)
	r.Put("/api/reports/{reportID}", reportHandler.Review)

	// Build lists
	r.Post("/api/build-lists", buildListHandler.Create)
	r.Get("/api/build-lists/{listID}", buildListHandler.Get)
	r.Post("/api/build-lists/{listID}/parts/{partID}", buildListHandler.Attach)
	r.Put("/api/build-lists/{listID}/parts/{partID}", buildListHandler.UpdateNotes)
	r.Delete("/api/build-lists/{listID}/parts/{partID}", buildListHandler.Detach)

	return &Handler{Router: r}
}
