package handlers_test

import (
	"ModPlanner/internal/cache"
	"ModPlanner/internal/config"
	"ModPlanner/internal/handlers"
	"ModPlanner/internal/metrics"
	"ModPlanner/internal/middleware"
	"ModPlanner/internal/repo"
	"ModPlanner/internal/service"
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testSecret = "test-secret"

func newHandlersTestRouter(t *testing.T) http.Handler {
	t.Helper()
	db, err := repo.InitDB("file:" + uuid.NewString() + "?mode=memory&cache=shared&_time_format=sqlite")
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	cfg := &config.Config{AuthSecret: testSecret}
	logger := zap.NewNop().Sugar()
	m, err := metrics.New(prometheus.NewRegistry())
	require.NoError(t, err)

	tx := repo.NewTransactor(db)
	parts := repo.NewPartRepository(db)
	votes := repo.NewVoteRepository(db)
	reports := repo.NewReportRepository(db)
	lists := repo.NewBuildListRepository(db)
	junctions := repo.NewJunctionRepository(db)

	flagging := service.NewFlaggingService(parts, votes, reports, cache.NewMemory(time.Minute),
		service.FlagConfig{MinVotes: 3, MinDownvoteRatio: 0.6, DaysBack: 30}, m, logger)
	linker := service.NewReferenceLinker(tx, lists, parts, junctions, logger)
	svc := handlers.Services{
		Parts:      service.NewPartService(tx, parts, votes, reports, linker, flagging, m, logger),
		Votes:      service.NewVoteService(tx, parts, votes, flagging, m, logger),
		Reports:    service.NewReportService(tx, parts, reports, flagging, m, logger),
		Flagging:   flagging,
		BuildLists: service.NewBuildListService(lists, linker),
		Linker:     linker,
	}
	return handlers.NewHandler(svc, m, logger, cfg).Router
}

func addAuth(t *testing.T, req *http.Request, userID int64, isAdmin bool) {
	t.Helper()
	rr := httptest.NewRecorder()
	require.NoError(t, middleware.SetLoginCookie(rr, userID, isAdmin, testSecret))
	for _, c := range rr.Result().Cookies() {
		req.AddCookie(c)
	}
}

// do выполняет запрос; userID == 0 — анонимно.
func do(t *testing.T, h http.Handler, method, path string, body any, userID int64, isAdmin bool) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if userID != 0 {
		addAuth(t, req, userID, isAdmin)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), rr.Body.String())
	return v
}

type idResp struct {
	ID int64 `json:"id"`
}

func createPart(t *testing.T, h http.Handler, owner int64, name string) int64 {
	t.Helper()
	rr := do(t, h, http.MethodPost, "/api/parts", map[string]any{"name": name, "category_id": 1}, owner, false)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	return decode[idResp](t, rr).ID
}
