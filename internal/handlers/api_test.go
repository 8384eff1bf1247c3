package handlers_test

import (
	"ModPlanner/internal/handlers"
	"ModPlanner/internal/model"
	"ModPlanner/internal/service"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthAndMetrics(t *testing.T) {
	h := newHandlersTestRouter(t)

	rr := do(t, h, http.MethodGet, "/api/health", nil, 0, false)
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = do(t, h, http.MethodGet, "/metrics", nil, 0, false)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "modplanner_http_requests_total")
}

func TestVoteEndpoints_EndToEnd(t *testing.T) {
	h := newHandlersTestRouter(t)
	partID := createPart(t, h, 99, "Sway bar")
	votePath := fmt.Sprintf("/api/parts/%d/vote", partID)

	rr := do(t, h, http.MethodPost, votePath, map[string]string{"direction": "up"}, 1, false)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	sum := decode[service.VoteSummary](t, rr)
	assert.Equal(t, int64(1), sum.Upvotes)
	require.NotNil(t, sum.UserVote)
	assert.Equal(t, model.VoteUp, *sum.UserVote)

	rr = do(t, h, http.MethodPost, votePath, map[string]string{"direction": "down"}, 2, false)
	sum = decode[service.VoteSummary](t, rr)
	assert.Equal(t, [3]int64{1, 1, 2}, [3]int64{sum.Upvotes, sum.Downvotes, sum.Total})
	assert.Equal(t, model.VoteDown, *sum.UserVote)

	rr = do(t, h, http.MethodPost, votePath, map[string]string{"direction": "down"}, 1, false)
	sum = decode[service.VoteSummary](t, rr)
	assert.Equal(t, [3]int64{0, 2, 2}, [3]int64{sum.Upvotes, sum.Downvotes, sum.Total})

	rr = do(t, h, http.MethodPost, fmt.Sprintf("/api/parts/%d/reports", partID), map[string]string{"reason": "duplicate"}, 3, false)
	require.Equal(t, http.StatusCreated, rr.Code)
	rep := decode[model.Report](t, rr)
	assert.Equal(t, model.ReportPending, rep.Status)

	rr = do(t, h, http.MethodGet, "/api/parts/flagged?min_votes=1&min_downvote_ratio=0.5&days_back=30", nil, 50, true)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	page := decode[service.FlaggedPage](t, rr)
	require.Equal(t, 1, page.Total)
	assert.Equal(t, partID, page.Items[0].PartID)
	assert.True(t, page.Items[0].HasReports)

	// DELETE снимает голос, повторный DELETE — не ошибка
	rr = do(t, h, http.MethodDelete, votePath, nil, 2, false)
	require.Equal(t, http.StatusOK, rr.Code)
	sum = decode[service.VoteSummary](t, rr)
	assert.Equal(t, int64(1), sum.Total)
	assert.Nil(t, sum.UserVote)
	rr = do(t, h, http.MethodDelete, votePath, nil, 2, false)
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = do(t, h, http.MethodGet, fmt.Sprintf("/api/parts/%d", partID), nil, 1, false)
	require.Equal(t, http.StatusOK, rr.Code)
	part := decode[map[string]any](t, rr)
	assert.Equal(t, "Sway bar", part["name"])
	assert.Equal(t, float64(1), part["votes"].(map[string]any)["downvotes"])
}

func TestVoteEndpoints_Errors(t *testing.T) {
	h := newHandlersTestRouter(t)
	partID := createPart(t, h, 1, "Intake")
	votePath := fmt.Sprintf("/api/parts/%d/vote", partID)

	rr := do(t, h, http.MethodPost, votePath, map[string]string{"direction": "up"}, 0, false)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, "unauthorized", decode[handlers.ErrorResponse](t, rr).Error)

	rr = do(t, h, http.MethodPost, "/api/parts/9999/vote", map[string]string{"direction": "up"}, 1, false)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = do(t, h, http.MethodPost, votePath, map[string]string{"direction": "meh"}, 1, false)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = do(t, h, http.MethodPost, "/api/parts/abc/vote", map[string]string{"direction": "up"}, 1, false)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestBatchSummaries(t *testing.T) {
	h := newHandlersTestRouter(t)
	a := createPart(t, h, 1, "A")
	b := createPart(t, h, 1, "B")
	do(t, h, http.MethodPost, fmt.Sprintf("/api/parts/%d/vote", b), map[string]string{"direction": "up"}, 7, false)

	rr := do(t, h, http.MethodGet, fmt.Sprintf("/api/parts/votes?part_ids=%d,%d,424242", a, b), nil, 7, false)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	res := decode[[]service.VoteSummary](t, rr)
	require.Len(t, res, 2)
	assert.Equal(t, a, res[0].PartID)
	assert.Equal(t, int64(1), res[1].Upvotes)
	require.NotNil(t, res[1].UserVote)

	rr = do(t, h, http.MethodGet, "/api/parts/votes?part_ids=1,x", nil, 7, false)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	rr = do(t, h, http.MethodGet, "/api/parts/votes", nil, 7, false)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestReportWorkflowEndpoints(t *testing.T) {
	h := newHandlersTestRouter(t)
	partID := createPart(t, h, 1, "Wing")

	rr := do(t, h, http.MethodPost, fmt.Sprintf("/api/parts/%d/reports", partID), map[string]string{"reason": ""}, 2, false)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = do(t, h, http.MethodPost, fmt.Sprintf("/api/parts/%d/reports", partID), map[string]string{"reason": "spam"}, 2, false)
	require.Equal(t, http.StatusCreated, rr.Code)
	rep := decode[model.Report](t, rr)

	rr = do(t, h, http.MethodGet, "/api/reports?status=pending", nil, 2, false)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = do(t, h, http.MethodGet, fmt.Sprintf("/api/reports?status=pending&part_id=%d&skip=0&limit=10", partID), nil, 9, true)
	require.Equal(t, http.StatusOK, rr.Code)
	list := decode[handlers.ReportListResponse](t, rr)
	assert.Equal(t, int64(1), list.Total)

	reviewPath := fmt.Sprintf("/api/reports/%d", rep.ID)
	rr = do(t, h, http.MethodPut, reviewPath, map[string]string{"status": "resolved", "admin_notes": "fixed"}, 9, true)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	reviewed := decode[model.Report](t, rr)
	assert.Equal(t, model.ReportResolved, reviewed.Status)
	require.NotNil(t, reviewed.ReviewedBy)
	assert.Equal(t, int64(9), *reviewed.ReviewedBy)

	rr = do(t, h, http.MethodPut, reviewPath, map[string]string{"status": "dismissed"}, 9, true)
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, "invalid_state_transition", decode[handlers.ErrorResponse](t, rr).Error)

	rr = do(t, h, http.MethodPut, "/api/reports/777", map[string]string{"status": "dismissed"}, 9, true)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestFlaggedEndpoint_Params(t *testing.T) {
	h := newHandlersTestRouter(t)
	partID := createPart(t, h, 1, "Mixed")
	for uid := int64(10); uid < 14; uid++ {
		dir := "down"
		if uid%2 == 0 {
			dir = "up"
		}
		do(t, h, http.MethodPost, fmt.Sprintf("/api/parts/%d/vote", partID), map[string]string{"direction": dir}, uid, false)
	}

	rr := do(t, h, http.MethodGet, "/api/parts/flagged", nil, 2, false)
	assert.Equal(t, http.StatusForbidden, rr.Code)
	rr = do(t, h, http.MethodGet, "/api/parts/flagged", nil, 0, false)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	// threshold — синоним min_downvote_ratio
	rr = do(t, h, http.MethodGet, "/api/parts/flagged?threshold=0.5", nil, 1, true)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 1, decode[service.FlaggedPage](t, rr).Total)

	rr = do(t, h, http.MethodGet, "/api/parts/flagged?threshold=0.5&min_downvote_ratio=0.9", nil, 1, true)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 0, decode[service.FlaggedPage](t, rr).Total)

	// значения по умолчанию: ratio 0.6 не достигнут
	rr = do(t, h, http.MethodGet, "/api/parts/flagged", nil, 1, true)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 0, decode[service.FlaggedPage](t, rr).Total)

	rr = do(t, h, http.MethodGet, "/api/parts/flagged?min_votes=x", nil, 1, true)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	rr = do(t, h, http.MethodGet, "/api/parts/flagged?min_downvote_ratio=2", nil, 1, true)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestPartEndpoints(t *testing.T) {
	h := newHandlersTestRouter(t)
	partID := createPart(t, h, 1, "Coilovers")
	path := fmt.Sprintf("/api/parts/%d", partID)

	rr := do(t, h, http.MethodPost, "/api/parts", map[string]any{"name": "x"}, 1, false)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = do(t, h, http.MethodPut, path, map[string]any{"brand": "KW"}, 2, false)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = do(t, h, http.MethodPut, path, map[string]any{"brand": "KW"}, 1, false)
	require.Equal(t, http.StatusOK, rr.Code)
	p := decode[model.GlobalPart](t, rr)
	assert.Equal(t, "KW", p.Brand)
	assert.Equal(t, int64(1), p.EditCount)

	rr = do(t, h, http.MethodPut, path+"/verify", nil, 1, false)
	assert.Equal(t, http.StatusForbidden, rr.Code)
	rr = do(t, h, http.MethodPut, path+"/verify", map[string]bool{"is_verified": true}, 5, true)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, decode[model.GlobalPart](t, rr).IsVerified)

	rr = do(t, h, http.MethodDelete, path, nil, 2, false)
	assert.Equal(t, http.StatusForbidden, rr.Code)
	rr = do(t, h, http.MethodDelete, path, nil, 1, false)
	assert.Equal(t, http.StatusNoContent, rr.Code)
	rr = do(t, h, http.MethodGet, path, nil, 1, false)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestBuildListEndpoints(t *testing.T) {
	h := newHandlersTestRouter(t)
	partID := createPart(t, h, 1, "Seat")

	rr := do(t, h, http.MethodPost, "/api/build-lists", map[string]string{"name": "Track"}, 2, false)
	require.Equal(t, http.StatusCreated, rr.Code)
	listID := decode[idResp](t, rr).ID
	pairPath := fmt.Sprintf("/api/build-lists/%d/parts/%d", listID, partID)

	rr = do(t, h, http.MethodPost, pairPath, map[string]string{"notes": "bolt-in"}, 2, false)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	rr = do(t, h, http.MethodPost, pairPath, nil, 2, false)
	assert.Equal(t, http.StatusConflict, rr.Code)
	rr = do(t, h, http.MethodPost, pairPath, nil, 3, false)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = do(t, h, http.MethodPut, pairPath, map[string]string{"notes": "needs rails"}, 3, false)
	assert.Equal(t, http.StatusForbidden, rr.Code)
	rr = do(t, h, http.MethodPut, pairPath, map[string]string{"notes": "needs rails"}, 2, false)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = do(t, h, http.MethodGet, fmt.Sprintf("/api/build-lists/%d", listID), nil, 2, false)
	require.Equal(t, http.StatusOK, rr.Code)
	view := decode[service.BuildListView](t, rr)
	require.Len(t, view.Parts, 1)
	require.NotNil(t, view.Parts[0].Notes)
	assert.Equal(t, "needs rails", *view.Parts[0].Notes)
	assert.Equal(t, "Seat", view.Parts[0].Part.Name)

	// удаление детали снимает её со всех build-листов
	rr = do(t, h, http.MethodDelete, fmt.Sprintf("/api/parts/%d", partID), nil, 1, false)
	require.Equal(t, http.StatusNoContent, rr.Code)
	rr = do(t, h, http.MethodGet, fmt.Sprintf("/api/build-lists/%d", listID), nil, 2, false)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Empty(t, decode[service.BuildListView](t, rr).Parts)

	rr = do(t, h, http.MethodDelete, pairPath, nil, 2, false)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}
