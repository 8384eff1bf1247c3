package service

import (
	"ModPlanner/internal/model"
	"ModPlanner/internal/repo"
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockPurger struct{ mock.Mock }

func (m *mockPurger) Purge(ctx context.Context) { m.Called(ctx) }

func TestReportService_Create(t *testing.T) {
	e := newTestEnv(t, nil)
	ctx := context.Background()
	p := e.mkPart(t, "Bucket seat", 1)

	t.Run("always a new pending report", func(t *testing.T) {
		desc := "same as #12"
		r1, err := e.reports.Create(ctx, user(5), p.ID, "duplicate", &desc)
		require.NoError(t, err)
		r2, err := e.reports.Create(ctx, user(5), p.ID, "duplicate", nil)
		require.NoError(t, err)

		assert.NotEqual(t, r1.ID, r2.ID)
		assert.Equal(t, model.ReportPending, r1.Status)
		assert.Equal(t, "Bucket seat", r1.PartName)
		require.NotNil(t, r1.Description)
		assert.Equal(t, desc, *r1.Description)
	})

	t.Run("validation", func(t *testing.T) {
		_, err := e.reports.Create(ctx, Identity{}, p.ID, "spam", nil)
		assert.ErrorIs(t, err, ErrUnauthorized)

		_, err = e.reports.Create(ctx, user(5), 777, "spam", nil)
		assert.ErrorIs(t, err, ErrNotFound)

		_, err = e.reports.Create(ctx, user(5), p.ID, "   ", nil)
		assert.ErrorIs(t, err, ErrInvalidInput)

		_, err = e.reports.Create(ctx, user(5), p.ID, strings.Repeat("x", 101), nil)
		assert.ErrorIs(t, err, ErrInvalidInput)

		long := strings.Repeat("d", 2001)
		_, err = e.reports.Create(ctx, user(5), p.ID, "spam", &long)
		assert.ErrorIs(t, err, ErrInvalidInput)
	})
}

func TestReportService_ReviewIsOneShot(t *testing.T) {
	e := newTestEnv(t, nil)
	ctx := context.Background()
	p := e.mkPart(t, "Roll cage", 1)
	rep, err := e.reports.Create(ctx, user(2), p.ID, "wrong category", nil)
	require.NoError(t, err)

	_, err = e.reports.Review(ctx, user(3), rep.ID, model.ReportResolved, nil)
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = e.reports.Review(ctx, Identity{}, rep.ID, model.ReportResolved, nil)
	assert.ErrorIs(t, err, ErrUnauthorized)

	notes := "moved to suspension"
	got, err := e.reports.Review(ctx, admin(9), rep.ID, model.ReportResolved, &notes)
	require.NoError(t, err)
	assert.Equal(t, model.ReportResolved, got.Status)
	require.NotNil(t, got.ReviewedBy)
	assert.Equal(t, int64(9), *got.ReviewedBy)
	require.NotNil(t, got.ReviewedAt)
	require.NotNil(t, got.AdminNotes)
	assert.Equal(t, notes, *got.AdminNotes)

	_, err = e.reports.Review(ctx, admin(9), rep.ID, model.ReportDismissed, nil)
	assert.ErrorIs(t, err, ErrInvalidStateTransition)
	_, err = e.reports.Review(ctx, admin(9), rep.ID, model.ReportPending, nil)
	assert.ErrorIs(t, err, ErrInvalidStateTransition)
	_, err = e.reports.Review(ctx, admin(9), rep.ID, model.ReportStatus("closed"), nil)
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = e.reports.Review(ctx, admin(9), 5555, model.ReportDismissed, nil)
	assert.ErrorIs(t, err, ErrNotFound)

	stored, err := e.reportRepo.GetByID(ctx, rep.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ReportResolved, stored.Status)
}

func TestReportService_ConcurrentReviewsApplyOnce(t *testing.T) {
	e := newTestEnv(t, nil)
	ctx := context.Background()
	p := e.mkPart(t, "Splitter", 1)
	rep, err := e.reports.Create(ctx, user(2), p.ID, "spam", nil)
	require.NoError(t, err)

	const n = 8
	var wg sync.WaitGroup
	results := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			to := model.ReportResolved
			if i%2 == 1 {
				to = model.ReportDismissed
			}
			_, err := e.reports.Review(ctx, admin(int64(100+i)), rep.ID, to, nil)
			results <- err
		}(i)
	}
	wg.Wait()
	close(results)

	var ok, rejected int
	for err := range results {
		if err == nil {
			ok++
			continue
		}
		assert.ErrorIs(t, err, ErrInvalidStateTransition)
		rejected++
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, n-1, rejected)
}

func TestReportService_List(t *testing.T) {
	e := newTestEnv(t, nil)
	ctx := context.Background()
	a := e.mkPart(t, "Diffuser", 1)
	b := e.mkPart(t, "Wing", 1)

	for i := 0; i < 3; i++ {
		_, err := e.reports.Create(ctx, user(2), a.ID, "spam", nil)
		require.NoError(t, err)
	}
	rb, err := e.reports.Create(ctx, user(2), b.ID, "broken link", nil)
	require.NoError(t, err)
	_, err = e.reports.Review(ctx, admin(1), rb.ID, model.ReportDismissed, nil)
	require.NoError(t, err)

	_, _, err = e.reports.List(ctx, user(2), repo.ReportFilter{})
	assert.ErrorIs(t, err, ErrForbidden)

	items, total, err := e.reports.List(ctx, admin(1), repo.ReportFilter{Status: model.ReportPending, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, items, 2)

	items, total, err = e.reports.List(ctx, admin(1), repo.ReportFilter{PartID: b.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, model.ReportDismissed, items[0].Status)

	_, _, err = e.reports.List(ctx, admin(1), repo.ReportFilter{Status: "open"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestReportService_PurgesFlaggedCache(t *testing.T) {
	e := newTestEnv(t, nil)
	ctx := context.Background()
	p := e.mkPart(t, "Hood", 1)

	purger := new(mockPurger)
	svc := NewReportService(repo.NewTransactor(e.db), e.partRepo, e.reportRepo, purger, nil, zap.NewNop().Sugar())

	purger.On("Purge", mock.Anything).Twice()
	rep, err := svc.Create(ctx, user(4), p.ID, "spam", nil)
	require.NoError(t, err)
	_, err = svc.Review(ctx, admin(1), rep.ID, model.ReportResolved, nil)
	require.NoError(t, err)
	purger.AssertExpectations(t)

	// отклонённые операции кэш не трогают
	_, err = svc.Review(ctx, admin(1), rep.ID, model.ReportDismissed, nil)
	require.Error(t, err)
	purger.AssertNumberOfCalls(t, "Purge", 2)
}

func reportFilterForPart(partID int64) repo.ReportFilter {
	return repo.ReportFilter{PartID: partID}
}
