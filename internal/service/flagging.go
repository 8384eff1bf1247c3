package service

import (
	"ModPlanner/internal/cache"
	"ModPlanner/internal/metrics"
	"ModPlanner/internal/repo"
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	defaultFlagLimit = 50
	maxFlagLimit     = 100
)

// FlagConfig — параметры отбора. Нулевой Limit означает значение по умолчанию.
type FlagConfig struct {
	MinVotes         int     `json:"min_votes"`
	MinDownvoteRatio float64 `json:"min_downvote_ratio"`
	DaysBack         int     `json:"days_back"`
	Limit            int     `json:"limit"`
	Offset           int     `json:"offset"`
}

// FlagRecord — вычисляемая запись о детали, требующей внимания модератора. Не хранится.
type FlagRecord struct {
	PartID          int64     `json:"part_id"`
	PartName        string    `json:"part_name"`
	CreatedBy       int64     `json:"created_by"`
	Upvotes         int64     `json:"upvotes"`
	Downvotes       int64     `json:"downvotes"`
	Total           int64     `json:"total"`
	DownvoteRatio   float64   `json:"downvote_ratio"`
	RecentDownvotes int64     `json:"recent_downvotes"`
	HasReports      bool      `json:"has_reports"`
	PendingReports  int64     `json:"pending_reports"`
	LastActivityAt  time.Time `json:"last_activity_at"`
}

// FlaggedPage — страница отсортированного отфильтрованного списка. Total — размер всего списка.
type FlaggedPage struct {
	Items []FlagRecord `json:"items"`
	Total int          `json:"total"`
}

// FlaggingService ранжирует детали для модерации.
type FlaggingService struct {
	parts    repo.PartRepository
	votes    repo.VoteRepository
	reports  repo.ReportRepository
	cache    cache.Cache
	defaults FlagConfig
	metrics  *metrics.Metrics
	logger   *zap.SugaredLogger
	now      func() time.Time

	// purges растёт при каждом сбросе; результат, посчитанный на фоне сброса, не кэшируется
	purges atomic.Uint64
}

func NewFlaggingService(parts repo.PartRepository, votes repo.VoteRepository, reports repo.ReportRepository, c cache.Cache, defaults FlagConfig, m *metrics.Metrics, logger *zap.SugaredLogger) *FlaggingService {
	if c == nil {
		c = cache.Nop{}
	}
	return &FlaggingService{
		parts:    parts,
		votes:    votes,
		reports:  reports,
		cache:    c,
		defaults: defaults,
		metrics:  m,
		logger:   logger,
		now:      time.Now,
	}
}

// Defaults возвращает пороги по умолчанию.
func (s *FlaggingService) Defaults() FlagConfig {
	return s.defaults
}

// Purge сбрасывает кэш списка. Ошибка кэша только логируется.
func (s *FlaggingService) Purge(ctx context.Context) {
	s.purges.Add(1)
	if err := s.cache.Purge(ctx); err != nil {
		s.logger.Warnw("flagged cache purge failed", "error", err)
	}
}

func (s *FlaggingService) normalize(cfg FlagConfig) (FlagConfig, error) {
	if cfg.MinVotes < 0 {
		return cfg, fmt.Errorf("%w: min_votes must be >= 0", ErrInvalidInput)
	}
	if cfg.MinDownvoteRatio < 0 || cfg.MinDownvoteRatio > 1 {
		return cfg, fmt.Errorf("%w: min_downvote_ratio must be within [0, 1]", ErrInvalidInput)
	}
	if cfg.DaysBack < 0 || cfg.Offset < 0 || cfg.Limit < 0 {
		return cfg, fmt.Errorf("%w: days_back, skip and limit must be >= 0", ErrInvalidInput)
	}
	if cfg.DaysBack == 0 {
		cfg.DaysBack = s.defaults.DaysBack
	}
	if cfg.Limit == 0 {
		cfg.Limit = defaultFlagLimit
	}
	if cfg.Limit > maxFlagLimit {
		cfg.Limit = maxFlagLimit
	}
	return cfg, nil
}

// ListFlagged вычисляет отсортированный список деталей для модерации.
// Деталь попадает в список при total >= MinVotes и ratio >= MinDownvoteRatio
// либо при наличии хотя бы одной открытой жалобы.
func (s *FlaggingService) ListFlagged(ctx context.Context, cfg FlagConfig) (FlaggedPage, error) {
	cfg, err := s.normalize(cfg)
	if err != nil {
		return FlaggedPage{}, err
	}

	key, _ := json.Marshal(cfg)
	if raw, found, err := s.cache.Get(ctx, string(key)); err != nil {
		s.logger.Warnw("flagged cache get failed", "error", err)
	} else if found {
		var page FlaggedPage
		if err := json.Unmarshal(raw, &page); err == nil {
			s.metrics.RecordFlaggedCache(true)
			return page, nil
		}
	}
	s.metrics.RecordFlaggedCache(false)

	gen := s.purges.Load()
	page, err := s.compute(ctx, cfg)
	if err != nil {
		return FlaggedPage{}, err
	}
	if s.purges.Load() != gen {
		return page, nil
	}

	if raw, err := json.Marshal(page); err == nil {
		if err := s.cache.Set(ctx, string(key), raw); err != nil {
			s.logger.Warnw("flagged cache set failed", "error", err)
		}
	}
	return page, nil
}

func (s *FlaggingService) compute(ctx context.Context, cfg FlagConfig) (FlaggedPage, error) {
	since := s.now().Add(-time.Duration(cfg.DaysBack) * 24 * time.Hour)

	var (
		counts  []repo.VoteCount
		recent  map[int64]int64
		pending []repo.ReportCount
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		counts, err = s.votes.AllCounts(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		recent, err = s.votes.RecentDownvotes(gctx, since)
		return err
	})
	g.Go(func() error {
		var err error
		pending, err = s.reports.PendingByPart(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return FlaggedPage{}, fmt.Errorf("list flagged: %w", err)
	}

	records := make(map[int64]*FlagRecord)
	get := func(id int64) *FlagRecord {
		rec, ok := records[id]
		if !ok {
			rec = &FlagRecord{PartID: id}
			records[id] = rec
		}
		return rec
	}
	for _, c := range counts {
		rec := get(c.PartID)
		rec.Upvotes = c.Upvotes
		rec.Downvotes = c.Downvotes
		rec.Total = c.Upvotes + c.Downvotes
		if rec.Total > 0 {
			rec.DownvoteRatio = float64(c.Downvotes) / float64(rec.Total)
		}
		rec.LastActivityAt = latest(rec.LastActivityAt, c.LastVoteAt)
	}
	for _, r := range pending {
		rec := get(r.PartID)
		rec.PendingReports = r.Pending
		rec.HasReports = r.Pending > 0
		rec.LastActivityAt = latest(rec.LastActivityAt, r.LastReportAt)
	}

	candidates := make([]int64, 0, len(records))
	for id, rec := range records {
		rec.RecentDownvotes = recent[id]
		byVotes := rec.Total >= int64(cfg.MinVotes) && rec.Total > 0 && rec.DownvoteRatio >= cfg.MinDownvoteRatio
		if byVotes || rec.HasReports {
			candidates = append(candidates, id)
		}
	}

	// удалённые детали отбрасываются
	parts, err := s.parts.FindByIDs(ctx, candidates)
	if err != nil {
		return FlaggedPage{}, fmt.Errorf("list flagged: load parts: %w", err)
	}
	items := make([]FlagRecord, 0, len(parts))
	for _, p := range parts {
		rec := records[p.ID]
		rec.PartName = p.Name
		rec.CreatedBy = p.CreatedBy
		items = append(items, *rec)
	}

	sortFlagged(items)

	page := FlaggedPage{Items: []FlagRecord{}, Total: len(items)}
	if cfg.Offset < len(items) {
		end := cfg.Offset + cfg.Limit
		if end > len(items) {
			end = len(items)
		}
		page.Items = items[cfg.Offset:end]
	}
	return page, nil
}

// sortFlagged: ratio, свежие downvote, total, последняя активность — по убыванию; id — по возрастанию.
func sortFlagged(items []FlagRecord) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a.DownvoteRatio != b.DownvoteRatio {
			return a.DownvoteRatio > b.DownvoteRatio
		}
		if a.RecentDownvotes != b.RecentDownvotes {
			return a.RecentDownvotes > b.RecentDownvotes
		}
		if a.Total != b.Total {
			return a.Total > b.Total
		}
		if !a.LastActivityAt.Equal(b.LastActivityAt) {
			return a.LastActivityAt.After(b.LastActivityAt)
		}
		return a.PartID < b.PartID
	})
}

func latest(a, b time.Time) time.Time {
	if b.After(a) {
		return b
	}
	return a
}
