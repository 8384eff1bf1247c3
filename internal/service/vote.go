package service

import (
	"ModPlanner/internal/metrics"
	"ModPlanner/internal/model"
	"ModPlanner/internal/repo"
	"context"
	"fmt"

	"go.uber.org/zap"
)

// VoteSummary — агрегат голосов по детали, всегда вычисляется из журнала.
type VoteSummary struct {
	PartID    int64                `json:"part_id"`
	Upvotes   int64                `json:"upvotes"`
	Downvotes int64                `json:"downvotes"`
	Total     int64                `json:"total"`
	Score     int64                `json:"score"`
	UserVote  *model.VoteDirection `json:"user_vote"`
}

// VoteService — голосование и агрегаты по журналу голосов.
type VoteService struct {
	tx      repo.Transactor
	parts   repo.PartRepository
	votes   repo.VoteRepository
	flagged Purger
	metrics *metrics.Metrics
	logger  *zap.SugaredLogger
}

func NewVoteService(tx repo.Transactor, parts repo.PartRepository, votes repo.VoteRepository, flagged Purger, m *metrics.Metrics, logger *zap.SugaredLogger) *VoteService {
	return &VoteService{tx: tx, parts: parts, votes: votes, flagged: flagged, metrics: m, logger: logger}
}

// Upsert применяет голос с семантикой переключателя и возвращает текущее направление
// (nil — голос снят). Деталь читается с разделяемой блокировкой в той же транзакции,
// поэтому параллельное удаление детали либо ждёт, либо голос получает ErrNotFound.
func (s *VoteService) Upsert(ctx context.Context, caller Identity, partID int64, dir model.VoteDirection) (*model.VoteDirection, error) {
	if !caller.Authenticated() {
		return nil, ErrUnauthorized
	}
	if !dir.Valid() {
		return nil, fmt.Errorf("%w: direction must be up or down", ErrInvalidInput)
	}

	var (
		cur     *model.VoteDirection
		outcome string
	)
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := s.parts.GetForShare(ctx, partID); err != nil {
			return notFound(err)
		}
		prev, err := s.votes.UserDirections(ctx, caller.UserID, []int64{partID})
		if err != nil {
			return err
		}
		cur, err = s.votes.Toggle(ctx, caller.UserID, partID, dir)
		if err != nil {
			return err
		}
		_, hadVote := prev[partID]
		switch {
		case cur == nil:
			outcome = metrics.VoteRemoved
		case hadVote:
			outcome = metrics.VoteSwitched
		default:
			outcome = metrics.VoteCreated
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("vote part %d: %w", partID, err)
	}

	s.flagged.Purge(ctx)
	s.metrics.RecordVote(outcome)
	s.logger.Debugw("vote applied", "user_id", caller.UserID, "part_id", partID, "direction", dir, "outcome", outcome)
	return cur, nil
}

// Remove снимает голос пользователя. Отсутствие голоса — не ошибка.
func (s *VoteService) Remove(ctx context.Context, caller Identity, partID int64) error {
	if !caller.Authenticated() {
		return ErrUnauthorized
	}
	var removed bool
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := s.parts.GetForShare(ctx, partID); err != nil {
			return notFound(err)
		}
		var err error
		removed, err = s.votes.Remove(ctx, caller.UserID, partID)
		return err
	})
	if err != nil {
		return fmt.Errorf("remove vote on part %d: %w", partID, err)
	}
	if removed {
		s.flagged.Purge(ctx)
		s.metrics.RecordVote(metrics.VoteRemoved)
	}
	return nil
}

// Summarize возвращает агрегат по одной детали. Построен на том же запросе,
// что и SummarizeMany, поэтому результаты всегда совпадают.
func (s *VoteService) Summarize(ctx context.Context, partID int64, requesterID int64) (VoteSummary, error) {
	res, err := s.SummarizeMany(ctx, []int64{partID}, requesterID)
	if err != nil {
		return VoteSummary{}, err
	}
	if len(res) == 0 {
		return VoteSummary{}, fmt.Errorf("summarize part %d: %w", partID, ErrNotFound)
	}
	return res[0], nil
}

// SummarizeMany считает агрегаты одним сгруппированным запросом.
// Несуществующие детали в результат не попадают, порядок — как во входном списке.
func (s *VoteService) SummarizeMany(ctx context.Context, partIDs []int64, requesterID int64) ([]VoteSummary, error) {
	ids := uniqueIDs(partIDs)
	res := make([]VoteSummary, 0, len(ids))
	if len(ids) == 0 {
		return res, nil
	}

	var (
		parts  []model.GlobalPart
		counts []repo.VoteCount
		mine   map[int64]model.VoteDirection
	)
	// одна транзакция — один снимок для деталей, счётчиков и голосов пользователя
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		if parts, err = s.parts.FindByIDs(ctx, ids); err != nil {
			return err
		}
		if counts, err = s.votes.Counts(ctx, ids); err != nil {
			return err
		}
		mine, err = s.votes.UserDirections(ctx, requesterID, ids)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("summarize parts: %w", err)
	}

	exists := make(map[int64]bool, len(parts))
	for _, p := range parts {
		exists[p.ID] = true
	}
	byPart := make(map[int64]repo.VoteCount, len(counts))
	for _, c := range counts {
		byPart[c.PartID] = c
	}

	for _, id := range ids {
		if !exists[id] {
			continue
		}
		c := byPart[id]
		sum := VoteSummary{
			PartID:    id,
			Upvotes:   c.Upvotes,
			Downvotes: c.Downvotes,
			Total:     c.Upvotes + c.Downvotes,
			Score:     c.Upvotes - c.Downvotes,
		}
		if d, ok := mine[id]; ok {
			sum.UserVote = &d
		}
		res = append(res, sum)
	}
	return res, nil
}

// uniqueIDs убирает дубликаты и неположительные id, сохраняя порядок.
func uniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if id <= 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
