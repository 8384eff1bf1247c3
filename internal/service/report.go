package service

import (
	"ModPlanner/internal/metrics"
	"ModPlanner/internal/model"
	"ModPlanner/internal/repo"
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
)

const (
	maxReasonLen      = 100
	maxDescriptionLen = 2000

	defaultReportLimit = 50
	maxReportLimit     = 100
)

// ReportService — подача жалоб и их рассмотрение модераторами.
type ReportService struct {
	tx      repo.Transactor
	parts   repo.PartRepository
	reports repo.ReportRepository
	flagged Purger
	metrics *metrics.Metrics
	logger  *zap.SugaredLogger
	now     func() time.Time
}

// Purger сбрасывает производные данные (кэш flagged-списка) после изменений.
type Purger interface {
	Purge(ctx context.Context)
}

func NewReportService(tx repo.Transactor, parts repo.PartRepository, reports repo.ReportRepository, flagged Purger, m *metrics.Metrics, logger *zap.SugaredLogger) *ReportService {
	return &ReportService{
		tx:      tx,
		parts:   parts,
		reports: reports,
		flagged: flagged,
		metrics: m,
		logger:  logger,
		now:     time.Now,
	}
}

// Create всегда создаёт новую жалобу в статусе pending. Дедупликации нет.
func (s *ReportService) Create(ctx context.Context, caller Identity, partID int64, reason string, description *string) (*model.Report, error) {
	if !caller.Authenticated() {
		return nil, ErrUnauthorized
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, fmt.Errorf("%w: reason is required", ErrInvalidInput)
	}
	if utf8.RuneCountInString(reason) > maxReasonLen {
		return nil, fmt.Errorf("%w: reason is longer than %d characters", ErrInvalidInput, maxReasonLen)
	}
	if description != nil && utf8.RuneCountInString(*description) > maxDescriptionLen {
		return nil, fmt.Errorf("%w: description is longer than %d characters", ErrInvalidInput, maxDescriptionLen)
	}

	var rep *model.Report
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		part, err := s.parts.GetForShare(ctx, partID)
		if err != nil {
			return notFound(err)
		}
		rep = &model.Report{
			UserID:      caller.UserID,
			PartID:      part.ID,
			PartName:    part.Name,
			Reason:      reason,
			Description: description,
			Status:      model.ReportPending,
		}
		return s.reports.Create(ctx, rep)
	})
	if err != nil {
		return nil, fmt.Errorf("report part %d: %w", partID, err)
	}

	s.flagged.Purge(ctx)
	s.metrics.RecordReport("created")
	s.logger.Infow("report created", "report_id", rep.ID, "part_id", partID, "user_id", caller.UserID)
	return rep, nil
}

// List — страница жалоб для модераторов.
func (s *ReportService) List(ctx context.Context, caller Identity, f repo.ReportFilter) ([]model.Report, int64, error) {
	if !caller.Authenticated() {
		return nil, 0, ErrUnauthorized
	}
	if !caller.IsAdmin {
		return nil, 0, ErrForbidden
	}
	if f.Status != "" && !f.Status.Valid() {
		return nil, 0, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, f.Status)
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	if f.Limit <= 0 {
		f.Limit = defaultReportLimit
	}
	if f.Limit > maxReportLimit {
		f.Limit = maxReportLimit
	}

	items, total, err := s.reports.List(ctx, f)
	if err != nil {
		return nil, 0, fmt.Errorf("list reports: %w", err)
	}
	return items, total, nil
}

// Review переводит жалобу pending -> resolved|dismissed ровно один раз.
// Переход выполняется compare-and-swap по статусу, поэтому из двух
// конкурирующих модераторов применится только один.
func (s *ReportService) Review(ctx context.Context, caller Identity, reportID int64, to model.ReportStatus, notes *string) (*model.Report, error) {
	if !caller.Authenticated() {
		return nil, ErrUnauthorized
	}
	if !caller.IsAdmin {
		return nil, ErrForbidden
	}
	if !to.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, to)
	}
	if !to.Terminal() {
		return nil, fmt.Errorf("review report %d: %w: target must be resolved or dismissed", reportID, ErrInvalidStateTransition)
	}

	var rep *model.Report
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		applied, err := s.reports.Transition(ctx, reportID, to, caller.UserID, notes, s.now().UTC())
		if err != nil {
			return err
		}
		cur, err := s.reports.GetByID(ctx, reportID)
		if err != nil {
			return notFound(err)
		}
		if !applied {
			return fmt.Errorf("%w: report is already %s", ErrInvalidStateTransition, cur.Status)
		}
		rep = cur
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("review report %d: %w", reportID, err)
	}

	s.flagged.Purge(ctx)
	s.metrics.RecordReport(string(to))
	s.logger.Infow("report reviewed", "report_id", reportID, "status", to, "moderator_id", caller.UserID)
	return rep, nil
}
