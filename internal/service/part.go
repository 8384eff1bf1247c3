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
	"gorm.io/datatypes"
)

const maxPartNameLen = 200

// PartInput — поля новой детали.
type PartInput struct {
	Name           string         `json:"name"`
	CategoryID     int64          `json:"category_id"`
	Brand          string         `json:"brand,omitempty"`
	PartNumber     string         `json:"part_number,omitempty"`
	Specifications map[string]any `json:"specifications,omitempty"`
	Source         string         `json:"source,omitempty"`
}

// PartPatch — частичное изменение детали. nil-поля не меняются.
type PartPatch struct {
	Name           *string        `json:"name,omitempty"`
	CategoryID     *int64         `json:"category_id,omitempty"`
	Brand          *string        `json:"brand,omitempty"`
	PartNumber     *string        `json:"part_number,omitempty"`
	Specifications map[string]any `json:"specifications,omitempty"`
}

// PartService — жизненный цикл глобальной детали, включая каскадное удаление.
type PartService struct {
	tx      repo.Transactor
	parts   repo.PartRepository
	votes   repo.VoteRepository
	reports repo.ReportRepository
	linker  *ReferenceLinker
	flagged Purger
	metrics *metrics.Metrics
	logger  *zap.SugaredLogger
	now     func() time.Time
}

func NewPartService(
	tx repo.Transactor,
	parts repo.PartRepository,
	votes repo.VoteRepository,
	reports repo.ReportRepository,
	linker *ReferenceLinker,
	flagged Purger,
	m *metrics.Metrics,
	logger *zap.SugaredLogger,
) *PartService {
	return &PartService{
		tx:      tx,
		parts:   parts,
		votes:   votes,
		reports: reports,
		linker:  linker,
		flagged: flagged,
		metrics: m,
		logger:  logger,
		now:     time.Now,
	}
}

func validName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if utf8.RuneCountInString(name) > maxPartNameLen {
		return fmt.Errorf("%w: name is longer than %d characters", ErrInvalidInput, maxPartNameLen)
	}
	return nil
}

// Create создаёт деталь от имени вызывающего.
func (s *PartService) Create(ctx context.Context, caller Identity, in PartInput) (*model.GlobalPart, error) {
	if !caller.Authenticated() {
		return nil, ErrUnauthorized
	}
	if err := validName(in.Name); err != nil {
		return nil, err
	}
	if in.CategoryID <= 0 {
		return nil, fmt.Errorf("%w: category_id is required", ErrInvalidInput)
	}
	switch in.Source {
	case "":
		in.Source = model.PartSourceUser
	case model.PartSourceUser, model.PartSourceImport, model.PartSourceManufacturer:
	default:
		return nil, fmt.Errorf("%w: unknown source %q", ErrInvalidInput, in.Source)
	}

	p := &model.GlobalPart{
		Name:           strings.TrimSpace(in.Name),
		CategoryID:     in.CategoryID,
		CreatedBy:      caller.UserID,
		Brand:          in.Brand,
		PartNumber:     in.PartNumber,
		Specifications: datatypes.JSONMap(in.Specifications),
		Source:         in.Source,
	}
	if err := s.parts.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("create part: %w", err)
	}
	s.logger.Infow("part created", "part_id", p.ID, "user_id", caller.UserID)
	return p, nil
}

func (s *PartService) Get(ctx context.Context, id int64) (*model.GlobalPart, error) {
	p, err := s.parts.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get part %d: %w", id, notFound(err))
	}
	return p, nil
}

// Update изменяет деталь на месте (создатель или админ), edit_count увеличивается.
func (s *PartService) Update(ctx context.Context, caller Identity, id int64, patch PartPatch) (*model.GlobalPart, error) {
	if !caller.Authenticated() {
		return nil, ErrUnauthorized
	}
	updates := map[string]any{}
	if patch.Name != nil {
		if err := validName(*patch.Name); err != nil {
			return nil, err
		}
		updates["name"] = strings.TrimSpace(*patch.Name)
	}
	if patch.CategoryID != nil {
		if *patch.CategoryID <= 0 {
			return nil, fmt.Errorf("%w: category_id must be positive", ErrInvalidInput)
		}
		updates["category_id"] = *patch.CategoryID
	}
	if patch.Brand != nil {
		updates["brand"] = *patch.Brand
	}
	if patch.PartNumber != nil {
		updates["part_number"] = *patch.PartNumber
	}
	if patch.Specifications != nil {
		updates["specifications"] = datatypes.JSONMap(patch.Specifications)
	}
	if len(updates) == 0 {
		return nil, fmt.Errorf("%w: nothing to update", ErrInvalidInput)
	}

	var out *model.GlobalPart
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		p, err := s.parts.GetForUpdate(ctx, id)
		if err != nil {
			return notFound(err)
		}
		if !IsOwnerOrAdmin(caller.UserID, p.CreatedBy, caller.IsAdmin) {
			return ErrForbidden
		}
		if err := s.parts.Update(ctx, id, updates); err != nil {
			return notFound(err)
		}
		out, err = s.parts.GetByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("update part %d: %w", id, err)
	}
	return out, nil
}

// SetVerified ставит или снимает отметку проверки. Только для админа.
func (s *PartService) SetVerified(ctx context.Context, caller Identity, id int64, verified bool) (*model.GlobalPart, error) {
	if !caller.Authenticated() {
		return nil, ErrUnauthorized
	}
	if !caller.IsAdmin {
		return nil, ErrForbidden
	}
	if err := s.parts.SetVerified(ctx, id, verified); err != nil {
		return nil, fmt.Errorf("verify part %d: %w", id, notFound(err))
	}
	return s.Get(ctx, id)
}

// Delete удаляет деталь одной транзакцией: блокировка строки детали, удаление
// всех связей с build-листами, удаление голосов, пометка жалоб, удаление детали.
// Любая ошибка откатывает всё целиком.
func (s *PartService) Delete(ctx context.Context, caller Identity, id int64) error {
	if !caller.Authenticated() {
		return ErrUnauthorized
	}

	var junctions, votes int64
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		p, err := s.parts.GetForUpdate(ctx, id)
		if err != nil {
			return notFound(err)
		}
		if !IsOwnerOrAdmin(caller.UserID, p.CreatedBy, caller.IsAdmin) {
			return ErrForbidden
		}
		if junctions, err = s.linker.cascadeOnPartDeletion(ctx, id); err != nil {
			return err
		}
		if votes, err = s.votes.DeleteByPart(ctx, id); err != nil {
			return fmt.Errorf("delete votes: %w", err)
		}
		if _, err = s.reports.MarkPartDeleted(ctx, id, s.now().UTC()); err != nil {
			return fmt.Errorf("mark reports: %w", err)
		}
		return s.parts.Delete(ctx, id)
	})
	if err != nil {
		return fmt.Errorf("delete part %d: %w", id, err)
	}

	s.flagged.Purge(ctx)
	s.metrics.RecordPartDeletion(junctions)
	s.logger.Infow("part deleted", "part_id", id, "user_id", caller.UserID, "junctions", junctions, "votes", votes)
	return nil
}
