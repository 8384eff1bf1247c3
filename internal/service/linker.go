package service

import (
	"ModPlanner/internal/model"
	"ModPlanner/internal/repo"
	"context"
	"fmt"

	"go.uber.org/zap"
)

// ReferenceLinker управляет связями build-лист ↔ глобальная деталь.
// Деталь никогда не копируется в build-лист, только связывается.
type ReferenceLinker struct {
	tx        repo.Transactor
	lists     repo.BuildListRepository
	parts     repo.PartRepository
	junctions repo.JunctionRepository
	logger    *zap.SugaredLogger
}

func NewReferenceLinker(tx repo.Transactor, lists repo.BuildListRepository, parts repo.PartRepository, junctions repo.JunctionRepository, logger *zap.SugaredLogger) *ReferenceLinker {
	return &ReferenceLinker{tx: tx, lists: lists, parts: parts, junctions: junctions, logger: logger}
}

// Attach связывает деталь с build-листом. Повторная пара — ErrConflict.
func (l *ReferenceLinker) Attach(ctx context.Context, caller Identity, buildListID, partID int64, notes *string) (*model.BuildListPart, error) {
	if !caller.Authenticated() {
		return nil, ErrUnauthorized
	}

	var j *model.BuildListPart
	err := l.tx.WithinTx(ctx, func(ctx context.Context) error {
		list, err := l.lists.GetByID(ctx, buildListID)
		if err != nil {
			return notFound(err)
		}
		if !IsOwnerOrAdmin(caller.UserID, list.UserID, caller.IsAdmin) {
			return ErrForbidden
		}
		part, err := l.parts.GetForShare(ctx, partID)
		if err != nil {
			return notFound(err)
		}

		j = &model.BuildListPart{
			BuildListID: list.ID,
			PartID:      part.ID,
			AddedBy:     caller.UserID,
			Notes:       notes,
		}
		created, err := l.junctions.CreateIfAbsent(ctx, j)
		if err != nil {
			return err
		}
		if !created {
			return fmt.Errorf("%w: part %d is already in build list %d", ErrConflict, partID, buildListID)
		}
		j.Part = part
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("attach part: %w", err)
	}

	l.logger.Infow("part attached", "build_list_id", buildListID, "part_id", partID, "user_id", caller.UserID)
	return j, nil
}

// UpdateNotes меняет приватные заметки связи. Доступно добавившему или админу.
func (l *ReferenceLinker) UpdateNotes(ctx context.Context, caller Identity, junctionID int64, notes *string) (*model.BuildListPart, error) {
	if !caller.Authenticated() {
		return nil, ErrUnauthorized
	}
	j, err := l.junctions.GetByID(ctx, junctionID)
	if err != nil {
		return nil, fmt.Errorf("update notes: %w", notFound(err))
	}
	return l.updateNotes(ctx, caller, j, notes)
}

// UpdateNotesByPair — то же, но связь адресуется парой (build-лист, деталь).
func (l *ReferenceLinker) UpdateNotesByPair(ctx context.Context, caller Identity, buildListID, partID int64, notes *string) (*model.BuildListPart, error) {
	if !caller.Authenticated() {
		return nil, ErrUnauthorized
	}
	j, err := l.junctions.GetByPair(ctx, buildListID, partID)
	if err != nil {
		return nil, fmt.Errorf("update notes: %w", notFound(err))
	}
	return l.updateNotes(ctx, caller, j, notes)
}

func (l *ReferenceLinker) updateNotes(ctx context.Context, caller Identity, j *model.BuildListPart, notes *string) (*model.BuildListPart, error) {
	if !IsOwnerOrAdmin(caller.UserID, j.AddedBy, caller.IsAdmin) {
		return nil, ErrForbidden
	}
	if err := l.junctions.UpdateNotes(ctx, j.ID, notes); err != nil {
		return nil, fmt.Errorf("update notes: %w", notFound(err))
	}
	j.Notes = notes
	return j, nil
}

// Detach удаляет одну связь. Доступно добавившему, админу или владельцу build-листа.
// Деталь и связи других build-листов не затрагиваются.
func (l *ReferenceLinker) Detach(ctx context.Context, caller Identity, junctionID int64) error {
	if !caller.Authenticated() {
		return ErrUnauthorized
	}
	j, err := l.junctions.GetByID(ctx, junctionID)
	if err != nil {
		return fmt.Errorf("detach: %w", notFound(err))
	}
	return l.detach(ctx, caller, j)
}

// DetachByPair — Detach по паре (build-лист, деталь).
func (l *ReferenceLinker) DetachByPair(ctx context.Context, caller Identity, buildListID, partID int64) error {
	if !caller.Authenticated() {
		return ErrUnauthorized
	}
	j, err := l.junctions.GetByPair(ctx, buildListID, partID)
	if err != nil {
		return fmt.Errorf("detach: %w", notFound(err))
	}
	return l.detach(ctx, caller, j)
}

func (l *ReferenceLinker) detach(ctx context.Context, caller Identity, j *model.BuildListPart) error {
	allowed := IsOwnerOrAdmin(caller.UserID, j.AddedBy, caller.IsAdmin)
	if !allowed {
		list, err := l.lists.GetByID(ctx, j.BuildListID)
		if err != nil {
			return fmt.Errorf("detach: %w", notFound(err))
		}
		allowed = list.UserID == caller.UserID
	}
	if !allowed {
		return ErrForbidden
	}
	if err := l.junctions.Delete(ctx, j.ID); err != nil {
		return fmt.Errorf("detach: %w", notFound(err))
	}
	l.logger.Infow("part detached", "build_list_id", j.BuildListID, "part_id", j.PartID, "user_id", caller.UserID)
	return nil
}

// cascadeOnPartDeletion удаляет все связи детали. Вызывается только из
// PartService.Delete внутри его транзакции.
func (l *ReferenceLinker) cascadeOnPartDeletion(ctx context.Context, partID int64) (int64, error) {
	n, err := l.junctions.DeleteByPart(ctx, partID)
	if err != nil {
		return 0, fmt.Errorf("cascade junctions of part %d: %w", partID, err)
	}
	return n, nil
}

// ListForBuildList возвращает связи build-листа с деталями. Заметки чужих связей скрываются.
func (l *ReferenceLinker) ListForBuildList(ctx context.Context, caller Identity, buildListID int64) ([]model.BuildListPart, error) {
	if !caller.Authenticated() {
		return nil, ErrUnauthorized
	}
	list, err := l.lists.GetByID(ctx, buildListID)
	if err != nil {
		return nil, fmt.Errorf("list build list parts: %w", notFound(err))
	}
	if !IsOwnerOrAdmin(caller.UserID, list.UserID, caller.IsAdmin) {
		return nil, ErrForbidden
	}
	items, err := l.junctions.ListByBuildList(ctx, buildListID)
	if err != nil {
		return nil, fmt.Errorf("list build list parts: %w", err)
	}
	for i := range items {
		if !IsOwnerOrAdmin(caller.UserID, items[i].AddedBy, caller.IsAdmin) {
			items[i].Notes = nil
		}
	}
	return items, nil
}
