package repo

import (
	"ModPlanner/internal/model"
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PartRepository — доступ к глобальным деталям.
type PartRepository interface {
	Create(ctx context.Context, p *model.GlobalPart) error

	// GetByID возвращает деталь или gorm.ErrRecordNotFound.
	GetByID(ctx context.Context, id int64) (*model.GlobalPart, error)

	// GetForShare читает деталь с разделяемой блокировкой строки (внутри транзакции).
	// Удаление детали ждёт завершения таких транзакций.
	GetForShare(ctx context.Context, id int64) (*model.GlobalPart, error)

	// GetForUpdate читает деталь с эксклюзивной блокировкой строки (внутри транзакции).
	GetForUpdate(ctx context.Context, id int64) (*model.GlobalPart, error)

	// FindByIDs возвращает существующие детали из списка id.
	FindByIDs(ctx context.Context, ids []int64) ([]model.GlobalPart, error)

	// Update применяет изменения и увеличивает edit_count.
	Update(ctx context.Context, id int64, updates map[string]any) error

	// SetVerified меняет флаг проверки без увеличения edit_count.
	SetVerified(ctx context.Context, id int64, verified bool) error

	// Delete удаляет деталь. Возвращает gorm.ErrRecordNotFound, если строки не было.
	Delete(ctx context.Context, id int64) error
}

type partRepo struct {
	db *gorm.DB
}

// NewPartRepository создаёт реализацию репозитория для GlobalPart.
func NewPartRepository(db *gorm.DB) PartRepository {
	return &partRepo{db: db}
}

func (r *partRepo) Create(ctx context.Context, p *model.GlobalPart) error {
	return conn(ctx, r.db).Create(p).Error
}

func (r *partRepo) GetByID(ctx context.Context, id int64) (*model.GlobalPart, error) {
	var p model.GlobalPart
	if err := conn(ctx, r.db).Where("id = ?", id).Take(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *partRepo) GetForShare(ctx context.Context, id int64) (*model.GlobalPart, error) {
	return r.getLocked(ctx, id, clause.LockingStrengthShare)
}

func (r *partRepo) GetForUpdate(ctx context.Context, id int64) (*model.GlobalPart, error) {
	return r.getLocked(ctx, id, clause.LockingStrengthUpdate)
}

func (r *partRepo) getLocked(ctx context.Context, id int64, strength string) (*model.GlobalPart, error) {
	var p model.GlobalPart
	if err := withLock(conn(ctx, r.db), strength).Where("id = ?", id).Take(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *partRepo) FindByIDs(ctx context.Context, ids []int64) ([]model.GlobalPart, error) {
	parts := []model.GlobalPart{}
	if len(ids) == 0 {
		return parts, nil
	}
	err := conn(ctx, r.db).Where("id IN ?", ids).Order("id ASC").Find(&parts).Error
	return parts, err
}

func (r *partRepo) Update(ctx context.Context, id int64, updates map[string]any) error {
	patch := make(map[string]any, len(updates)+1)
	for k, v := range updates {
		patch[k] = v
	}
	patch["edit_count"] = gorm.Expr("edit_count + 1")
	tx := conn(ctx, r.db).Model(&model.GlobalPart{}).Where("id = ?", id).Updates(patch)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *partRepo) SetVerified(ctx context.Context, id int64, verified bool) error {
	tx := conn(ctx, r.db).Model(&model.GlobalPart{}).Where("id = ?", id).Update("is_verified", verified)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *partRepo) Delete(ctx context.Context, id int64) error {
	tx := conn(ctx, r.db).Where("id = ?", id).Delete(&model.GlobalPart{})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
