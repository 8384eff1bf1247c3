package repo

import (
	"ModPlanner/internal/model"
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// JunctionRepository — связи build-лист ↔ глобальная деталь.
type JunctionRepository interface {
	// CreateIfAbsent создаёт связь. created=false, если пара (build_list_id, part_id) уже есть.
	CreateIfAbsent(ctx context.Context, j *model.BuildListPart) (created bool, err error)

	// GetByID возвращает связь или gorm.ErrRecordNotFound.
	GetByID(ctx context.Context, id int64) (*model.BuildListPart, error)

	// GetByPair возвращает связь по build-листу и детали или gorm.ErrRecordNotFound.
	GetByPair(ctx context.Context, buildListID, partID int64) (*model.BuildListPart, error)

	// ListByBuildList возвращает связи build-листа вместе с деталями.
	ListByBuildList(ctx context.Context, buildListID int64) ([]model.BuildListPart, error)

	UpdateNotes(ctx context.Context, id int64, notes *string) error

	// Delete удаляет одну связь. Возвращает gorm.ErrRecordNotFound, если строки не было.
	Delete(ctx context.Context, id int64) error

	// DeleteByPart удаляет все связи, ссылающиеся на деталь.
	DeleteByPart(ctx context.Context, partID int64) (int64, error)

	CountByPart(ctx context.Context, partID int64) (int64, error)
}

type junctionRepo struct {
	db *gorm.DB
}

// NewJunctionRepository создаёт реализацию репозитория связей.
func NewJunctionRepository(db *gorm.DB) JunctionRepository {
	return &junctionRepo{db: db}
}

func (r *junctionRepo) CreateIfAbsent(ctx context.Context, j *model.BuildListPart) (bool, error) {
	tx := conn(ctx, r.db).Omit(clause.Associations).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "build_list_id"}, {Name: "part_id"}},
		DoNothing: true,
	}).Create(j)
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}

func (r *junctionRepo) GetByID(ctx context.Context, id int64) (*model.BuildListPart, error) {
	var j model.BuildListPart
	if err := conn(ctx, r.db).Where("id = ?", id).Take(&j).Error; err != nil {
		return nil, err
	}
	return &j, nil
}

func (r *junctionRepo) GetByPair(ctx context.Context, buildListID, partID int64) (*model.BuildListPart, error) {
	var j model.BuildListPart
	err := conn(ctx, r.db).
		Where("build_list_id = ? AND part_id = ?", buildListID, partID).
		Take(&j).Error
	if err != nil {
		return nil, err
	}
	return &j, nil
}

func (r *junctionRepo) ListByBuildList(ctx context.Context, buildListID int64) ([]model.BuildListPart, error) {
	list := []model.BuildListPart{}
	err := conn(ctx, r.db).
		Preload("Part").
		Where("build_list_id = ?", buildListID).
		Order("added_at ASC").Order("id ASC").
		Find(&list).Error
	return list, err
}

func (r *junctionRepo) UpdateNotes(ctx context.Context, id int64, notes *string) error {
	tx := conn(ctx, r.db).Model(&model.BuildListPart{}).Where("id = ?", id).Update("notes", notes)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *junctionRepo) Delete(ctx context.Context, id int64) error {
	tx := conn(ctx, r.db).Where("id = ?", id).Delete(&model.BuildListPart{})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *junctionRepo) DeleteByPart(ctx context.Context, partID int64) (int64, error) {
	tx := conn(ctx, r.db).Where("part_id = ?", partID).Delete(&model.BuildListPart{})
	return tx.RowsAffected, tx.Error
}

func (r *junctionRepo) CountByPart(ctx context.Context, partID int64) (int64, error) {
	var n int64
	err := conn(ctx, r.db).Model(&model.BuildListPart{}).Where("part_id = ?", partID).Count(&n).Error
	return n, err
}
