package repo

import (
	"ModPlanner/internal/model"
	"context"

	"gorm.io/gorm"
)

// BuildListRepository — минимальный доступ к build-листам (существование и владелец).
type BuildListRepository interface {
	Create(ctx context.Context, bl *model.BuildList) error
	// GetByID возвращает build-лист или gorm.ErrRecordNotFound.
	GetByID(ctx context.Context, id int64) (*model.BuildList, error)
}

type buildListRepo struct {
	db *gorm.DB
}

// NewBuildListRepository создаёт реализацию репозитория build-листов.
func NewBuildListRepository(db *gorm.DB) BuildListRepository {
	return &buildListRepo{db: db}
}

func (r *buildListRepo) Create(ctx context.Context, bl *model.BuildList) error {
	return conn(ctx, r.db).Create(bl).Error
}

func (r *buildListRepo) GetByID(ctx context.Context, id int64) (*model.BuildList, error) {
	var bl model.BuildList
	if err := conn(ctx, r.db).Where("id = ?", id).Take(&bl).Error; err != nil {
		return nil, err
	}
	return &bl, nil
}
