package repo

import (
	"ModPlanner/internal/model"
	"context"
	"time"

	"gorm.io/gorm"
)

// ReportFilter — фильтр списка жалоб. Нулевые поля не фильтруют.
type ReportFilter struct {
	Status model.ReportStatus
	PartID int64
	Offset int
	Limit  int
}

// ReportCount — число открытых (pending) жалоб по детали.
type ReportCount struct {
	PartID       int64
	Pending      int64
	LastReportAt time.Time
}

// ReportRepository — журнал жалоб. Жалобы не удаляются.
type ReportRepository interface {
	Create(ctx context.Context, r *model.Report) error

	// GetByID возвращает жалобу или gorm.ErrRecordNotFound.
	GetByID(ctx context.Context, id int64) (*model.Report, error)

	// List возвращает страницу жалоб (новые сначала) и общее число по фильтру.
	List(ctx context.Context, f ReportFilter) ([]model.Report, int64, error)

	// Transition переводит жалобу из pending в to. applied=false, если жалоба
	// уже не в pending (или отсутствует) — строка не изменяется.
	Transition(ctx context.Context, id int64, to model.ReportStatus, moderatorID int64, notes *string, at time.Time) (applied bool, err error)

	// PendingByPart группирует открытые жалобы по деталям (без осиротевших).
	PendingByPart(ctx context.Context) ([]ReportCount, error)

	// MarkPartDeleted помечает жалобы удалённой детали.
	MarkPartDeleted(ctx context.Context, partID int64, at time.Time) (int64, error)
}

type reportRepo struct {
	db *gorm.DB
}

// NewReportRepository создаёт реализацию репозитория жалоб.
func NewReportRepository(db *gorm.DB) ReportRepository {
	return &reportRepo{db: db}
}

func (r *reportRepo) Create(ctx context.Context, rep *model.Report) error {
	return conn(ctx, r.db).Create(rep).Error
}

func (r *reportRepo) GetByID(ctx context.Context, id int64) (*model.Report, error) {
	var rep model.Report
	if err := conn(ctx, r.db).Where("id = ?", id).Take(&rep).Error; err != nil {
		return nil, err
	}
	return &rep, nil
}

func (r *reportRepo) List(ctx context.Context, f ReportFilter) ([]model.Report, int64, error) {
	q := conn(ctx, r.db).Model(&model.Report{})
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.PartID != 0 {
		q = q.Where("part_id = ?", f.PartID)
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	list := []model.Report{}
	page := q.Order("created_at DESC").Order("id DESC").Offset(f.Offset)
	if f.Limit > 0 {
		page = page.Limit(f.Limit)
	}
	if err := page.Find(&list).Error; err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (r *reportRepo) Transition(ctx context.Context, id int64, to model.ReportStatus, moderatorID int64, notes *string, at time.Time) (bool, error) {
	// compare-and-swap: обновляется только строка, всё ещё находящаяся в pending
	tx := conn(ctx, r.db).Model(&model.Report{}).
		Where("id = ? AND status = ?", id, model.ReportPending).
		Updates(map[string]any{
			"status":      to,
			"reviewed_by": moderatorID,
			"reviewed_at": at,
			"admin_notes": notes,
		})
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}

func (r *reportRepo) PendingByPart(ctx context.Context) ([]ReportCount, error) {
	var rows []struct {
		PartID       int64
		Pending      int64
		LastReportAt flexTime
	}
	err := conn(ctx, r.db).Model(&model.Report{}).
		Select("part_id, COUNT(*) AS pending, MAX(created_at) AS last_report_at").
		Where("status = ? AND part_deleted_at IS NULL", model.ReportPending).
		Group("part_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	res := make([]ReportCount, 0, len(rows))
	for _, row := range rows {
		res = append(res, ReportCount{PartID: row.PartID, Pending: row.Pending, LastReportAt: row.LastReportAt.Time})
	}
	return res, nil
}

func (r *reportRepo) MarkPartDeleted(ctx context.Context, partID int64, at time.Time) (int64, error) {
	tx := conn(ctx, r.db).Model(&model.Report{}).
		Where("part_id = ? AND part_deleted_at IS NULL", partID).
		Update("part_deleted_at", at)
	return tx.RowsAffected, tx.Error
}
