package repo

import (
	"ModPlanner/internal/model"
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// VoteCount — агрегат журнала голосов по одной детали.
type VoteCount struct {
	PartID     int64
	Upvotes    int64
	Downvotes  int64
	LastVoteAt time.Time
}

// VoteRepository — журнал голосов: одна строка на пару (user, part).
type VoteRepository interface {
	// Toggle атомарно применяет голос: создаёт строку, меняет направление на месте
	// или удаляет строку при повторном голосе того же направления.
	// Возвращает текущее направление или nil, если голоса больше нет.
	Toggle(ctx context.Context, userID, partID int64, dir model.VoteDirection) (*model.VoteDirection, error)

	// Remove удаляет голос пользователя. removed=false, если голоса не было.
	Remove(ctx context.Context, userID, partID int64) (removed bool, err error)

	// Counts считает голоса одной группировкой по всем переданным деталям.
	// Детали без голосов в результат не попадают.
	Counts(ctx context.Context, partIDs []int64) ([]VoteCount, error)

	// AllCounts — то же по всем деталям, у которых есть голоса.
	AllCounts(ctx context.Context) ([]VoteCount, error)

	// UserDirections возвращает голоса пользователя по деталям.
	UserDirections(ctx context.Context, userID int64, partIDs []int64) (map[int64]model.VoteDirection, error)

	// RecentDownvotes считает downvote с updated_at >= since по деталям.
	RecentDownvotes(ctx context.Context, since time.Time) (map[int64]int64, error)

	// DeleteByPart удаляет все голоса детали.
	DeleteByPart(ctx context.Context, partID int64) (int64, error)
}

type voteRepo struct {
	db *gorm.DB
}

// NewVoteRepository создаёт реализацию репозитория голосов.
func NewVoteRepository(db *gorm.DB) VoteRepository {
	return &voteRepo{db: db}
}

// число попыток read-modify-write, если строку удалили между INSERT и SELECT
const toggleAttempts = 3

func (r *voteRepo) Toggle(ctx context.Context, userID, partID int64, dir model.VoteDirection) (*model.VoteDirection, error) {
	db := conn(ctx, r.db)
	for attempt := 0; attempt < toggleAttempts; attempt++ {
		v := model.Vote{UserID: userID, PartID: partID, Direction: dir}
		ins := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "part_id"}},
			DoNothing: true,
		}).Create(&v)
		if ins.Error != nil {
			return nil, ins.Error
		}
		if ins.RowsAffected > 0 {
			cur := dir
			return &cur, nil
		}

		var existing model.Vote
		err := withLock(db, clause.LockingStrengthUpdate).
			Where("user_id = ? AND part_id = ?", userID, partID).
			Take(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// параллельный запрос успел снять голос — пробуем вставку заново
			continue
		}
		if err != nil {
			return nil, err
		}

		if existing.Direction == dir {
			if err := db.Where("id = ?", existing.ID).Delete(&model.Vote{}).Error; err != nil {
				return nil, err
			}
			return nil, nil
		}

		err = db.Model(&model.Vote{}).Where("id = ?", existing.ID).Updates(map[string]any{
			"direction":  dir,
			"updated_at": time.Now().UTC(),
		}).Error
		if err != nil {
			return nil, err
		}
		cur := dir
		return &cur, nil
	}
	return nil, errors.New("vote toggle: row kept disappearing")
}

func (r *voteRepo) Remove(ctx context.Context, userID, partID int64) (bool, error) {
	tx := conn(ctx, r.db).Where("user_id = ? AND part_id = ?", userID, partID).Delete(&model.Vote{})
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}

type voteCountRow struct {
	PartID     int64
	Upvotes    int64
	Downvotes  int64
	LastVoteAt flexTime
}

const voteCountSelect = "part_id, " +
	"COUNT(CASE WHEN direction = 'up' THEN 1 END) AS upvotes, " +
	"COUNT(CASE WHEN direction = 'down' THEN 1 END) AS downvotes, " +
	"MAX(updated_at) AS last_vote_at"

func (r *voteRepo) Counts(ctx context.Context, partIDs []int64) ([]VoteCount, error) {
	if len(partIDs) == 0 {
		return []VoteCount{}, nil
	}
	return r.counts(conn(ctx, r.db).Where("part_id IN ?", partIDs))
}

func (r *voteRepo) AllCounts(ctx context.Context) ([]VoteCount, error) {
	return r.counts(conn(ctx, r.db))
}

func (r *voteRepo) counts(db *gorm.DB) ([]VoteCount, error) {
	var rows []voteCountRow
	err := db.Model(&model.Vote{}).
		Select(voteCountSelect).
		Group("part_id").
		Order("part_id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	res := make([]VoteCount, 0, len(rows))
	for _, row := range rows {
		res = append(res, VoteCount{
			PartID:     row.PartID,
			Upvotes:    row.Upvotes,
			Downvotes:  row.Downvotes,
			LastVoteAt: row.LastVoteAt.Time,
		})
	}
	return res, nil
}

func (r *voteRepo) UserDirections(ctx context.Context, userID int64, partIDs []int64) (map[int64]model.VoteDirection, error) {
	res := make(map[int64]model.VoteDirection)
	if userID == 0 || len(partIDs) == 0 {
		return res, nil
	}
	var votes []model.Vote
	err := conn(ctx, r.db).
		Select("part_id", "direction").
		Where("user_id = ? AND part_id IN ?", userID, partIDs).
		Find(&votes).Error
	if err != nil {
		return nil, err
	}
	for _, v := range votes {
		res[v.PartID] = v.Direction
	}
	return res, nil
}

func (r *voteRepo) RecentDownvotes(ctx context.Context, since time.Time) (map[int64]int64, error) {
	var rows []struct {
		PartID int64
		Cnt    int64
	}
	err := conn(ctx, r.db).Model(&model.Vote{}).
		Select("part_id, COUNT(*) AS cnt").
		Where("direction = ? AND updated_at >= ?", model.VoteDown, since.UTC()).
		Group("part_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	res := make(map[int64]int64, len(rows))
	for _, row := range rows {
		res[row.PartID] = row.Cnt
	}
	return res, nil
}

func (r *voteRepo) DeleteByPart(ctx context.Context, partID int64) (int64, error) {
	tx := conn(ctx, r.db).Where("part_id = ?", partID).Delete(&model.Vote{})
	return tx.RowsAffected, tx.Error
}
