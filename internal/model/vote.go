package model

import "time"

// VoteDirection — направление голоса. Третьего состояния нет: снятый голос = отсутствие строки.
type VoteDirection string

const (
	VoteUp   VoteDirection = "up"
	VoteDown VoteDirection = "down"
)

// Valid проверяет, что направление известно.
func (d VoteDirection) Valid() bool {
	return d == VoteUp || d == VoteDown
}

// Vote — строка журнала голосов. Не более одной строки на пару (user, part).
type Vote struct {
	ID        int64         `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    int64         `gorm:"not null;uniqueIndex:idx_vote_user_part,priority:1" json:"user_id"`
	PartID    int64         `gorm:"not null;uniqueIndex:idx_vote_user_part,priority:2;index" json:"part_id"`
	Direction VoteDirection `gorm:"not null;size:8" json:"direction"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime;index" json:"updated_at"` // момент установки текущего направления
}

func (Vote) TableName() string { return "part_votes" }
