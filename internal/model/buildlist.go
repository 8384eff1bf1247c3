package model

import "time"

// BuildList — список доработок автомобиля пользователя.
type BuildList struct {
	ID     int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID int64  `gorm:"not null;index" json:"user_id"`
	Name   string `gorm:"not null;size:200" json:"name"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (BuildList) TableName() string { return "build_lists" }

// BuildListPart — связь build-листа с глобальной деталью.
// Заметки приватны: видны и редактируются только добавившим (или админом).
type BuildListPart struct {
	ID          int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	BuildListID int64 `gorm:"not null;uniqueIndex:idx_build_list_part,priority:1" json:"build_list_id"`
	PartID      int64 `gorm:"not null;uniqueIndex:idx_build_list_part,priority:2;index" json:"part_id"`
	AddedBy     int64 `gorm:"not null" json:"added_by"`

	Notes   *string   `json:"notes,omitempty"`
	AddedAt time.Time `gorm:"autoCreateTime" json:"added_at"`

	Part *GlobalPart `gorm:"foreignKey:PartID;constraint:OnDelete:CASCADE" json:"part,omitempty"`
}

func (BuildListPart) TableName() string { return "build_list_parts" }
