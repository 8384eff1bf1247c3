package model

import (
	"time"

	"gorm.io/datatypes"
)

// Источники (provenance) глобальной детали.
const (
	PartSourceUser         = "user"
	PartSourceImport       = "import"
	PartSourceManufacturer = "manufacturer"
)

// GlobalPart — общая запись каталога деталей. Build-листы ссылаются на неё
// через BuildListPart и никогда не копируют.
type GlobalPart struct {
	ID         int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Name       string `gorm:"not null;size:200;index" json:"name"`
	CategoryID int64  `gorm:"not null;index" json:"category_id"`
	CreatedBy  int64  `gorm:"not null;index" json:"created_by"` // владелец (создатель)

	Brand          string            `gorm:"size:100" json:"brand,omitempty"`
	PartNumber     string            `gorm:"size:100" json:"part_number,omitempty"`
	Specifications datatypes.JSONMap `json:"specifications,omitempty"`

	IsVerified bool   `gorm:"not null;default:false" json:"is_verified"`
	Source     string `gorm:"not null;size:32;default:'user'" json:"source"`
	EditCount  int64  `gorm:"not null;default:0" json:"edit_count"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (GlobalPart) TableName() string { return "global_parts" }
