package model

import "time"

// ReportStatus — состояние жалобы. resolved и dismissed терминальные.
type ReportStatus string

const (
	ReportPending   ReportStatus = "pending"
	ReportResolved  ReportStatus = "resolved"
	ReportDismissed ReportStatus = "dismissed"
)

// Valid проверяет, что статус известен.
func (s ReportStatus) Valid() bool {
	switch s {
	case ReportPending, ReportResolved, ReportDismissed:
		return true
	}
	return false
}

// Terminal — true для resolved/dismissed.
func (s ReportStatus) Terminal() bool {
	return s == ReportResolved || s == ReportDismissed
}

// Report — жалоба пользователя на деталь. Не дедуплицируется и никогда не удаляется.
type Report struct {
	ID     int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID int64 `gorm:"not null;index" json:"user_id"`
	PartID int64 `gorm:"not null;index" json:"part_id"`
	// снимок имени детали на момент жалобы, нужен для аудита после удаления детали
	PartName string `gorm:"size:200" json:"part_name"`

	Reason      string       `gorm:"not null;size:100" json:"reason"`
	Description *string      `json:"description,omitempty"`
	Status      ReportStatus `gorm:"not null;size:16;default:'pending';index" json:"status"`

	AdminNotes *string    `json:"admin_notes,omitempty"`
	ReviewedBy *int64     `json:"reviewed_by,omitempty"`
	ReviewedAt *time.Time `json:"reviewed_at,omitempty"`

	// PartDeletedAt != nil — деталь удалена, жалоба осталась для аудита
	PartDeletedAt *time.Time `json:"part_deleted_at,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Report) TableName() string { return "part_reports" }
