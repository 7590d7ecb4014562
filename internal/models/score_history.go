package models

import "time"

// ScoreHistory is the append-only audit log of score adjustments.
// Rows are never updated or deleted; the user's scores are the source of
// truth and history is not replayed to rebuild them.
type ScoreHistory struct {
	ID        uint          `gorm:"primaryKey" json:"id"`
	UserID    uint          `gorm:"not null;index" json:"user_id"`
	Username  string        `gorm:"not null" json:"username"`
	ScoreType ScoreCategory `gorm:"type:varchar(16);not null" json:"score_type"`
	Points    int           `gorm:"not null" json:"points"`
	Before    int           `gorm:"not null" json:"before"`
	After     int           `gorm:"not null" json:"after"`
	Reason    string        `gorm:"type:text;not null" json:"reason"`

	// AdminID is 0 for system-initiated awards (solves, curriculum completions).
	AdminID   uint      `gorm:"index" json:"admin_id"`
	AdminName string    `json:"admin_name"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}
