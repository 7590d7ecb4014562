// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"gorm.io/gorm"
)

// UserRole determines which parts of the API a user may call.
type UserRole string

const (
	RoleUser       UserRole = "user"
	RoleAdmin      UserRole = "admin"
	RoleSuperadmin UserRole = "superadmin"
)

// UserStatus is the account standing derived from the user's active sanctions.
type UserStatus string

const (
	StatusActive     UserStatus = "active"
	StatusRestricted UserStatus = "restricted"
	StatusSuspended  UserStatus = "suspended"
	StatusBanned     UserStatus = "banned"
)

// ScoreCategory identifies which score field an adjustment targets.
type ScoreCategory string

const (
	CategoryTotal      ScoreCategory = "total"
	CategoryWargame    ScoreCategory = "wargame"
	CategoryCtf        ScoreCategory = "ctf"
	CategoryCurriculum ScoreCategory = "curriculum"
)

// ValidScoreCategory reports whether c is one of the four known categories.
func ValidScoreCategory(c ScoreCategory) bool {
	switch c {
	case CategoryTotal, CategoryWargame, CategoryCtf, CategoryCurriculum:
		return true
	}
	return false
}

// User represents a member of the HackArena platform.
//
// Invariant: Points == WargameScore + CtfScore + CurriculumScore + BonusPoints.
// Every score write goes through ScoreService, which maintains the sum and
// re-derives Level and Tier inside the same transaction.
type User struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Username    string     `gorm:"unique;not null" json:"username"`
	Email       string     `gorm:"unique;not null" json:"email"`
	Password    string     `gorm:"not null" json:"-"`
	DisplayName string     `json:"display_name"`
	Avatar      string     `json:"avatar"`
	Role        UserRole   `gorm:"type:varchar(16);not null;default:'user'" json:"role"`
	Status      UserStatus `gorm:"type:varchar(16);not null;default:'active';index" json:"status"`

	Points          int    `gorm:"not null;default:0;index" json:"points"`
	WargameScore    int    `gorm:"not null;default:0" json:"wargame_score"`
	CtfScore        int    `gorm:"not null;default:0" json:"ctf_score"`
	CurriculumScore int    `gorm:"not null;default:0" json:"curriculum_score"`
	BonusPoints     int    `gorm:"not null;default:0" json:"bonus_points"`
	Level           int    `gorm:"not null;default:1" json:"level"`
	Tier            string `gorm:"type:varchar(16);not null;default:'Bronze'" json:"tier"`
	Streak          int    `gorm:"not null;default:0" json:"streak"`

	// Version guards concurrent score writes that bypass row locking.
	Version uint `gorm:"not null;default:0" json:"-"`

	LastLogin *time.Time     `json:"last_login,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Sanctions []Sanction `gorm:"foreignKey:UserID" json:"sanctions,omitempty"`
}

// IsAdmin reports whether the user holds admin or superadmin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin || u.Role == RoleSuperadmin
}

// CategoryScore returns the current value of the given score category.
// The "total" category reads Points.
func (u *User) CategoryScore(c ScoreCategory) int {
	switch c {
	case CategoryWargame:
		return u.WargameScore
	case CategoryCtf:
		return u.CtfScore
	case CategoryCurriculum:
		return u.CurriculumScore
	default:
		return u.Points
	}
}
