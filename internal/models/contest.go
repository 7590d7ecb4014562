package models

import (
	"time"

	"gorm.io/gorm"
)

// ContestCategory distinguishes scored tracks. Wargame challenges are
// long-running; CTF contests have a start and end.
type ContestCategory string

const (
	ContestCtf     ContestCategory = "ctf"
	ContestWargame ContestCategory = "wargame"
)

// Contest is a CTF contest or standing wargame challenge set.
type Contest struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	Title       string          `gorm:"not null" json:"title"`
	Description string          `gorm:"type:text" json:"description"`
	Category    ContestCategory `gorm:"type:varchar(16);not null;default:'ctf';index" json:"category"`

	StartsAt *time.Time `json:"starts_at,omitempty"`
	EndsAt   *time.Time `json:"ends_at,omitempty"`

	Challenges []Challenge `gorm:"foreignKey:ContestID" json:"challenges,omitempty"`

	CreatedBy uint           `gorm:"not null" json:"created_by"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// Running reports whether the contest accepts solves at now.
// A contest with no window (standing wargame) always runs.
func (c *Contest) Running(now time.Time) bool {
	if c.StartsAt != nil && now.Before(*c.StartsAt) {
		return false
	}
	if c.EndsAt != nil && now.After(*c.EndsAt) {
		return false
	}
	return true
}

// Challenge is one scored task within a contest.
type Challenge struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	ContestID uint   `gorm:"not null;index" json:"contest_id"`
	Title     string `gorm:"not null" json:"title"`
	Points    int    `gorm:"not null" json:"points"`
	// FlagHash is the SHA-256 of the flag; plaintext flags are never stored.
	FlagHash string `gorm:"type:varchar(64);not null" json:"-"`

	SolveCount int `gorm:"not null;default:0" json:"solve_count"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ContestParticipant records a user's registration in a contest.
type ContestParticipant struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ContestID uint      `gorm:"not null;uniqueIndex:idx_contest_user" json:"contest_id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_contest_user" json:"user_id"`
	JoinedAt  time.Time `json:"joined_at"`
}

// Solve is a correct flag submission. At most one per user per challenge.
type Solve struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	ChallengeID uint      `gorm:"not null;uniqueIndex:idx_challenge_user" json:"challenge_id"`
	UserID      uint      `gorm:"not null;uniqueIndex:idx_challenge_user" json:"user_id"`
	ContestID   uint      `gorm:"not null;index" json:"contest_id"`
	Points      int       `gorm:"not null" json:"points"`
	CreatedAt   time.Time `json:"created_at"`
}

// Curriculum is a learning track whose units award curriculum points.
type Curriculum struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Title       string `gorm:"not null" json:"title"`
	Description string `gorm:"type:text" json:"description"`
	Units       int    `gorm:"not null;default:0" json:"units"`
	// PointsPerUnit awarded on each unit completion.
	PointsPerUnit int `gorm:"not null;default:10" json:"points_per_unit"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// CurriculumProgress tracks a user's completed units within a curriculum.
type CurriculumProgress struct {
	ID           uint `gorm:"primaryKey" json:"id"`
	CurriculumID uint `gorm:"not null;uniqueIndex:idx_curriculum_user" json:"curriculum_id"`
	UserID       uint `gorm:"not null;uniqueIndex:idx_curriculum_user" json:"user_id"`

	CompletedUnits int `gorm:"not null;default:0" json:"completed_units"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Banner is an admin-managed homepage banner.
type Banner struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Title    string `gorm:"not null" json:"title"`
	ImageURL string `gorm:"not null" json:"image_url"`
	LinkURL  string `json:"link_url"`
	IsActive bool   `gorm:"not null;default:true;index" json:"is_active"`
	Position int    `gorm:"not null;default:0" json:"position"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
