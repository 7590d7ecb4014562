package models

import "time"

// SeasonState is the lifecycle state of a season. Transitions are linear:
// planned -> active -> ended. There is no reopen.
type SeasonState string

const (
	SeasonPlanned SeasonState = "planned"
	SeasonActive  SeasonState = "active"
	SeasonEnded   SeasonState = "ended"
)

// SeasonSettings configures a season's behavior at activation time.
type SeasonSettings struct {
	ResetScoresOnStart   bool `gorm:"not null;default:false" json:"reset_scores_on_start"`
	CountWargame         bool `gorm:"not null;default:true" json:"count_wargame"`
	CountCtf             bool `gorm:"not null;default:true" json:"count_ctf"`
	CountCurriculum      bool `gorm:"not null;default:true" json:"count_curriculum"`
	RequiresRegistration bool `gorm:"not null;default:false" json:"requires_registration"`
}

// Season is one competitive period with its own leaderboard.
// At most one season is active at any time.
type Season struct {
	ID          uint        `gorm:"primaryKey" json:"id"`
	Name        string      `gorm:"unique;not null" json:"name"`
	Description string      `gorm:"type:text" json:"description"`
	StartsAt    time.Time   `json:"starts_at"`
	EndsAt      *time.Time  `json:"ends_at,omitempty"`
	State       SeasonState `gorm:"type:varchar(16);not null;default:'planned';index" json:"state"`
	IsActive    bool        `gorm:"not null;default:false;index" json:"is_active"`

	Settings SeasonSettings `gorm:"embedded;embeddedPrefix:settings_" json:"settings"`

	// Aggregate snapshot fields, refreshed by RecalculateRankings.
	ParticipantCount int     `gorm:"not null;default:0" json:"participant_count"`
	SolveCount       int     `gorm:"not null;default:0" json:"solve_count"`
	AverageScore     float64 `gorm:"not null;default:0" json:"average_score"`
	TopScore         int     `gorm:"not null;default:0" json:"top_score"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SeasonParticipant is a per-season per-user score and rank snapshot.
type SeasonParticipant struct {
	ID       uint `gorm:"primaryKey" json:"id"`
	SeasonID uint `gorm:"not null;uniqueIndex:idx_season_user" json:"season_id"`
	UserID   uint `gorm:"not null;uniqueIndex:idx_season_user" json:"user_id"`
	User     User `gorm:"foreignKey:UserID" json:"user,omitempty"`

	Score int `gorm:"not null;default:0" json:"score"`
	Rank  int `gorm:"not null;default:0" json:"rank"`

	JoinedAt  time.Time `json:"joined_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ResetRunStatus is the state of a bulk score reset run.
type ResetRunStatus string

const (
	ResetRunning   ResetRunStatus = "running"
	ResetCompleted ResetRunStatus = "completed"
	ResetFailed    ResetRunStatus = "failed"
)

// SeasonResetRun tracks progress of a batched season score reset so that a
// partially-applied reset is observable and resumable rather than silent.
type SeasonResetRun struct {
	ID       uint           `gorm:"primaryKey" json:"id"`
	RunID    string         `gorm:"type:varchar(36);unique;not null" json:"run_id"`
	SeasonID uint           `gorm:"not null;index" json:"season_id"`
	Status   ResetRunStatus `gorm:"type:varchar(16);not null;default:'running'" json:"status"`

	TotalUsers     int64 `gorm:"not null;default:0" json:"total_users"`
	ProcessedUsers int64 `gorm:"not null;default:0" json:"processed_users"`
	// LastUserID is the resume cursor: all users with id <= LastUserID are reset.
	LastUserID uint   `gorm:"not null;default:0" json:"last_user_id"`
	Error      string `gorm:"type:text" json:"error,omitempty"`

	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}
