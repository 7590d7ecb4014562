package models

import "time"

// SanctionType orders sanctions by severity. Warnings are recorded but never
// change account status.
type SanctionType string

const (
	SanctionWarning     SanctionType = "warning"
	SanctionRestriction SanctionType = "restriction"
	SanctionSuspension  SanctionType = "suspension"
	SanctionBan         SanctionType = "ban"
)

// severity ranks sanction types; higher wins when deriving user status.
var severity = map[SanctionType]int{
	SanctionWarning:     0,
	SanctionRestriction: 1,
	SanctionSuspension:  2,
	SanctionBan:         3,
}

// Severity returns the precedence rank of t (ban > suspension > restriction > warning).
func (t SanctionType) Severity() int {
	return severity[t]
}

// ImpliedStatus returns the account status a sanction of type t forces.
func (t SanctionType) ImpliedStatus() UserStatus {
	switch t {
	case SanctionBan:
		return StatusBanned
	case SanctionSuspension:
		return StatusSuspended
	case SanctionRestriction:
		return StatusRestricted
	default:
		return StatusActive
	}
}

// Sanction is a disciplinary record against a user. The user's Status column
// is always derivable from the set of active, unexpired sanctions.
type Sanction struct {
	ID     uint         `gorm:"primaryKey" json:"id"`
	UserID uint         `gorm:"not null;index" json:"user_id"`
	Type   SanctionType `gorm:"type:varchar(16);not null" json:"type"`
	Reason string       `gorm:"type:text;not null" json:"reason"`

	AppliedBy   uint   `gorm:"not null" json:"applied_by"`
	AppliedName string `json:"applied_name"`

	IsActive  bool       `gorm:"not null;default:true;index" json:"is_active"`
	ExpiresAt *time.Time `gorm:"index" json:"expires_at,omitempty"`

	RevokedBy *uint      `json:"revoked_by,omitempty"`
	RevokedAt *time.Time `json:"revoked_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// InEffect reports whether the sanction currently binds: active and not past
// its expiry. Expiry is honored at read time even before the sweep job has
// flipped IsActive.
func (s *Sanction) InEffect(now time.Time) bool {
	if !s.IsActive {
		return false
	}
	if s.ExpiresAt != nil && !s.ExpiresAt.After(now) {
		return false
	}
	return true
}

// StatusFromSanctions derives the account status implied by the most severe
// sanction in effect at now. No sanctions in effect means active.
func StatusFromSanctions(sanctions []Sanction, now time.Time) UserStatus {
	status := StatusActive
	best := -1
	for i := range sanctions {
		s := &sanctions[i]
		if !s.InEffect(now) {
			continue
		}
		if implied := s.Type.ImpliedStatus(); implied != StatusActive && s.Type.Severity() > best {
			best = s.Type.Severity()
			status = implied
		}
	}
	return status
}
