package progress

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// ActivityProgress is the per (user, activity) record. PointsEarned is the best score,
// Attempts counts every submission, CompletedAt is set once.
type ActivityProgress struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID       string         `gorm:"column:user_id;size:191;not null;uniqueIndex:idx_activity_progress_user_activity,priority:1" json:"user_id"`
	ActivityID   uint           `gorm:"column:activity_id;not null;uniqueIndex:idx_activity_progress_user_activity,priority:2" json:"activity_id"`
	ProgressID   uuid.UUID      `gorm:"column:progress_id;type:uuid;index" json:"progress_id"`
	IsCompleted  bool           `gorm:"column:is_completed;not null" json:"is_completed"`
	PointsEarned int            `gorm:"column:points_earned;not null" json:"points_earned"`
	Attempts     int            `gorm:"column:attempts;not null" json:"attempts"`
	Answers      datatypes.JSON `gorm:"column:answers" json:"answers,omitempty"`
	CompletedAt  *time.Time     `gorm:"column:completed_at" json:"completed_at,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (ActivityProgress) TableName() string { return "activity_progress" }

// Credited is what this row contributes to the user's total points.
func (p *ActivityProgress) Credited() int {
	if p == nil || !p.IsCompleted {
		return 0
	}
	return p.PointsEarned
}
