package progress

import (
	"time"

	"github.com/google/uuid"
)

// UserProgress is the per (user, level) rollup. It is recomputed from ActivityProgress, never patched.
type UserProgress struct {
	ID                  uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID              string     `gorm:"column:user_id;size:191;not null;uniqueIndex:idx_user_progress_user_level,priority:1" json:"user_id"`
	LevelID             uint       `gorm:"column:level_id;not null;uniqueIndex:idx_user_progress_user_level,priority:2" json:"level_id"`
	IsCompleted         bool       `gorm:"column:is_completed;not null" json:"is_completed"`
	PointsEarned        int        `gorm:"column:points_earned;not null" json:"points_earned"`
	ActivitiesCompleted int        `gorm:"column:activities_completed;not null" json:"activities_completed"`
	CompletedAt         *time.Time `gorm:"column:completed_at" json:"completed_at,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (UserProgress) TableName() string { return "user_progress" }
