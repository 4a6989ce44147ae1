package progress

import (
	"time"

	"github.com/google/uuid"
)

// UserAchievement exists at most once per (user, achievement).
type UserAchievement struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID        string    `gorm:"column:user_id;size:191;not null;uniqueIndex:idx_user_achievement_pair,priority:1" json:"user_id"`
	AchievementID uint      `gorm:"column:achievement_id;not null;uniqueIndex:idx_user_achievement_pair,priority:2" json:"achievement_id"`
	EarnedAt      time.Time `gorm:"column:earned_at;not null" json:"earned_at"`
}

func (UserAchievement) TableName() string { return "user_achievements" }
