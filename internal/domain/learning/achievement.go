package learning

import "time"

type AchievementType string

const (
	AchievementLevelCompletion AchievementType = "LEVEL_COMPLETION"
	AchievementPerfectQuiz     AchievementType = "PERFECT_QUIZ"
	AchievementFirstSteps      AchievementType = "FIRST_STEPS"
)

// Achievement is a badge definition. LevelID is set only for LEVEL_COMPLETION badges.
type Achievement struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	Key         string          `gorm:"column:achievement_key;size:191;uniqueIndex;not null" json:"key"`
	Name        string          `gorm:"column:name;not null" json:"name"`
	Description string          `gorm:"column:description" json:"description"`
	Type        AchievementType `gorm:"column:type;size:64;index;not null" json:"type"`
	LevelID     *uint           `gorm:"column:level_id;index" json:"level_id,omitempty"`
	Icon        string          `gorm:"column:icon" json:"icon,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Achievement) TableName() string { return "achievements" }
