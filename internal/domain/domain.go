package domain

import (
	"github.com/yungbote/levelup-backend/internal/domain/learning"
	"github.com/yungbote/levelup-backend/internal/domain/progress"
	"github.com/yungbote/levelup-backend/internal/domain/user"
)

type User = user.User

type Level = learning.Level
type Activity = learning.Activity
type ActivityType = learning.ActivityType
type Achievement = learning.Achievement
type AchievementType = learning.AchievementType

type UserProgress = progress.UserProgress
type ActivityProgress = progress.ActivityProgress
type UserAchievement = progress.UserAchievement

const (
	ActivityTypeQuiz          = learning.ActivityTypeQuiz
	ActivityTypeReading       = learning.ActivityTypeReading
	ActivityTypeLab           = learning.ActivityTypeLab
	ActivityTypeUnimplemented = learning.ActivityTypeUnimplemented

	AchievementLevelCompletion = learning.AchievementLevelCompletion
	AchievementPerfectQuiz     = learning.AchievementPerfectQuiz
	AchievementFirstSteps      = learning.AchievementFirstSteps

	FirstLevelOrder = user.FirstLevelOrder
)

var ParseActivityType = learning.ParseActivityType

// AllModels lists every persisted model in migration order.
func AllModels() []any {
	return []any{
		&User{},
		&Level{},
		&Activity{},
		&Achievement{},
		&UserProgress{},
		&ActivityProgress{},
		&UserAchievement{},
	}
}
