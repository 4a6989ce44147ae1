package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/levelup-backend/internal/data/repos/learning"
	"github.com/yungbote/levelup-backend/internal/data/repos/progress"
	"github.com/yungbote/levelup-backend/internal/data/repos/user"
	"github.com/yungbote/levelup-backend/internal/platform/logger"
)

type UserRepo = user.UserRepo

type LevelRepo = learning.LevelRepo
type ActivityRepo = learning.ActivityRepo
type AchievementRepo = learning.AchievementRepo

type UserProgressRepo = progress.UserProgressRepo
type ActivityProgressRepo = progress.ActivityProgressRepo
type UserAchievementRepo = progress.UserAchievementRepo

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo { return user.NewUserRepo(db, baseLog) }

func NewLevelRepo(db *gorm.DB, baseLog *logger.Logger) LevelRepo {
	return learning.NewLevelRepo(db, baseLog)
}
func NewActivityRepo(db *gorm.DB, baseLog *logger.Logger) ActivityRepo {
	return learning.NewActivityRepo(db, baseLog)
}
func NewAchievementRepo(db *gorm.DB, baseLog *logger.Logger) AchievementRepo {
	return learning.NewAchievementRepo(db, baseLog)
}

func NewUserProgressRepo(db *gorm.DB, baseLog *logger.Logger) UserProgressRepo {
	return progress.NewUserProgressRepo(db, baseLog)
}
func NewActivityProgressRepo(db *gorm.DB, baseLog *logger.Logger) ActivityProgressRepo {
	return progress.NewActivityProgressRepo(db, baseLog)
}
func NewUserAchievementRepo(db *gorm.DB, baseLog *logger.Logger) UserAchievementRepo {
	return progress.NewUserAchievementRepo(db, baseLog)
}

// Set bundles every table repo over one database handle.
type Set struct {
	Users            UserRepo
	Levels           LevelRepo
	Activities       ActivityRepo
	Achievements     AchievementRepo
	UserProgress     UserProgressRepo
	ActivityProgress ActivityProgressRepo
	UserAchievements UserAchievementRepo
}

func NewSet(db *gorm.DB, baseLog *logger.Logger) Set {
	return Set{
		Users:            NewUserRepo(db, baseLog),
		Levels:           NewLevelRepo(db, baseLog),
		Activities:       NewActivityRepo(db, baseLog),
		Achievements:     NewAchievementRepo(db, baseLog),
		UserProgress:     NewUserProgressRepo(db, baseLog),
		ActivityProgress: NewActivityProgressRepo(db, baseLog),
		UserAchievements: NewUserAchievementRepo(db, baseLog),
	}
}
