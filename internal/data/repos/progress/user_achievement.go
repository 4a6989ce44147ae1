package progress

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/levelup-backend/internal/domain"
	"github.com/yungbote/levelup-backend/internal/platform/dbctx"
	"github.com/yungbote/levelup-backend/internal/platform/logger"
)

type UserAchievementRepo interface {
	// Grant inserts (user, achievement) unless present and reports whether it inserted.
	Grant(dbc dbctx.Context, userID string, achievementID uint, at time.Time) (bool, error)
	ListByUser(dbc dbctx.Context, userID string) ([]*types.UserAchievement, error)
}

type userAchievementRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserAchievementRepo(db *gorm.DB, baseLog *logger.Logger) UserAchievementRepo {
	return &userAchievementRepo{db: db, log: baseLog.With("repo", "UserAchievementRepo")}
}

func (r *userAchievementRepo) Grant(dbc dbctx.Context, userID string, achievementID uint, at time.Time) (bool, error) {
	if userID == "" || achievementID == 0 {
		return false, nil
	}
	if at.IsZero() {
		at = time.Now().UTC()
	}
	row := &types.UserAchievement{
		ID:            uuid.New(),
		UserID:        userID,
		AchievementID: achievementID,
		EarnedAt:      at,
	}
	res := dbc.DB(r.db).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "achievement_id"}},
			DoNothing: true,
		}).
		Create(row)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *userAchievementRepo) ListByUser(dbc dbctx.Context, userID string) ([]*types.UserAchievement, error) {
	var out []*types.UserAchievement
	if userID == "" {
		return out, nil
	}
	if err := dbc.DB(r.db).Where("user_id = ?", userID).Order("earned_at ASC, achievement_id ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
