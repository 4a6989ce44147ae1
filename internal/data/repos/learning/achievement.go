package learning

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/levelup-backend/internal/domain"
	"github.com/yungbote/levelup-backend/internal/platform/dbctx"
	"github.com/yungbote/levelup-backend/internal/platform/logger"
)

type AchievementRepo interface {
	GetByIDs(dbc dbctx.Context, ids []uint) ([]*types.Achievement, error)
	// FindLevelCompletion returns the lowest-id LEVEL_COMPLETION achievement bound to levelID.
	FindLevelCompletion(dbc dbctx.Context, levelID uint) (*types.Achievement, error)
	// FirstOfType returns the lowest-id achievement of typ.
	FirstOfType(dbc dbctx.Context, typ types.AchievementType) (*types.Achievement, error)
	UpsertByKey(dbc dbctx.Context, achievements []*types.Achievement) error
}

type achievementRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAchievementRepo(db *gorm.DB, baseLog *logger.Logger) AchievementRepo {
	return &achievementRepo{db: db, log: baseLog.With("repo", "AchievementRepo")}
}

func (r *achievementRepo) GetByIDs(dbc dbctx.Context, ids []uint) ([]*types.Achievement, error) {
	var out []*types.Achievement
	if len(ids) == 0 {
		return out, nil
	}
	if err := dbc.DB(r.db).Where("id IN ?", ids).Order("id ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *achievementRepo) FindLevelCompletion(dbc dbctx.Context, levelID uint) (*types.Achievement, error) {
	var out types.Achievement
	err := dbc.DB(r.db).
		Where("type = ? AND level_id = ?", types.AchievementLevelCompletion, levelID).
		Order("id ASC").
		Limit(1).
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	if out.ID == 0 {
		return nil, nil
	}
	return &out, nil
}

func (r *achievementRepo) FirstOfType(dbc dbctx.Context, typ types.AchievementType) (*types.Achievement, error) {
	var out types.Achievement
	if err := dbc.DB(r.db).Where("type = ?", typ).Order("id ASC").Limit(1).Find(&out).Error; err != nil {
		return nil, err
	}
	if out.ID == 0 {
		return nil, nil
	}
	return &out, nil
}

func (r *achievementRepo) UpsertByKey(dbc dbctx.Context, achievements []*types.Achievement) error {
	if len(achievements) == 0 {
		return nil
	}
	now := time.Now().UTC()
	for _, a := range achievements {
		a.ID = 0
		a.CreatedAt = now
		a.UpdatedAt = now
	}
	return dbc.DB(r.db).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "achievement_key"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"name", "description", "type", "level_id", "icon", "updated_at",
			}),
		}).
		Create(&achievements).Error
}
