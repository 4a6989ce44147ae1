package learning

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/levelup-backend/internal/domain"
	"github.com/yungbote/levelup-backend/internal/platform/dbctx"
	"github.com/yungbote/levelup-backend/internal/platform/logger"
)

type ActivityRepo interface {
	GetByID(dbc dbctx.Context, id uint) (*types.Activity, error)
	GetBySlug(dbc dbctx.Context, slug string) (*types.Activity, error)
	ListByLevel(dbc dbctx.Context, levelID uint) ([]*types.Activity, error)
	ListByLevels(dbc dbctx.Context, levelIDs []uint) ([]*types.Activity, error)
	UpsertBySlug(dbc dbctx.Context, activities []*types.Activity) error
}

type activityRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewActivityRepo(db *gorm.DB, baseLog *logger.Logger) ActivityRepo {
	return &activityRepo{db: db, log: baseLog.With("repo", "ActivityRepo")}
}

func (r *activityRepo) GetByID(dbc dbctx.Context, id uint) (*types.Activity, error) {
	if id == 0 {
		return nil, nil
	}
	var out types.Activity
	if err := dbc.DB(r.db).Where("id = ?", id).Limit(1).Find(&out).Error; err != nil {
		return nil, err
	}
	if out.ID == 0 {
		return nil, nil
	}
	return &out, nil
}

func (r *activityRepo) GetBySlug(dbc dbctx.Context, slug string) (*types.Activity, error) {
	if slug == "" {
		return nil, nil
	}
	var out types.Activity
	if err := dbc.DB(r.db).Where("slug = ?", slug).Limit(1).Find(&out).Error; err != nil {
		return nil, err
	}
	if out.ID == 0 {
		return nil, nil
	}
	return &out, nil
}

func (r *activityRepo) ListByLevel(dbc dbctx.Context, levelID uint) ([]*types.Activity, error) {
	return r.ListByLevels(dbc, []uint{levelID})
}

func (r *activityRepo) ListByLevels(dbc dbctx.Context, levelIDs []uint) ([]*types.Activity, error) {
	var out []*types.Activity
	if len(levelIDs) == 0 {
		return out, nil
	}
	if err := dbc.DB(r.db).
		Where("level_id IN ?", levelIDs).
		Order("level_id ASC, position ASC, id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *activityRepo) UpsertBySlug(dbc dbctx.Context, activities []*types.Activity) error {
	if len(activities) == 0 {
		return nil
	}
	now := time.Now().UTC()
	for _, a := range activities {
		a.ID = 0
		a.CreatedAt = now
		a.UpdatedAt = now
	}
	return dbc.DB(r.db).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "slug"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"level_id", "type", "name", "description", "points", "position", "content", "updated_at",
			}),
		}).
		Create(&activities).Error
}
