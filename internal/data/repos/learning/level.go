package learning

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/levelup-backend/internal/domain"
	"github.com/yungbote/levelup-backend/internal/platform/dbctx"
	"github.com/yungbote/levelup-backend/internal/platform/logger"
)

type LevelRepo interface {
	GetByID(dbc dbctx.Context, id uint) (*types.Level, error)
	GetByOrder(dbc dbctx.Context, order int) (*types.Level, error)
	First(dbc dbctx.Context) (*types.Level, error)
	ListOrdered(dbc dbctx.Context) ([]*types.Level, error)
	// UpsertByOrder inserts or updates levels keyed by order and reloads their ids.
	UpsertByOrder(dbc dbctx.Context, levels []*types.Level) ([]*types.Level, error)
}

type levelRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewLevelRepo(db *gorm.DB, baseLog *logger.Logger) LevelRepo {
	return &levelRepo{db: db, log: baseLog.With("repo", "LevelRepo")}
}

func (r *levelRepo) GetByID(dbc dbctx.Context, id uint) (*types.Level, error) {
	if id == 0 {
		return nil, nil
	}
	var out types.Level
	if err := dbc.DB(r.db).Where("id = ?", id).Limit(1).Find(&out).Error; err != nil {
		return nil, err
	}
	if out.ID == 0 {
		return nil, nil
	}
	return &out, nil
}

func (r *levelRepo) GetByOrder(dbc dbctx.Context, order int) (*types.Level, error) {
	var out types.Level
	if err := dbc.DB(r.db).Where("level_order = ?", order).Limit(1).Find(&out).Error; err != nil {
		return nil, err
	}
	if out.ID == 0 {
		return nil, nil
	}
	return &out, nil
}

func (r *levelRepo) First(dbc dbctx.Context) (*types.Level, error) {
	var out types.Level
	if err := dbc.DB(r.db).Order("level_order ASC").Limit(1).Find(&out).Error; err != nil {
		return nil, err
	}
	if out.ID == 0 {
		return nil, nil
	}
	return &out, nil
}

func (r *levelRepo) ListOrdered(dbc dbctx.Context) ([]*types.Level, error) {
	var out []*types.Level
	if err := dbc.DB(r.db).Order("level_order ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *levelRepo) UpsertByOrder(dbc dbctx.Context, levels []*types.Level) ([]*types.Level, error) {
	if len(levels) == 0 {
		return []*types.Level{}, nil
	}
	now := time.Now().UTC()
	for _, l := range levels {
		l.ID = 0
		l.CreatedAt = now
		l.UpdatedAt = now
	}
	err := dbc.DB(r.db).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "level_order"}},
			DoUpdates: clause.AssignmentColumns([]string{"title", "description", "min_points_to_pass", "updated_at"}),
		}).
		Create(&levels).Error
	if err != nil {
		return nil, err
	}
	out := make([]*types.Level, 0, len(levels))
	for _, l := range levels {
		got, err := r.GetByOrder(dbc, l.Order)
		if err != nil {
			return nil, err
		}
		if got != nil {
			out = append(out, got)
		}
	}
	return out, nil
}
