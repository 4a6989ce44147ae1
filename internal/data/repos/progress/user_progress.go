package progress

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/levelup-backend/internal/domain"
	"github.com/yungbote/levelup-backend/internal/platform/dbctx"
	"github.com/yungbote/levelup-backend/internal/platform/logger"
)

type UserProgressRepo interface {
	Get(dbc dbctx.Context, userID string, levelID uint) (*types.UserProgress, error)
	// Ensure creates the (user, level) row when missing and returns it locked for update.
	Ensure(dbc dbctx.Context, userID string, levelID uint) (*types.UserProgress, error)
	ListByUser(dbc dbctx.Context, userID string) ([]*types.UserProgress, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
}

type userProgressRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserProgressRepo(db *gorm.DB, baseLog *logger.Logger) UserProgressRepo {
	return &userProgressRepo{db: db, log: baseLog.With("repo", "UserProgressRepo")}
}

func (r *userProgressRepo) Get(dbc dbctx.Context, userID string, levelID uint) (*types.UserProgress, error) {
	return r.get(dbc.DB(r.db), userID, levelID)
}

func (r *userProgressRepo) get(q *gorm.DB, userID string, levelID uint) (*types.UserProgress, error) {
	var out types.UserProgress
	if err := q.Where("user_id = ? AND level_id = ?", userID, levelID).Limit(1).Find(&out).Error; err != nil {
		return nil, err
	}
	if out.ID == uuid.Nil {
		return nil, nil
	}
	return &out, nil
}

func (r *userProgressRepo) Ensure(dbc dbctx.Context, userID string, levelID uint) (*types.UserProgress, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" || levelID == 0 {
		return nil, nil
	}
	now := time.Now().UTC()
	row := &types.UserProgress{
		ID:        uuid.New(),
		UserID:    userID,
		LevelID:   levelID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := dbc.DB(r.db).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "level_id"}},
			DoNothing: true,
		}).
		Create(row).Error; err != nil {
		return nil, err
	}
	return r.get(dbc.DB(r.db).Clauses(clause.Locking{Strength: "UPDATE"}), userID, levelID)
}

func (r *userProgressRepo) ListByUser(dbc dbctx.Context, userID string) ([]*types.UserProgress, error) {
	var out []*types.UserProgress
	if strings.TrimSpace(userID) == "" {
		return out, nil
	}
	if err := dbc.DB(r.db).Where("user_id = ?", userID).Order("level_id ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *userProgressRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	if id == uuid.Nil || len(updates) == 0 {
		return nil
	}
	if _, ok := updates["updated_at"]; !ok {
		updates["updated_at"] = time.Now().UTC()
	}
	return dbc.DB(r.db).
		Model(&types.UserProgress{}).
		Where("id = ?", id).
		Updates(updates).Error
}
