package user

import (
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/levelup-backend/internal/domain"
	"github.com/yungbote/levelup-backend/internal/platform/dbctx"
	"github.com/yungbote/levelup-backend/internal/platform/logger"
)

type UserRepo interface {
	GetByID(dbc dbctx.Context, id string) (*types.User, error)
	LockByID(dbc dbctx.Context, id string) (*types.User, error)
	// CreateIfAbsent inserts u unless a user with the same id exists and reports whether it inserted.
	CreateIfAbsent(dbc dbctx.Context, u *types.User) (bool, error)
	AddTotalPoints(dbc dbctx.Context, id string, delta int) error
	UpdateFields(dbc dbctx.Context, id string, updates map[string]interface{}) error
	ListIDsAfter(dbc dbctx.Context, afterID string, limit int) ([]string, error)
}

type userRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo {
	return &userRepo{db: db, log: baseLog.With("repo", "UserRepo")}
}

func (r *userRepo) GetByID(dbc dbctx.Context, id string) (*types.User, error) {
	return r.get(dbc, id, false)
}

func (r *userRepo) LockByID(dbc dbctx.Context, id string) (*types.User, error) {
	return r.get(dbc, id, true)
}

func (r *userRepo) get(dbc dbctx.Context, id string, lock bool) (*types.User, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, nil
	}
	q := dbc.DB(r.db)
	if lock {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var out types.User
	if err := q.Where("id = ?", id).Limit(1).Find(&out).Error; err != nil {
		return nil, err
	}
	if out.ID == "" {
		return nil, nil
	}
	return &out, nil
}

func (r *userRepo) CreateIfAbsent(dbc dbctx.Context, u *types.User) (bool, error) {
	if u == nil || strings.TrimSpace(u.ID) == "" {
		return false, nil
	}
	now := time.Now().UTC()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	if u.UpdatedAt.IsZero() {
		u.UpdatedAt = now
	}
	if u.CurrentLevel < types.FirstLevelOrder {
		u.CurrentLevel = types.FirstLevelOrder
	}
	res := dbc.DB(r.db).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, DoNothing: true}).
		Create(u)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *userRepo) AddTotalPoints(dbc dbctx.Context, id string, delta int) error {
	if delta == 0 {
		return nil
	}
	return dbc.DB(r.db).
		Model(&types.User{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"total_points": gorm.Expr("total_points + ?", delta),
			"updated_at":   time.Now().UTC(),
		}).Error
}

func (r *userRepo) UpdateFields(dbc dbctx.Context, id string, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}
	if _, ok := updates["updated_at"]; !ok {
		updates["updated_at"] = time.Now().UTC()
	}
	return dbc.DB(r.db).
		Model(&types.User{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *userRepo) ListIDsAfter(dbc dbctx.Context, afterID string, limit int) ([]string, error) {
	if limit <= 0 {
		limit = 100
	}
	var ids []string
	q := dbc.DB(r.db).Model(&types.User{}).Order("id ASC").Limit(limit)
	if afterID != "" {
		q = q.Where("id > ?", afterID)
	}
	if err := q.Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}
