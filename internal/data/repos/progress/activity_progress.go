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

type ActivityProgressRepo interface {
	Get(dbc dbctx.Context, userID string, activityID uint) (*types.ActivityProgress, error)
	LockByUserActivity(dbc dbctx.Context, userID string, activityID uint) (*types.ActivityProgress, error)
	Create(dbc dbctx.Context, row *types.ActivityProgress) error
	// Save writes the mutable fields of row by id.
	Save(dbc dbctx.Context, row *types.ActivityProgress) error
	// ListCompletedInLevel scans the user's completed rows for activities of levelID.
	ListCompletedInLevel(dbc dbctx.Context, userID string, levelID uint) ([]types.ActivityProgress, error)
	ListByUser(dbc dbctx.Context, userID string) ([]*types.ActivityProgress, error)
	SumCompletedPoints(dbc dbctx.Context, userID string) (int, error)
}

type activityProgressRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewActivityProgressRepo(db *gorm.DB, baseLog *logger.Logger) ActivityProgressRepo {
	return &activityProgressRepo{db: db, log: baseLog.With("repo", "ActivityProgressRepo")}
}

func (r *activityProgressRepo) Get(dbc dbctx.Context, userID string, activityID uint) (*types.ActivityProgress, error) {
	return r.get(dbc.DB(r.db), userID, activityID)
}

func (r *activityProgressRepo) LockByUserActivity(dbc dbctx.Context, userID string, activityID uint) (*types.ActivityProgress, error) {
	return r.get(dbc.DB(r.db).Clauses(clause.Locking{Strength: "UPDATE"}), userID, activityID)
}

func (r *activityProgressRepo) get(q *gorm.DB, userID string, activityID uint) (*types.ActivityProgress, error) {
	if strings.TrimSpace(userID) == "" || activityID == 0 {
		return nil, nil
	}
	var out types.ActivityProgress
	if err := q.Where("user_id = ? AND activity_id = ?", userID, activityID).Limit(1).Find(&out).Error; err != nil {
		return nil, err
	}
	if out.ID == uuid.Nil {
		return nil, nil
	}
	return &out, nil
}

func (r *activityProgressRepo) Create(dbc dbctx.Context, row *types.ActivityProgress) error {
	if row == nil {
		return nil
	}
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	now := time.Now().UTC()
	row.CreatedAt = now
	row.UpdatedAt = now
	return dbc.DB(r.db).Create(row).Error
}

func (r *activityProgressRepo) Save(dbc dbctx.Context, row *types.ActivityProgress) error {
	if row == nil || row.ID == uuid.Nil {
		return nil
	}
	row.UpdatedAt = time.Now().UTC()
	return dbc.DB(r.db).
		Model(&types.ActivityProgress{}).
		Where("id = ?", row.ID).
		Updates(map[string]interface{}{
			"progress_id":   row.ProgressID,
			"is_completed":  row.IsCompleted,
			"points_earned": row.PointsEarned,
			"attempts":      row.Attempts,
			"answers":       row.Answers,
			"completed_at":  row.CompletedAt,
			"updated_at":    row.UpdatedAt,
		}).Error
}

func (r *activityProgressRepo) ListCompletedInLevel(dbc dbctx.Context, userID string, levelID uint) ([]types.ActivityProgress, error) {
	var out []types.ActivityProgress
	err := dbc.DB(r.db).
		Table("activity_progress AS ap").
		Select("ap.*").
		Joins("JOIN activities AS a ON a.id = ap.activity_id").
		Where("ap.user_id = ? AND a.level_id = ? AND ap.is_completed = ?", userID, levelID, true).
		Order("ap.activity_id ASC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *activityProgressRepo) ListByUser(dbc dbctx.Context, userID string) ([]*types.ActivityProgress, error) {
	var out []*types.ActivityProgress
	if strings.TrimSpace(userID) == "" {
		return out, nil
	}
	if err := dbc.DB(r.db).Where("user_id = ?", userID).Order("activity_id ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *activityProgressRepo) SumCompletedPoints(dbc dbctx.Context, userID string) (int, error) {
	var total int64
	err := dbc.DB(r.db).
		Model(&types.ActivityProgress{}).
		Select("COALESCE(SUM(points_earned), 0)").
		Where("user_id = ? AND is_completed = ?", userID, true).
		Scan(&total).Error
	if err != nil {
		return 0, err
	}
	return int(total), nil
}
