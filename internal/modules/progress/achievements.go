package progress

import (
	"time"

	types "github.com/yungbote/levelup-backend/internal/domain"
	"github.com/yungbote/levelup-backend/internal/platform/dbctx"
)

// Trigger is an event that may unlock an achievement.
type Trigger interface {
	trigger()
}

type LevelCompleted struct {
	LevelID uint
}

type PerfectScore struct {
	ActivityID   uint
	ActivityType types.ActivityType
	PointsEarned int
	MaxPoints    int
}

// FirstSteps fires when a user is provisioned.
type FirstSteps struct{}

func (LevelCompleted) trigger() {}
func (PerfectScore) trigger()   {}
func (FirstSteps) trigger()     {}

// Qualifies reports whether the score is a perfect quiz result.
func (p PerfectScore) Qualifies() bool {
	return types.ParseActivityType(string(p.ActivityType)) == types.ActivityTypeQuiz &&
		p.MaxPoints > 0 &&
		p.PointsEarned == p.MaxPoints
}

// AchievementStore is the subset of the achievement repos the evaluator needs.
type AchievementStore interface {
	FindLevelCompletion(dbc dbctx.Context, levelID uint) (*types.Achievement, error)
	FirstOfType(dbc dbctx.Context, typ types.AchievementType) (*types.Achievement, error)
	// Grant inserts the pair if absent and reports whether a row was inserted.
	Grant(dbc dbctx.Context, userID string, achievementID uint, at time.Time) (bool, error)
}

type Evaluator struct {
	store AchievementStore
}

func NewEvaluator(store AchievementStore) *Evaluator {
	return &Evaluator{store: store}
}

// Evaluate resolves the achievement for t and grants it to userID.
// It returns the achievement when this call created the grant, nil otherwise.
func (e *Evaluator) Evaluate(dbc dbctx.Context, userID string, t Trigger, now time.Time) (*types.Achievement, error) {
	ach, err := e.resolve(dbc, t)
	if err != nil || ach == nil {
		return nil, err
	}
	granted, err := e.store.Grant(dbc, userID, ach.ID, now)
	if err != nil || !granted {
		return nil, err
	}
	return ach, nil
}

func (e *Evaluator) resolve(dbc dbctx.Context, t Trigger) (*types.Achievement, error) {
	switch tr := t.(type) {
	case LevelCompleted:
		return e.store.FindLevelCompletion(dbc, tr.LevelID)
	case PerfectScore:
		if !tr.Qualifies() {
			return nil, nil
		}
		return e.store.FirstOfType(dbc, types.AchievementPerfectQuiz)
	case FirstSteps:
		return e.store.FirstOfType(dbc, types.AchievementFirstSteps)
	default:
		return nil, nil
	}
}
