package progress

import (
	"fmt"
	"testing"
	"time"

	types "github.com/yungbote/levelup-backend/internal/domain"
	"github.com/yungbote/levelup-backend/internal/platform/dbctx"
)

type fakeAchievementStore struct {
	byLevel map[uint]*types.Achievement
	byType  map[types.AchievementType]*types.Achievement
	granted map[string]bool
}

func (f *fakeAchievementStore) FindLevelCompletion(_ dbctx.Context, levelID uint) (*types.Achievement, error) {
	return f.byLevel[levelID], nil
}

func (f *fakeAchievementStore) FirstOfType(_ dbctx.Context, typ types.AchievementType) (*types.Achievement, error) {
	return f.byType[typ], nil
}

func (f *fakeAchievementStore) Grant(_ dbctx.Context, userID string, id uint, _ time.Time) (bool, error) {
	key := fmt.Sprintf("%s/%d", userID, id)
	if f.granted[key] {
		return false, nil
	}
	f.granted[key] = true
	return true, nil
}

func newFakeStore() *fakeAchievementStore {
	return &fakeAchievementStore{
		byLevel: map[uint]*types.Achievement{1: {ID: 7, Type: types.AchievementLevelCompletion}},
		byType: map[types.AchievementType]*types.Achievement{
			types.AchievementPerfectQuiz: {ID: 3, Type: types.AchievementPerfectQuiz},
			types.AchievementFirstSteps:  {ID: 1, Type: types.AchievementFirstSteps},
		},
		granted: map[string]bool{},
	}
}

func TestEvaluator_LevelCompletedGrantsOnce(t *testing.T) {
	e := NewEvaluator(newFakeStore())
	dbc := dbctx.Context{}
	ach, err := e.Evaluate(dbc, "u1", LevelCompleted{LevelID: 1}, time.Now())
	if err != nil || grantedID(ach) != 7 {
		t.Fatalf("first grant: want=7 got=%d err=%v", grantedID(ach), err)
	}
	ach, err = e.Evaluate(dbc, "u1", LevelCompleted{LevelID: 1}, time.Now())
	if err != nil || ach != nil {
		t.Fatalf("second grant: want=nil got=%+v err=%v", ach, err)
	}
}

func TestEvaluator_MissingAchievementIsNoop(t *testing.T) {
	e := NewEvaluator(newFakeStore())
	ach, err := e.Evaluate(dbctx.Context{}, "u1", LevelCompleted{LevelID: 99}, time.Now())
	if err != nil || ach != nil {
		t.Fatalf("want no-op got %+v err=%v", ach, err)
	}
}

func TestEvaluator_PerfectScore(t *testing.T) {
	cases := []struct {
		trig PerfectScore
		want uint
	}{
		{PerfectScore{ActivityType: types.ActivityTypeQuiz, PointsEarned: 50, MaxPoints: 50}, 3},
		{PerfectScore{ActivityType: types.ActivityTypeQuiz, PointsEarned: 49, MaxPoints: 50}, 0},
		{PerfectScore{ActivityType: types.ActivityTypeLab, PointsEarned: 50, MaxPoints: 50}, 0},
		{PerfectScore{ActivityType: types.ActivityTypeQuiz, PointsEarned: 0, MaxPoints: 0}, 0},
	}
	for i, tc := range cases {
		e := NewEvaluator(newFakeStore())
		ach, err := e.Evaluate(dbctx.Context{}, "u1", tc.trig, time.Now())
		if err != nil || grantedID(ach) != tc.want {
			t.Fatalf("case %d: want=%d got=%d err=%v", i, tc.want, grantedID(ach), err)
		}
	}
}

func TestEvaluator_FirstSteps(t *testing.T) {
	e := NewEvaluator(newFakeStore())
	ach, err := e.Evaluate(dbctx.Context{}, "u1", FirstSteps{}, time.Now())
	if err != nil || grantedID(ach) != 1 {
		t.Fatalf("want=1 got=%d err=%v", grantedID(ach), err)
	}
}

func grantedID(a *types.Achievement) uint {
	if a == nil {
		return 0
	}
	return a.ID
}
