package progress

import (
	"testing"
	"time"

	types "github.com/yungbote/levelup-backend/internal/domain"
)

func TestAggregateLevel_Threshold(t *testing.T) {
	lvl := types.Level{ID: 1, Order: 1, MinPointsToPass: 100}
	now := time.Now().UTC()

	r := AggregateLevel(lvl, nil, []types.ActivityProgress{
		{IsCompleted: true, PointsEarned: 40},
		{IsCompleted: true, PointsEarned: 50},
	}, now)
	if r.IsCompleted || r.PointsEarned != 90 || r.ActivitiesCompleted != 2 || r.CompletedAt != nil {
		t.Fatalf("unexpected rollup: %+v", r)
	}

	r = AggregateLevel(lvl, nil, []types.ActivityProgress{
		{IsCompleted: true, PointsEarned: 40},
		{IsCompleted: true, PointsEarned: 60},
		{IsCompleted: false, PointsEarned: 99},
	}, now)
	if !r.IsCompleted || r.PointsEarned != 100 || r.ActivitiesCompleted != 2 || !r.NewlyCompleted {
		t.Fatalf("unexpected rollup: %+v", r)
	}
	if r.CompletedAt == nil || !r.CompletedAt.Equal(now) {
		t.Fatalf("completedAt: want=%v got=%v", now, r.CompletedAt)
	}
}

func TestAggregateLevel_PreservesFirstCompletion(t *testing.T) {
	first := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	lvl := types.Level{ID: 1, MinPointsToPass: 10}
	current := &types.UserProgress{IsCompleted: true, PointsEarned: 10, CompletedAt: &first}
	r := AggregateLevel(lvl, current, []types.ActivityProgress{{IsCompleted: true, PointsEarned: 30}}, time.Now())
	if r.NewlyCompleted {
		t.Fatalf("already completed level reported as new")
	}
	if r.CompletedAt == nil || !r.CompletedAt.Equal(first) {
		t.Fatalf("completedAt: want=%v got=%v", first, r.CompletedAt)
	}
	if !r.Changed(current) {
		t.Fatalf("points changed, rollup should differ")
	}
}

func TestAggregateLevel_ZeroThresholdCompletesEmpty(t *testing.T) {
	r := AggregateLevel(types.Level{MinPointsToPass: 0}, nil, nil, time.Now())
	if !r.IsCompleted {
		t.Fatalf("zero threshold should complete")
	}
}

func TestCurrentLevelFromCompletion(t *testing.T) {
	levels := []types.Level{{ID: 3, Order: 3}, {ID: 1, Order: 1}, {ID: 2, Order: 2}}
	cases := []struct {
		completed map[uint]bool
		stored    int
		want      int
	}{
		{map[uint]bool{}, 1, 1},
		{map[uint]bool{1: true}, 1, 2},
		{map[uint]bool{1: true, 3: true}, 1, 2},
		{map[uint]bool{1: true, 2: true, 3: true}, 1, 4},
		{map[uint]bool{}, 3, 3},
		{map[uint]bool{}, 0, 1},
	}
	for i, tc := range cases {
		if got := CurrentLevelFromCompletion(levels, tc.completed, tc.stored); got != tc.want {
			t.Fatalf("case %d: want=%d got=%d", i, tc.want, got)
		}
	}
}
