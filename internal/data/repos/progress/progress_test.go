package progress

import (
	"context"
	"testing"
	"time"

	"github.com/yungbote/levelup-backend/internal/data/repos/testutil"
	types "github.com/yungbote/levelup-backend/internal/domain"
	"github.com/yungbote/levelup-backend/internal/platform/dbctx"
)

func TestUserProgressRepo_EnsureIsIdempotent(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	u := testutil.SeedUser(t, ctx, tx, "user_1")
	lvl := testutil.SeedLevel(t, ctx, tx, 1, 100)
	repo := NewUserProgressRepo(db, testutil.Logger(t))

	first, err := repo.Ensure(dbc, u.ID, lvl.ID)
	if err != nil || first == nil {
		t.Fatalf("Ensure: got %+v err=%v", first, err)
	}
	second, err := repo.Ensure(dbc, u.ID, lvl.ID)
	if err != nil || second == nil {
		t.Fatalf("Ensure again: got %+v err=%v", second, err)
	}
	if first.ID != second.ID {
		t.Fatalf("Ensure: want same row id=%s got=%s", first.ID, second.ID)
	}

	now := time.Now().UTC()
	if err := repo.UpdateFields(dbc, first.ID, map[string]interface{}{
		"points_earned": 40,
		"is_completed":  true,
		"completed_at":  now,
	}); err != nil {
		t.Fatalf("UpdateFields: %v", err)
	}
	got, err := repo.Get(dbc, u.ID, lvl.ID)
	if err != nil || got == nil || got.PointsEarned != 40 || !got.IsCompleted || got.CompletedAt == nil {
		t.Fatalf("Get: got %+v err=%v", got, err)
	}
	rows, err := repo.ListByUser(dbc, u.ID)
	if err != nil || len(rows) != 1 {
		t.Fatalf("ListByUser: got %d err=%v", len(rows), err)
	}
}

func TestActivityProgressRepo_CompletedSetScan(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	u := testutil.SeedUser(t, ctx, tx, "user_1")
	l1 := testutil.SeedLevel(t, ctx, tx, 1, 100)
	l2 := testutil.SeedLevel(t, ctx, tx, 2, 100)
	a1 := testutil.SeedActivity(t, ctx, tx, l1.ID, "a1", types.ActivityTypeQuiz, 50)
	a2 := testutil.SeedActivity(t, ctx, tx, l1.ID, "a2", types.ActivityTypeLab, 50)
	a3 := testutil.SeedActivity(t, ctx, tx, l2.ID, "a3", types.ActivityTypeQuiz, 50)

	repo := NewActivityProgressRepo(db, testutil.Logger(t))
	for _, row := range []*types.ActivityProgress{
		{UserID: u.ID, ActivityID: a1.ID, IsCompleted: true, PointsEarned: 40, Attempts: 1},
		{UserID: u.ID, ActivityID: a2.ID, IsCompleted: false, PointsEarned: 20, Attempts: 1},
		{UserID: u.ID, ActivityID: a3.ID, IsCompleted: true, PointsEarned: 30, Attempts: 2},
	} {
		if err := repo.Create(dbc, row); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	inL1, err := repo.ListCompletedInLevel(dbc, u.ID, l1.ID)
	if err != nil {
		t.Fatalf("ListCompletedInLevel: %v", err)
	}
	if len(inL1) != 1 || inL1[0].ActivityID != a1.ID || inL1[0].PointsEarned != 40 {
		t.Fatalf("ListCompletedInLevel: unexpected %+v", inL1)
	}

	sum, err := repo.SumCompletedPoints(dbc, u.ID)
	if err != nil || sum != 70 {
		t.Fatalf("SumCompletedPoints: want=70 got=%d err=%v", sum, err)
	}

	row, err := repo.LockByUserActivity(dbc, u.ID, a2.ID)
	if err != nil || row == nil {
		t.Fatalf("LockByUserActivity: got %+v err=%v", row, err)
	}
	row.IsCompleted = true
	row.PointsEarned = 45
	row.Attempts = 2
	row.Answers = []byte(`{"v":1,"data":{"q":"a"}}`)
	if err := repo.Save(dbc, row); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := repo.Get(dbc, u.ID, a2.ID)
	if err != nil || got == nil || !got.IsCompleted || got.PointsEarned != 45 || got.Attempts != 2 {
		t.Fatalf("Get after save: got %+v err=%v", got, err)
	}
	sum, _ = repo.SumCompletedPoints(dbc, u.ID)
	if sum != 115 {
		t.Fatalf("SumCompletedPoints after save: want=115 got=%d", sum)
	}
}

func TestUserAchievementRepo_GrantIsIdempotent(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	u := testutil.SeedUser(t, ctx, tx, "user_1")
	ach := testutil.SeedAchievement(t, ctx, tx, "first-steps", types.AchievementFirstSteps, nil)
	repo := NewUserAchievementRepo(db, testutil.Logger(t))

	ok, err := repo.Grant(dbc, u.ID, ach.ID, time.Now().UTC())
	if err != nil || !ok {
		t.Fatalf("Grant: want inserted got ok=%v err=%v", ok, err)
	}
	ok, err = repo.Grant(dbc, u.ID, ach.ID, time.Now().UTC())
	if err != nil || ok {
		t.Fatalf("Grant again: want no insert got ok=%v err=%v", ok, err)
	}
	rows, err := repo.ListByUser(dbc, u.ID)
	if err != nil || len(rows) != 1 {
		t.Fatalf("ListByUser: want 1 got %d err=%v", len(rows), err)
	}
}
