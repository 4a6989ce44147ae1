package user

import (
	"context"
	"testing"

	"github.com/yungbote/levelup-backend/internal/data/repos/testutil"
	types "github.com/yungbote/levelup-backend/internal/domain"
	"github.com/yungbote/levelup-backend/internal/platform/dbctx"
)

func TestUserRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	repo := NewUserRepo(db, testutil.Logger(t))
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	created, err := repo.CreateIfAbsent(dbc, &types.User{ID: "user_1", Email: "a@example.com"})
	if err != nil {
		t.Fatalf("CreateIfAbsent: %v", err)
	}
	if !created {
		t.Fatalf("CreateIfAbsent: expected insert")
	}
	created, err = repo.CreateIfAbsent(dbc, &types.User{ID: "user_1", Email: "other@example.com"})
	if err != nil {
		t.Fatalf("CreateIfAbsent again: %v", err)
	}
	if created {
		t.Fatalf("CreateIfAbsent again: expected no insert")
	}

	got, err := repo.LockByID(dbc, "user_1")
	if err != nil {
		t.Fatalf("LockByID: %v", err)
	}
	if got == nil || got.Email != "a@example.com" || got.CurrentLevel != 1 || got.TotalPoints != 0 {
		t.Fatalf("LockByID: unexpected user %+v", got)
	}

	if err := repo.AddTotalPoints(dbc, "user_1", 25); err != nil {
		t.Fatalf("AddTotalPoints: %v", err)
	}
	if err := repo.AddTotalPoints(dbc, "user_1", 15); err != nil {
		t.Fatalf("AddTotalPoints: %v", err)
	}
	if err := repo.UpdateFields(dbc, "user_1", map[string]interface{}{"current_level": 2}); err != nil {
		t.Fatalf("UpdateFields: %v", err)
	}
	got, err = repo.GetByID(dbc, "user_1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.TotalPoints != 40 || got.CurrentLevel != 2 {
		t.Fatalf("GetByID: want points=40 level=2 got %+v", got)
	}

	missing, err := repo.GetByID(dbc, "nobody")
	if err != nil || missing != nil {
		t.Fatalf("GetByID missing: want nil got %+v err=%v", missing, err)
	}
}

func TestUserRepo_ListIDsAfter(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	for _, id := range []string{"c", "a", "b"} {
		testutil.SeedUser(t, ctx, tx, id)
	}
	repo := NewUserRepo(db, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	page, err := repo.ListIDsAfter(dbc, "", 2)
	if err != nil {
		t.Fatalf("ListIDsAfter: %v", err)
	}
	if len(page) != 2 || page[0] != "a" || page[1] != "b" {
		t.Fatalf("page 1: got %v", page)
	}
	page, err = repo.ListIDsAfter(dbc, "b", 2)
	if err != nil {
		t.Fatalf("ListIDsAfter: %v", err)
	}
	if len(page) != 1 || page[0] != "c" {
		t.Fatalf("page 2: got %v", page)
	}
}
