package testutil

import (
	"context"
	"testing"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	types "github.com/yungbote/levelup-backend/internal/domain"
)

func SeedUser(tb testing.TB, ctx context.Context, tx *gorm.DB, id string) *types.User {
	tb.Helper()
	now := time.Now().UTC()
	u := &types.User{
		ID:           id,
		Email:        id + "@example.com",
		FirstName:    "A",
		LastName:     "B",
		CurrentLevel: types.FirstLevelOrder,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := tx.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

func SeedLevel(tb testing.TB, ctx context.Context, tx *gorm.DB, order, minPoints int) *types.Level {
	tb.Helper()
	now := time.Now().UTC()
	l := &types.Level{
		Order:           order,
		Title:           "level",
		MinPointsToPass: minPoints,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := tx.WithContext(ctx).Create(l).Error; err != nil {
		tb.Fatalf("seed level: %v", err)
	}
	return l
}

func SeedActivity(tb testing.TB, ctx context.Context, tx *gorm.DB, levelID uint, slug string, typ types.ActivityType, points int) *types.Activity {
	tb.Helper()
	now := time.Now().UTC()
	a := &types.Activity{
		Slug:      slug,
		LevelID:   levelID,
		Type:      typ,
		Name:      slug,
		Points:    points,
		Content:   datatypes.JSON([]byte("{}")),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := tx.WithContext(ctx).Create(a).Error; err != nil {
		tb.Fatalf("seed activity: %v", err)
	}
	return a
}

func SeedAchievement(tb testing.TB, ctx context.Context, tx *gorm.DB, key string, typ types.AchievementType, levelID *uint) *types.Achievement {
	tb.Helper()
	now := time.Now().UTC()
	a := &types.Achievement{
		Key:       key,
		Name:      key,
		Type:      typ,
		LevelID:   levelID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := tx.WithContext(ctx).Create(a).Error; err != nil {
		tb.Fatalf("seed achievement: %v", err)
	}
	return a
}
