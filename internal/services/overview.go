package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/yungbote/levelup-backend/internal/data/repos"
	types "github.com/yungbote/levelup-backend/internal/domain"
	"github.com/yungbote/levelup-backend/internal/modules/progress"
	"github.com/yungbote/levelup-backend/internal/platform/apierr"
	"github.com/yungbote/levelup-backend/internal/platform/ctxutil"
	"github.com/yungbote/levelup-backend/internal/platform/dbctx"
	"github.com/yungbote/levelup-backend/internal/platform/logger"
)

type LevelView struct {
	Level      *types.Level        `json:"level"`
	Unlocked   bool                `json:"unlocked"`
	Progress   *types.UserProgress `json:"progress,omitempty"`
	Activities []ActivitySummary   `json:"activities"`
}

type ActivitySummary struct {
	ID           uint               `json:"id"`
	Slug         string             `json:"slug"`
	Type         types.ActivityType `json:"type"`
	Name         string             `json:"name"`
	Points       int                `json:"points"`
	IsCompleted  bool               `json:"is_completed"`
	PointsEarned int                `json:"points_earned"`
}

type ActivityView struct {
	Activity *types.Activity         `json:"activity"`
	Renderer string                  `json:"renderer"`
	Content  progress.Content        `json:"content"`
	Progress *types.ActivityProgress `json:"progress,omitempty"`
	Answers  json.RawMessage         `json:"answers,omitempty"`
}

type AchievementView struct {
	Achievement *types.Achievement `json:"achievement"`
	EarnedAt    time.Time          `json:"earned_at"`
}

type Overview struct {
	UserID       string            `json:"user_id"`
	TotalPoints  int               `json:"total_points"`
	CurrentLevel int               `json:"current_level"`
	Levels       []LevelView       `json:"levels"`
	Achievements []AchievementView `json:"achievements"`
}

// OverviewService serves the caller's read models. A caller without a user row sees level 1 and no progress.
type OverviewService interface {
	ListLevels(ctx context.Context) ([]LevelView, error)
	GetActivity(ctx context.Context, levelID, activityID uint) (*ActivityView, error)
	ListAchievements(ctx context.Context) ([]AchievementView, error)
	Overview(ctx context.Context) (*Overview, error)
}

type overviewService struct {
	log   *logger.Logger
	repos repos.Set
}

func NewOverviewService(log *logger.Logger, set repos.Set) OverviewService {
	return &overviewService{log: log.With("service", "OverviewService"), repos: set}
}

func callerID(ctx context.Context) (string, error) {
	userID := ctxutil.UserID(ctx)
	if userID == "" {
		return "", apierr.New(http.StatusUnauthorized, "unauthorized", errors.New("missing user identity"))
	}
	return userID, nil
}

func (s *overviewService) ListLevels(ctx context.Context) ([]LevelView, error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	var user *types.User
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		u, err := s.repos.Users.GetByID(dbctx.Context{Ctx: gctx}, userID)
		user = u
		return err
	})
	var levels []LevelView
	g.Go(func() error {
		lv, err := s.levelViews(gctx, userID)
		levels = lv
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("list levels: %w", err)
	}
	markUnlocked(levels, currentLevelOf(user))
	return levels, nil
}

func (s *overviewService) levelViews(ctx context.Context, userID string) ([]LevelView, error) {
	dbc := dbctx.Context{Ctx: ctx}
	levels, err := s.repos.Levels.ListOrdered(dbc)
	if err != nil {
		return nil, err
	}
	levelIDs := make([]uint, 0, len(levels))
	for _, lvl := range levels {
		levelIDs = append(levelIDs, lvl.ID)
	}

	var (
		activities []*types.Activity
		levelRows  []*types.UserProgress
		actRows    []*types.ActivityProgress
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		activities, err = s.repos.Activities.ListByLevels(dbctx.Context{Ctx: gctx}, levelIDs)
		return err
	})
	g.Go(func() error {
		var err error
		levelRows, err = s.repos.UserProgress.ListByUser(dbctx.Context{Ctx: gctx}, userID)
		return err
	})
	g.Go(func() error {
		var err error
		actRows, err = s.repos.ActivityProgress.ListByUser(dbctx.Context{Ctx: gctx}, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	rowByLevel := make(map[uint]*types.UserProgress, len(levelRows))
	for _, row := range levelRows {
		rowByLevel[row.LevelID] = row
	}
	rowByActivity := make(map[uint]*types.ActivityProgress, len(actRows))
	for _, row := range actRows {
		rowByActivity[row.ActivityID] = row
	}
	byLevel := map[uint][]ActivitySummary{}
	for _, act := range activities {
		sum := ActivitySummary{ID: act.ID, Slug: act.Slug, Type: act.Kind(), Name: act.Name, Points: act.Points}
		if row := rowByActivity[act.ID]; row != nil {
			sum.IsCompleted = row.IsCompleted
			sum.PointsEarned = row.PointsEarned
		}
		byLevel[act.LevelID] = append(byLevel[act.LevelID], sum)
	}

	out := make([]LevelView, 0, len(levels))
	for _, lvl := range levels {
		acts := byLevel[lvl.ID]
		if acts == nil {
			acts = []ActivitySummary{}
		}
		out = append(out, LevelView{Level: lvl, Progress: rowByLevel[lvl.ID], Activities: acts})
	}
	return out, nil
}

func currentLevelOf(u *types.User) int {
	if u == nil || u.CurrentLevel < types.FirstLevelOrder {
		return types.FirstLevelOrder
	}
	return u.CurrentLevel
}

func markUnlocked(levels []LevelView, currentLevel int) {
	for i := range levels {
		levels[i].Unlocked = levels[i].Level.Order <= currentLevel
	}
}

func (s *overviewService) GetActivity(ctx context.Context, levelID, activityID uint) (*ActivityView, error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	dbc := dbctx.Context{Ctx: ctx}
	act, err := s.repos.Activities.GetByID(dbc, activityID)
	if err != nil {
		return nil, fmt.Errorf("load activity: %w", err)
	}
	if act == nil || act.LevelID != levelID {
		return nil, apierr.NotFound("activity_not_found", fmt.Errorf("activity %d not found in level %d", activityID, levelID))
	}
	content, err := progress.DecodeContent(act.Type, act.Content)
	if err != nil {
		s.log.Warn("activity content undecodable", "activity_id", act.ID, "error", err)
		content = progress.UnimplementedContent{Type: act.Type, Raw: json.RawMessage(act.Content)}
	}
	row, err := s.repos.ActivityProgress.Get(dbc, userID, act.ID)
	if err != nil {
		return nil, fmt.Errorf("load activity progress: %w", err)
	}
	view := &ActivityView{
		Activity: act,
		Renderer: act.Kind().Renderer(),
		Content:  content,
		Progress: row,
	}
	if row != nil {
		view.Answers = progress.AnswersData(row.Answers)
	}
	return view, nil
}

func (s *overviewService) ListAchievements(ctx context.Context) ([]AchievementView, error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	return s.achievementViews(ctx, userID)
}

func (s *overviewService) achievementViews(ctx context.Context, userID string) ([]AchievementView, error) {
	dbc := dbctx.Context{Ctx: ctx}
	grants, err := s.repos.UserAchievements.ListByUser(dbc, userID)
	if err != nil {
		return nil, fmt.Errorf("list user achievements: %w", err)
	}
	if len(grants) == 0 {
		return []AchievementView{}, nil
	}
	ids := make([]uint, 0, len(grants))
	for _, g := range grants {
		ids = append(ids, g.AchievementID)
	}
	defs, err := s.repos.Achievements.GetByIDs(dbc, ids)
	if err != nil {
		return nil, fmt.Errorf("load achievements: %w", err)
	}
	byID := make(map[uint]*types.Achievement, len(defs))
	for _, d := range defs {
		byID[d.ID] = d
	}
	out := make([]AchievementView, 0, len(grants))
	for _, g := range grants {
		def := byID[g.AchievementID]
		if def == nil {
			continue
		}
		out = append(out, AchievementView{Achievement: def, EarnedAt: g.EarnedAt})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].EarnedAt.Before(out[j].EarnedAt) })
	return out, nil
}

func (s *overviewService) Overview(ctx context.Context) (*Overview, error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	var (
		user         *types.User
		levels       []LevelView
		achievements []AchievementView
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		user, err = s.repos.Users.GetByID(dbctx.Context{Ctx: gctx}, userID)
		return err
	})
	g.Go(func() error {
		var err error
		levels, err = s.levelViews(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		achievements, err = s.achievementViews(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load overview: %w", err)
	}

	out := &Overview{
		UserID:       userID,
		CurrentLevel: currentLevelOf(user),
		Levels:       levels,
		Achievements: achievements,
	}
	if user != nil {
		out.TotalPoints = user.TotalPoints
	}
	markUnlocked(out.Levels, out.CurrentLevel)
	return out, nil
}
