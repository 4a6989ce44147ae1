package aggregates

import (
	"context"
	"strings"

	types "github.com/yungbote/levelup-backend/internal/domain"
	domainagg "github.com/yungbote/levelup-backend/internal/domain/aggregates"
	"github.com/yungbote/levelup-backend/internal/modules/progress"
	"github.com/yungbote/levelup-backend/internal/platform/dbctx"
)

// RecomputeUser rebuilds a user's level rollups, total points and current level from activity progress.
// With DryRun set the drift is reported and nothing is written.
func (a *progressAggregate) RecomputeUser(ctx context.Context, in domainagg.RecomputeUserInput) (domainagg.RecomputeUserResult, error) {
	const op = "Learning.Progress.RecomputeUser"
	out := domainagg.RecomputeUserResult{UserID: strings.TrimSpace(in.UserID)}
	if out.UserID == "" {
		return out, domainagg.Validation(op, "user", "missing user_id")
	}
	if !a.configured() {
		return out, domainagg.NewError(domainagg.CodeInternal, op, "progress aggregate repos not configured", nil)
	}

	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		now := a.deps.Base.Now()
		user, err := a.deps.Users.LockByID(dbc, out.UserID)
		if err != nil {
			return err
		}
		if user == nil {
			return domainagg.NotFound(op, "user", out.UserID)
		}
		out.TotalPointsBefore = user.TotalPoints
		out.CurrentLevelBefore = user.CurrentLevel

		levels, err := a.deps.Levels.ListOrdered(dbc)
		if err != nil {
			return err
		}
		ordered := make([]types.Level, 0, len(levels))
		completedLevels := map[uint]bool{}
		for _, lvl := range levels {
			if lvl == nil {
				continue
			}
			ordered = append(ordered, *lvl)

			row, err := a.deps.UserProgress.Get(dbc, user.ID, lvl.ID)
			if err != nil {
				return err
			}
			completed, err := a.deps.ActivityProgress.ListCompletedInLevel(dbc, user.ID, lvl.ID)
			if err != nil {
				return err
			}
			if row == nil && len(completed) == 0 {
				continue
			}
			out.LevelsRecomputed++

			rollup := progress.AggregateLevel(*lvl, row, completed, now)
			completedLevels[lvl.ID] = rollup.IsCompleted
			if !rollup.Changed(row) {
				continue
			}
			out.LevelsChanged++
			if in.DryRun {
				continue
			}
			if row == nil {
				if row, err = a.deps.UserProgress.Ensure(dbc, user.ID, lvl.ID); err != nil {
					return err
				}
				if row == nil {
					return InvariantError("user progress missing after ensure")
				}
			}
			if err := a.deps.UserProgress.UpdateFields(dbc, row.ID, map[string]interface{}{
				"points_earned":        rollup.PointsEarned,
				"activities_completed": rollup.ActivitiesCompleted,
				"is_completed":         rollup.IsCompleted,
				"completed_at":         rollup.CompletedAt,
			}); err != nil {
				return err
			}
		}

		total, err := a.deps.ActivityProgress.SumCompletedPoints(dbc, user.ID)
		if err != nil {
			return err
		}
		out.TotalPointsAfter = total
		out.CurrentLevelAfter = progress.CurrentLevelFromCompletion(ordered, completedLevels, user.CurrentLevel)
		out.Drifted = out.LevelsChanged > 0 ||
			out.TotalPointsAfter != out.TotalPointsBefore ||
			out.CurrentLevelAfter != out.CurrentLevelBefore

		if in.DryRun || (out.TotalPointsAfter == out.TotalPointsBefore && out.CurrentLevelAfter == out.CurrentLevelBefore) {
			return nil
		}
		return a.deps.Users.UpdateFields(dbc, user.ID, map[string]interface{}{
			"total_points":  out.TotalPointsAfter,
			"current_level": out.CurrentLevelAfter,
		})
	})
	if err != nil {
		return domainagg.RecomputeUserResult{UserID: out.UserID}, err
	}
	return out, nil
}
