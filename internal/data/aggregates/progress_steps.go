package aggregates

import (
	types "github.com/yungbote/levelup-backend/internal/domain"
	domainagg "github.com/yungbote/levelup-backend/internal/domain/aggregates"
	"github.com/yungbote/levelup-backend/internal/modules/progress"
	"github.com/yungbote/levelup-backend/internal/platform/dbctx"
)

const opSubmitActivityResult = "Learning.Progress.SubmitActivityResult"

func (a *progressAggregate) resolveActivity(dbc dbctx.Context, s *submission) error {
	activity, err := a.deps.Activities.GetByID(dbc, s.in.ActivityID)
	if err != nil {
		return err
	}
	if activity == nil {
		return domainagg.NotFound(opSubmitActivityResult, "activity", s.in.ActivityID)
	}
	level, err := a.deps.Levels.GetByID(dbc, activity.LevelID)
	if err != nil {
		return err
	}
	if level == nil {
		return domainagg.NotFound(opSubmitActivityResult, "level", activity.LevelID)
	}
	s.activity = activity
	s.level = level
	return nil
}

func (a *progressAggregate) computePoints(_ dbctx.Context, s *submission) error {
	s.scored = a.deps.Scoring.Score(s.activity.Points, s.in.ExplicitPoints, s.in.ScorePercent)
	if s.scored.Suspicious() && a.deps.Base.Log != nil {
		a.deps.Base.Log.Warn("scoring.explicit_points_untrusted",
			"user_id", s.in.UserID,
			"activity_id", s.activity.ID,
			"max_points", s.activity.Points,
			"derived", s.scored.Derived,
			"points", s.scored.Points,
			"ignored", s.scored.ExplicitIgnored,
			"mismatch", s.scored.ExplicitMismatch,
			"exceeds_max", s.scored.ExceedsMax,
		)
	}
	return nil
}

// ensureUser provisions the user on first contact and locks the row for the rest of the transaction.
func (a *progressAggregate) ensureUser(dbc dbctx.Context, s *submission) error {
	user, err := a.deps.Users.LockByID(dbc, s.in.UserID)
	if err != nil {
		return err
	}
	if user == nil {
		created, err := a.deps.Users.CreateIfAbsent(dbc, newUser(s.in.UserID, s.in.Profile))
		if err != nil {
			return err
		}
		if created {
			s.userCreated = true
			ach, err := a.evaluator.Evaluate(dbc, s.in.UserID, progress.FirstSteps{}, s.now)
			if err != nil {
				return err
			}
			if ach != nil {
				s.granted = append(s.granted, ach)
			}
		}
		if user, err = a.deps.Users.LockByID(dbc, s.in.UserID); err != nil {
			return err
		}
		if user == nil {
			return InvariantError("user missing after provisioning")
		}
	}
	s.user = user

	row, err := a.deps.UserProgress.Ensure(dbc, user.ID, s.level.ID)
	if err != nil {
		return err
	}
	if row == nil {
		return InvariantError("user progress missing after ensure")
	}
	s.levelRow = row
	return nil
}

func (a *progressAggregate) reconcileActivityProgress(dbc dbctx.Context, s *submission) error {
	existing, err := a.deps.ActivityProgress.LockByUserActivity(dbc, s.user.ID, s.activity.ID)
	if err != nil {
		return err
	}
	s.decision = progress.Reconcile(existing, progress.Submission{
		IsCompleted: s.in.IsCompleted,
		Points:      s.scored.Points,
		Answers:     s.in.Answers,
	}, s.now)

	rec := s.decision.Record
	rec.ProgressID = s.levelRow.ID
	if s.decision.Action == progress.ActionCreate {
		rec.UserID = s.user.ID
		rec.ActivityID = s.activity.ID
		return a.deps.ActivityProgress.Create(dbc, rec)
	}
	return a.deps.ActivityProgress.Save(dbc, rec)
}

func (a *progressAggregate) creditTotalPoints(dbc dbctx.Context, s *submission) error {
	awarded := s.awarded()
	s.totalPoints = s.user.TotalPoints + awarded
	if awarded == 0 {
		return nil
	}
	return a.deps.Users.AddTotalPoints(dbc, s.user.ID, awarded)
}

func (a *progressAggregate) rollupLevel(dbc dbctx.Context, s *submission) error {
	if !s.in.IsCompleted {
		return nil
	}
	completed, err := a.deps.ActivityProgress.ListCompletedInLevel(dbc, s.user.ID, s.level.ID)
	if err != nil {
		return err
	}
	rollup := progress.AggregateLevel(*s.level, s.levelRow, completed, s.now)
	s.rollup = &rollup
	if !rollup.Changed(s.levelRow) {
		return nil
	}
	if err := a.deps.UserProgress.UpdateFields(dbc, s.levelRow.ID, map[string]interface{}{
		"points_earned":        rollup.PointsEarned,
		"activities_completed": rollup.ActivitiesCompleted,
		"is_completed":         rollup.IsCompleted,
		"completed_at":         rollup.CompletedAt,
	}); err != nil {
		return err
	}
	rollup.Apply(s.levelRow)
	return nil
}

func (a *progressAggregate) advanceCurrentLevel(dbc dbctx.Context, s *submission) error {
	if s.rollup == nil || !s.rollup.NewlyCompleted || s.user.CurrentLevel != s.level.Order {
		return nil
	}
	ok, err := a.deps.Base.CASGuard.AdvanceCounter(dbc, "users", s.user.ID, "current_level", s.level.Order, map[string]any{
		"updated_at": s.now,
	})
	if err != nil {
		return err
	}
	if !ok {
		// current_level changed after the row was read; it stays where it is.
		if a.deps.Base.Log != nil {
			a.deps.Base.Log.Warn("progress.advance_current_level skipped",
				"user_id", s.user.ID,
				"level_order", s.level.Order,
			)
		}
		return nil
	}
	s.advancedTo = s.level.Order + 1
	return nil
}

func (a *progressAggregate) grantLevelAchievement(dbc dbctx.Context, s *submission) error {
	if s.rollup == nil || !s.rollup.NewlyCompleted {
		return nil
	}
	return a.grant(dbc, s, progress.LevelCompleted{LevelID: s.level.ID})
}

func (a *progressAggregate) grantPerfectQuiz(dbc dbctx.Context, s *submission) error {
	if !s.in.IsCompleted {
		return nil
	}
	return a.grant(dbc, s, progress.PerfectScore{
		ActivityID:   s.activity.ID,
		ActivityType: s.activity.Kind(),
		PointsEarned: s.scored.Points,
		MaxPoints:    s.activity.Points,
	})
}

func (a *progressAggregate) grant(dbc dbctx.Context, s *submission, t progress.Trigger) error {
	ach, err := a.evaluator.Evaluate(dbc, s.user.ID, t, s.now)
	if err != nil {
		return err
	}
	if ach != nil {
		s.granted = append(s.granted, ach)
	}
	return nil
}

func newUser(id string, p domainagg.UserProfile) *types.User {
	return &types.User{
		ID:           id,
		Email:        p.Email,
		FirstName:    p.FirstName,
		LastName:     p.LastName,
		Username:     p.Username,
		CurrentLevel: types.FirstLevelOrder,
	}
}
