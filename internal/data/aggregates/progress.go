package aggregates

import (
	"context"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/yungbote/levelup-backend/internal/data/repos"
	types "github.com/yungbote/levelup-backend/internal/domain"
	domainagg "github.com/yungbote/levelup-backend/internal/domain/aggregates"
	"github.com/yungbote/levelup-backend/internal/modules/progress"
	"github.com/yungbote/levelup-backend/internal/observability"
	"github.com/yungbote/levelup-backend/internal/platform/dbctx"
)

type ProgressAggregateDeps struct {
	Base BaseDeps

	Users            repos.UserRepo
	Levels           repos.LevelRepo
	Activities       repos.ActivityRepo
	Achievements     repos.AchievementRepo
	UserProgress     repos.UserProgressRepo
	ActivityProgress repos.ActivityProgressRepo
	UserAchievements repos.UserAchievementRepo

	Scoring progress.Policy
}

type progressAggregate struct {
	deps      ProgressAggregateDeps
	evaluator *progress.Evaluator
}

func NewProgressAggregate(deps ProgressAggregateDeps) domainagg.ProgressAggregate {
	deps.Base = deps.Base.withDefaults()
	return &progressAggregate{
		deps:      deps,
		evaluator: progress.NewEvaluator(achievementStore{defs: deps.Achievements, grants: deps.UserAchievements}),
	}
}

func (a *progressAggregate) Contract() domainagg.Contract {
	return domainagg.ProgressAggregateContract
}

func (a *progressAggregate) configured() bool {
	d := a.deps
	return d.Users != nil && d.Levels != nil && d.Activities != nil && d.Achievements != nil &&
		d.UserProgress != nil && d.ActivityProgress != nil && d.UserAchievements != nil
}

// submission carries one SubmitActivityResult call through its steps.
type submission struct {
	in  domainagg.SubmitActivityResultInput
	now time.Time

	activity *types.Activity
	level    *types.Level
	scored   progress.Scored

	user        *types.User
	userCreated bool
	levelRow    *types.UserProgress
	decision    progress.Decision
	rollup      *progress.LevelRollup
	advancedTo  int
	totalPoints int
	granted     []*types.Achievement
}

type submitStep struct {
	name string
	run  func(dbc dbctx.Context, s *submission) error
}

func (a *progressAggregate) submitSteps() []submitStep {
	return []submitStep{
		{"resolve_activity", a.resolveActivity},
		{"compute_points", a.computePoints},
		{"ensure_user", a.ensureUser},
		{"reconcile_activity_progress", a.reconcileActivityProgress},
		{"credit_total_points", a.creditTotalPoints},
		{"rollup_level", a.rollupLevel},
		{"advance_current_level", a.advanceCurrentLevel},
		{"grant_level_achievement", a.grantLevelAchievement},
		{"grant_perfect_quiz", a.grantPerfectQuiz},
	}
}

func (a *progressAggregate) SubmitActivityResult(ctx context.Context, in domainagg.SubmitActivityResultInput) (domainagg.SubmitActivityResultResult, error) {
	const op = opSubmitActivityResult
	var out domainagg.SubmitActivityResultResult
	in.UserID = strings.TrimSpace(in.UserID)
	if in.UserID == "" {
		return out, domainagg.Validation(op, "user", "missing user_id")
	}
	if in.ActivityID == 0 {
		return out, domainagg.Validation(op, "activity", "missing activity_id")
	}
	if in.ScorePercent != nil && !progress.ValidPercent(*in.ScorePercent) {
		return out, domainagg.Validation(op, "score", "scorePercent must be between 0 and 100")
	}
	if in.ExplicitPoints != nil && *in.ExplicitPoints < 0 {
		return out, domainagg.Validation(op, "score", "explicitPoints must be >= 0")
	}
	if !a.configured() {
		return out, domainagg.NewError(domainagg.CodeInternal, op, "progress aggregate repos not configured", nil)
	}

	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		s := &submission{in: in, now: a.deps.Base.Now()}
		for _, step := range a.submitSteps() {
			stepCtx, span := observability.StartSpan(dbc.Ctx, "progress."+step.name,
				attribute.Int("activity.id", int(in.ActivityID)),
			)
			started := time.Now()
			err := step.run(dbctx.Context{Ctx: stepCtx, Tx: dbc.Tx}, s)
			span.End(err)
			a.deps.Base.Hooks.ObserveStep(op, step.name, aggregateErrorStatus(err), time.Since(started))
			if err != nil {
				return err
			}
		}
		out = s.result()
		return nil
	})
	if err != nil {
		return domainagg.SubmitActivityResultResult{}, err
	}
	return out, nil
}

func (s *submission) result() domainagg.SubmitActivityResultResult {
	out := domainagg.SubmitActivityResultResult{
		IsCompleted:      s.in.IsCompleted,
		PointsEarned:     s.scored.Points,
		Action:           string(s.decision.Action),
		Attempts:         s.decision.Record.Attempts,
		BestPointsEarned: s.decision.Record.PointsEarned,
		PointsAwarded:    s.awarded(),
		TotalPoints:      s.totalPoints,
		CurrentLevel:     s.user.CurrentLevel,
		LevelID:          s.level.ID,
		LevelOrder:       s.level.Order,
		LevelCompleted:   s.levelRow.IsCompleted,
	}
	if s.advancedTo > 0 {
		out.CurrentLevel = s.advancedTo
	}
	if s.rollup != nil {
		out.LevelCompleted = s.rollup.IsCompleted
		out.LevelNewlyCompleted = s.rollup.NewlyCompleted
	}
	for _, ach := range s.granted {
		out.GrantedAchievementIDs = append(out.GrantedAchievementIDs, ach.ID)
		out.GrantedAchievements = append(out.GrantedAchievements, grantedView(ach))
	}
	if s.scored.ExplicitIgnored {
		out.ScoreFlags = append(out.ScoreFlags, "explicit_ignored")
	}
	if s.scored.ExplicitMismatch {
		out.ScoreFlags = append(out.ScoreFlags, "explicit_mismatch")
	}
	if s.scored.ExceedsMax {
		out.ScoreFlags = append(out.ScoreFlags, "exceeds_max")
	}
	return out
}

func (s *submission) awarded() int {
	if !s.in.IsCompleted {
		return 0
	}
	return s.decision.PointsAwarded()
}

// achievementStore joins achievement definitions and grants for the evaluator.
type achievementStore struct {
	defs   repos.AchievementRepo
	grants repos.UserAchievementRepo
}

func (s achievementStore) FindLevelCompletion(dbc dbctx.Context, levelID uint) (*types.Achievement, error) {
	return s.defs.FindLevelCompletion(dbc, levelID)
}

func (s achievementStore) FirstOfType(dbc dbctx.Context, typ types.AchievementType) (*types.Achievement, error) {
	return s.defs.FirstOfType(dbc, typ)
}

func (s achievementStore) Grant(dbc dbctx.Context, userID string, achievementID uint, at time.Time) (bool, error) {
	return s.grants.Grant(dbc, userID, achievementID, at)
}
