package aggregates

import (
	"context"
	"strings"

	"github.com/yungbote/levelup-backend/internal/data/repos"
	types "github.com/yungbote/levelup-backend/internal/domain"
	domainagg "github.com/yungbote/levelup-backend/internal/domain/aggregates"
	"github.com/yungbote/levelup-backend/internal/modules/progress"
	"github.com/yungbote/levelup-backend/internal/platform/dbctx"
)

type OnboardingAggregateDeps struct {
	Base BaseDeps

	Users            repos.UserRepo
	Levels           repos.LevelRepo
	Achievements     repos.AchievementRepo
	UserProgress     repos.UserProgressRepo
	UserAchievements repos.UserAchievementRepo
}

type onboardingAggregate struct {
	deps      OnboardingAggregateDeps
	evaluator *progress.Evaluator
}

func NewOnboardingAggregate(deps OnboardingAggregateDeps) domainagg.OnboardingAggregate {
	deps.Base = deps.Base.withDefaults()
	return &onboardingAggregate{
		deps:      deps,
		evaluator: progress.NewEvaluator(achievementStore{defs: deps.Achievements, grants: deps.UserAchievements}),
	}
}

func (a *onboardingAggregate) Contract() domainagg.Contract {
	return domainagg.OnboardingAggregateContract
}

// ProvisionUser creates the user with first-level progress and the FIRST_STEPS grant.
// An existing user is returned as stored.
func (a *onboardingAggregate) ProvisionUser(ctx context.Context, in domainagg.ProvisionUserInput) (domainagg.ProvisionUserResult, error) {
	const op = "Learning.Onboarding.ProvisionUser"
	out := domainagg.ProvisionUserResult{UserID: strings.TrimSpace(in.UserID)}
	if out.UserID == "" {
		return out, domainagg.Validation(op, "user", "missing user_id")
	}
	d := a.deps
	if d.Users == nil || d.Levels == nil || d.Achievements == nil || d.UserProgress == nil || d.UserAchievements == nil {
		return out, domainagg.NewError(domainagg.CodeInternal, op, "onboarding aggregate repos not configured", nil)
	}

	err := executeWrite(ctx, d.Base, op, func(dbc dbctx.Context) error {
		now := d.Base.Now()
		created, err := d.Users.CreateIfAbsent(dbc, newUser(out.UserID, in.Profile))
		if err != nil {
			return err
		}
		user, err := d.Users.LockByID(dbc, out.UserID)
		if err != nil {
			return err
		}
		if user == nil {
			return InvariantError("user missing after provisioning")
		}
		out.Created = created
		out.TotalPoints = user.TotalPoints
		out.CurrentLevel = user.CurrentLevel
		if !created {
			return nil
		}

		first, err := d.Levels.First(dbc)
		if err != nil {
			return err
		}
		if first != nil {
			if _, err := d.UserProgress.Ensure(dbc, user.ID, first.ID); err != nil {
				return err
			}
		}
		ach, err := a.evaluator.Evaluate(dbc, user.ID, progress.FirstSteps{}, now)
		if err != nil {
			return err
		}
		if ach != nil {
			out.GrantedAchievementIDs = append(out.GrantedAchievementIDs, ach.ID)
			out.GrantedAchievements = append(out.GrantedAchievements, grantedView(ach))
		}
		return nil
	})
	if err != nil {
		return domainagg.ProvisionUserResult{UserID: out.UserID}, err
	}
	return out, nil
}

func grantedView(ach *types.Achievement) domainagg.GrantedAchievement {
	return domainagg.GrantedAchievement{ID: ach.ID, Key: ach.Key, Type: string(ach.Type)}
}
