package app

import (
	"time"

	"gorm.io/gorm"

	"github.com/yungbote/levelup-backend/internal/data/aggregates"
	"github.com/yungbote/levelup-backend/internal/data/repos"
	domainagg "github.com/yungbote/levelup-backend/internal/domain/aggregates"
	"github.com/yungbote/levelup-backend/internal/modules/progress"
	"github.com/yungbote/levelup-backend/internal/observability"
	"github.com/yungbote/levelup-backend/internal/platform/logger"
	"github.com/yungbote/levelup-backend/internal/services"
)

type Services struct {
	ProgressAggregate   domainagg.ProgressAggregate
	OnboardingAggregate domainagg.OnboardingAggregate

	Progress   services.ProgressService
	Onboarding services.OnboardingService
	Overview   services.OverviewService
	Auditor    services.ProgressAuditor
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, reposet repos.Set, clients Clients, metrics *observability.Metrics) Services {
	log.Info("Wiring services...")
	base := aggregates.BaseDeps{
		DB:     db,
		Log:    log,
		Runner: aggregates.NewRetryingTxRunner(aggregates.NewGormTxRunner(db), 3, 25*time.Millisecond),
		Hooks:  aggregates.NewObservabilityHooks(metrics),
	}
	progressAgg := aggregates.NewProgressAggregate(aggregates.ProgressAggregateDeps{
		Base:             base,
		Users:            reposet.Users,
		Levels:           reposet.Levels,
		Activities:       reposet.Activities,
		Achievements:     reposet.Achievements,
		UserProgress:     reposet.UserProgress,
		ActivityProgress: reposet.ActivityProgress,
		UserAchievements: reposet.UserAchievements,
		Scoring:          progress.Policy{TrustExplicitPoints: cfg.TrustExplicitPoints},
	})
	onboardingAgg := aggregates.NewOnboardingAggregate(aggregates.OnboardingAggregateDeps{
		Base:             base,
		Users:            reposet.Users,
		Levels:           reposet.Levels,
		Achievements:     reposet.Achievements,
		UserProgress:     reposet.UserProgress,
		UserAchievements: reposet.UserAchievements,
	})

	return Services{
		ProgressAggregate:   progressAgg,
		OnboardingAggregate: onboardingAgg,
		Progress: services.NewProgressService(services.ProgressServiceDeps{
			Log:         log,
			Aggregate:   progressAgg,
			Locker:      clients.Locker,
			LockBackend: clients.LockBackend,
			LockWait:    cfg.LockWait,
			Metrics:     metrics,
		}),
		Onboarding: services.NewOnboardingService(log, onboardingAgg, metrics),
		Overview:   services.NewOverviewService(log, reposet),
		Auditor:    services.NewProgressAuditor(log, reposet.Users, progressAgg, metrics),
	}
}
