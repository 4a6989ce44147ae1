package services

import (
	"context"
	"errors"
	"net/http"
	"strings"

	domainagg "github.com/yungbote/levelup-backend/internal/domain/aggregates"
	"github.com/yungbote/levelup-backend/internal/observability"
	"github.com/yungbote/levelup-backend/internal/platform/apierr"
	"github.com/yungbote/levelup-backend/internal/platform/ctxutil"
	"github.com/yungbote/levelup-backend/internal/platform/logger"
)

type OnboardingService interface {
	// Provision creates the caller's user record on first sign-in. Repeated calls are no-ops.
	// Token claims win over supplied profile fields.
	Provision(ctx context.Context, supplied domainagg.UserProfile) (domainagg.ProvisionUserResult, error)
}

type onboardingService struct {
	log     *logger.Logger
	agg     domainagg.OnboardingAggregate
	metrics *observability.Metrics
}

func NewOnboardingService(log *logger.Logger, agg domainagg.OnboardingAggregate, metrics *observability.Metrics) OnboardingService {
	return &onboardingService{
		log:     log.With("service", "OnboardingService"),
		agg:     agg,
		metrics: metrics,
	}
}

func (s *onboardingService) Provision(ctx context.Context, supplied domainagg.UserProfile) (domainagg.ProvisionUserResult, error) {
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil || rd.UserID == "" {
		return domainagg.ProvisionUserResult{}, apierr.New(http.StatusUnauthorized, "unauthorized", errors.New("missing user identity"))
	}
	out, err := s.agg.ProvisionUser(ctx, domainagg.ProvisionUserInput{
		UserID: rd.UserID,
		Profile: domainagg.UserProfile{
			Email:     firstNonEmpty(rd.Email, supplied.Email),
			FirstName: firstNonEmpty(rd.FirstName, supplied.FirstName),
			LastName:  firstNonEmpty(rd.LastName, supplied.LastName),
			Username:  firstNonEmpty(rd.Username, supplied.Username),
		},
	})
	if err != nil {
		return out, err
	}
	for _, ach := range out.GrantedAchievements {
		s.metrics.IncAchievementGranted(ach.Type)
	}
	if out.Created {
		s.log.Info("user provisioned", "user_id", rd.UserID)
	}
	return out, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
