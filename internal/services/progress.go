package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	domainagg "github.com/yungbote/levelup-backend/internal/domain/aggregates"
	"github.com/yungbote/levelup-backend/internal/modules/progress"
	"github.com/yungbote/levelup-backend/internal/observability"
	"github.com/yungbote/levelup-backend/internal/platform/apierr"
	"github.com/yungbote/levelup-backend/internal/platform/ctxutil"
	"github.com/yungbote/levelup-backend/internal/platform/locks"
	"github.com/yungbote/levelup-backend/internal/platform/logger"
)

// SubmitInput is one client-reported attempt at an activity.
type SubmitInput struct {
	ActivityID     uint
	IsCompleted    bool
	ScorePercent   *float64
	ExplicitPoints *int
	Answers        json.RawMessage
}

type ProgressService interface {
	Submit(ctx context.Context, in SubmitInput) (domainagg.SubmitActivityResultResult, error)
}

type ProgressServiceDeps struct {
	Log       *logger.Logger
	Aggregate domainagg.ProgressAggregate
	Locker    locks.Locker
	// LockBackend labels lock wait metrics ("memory" or "redis").
	LockBackend string
	LockWait    time.Duration
	Metrics     *observability.Metrics
}

type progressService struct {
	log      *logger.Logger
	agg      domainagg.ProgressAggregate
	locker   locks.Locker
	backend  string
	lockWait time.Duration
	metrics  *observability.Metrics
}

func NewProgressService(deps ProgressServiceDeps) ProgressService {
	if deps.Locker == nil {
		deps.Locker = locks.NewMemoryLocker()
		deps.LockBackend = "memory"
	}
	if deps.LockWait <= 0 {
		deps.LockWait = 5 * time.Second
	}
	return &progressService{
		log:      deps.Log.With("service", "ProgressService"),
		agg:      deps.Aggregate,
		locker:   deps.Locker,
		backend:  deps.LockBackend,
		lockWait: deps.LockWait,
		metrics:  deps.Metrics,
	}
}

func (s *progressService) Submit(ctx context.Context, in SubmitInput) (domainagg.SubmitActivityResultResult, error) {
	const op = "Learning.Progress.Submit"
	var out domainagg.SubmitActivityResultResult

	rd := ctxutil.GetRequestData(ctx)
	if rd == nil || rd.UserID == "" {
		return out, apierr.New(http.StatusUnauthorized, "unauthorized", errors.New("missing user identity"))
	}

	answers, err := progress.ParseAnswers(in.Answers)
	if err != nil {
		var serr *progress.SerializationError
		if !errors.As(err, &serr) {
			return out, err
		}
		s.log.Warn("answers dropped", "user_id", rd.UserID, "activity_id", in.ActivityID, "error", err)
		s.metrics.IncAnswersDropped()
		answers = nil
	}

	release, err := s.acquire(ctx, rd.UserID, in.ActivityID)
	if err != nil {
		return out, domainagg.NewError(domainagg.CodeRetryable, op, "another submission for this activity is in progress", err)
	}
	defer release()

	out, err = s.agg.SubmitActivityResult(ctx, domainagg.SubmitActivityResultInput{
		UserID:         rd.UserID,
		ActivityID:     in.ActivityID,
		IsCompleted:    in.IsCompleted,
		ScorePercent:   in.ScorePercent,
		ExplicitPoints: in.ExplicitPoints,
		Answers:        answers,
		Profile: domainagg.UserProfile{
			Email:     rd.Email,
			FirstName: rd.FirstName,
			LastName:  rd.LastName,
			Username:  rd.Username,
		},
	})
	if err != nil {
		return out, err
	}
	s.record(out)
	s.log.Info("activity progress recorded",
		"user_id", rd.UserID,
		"activity_id", in.ActivityID,
		"action", out.Action,
		"attempts", out.Attempts,
		"points_awarded", out.PointsAwarded,
		"level_newly_completed", out.LevelNewlyCompleted,
	)
	return out, nil
}

func (s *progressService) acquire(ctx context.Context, userID string, activityID uint) (locks.Release, error) {
	start := time.Now()
	lockCtx, cancel := context.WithTimeout(ctx, s.lockWait)
	defer cancel()
	release, err := s.locker.Acquire(lockCtx, locks.SubmissionKey(userID, activityID))
	outcome := "acquired"
	if err != nil {
		outcome = "timeout"
		if !errors.Is(err, locks.ErrNotAcquired) {
			outcome = "error"
		}
	}
	s.metrics.ObserveLockWait(s.backend, outcome, time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("acquire submission lock: %w", err)
	}
	return release, nil
}

func (s *progressService) record(out domainagg.SubmitActivityResultResult) {
	s.metrics.ObserveSubmission(out.Action, out.IsCompleted, out.PointsAwarded)
	if out.LevelNewlyCompleted {
		s.metrics.IncLevelCompleted(out.LevelOrder)
	}
	for _, ach := range out.GrantedAchievements {
		s.metrics.IncAchievementGranted(ach.Type)
	}
	for _, flag := range out.ScoreFlags {
		s.metrics.IncScoringSuspicious(flag)
	}
}
