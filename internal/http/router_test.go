package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/levelup-backend/internal/data/aggregates"
	"github.com/yungbote/levelup-backend/internal/data/repos"
	"github.com/yungbote/levelup-backend/internal/data/repos/testutil"
	types "github.com/yungbote/levelup-backend/internal/domain"
	httpH "github.com/yungbote/levelup-backend/internal/http/handlers"
	httpMW "github.com/yungbote/levelup-backend/internal/http/middleware"
	"github.com/yungbote/levelup-backend/internal/modules/progress"
	"github.com/yungbote/levelup-backend/internal/platform/identity"
	"github.com/yungbote/levelup-backend/internal/services"
)

type tokenTable map[string]string

func (tt tokenTable) Verify(_ context.Context, token string) (*identity.Identity, error) {
	sub, ok := tt[token]
	if !ok {
		return nil, identity.ErrInvalidToken
	}
	return &identity.Identity{Subject: sub, Email: sub + "@example.com"}, nil
}

type routerFixture struct {
	engine *gin.Engine
	quiz   *types.Activity
	level1 *types.Level
	level2 *types.Level
}

func newRouterFixture(t *testing.T) *routerFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := testutil.DB(t)
	log := testutil.Logger(t)
	set := repos.NewSet(db, log)
	base := aggregates.BaseDeps{DB: db, Log: log}

	agg := aggregates.NewProgressAggregate(aggregates.ProgressAggregateDeps{
		Base:             base,
		Users:            set.Users,
		Levels:           set.Levels,
		Activities:       set.Activities,
		Achievements:     set.Achievements,
		UserProgress:     set.UserProgress,
		ActivityProgress: set.ActivityProgress,
		UserAchievements: set.UserAchievements,
		Scoring:          progress.DefaultPolicy(),
	})
	onboard := aggregates.NewOnboardingAggregate(aggregates.OnboardingAggregateDeps{
		Base:             base,
		Users:            set.Users,
		Levels:           set.Levels,
		Achievements:     set.Achievements,
		UserProgress:     set.UserProgress,
		UserAchievements: set.UserAchievements,
	})
	overview := services.NewOverviewService(log, set)

	ctx := context.Background()
	f := &routerFixture{}
	f.level1 = testutil.SeedLevel(t, ctx, db, 1, 40)
	f.level2 = testutil.SeedLevel(t, ctx, db, 2, 40)
	f.quiz = testutil.SeedActivity(t, ctx, db, f.level1.ID, "quiz", types.ActivityTypeQuiz, 40)
	testutil.SeedAchievement(t, ctx, db, "first-steps", types.AchievementFirstSteps, nil)
	testutil.SeedAchievement(t, ctx, db, "perfect-quiz", types.AchievementPerfectQuiz, nil)

	f.engine = NewRouter(RouterConfig{
		Log:             log,
		AuthMiddleware:  httpMW.NewAuthMiddleware(log, tokenTable{"tok-alice": "alice"}),
		ProgressHandler: httpH.NewProgressHandler(log, services.NewProgressService(services.ProgressServiceDeps{Log: log, Aggregate: agg})),
		ActivityHandler: httpH.NewActivityHandler(log, overview),
		UserHandler:     httpH.NewUserHandler(log, services.NewOnboardingService(log, onboard, nil), overview),
		HealthHandler:   httpH.NewHealthHandler(func(ctx context.Context) error { return errors.New("down") }),
	})
	return f
}

func (f *routerFixture) do(t *testing.T, method, path, token, body string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.engine.ServeHTTP(rec, req)
	var out map[string]any
	if rec.Body.Len() > 0 && strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	}
	return rec.Code, out
}

func TestRouter_RequiresToken(t *testing.T) {
	f := newRouterFixture(t)
	code, body := f.do(t, http.MethodGet, "/api/levels", "", "")
	require.Equal(t, http.StatusUnauthorized, code)
	require.Equal(t, "unauthorized", body["error"].(map[string]any)["code"])

	code, _ = f.do(t, http.MethodGet, "/api/levels", "tok-mallory", "")
	require.Equal(t, http.StatusUnauthorized, code)

	code, _ = f.do(t, http.MethodGet, "/healthcheck", "", "")
	require.Equal(t, http.StatusOK, code)
	code, _ = f.do(t, http.MethodGet, "/readyz", "", "")
	require.Equal(t, http.StatusServiceUnavailable, code)
}

func TestRouter_ProvisionSubmitAndRead(t *testing.T) {
	f := newRouterFixture(t)

	code, body := f.do(t, http.MethodPost, "/api/users", "tok-alice", `{"firstName":"Alice"}`)
	require.Equal(t, http.StatusCreated, code)
	require.Equal(t, "alice", body["userId"])
	require.Len(t, body["grantedAchievements"], 1)

	code, body = f.do(t, http.MethodGet, "/api/levels", "tok-alice", "")
	require.Equal(t, http.StatusOK, code)
	levels := body["levels"].([]any)
	require.Len(t, levels, 2)
	require.Equal(t, true, levels[0].(map[string]any)["unlocked"])
	require.Equal(t, false, levels[1].(map[string]any)["unlocked"])

	path := "/api/activities/" + jsonID(f.quiz.ID) + "/progress"
	code, body = f.do(t, http.MethodPost, path, "tok-alice", `{"isCompleted":true,"score":100}`)
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, true, body["success"])
	require.Equal(t, 40.0, body["pointsEarned"])
	require.Equal(t, 2.0, body["currentLevel"])
	require.Equal(t, true, body["levelNewlyCompleted"])

	code, body = f.do(t, http.MethodPost, path, "tok-alice", `{"isCompleted":true,"score":50}`)
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, 20.0, body["pointsEarned"])
	require.Equal(t, 40.0, body["bestPointsEarned"])
	require.Equal(t, 40.0, body["totalPoints"])
	require.Equal(t, 2.0, body["attempts"])

	code, body = f.do(t, http.MethodGet, "/api/me/progress", "tok-alice", "")
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, 40.0, body["total_points"])
	require.Equal(t, 2.0, body["current_level"])
	require.Len(t, body["achievements"], 2)

	code, _ = f.do(t, http.MethodGet, "/api/levels/"+jsonID(f.level2.ID)+"/activities/"+jsonID(f.quiz.ID), "tok-alice", "")
	require.Equal(t, http.StatusNotFound, code)

	code, body = f.do(t, http.MethodPost, "/api/activities/9999/progress", "tok-alice", `{"isCompleted":true}`)
	require.Equal(t, http.StatusNotFound, code)
	require.Equal(t, "activity_not_found", body["error"].(map[string]any)["code"])
}

func jsonID(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
