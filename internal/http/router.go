package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/levelup-backend/internal/http/handlers"
	httpMW "github.com/yungbote/levelup-backend/internal/http/middleware"
	"github.com/yungbote/levelup-backend/internal/observability"
	"github.com/yungbote/levelup-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log            *logger.Logger
	Metrics        *observability.Metrics
	ServiceName    string
	AllowedOrigins []string

	AuthMiddleware  *httpMW.AuthMiddleware
	ProgressHandler *httpH.ProgressHandler
	ActivityHandler *httpH.ActivityHandler
	UserHandler     *httpH.UserHandler

	HealthHandler *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS(cfg.AllowedOrigins...))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
		r.GET("/readyz", cfg.HealthHandler.Ready)
	}

	api := r.Group("/api")
	protected := api.Group("/")
	{
		// Middleware
		if cfg.AuthMiddleware != nil {
			protected.Use(cfg.AuthMiddleware.RequireAuth())
		}

		// Users
		if cfg.UserHandler != nil {
			protected.POST("/users", cfg.UserHandler.Provision)
			protected.GET("/me/progress", cfg.UserHandler.GetProgress)
			protected.GET("/me/achievements", cfg.UserHandler.ListAchievements)
		}

		// Levels + activities
		if cfg.ActivityHandler != nil {
			protected.GET("/levels", cfg.ActivityHandler.ListLevels)
			protected.GET("/levels/:levelId/activities/:activityId", cfg.ActivityHandler.GetActivity)
		}

		// Progress
		if cfg.ProgressHandler != nil {
			protected.POST("/activities/:activityId/progress", cfg.ProgressHandler.SubmitProgress)
		}
	}

	return r
}
