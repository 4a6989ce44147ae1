package app

import (
	"context"
	"fmt"
	"os"

	"gorm.io/gorm"

	"github.com/yungbote/levelup-backend/internal/data/catalog"
	"github.com/yungbote/levelup-backend/internal/data/db"
	"github.com/yungbote/levelup-backend/internal/data/repos"
	"github.com/yungbote/levelup-backend/internal/http"
	"github.com/yungbote/levelup-backend/internal/observability"
	"github.com/yungbote/levelup-backend/internal/platform/logger"
)

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Server   *http.Server
	Cfg      Config
	Repos    repos.Set
	Services Services
	Clients  Clients
	Metrics  *observability.Metrics

	dbService    *db.Service
	otelShutdown func(context.Context) error
	cancel       context.CancelFunc
}

// Options trims New for one-shot commands that need the data layer but not the HTTP surface.
type Options struct {
	WithoutHTTP bool
}

func New() (*App, error) { return NewWithOptions(Options{}) }

func NewWithOptions(opts Options) (*App, error) {
	LoadDotEnv()
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	log.Info("Loading environment variables...")
	cfg := LoadConfig(log)

	dbs, err := db.NewService(cfg.DB, log)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init database: %w", err)
	}
	theDB := dbs.DB()
	if err := db.AutoMigrateAll(theDB); err != nil {
		log.Sync()
		return nil, fmt.Errorf("automigrate: %w", err)
	}
	if err := db.EnsureProgressIndexes(theDB); err != nil {
		log.Sync()
		return nil, fmt.Errorf("progress indexes: %w", err)
	}

	metrics := observability.Init(log)
	otelShutdown := observability.InitOTel(context.Background(), log, cfg.Otel)

	reposet := wireRepos(theDB, log)

	var clients Clients
	if opts.WithoutHTTP {
		clients, err = wireWorkerClients(log, cfg)
	} else {
		clients, err = wireClients(log, cfg)
	}
	if err != nil {
		_ = dbs.Close()
		log.Sync()
		return nil, err
	}

	serviceset := wireServices(theDB, log, cfg, reposet, clients, metrics)

	a := &App{
		Log:          log,
		DB:           theDB,
		Cfg:          cfg,
		Repos:        reposet,
		Services:     serviceset,
		Clients:      clients,
		Metrics:      metrics,
		dbService:    dbs,
		otelShutdown: otelShutdown,
	}
	if !opts.WithoutHTTP {
		handlerset := wireHandlers(log, theDB, serviceset)
		middleware := wireMiddleware(log, clients)
		a.Server = wireServer(log, cfg, metrics, handlerset, middleware)
	}
	return a, nil
}

// SeedCatalog upserts the catalog named by CATALOG_YAML, or the embedded one.
func (a *App) SeedCatalog(ctx context.Context) (catalog.SeedResult, error) {
	c, err := catalog.Load(a.Cfg.CatalogPath)
	if err != nil {
		return catalog.SeedResult{}, fmt.Errorf("load catalog: %w", err)
	}
	return catalog.Seed(ctx, a.DB, a.Repos, a.Log, c)
}

func (a *App) Start() error {
	if a == nil || a.cancel != nil {
		return nil
	}
	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel

	if a.Cfg.CatalogSeed {
		if _, err := a.SeedCatalog(ctx); err != nil {
			return fmt.Errorf("seed catalog: %w", err)
		}
	}

	a.Metrics.StartServer(ctx, a.Log, a.Cfg.MetricsAddr)
	a.Metrics.StartDBCollector(ctx, a.Log, a.DB)
	if a.Clients.Redis != nil {
		a.Metrics.StartRedisCollector(ctx, a.Log, a.Clients.Redis)
	}

	// Scheduled drift audit
	if a.Cfg.ProgressAuditCron != "" && a.Services.Auditor != nil {
		if err := a.Services.Auditor.Start(ctx, a.Cfg.ProgressAuditCron); err != nil {
			return err
		}
	}
	return nil
}

func (a *App) Run(ctx context.Context, addr string) error {
	if a == nil || a.Server == nil {
		return fmt.Errorf("app not initialized")
	}
	return a.Server.Run(ctx, addr)
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	if a.otelShutdown != nil {
		_ = a.otelShutdown(context.Background())
	}
	a.Clients.Close()
	if a.dbService != nil {
		_ = a.dbService.Close()
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
