package app

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/yungbote/levelup-backend/internal/data/db"
	"github.com/yungbote/levelup-backend/internal/observability"
	"github.com/yungbote/levelup-backend/internal/platform/envutil"
	"github.com/yungbote/levelup-backend/internal/platform/identity"
	"github.com/yungbote/levelup-backend/internal/platform/logger"
)

type Config struct {
	Port    string
	LogMode string

	DB db.Config

	RedisAddr         string
	SubmissionLockTTL time.Duration
	LockWait          time.Duration

	Auth identity.Config

	TrustExplicitPoints bool

	CatalogSeed bool
	CatalogPath string

	ProgressAuditCron string

	MetricsAddr string
	Otel        observability.OtelConfig

	AllowedOrigins []string
}

// LoadDotEnv loads .env from the working directory when present. Values already in the environment win.
func LoadDotEnv() {
	_ = godotenv.Load()
}

func LoadConfig(log *logger.Logger) Config {
	cfg := Config{
		Port:    envutil.String("PORT", "8080"),
		LogMode: envutil.String("LOG_MODE", "development"),
		DB: db.Config{
			Driver:           envutil.String("DB_DRIVER", db.DriverPostgres),
			PostgresHost:     envutil.String("POSTGRES_HOST", "localhost"),
			PostgresPort:     envutil.String("POSTGRES_PORT", "5432"),
			PostgresUser:     envutil.String("POSTGRES_USER", "postgres"),
			PostgresPassword: envutil.String("POSTGRES_PASSWORD", ""),
			PostgresName:     envutil.String("POSTGRES_NAME", "levelup"),
			PostgresSSLMode:  envutil.String("POSTGRES_SSLMODE", "disable"),
			SQLitePath:       envutil.String("SQLITE_PATH", "levelup.db"),
			MaxOpenConns:     envutil.Int("DB_MAX_OPEN_CONNS", 20),
			MaxIdleConns:     envutil.Int("DB_MAX_IDLE_CONNS", 10),
			ConnMaxLifetime:  envutil.Duration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
		},
		RedisAddr:         strings.TrimSpace(os.Getenv("REDIS_ADDR")),
		SubmissionLockTTL: envutil.Duration("SUBMISSION_LOCK_TTL", 10*time.Second),
		LockWait:          envutil.Duration("SUBMISSION_LOCK_WAIT", 5*time.Second),
		Auth: identity.Config{
			HMACSecret: envutil.String("AUTH_JWT_SECRET", ""),
			JWKSURL:    envutil.String("AUTH_JWKS_URL", ""),
			Issuer:     envutil.String("AUTH_ISSUER", ""),
			Audience:   envutil.String("AUTH_AUDIENCE", ""),
			Leeway:     envutil.Duration("AUTH_LEEWAY", 30*time.Second),
		},
		TrustExplicitPoints: envutil.Bool("SCORING_TRUST_EXPLICIT_POINTS", true),
		CatalogSeed:         envutil.Bool("CATALOG_SEED", true),
		CatalogPath:         envutil.String("CATALOG_YAML", ""),
		ProgressAuditCron:   envutil.String("PROGRESS_AUDIT_CRON", ""),
		MetricsAddr:         envutil.String("METRICS_ADDR", ":9090"),
		Otel: observability.OtelConfig{
			Enabled:     envutil.Bool("OTEL_ENABLED", false),
			ServiceName: envutil.String("OTEL_SERVICE_NAME", "levelup-backend"),
			Environment: envutil.String("OTEL_ENVIRONMENT", "development"),
			Version:     envutil.String("OTEL_SERVICE_VERSION", ""),
			Endpoint:    envutil.String("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			Headers:     envutil.String("OTEL_EXPORTER_OTLP_HEADERS", ""),
			Insecure:    envutil.Bool("OTEL_EXPORTER_OTLP_INSECURE", false),
			SampleRatio: envutil.Float("OTEL_SAMPLER_RATIO", 1),
		},
		AllowedOrigins: splitList(os.Getenv("CORS_ALLOWED_ORIGINS")),
	}
	if log != nil {
		log.Info("Config loaded",
			"port", cfg.Port,
			"db_driver", cfg.DB.Driver,
			"redis", cfg.RedisAddr != "",
			"trust_explicit_points", cfg.TrustExplicitPoints,
			"catalog_seed", cfg.CatalogSeed,
			"audit_cron", cfg.ProgressAuditCron,
		)
	}
	return cfg
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
