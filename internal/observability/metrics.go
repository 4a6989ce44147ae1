package observability

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/yungbote/levelup-backend/internal/platform/envutil"
	"github.com/yungbote/levelup-backend/internal/platform/logger"
)

type Metrics struct {
	apiRequests *CounterVec
	apiLatency  *HistogramVec
	apiInflight *Gauge

	aggregateOps       *CounterVec
	aggregateLatency   *HistogramVec
	aggregateSteps     *HistogramVec
	aggregateConflicts *CounterVec
	aggregateRetries   *CounterVec

	submissions         *CounterVec
	pointsAwarded       *Counter
	levelCompletions    *CounterVec
	achievementsGranted *CounterVec
	scoringSuspicious   *CounterVec
	answersDropped      *Counter
	lockWait            *HistogramVec

	auditRuns    *CounterVec
	auditDrifted *Counter

	dbStats   *GaugeVec
	redisUp   *Gauge
	redisPing *Gauge
}

var (
	initOnce sync.Once
	instance *Metrics
)

func Enabled() bool {
	return envutil.Bool("METRICS_ENABLED", false)
}

func Current() *Metrics {
	return instance
}

func scrapeInterval() time.Duration {
	return envutil.Duration("METRICS_SCRAPE_INTERVAL", 10*time.Second)
}

// Init returns the process-wide metrics, or nil when METRICS_ENABLED is off.
// Every method is safe on a nil receiver.
func Init(log *logger.Logger) *Metrics {
	if !Enabled() {
		return nil
	}
	initOnce.Do(func() {
		instance = New()
		if log != nil {
			log.Info("metrics enabled")
		}
	})
	return instance
}

// New builds an unregistered metrics set.
func New() *Metrics {
	latency := []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5}
	return &Metrics{
		apiRequests: NewCounterVec("lu_api_requests_total", "Total API requests by method/route/status.", []string{"method", "route", "status"}),
		apiLatency:  NewHistogramVec("lu_api_request_duration_seconds", "API request latency in seconds by method/route/status.", []string{"method", "route", "status"}, latency),
		apiInflight: NewGauge("lu_api_inflight_requests", "In-flight API requests."),

		aggregateOps:       NewCounterVec("lu_aggregate_operations_total", "Aggregate write operations by operation/status.", []string{"op", "status"}),
		aggregateLatency:   NewHistogramVec("lu_aggregate_operation_duration_seconds", "Aggregate write latency by operation/status.", []string{"op", "status"}, latency),
		aggregateSteps:     NewHistogramVec("lu_aggregate_step_duration_seconds", "Duration of individual aggregate pipeline steps.", []string{"op", "step", "status"}, latency),
		aggregateConflicts: NewCounterVec("lu_aggregate_conflicts_total", "Aggregate writes that failed on a conflict.", []string{"op"}),
		aggregateRetries:   NewCounterVec("lu_aggregate_retryable_total", "Aggregate writes that failed with a retryable error.", []string{"op"}),

		submissions:         NewCounterVec("lu_submissions_total", "Activity submissions by reconcile action and completion.", []string{"action", "completed"}),
		pointsAwarded:       NewCounter("lu_points_awarded_total", "Points credited to user totals."),
		levelCompletions:    NewCounterVec("lu_level_completions_total", "Levels newly completed by level order.", []string{"level"}),
		achievementsGranted: NewCounterVec("lu_achievements_granted_total", "Achievements granted by type.", []string{"type"}),
		scoringSuspicious:   NewCounterVec("lu_scoring_suspicious_total", "Explicit point values that disagreed with the derived score.", []string{"reason"}),
		answersDropped:      NewCounter("lu_answers_dropped_total", "Submissions whose answers could not be serialized."),
		lockWait:            NewHistogramVec("lu_submission_lock_wait_seconds", "Time spent acquiring the submission lock.", []string{"backend", "outcome"}, latency),

		auditRuns:    NewCounterVec("lu_progress_audit_runs_total", "Progress audit runs by status.", []string{"status"}),
		auditDrifted: NewCounter("lu_progress_audit_drifted_users_total", "Users whose stored progress drifted from activity rows."),

		dbStats:   NewGaugeVec("lu_db_pool", "Database pool stats.", []string{"stat"}),
		redisUp:   NewGauge("lu_redis_up", "Redis reachability (1=up)."),
		redisPing: NewGauge("lu_redis_ping_seconds", "Redis ping latency in seconds."),
	}
}

func (m *Metrics) StartServer(ctx context.Context, log *logger.Logger, addr string) {
	if m == nil {
		return
	}
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           http.HandlerFunc(m.WriteHTTP),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		_ = srv.Shutdown(shutdownCtx)
		cancel()
	}()
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			if log != nil {
				log.Error("metrics server failed", "error", err, "addr", addr)
			}
		}
	}()
}

func (m *Metrics) WriteHTTP(w http.ResponseWriter, r *http.Request) {
	if m == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	_ = m.WritePrometheus(w)
}

type exporter interface {
	WritePrometheus(w io.Writer) error
}

func (m *Metrics) WritePrometheus(w io.Writer) error {
	if m == nil {
		return nil
	}
	for _, e := range []exporter{
		m.apiRequests, m.apiLatency, m.apiInflight,
		m.aggregateOps, m.aggregateLatency, m.aggregateSteps, m.aggregateConflicts, m.aggregateRetries,
		m.submissions, m.pointsAwarded, m.levelCompletions, m.achievementsGranted,
		m.scoringSuspicious, m.answersDropped, m.lockWait,
		m.auditRuns, m.auditDrifted,
		m.dbStats, m.redisUp, m.redisPing,
	} {
		if err := e.WritePrometheus(w); err != nil {
			return err
		}
	}
	return nil
}

// ---- API ----

func (m *Metrics) ObserveAPI(method, route, status string, dur time.Duration) {
	if m == nil {
		return
	}
	if method == "" {
		method = "UNKNOWN"
	}
	if route == "" {
		route = "unknown"
	}
	if status == "" {
		status = "0"
	}
	m.apiRequests.Inc(method, route, status)
	m.apiLatency.Observe(dur.Seconds(), method, route, status)
}

func (m *Metrics) ApiInflightInc() {
	if m == nil {
		return
	}
	m.apiInflight.Inc()
}

func (m *Metrics) ApiInflightDec() {
	if m == nil {
		return
	}
	m.apiInflight.Dec()
}

// ---- aggregates ----

func (m *Metrics) ObserveAggregateOperation(op, status string, dur time.Duration) {
	if m == nil {
		return
	}
	if status == "" {
		status = "unknown"
	}
	m.aggregateOps.Inc(op, status)
	m.aggregateLatency.Observe(dur.Seconds(), op, status)
}

func (m *Metrics) ObserveAggregateStep(op, step, status string, dur time.Duration) {
	if m == nil {
		return
	}
	m.aggregateSteps.Observe(dur.Seconds(), op, step, status)
}

func (m *Metrics) IncAggregateConflict(op string) {
	if m == nil {
		return
	}
	m.aggregateConflicts.Inc(op)
}

func (m *Metrics) IncAggregateRetry(op string) {
	if m == nil {
		return
	}
	m.aggregateRetries.Inc(op)
}

// ---- progress ----

func (m *Metrics) ObserveSubmission(action string, completed bool, pointsAwarded int) {
	if m == nil {
		return
	}
	m.submissions.Inc(action, strconv.FormatBool(completed))
	if pointsAwarded > 0 {
		m.pointsAwarded.Add(float64(pointsAwarded))
	}
}

func (m *Metrics) IncLevelCompleted(levelOrder int) {
	if m == nil {
		return
	}
	m.levelCompletions.Inc(strconv.Itoa(levelOrder))
}

func (m *Metrics) IncAchievementGranted(typ string) {
	if m == nil {
		return
	}
	m.achievementsGranted.Inc(typ)
}

func (m *Metrics) IncScoringSuspicious(reason string) {
	if m == nil {
		return
	}
	m.scoringSuspicious.Inc(reason)
}

func (m *Metrics) IncAnswersDropped() {
	if m == nil {
		return
	}
	m.answersDropped.Inc()
}

func (m *Metrics) ObserveLockWait(backend, outcome string, dur time.Duration) {
	if m == nil {
		return
	}
	m.lockWait.Observe(dur.Seconds(), backend, outcome)
}

func (m *Metrics) ObserveAuditRun(status string, drifted int) {
	if m == nil {
		return
	}
	m.auditRuns.Inc(status)
	if drifted > 0 {
		m.auditDrifted.Add(float64(drifted))
	}
}

// ---- collectors ----

func (m *Metrics) StartDBCollector(ctx context.Context, log *logger.Logger, db *gorm.DB) {
	if m == nil || db == nil {
		return
	}
	interval := scrapeInterval()
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				sqlDB, err := db.DB()
				if err != nil {
					if log != nil {
						log.Warn("metrics: db stats unavailable", "error", err)
					}
					continue
				}
				stats := sqlDB.Stats()
				m.dbStats.Set(float64(stats.OpenConnections), "open_connections")
				m.dbStats.Set(float64(stats.InUse), "in_use")
				m.dbStats.Set(float64(stats.Idle), "idle")
				m.dbStats.Set(float64(stats.WaitCount), "wait_count")
				m.dbStats.Set(stats.WaitDuration.Seconds(), "wait_duration_seconds")
				m.dbStats.Set(float64(stats.MaxOpenConnections), "max_open_connections")
			}
		}
	}()
}

// StartRedisCollector pings rdb on every scrape interval. The client is owned by the caller.
func (m *Metrics) StartRedisCollector(ctx context.Context, log *logger.Logger, rdb goredis.UniversalClient) {
	if m == nil || rdb == nil {
		return
	}
	interval := scrapeInterval()
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				start := time.Now()
				pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
				err := rdb.Ping(pingCtx).Err()
				cancel()
				if err != nil {
					m.redisUp.Set(0)
					if log != nil {
						log.Warn("metrics: redis ping failed", "error", err)
					}
					continue
				}
				m.redisUp.Set(1)
				m.redisPing.Set(time.Since(start).Seconds())
			}
		}
	}()
}
