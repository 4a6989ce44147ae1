package services

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/yungbote/levelup-backend/internal/data/repos"
	domainagg "github.com/yungbote/levelup-backend/internal/domain/aggregates"
	"github.com/yungbote/levelup-backend/internal/observability"
	"github.com/yungbote/levelup-backend/internal/platform/dbctx"
	"github.com/yungbote/levelup-backend/internal/platform/logger"
)

const auditPageSize = 200

type AuditOptions struct {
	DryRun bool
	// Limit caps the number of users visited; zero means all.
	Limit int
	// UserIDs restricts the run to these users instead of paging the table.
	UserIDs []string
}

type AuditReport struct {
	UsersScanned int
	UsersDrifted int
	UsersFailed  int
	Results      []domainagg.RecomputeUserResult
}

// ProgressAuditor recomputes stored rollups and totals from activity progress and repairs drift.
type ProgressAuditor interface {
	RunOnce(ctx context.Context, opts AuditOptions) (AuditReport, error)
	// Start schedules RunOnce on a cron spec until ctx is done.
	Start(ctx context.Context, spec string) error
}

type progressAuditor struct {
	log     *logger.Logger
	users   repos.UserRepo
	agg     domainagg.ProgressAggregate
	metrics *observability.Metrics
}

func NewProgressAuditor(log *logger.Logger, users repos.UserRepo, agg domainagg.ProgressAggregate, metrics *observability.Metrics) ProgressAuditor {
	return &progressAuditor{
		log:     log.With("service", "ProgressAuditor"),
		users:   users,
		agg:     agg,
		metrics: metrics,
	}
}

func (a *progressAuditor) RunOnce(ctx context.Context, opts AuditOptions) (AuditReport, error) {
	var report AuditReport
	start := time.Now()

	visit := func(userID string) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		report.UsersScanned++
		res, err := a.agg.RecomputeUser(ctx, domainagg.RecomputeUserInput{UserID: userID, DryRun: opts.DryRun})
		if err != nil {
			report.UsersFailed++
			a.log.Warn("progress recompute failed", "user_id", userID, "error", err)
			return nil
		}
		if res.Drifted {
			report.UsersDrifted++
			report.Results = append(report.Results, res)
			a.log.Info("progress drift detected",
				"user_id", userID,
				"dry_run", opts.DryRun,
				"total_points_before", res.TotalPointsBefore,
				"total_points_after", res.TotalPointsAfter,
				"current_level_before", res.CurrentLevelBefore,
				"current_level_after", res.CurrentLevelAfter,
				"levels_changed", res.LevelsChanged,
			)
		}
		return nil
	}

	err := a.each(ctx, opts, visit)
	status := "ok"
	if err != nil {
		status = "error"
	} else if report.UsersFailed > 0 {
		status = "partial"
	}
	a.metrics.ObserveAuditRun(status, report.UsersDrifted)
	a.log.Info("progress audit finished",
		"status", status,
		"dry_run", opts.DryRun,
		"users_scanned", report.UsersScanned,
		"users_drifted", report.UsersDrifted,
		"users_failed", report.UsersFailed,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	if err != nil {
		return report, fmt.Errorf("progress audit: %w", err)
	}
	return report, nil
}

func (a *progressAuditor) each(ctx context.Context, opts AuditOptions, visit func(string) error) error {
	if len(opts.UserIDs) > 0 {
		for i, id := range opts.UserIDs {
			if opts.Limit > 0 && i >= opts.Limit {
				return nil
			}
			if err := visit(id); err != nil {
				return err
			}
		}
		return nil
	}

	seen := 0
	after := ""
	for {
		page := auditPageSize
		if opts.Limit > 0 && opts.Limit-seen < page {
			page = opts.Limit - seen
		}
		if page <= 0 {
			return nil
		}
		ids, err := a.users.ListIDsAfter(dbctx.Context{Ctx: ctx}, after, page)
		if err != nil {
			return err
		}
		for _, id := range ids {
			if err := visit(id); err != nil {
				return err
			}
		}
		seen += len(ids)
		if len(ids) < page {
			return nil
		}
		after = ids[len(ids)-1]
	}
}

func (a *progressAuditor) Start(ctx context.Context, spec string) error {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)))
	if _, err := c.AddFunc(spec, func() {
		if _, err := a.RunOnce(ctx, AuditOptions{}); err != nil {
			a.log.Error("scheduled progress audit failed", "error", err)
		}
	}); err != nil {
		return fmt.Errorf("schedule progress audit %q: %w", spec, err)
	}
	c.Start()
	a.log.Info("progress audit scheduled", "spec", spec)
	go func() {
		<-ctx.Done()
		<-c.Stop().Done()
	}()
	return nil
}
