package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/yungbote/levelup-backend/internal/app"
	"github.com/yungbote/levelup-backend/internal/services"
)

type idList []string

func (l *idList) String() string { return strings.Join(*l, ",") }
func (l *idList) Set(v string) error {
	v = strings.TrimSpace(v)
	if v != "" {
		*l = append(*l, v)
	}
	return nil
}

func main() {
	var users idList
	var dryRun bool
	var limit int
	flag.Var(&users, "user", "user id to recompute (repeatable)")
	flag.BoolVar(&dryRun, "dry-run", false, "report drift without writing")
	flag.IntVar(&limit, "limit", 0, "limit number of users processed")
	flag.Parse()

	application, err := app.NewWithOptions(app.Options{WithoutHTTP: true})
	if err != nil {
		fmt.Printf("init app: %v\n", err)
		os.Exit(1)
	}
	defer application.Close()

	report, err := application.Services.Auditor.RunOnce(context.Background(), services.AuditOptions{
		DryRun:  dryRun,
		Limit:   limit,
		UserIDs: users,
	})
	for _, res := range report.Results {
		fmt.Printf("user=%s total=%d->%d level=%d->%d levels_changed=%d\n",
			res.UserID,
			res.TotalPointsBefore, res.TotalPointsAfter,
			res.CurrentLevelBefore, res.CurrentLevelAfter,
			res.LevelsChanged,
		)
	}
	fmt.Printf("scanned=%d drifted=%d failed=%d dry_run=%v\n", report.UsersScanned, report.UsersDrifted, report.UsersFailed, dryRun)
	if err != nil {
		fmt.Printf("recompute: %v\n", err)
		os.Exit(1)
	}
	if report.UsersFailed > 0 {
		os.Exit(2)
	}
}
