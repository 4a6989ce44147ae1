package db

import (
	"path/filepath"
	"testing"

	"github.com/yungbote/levelup-backend/internal/platform/logger"
)

func TestNewService_SQLiteMigrates(t *testing.T) {
	logg, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	svc, err := NewService(Config{Driver: "sqlite", SQLitePath: filepath.Join(t.TempDir(), "levelup.db")}, logg)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	t.Cleanup(func() { _ = svc.Close() })

	if svc.IsPostgres() || svc.Driver() != DriverSQLite {
		t.Fatalf("driver: want=%s got=%s", DriverSQLite, svc.Driver())
	}
	if err := AutoMigrateAll(svc.DB()); err != nil {
		t.Fatalf("AutoMigrateAll: %v", err)
	}
	if err := EnsureProgressIndexes(svc.DB()); err != nil {
		t.Fatalf("EnsureProgressIndexes: %v", err)
	}
	for _, table := range []string{"users", "levels", "activities", "achievements", "user_progress", "activity_progress", "user_achievements"} {
		if !svc.DB().Migrator().HasTable(table) {
			t.Fatalf("missing table %s", table)
		}
	}
}

func TestNewService_RejectsUnknownDriver(t *testing.T) {
	logg, _ := logger.New("test")
	if _, err := NewService(Config{Driver: "oracle"}, logg); err == nil {
		t.Fatalf("expected error for unknown driver")
	}
}
