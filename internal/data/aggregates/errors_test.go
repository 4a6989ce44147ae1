package aggregates

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	domainagg "github.com/yungbote/levelup-backend/internal/domain/aggregates"
	"gorm.io/gorm"
)

func TestMapError_Validation(t *testing.T) {
	err := MapError("op", ValidationError("bad input"))
	if !domainagg.IsCode(err, domainagg.CodeValidation) {
		t.Fatalf("expected validation code, got %q (%v)", domainagg.CodeOf(err), err)
	}
}

func TestMapError_Conflict(t *testing.T) {
	err := MapError("op", ConflictError("stale"))
	if !domainagg.IsCode(err, domainagg.CodeConflict) {
		t.Fatalf("expected conflict code, got %q (%v)", domainagg.CodeOf(err), err)
	}
}

func TestMapError_NotFound(t *testing.T) {
	err := MapError("op", gorm.ErrRecordNotFound)
	if !domainagg.IsCode(err, domainagg.CodeNotFound) {
		t.Fatalf("expected not_found code, got %q (%v)", domainagg.CodeOf(err), err)
	}
}

func TestMapError_PassthroughAggregateError(t *testing.T) {
	in := domainagg.NewError(domainagg.CodeRetryable, "op", "retry", errors.New("boom"))
	out := MapError("other", in)
	if out != in {
		t.Fatalf("expected passthrough aggregate error")
	}
}

func TestMapError_PostgresCodes(t *testing.T) {
	cases := map[string]domainagg.ErrorCode{
		"23505": domainagg.CodeConflict,
		"23503": domainagg.CodePreconditionFailed,
		"23514": domainagg.CodeInvariantViolation,
		"40001": domainagg.CodeRetryable,
		"40P01": domainagg.CodeRetryable,
		"55P03": domainagg.CodeRetryable,
		"42P01": domainagg.CodeInternal,
	}
	for code, want := range cases {
		err := fmt.Errorf("update users: %w", &pgconn.PgError{Code: code, Message: "x"})
		if got := domainagg.CodeOf(MapError("op", err)); got != want {
			t.Fatalf("pg %s: want=%s got=%s", code, want, got)
		}
	}
}

func TestMapError_SQLiteMessages(t *testing.T) {
	cases := map[string]domainagg.ErrorCode{
		"UNIQUE constraint failed: activity_progress.user_id, activity_progress.activity_id": domainagg.CodeConflict,
		"FOREIGN KEY constraint failed":                                                      domainagg.CodePreconditionFailed,
		"database is locked (5) (SQLITE_BUSY)":                                               domainagg.CodeRetryable,
		"no such table: levels":                                                              domainagg.CodeInternal,
	}
	for msg, want := range cases {
		if got := domainagg.CodeOf(MapError("op", errors.New(msg))); got != want {
			t.Fatalf("%q: want=%s got=%s", msg, want, got)
		}
	}
}

func TestMapError_ContextIsRetryable(t *testing.T) {
	err := MapError("op", fmt.Errorf("tx: %w", context.Canceled))
	if !domainagg.IsCode(err, domainagg.CodeRetryable) {
		t.Fatalf("expected retryable, got %q", domainagg.CodeOf(err))
	}
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cause to be preserved")
	}
}
