package aggregates

import (
	"context"
	"errors"
	"testing"
	"time"

	domainagg "github.com/yungbote/levelup-backend/internal/domain/aggregates"
	"github.com/yungbote/levelup-backend/internal/platform/dbctx"
)

func TestExecuteWriteReportsOutcome(t *testing.T) {
	cases := []struct {
		name      string
		body      error
		code      domainagg.ErrorCode
		status    string
		conflicts int
		retries   int
	}{
		{name: "success", status: "success"},
		{name: "invariant", body: InvariantError("user progress missing"), code: domainagg.CodeInvariantViolation, status: string(domainagg.CodeInvariantViolation)},
		{name: "conflict", body: ConflictError("current_level moved"), code: domainagg.CodeConflict, status: string(domainagg.CodeConflict), conflicts: 1},
		{name: "retryable", body: RetryableError("lock wait timeout"), code: domainagg.CodeRetryable, status: string(domainagg.CodeRetryable), retries: 1},
		{name: "deadline", body: context.DeadlineExceeded, code: domainagg.CodeRetryable, status: string(domainagg.CodeRetryable), retries: 1},
		{name: "plain error", body: errors.New("disk full"), code: domainagg.CodeInternal, status: string(domainagg.CodeInternal)},
	}
	const op = "Learning.Progress.SubmitActivityResult"
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			hooks := &spyHooks{}
			err := executeWrite(context.Background(), BaseDeps{Runner: spyTxRunner{}, Hooks: hooks}, op,
				func(_ dbctx.Context) error { return tc.body })

			if tc.body == nil {
				if err != nil {
					t.Fatalf("unexpected err: %v", err)
				}
			} else if !domainagg.IsCode(err, tc.code) {
				t.Fatalf("code: want=%s got=%s (%v)", tc.code, domainagg.CodeOf(err), err)
			}
			if len(hooks.Operations) != 1 || hooks.Operations[0].Name != op || hooks.Operations[0].Status != tc.status {
				t.Fatalf("operations: want=[%s %s] got=%+v", op, tc.status, hooks.Operations)
			}
			if len(hooks.Conflicts) != tc.conflicts || len(hooks.Retries) != tc.retries {
				t.Fatalf("counters: want conflicts=%d retries=%d got=%v/%v", tc.conflicts, tc.retries, hooks.Conflicts, hooks.Retries)
			}
		})
	}
}

func TestExecuteWriteKeepsNotFoundResource(t *testing.T) {
	err := executeWrite(context.Background(), BaseDeps{Runner: spyTxRunner{}}, opSubmitActivityResult, func(_ dbctx.Context) error {
		return domainagg.NotFound(opSubmitActivityResult, "activity", "42")
	})
	if !domainagg.IsCode(err, domainagg.CodeNotFound) {
		t.Fatalf("code: want=%s got=%s", domainagg.CodeNotFound, domainagg.CodeOf(err))
	}
	if got := domainagg.ResourceOf(err); got != "activity" {
		t.Fatalf("resource: want=activity got=%s", got)
	}
}

func TestExecuteWriteDefaultsOpName(t *testing.T) {
	hooks := &spyHooks{}
	_ = executeWrite(context.Background(), BaseDeps{Runner: spyTxRunner{}, Hooks: hooks}, "  ", func(_ dbctx.Context) error { return nil })
	if len(hooks.Operations) != 1 || hooks.Operations[0].Name != "aggregate.write" {
		t.Fatalf("operations: %+v", hooks.Operations)
	}
}

type spyTxRunner struct{}

func (spyTxRunner) InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error {
	return fn(dbctx.Context{Ctx: ctx})
}

type spyHooks struct {
	Operations []spyOperation
	Conflicts  []string
	Retries    []string
}

type spyOperation struct {
	Name   string
	Status string
}

func (h *spyHooks) ObserveOperation(name, status string, _ time.Duration) {
	h.Operations = append(h.Operations, spyOperation{Name: name, Status: status})
}

func (*spyHooks) ObserveStep(string, string, string, time.Duration) {}

func (h *spyHooks) IncConflict(name string) { h.Conflicts = append(h.Conflicts, name) }
func (h *spyHooks) IncRetry(name string)    { h.Retries = append(h.Retries, name) }
