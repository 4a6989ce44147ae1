package testutil

import (
	"context"
	"sync"

	"gorm.io/gorm"

	"github.com/yungbote/levelup-backend/internal/data/aggregates"
	"github.com/yungbote/levelup-backend/internal/platform/dbctx"
)

// InjectedTxRunner runs aggregate bodies without opening a transaction and injects failures at
// begin, before the body, and at commit. When Tx is set the body receives it.
type InjectedTxRunner struct {
	Tx *gorm.DB

	FailBegin      error
	FailBeforeBody error
	FailCommit     error

	mu            sync.Mutex
	BeginCalls    int
	CommitCalls   int
	RollbackCalls int
}

var _ aggregates.TxRunner = (*InjectedTxRunner)(nil)

func (r *InjectedTxRunner) bump(n *int) {
	r.mu.Lock()
	*n++
	r.mu.Unlock()
}

func (r *InjectedTxRunner) InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error {
	r.bump(&r.BeginCalls)
	if r.FailBegin != nil {
		return r.FailBegin
	}
	if r.FailBeforeBody != nil {
		r.bump(&r.RollbackCalls)
		return r.FailBeforeBody
	}
	if fn != nil {
		if err := fn(dbctx.Context{Ctx: ctx, Tx: r.Tx}); err != nil {
			r.bump(&r.RollbackCalls)
			return err
		}
	}
	if r.FailCommit != nil {
		r.bump(&r.RollbackCalls)
		return r.FailCommit
	}
	r.bump(&r.CommitCalls)
	return nil
}
