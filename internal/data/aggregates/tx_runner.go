package aggregates

import (
	"context"
	"time"

	domainagg "github.com/yungbote/levelup-backend/internal/domain/aggregates"
	"github.com/yungbote/levelup-backend/internal/platform/dbctx"
	"gorm.io/gorm"
)

// TxRunner opens the transaction an aggregate write runs in.
type TxRunner interface {
	InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error
}

type gormTxRunner struct {
	db *gorm.DB
}

func NewGormTxRunner(db *gorm.DB) TxRunner {
	return &gormTxRunner{db: db}
}

func (r *gormTxRunner) InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error {
	if fn == nil {
		return nil
	}
	if r == nil || r.db == nil {
		return domainagg.NewError(domainagg.CodeInternal, "aggregate.tx", "transaction runner has nil db", nil)
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(dbctx.Context{Ctx: ctx, Tx: tx})
	})
}

type retryingTxRunner struct {
	inner    TxRunner
	attempts int
	backoff  time.Duration
}

// NewRetryingTxRunner reruns the whole transaction when it fails with a retryable store error
// (serialization failure, deadlock, busy database). attempts counts the first run.
func NewRetryingTxRunner(inner TxRunner, attempts int, backoff time.Duration) TxRunner {
	if attempts < 1 {
		attempts = 1
	}
	return &retryingTxRunner{inner: inner, attempts: attempts, backoff: backoff}
}

func (r *retryingTxRunner) InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error {
	var err error
	for i := 0; i < r.attempts; i++ {
		err = r.inner.InTx(ctx, fn)
		if err == nil || !domainagg.IsCode(MapError("aggregate.tx", err), domainagg.CodeRetryable) {
			return err
		}
		if ctx.Err() != nil {
			return err
		}
		if i < r.attempts-1 && r.backoff > 0 {
			select {
			case <-ctx.Done():
				return err
			case <-time.After(r.backoff * time.Duration(i+1)):
			}
		}
	}
	return err
}
