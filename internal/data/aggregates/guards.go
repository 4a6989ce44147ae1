package aggregates

import (
	"sort"
	"strings"

	"github.com/yungbote/levelup-backend/internal/platform/dbctx"
	"gorm.io/gorm"
)

// CASGuard applies compare-and-set updates: a row changes only while its guard columns still hold the values read earlier.
type CASGuard struct {
	db *gorm.DB
}

func NewCASGuard(db *gorm.DB) CASGuard {
	return CASGuard{db: db}
}

func (g CASGuard) baseDB(dbc dbctx.Context) (*gorm.DB, error) {
	if dbc.Tx == nil && g.db == nil {
		return nil, ValidationError("missing db transaction context")
	}
	return dbc.DB(g.db), nil
}

// UpdateWhere updates table rows matching every guard column and reports whether any row changed.
func (g CASGuard) UpdateWhere(dbc dbctx.Context, table string, guards map[string]any, updates map[string]any) (bool, error) {
	db, err := g.baseDB(dbc)
	if err != nil {
		return false, err
	}
	table = strings.TrimSpace(table)
	if table == "" || len(guards) == 0 {
		return false, ValidationError("table and guards are required for UpdateWhere")
	}
	if len(updates) == 0 {
		return false, ValidationError("updates must not be empty")
	}
	cols := make([]string, 0, len(guards))
	for col := range guards {
		cols = append(cols, col)
	}
	sort.Strings(cols)

	q := db.Table(table)
	for _, col := range cols {
		q = q.Where(col+" = ?", guards[col])
	}
	res := q.Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// AdvanceCounter moves an integer column from expected to expected+1 on the row with the given id.
func (g CASGuard) AdvanceCounter(dbc dbctx.Context, table string, id any, column string, expected int, extra map[string]any) (bool, error) {
	updates := map[string]any{column: expected + 1}
	for k, v := range extra {
		updates[k] = v
	}
	return g.UpdateWhere(dbc, table, map[string]any{"id": id, column: expected}, updates)
}

