package progress

import (
	"sort"
	"time"

	types "github.com/yungbote/levelup-backend/internal/domain"
)

type LevelRollup struct {
	PointsEarned        int
	ActivitiesCompleted int
	IsCompleted         bool
	CompletedAt         *time.Time
	NewlyCompleted      bool
}

// AggregateLevel recomputes a level rollup from the user's completed activity rows in that level.
// current is the stored rollup, nil when none exists yet.
func AggregateLevel(level types.Level, current *types.UserProgress, completed []types.ActivityProgress, now time.Time) LevelRollup {
	var out LevelRollup
	for i := range completed {
		if !completed[i].IsCompleted {
			continue
		}
		out.PointsEarned += completed[i].PointsEarned
		out.ActivitiesCompleted++
	}
	out.IsCompleted = out.PointsEarned >= level.MinPointsToPass

	wasCompleted := current != nil && current.IsCompleted
	switch {
	case !out.IsCompleted:
		out.CompletedAt = nil
	case wasCompleted && current.CompletedAt != nil:
		at := *current.CompletedAt
		out.CompletedAt = &at
	default:
		at := now
		out.CompletedAt = &at
	}
	out.NewlyCompleted = out.IsCompleted && !wasCompleted
	return out
}

// Apply copies the rollup onto row.
func (r LevelRollup) Apply(row *types.UserProgress) {
	row.PointsEarned = r.PointsEarned
	row.ActivitiesCompleted = r.ActivitiesCompleted
	row.IsCompleted = r.IsCompleted
	row.CompletedAt = r.CompletedAt
}

// Changed reports whether applying the rollup would modify row.
func (r LevelRollup) Changed(row *types.UserProgress) bool {
	if row == nil {
		return true
	}
	if row.PointsEarned != r.PointsEarned || row.ActivitiesCompleted != r.ActivitiesCompleted || row.IsCompleted != r.IsCompleted {
		return true
	}
	return (row.CompletedAt == nil) != (r.CompletedAt == nil)
}

// CurrentLevelFromCompletion is 1 + the number of leading levels (by order) that are completed.
// It never goes below stored.
func CurrentLevelFromCompletion(levels []types.Level, completed map[uint]bool, stored int) int {
	sorted := append([]types.Level(nil), levels...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Order < sorted[j].Order })

	next := types.FirstLevelOrder
	for _, lvl := range sorted {
		if !completed[lvl.ID] {
			break
		}
		next = lvl.Order + 1
	}
	return max(next, stored, types.FirstLevelOrder)
}
