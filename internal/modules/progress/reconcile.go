package progress

import (
	"encoding/json"
	"time"

	types "github.com/yungbote/levelup-backend/internal/domain"
)

type Action string

const (
	ActionCreate             Action = "CREATE"
	ActionUpdateScore        Action = "UPDATE_SCORE"
	ActionUpdateAttemptsOnly Action = "UPDATE_ATTEMPTS_ONLY"
)

// Submission is one attempt at an activity after scoring.
type Submission struct {
	IsCompleted bool
	Points      int
	Answers     json.RawMessage
}

type Decision struct {
	Action Action
	Record *types.ActivityProgress

	// PreviousCredited and Credited are the row's contribution to the user's total before and after.
	PreviousCredited int
	Credited         int
	NewlyCompleted   bool
}

// PointsAwarded is the increase of the user's total caused by the decision. Never negative.
func (d Decision) PointsAwarded() int {
	if delta := d.Credited - d.PreviousCredited; delta > 0 {
		return delta
	}
	return 0
}

// Reconcile merges sub into the existing row for (user, activity). existing is not modified.
// Completion is sticky and pointsEarned only ever moves up.
func Reconcile(existing *types.ActivityProgress, sub Submission, now time.Time) Decision {
	if existing == nil {
		rec := &types.ActivityProgress{
			IsCompleted:  sub.IsCompleted,
			PointsEarned: sub.Points,
			Attempts:     1,
			Answers:      cloneAnswers(sub.Answers),
		}
		if sub.IsCompleted {
			at := now
			rec.CompletedAt = &at
		}
		return Decision{
			Action:         ActionCreate,
			Record:         rec,
			Credited:       rec.Credited(),
			NewlyCompleted: sub.IsCompleted,
		}
	}

	prev := existing.Credited()
	rec := *existing
	rec.Attempts = existing.Attempts + 1

	switch {
	case !existing.IsCompleted:
		rec.IsCompleted = sub.IsCompleted
		rec.PointsEarned = max(existing.PointsEarned, sub.Points)
		if len(sub.Answers) > 0 {
			rec.Answers = cloneAnswers(sub.Answers)
		}
		if sub.IsCompleted {
			at := now
			rec.CompletedAt = &at
		}
		return Decision{
			Action:           ActionUpdateScore,
			Record:           &rec,
			PreviousCredited: prev,
			Credited:         rec.Credited(),
			NewlyCompleted:   sub.IsCompleted,
		}
	case sub.IsCompleted && sub.Points > existing.PointsEarned:
		rec.PointsEarned = sub.Points
		if len(sub.Answers) > 0 {
			rec.Answers = cloneAnswers(sub.Answers)
		}
		return Decision{
			Action:           ActionUpdateScore,
			Record:           &rec,
			PreviousCredited: prev,
			Credited:         rec.Credited(),
		}
	default:
		return Decision{
			Action:           ActionUpdateAttemptsOnly,
			Record:           &rec,
			PreviousCredited: prev,
			Credited:         prev,
		}
	}
}

func cloneAnswers(raw json.RawMessage) []byte {
	if len(raw) == 0 {
		return nil
	}
	out := make([]byte, len(raw))
	copy(out, raw)
	return out
}
