// Package locks provides short-lived keyed mutual exclusion used to serialize
// progress submissions for one (user, activity) pair.
package locks

import (
	"context"
	"errors"
	"strconv"
	"strings"
)

// ErrNotAcquired is returned when the lock could not be taken before ctx expired.
var ErrNotAcquired = errors.New("lock not acquired")

// Release gives the lock back. It is safe to call more than once.
type Release func()

type Locker interface {
	Acquire(ctx context.Context, key string) (Release, error)
}

// SubmissionKey builds the lock key for one user's submissions to one activity.
func SubmissionKey(userID string, activityID uint) string {
	var b strings.Builder
	b.WriteString("levelup:submit:")
	b.WriteString(strings.TrimSpace(userID))
	b.WriteString(":")
	b.WriteString(strconv.FormatUint(uint64(activityID), 10))
	return b.String()
}
