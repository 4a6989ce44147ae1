package aggregates

import (
	"context"
	"encoding/json"
)

var ProgressAggregateContract = Contract{
	Name:             "Learning.ProgressAggregate",
	WriteTxOwnership: WriteTxOwnedByAggregate,
	ReadPolicy:       ReadPolicyInvariantScoped,
	Notes:            "Owns activity progress, level rollups, user totals, level advancement and achievement grants for one submission.",
}

// ProgressAggregate applies activity submissions.
//
// Failures are *aggregates.Error with CodeValidation, CodeNotFound, CodeConflict, CodeRetryable or CodeInternal.
type ProgressAggregate interface {
	Aggregate

	// SubmitActivityResult records one submission and every consequence of it in a single transaction.
	SubmitActivityResult(ctx context.Context, in SubmitActivityResultInput) (SubmitActivityResultResult, error)

	// RecomputeUser rebuilds a user's rollups, total points and current level from activity progress.
	RecomputeUser(ctx context.Context, in RecomputeUserInput) (RecomputeUserResult, error)
}

type SubmitActivityResultInput struct {
	UserID     string
	ActivityID uint

	IsCompleted    bool
	ScorePercent   *float64
	ExplicitPoints *int

	// Answers is the validated envelope, nil when absent or unparseable.
	Answers json.RawMessage

	// Profile seeds a lazily provisioned user row.
	Profile UserProfile
}

type UserProfile struct {
	Email     string
	FirstName string
	LastName  string
	Username  string
}

type SubmitActivityResultResult struct {
	IsCompleted  bool
	PointsEarned int

	Action           string
	Attempts         int
	BestPointsEarned int
	PointsAwarded    int

	TotalPoints  int
	CurrentLevel int

	LevelID             uint
	LevelOrder          int
	LevelCompleted      bool
	LevelNewlyCompleted bool

	GrantedAchievementIDs []uint
	GrantedAchievements   []GrantedAchievement

	// ScoreFlags names the ways an explicit point value disagreed with the derived score.
	ScoreFlags []string
}

type GrantedAchievement struct {
	ID   uint
	Key  string
	Type string
}

type RecomputeUserInput struct {
	UserID string
	DryRun bool
}

type RecomputeUserResult struct {
	UserID string

	TotalPointsBefore int
	TotalPointsAfter  int

	CurrentLevelBefore int
	CurrentLevelAfter  int

	LevelsRecomputed int
	LevelsChanged    int
	Drifted          bool
}
