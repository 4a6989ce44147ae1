package aggregates

import "context"

var OnboardingAggregateContract = Contract{
	Name:             "Learning.OnboardingAggregate",
	WriteTxOwnership: WriteTxOwnedByAggregate,
	ReadPolicy:       ReadPolicyInvariantScoped,
	Notes:            "Creates the user row, the first level rollup and the FIRST_STEPS grant exactly once.",
}

type OnboardingAggregate interface {
	Aggregate

	// ProvisionUser is idempotent: an existing user is returned unchanged.
	ProvisionUser(ctx context.Context, in ProvisionUserInput) (ProvisionUserResult, error)
}

type ProvisionUserInput struct {
	UserID  string
	Profile UserProfile
}

type ProvisionUserResult struct {
	UserID       string
	Created      bool
	TotalPoints  int
	CurrentLevel int

	GrantedAchievementIDs []uint
	GrantedAchievements   []GrantedAchievement
}
