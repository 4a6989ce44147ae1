// Package aggregates declares the write boundaries of the progress domain.
//
// Each aggregate owns one transaction and the invariants that must hold when it commits:
// a user's total points equal the credited points of their completed activities, level rollups
// are recomputed from activity rows, and achievements are granted at most once.
package aggregates
