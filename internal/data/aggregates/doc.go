// Package aggregates implements the learning aggregates on top of the table repos in
// internal/data/repos. Each write method owns exactly one transaction.
package aggregates
