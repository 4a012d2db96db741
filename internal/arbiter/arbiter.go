// Package arbiter makes the final match decision over a shortlist of
// similarity candidates. Vector search recalls; the arbiter filters.
package arbiter

import (
	"context"

	"steeple/internal/search"
	"steeple/pkg/domain"
)

// Query restates the record being resolved, for the arbiter's benefit.
type Query struct {
	Name    string
	Street  string
	City    string
	State   string
	Zip     string
	Website string
}

// Decision is the arbitration outcome. A nil ChurchID means the arbiter
// judged none of the candidates to be the queried organization.
type Decision struct {
	ChurchID *domain.ChurchID
}

// Arbiter picks at most one candidate as the true match.
//
// Implementations must return a candidate that was actually offered: a
// reference to anything outside the shortlist is an arbitration failure,
// not a silent no-match.
type Arbiter interface {
	Decide(ctx context.Context, query Query, candidates []search.Candidate) (Decision, error)
}
