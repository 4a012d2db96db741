// Package mock provides a scriptable arbiter for tests.
package mock

import (
	"context"
	"sync"

	"steeple/internal/arbiter"
	"steeple/internal/search"
)

// Call records one arbitration request.
type Call struct {
	Query      arbiter.Query
	Candidates []search.Candidate
}

// Arbiter returns a preset decision or error and records every call.
type Arbiter struct {
	mu       sync.Mutex
	calls    []Call
	Decision arbiter.Decision
	Err      error
}

func NewArbiter() *Arbiter {
	return &Arbiter{}
}

func (a *Arbiter) Decide(_ context.Context, query arbiter.Query, candidates []search.Candidate) (arbiter.Decision, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.calls = append(a.calls, Call{Query: query, Candidates: candidates})
	if a.Err != nil {
		return arbiter.Decision{}, a.Err
	}
	return a.Decision, nil
}

// Calls returns the recorded requests in order.
func (a *Arbiter) Calls() []Call {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]Call, len(a.calls))
	copy(out, a.calls)
	return out
}

// CallCount returns how many arbitrations were requested.
func (a *Arbiter) CallCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.calls)
}
