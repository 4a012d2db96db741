// Package search ranks registry organizations against a query embedding set
// by weighted multi-field cosine similarity.
package search

import (
	"context"

	"steeple/internal/embedding"
	"steeple/internal/registry/models"
)

const (
	// DefaultThreshold is the minimum weighted score a candidate must reach.
	DefaultThreshold = 0.5

	// DefaultLimit caps the candidate list handed to arbitration.
	DefaultLimit = 5
)

// Weights are the per-channel multipliers applied to cosine similarities.
// A channel participates only when its weight is positive and both the
// query and the stored row carry a vector for it.
type Weights struct {
	Name     float64
	Street   float64
	City     float64
	Website  float64
	Combined float64
}

// DefaultWeights returns the standard channel weights, zeroing channels the
// query set has no vector for so absent fields cannot dilute the score.
func DefaultWeights(set embedding.Set) Weights {
	w := Weights{Combined: 0.75}
	if set.Has(embedding.FieldName) {
		w.Name = 1
	}
	if set.Has(embedding.FieldStreet) {
		w.Street = 0.5
	}
	if set.Has(embedding.FieldCity) {
		w.City = 0.5
	}
	if set.Has(embedding.FieldWebsite) {
		w.Website = 1
	}
	return w
}

func (w Weights) forField(f embedding.Field) float64 {
	switch f {
	case embedding.FieldName:
		return w.Name
	case embedding.FieldStreet:
		return w.Street
	case embedding.FieldCity:
		return w.City
	case embedding.FieldWebsite:
		return w.Website
	}
	return 0
}

// Query is one similarity search request. State and City filter exactly
// (case-insensitive); they never contribute to the score.
type Query struct {
	Embeddings embedding.Set
	State      string
	City       string
	Weights    Weights
	Threshold  float64
	Limit      int
}

// Candidate is one scored registry organization.
type Candidate struct {
	Church     models.Church
	Similarity float64
}

// Searcher finds the best-scoring organizations for a query.
// Results are ordered by descending similarity.
type Searcher interface {
	Search(ctx context.Context, query Query) ([]Candidate, error)
}
