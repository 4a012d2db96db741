package search

import (
	"math"

	"steeple/internal/embedding"
)

// Cosine returns the cosine similarity of two vectors, or 0 when either is
// empty, mismatched in length, or zero-magnitude.
func Cosine(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// Score computes the weighted similarity between a query set and a stored
// set. Each channel contributes weight*cosine to the numerator and its
// weight to the denominator, but only when the weight is positive and both
// sides carry the vector. Missing everything scores 0.
func Score(query, stored embedding.Set, w Weights) float64 {
	var num, den float64

	if w.Combined > 0 && len(query.Combined) > 0 && len(stored.Combined) > 0 {
		num += w.Combined * Cosine(query.Combined, stored.Combined)
		den += w.Combined
	}

	for _, f := range embedding.Fields {
		weight := w.forField(f)
		if weight <= 0 || !query.Has(f) || !stored.Has(f) {
			continue
		}
		num += weight * Cosine(query.Vector(f), stored.Vector(f))
		den += weight
	}

	if den == 0 {
		return 0
	}
	return num / den
}
