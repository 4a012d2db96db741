package search_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"steeple/internal/embedding"
	"steeple/internal/search"
)

func set(combined []float32, fields map[embedding.Field][]float32) embedding.Set {
	return embedding.Set{Combined: combined, Fields: fields}
}

func TestCosine(t *testing.T) {
	t.Run("identical vectors score 1", func(t *testing.T) {
		v := []float32{0.3, 0.5, 0.2}
		assert.InDelta(t, 1.0, search.Cosine(v, v), 1e-9)
	})

	t.Run("orthogonal vectors score 0", func(t *testing.T) {
		assert.InDelta(t, 0.0, search.Cosine([]float32{1, 0}, []float32{0, 1}), 1e-9)
	})

	t.Run("opposite vectors score -1", func(t *testing.T) {
		assert.InDelta(t, -1.0, search.Cosine([]float32{1, 0}, []float32{-1, 0}), 1e-9)
	})

	t.Run("empty, mismatched, or zero vectors score 0", func(t *testing.T) {
		assert.Zero(t, search.Cosine(nil, []float32{1}))
		assert.Zero(t, search.Cosine([]float32{1, 2}, []float32{1}))
		assert.Zero(t, search.Cosine([]float32{0, 0}, []float32{1, 1}))
	})
}

func TestScore(t *testing.T) {
	name := []float32{0, 1, 0}
	combined := []float32{1, 1, 0}

	t.Run("perfect candidate reaches the maximum score", func(t *testing.T) {
		query := set(combined, map[embedding.Field][]float32{
			embedding.FieldName: name,
			embedding.FieldCity: {1, 0, 1},
		})
		w := search.DefaultWeights(query)

		got := search.Score(query, query, w)
		assert.InDelta(t, 1.0, got, 1e-9)
	})

	t.Run("absent query field does not dilute the score", func(t *testing.T) {
		query := set(combined, map[embedding.Field][]float32{
			embedding.FieldName: name,
		})
		stored := set(combined, map[embedding.Field][]float32{
			embedding.FieldName:   name,
			embedding.FieldStreet: {1, 2, 3},
		})
		w := search.DefaultWeights(query)

		// Street exists only on the stored side; its channel must not apply.
		assert.InDelta(t, 1.0, search.Score(query, stored, w), 1e-9)
	})

	t.Run("absent stored field drops its channel", func(t *testing.T) {
		query := set(combined, map[embedding.Field][]float32{
			embedding.FieldName: name,
		})
		storedPartial := set(combined, nil)
		w := search.DefaultWeights(query)

		// Only the combined channel applies; identical combined vectors
		// still give a full score over the applied weight.
		assert.InDelta(t, 1.0, search.Score(query, storedPartial, w), 1e-9)
	})

	t.Run("weighting shifts the score toward heavier channels", func(t *testing.T) {
		query := set(combined, map[embedding.Field][]float32{
			embedding.FieldName:   name,
			embedding.FieldStreet: {1, 0, 0},
		})
		stored := set(combined, map[embedding.Field][]float32{
			embedding.FieldName:   name,       // cosine 1, weight 1
			embedding.FieldStreet: {0, 0, 1},  // cosine 0, weight 0.5
		})
		w := search.DefaultWeights(query)

		// (0.75*1 + 1*1 + 0.5*0) / (0.75 + 1 + 0.5)
		assert.InDelta(t, 1.75/2.25, search.Score(query, stored, w), 1e-9)
	})

	t.Run("no applicable channels scores zero", func(t *testing.T) {
		assert.Zero(t, search.Score(embedding.Set{}, embedding.Set{}, search.Weights{}))
	})

	t.Run("score is deterministic", func(t *testing.T) {
		query := set(combined, map[embedding.Field][]float32{
			embedding.FieldName: name,
			embedding.FieldCity: {0.2, 0.8, 0.1},
		})
		stored := set([]float32{0.9, 1.1, 0.05}, map[embedding.Field][]float32{
			embedding.FieldName: {0.1, 0.9, 0},
			embedding.FieldCity: {0.25, 0.7, 0.2},
		})
		w := search.DefaultWeights(query)

		first := search.Score(query, stored, w)
		for range 10 {
			assert.Equal(t, first, search.Score(query, stored, w))
		}
	})
}

func TestDefaultWeights(t *testing.T) {
	full := set([]float32{1}, map[embedding.Field][]float32{
		embedding.FieldName:    {1},
		embedding.FieldStreet:  {1},
		embedding.FieldCity:    {1},
		embedding.FieldWebsite: {1},
	})
	w := search.DefaultWeights(full)
	assert.Equal(t, search.Weights{Name: 1, Street: 0.5, City: 0.5, Website: 1, Combined: 0.75}, w)

	nameOnly := set([]float32{1}, map[embedding.Field][]float32{embedding.FieldName: {1}})
	w = search.DefaultWeights(nameOnly)
	assert.Equal(t, search.Weights{Name: 1, Combined: 0.75}, w)
}
