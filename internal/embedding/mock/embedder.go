// Package mock provides a scriptable embedder for tests.
package mock

import (
	"context"
	"sync"
)

// Embedder returns preset vectors by exact text and records every call.
// Unknown texts get the Default vector, or a tiny deterministic vector
// derived from the text when Default is unset, so replays are bit-for-bit
// stable.
type Embedder struct {
	mu      sync.Mutex
	calls   []string
	Vectors map[string][]float32
	Default []float32
	// Fail makes calls for the given text return the mapped error.
	Fail map[string]error
}

func NewEmbedder() *Embedder {
	return &Embedder{
		Vectors: make(map[string][]float32),
		Fail:    make(map[string]error),
	}
}

func (e *Embedder) EmbedText(_ context.Context, text string) ([]float32, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.calls = append(e.calls, text)
	if err, ok := e.Fail[text]; ok {
		return nil, err
	}
	if vec, ok := e.Vectors[text]; ok {
		return vec, nil
	}
	if e.Default != nil {
		return e.Default, nil
	}
	return derive(text), nil
}

func (e *Embedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, 0, len(texts))
	for _, t := range texts {
		vec, err := e.EmbedText(ctx, t)
		if err != nil {
			return nil, err
		}
		out = append(out, vec)
	}
	return out, nil
}

// Calls returns the texts embedded so far, in call order.
func (e *Embedder) Calls() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]string, len(e.calls))
	copy(out, e.calls)
	return out
}

// CallCount returns how many embedding calls were made.
func (e *Embedder) CallCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.calls)
}

// derive folds the text into a stable 4-dim unit-ish vector.
func derive(text string) []float32 {
	var acc [4]uint32
	for i := 0; i < len(text); i++ {
		acc[i%4] = acc[i%4]*31 + uint32(text[i])
	}
	vec := make([]float32, 4)
	for i, a := range acc {
		vec[i] = float32(a%1000)/1000 + 0.001
	}
	return vec
}
