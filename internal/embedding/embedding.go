// Package embedding generates and stores the vector representations used by
// similarity search: one combined vector per record plus optional per-field
// vectors.
package embedding

import "context"

// Field names the per-field similarity dimensions. State and zip contribute
// only to the combined vector; they are too low-entropy to embed alone.
type Field string

const (
	FieldName    Field = "name"
	FieldStreet  Field = "street"
	FieldCity    Field = "city"
	FieldWebsite Field = "website"
)

// Fields lists the per-field dimensions in a stable order.
var Fields = []Field{FieldName, FieldStreet, FieldCity, FieldWebsite}

// Embedder generates vector embeddings from text.
// Implementations must be safe for concurrent use.
type Embedder interface {
	// EmbedText generates one embedding for a single text string.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates embeddings for multiple texts in one batch,
	// in input order.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Set holds a combined vector and whichever per-field vectors exist.
// A nil combined vector means the set is unusable for scoring.
type Set struct {
	Combined []float32
	Fields   map[Field][]float32
}

// Has reports whether the per-field vector for f is present.
func (s Set) Has(f Field) bool {
	return len(s.Fields[f]) > 0
}

// Vector returns the per-field vector for f, or nil.
func (s Set) Vector(f Field) []float32 {
	return s.Fields[f]
}
