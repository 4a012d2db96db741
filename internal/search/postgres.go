package search

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pgvector/pgvector-go"

	"steeple/internal/embedding"
	"steeple/internal/platform/postgres"
	regstore "steeple/internal/registry/store"
)

// queryTimeout bounds the candidate query so a slow index scan cannot hold
// a resolution request open indefinitely.
const queryTimeout = 5 * time.Second

// PostgresSearcher pushes the weighted scoring into SQL so ordering and the
// threshold cut happen next to the pgvector index instead of in the app.
type PostgresSearcher struct {
	pool *postgres.Pool
}

func NewPostgres(pool *postgres.Pool) *PostgresSearcher {
	return &PostgresSearcher{pool: pool}
}

// Each channel contributes weight * cosine when the weight is positive and
// both the query parameter and the stored column are non-null; the applied
// weights accumulate in the denominator so absent channels never dilute
// the score. 1 - (a <=> b) turns pgvector's cosine distance back into
// similarity.
const searchQuery = `
	WITH scored AS (
		SELECT ` + regstore.ChurchColumns + `,
			(
				CASE WHEN $1::float8 > 0
					THEN $1 * (1 - (e.full_embedding <=> $2))
					ELSE 0 END
			  + CASE WHEN $3::float8 > 0 AND $4::vector IS NOT NULL AND e.name_embedding IS NOT NULL
					THEN $3 * (1 - (e.name_embedding <=> $4))
					ELSE 0 END
			  + CASE WHEN $5::float8 > 0 AND $6::vector IS NOT NULL AND e.street_embedding IS NOT NULL
					THEN $5 * (1 - (e.street_embedding <=> $6))
					ELSE 0 END
			  + CASE WHEN $7::float8 > 0 AND $8::vector IS NOT NULL AND e.city_embedding IS NOT NULL
					THEN $7 * (1 - (e.city_embedding <=> $8))
					ELSE 0 END
			  + CASE WHEN $9::float8 > 0 AND $10::vector IS NOT NULL AND e.website_embedding IS NOT NULL
					THEN $9 * (1 - (e.website_embedding <=> $10))
					ELSE 0 END
			) / NULLIF(
				CASE WHEN $1::float8 > 0 THEN $1 ELSE 0 END
			  + CASE WHEN $3::float8 > 0 AND $4::vector IS NOT NULL AND e.name_embedding IS NOT NULL THEN $3 ELSE 0 END
			  + CASE WHEN $5::float8 > 0 AND $6::vector IS NOT NULL AND e.street_embedding IS NOT NULL THEN $5 ELSE 0 END
			  + CASE WHEN $7::float8 > 0 AND $8::vector IS NOT NULL AND e.city_embedding IS NOT NULL THEN $7 ELSE 0 END
			  + CASE WHEN $9::float8 > 0 AND $10::vector IS NOT NULL AND e.website_embedding IS NOT NULL THEN $9 ELSE 0 END,
			0) AS similarity
		FROM church c
		JOIN church_embedding e ON e.church_id = c.id
		WHERE ($11 = '' OR upper(c.state) = $11)
		  AND ($12 = '' OR upper(c.city) = $12)
	)
	SELECT * FROM scored
	WHERE similarity >= $13
	ORDER BY similarity DESC
	LIMIT $14
`

func queryVector(set embedding.Set, f embedding.Field) any {
	vec := set.Vector(f)
	if len(vec) == 0 {
		return nil
	}
	v := pgvector.NewVector(vec)
	return &v
}

func (s *PostgresSearcher) Search(ctx context.Context, query Query) ([]Candidate, error) {
	if len(query.Embeddings.Combined) == 0 {
		return nil, fmt.Errorf("combined query embedding is required")
	}

	limit := query.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}

	queryCtx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := s.pool.Query(queryCtx, searchQuery,
		query.Weights.Combined, pgvector.NewVector(query.Embeddings.Combined),
		query.Weights.Name, queryVector(query.Embeddings, embedding.FieldName),
		query.Weights.Street, queryVector(query.Embeddings, embedding.FieldStreet),
		query.Weights.City, queryVector(query.Embeddings, embedding.FieldCity),
		query.Weights.Website, queryVector(query.Embeddings, embedding.FieldWebsite),
		strings.ToUpper(query.State), strings.ToUpper(query.City),
		query.Threshold, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query candidates: %w", err)
	}
	defer rows.Close()

	var out []Candidate
	for rows.Next() {
		var cand Candidate
		church, err := regstore.ScanChurchWith(rows, &cand.Similarity)
		if err != nil {
			return nil, fmt.Errorf("scan candidate: %w", err)
		}
		cand.Church = *church
		out = append(out, cand)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate candidates: %w", err)
	}
	return out, nil
}
