package resolve

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"steeple/internal/apikey"
	"steeple/internal/arbiter"
	"steeple/internal/audit"
	"steeple/internal/embedding"
	"steeple/internal/resolve/metrics"
	"steeple/internal/search"
	"steeple/pkg/domain"
	dErrors "steeple/pkg/domain-errors"
	"steeple/pkg/requestcontext"
)

var tracer = otel.Tracer("steeple.resolve")

// AdmissionChecker decides whether the key may make another request now.
type AdmissionChecker interface {
	Check(ctx context.Context, key apikey.APIKey) error
}

// QueryEmbedder turns the normalized query into an embedding set.
type QueryEmbedder interface {
	BuildQuerySet(ctx context.Context, in embedding.Input) (embedding.Set, error)
}

// Ledger appends one audit row per admitted, valid request.
type Ledger interface {
	Record(ctx context.Context, entry audit.Entry) error
}

// Publisher fans completed entries out to an external sink. Optional.
type Publisher interface {
	Publish(ctx context.Context, entry audit.Entry) error
}

// Service runs the resolution pipeline.
type Service struct {
	checker   AdmissionChecker
	embedder  QueryEmbedder
	searcher  search.Searcher
	arbiter   arbiter.Arbiter
	ledger    Ledger
	publisher Publisher
	threshold float64
	limit     int
	logger    *slog.Logger
	metrics   *metrics.Metrics
}

type Option func(*Service)

func WithPublisher(p Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithThreshold(t float64) Option {
	return func(s *Service) { s.threshold = t }
}

func WithCandidateLimit(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.limit = n
		}
	}
}

// New constructs a Service. All positional dependencies are required.
func New(checker AdmissionChecker, embedder QueryEmbedder, searcher search.Searcher, arb arbiter.Arbiter, ledger Ledger, logger *slog.Logger, opts ...Option) (*Service, error) {
	if checker == nil {
		return nil, fmt.Errorf("admission checker is required")
	}
	if embedder == nil {
		return nil, fmt.Errorf("query embedder is required")
	}
	if searcher == nil {
		return nil, fmt.Errorf("searcher is required")
	}
	if arb == nil {
		return nil, fmt.Errorf("arbiter is required")
	}
	if ledger == nil {
		return nil, fmt.Errorf("ledger is required")
	}

	s := &Service{
		checker:   checker,
		embedder:  embedder,
		searcher:  searcher,
		arbiter:   arb,
		ledger:    ledger,
		threshold: search.DefaultThreshold,
		limit:     search.DefaultLimit,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Resolve runs the full pipeline for one admitted caller.
//
// Every request that passes admission and validation gets exactly one audit
// row, match or not. A pipeline failure after that point still writes the
// row with a null decision so the ledger stays a faithful record of quota
// consumption.
func (s *Service) Resolve(ctx context.Context, key apikey.APIKey, query Query) (Match, error) {
	start := time.Now()
	ctx, span := tracer.Start(ctx, "resolve.Resolve")
	defer span.End()

	if err := s.checker.Check(ctx, key); err != nil {
		if dErrors.HasCode(err, dErrors.CodeRateLimited) {
			s.incrementRateLimited()
			s.logger.InfoContext(ctx, "request rejected by rate limiter", "api_key_id", key.ID.String())
		}
		return Match{}, err
	}

	query = query.Normalize()
	if query.IsEmpty() {
		return Match{}, dErrors.New(dErrors.CodeNoSearchParameters, "no search parameters provided")
	}
	if missing := query.MissingRequired(); len(missing) > 0 {
		return Match{}, dErrors.New(dErrors.CodeMissingRequired,
			"missing required parameters: "+strings.Join(missing, ", "))
	}

	match, resolveErr := s.run(ctx, query)

	entry := audit.Entry{
		ID:        domain.NewRequestID(),
		APIKeyID:  key.ID,
		Query:     auditQuery(query),
		Decision:  auditDecision(match),
		CreatedAt: requestcontext.Now(ctx),
	}
	if err := s.ledger.Record(ctx, entry); err != nil {
		s.logger.ErrorContext(ctx, "audit write failed", "request_id", entry.ID.String(), "error", err)
		if resolveErr == nil {
			s.incrementResolution("failed")
			return Match{}, dErrors.Wrap(err, dErrors.CodeAuditWriteFailed, "failed to record resolution")
		}
	}
	s.publish(ctx, entry)

	s.observeResolution(start)
	if resolveErr != nil {
		s.incrementResolution("failed")
		return Match{}, resolveErr
	}

	if match.Matched() {
		s.incrementResolution("matched")
		span.SetAttributes(attribute.String("resolve.uuid", match.UUID.String()))
	} else {
		s.incrementResolution("no_match")
	}
	s.logger.InfoContext(ctx, "resolution completed",
		"request_id", entry.ID.String(),
		"api_key_id", key.ID.String(),
		"matched", match.Matched(),
	)
	return match, nil
}

// run is the fallible middle of the pipeline: embed, search, arbitrate.
func (s *Service) run(ctx context.Context, query Query) (Match, error) {
	set, err := s.embedder.BuildQuerySet(ctx, embedding.Input{
		Name:    query.Name,
		Street:  query.Street,
		City:    query.City,
		State:   query.State,
		Zip:     query.Zip,
		Website: query.Website,
	})
	if err != nil {
		return Match{}, err
	}

	candidates, err := s.searcher.Search(ctx, search.Query{
		Embeddings: set,
		State:      query.State,
		City:       query.City,
		Weights:    search.DefaultWeights(set),
		Threshold:  s.threshold,
		Limit:      s.limit,
	})
	if err != nil {
		return Match{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "candidate search failed")
	}
	s.observeCandidates(len(candidates))

	// Nothing cleared the similarity bar: a definitive no-match, no model
	// call needed.
	if len(candidates) == 0 {
		return Match{}, nil
	}

	decision, err := s.arbiter.Decide(ctx, arbiter.Query{
		Name:    query.Name,
		Street:  query.Street,
		City:    query.City,
		State:   query.State,
		Zip:     query.Zip,
		Website: query.Website,
	}, candidates)
	if err != nil {
		return Match{}, err
	}
	if decision.ChurchID == nil {
		return Match{}, nil
	}

	for _, cand := range candidates {
		if cand.Church.ID == *decision.ChurchID {
			id := uuid.UUID(cand.Church.ID)
			return Match{
				UUID:    &id,
				Name:    cand.Church.Name,
				Street:  cand.Church.Street,
				City:    cand.Church.City,
				State:   cand.Church.State,
				Zip:     cand.Church.Zip,
				Website: cand.Church.Website,
			}, nil
		}
	}
	// The arbiter contract guarantees membership; reaching here means an
	// implementation bug, not a model hallucination.
	return Match{}, dErrors.New(dErrors.CodeInternal, "arbiter decision references an unknown candidate")
}

func auditQuery(q Query) audit.Query {
	return audit.Query{
		Name:    q.Name,
		Street:  q.Street,
		City:    q.City,
		State:   q.State,
		Zip:     q.Zip,
		Website: q.Website,
	}
}

func auditDecision(m Match) audit.Decision {
	return audit.Decision{
		UUID:    m.UUID,
		Name:    m.Name,
		Street:  m.Street,
		City:    m.City,
		State:   m.State,
		Zip:     m.Zip,
		Website: m.Website,
	}
}

func (s *Service) publish(ctx context.Context, entry audit.Entry) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, entry); err != nil {
		s.logger.WarnContext(ctx, "failed to publish resolution event", "request_id", entry.ID.String(), "error", err)
	}
}

func (s *Service) incrementResolution(outcome string) {
	if s.metrics != nil {
		s.metrics.IncrementResolution(outcome)
	}
}

func (s *Service) incrementRateLimited() {
	if s.metrics != nil {
		s.metrics.IncrementRateLimited()
	}
}

func (s *Service) observeResolution(start time.Time) {
	if s.metrics != nil {
		s.metrics.ObserveResolution(start)
	}
}

func (s *Service) observeCandidates(n int) {
	if s.metrics != nil {
		s.metrics.ObserveCandidates(n)
	}
}
