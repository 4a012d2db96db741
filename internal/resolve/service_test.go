package resolve_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"steeple/internal/apikey"
	"steeple/internal/arbiter"
	arbmock "steeple/internal/arbiter/mock"
	"steeple/internal/audit"
	"steeple/internal/embedding"
	embmock "steeple/internal/embedding/mock"
	"steeple/internal/ratelimit/checker"
	"steeple/internal/registry/models"
	"steeple/internal/resolve"
	"steeple/internal/search"
	"steeple/pkg/domain"
	dErrors "steeple/pkg/domain-errors"
	"steeple/pkg/requestcontext"
)

type ServiceSuite struct {
	suite.Suite
	embedder *embmock.Embedder
	searcher *search.MemorySearcher
	arbiter  *arbmock.Arbiter
	ledger   *audit.MemoryStore
	service  *resolve.Service
	key      apikey.APIKey
	now      time.Time
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	logger := slog.New(slog.DiscardHandler)

	s.embedder = embmock.NewEmbedder()
	s.searcher = search.NewMemory()
	s.arbiter = arbmock.NewArbiter()
	s.ledger = audit.NewMemory()

	orch, err := embedding.NewOrchestrator(s.embedder, logger)
	s.Require().NoError(err)

	admission, err := checker.New(s.ledger, logger)
	s.Require().NoError(err)

	s.service, err = resolve.New(admission, orch, s.searcher, s.arbiter, s.ledger, logger)
	s.Require().NoError(err)

	s.key = apikey.APIKey{
		ID:                domain.APIKeyID(uuid.New()),
		Name:              "test-key",
		RequestsPerMinute: 10,
	}
	s.now = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
}

func (s *ServiceSuite) ctx() context.Context {
	return requestcontext.WithTime(context.Background(), s.now)
}

// addChurch registers a stored organization that scores perfectly against
// queries whose combined text embeds to the same default vector.
func (s *ServiceSuite) addChurch(name, city, state string) models.Church {
	c := models.Church{
		ID:    domain.ChurchID(uuid.New()),
		Name:  name,
		City:  city,
		State: state,
	}
	s.searcher.Add(c, embedding.Set{Combined: []float32{1, 0, 0, 0}})
	return c
}

func (s *ServiceSuite) query() resolve.Query {
	return resolve.Query{Name: "first baptist church", City: "springfield", State: "il"}
}

func (s *ServiceSuite) TestConfidentMatch() {
	s.embedder.Default = []float32{1, 0, 0, 0}
	c := s.addChurch("FIRST BAPTIST CHURCH", "SPRINGFIELD", "IL")
	id := c.ID
	s.arbiter.Decision = arbiter.Decision{ChurchID: &id}

	match, err := s.service.Resolve(s.ctx(), s.key, s.query())
	s.Require().NoError(err)

	s.Require().NotNil(match.UUID)
	s.Equal(uuid.UUID(c.ID), *match.UUID)
	s.Equal("FIRST BAPTIST CHURCH", match.Name)

	entries := s.ledger.EntriesFor(s.key.ID)
	s.Require().Len(entries, 1)
	s.Require().NotNil(entries[0].Decision.UUID)
	s.Equal(uuid.UUID(c.ID), *entries[0].Decision.UUID)
	s.Equal("FIRST BAPTIST CHURCH", entries[0].Query.Name, "query is logged uppercased")
}

func (s *ServiceSuite) TestArbiterDeclinesAllCandidates() {
	s.embedder.Default = []float32{1, 0, 0, 0}
	s.addChurch("FIRST BAPTIST CHURCH", "SPRINGFIELD", "IL")
	s.arbiter.Decision = arbiter.Decision{}

	match, err := s.service.Resolve(s.ctx(), s.key, s.query())
	s.Require().NoError(err)

	s.Nil(match.UUID)
	s.Equal(1, s.arbiter.CallCount())

	entries := s.ledger.EntriesFor(s.key.ID)
	s.Require().Len(entries, 1)
	s.Nil(entries[0].Decision.UUID)
}

func (s *ServiceSuite) TestNoCandidatesSkipsArbitration() {
	s.embedder.Default = []float32{1, 0, 0, 0}
	// Candidate exists but sits outside the geographic gate.
	s.addChurch("FIRST BAPTIST CHURCH", "DALLAS", "TX")

	match, err := s.service.Resolve(s.ctx(), s.key, s.query())
	s.Require().NoError(err)

	s.Nil(match.UUID)
	s.Zero(s.arbiter.CallCount(), "arbitration costs money; an empty shortlist must not reach it")

	s.Len(s.ledger.EntriesFor(s.key.ID), 1)
}

func (s *ServiceSuite) TestRateLimitedRequestIsNotAudited() {
	s.key.RequestsPerMinute = 1
	s.embedder.Default = []float32{1, 0, 0, 0}

	_, err := s.service.Resolve(s.ctx(), s.key, s.query())
	s.Require().NoError(err)

	later := requestcontext.WithTime(context.Background(), s.now.Add(time.Second))
	_, err = s.service.Resolve(later, s.key, s.query())
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeRateLimited))

	s.Len(s.ledger.EntriesFor(s.key.ID), 1, "the rejected request must not consume quota")
}

func (s *ServiceSuite) TestEmptyQueryRejected() {
	_, err := s.service.Resolve(s.ctx(), s.key, resolve.Query{})
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeNoSearchParameters))
	s.Empty(s.ledger.EntriesFor(s.key.ID))
}

func (s *ServiceSuite) TestMissingRequiredFieldsRejected() {
	_, err := s.service.Resolve(s.ctx(), s.key, resolve.Query{Name: "GRACE FELLOWSHIP"})
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeMissingRequired))
	s.Empty(s.ledger.EntriesFor(s.key.ID))
	s.Zero(s.embedder.CallCount(), "validation must reject before any embedding call")
}

func (s *ServiceSuite) TestThirdRequestInWindowThrottled() {
	s.key.RequestsPerMinute = 2
	s.embedder.Default = []float32{1, 0, 0, 0}

	for i := range 2 {
		ctx := requestcontext.WithTime(context.Background(), s.now.Add(time.Duration(i)*time.Second))
		_, err := s.service.Resolve(ctx, s.key, s.query())
		s.Require().NoError(err)
	}

	ctx := requestcontext.WithTime(context.Background(), s.now.Add(2*time.Second))
	_, err := s.service.Resolve(ctx, s.key, s.query())
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeRateLimited))

	s.Len(s.ledger.EntriesFor(s.key.ID), 2)
}

func (s *ServiceSuite) TestEmbeddingFailureStillWritesAuditRow() {
	q := s.query().Normalize()
	s.embedder.Fail[embedding.Input{Name: q.Name, City: q.City, State: q.State}.CombinedText()] = errors.New("provider down")

	_, err := s.service.Resolve(s.ctx(), s.key, s.query())
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeEmbeddingFailed))

	entries := s.ledger.EntriesFor(s.key.ID)
	s.Require().Len(entries, 1, "an admitted request consumes quota even when the pipeline fails")
	s.Nil(entries[0].Decision.UUID)
}

func (s *ServiceSuite) TestArbitrationFailureStillWritesAuditRow() {
	s.embedder.Default = []float32{1, 0, 0, 0}
	s.addChurch("FIRST BAPTIST CHURCH", "SPRINGFIELD", "IL")
	s.arbiter.Err = dErrors.New(dErrors.CodeArbitrationFailed, "model chose an id outside the candidate list")

	_, err := s.service.Resolve(s.ctx(), s.key, s.query())
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeArbitrationFailed))

	entries := s.ledger.EntriesFor(s.key.ID)
	s.Require().Len(entries, 1)
	s.Nil(entries[0].Decision.UUID)
}

func (s *ServiceSuite) TestAuditWriteFailureSurfaces() {
	s.embedder.Default = []float32{1, 0, 0, 0}
	c := s.addChurch("FIRST BAPTIST CHURCH", "SPRINGFIELD", "IL")
	id := c.ID
	s.arbiter.Decision = arbiter.Decision{ChurchID: &id}
	s.ledger.FailNext = errors.New("disk full")

	_, err := s.service.Resolve(s.ctx(), s.key, s.query())
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeAuditWriteFailed))
}

func (s *ServiceSuite) TestMatchOutsideGeographicGateNeverReturned() {
	s.embedder.Default = []float32{1, 0, 0, 0}
	s.addChurch("FIRST BAPTIST CHURCH", "SPRINGFIELD", "MO")

	match, err := s.service.Resolve(s.ctx(), s.key, s.query())
	s.Require().NoError(err)
	s.Nil(match.UUID)
}
