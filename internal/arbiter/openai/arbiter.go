// Package openai implements arbitration via an OpenAI-compatible chat model
// in JSON mode.
package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"steeple/internal/arbiter"
	"steeple/internal/platform/config"
	"steeple/internal/search"
	"steeple/pkg/domain"
	dErrors "steeple/pkg/domain-errors"
)

const systemPrompt = `You are a church searching assistant. You take the users request and then match to the most similar church based on the church options given to you. You only return a JSON object with the key "id" indicating the ID of the church that is most similar to the search term. The results that are given to you are from a vector similarity search so they are potentially close, but you are the last filter to make sure the search is as correct as possible. If you are absolutely unsure return an "id" value of null.`

// defaultCallTimeout bounds a single chat completion so a hung model backend
// cannot stall a resolution request past the caller's patience.
const defaultCallTimeout = 15 * time.Second

// Arbiter asks a chat model to pick the matching candidate. Temperature is
// deliberately above zero: near-duplicate registry rows have no single
// correct answer and a slightly warm model refuses less.
type Arbiter struct {
	model       llms.Model
	temperature float64
	callTimeout time.Duration
	logger      *slog.Logger
}

// New creates an arbiter from the AI configuration.
func New(cfg config.AI, logger *slog.Logger) (*Arbiter, error) {
	opts := []openai.Option{
		openai.WithToken(cfg.Token),
		openai.WithModel(cfg.ChatModel),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}

	model, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("create openai client: %w", err)
	}
	a := NewWithModel(model, logger)
	if cfg.CallTimeout > 0 {
		a.callTimeout = cfg.CallTimeout
	}
	return a, nil
}

// NewWithModel wires an arbiter over any langchaingo model. Tests use this
// to script responses.
func NewWithModel(model llms.Model, logger *slog.Logger) *Arbiter {
	return &Arbiter{
		model:       model,
		temperature: 0.5,
		callTimeout: defaultCallTimeout,
		logger:      logger.With("component", "openai-arbiter"),
	}
}

var _ arbiter.Arbiter = (*Arbiter)(nil)

// verdict matches the JSON object the model is instructed to return.
type verdict struct {
	ID *string `json:"id"`
}

func (a *Arbiter) Decide(ctx context.Context, query arbiter.Query, candidates []search.Candidate) (arbiter.Decision, error) {
	content := []llms.MessageContent{
		{
			Role:  llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{llms.TextPart(systemPrompt)},
		},
		{
			Role:  llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{llms.TextPart(buildUserPrompt(query, candidates))},
		},
	}

	callCtx, cancel := context.WithTimeout(ctx, a.callTimeout)
	defer cancel()

	response, err := a.model.GenerateContent(callCtx, content,
		llms.WithTemperature(a.temperature),
		llms.WithJSONMode(),
	)
	if err != nil {
		return arbiter.Decision{}, dErrors.Wrap(err, dErrors.CodeArbitrationFailed, "arbitration call failed")
	}
	if len(response.Choices) == 0 || response.Choices[0].Content == "" {
		return arbiter.Decision{}, dErrors.New(dErrors.CodeArbitrationFailed, "model returned no content")
	}

	raw := stripFences(response.Choices[0].Content)

	var v verdict
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		a.logger.WarnContext(ctx, "unparseable arbitration response", "response", raw, "error", err)
		return arbiter.Decision{}, dErrors.Wrap(err, dErrors.CodeArbitrationFailed, "model response was not the expected JSON object")
	}

	if v.ID == nil {
		return arbiter.Decision{}, nil
	}

	chosen, err := uuid.Parse(*v.ID)
	if err != nil {
		return arbiter.Decision{}, dErrors.New(dErrors.CodeArbitrationFailed, "model returned a malformed candidate id")
	}

	// The model must pick from the shortlist it was shown. Anything else is
	// a hallucination and has to surface as a failure, not a no-match.
	for _, cand := range candidates {
		if uuid.UUID(cand.Church.ID) == chosen {
			id := domain.ChurchID(chosen)
			return arbiter.Decision{ChurchID: &id}, nil
		}
	}
	a.logger.WarnContext(ctx, "model chose an id outside the candidate list", "id", chosen.String())
	return arbiter.Decision{}, dErrors.New(dErrors.CodeArbitrationFailed, "model chose an id outside the candidate list")
}

func buildUserPrompt(query arbiter.Query, candidates []search.Candidate) string {
	var b strings.Builder
	fmt.Fprintf(&b, "I am looking for a church named %s located at %s, %s, %s %s with the website %s. Here are the potential options:\n",
		query.Name, query.Street, query.City, query.State, query.Zip, query.Website)
	for _, cand := range candidates {
		c := cand.Church
		fmt.Fprintf(&b, "ID: %s, Name: %s, Street: %s, City: %s, State: %s, Zip: %s, Website: %s\n",
			c.ID.String(), c.Name, c.Street, c.City, c.State, c.Zip, c.Website)
	}
	return b.String()
}

// stripFences removes markdown code fences some models wrap around JSON.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
