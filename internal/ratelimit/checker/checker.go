// Package checker admits or rejects requests against each API key's
// per-minute quota, counted from the audit ledger.
package checker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"steeple/internal/apikey"
	"steeple/pkg/domain"
	dErrors "steeple/pkg/domain-errors"
	"steeple/pkg/requestcontext"
)

// DefaultWindow is the trailing interval the quota applies to.
const DefaultWindow = time.Minute

// DefaultTimeout bounds the ledger count read. Admission sits on the hot
// path of every request, so the bound is deliberately tight.
const DefaultTimeout = 2 * time.Second

// Ledger is the slice of the audit store the checker needs.
type Ledger interface {
	CountSince(ctx context.Context, keyID domain.APIKeyID, since time.Time) (int, error)
}

// Checker counts prior admitted requests in the trailing window. The ledger
// is the single source of truth: the row written for this request lands
// after admission, so a key with quota N gets exactly N admissions per
// window.
type Checker struct {
	ledger  Ledger
	window  time.Duration
	timeout time.Duration
	logger  *slog.Logger
}

type Option func(*Checker)

// WithWindow overrides the trailing window length.
func WithWindow(d time.Duration) Option {
	return func(c *Checker) {
		if d > 0 {
			c.window = d
		}
	}
}

// WithTimeout overrides the ledger read deadline.
func WithTimeout(d time.Duration) Option {
	return func(c *Checker) {
		if d > 0 {
			c.timeout = d
		}
	}
}

func New(ledger Ledger, logger *slog.Logger, opts ...Option) (*Checker, error) {
	if ledger == nil {
		return nil, fmt.Errorf("ledger is required")
	}

	c := &Checker{
		ledger:  ledger,
		window:  DefaultWindow,
		timeout: DefaultTimeout,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Check admits the request or returns a coded error. A ledger read failure
// fails closed: admitting on an unknown count would let an outage void
// every quota at once.
func (c *Checker) Check(ctx context.Context, key apikey.APIKey) error {
	if key.RequestsPerMinute <= 0 {
		return dErrors.New(dErrors.CodeRateLimited, "rate limit exceeded")
	}

	since := requestcontext.Now(ctx).Add(-c.window)
	countCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	count, err := c.ledger.CountSince(countCtx, key.ID, since)
	if err != nil {
		c.logger.ErrorContext(ctx, "rate limit ledger read failed, rejecting",
			"api_key_id", key.ID.String(),
			"error", err,
		)
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "rate limit state unavailable")
	}

	if count >= key.RequestsPerMinute {
		return dErrors.New(dErrors.CodeRateLimited, "rate limit exceeded")
	}
	return nil
}
