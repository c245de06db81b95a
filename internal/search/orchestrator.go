// Package search coordinates debounced catalog searches: cache lookup,
// local rate limiting, fetching, and surfacing errors to a session.
package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/lepinkainen/bookfinder/internal/book"
	"github.com/lepinkainen/bookfinder/internal/cache"
	apperrors "github.com/lepinkainen/bookfinder/internal/errors"
	"github.com/lepinkainen/bookfinder/internal/ratelimit"
)

const (
	// NoResultsMessage is informational, but displayed like an error.
	NoResultsMessage = "No books found. Try a different search term."

	localRateLimitFormat = "Please wait %d seconds before trying again."
)

// Fetcher performs one remote catalog search.
type Fetcher interface {
	Search(ctx context.Context, query string) ([]book.Record, error)
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc func(ctx context.Context, query string) ([]book.Record, error)

// Search implements Fetcher.
func (f FetcherFunc) Search(ctx context.Context, query string) ([]book.Record, error) {
	return f(ctx, query)
}

// Outcome describes where a cycle ended.
type Outcome struct {
	State State
	Query string
	// Records is the list to publish. Only meaningful for CacheHit and Success.
	Records []book.Record
	// Message is the text to show. A CacheHit carries none and leaves the
	// displayed message as it was; for other states empty clears it.
	Message string
	// Err is the underlying error for RateLimited and Failed.
	Err error
}

// Orchestrator runs the cache, rate limit and fetch steps. The cache and
// limiter are injected so independent orchestrators don't share state.
type Orchestrator struct {
	fetcher Fetcher
	cache   *cache.ResultCache
	limiter *ratelimit.Interval
	now     func() time.Time
}

// OrchestratorOption configures an Orchestrator.
type OrchestratorOption func(*Orchestrator)

// WithClock replaces time.Now for rate-limit decisions.
func WithClock(now func() time.Time) OrchestratorOption {
	return func(o *Orchestrator) { o.now = now }
}

// NewOrchestrator wires an orchestrator. Nil cache or limiter get fresh instances.
func NewOrchestrator(fetcher Fetcher, resultCache *cache.ResultCache, limiter *ratelimit.Interval, opts ...OrchestratorOption) *Orchestrator {
	if resultCache == nil {
		resultCache = cache.New()
	}
	if limiter == nil {
		limiter = ratelimit.NewInterval("catalog", ratelimit.DefaultMinInterval)
	}
	o := &Orchestrator{
		fetcher: fetcher,
		cache:   resultCache,
		limiter: limiter,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Cache returns the result cache in use.
func (o *Orchestrator) Cache() *cache.ResultCache {
	return o.cache
}

// Limiter returns the rate limiter in use.
func (o *Orchestrator) Limiter() *ratelimit.Interval {
	return o.limiter
}

// Resolve performs the steps that need no network: a cache lookup, then the
// limiter. It ends in CacheHit or RateLimited, or returns Fetching when the
// caller holds a permit and must call Fetch. Blank queries stay Idle.
func (o *Orchestrator) Resolve(query string) Outcome {
	if strings.TrimSpace(query) == "" {
		return Outcome{State: Idle, Query: query}
	}

	if records, ok := o.cache.Lookup(query); ok {
		slog.Debug("Cache hit", "query", query, "count", len(records))
		return Outcome{State: CacheHit, Query: query, Records: records}
	}

	dec := o.limiter.TryAcquire(o.now())
	if !dec.Allowed {
		err := apperrors.NewRateLimitErrorWithRetry("search request limit reached", dec.RetryAfter)
		slog.Info("Search rate limited", "limiter", o.limiter.Name(), "query", query, "retry_after", dec.RetryAfter)
		return Outcome{
			State:   RateLimited,
			Query:   query,
			Message: fmt.Sprintf(localRateLimitFormat, err.RetryAfterSeconds()),
			Err:     err,
		}
	}

	return Outcome{State: Fetching, Query: query}
}

// Fetch requests query from the catalog, caches a successful result and
// converts any failure into a display message. Call it only after Resolve
// returned Fetching.
func (o *Orchestrator) Fetch(ctx context.Context, query string) Outcome {
	records, err := o.fetcher.Search(ctx, query)
	if err != nil {
		slog.Warn("Search failed", "query", query, "error", err)
		return Outcome{State: Failed, Query: query, Message: failureMessage(err), Err: err}
	}
	if records == nil {
		records = []book.Record{}
	}

	o.cache.Store(query, records)
	slog.Debug("Cached search result", "query", query, "count", len(records), "cached_queries", o.cache.Len())

	out := Outcome{State: Success, Query: query, Records: records}
	if len(records) == 0 {
		out.Message = NoResultsMessage
	}
	return out
}

// Search runs a whole cycle: Resolve, then Fetch when permitted.
func (o *Orchestrator) Search(ctx context.Context, query string) Outcome {
	out := o.Resolve(query)
	if out.State != Fetching {
		return out
	}
	return o.Fetch(ctx, query)
}

func failureMessage(err error) string {
	var upstream *apperrors.UpstreamRateLimitError
	var fetchErr *apperrors.FetchError
	switch {
	case errors.As(err, &upstream):
		return upstream.Message
	case errors.As(err, &fetchErr):
		return fetchErr.Message
	default:
		return err.Error()
	}
}
