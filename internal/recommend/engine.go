package recommend

import (
	"context"
	"fmt"
	"log"

	"example.com/recommendation/internal/domain"
	"example.com/recommendation/internal/observability"
	"example.com/recommendation/internal/query"
	"example.com/recommendation/internal/search"
)

// Option configures optional Engine behaviour.
type Option func(*Engine)

// WithLogger overrides the logger used for degradation warnings.
func WithLogger(logger *log.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// Engine is the request-time entry point. It gates between the cold-start
// and structured-search paths and owns the single-hop fallback between them.
// The read path performs no writes, so cancellation simply abandons the
// pending reads.
type Engine struct {
	store     domain.Store
	coldStart *ColdStart
	searcher  *Searcher
	logger    *log.Logger
}

// NewEngine constructs an Engine over the given storage and search backends.
func NewEngine(store domain.Store, client search.Client, index string, opts ...Option) *Engine {
	e := &Engine{
		store:     store,
		coldStart: NewColdStart(store),
		searcher:  NewSearcher(store, client, index),
		logger:    log.New(log.Writer(), "[recommend] ", log.LstdFlags),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Recommend returns an ordered list of workout ids for the user. Unknown
// users fail with ErrUserNotFound; a search backend failure degrades to the
// cold-start path in a single hop.
func (e *Engine) Recommend(ctx context.Context, userID, queryText string) ([]string, error) {
	profile, err := e.store.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, fmt.Errorf("user %s: %w", userID, domain.ErrUserNotFound)
	}

	parsed := query.Parse(queryText)
	if parsed.Empty() {
		observability.RecordRecommendation(observability.PathColdStart)
		return e.coldStart.Generate(ctx, profile)
	}

	results, err := e.searcher.Run(ctx, profile, parsed)
	if err != nil {
		e.logger.Printf("warning: search backend unavailable, degrading to cold-start: %v", err)
		observability.RecordSearchFallback()
		observability.RecordRecommendation(observability.PathFallback)
		return e.coldStart.Generate(ctx, profile)
	}

	observability.RecordRecommendation(observability.PathSearch)
	return results, nil
}
