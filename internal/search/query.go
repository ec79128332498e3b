// Package search defines the structured query model spoken to the workout
// search backend and the Client interface implemented by backends.
package search

import "context"

// Clause is one boolean-query building block.
type Clause interface {
	// body renders the clause in the backend's query DSL.
	body() map[string]any
}

// Term matches a field value exactly. Boost > 0 weights the match when the
// clause sits in a should list.
type Term struct {
	Field string
	Value string
	Boost float64
}

func (t Term) body() map[string]any {
	if t.Boost > 0 {
		return map[string]any{"term": map[string]any{t.Field: map[string]any{"value": t.Value, "boost": t.Boost}}}
	}
	return map[string]any{"term": map[string]any{t.Field: t.Value}}
}

// Terms matches any of a set of values on one field.
type Terms struct {
	Field  string
	Values []string
}

func (t Terms) body() map[string]any {
	return map[string]any{"terms": map[string]any{t.Field: t.Values}}
}

// Range bounds a numeric field inclusively.
type Range struct {
	Field string
	GTE   int
	LTE   int
}

func (r Range) body() map[string]any {
	return map[string]any{"range": map[string]any{r.Field: map[string]any{"gte": r.GTE, "lte": r.LTE}}}
}

// MultiMatch runs a text query across several fields; fields may carry
// "name^2" style boosts.
type MultiMatch struct {
	Query  string
	Fields []string
}

func (m MultiMatch) body() map[string]any {
	return map[string]any{"multi_match": map[string]any{"query": m.Query, "fields": m.Fields}}
}

// Match runs a single-field text match.
type Match struct {
	Field string
	Value string
}

func (m Match) body() map[string]any {
	return map[string]any{"match": map[string]any{m.Field: m.Value}}
}

// MatchAll matches every document in scope of the filters.
type MatchAll struct{}

func (MatchAll) body() map[string]any {
	return map[string]any{"match_all": map[string]any{}}
}

// Request is a boolean query with a result size cap. Filter clauses scope
// without scoring, Must clauses score, Should clauses boost, MustNot clauses
// exclude.
type Request struct {
	Size    int
	Filter  []Clause
	Must    []Clause
	Should  []Clause
	MustNot []Clause
}

// Body renders the request as the backend's search body.
func (r Request) Body() map[string]any {
	return map[string]any{
		"size": r.Size,
		"query": map[string]any{
			"bool": map[string]any{
				"filter":   bodies(r.Filter),
				"must":     bodies(r.Must),
				"should":   bodies(r.Should),
				"must_not": bodies(r.MustNot),
			},
		},
	}
}

func bodies(clauses []Clause) []map[string]any {
	rendered := make([]map[string]any, 0, len(clauses))
	for _, clause := range clauses {
		rendered = append(rendered, clause.body())
	}
	return rendered
}

// Source carries the indexed fields the core inspects after a search.
type Source struct {
	ID           string `json:"id"`
	WorkoutID    string `json:"workout_id"`
	InstructorID string `json:"instructor_id"`
}

// Hit is one scored document returned by the backend, best first.
type Hit struct {
	ID     string
	Score  float64
	Source Source
}

// Client is the minimal search-backend surface the core depends on. Searches
// are pure, idempotent reads.
type Client interface {
	Search(ctx context.Context, index string, req Request) ([]Hit, error)
}
