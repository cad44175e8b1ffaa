// Package vector provides the vector index contract used for wine, producer,
// and menu similarity search, with Postgres/pgvector and in-memory backends.
package vector

import (
	"context"
	"errors"
)

// ErrUnavailable is returned when the index backend cannot be reached.
var ErrUnavailable = errors.New("vector index unavailable")

// Vector is a single embedded record.
type Vector struct {
	ID       string
	Values   []float32
	Metadata map[string]any
}

// Match represents a similarity search result.
type Match struct {
	ID       string
	Score    float32 // Cosine similarity, 0-1, higher is more similar
	Metadata map[string]any
}

// Filter is a metadata predicate evaluated by the index backend.
// A plain value means equality. Operator maps support:
//
//	{"$in": []string{...}}           membership
//	{"$gte": n, "$lte": n}           closed numeric range
//	{"$gte": n} / {"$lte": n}        open-ended numeric bound
//
// This mirrors the filter dialect the ingestion side writes.
type Filter map[string]any

// Index is the vector store contract.
type Index interface {
	// Upsert inserts or replaces vectors within a namespace.
	Upsert(ctx context.Context, vectors []Vector, namespace string) error

	// Query returns the topK most similar vectors in a namespace,
	// restricted to records matching the filter. A nil filter matches all.
	Query(ctx context.Context, vector []float32, topK int, namespace string, filter Filter) ([]Match, error)

	// Delete removes all vectors in a namespace matching the filter.
	// A nil filter removes the whole namespace.
	Delete(ctx context.Context, filter Filter, namespace string) error
}
