package recommend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cellarius/sommelier/ai/embedding"
	"github.com/cellarius/sommelier/metrics"
	"github.com/cellarius/sommelier/vector"
)

// ErrUnavailable signals that the embedding or vector collaborator is down.
// The orchestration layer converts it to a degraded, friendly response.
var ErrUnavailable = embedding.ErrUnavailable

// Searcher binds the embedding provider to the vector index and scopes
// queries to the right namespace.
type Searcher struct {
	embedder embedding.Provider
	index    vector.Index
	metrics  *metrics.Exporter
}

// NewSearcher creates a new Searcher.
func NewSearcher(embedder embedding.Provider, index vector.Index, m *metrics.Exporter) *Searcher {
	return &Searcher{embedder: embedder, index: index, metrics: m}
}

// Search embeds the query text and runs a similarity search in the given
// namespace. Embedding and index outages both surface as ErrUnavailable.
func (s *Searcher) Search(ctx context.Context, query string, topK int, namespace string, filter vector.Filter) ([]vector.Match, error) {
	vectors, err := s.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(vectors) == 0 {
		return nil, fmt.Errorf("embed query: %w: no vector returned", embedding.ErrUnavailable)
	}

	s.metrics.Search()
	matches, err := s.index.Query(ctx, vectors[0], topK, namespace, filter)
	if err != nil {
		// Index outages fold into the same sentinel as embedding outages
		// so callers only have one degraded signal to check.
		if errors.Is(err, vector.ErrUnavailable) {
			err = fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		return nil, fmt.Errorf("vector query in %s: %w", namespace, err)
	}

	slog.Debug("vector search completed", "namespace", namespace, "top_k", topK, "matches", len(matches))
	return matches, nil
}
