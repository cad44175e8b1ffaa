package recommend

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/cellarius/sommelier/vector"
)

// enrichConcurrency caps the enrichment fan-out per request.
const enrichConcurrency = 5

// EnrichMatches maps raw similarity matches to normalized candidates.
// Each enrichment is a pure metadata transform with no ordering dependency,
// so matches are processed concurrently under a fixed cap. A match without
// metadata is skipped, never fatal.
func EnrichMatches(ctx context.Context, matches []vector.Match) []*Candidate {
	candidates := make([]*Candidate, len(matches))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(enrichConcurrency)

	for i, m := range matches {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			if len(m.Metadata) == 0 {
				slog.Warn("skipping match without metadata", "id", m.ID)
				return nil
			}
			candidates[i] = newCandidate(m)
			return nil
		})
	}
	// The only per-match failure mode is cancellation; individual skips
	// leave a nil slot instead of propagating an error.
	_ = g.Wait()

	out := make([]*Candidate, 0, len(candidates))
	for _, c := range candidates {
		if c != nil {
			out = append(out, c)
		}
	}
	return out
}
