package recommend

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/cellarius/sommelier/metrics"
	"github.com/cellarius/sommelier/vector"
)

// searchTopK is the candidate pool size fetched per query.
const searchTopK = 10

// degradedAdvisory is returned instead of wines when the search stack is
// down. The customer-facing wording stays generic on purpose.
const degradedAdvisory = "I'm having trouble searching the wine list right now. " +
	"Please ask your server for a recommendation, or try again in a moment."

// emptyAdvisory is returned when the search succeeded but nothing on the
// list fits the request.
const emptyAdvisory = "I couldn't find a wine on our list matching that request. " +
	"Try relaxing the price range or describing the style you're after."

// Result is the outcome of one recommendation request. Wines holds exactly
// two entries on success and none otherwise; Advisory carries the
// customer-facing explanation when Wines is empty.
type Result struct {
	Wines    []*SelectedWine
	Advisory string
}

// Degraded reports whether the result was produced without a working
// search stack.
func (r *Result) Degraded() bool {
	return len(r.Wines) == 0 && r.Advisory == degradedAdvisory
}

// Recommender runs the full pipeline: price extraction, similarity search,
// candidate enrichment, LLM selection, and content generation for the two
// selected wines.
type Recommender struct {
	searcher *Searcher
	selector *Selector
	notes    *TastingNotes
	pairings *Pairings
	metrics  *metrics.Exporter
}

// NewRecommender wires the pipeline stages together.
func NewRecommender(searcher *Searcher, selector *Selector, notes *TastingNotes, pairings *Pairings, m *metrics.Exporter) *Recommender {
	return &Recommender{
		searcher: searcher,
		selector: selector,
		notes:    notes,
		pairings: pairings,
		metrics:  m,
	}
}

// Recommend answers a customer query for one restaurant. Infrastructure
// outages never surface as errors; they degrade into an advisory Result.
// A non-nil error means the request itself could not be processed.
func (r *Recommender) Recommend(ctx context.Context, rc *RestaurantContext, query string) (*Result, error) {
	start := time.Now()

	var filter vector.Filter
	if pf := ExtractPriceFilter(query); pf != nil {
		filter = pf.VectorFilter()
		slog.Debug("price filter extracted", "kind", pf.Kind, "min", pf.Min, "max", pf.Max)
	}

	matches, err := r.searcher.Search(ctx, query, searchTopK, rc.WineNamespace(), filter)
	if err != nil {
		if errors.Is(err, ErrUnavailable) {
			slog.Warn("search stack unavailable, serving degraded response",
				"restaurant", rc.ID, "error", err)
			r.metrics.Recommendation("degraded", time.Since(start).Seconds())
			return &Result{Advisory: degradedAdvisory}, nil
		}
		r.metrics.Recommendation("error", time.Since(start).Seconds())
		return nil, err
	}

	if len(matches) == 0 {
		slog.Info("no wines matched query", "restaurant", rc.ID, "query", query)
		r.metrics.Recommendation("empty", time.Since(start).Seconds())
		return &Result{Advisory: emptyAdvisory}, nil
	}

	candidates := EnrichMatches(ctx, matches)
	if len(candidates) == 0 {
		r.metrics.Recommendation("empty", time.Since(start).Seconds())
		return &Result{Advisory: emptyAdvisory}, nil
	}

	// Narrow to two before generating notes and pairings, so the expensive
	// per-wine content is only produced for wines we will actually show.
	selected := r.selector.SelectTwo(ctx, query, candidates)

	wines := make([]*SelectedWine, len(selected))

	// Pairings require both food language in the query and a restaurant
	// that opted in; otherwise the field stays null.
	wantsPairing := WantsFoodPairing(query) && rc.EnableMenuPairing

	g, gctx := errgroup.WithContext(ctx)
	for i, c := range selected {
		g.Go(func() error {
			wine := &SelectedWine{Candidate: *c}
			wine.TastingNote = r.notes.Get(gctx, c)

			if wantsPairing {
				pairing := r.pairings.MenuPairing(gctx, wine, rc)
				if pairing == "" {
					pairing = r.pairings.Get(gctx, c.WineType, c.Region, c.Grapes)
				}
				if pairing != "" {
					wine.FoodPairing = &pairing
				}
			}

			wines[i] = wine
			return nil
		})
	}
	// Content generation never fails hard; each stage has its own fallback.
	_ = g.Wait()

	r.metrics.Recommendation("ok", time.Since(start).Seconds())
	slog.Info("recommendation served",
		"restaurant", rc.ID,
		"wines", len(wines),
		"duration", time.Since(start))
	return &Result{Wines: wines}, nil
}
