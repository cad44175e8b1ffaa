package recommend

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cellarius/sommelier/ai/llm"
	"github.com/cellarius/sommelier/cache"
	"github.com/cellarius/sommelier/metrics"
)

const menuSearchTopK = 3

// foodKeywords is the fixed vocabulary signalling food intent in a query.
var foodKeywords = []string{
	"food", "pair", "pairing", "dish", "eat", "eating",
	"dinner", "lunch", "meal", "course", "menu", "steak",
	"fish", "chicken", "pasta", "seafood", "appetizer",
	"dessert", "entree", "starter", "lamb", "pork", "beef",
	"salad", "soup", "cheese", "charcuterie",
}

// WantsFoodPairing reports whether the query mentions food or pairings.
func WantsFoodPairing(query string) bool {
	q := strings.ToLower(query)
	for _, kw := range foodKeywords {
		if strings.Contains(q, kw) {
			return true
		}
	}
	return false
}

// Pairings generates food pairings: a generic, context-free suggestion by
// wine style, and a menu-aware pick from the restaurant's own dishes.
type Pairings struct {
	llm      llm.Service
	searcher *Searcher
	cache    cache.Cache
	ttl      time.Duration
	metrics  *metrics.Exporter
}

// NewPairings creates a new pairing service.
func NewPairings(svc llm.Service, searcher *Searcher, c cache.Cache, ttl time.Duration, m *metrics.Exporter) *Pairings {
	return &Pairings{llm: svc, searcher: searcher, cache: c, ttl: ttl, metrics: m}
}

// Get returns a context-free pairing suggestion, never empty.
func (p *Pairings) Get(ctx context.Context, wineType WineType, region, grapes string) string {
	key := cacheKey("pairing", string(wineType), region, grapes)

	if cached, ok := p.cache.Get(ctx, key); ok {
		p.metrics.CacheHit("pairing")
		slog.Debug("cache hit: food pairing", "wine_type", wineType)
		return cached
	}
	p.metrics.CacheMiss("pairing")

	prompt := fmt.Sprintf(`Suggest 2-3 food pairings for this wine. Be brief and specific.

Wine: %s from %s
Grapes: %s

Format: "Pairs well with [food 1], [food 2], and [food 3]."`, wineType, region, grapes)

	p.metrics.LLMCall("pairing")
	pairing, err := p.llm.Complete(ctx, prompt, 0.5, 100)
	if err != nil || pairing == "" {
		if err != nil {
			p.metrics.LLMError("pairing")
			slog.Error("food pairing generation failed", "wine_type", wineType, "error", err)
		}
		return fallbackPairing(wineType)
	}

	p.cache.Set(ctx, key, pairing, p.ttl)
	return pairing
}

// MenuPairing picks the best dish from the restaurant's own menu for the
// wine. Returns empty when the feature is disabled for the restaurant or
// the menu search yields nothing; callers surface that as absence, not as
// a generation failure.
func (p *Pairings) MenuPairing(ctx context.Context, wine *SelectedWine, rc *RestaurantContext) string {
	if !rc.EnableMenuPairing {
		return ""
	}

	key := cacheKey("menu_pairing", wine.ID, rc.ID)
	if cached, ok := p.cache.Get(ctx, key); ok {
		p.metrics.CacheHit("menu_pairing")
		slog.Debug("cache hit: menu pairing", "wine_id", wine.ID)
		return cached
	}
	p.metrics.CacheMiss("menu_pairing")

	// Describe the wine so dishes can be matched semantically.
	wineQuery := fmt.Sprintf("%s %s wine from %s. %s",
		wine.Grapes, wine.WineType, wine.Region, wine.TastingNote)

	dishes, err := p.searcher.Search(ctx, wineQuery, menuSearchTopK, rc.MenuNamespace(), nil)
	if err != nil {
		slog.Debug("menu search failed", "restaurant", rc.ID, "error", err)
		return ""
	}
	if len(dishes) == 0 {
		return ""
	}

	var options strings.Builder
	for i, dish := range dishes {
		fmt.Fprintf(&options, "%d. %s - %s\n",
			i+1,
			metaString(dish.Metadata, "name", "Unknown"),
			metaString(dish.Metadata, "description", ""),
		)
	}

	prompt := fmt.Sprintf(`You are an expert sommelier. Pick the single best dish from this restaurant's menu to pair with this wine. Explain in 1-2 sentences why it pairs well.

Wine: %s %s - %s from %s
Tasting: %s

Menu options:
%s
Respond with the dish name and a brief pairing explanation.`,
		wine.Producer, wine.WineName, wine.Grapes, wine.Region, wine.TastingNote, options.String())

	p.metrics.LLMCall("menu_pairing")
	pairing, err := p.llm.Complete(ctx, prompt, 0.5, 150)
	if err != nil {
		p.metrics.LLMError("menu_pairing")
		slog.Error("menu pairing generation failed", "wine_id", wine.ID, "error", err)
		return ""
	}

	if pairing != "" {
		p.cache.Set(ctx, key, pairing, p.ttl)
	}
	return pairing
}

func fallbackPairing(wineType WineType) string {
	switch wineType {
	case WineTypeRed:
		return "Pairs well with grilled meats, hearty stews, and aged cheeses."
	case WineTypeWhite:
		return "Pairs well with seafood, poultry, and light pasta dishes."
	default:
		return "Versatile pairing options available."
	}
}
