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

const (
	// minValidNoteLength is the floor below which a note is a placeholder.
	minValidNoteLength = 20
	// minCacheableNoteLength guards the cache write path: only substantial
	// generated or curated notes are worth memoizing. Templated fallbacks
	// stay below this so a later query retries generation.
	minCacheableNoteLength = 50

	producerSearchTopK = 3
)

var placeholderMarkers = []string{
	"no tasting note",
	"not provided",
	"not available",
}

// isValidTastingNote reports whether a note is genuine content rather than
// a placeholder. Placeholder notes must never be served or cached.
func isValidTastingNote(note string) bool {
	if len(note) <= minValidNoteLength {
		return false
	}
	lower := strings.ToLower(note)
	for _, marker := range placeholderMarkers {
		if strings.Contains(lower, marker) {
			return false
		}
	}
	return true
}

// TastingNotes resolves tasting notes for selected wines: cache first, then
// the curated producers reference set, then LLM generation, with a templated
// sentence as the floor. The result is always non-empty.
type TastingNotes struct {
	llm      llm.Service
	searcher *Searcher
	cache    cache.Cache
	ttl      time.Duration
	metrics  *metrics.Exporter
}

// NewTastingNotes creates a new tasting note service.
func NewTastingNotes(svc llm.Service, searcher *Searcher, c cache.Cache, ttl time.Duration, m *metrics.Exporter) *TastingNotes {
	return &TastingNotes{llm: svc, searcher: searcher, cache: c, ttl: ttl, metrics: m}
}

// Get returns a tasting note for the wine, never empty.
func (t *TastingNotes) Get(ctx context.Context, wine *Candidate) string {
	key := cacheKey("tasting", wine.Producer, wine.Region, wine.WineName)

	if cached, ok := t.cache.Get(ctx, key); ok {
		if isValidTastingNote(cached) {
			t.metrics.CacheHit("tasting")
			slog.Debug("cache hit: tasting note", "producer", wine.Producer)
			return cached
		}
		// A placeholder slipped into the cache; evict it so it can never
		// be served again, then regenerate.
		slog.Debug("cache had placeholder note, evicting", "producer", wine.Producer)
		t.cache.Delete(ctx, key)
	}
	t.metrics.CacheMiss("tasting")

	if note := t.fromProducers(ctx, wine); note != "" {
		if len(note) > minCacheableNoteLength {
			t.cache.Set(ctx, key, note, t.ttl)
		}
		return note
	}

	note := t.generate(ctx, wine)
	if len(note) > minCacheableNoteLength && isValidTastingNote(note) {
		t.cache.Set(ctx, key, note, t.ttl)
	}
	return note
}

// fromProducers looks for a curated note in the shared producers namespace.
func (t *TastingNotes) fromProducers(ctx context.Context, wine *Candidate) string {
	query := wine.Producer + " " + wine.Region
	matches, err := t.searcher.Search(ctx, query, producerSearchTopK, ProducersNamespace, nil)
	if err != nil {
		// A reference-set outage only costs us the shortcut.
		slog.Debug("producer reference search failed", "error", err)
		return ""
	}

	producerLower := strings.ToLower(wine.Producer)
	for _, m := range matches {
		matchProducer := strings.ToLower(metaString(m.Metadata, "producer", ""))
		if matchProducer == "" || !strings.Contains(matchProducer, producerLower) {
			continue
		}
		note := metaString(m.Metadata, "tasting_note", "")
		if isValidTastingNote(note) {
			return note
		}
	}
	return ""
}

func (t *TastingNotes) generate(ctx context.Context, wine *Candidate) string {
	name := wine.WineName
	if name == "" {
		name = wine.Region
	}

	prompt := fmt.Sprintf(`Write a tasting note for this wine in exactly 3-4 sentences as a single paragraph. No headers, no sections, no bullet points, no markdown formatting. Just flowing prose.

Producer: %s
Wine: %s
Region: %s
Grapes: %s
Type: %s

Cover aromas, flavors, body, and finish in a concise, elegant paragraph. Be specific to this wine.`,
		wine.Producer, name, wine.Region, wine.Grapes, wine.WineType)

	t.metrics.LLMCall("tasting_note")
	note, err := t.llm.Complete(ctx, prompt, 0.7, 250)
	if err != nil {
		t.metrics.LLMError("tasting_note")
		slog.Error("tasting note generation failed", "producer", wine.Producer, "error", err)
		return templatedNote(wine)
	}
	if !isValidTastingNote(note) {
		return templatedNote(wine)
	}
	return note
}

// templatedNote is the last-resort sentence; it is never cached.
func templatedNote(wine *Candidate) string {
	grapes := wine.Grapes
	if grapes == "" {
		grapes = "classic varietals"
	}
	return fmt.Sprintf("A %s from %s featuring %s.", wine.WineType, wine.Region, grapes)
}
