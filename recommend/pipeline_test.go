package recommend

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cellarius/sommelier/ai/embedding"
	"github.com/cellarius/sommelier/cache"
	"github.com/cellarius/sommelier/vector"
)

// scriptedLLM routes each pipeline stage to a canned reply based on the
// prompt shape.
func scriptedLLM() *fakeLLM {
	return newFakeLLM(func(prompt string) (string, error) {
		switch {
		case strings.Contains(prompt, "Select the BEST 2 wines"):
			return "1,2", nil
		case strings.Contains(prompt, "tasting note"):
			return generatedNote, nil
		case strings.Contains(prompt, "food pairings"):
			return "Pairs well with roast duck, mushroom risotto, and hard cheeses.", nil
		case strings.Contains(prompt, "best dish"):
			return "The braised lamb shank. Its richness matches the wine's structure.", nil
		}
		return "", fmt.Errorf("unexpected prompt: %s", prompt)
	})
}

func seedWineList(t *testing.T, idx vector.Index, namespace string) {
	t.Helper()
	wines := []vector.Vector{
		{
			ID:     "w1",
			Values: []float32{1, 0, 0},
			Metadata: map[string]any{
				"producer": "Domaine Alpha", "wine_name": "Vieilles Vignes",
				"region": "Burgundy", "country": "France",
				"grapes": "Pinot Noir", "wine_type": "red",
				"price": 45, "vintage": "2019",
			},
		},
		{
			ID:     "w2",
			Values: []float32{0.9, 0.1, 0},
			Metadata: map[string]any{
				"producer": "Bodega Beta", "wine_name": "Reserva",
				"region": "Rioja", "country": "Spain",
				"grapes": "Tempranillo", "wine_type": "red",
				"price": 120, "vintage": "2016",
			},
		},
		{
			ID:     "w3",
			Values: []float32{0.8, 0.2, 0},
			Metadata: map[string]any{
				"producer": "Weingut Gamma", "wine_name": "Trocken",
				"region": "Mosel", "country": "Germany",
				"grapes": "Riesling", "wine_type": "white",
				"price": 60, "vintage": "2021",
			},
		},
	}
	require.NoError(t, idx.Upsert(context.Background(), wines, namespace))
}

func testRecommender(t *testing.T, llm *fakeLLM, embedder *fakeEmbedder, idx vector.Index) *Recommender {
	t.Helper()
	searcher := NewSearcher(embedder, idx, nil)
	c := cache.NewLRU(64, time.Hour)
	return NewRecommender(
		searcher,
		NewSelector(llm, nil),
		NewTastingNotes(llm, searcher, c, time.Hour, nil),
		NewPairings(llm, searcher, c, time.Hour, nil),
		nil,
	)
}

func bistro(menuPairing bool) *RestaurantContext {
	return &RestaurantContext{ID: "bistro", Name: "Bistro Margaux", EnableMenuPairing: menuPairing}
}

func TestRecommendHappyPath(t *testing.T) {
	idx := vector.NewMemory()
	rc := bistro(false)
	seedWineList(t, idx, rc.WineNamespace())

	r := testRecommender(t, scriptedLLM(), &fakeEmbedder{vec: []float32{1, 0, 0}}, idx)

	result, err := r.Recommend(context.Background(), rc, "a nice red wine")
	require.NoError(t, err)
	require.Len(t, result.Wines, 2)
	assert.Empty(t, result.Advisory)
	assert.False(t, result.Degraded())

	// The scripted selection picks the two highest-similarity wines.
	assert.Equal(t, "w1", result.Wines[0].ID)
	assert.Equal(t, "w2", result.Wines[1].ID)

	for _, wine := range result.Wines {
		assert.NotEmpty(t, wine.TastingNote)
		assert.Nil(t, wine.FoodPairing, "no food language in the query")
	}
}

func TestRecommendBoldRedUnderBudget(t *testing.T) {
	idx := vector.NewMemory()
	rc := bistro(false)

	reds := []vector.Vector{
		{ID: "r1", Values: []float32{1, 0, 0}, Metadata: map[string]any{
			"producer": "A", "region": "Napa", "wine_type": "red", "price": 65}},
		{ID: "r2", Values: []float32{0.95, 0.05, 0}, Metadata: map[string]any{
			"producer": "B", "region": "Barossa", "wine_type": "red", "price": 80}},
		{ID: "r3", Values: []float32{0.9, 0.1, 0}, Metadata: map[string]any{
			"producer": "C", "region": "Rioja", "wine_type": "red", "price": 55}},
		{ID: "r4", Values: []float32{0.85, 0.15, 0}, Metadata: map[string]any{
			"producer": "D", "region": "Bordeaux", "wine_type": "red", "price": 150}},
	}
	require.NoError(t, idx.Upsert(context.Background(), reds, rc.WineNamespace()))

	r := testRecommender(t, scriptedLLM(), &fakeEmbedder{vec: []float32{1, 0, 0}}, idx)

	result, err := r.Recommend(context.Background(), rc, "bold red wine under $100")
	require.NoError(t, err)
	require.Len(t, result.Wines, 2)

	for _, wine := range result.Wines {
		assert.Equal(t, WineTypeRed, wine.WineType)
		assert.NotEmpty(t, wine.TastingNote)
		assert.Nil(t, wine.FoodPairing)
		assert.NotEqual(t, "r4", wine.ID, "wines over the ceiling must be filtered out")
	}
}

func TestRecommendRepeatQueryHitsContentCache(t *testing.T) {
	idx := vector.NewMemory()
	rc := bistro(true)
	seedWineList(t, idx, rc.WineNamespace())
	require.NoError(t, idx.Upsert(context.Background(), []vector.Vector{{
		ID:     "d1",
		Values: []float32{1, 0, 0},
		Metadata: map[string]any{
			"name":        "Braised Lamb Shank",
			"description": "Slow-cooked lamb with root vegetables",
		},
	}}, rc.MenuNamespace()))

	llm := scriptedLLM()
	r := testRecommender(t, llm, &fakeEmbedder{vec: []float32{1, 0, 0}}, idx)

	_, err := r.Recommend(context.Background(), rc, "a red to go with steak")
	require.NoError(t, err)
	firstCalls := llm.callCount()

	result, err := r.Recommend(context.Background(), rc, "a red to go with steak")
	require.NoError(t, err)
	require.Len(t, result.Wines, 2)

	// Selection runs again each time; tasting notes and pairings come
	// from the cache on the second pass.
	assert.Equal(t, firstCalls+1, llm.callCount())
}

func TestRecommendRespectsPriceCeiling(t *testing.T) {
	idx := vector.NewMemory()
	rc := bistro(false)
	seedWineList(t, idx, rc.WineNamespace())

	r := testRecommender(t, scriptedLLM(), &fakeEmbedder{vec: []float32{1, 0, 0}}, idx)

	result, err := r.Recommend(context.Background(), rc, "a red under $50")
	require.NoError(t, err)
	require.Len(t, result.Wines, 1, "only one wine on the list is under 50")
	assert.Equal(t, "w1", result.Wines[0].ID)
	assert.Equal(t, "45", result.Wines[0].Price)
}

func TestRecommendNoMatches(t *testing.T) {
	idx := vector.NewMemory()
	rc := bistro(false)
	seedWineList(t, idx, rc.WineNamespace())

	r := testRecommender(t, scriptedLLM(), &fakeEmbedder{vec: []float32{1, 0, 0}}, idx)

	result, err := r.Recommend(context.Background(), rc, "something under $10")
	require.NoError(t, err)
	assert.Empty(t, result.Wines)
	assert.NotEmpty(t, result.Advisory)
	assert.False(t, result.Degraded())
}

func TestRecommendDegradedOnEmbeddingOutage(t *testing.T) {
	idx := vector.NewMemory()
	rc := bistro(false)
	seedWineList(t, idx, rc.WineNamespace())

	embedder := &fakeEmbedder{err: fmt.Errorf("%w: connection refused", embedding.ErrUnavailable)}
	r := testRecommender(t, scriptedLLM(), embedder, idx)

	result, err := r.Recommend(context.Background(), rc, "a nice red wine")
	require.NoError(t, err, "outages must not surface as errors")
	assert.Empty(t, result.Wines)
	assert.True(t, result.Degraded())
	assert.NotEmpty(t, result.Advisory)
}

func TestRecommendMenuPairing(t *testing.T) {
	idx := vector.NewMemory()
	rc := bistro(true)
	seedWineList(t, idx, rc.WineNamespace())
	require.NoError(t, idx.Upsert(context.Background(), []vector.Vector{{
		ID:     "d1",
		Values: []float32{1, 0, 0},
		Metadata: map[string]any{
			"name":        "Braised Lamb Shank",
			"description": "Slow-cooked lamb with root vegetables",
		},
	}}, rc.MenuNamespace()))

	r := testRecommender(t, scriptedLLM(), &fakeEmbedder{vec: []float32{1, 0, 0}}, idx)

	result, err := r.Recommend(context.Background(), rc, "a red to pair with dinner")
	require.NoError(t, err)
	require.Len(t, result.Wines, 2)

	for _, wine := range result.Wines {
		require.NotNil(t, wine.FoodPairing)
		assert.Contains(t, *wine.FoodPairing, "lamb shank")
	}
}

func TestRecommendNoPairingWhenMenuDisabled(t *testing.T) {
	idx := vector.NewMemory()
	rc := bistro(false)
	seedWineList(t, idx, rc.WineNamespace())

	r := testRecommender(t, scriptedLLM(), &fakeEmbedder{vec: []float32{1, 0, 0}}, idx)

	result, err := r.Recommend(context.Background(), rc, "a red to go with steak")
	require.NoError(t, err)
	require.Len(t, result.Wines, 2)

	// Food language alone is not enough; the restaurant has to opt in.
	for _, wine := range result.Wines {
		assert.Nil(t, wine.FoodPairing)
	}
}

func TestRecommendGenericPairingWhenMenuEmpty(t *testing.T) {
	idx := vector.NewMemory()
	rc := bistro(true)
	seedWineList(t, idx, rc.WineNamespace())

	r := testRecommender(t, scriptedLLM(), &fakeEmbedder{vec: []float32{1, 0, 0}}, idx)

	// Pairing is enabled but no menu was ingested, so the dish-specific
	// path comes up empty and the style-based pairing steps in.
	result, err := r.Recommend(context.Background(), rc, "a red to go with steak")
	require.NoError(t, err)
	require.Len(t, result.Wines, 2)

	for _, wine := range result.Wines {
		require.NotNil(t, wine.FoodPairing)
		assert.Contains(t, *wine.FoodPairing, "Pairs well with")
	}
}

func TestRecommendDegradedOnIndexOutage(t *testing.T) {
	rc := bistro(false)
	r := testRecommender(t, scriptedLLM(), &fakeEmbedder{vec: []float32{1, 0, 0}}, downIndex{})

	result, err := r.Recommend(context.Background(), rc, "a nice red wine")
	require.NoError(t, err, "outages must not surface as errors")
	assert.Empty(t, result.Wines)
	assert.True(t, result.Degraded())
	assert.NotEmpty(t, result.Advisory)
}
