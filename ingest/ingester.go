package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"

	"github.com/pkg/errors"

	"github.com/cellarius/sommelier/ai/embedding"
	"github.com/cellarius/sommelier/recommend"
	"github.com/cellarius/sommelier/vector"
)

// embedBatchSize bounds the number of texts sent per embedding call.
const embedBatchSize = 100

// Ingester embeds wines and dishes and writes them to the vector index.
type Ingester struct {
	embedder embedding.Provider
	index    vector.Index
}

// NewIngester creates a new Ingester.
func NewIngester(embedder embedding.Provider, index vector.Index) *Ingester {
	return &Ingester{embedder: embedder, index: index}
}

// IngestWines embeds a restaurant's wine list and upserts it into the
// restaurant namespace. Wines carrying a genuine tasting note are also
// written to the shared producers reference set. Returns the number of
// wines ingested.
func (ing *Ingester) IngestWines(ctx context.Context, rc *recommend.RestaurantContext, wines []*Wine) (int, error) {
	total := 0
	for start := 0; start < len(wines); start += embedBatchSize {
		end := start + embedBatchSize
		if end > len(wines) {
			end = len(wines)
		}
		batch := wines[start:end]

		texts := make([]string, len(batch))
		for i, w := range batch {
			texts[i] = w.EmbeddingText()
		}
		embeddings, err := ing.embedder.Embed(ctx, texts)
		if err != nil {
			return total, errors.Wrapf(err, "failed to embed wine batch %d", start/embedBatchSize+1)
		}
		if len(embeddings) != len(batch) {
			return total, errors.Errorf("embedding count mismatch: %d texts, %d vectors", len(batch), len(embeddings))
		}

		vectors := make([]vector.Vector, len(batch))
		var producerVectors []vector.Vector
		for i, w := range batch {
			md := w.Metadata(rc.ID)
			vectors[i] = vector.Vector{ID: w.ID, Values: embeddings[i], Metadata: md}

			if w.TastingNote != "" && w.TastingNote != placeholderTastingNote {
				producerVectors = append(producerVectors, vector.Vector{
					ID:       producerVectorID(w, rc.ID),
					Values:   embeddings[i],
					Metadata: md,
				})
			}
		}

		if err := ing.index.Upsert(ctx, vectors, rc.WineNamespace()); err != nil {
			return total, errors.Wrapf(err, "failed to upsert wine batch %d", start/embedBatchSize+1)
		}
		if len(producerVectors) > 0 {
			if err := ing.index.Upsert(ctx, producerVectors, recommend.ProducersNamespace); err != nil {
				return total, errors.Wrap(err, "failed to upsert producer reference batch")
			}
		}
		total += len(batch)
		slog.Info("ingested wine batch",
			"restaurant", rc.ID,
			"batch", start/embedBatchSize+1,
			"wines", len(batch),
			"producer_refs", len(producerVectors))
	}
	return total, nil
}

// IngestMenu embeds a restaurant's menu dishes into its menu namespace.
func (ing *Ingester) IngestMenu(ctx context.Context, rc *recommend.RestaurantContext, dishes []*Dish) (int, error) {
	total := 0
	for start := 0; start < len(dishes); start += embedBatchSize {
		end := start + embedBatchSize
		if end > len(dishes) {
			end = len(dishes)
		}
		batch := dishes[start:end]

		texts := make([]string, len(batch))
		for i, d := range batch {
			texts[i] = d.EmbeddingText()
		}
		embeddings, err := ing.embedder.Embed(ctx, texts)
		if err != nil {
			return total, errors.Wrapf(err, "failed to embed menu batch %d", start/embedBatchSize+1)
		}
		if len(embeddings) != len(batch) {
			return total, errors.Errorf("embedding count mismatch: %d texts, %d vectors", len(batch), len(embeddings))
		}

		vectors := make([]vector.Vector, len(batch))
		for i, d := range batch {
			vectors[i] = vector.Vector{ID: d.ID, Values: embeddings[i], Metadata: d.Metadata(rc.ID)}
		}
		if err := ing.index.Upsert(ctx, vectors, rc.MenuNamespace()); err != nil {
			return total, errors.Wrapf(err, "failed to upsert menu batch %d", start/embedBatchSize+1)
		}
		total += len(batch)
		slog.Info("ingested menu batch", "restaurant", rc.ID, "batch", start/embedBatchSize+1, "dishes", len(batch))
	}
	return total, nil
}

// DeleteRestaurant removes a restaurant's wines, menu, and producer
// reference entries from the index.
func (ing *Ingester) DeleteRestaurant(ctx context.Context, rc *recommend.RestaurantContext) error {
	if err := ing.index.Delete(ctx, nil, rc.WineNamespace()); err != nil {
		return errors.Wrapf(err, "failed to delete wine list for %s", rc.ID)
	}
	if err := ing.index.Delete(ctx, nil, rc.MenuNamespace()); err != nil {
		return errors.Wrapf(err, "failed to delete menu for %s", rc.ID)
	}
	filter := vector.Filter{"restaurant_id": rc.ID}
	if err := ing.index.Delete(ctx, filter, recommend.ProducersNamespace); err != nil {
		return errors.Wrapf(err, "failed to delete producer references for %s", rc.ID)
	}
	slog.Info("deleted restaurant data", "restaurant", rc.ID)
	return nil
}

// producerVectorID derives a stable ID so re-ingesting a list overwrites
// rather than duplicates the producer reference entry.
func producerVectorID(w *Wine, restaurantID string) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%s|%s|%s|%s",
		w.Producer, w.WineName, w.Region, w.Country, restaurantID)))
	return "producer_" + hex.EncodeToString(sum[:])[:16]
}
