// Package ingest loads restaurant wine lists and menus from CSV files and
// embeds them into the vector index.
package ingest

import (
	"encoding/csv"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Wine is one row of a restaurant's wine list, normalized for embedding.
type Wine struct {
	ID       string
	Producer string
	WineName string
	Region   string
	Country  string
	Vintage  int
	Price    float64
	HasPrice bool
	Grapes   []string
	WineType string

	// TastingNote defaults to a placeholder when the list has none; the
	// recommendation side detects and regenerates placeholders.
	TastingNote    string
	AlcoholContent float64
}

// EmbeddingText renders the wine as the descriptive text that gets embedded.
func (w *Wine) EmbeddingText() string {
	vintage := "non-vintage"
	if w.Vintage != 0 {
		vintage = fmt.Sprintf("%d vintage", w.Vintage)
	}
	price := "unknown"
	if w.HasPrice {
		price = strconv.FormatFloat(w.Price, 'f', -1, 64)
	}
	return fmt.Sprintf(`%s %s - %s
Region: %s, %s
Grape varietals: %s
Wine type: %s
Tasting profile: %s
Price: $%s`,
		w.Producer, w.WineName, vintage,
		w.Region, w.Country,
		strings.Join(w.Grapes, ", "),
		w.WineType,
		w.TastingNote,
		price)
}

// Metadata returns the index metadata stored alongside the embedding.
func (w *Wine) Metadata(restaurantID string) map[string]any {
	md := map[string]any{
		"wine_id":       w.ID,
		"producer":      w.Producer,
		"wine_name":     w.WineName,
		"region":        w.Region,
		"country":       w.Country,
		"grapes":        strings.Join(w.Grapes, ", "),
		"wine_type":     w.WineType,
		"tasting_note":  w.TastingNote,
		"restaurant_id": restaurantID,
		"source":        "wine_list",
		"text":          w.EmbeddingText(),
	}
	if w.Vintage != 0 {
		md["vintage"] = strconv.Itoa(w.Vintage)
	}
	if w.HasPrice {
		md["price"] = w.Price
	}
	return md
}

// wineColumnAliases maps common header spellings to canonical column names.
// Headers are slugified (lowercased, non-alphanumerics stripped) first.
var wineColumnAliases = map[string]string{
	"winename":       "wine_name",
	"wine":           "wine_name",
	"winetype":       "wine_type",
	"type":           "wine_type",
	"varietal":       "grapes",
	"varietals":      "grapes",
	"variety":        "grapes",
	"grape":          "grapes",
	"grapes":         "grapes",
	"notes":          "tasting_note",
	"tastingnote":    "tasting_note",
	"tastingnotes":   "tasting_note",
	"description":    "tasting_note",
	"abv":            "alcohol_content",
	"alcohol":        "alcohol_content",
	"alcoholcontent": "alcohol_content",
	"producer":       "producer",
	"region":         "region",
	"country":        "country",
	"vintage":        "vintage",
	"price":          "price",
}

var requiredWineColumns = []string{"producer", "region", "country", "price", "wine_type"}

// placeholderTastingNote marks rows whose list carries no note.
const placeholderTastingNote = "No tasting note provided."

// ReadWineList parses a CSV wine list. Rows with missing required values
// are logged and skipped rather than failing the whole file.
func ReadWineList(r io.Reader) ([]*Wine, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, errors.Wrap(err, "failed to read wine list header")
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		canonical, ok := wineColumnAliases[slugify(name)]
		if !ok {
			continue
		}
		cols[canonical] = i
	}
	for _, required := range requiredWineColumns {
		if _, ok := cols[required]; !ok {
			return nil, errors.Errorf("wine list missing required column %q", required)
		}
	}

	var wines []*Wine
	row := 0
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read wine list row %d", row+1)
		}
		row++

		wine, err := wineFromRecord(record, cols)
		if err != nil {
			slog.Warn("skipping wine list row", "row", row, "error", err)
			continue
		}
		wines = append(wines, wine)
	}
	return wines, nil
}

func wineFromRecord(record []string, cols map[string]int) (*Wine, error) {
	get := func(col string) string {
		idx, ok := cols[col]
		if !ok || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	w := &Wine{
		ID:       newIngestID("wine"),
		Producer: get("producer"),
		WineName: get("wine_name"),
		Region:   get("region"),
		Country:  get("country"),
		WineType: strings.ToLower(get("wine_type")),
	}
	if w.Producer == "" || w.Region == "" || w.Country == "" || w.WineType == "" {
		return nil, errors.New("missing required value")
	}

	if v := get("vintage"); v != "" {
		if year, err := strconv.Atoi(v); err == nil {
			w.Vintage = year
		}
	}
	if p := get("price"); p != "" {
		price, err := strconv.ParseFloat(strings.TrimPrefix(p, "$"), 64)
		if err != nil {
			return nil, errors.Errorf("unparsable price %q", p)
		}
		w.Price = price
		w.HasPrice = true
	} else {
		return nil, errors.New("missing price")
	}

	for _, g := range strings.Split(get("grapes"), ",") {
		if g = strings.TrimSpace(g); g != "" {
			w.Grapes = append(w.Grapes, g)
		}
	}

	w.TastingNote = get("tasting_note")
	if w.TastingNote == "" {
		w.TastingNote = placeholderTastingNote
	}
	if a := get("alcohol_content"); a != "" {
		if abv, err := strconv.ParseFloat(strings.TrimSuffix(a, "%"), 64); err == nil {
			w.AlcoholContent = abv
		}
	}
	return w, nil
}

// slugify lowercases a header and strips everything non-alphanumeric.
func slugify(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if ('a' <= r && r <= 'z') || ('0' <= r && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func newIngestID(prefix string) string {
	u := uuid.New()
	return prefix + "_" + hex.EncodeToString(u[:])[:8]
}
