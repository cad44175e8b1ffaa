package recommend

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cellarius/sommelier/vector"
)

// WineType classifies a wine.
type WineType string

const (
	WineTypeRed       WineType = "red"
	WineTypeWhite     WineType = "white"
	WineTypeRose      WineType = "rosé"
	WineTypeSparkling WineType = "sparkling"
	WineTypeDessert   WineType = "dessert"
	WineTypeUnknown   WineType = "unknown"
)

// ParseWineType normalizes free-form type strings from the index metadata.
func ParseWineType(s string) WineType {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "red":
		return WineTypeRed
	case "white":
		return WineTypeWhite
	case "rosé", "rose":
		return WineTypeRose
	case "sparkling":
		return WineTypeSparkling
	case "dessert":
		return WineTypeDessert
	default:
		return WineTypeUnknown
	}
}

// Representative prices per bucket, used when the exact price is missing.
var bucketMidpoints = map[string]string{
	"<$50":     "40",
	"$50-100":  "75",
	"$100-200": "150",
	"$200+":    "250",
}

// Candidate is a normalized wine record produced from one vector search
// match. Candidates live for the duration of a single query.
type Candidate struct {
	ID       string
	Score    float32
	Producer string
	WineName string
	Region   string
	Country  string
	Vintage  string
	Grapes   string // Comma-joined
	WineType WineType

	// Price is the display price in whole dollars. When the source record
	// carries no price, it is approximated from the bucket midpoint and
	// PriceEstimated is set.
	Price          string
	PriceEstimated bool
	PriceRange     string

	Text     string         // Formatted display text from ingestion
	Metadata map[string]any // Pass-through for fields not otherwise modeled
}

// SelectedWine is a Candidate augmented with generated content.
// Exactly two exist per successful recommendation.
type SelectedWine struct {
	Candidate

	// TastingNote is always non-empty; a templated sentence is the floor.
	TastingNote string

	// FoodPairing is nil unless the query signals food interest and the
	// restaurant has menu pairing enabled. Nil means "not requested or no
	// menu match", which is distinct from an empty generation result.
	FoodPairing *string
}

// newCandidate builds a Candidate from a raw similarity match.
// The source data mixes int/float/string prices across ingestion paths,
// so the price is coerced to a whole-dollar string here.
func newCandidate(m vector.Match) *Candidate {
	md := m.Metadata

	c := &Candidate{
		ID:         m.ID,
		Score:      m.Score,
		Producer:   metaString(md, "producer", "Unknown"),
		WineName:   metaString(md, "wine_name", ""),
		Region:     metaString(md, "region", "Unknown"),
		Country:    metaString(md, "country", ""),
		Vintage:    metaString(md, "vintage", ""),
		Grapes:     metaString(md, "grapes", ""),
		WineType:   ParseWineType(metaString(md, "wine_type", "")),
		PriceRange: metaString(md, "price_range", ""),
		Text:       metaString(md, "text", ""),
		Metadata:   md,
	}

	c.Price = coercePrice(md["price"])
	if c.Price == "" {
		if midpoint, ok := bucketMidpoints[c.PriceRange]; ok {
			c.Price = midpoint
			c.PriceEstimated = true
		}
	}

	return c
}

func metaString(md map[string]any, key, fallback string) string {
	if v, ok := md[key]; ok {
		if s, isStr := v.(string); isStr && s != "" {
			return s
		}
	}
	return fallback
}

func coercePrice(v any) string {
	switch p := v.(type) {
	case string:
		return strings.TrimSpace(p)
	case float64:
		return strconv.Itoa(int(p))
	case float32:
		return strconv.Itoa(int(p))
	case int:
		return strconv.Itoa(p)
	case int64:
		return strconv.Itoa(int(p))
	case nil:
		return ""
	default:
		return fmt.Sprint(p)
	}
}
