package recommend

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/cellarius/sommelier/vector"
)

// PriceFilterKind discriminates the price constraint variants.
type PriceFilterKind int

const (
	// FilterCeiling caps the price at Max ("under $100", "budget").
	FilterCeiling PriceFilterKind = iota
	// FilterRange bounds the price to [Min, Max] ("$50-$100", "around 90").
	FilterRange
	// FilterFloor sets a minimum price ("premium", "special occasion").
	FilterFloor
)

// PriceFilter is a structured price constraint derived once per query.
type PriceFilter struct {
	Kind PriceFilterKind
	Min  int
	Max  int
}

// VectorFilter renders the constraint as a metadata predicate on the
// numeric price field, consumed uniformly by the search filter builder.
func (f *PriceFilter) VectorFilter() vector.Filter {
	switch f.Kind {
	case FilterRange:
		return vector.Filter{"price": map[string]any{"$gte": float64(f.Min), "$lte": float64(f.Max)}}
	case FilterFloor:
		return vector.Filter{"price": map[string]any{"$gte": float64(f.Min)}}
	default:
		return vector.Filter{"price": map[string]any{"$lte": float64(f.Max)}}
	}
}

var (
	rangePattern   = regexp.MustCompile(`\$?(\d+)\s*-\s*\$?(\d+)`)
	ceilingPattern = regexp.MustCompile(`(?:under|less than|below)\s*\$?(\d+)`)
	orLessPattern  = regexp.MustCompile(`\$?(\d+)\s*or less`)
	aroundPattern  = regexp.MustCompile(`(?:around|about)\s*\$?(\d+)`)
)

var budgetKeywords = []string{"budget", "affordable", "cheap", "inexpensive"}

var premiumKeywords = []string{"premium", "expensive", "luxury", "high-end", "special occasion"}

// ExtractPriceFilter parses free-text price hints into a structured filter.
// Patterns are tried in a fixed priority order and the first match wins;
// a query carrying several price signals resolves to whichever pattern
// fires first, which is intentional since duplicate signals are rare.
// Returns nil when the query contains no price language, meaning
// "do not filter by price".
func ExtractPriceFilter(query string) *PriceFilter {
	q := strings.ToLower(query)

	if m := rangePattern.FindStringSubmatch(q); m != nil {
		lo, _ := strconv.Atoi(m[1])
		hi, _ := strconv.Atoi(m[2])
		if lo > hi {
			lo, hi = hi, lo
		}
		return &PriceFilter{Kind: FilterRange, Min: lo, Max: hi}
	}

	if m := ceilingPattern.FindStringSubmatch(q); m != nil {
		max, _ := strconv.Atoi(m[1])
		return &PriceFilter{Kind: FilterCeiling, Max: max}
	}

	if m := orLessPattern.FindStringSubmatch(q); m != nil {
		max, _ := strconv.Atoi(m[1])
		return &PriceFilter{Kind: FilterCeiling, Max: max}
	}

	// "around/about X" widens to a +/- 30% band.
	if m := aroundPattern.FindStringSubmatch(q); m != nil {
		price, _ := strconv.Atoi(m[1])
		return &PriceFilter{
			Kind: FilterRange,
			Min:  int(float64(price) * 0.7),
			Max:  int(float64(price) * 1.3),
		}
	}

	for _, kw := range budgetKeywords {
		if strings.Contains(q, kw) {
			return &PriceFilter{Kind: FilterCeiling, Max: 50}
		}
	}
	for _, kw := range premiumKeywords {
		if strings.Contains(q, kw) {
			return &PriceFilter{Kind: FilterFloor, Min: 100}
		}
	}

	return nil
}
