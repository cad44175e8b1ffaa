package recommend

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractPriceFilter(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  *PriceFilter
	}{
		{
			name:  "under dollar amount",
			query: "a bold red under $100",
			want:  &PriceFilter{Kind: FilterCeiling, Max: 100},
		},
		{
			name:  "less than without dollar sign",
			query: "something less than 60",
			want:  &PriceFilter{Kind: FilterCeiling, Max: 60},
		},
		{
			name:  "below",
			query: "white wine below $45",
			want:  &PriceFilter{Kind: FilterCeiling, Max: 45},
		},
		{
			name:  "or less suffix",
			query: "a crisp white, $80 or less",
			want:  &PriceFilter{Kind: FilterCeiling, Max: 80},
		},
		{
			name:  "explicit range",
			query: "pinot noir $50-$100",
			want:  &PriceFilter{Kind: FilterRange, Min: 50, Max: 100},
		},
		{
			name:  "range without dollar signs",
			query: "something in the 40-70 area",
			want:  &PriceFilter{Kind: FilterRange, Min: 40, Max: 70},
		},
		{
			name:  "inverted range normalizes",
			query: "between $120-$80",
			want:  &PriceFilter{Kind: FilterRange, Min: 80, Max: 120},
		},
		{
			name:  "around widens to a band",
			query: "something around $100",
			want:  &PriceFilter{Kind: FilterRange, Min: 70, Max: 130},
		},
		{
			name:  "about widens to a band",
			query: "about 50 dollars",
			want:  &PriceFilter{Kind: FilterRange, Min: 35, Max: 65},
		},
		{
			name:  "budget keyword",
			query: "a budget friendly option",
			want:  &PriceFilter{Kind: FilterCeiling, Max: 50},
		},
		{
			name:  "cheap keyword",
			query: "cheap and cheerful bubbles",
			want:  &PriceFilter{Kind: FilterCeiling, Max: 50},
		},
		{
			name:  "premium keyword",
			query: "a premium bottle to impress",
			want:  &PriceFilter{Kind: FilterFloor, Min: 100},
		},
		{
			name:  "special occasion",
			query: "it's a special occasion",
			want:  &PriceFilter{Kind: FilterFloor, Min: 100},
		},
		{
			name:  "range wins over keyword",
			query: "budget bottle $60-$90",
			want:  &PriceFilter{Kind: FilterRange, Min: 60, Max: 90},
		},
		{
			name:  "no price language",
			query: "an earthy red to go with mushroom risotto",
			want:  nil,
		},
		{
			name:  "vintage year is not a price",
			query: "the 2015 barolo",
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractPriceFilter(tt.query)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPriceFilterVectorFilter(t *testing.T) {
	t.Run("ceiling", func(t *testing.T) {
		f := &PriceFilter{Kind: FilterCeiling, Max: 100}
		vf := f.VectorFilter()
		cond, ok := vf["price"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, float64(100), cond["$lte"])
		assert.NotContains(t, cond, "$gte")
	})

	t.Run("range", func(t *testing.T) {
		f := &PriceFilter{Kind: FilterRange, Min: 50, Max: 100}
		vf := f.VectorFilter()
		cond, ok := vf["price"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, float64(50), cond["$gte"])
		assert.Equal(t, float64(100), cond["$lte"])
	})

	t.Run("floor", func(t *testing.T) {
		f := &PriceFilter{Kind: FilterFloor, Min: 100}
		vf := f.VectorFilter()
		cond, ok := vf["price"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, float64(100), cond["$gte"])
		assert.NotContains(t, cond, "$lte")
	})
}
