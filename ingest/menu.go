package ingest

import (
	"encoding/csv"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Dish is one menu item, embedded so wines can be paired against it.
type Dish struct {
	ID          string
	Name        string
	Description string
	Category    string
	Price       float64
	HasPrice    bool
}

// EmbeddingText renders the dish for embedding.
func (d *Dish) EmbeddingText() string {
	parts := []string{d.Name}
	if d.Description != "" {
		parts = append(parts, "- "+d.Description)
	}
	if d.Category != "" {
		parts = append(parts, "Category: "+d.Category)
	}
	return strings.Join(parts, ". ")
}

// Metadata returns the index metadata stored alongside the embedding.
func (d *Dish) Metadata(restaurantID string) map[string]any {
	md := map[string]any{
		"dish_id":       d.ID,
		"name":          d.Name,
		"description":   d.Description,
		"category":      d.Category,
		"restaurant_id": restaurantID,
	}
	if d.HasPrice {
		md["price"] = d.Price
	}
	return md
}

var menuColumnAliases = map[string]string{
	"name":        "name",
	"dish":        "name",
	"dishname":    "name",
	"item":        "name",
	"description": "description",
	"ingredients": "description",
	"category":    "category",
	"section":     "category",
	"course":      "category",
	"price":       "price",
}

// ReadMenu parses a CSV menu. Only the dish name is required.
func ReadMenu(r io.Reader) ([]*Dish, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, errors.Wrap(err, "failed to read menu header")
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		if canonical, ok := menuColumnAliases[slugify(name)]; ok {
			cols[canonical] = i
		}
	}
	if _, ok := cols["name"]; !ok {
		return nil, errors.New("menu missing required column \"name\"")
	}

	var dishes []*Dish
	row := 0
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read menu row %d", row+1)
		}
		row++

		get := func(col string) string {
			idx, ok := cols[col]
			if !ok || idx >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[idx])
		}

		name := get("name")
		if name == "" {
			slog.Warn("skipping menu row without a dish name", "row", row)
			continue
		}

		d := &Dish{
			ID:          newIngestID("dish"),
			Name:        name,
			Description: get("description"),
			Category:    get("category"),
		}
		if p := get("price"); p != "" {
			if price, err := strconv.ParseFloat(strings.TrimPrefix(p, "$"), 64); err == nil {
				d.Price = price
				d.HasPrice = true
			}
		}
		dishes = append(dishes, d)
	}
	return dishes, nil
}
