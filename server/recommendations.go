package server

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/cellarius/sommelier/recommend"
)

type recommendationRequest struct {
	Query string `json:"query"`
}

type recommendationResponse struct {
	Wines []wineResponse `json:"wines"`
	Error string         `json:"error,omitempty"`
}

type wineResponse struct {
	ID             string  `json:"id"`
	Producer       string  `json:"producer"`
	WineName       string  `json:"wine_name,omitempty"`
	Region         string  `json:"region"`
	Country        string  `json:"country,omitempty"`
	Vintage        string  `json:"vintage,omitempty"`
	Grapes         string  `json:"grapes,omitempty"`
	WineType       string  `json:"wine_type"`
	Price          string  `json:"price,omitempty"`
	PriceEstimated bool    `json:"price_estimated,omitempty"`
	PriceRange     string  `json:"price_range,omitempty"`
	Score          float32 `json:"score"`
	TastingNote    string  `json:"tasting_note"`
	FoodPairing    string  `json:"food_pairing,omitempty"`
}

// recommendations handles POST /api/v1/restaurants/:restaurant/recommendations.
// Upstream failures never leak to the client; the worst case is an advisory
// message with an empty wine list.
func (s *Server) recommendations(c echo.Context) error {
	restaurantID := c.Param("restaurant")
	rc := s.registry.Get(restaurantID)
	if rc == nil {
		return echo.NewHTTPError(http.StatusNotFound, "unknown restaurant")
	}

	var req recommendationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request body")
	}
	req.Query = strings.TrimSpace(req.Query)
	if req.Query == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "query is required")
	}

	result, err := s.recommender.Recommend(c.Request().Context(), rc, req.Query)
	if err != nil {
		slog.Error("recommendation failed", "restaurant", rc.ID, "error", err)
		return c.JSON(http.StatusOK, recommendationResponse{
			Wines: []wineResponse{},
			Error: "Something went wrong preparing a recommendation. Please try again.",
		})
	}

	resp := recommendationResponse{
		Wines: make([]wineResponse, 0, len(result.Wines)),
		Error: result.Advisory,
	}
	for _, wine := range result.Wines {
		resp.Wines = append(resp.Wines, toWineResponse(wine))
	}
	return c.JSON(http.StatusOK, resp)
}

func toWineResponse(wine *recommend.SelectedWine) wineResponse {
	w := wineResponse{
		ID:             wine.ID,
		Producer:       wine.Producer,
		WineName:       wine.WineName,
		Region:         wine.Region,
		Country:        wine.Country,
		Vintage:        wine.Vintage,
		Grapes:         wine.Grapes,
		WineType:       string(wine.WineType),
		Price:          wine.Price,
		PriceEstimated: wine.PriceEstimated,
		PriceRange:     wine.PriceRange,
		Score:          wine.Score,
		TastingNote:    wine.TastingNote,
	}
	if wine.FoodPairing != nil {
		w.FoodPairing = *wine.FoodPairing
	}
	return w
}
