package recommend

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// ProducersNamespace is the shared curated reference set of producer
// records with tasting notes.
const ProducersNamespace = "producers"

// MaxRecommendations is the number of wines a successful recommendation
// returns. The whole pipeline is built around exactly two.
const MaxRecommendations = 2

// RestaurantContext is the per-restaurant static configuration. It is
// created at startup and read-only thereafter.
type RestaurantContext struct {
	ID   string
	Name string

	// EnableMenuPairing gates menu-aware pairings; it is switched on only
	// after the restaurant's menu has been ingested into the index.
	EnableMenuPairing bool
}

// WineNamespace returns the namespace holding the restaurant's wine list.
func (r *RestaurantContext) WineNamespace() string {
	return r.ID + "_wine_list"
}

// MenuNamespace returns the namespace holding the restaurant's menu dishes.
func (r *RestaurantContext) MenuNamespace() string {
	return r.ID + "_menu"
}

// Registry resolves restaurant contexts by ID.
type Registry struct {
	restaurants map[string]*RestaurantContext
}

// Get returns the context for a restaurant, or nil when unknown.
func (g *Registry) Get(restaurantID string) *RestaurantContext {
	return g.restaurants[strings.ToLower(restaurantID)]
}

// IDs returns the configured restaurant identifiers.
func (g *Registry) IDs() []string {
	ids := make([]string, 0, len(g.restaurants))
	for id := range g.restaurants {
		ids = append(ids, id)
	}
	return ids
}

// NewRegistry builds a registry from already-constructed contexts,
// mainly for tests.
func NewRegistry(contexts ...*RestaurantContext) *Registry {
	restaurants := make(map[string]*RestaurantContext, len(contexts))
	for _, rc := range contexts {
		restaurants[strings.ToLower(rc.ID)] = rc
	}
	return &Registry{restaurants: restaurants}
}

// LoadRegistry reads restaurant definitions from a YAML file:
//
//	restaurants:
//	  - id: bistro
//	    name: Bistro Margaux
//	    enable_menu_pairing: true
func LoadRegistry(path string) (*Registry, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Wrapf(err, "failed to read restaurants file %s", path)
	}

	var file struct {
		Restaurants []struct {
			ID                string `mapstructure:"id"`
			Name              string `mapstructure:"name"`
			EnableMenuPairing bool   `mapstructure:"enable_menu_pairing"`
		} `mapstructure:"restaurants"`
	}
	if err := v.Unmarshal(&file); err != nil {
		return nil, errors.Wrap(err, "failed to parse restaurants file")
	}

	restaurants := make(map[string]*RestaurantContext, len(file.Restaurants))
	for _, r := range file.Restaurants {
		if r.ID == "" {
			return nil, errors.New("restaurant entry without id")
		}
		id := strings.ToLower(r.ID)
		if _, dup := restaurants[id]; dup {
			return nil, errors.Errorf("duplicate restaurant id %q", id)
		}
		restaurants[id] = &RestaurantContext{
			ID:                id,
			Name:              r.Name,
			EnableMenuPairing: r.EnableMenuPairing,
		}
	}
	if len(restaurants) == 0 {
		return nil, errors.New("no restaurants configured")
	}

	return &Registry{restaurants: restaurants}, nil
}
