package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/cellarius/sommelier/ingest"
	"github.com/cellarius/sommelier/recommend"
)

var (
	ingestRestaurant string
	ingestWinesFile  string
	ingestMenuFile   string
	ingestDelete     bool
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Embed a restaurant's wine list or menu into the vector index",
	RunE: func(_ *cobra.Command, _ []string) error {
		instanceProfile := loadProfile()
		if err := instanceProfile.Validate(); err != nil {
			return err
		}

		ctx := context.Background()

		registry, err := recommend.LoadRegistry(instanceProfile.RestaurantsFile)
		if err != nil {
			return err
		}
		rc := registry.Get(ingestRestaurant)
		if rc == nil {
			return fmt.Errorf("unknown restaurant %q (configured: %v)", ingestRestaurant, registry.IDs())
		}

		index, err := newIndex(ctx, instanceProfile)
		if err != nil {
			return err
		}
		embedder, err := newEmbedder(instanceProfile)
		if err != nil {
			return err
		}
		ingester := ingest.NewIngester(embedder, index)

		if ingestDelete {
			if err := ingester.DeleteRestaurant(ctx, rc); err != nil {
				return err
			}
			fmt.Printf("Deleted all data for %s\n", rc.ID)
			return nil
		}

		if ingestWinesFile == "" && ingestMenuFile == "" {
			return fmt.Errorf("nothing to do: pass --wines and/or --menu, or --delete")
		}

		if ingestWinesFile != "" {
			n, err := ingestWines(ctx, ingester, rc, ingestWinesFile)
			if err != nil {
				return err
			}
			fmt.Printf("Ingested %d wines for %s\n", n, rc.ID)
		}
		if ingestMenuFile != "" {
			n, err := ingestMenu(ctx, ingester, rc, ingestMenuFile)
			if err != nil {
				return err
			}
			fmt.Printf("Ingested %d dishes for %s\n", n, rc.ID)
			if !rc.EnableMenuPairing {
				slog.Warn("menu ingested but menu pairing is disabled for this restaurant",
					"restaurant", rc.ID,
					"hint", "set enable_menu_pairing: true in the restaurants file")
			}
		}
		return nil
	},
}

func ingestWines(ctx context.Context, ingester *ingest.Ingester, rc *recommend.RestaurantContext, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	wines, err := ingest.ReadWineList(f)
	if err != nil {
		return 0, err
	}
	return ingester.IngestWines(ctx, rc, wines)
}

func ingestMenu(ctx context.Context, ingester *ingest.Ingester, rc *recommend.RestaurantContext, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	dishes, err := ingest.ReadMenu(f)
	if err != nil {
		return 0, err
	}
	return ingester.IngestMenu(ctx, rc, dishes)
}

func init() {
	ingestCmd.Flags().StringVar(&ingestRestaurant, "restaurant", "", "restaurant id from the restaurants file (required)")
	ingestCmd.Flags().StringVar(&ingestWinesFile, "wines", "", "path to a CSV wine list")
	ingestCmd.Flags().StringVar(&ingestMenuFile, "menu", "", "path to a CSV menu")
	ingestCmd.Flags().BoolVar(&ingestDelete, "delete", false, "delete all ingested data for the restaurant")
	_ = ingestCmd.MarkFlagRequired("restaurant")
}
