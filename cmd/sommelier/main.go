package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/cellarius/sommelier/ai/embedding"
	"github.com/cellarius/sommelier/ai/llm"
	"github.com/cellarius/sommelier/cache"
	"github.com/cellarius/sommelier/internal/profile"
	"github.com/cellarius/sommelier/internal/version"
	"github.com/cellarius/sommelier/metrics"
	"github.com/cellarius/sommelier/recommend"
	"github.com/cellarius/sommelier/server"
	"github.com/cellarius/sommelier/vector"
)

var rootCmd = &cobra.Command{
	Use:   "sommelier",
	Short: `An AI wine sommelier for restaurants. Recommends wines from each restaurant's own list with tasting notes and food pairings.`,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		// Ignore a missing .env; explicit environment variables win anyway.
		_ = godotenv.Load()
		return nil
	},
	Run: func(_ *cobra.Command, _ []string) {
		instanceProfile := loadProfile()
		if err := instanceProfile.Validate(); err != nil {
			slog.Error("invalid configuration", "error", err)
			os.Exit(1)
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		deps, err := buildDependencies(ctx, instanceProfile)
		if err != nil {
			slog.Error("failed to initialize", "error", err)
			os.Exit(1)
		}

		s := server.NewServer(instanceProfile, deps.registry, deps.recommender, deps.exporter)

		c := make(chan os.Signal, 1)
		// SIGTERM is the graceful shutdown signal used by most process
		// managers (systemd, kubernetes).
		signal.Notify(c, terminationSignals...)

		go func() {
			<-c
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer shutdownCancel()
			s.Shutdown(shutdownCtx)
			cancel()
		}()

		printGreetings(instanceProfile)

		if err := s.Start(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("failed to start server", "error", err)
			cancel()
		}

		<-ctx.Done()
	},
}

// dependencies holds the wired service graph behind the HTTP server.
type dependencies struct {
	registry    *recommend.Registry
	recommender *recommend.Recommender
	exporter    *metrics.Exporter
}

func loadProfile() *profile.Profile {
	p := &profile.Profile{
		Mode:            viper.GetString("mode"),
		Addr:            viper.GetString("addr"),
		Port:            viper.GetInt("port"),
		Driver:          viper.GetString("driver"),
		DSN:             viper.GetString("dsn"),
		RestaurantsFile: viper.GetString("restaurants"),
		Version:         version.GetCurrentVersion(viper.GetString("mode")),
	}
	p.FromEnv()
	return p
}

func buildDependencies(ctx context.Context, p *profile.Profile) (*dependencies, error) {
	registry, err := recommend.LoadRegistry(p.RestaurantsFile)
	if err != nil {
		return nil, err
	}
	slog.Info("restaurants loaded", "count", len(registry.IDs()))

	index, err := newIndex(ctx, p)
	if err != nil {
		return nil, err
	}

	llmService, err := llm.NewService(&llm.Config{
		Provider: p.LLMProvider,
		Model:    p.LLMModel,
		APIKey:   p.LLMAPIKey,
		BaseURL:  p.LLMBaseURL,
		Timeout:  p.LLMTimeout,
	})
	if err != nil {
		return nil, err
	}

	embedder, err := newEmbedder(p)
	if err != nil {
		return nil, err
	}

	ttl := time.Duration(p.CacheTTL) * time.Second
	contentCache := newCache(p, ttl)

	exporter := metrics.NewExporter()
	searcher := recommend.NewSearcher(embedder, index, exporter)
	recommender := recommend.NewRecommender(
		searcher,
		recommend.NewSelector(llmService, exporter),
		recommend.NewTastingNotes(llmService, searcher, contentCache, ttl, exporter),
		recommend.NewPairings(llmService, searcher, contentCache, ttl, exporter),
		exporter,
	)

	return &dependencies{
		registry:    registry,
		recommender: recommender,
		exporter:    exporter,
	}, nil
}

func newEmbedder(p *profile.Profile) (embedding.Provider, error) {
	return embedding.NewProvider(&embedding.Config{
		APIKey:     p.EmbeddingAPIKey,
		BaseURL:    p.EmbeddingBaseURL,
		Model:      p.EmbeddingModel,
		Dimensions: p.EmbeddingDimensions,
		Timeout:    p.EmbeddingTimeout,
	})
}

func newIndex(ctx context.Context, p *profile.Profile) (vector.Index, error) {
	if p.Driver == "memory" {
		slog.Warn("using in-memory vector index, data will not persist")
		return vector.NewMemory(), nil
	}
	pg, err := vector.NewPostgres(p.DSN, p.EmbeddingDimensions)
	if err != nil {
		return nil, err
	}
	if err := pg.Migrate(ctx); err != nil {
		return nil, err
	}
	return pg, nil
}

// newCache assembles the content cache: a Redis tier when configured, with
// an in-process LRU always underneath.
func newCache(p *profile.Profile, ttl time.Duration) cache.Cache {
	local := cache.NewLRU(4096, ttl)
	if p.RedisURL == "" {
		return local
	}
	remote, err := cache.NewRedis(p.RedisURL, ttl)
	if err != nil {
		slog.Warn("redis unavailable, using in-process cache only", "error", err)
		return local
	}
	return cache.NewTiered(remote, local)
}

func init() {
	viper.SetDefault("mode", "dev")
	viper.SetDefault("driver", "postgres")
	viper.SetDefault("port", 28090)
	viper.SetDefault("restaurants", "restaurants.yaml")

	rootCmd.PersistentFlags().String("mode", "dev", `mode of server, can be "prod" or "dev" or "demo"`)
	rootCmd.PersistentFlags().String("addr", "", "address of server")
	rootCmd.PersistentFlags().Int("port", 28090, "port of server")
	rootCmd.PersistentFlags().String("driver", "postgres", "vector index driver (postgres, memory)")
	rootCmd.PersistentFlags().String("dsn", "", "database source name (aka. DSN)")
	rootCmd.PersistentFlags().String("restaurants", "restaurants.yaml", "path to the restaurants definition file")

	for _, flag := range []string{"mode", "addr", "port", "driver", "dsn", "restaurants"} {
		if err := viper.BindPFlag(flag, rootCmd.PersistentFlags().Lookup(flag)); err != nil {
			panic(err)
		}
	}

	viper.SetEnvPrefix("sommelier")
	viper.AutomaticEnv()

	rootCmd.AddCommand(ingestCmd)
}

func printGreetings(p *profile.Profile) {
	fmt.Printf("Sommelier %s started successfully!\n", p.Version)
	if p.IsDev() {
		fmt.Fprint(os.Stderr, "Development mode is enabled\n")
	}
	fmt.Printf("Vector driver: %s\n", p.Driver)
	fmt.Printf("Mode: %s\n", p.Mode)
	if len(p.Addr) == 0 {
		fmt.Printf("Server running on port %d\n", p.Port)
	} else {
		fmt.Printf("Server running on %s:%d\n", p.Addr, p.Port)
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		panic(err)
	}
}
