package profile

import (
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pkg/errors"
)

// Profile is configuration to start the sommelier server.
type Profile struct {
	// LLM configuration (OpenAI-compatible protocol).
	// All providers (xai, openai, deepseek, ollama) use the same config.
	LLMProvider string // Provider identifier: xai, openai, deepseek, ollama
	LLMAPIKey   string
	LLMBaseURL  string // Optional, has a default per provider
	LLMModel    string // grok-3, gpt-4o, deepseek-chat, etc.
	LLMTimeout  int    // Request timeout in seconds (default: 120)

	// Embedding configuration
	EmbeddingAPIKey     string
	EmbeddingBaseURL    string
	EmbeddingModel      string
	EmbeddingDimensions int
	EmbeddingTimeout    int // Seconds; embedding calls fail fast (default: 10)

	// Vector index backend
	Driver string // postgres or memory
	DSN    string

	// Cache configuration
	RedisURL string // Empty disables the distributed tier
	CacheTTL int    // Generated-content TTL in seconds (default: 30 days)

	// Restaurants definition file (YAML)
	RestaurantsFile string

	// Server
	Mode    string
	Addr    string
	Port    int
	Version string
}

// Provider default configurations for the LLM.
// Used when SOMMELIER_LLM_BASE_URL is not explicitly set.
var llmProviderDefaults = map[string]struct {
	BaseURL string
	Model   string
}{
	"xai": {
		BaseURL: "https://api.x.ai/v1",
		Model:   "grok-3",
	},
	"openai": {
		BaseURL: "https://api.openai.com/v1",
		Model:   "gpt-4o",
	},
	"deepseek": {
		BaseURL: "https://api.deepseek.com",
		Model:   "deepseek-chat",
	},
	"ollama": {
		BaseURL: "http://localhost:11434/v1",
		Model:   "llama3.1",
	},
}

func (p *Profile) IsDev() bool {
	return p.Mode != "prod"
}

// getEnvOrDefault returns environment variable value or default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvOrDefaultInt returns environment variable value as int or default value.
func getEnvOrDefaultInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// FromEnv loads configuration from environment variables.
func (p *Profile) FromEnv() {
	p.LLMProvider = getEnvOrDefault("SOMMELIER_LLM_PROVIDER", "xai")
	p.LLMAPIKey = getEnvOrDefault("SOMMELIER_LLM_API_KEY", "")
	p.LLMBaseURL = getEnvOrDefault("SOMMELIER_LLM_BASE_URL", "")
	p.LLMModel = getEnvOrDefault("SOMMELIER_LLM_MODEL", "")
	p.LLMTimeout = getEnvOrDefaultInt("SOMMELIER_LLM_TIMEOUT_SECONDS", 120)

	if p.LLMProvider != "" {
		if _, ok := llmProviderDefaults[p.LLMProvider]; !ok {
			slog.Warn("unknown LLM provider, using default: xai", "provider", p.LLMProvider)
			p.LLMProvider = "xai"
		}
	}
	if p.LLMBaseURL == "" || p.LLMModel == "" {
		if defaults, ok := llmProviderDefaults[p.LLMProvider]; ok {
			if p.LLMBaseURL == "" {
				p.LLMBaseURL = defaults.BaseURL
			}
			if p.LLMModel == "" {
				p.LLMModel = defaults.Model
			}
		}
	}

	// Embedding configuration
	p.EmbeddingAPIKey = getEnvOrDefault("SOMMELIER_EMBEDDING_API_KEY", p.LLMAPIKey)
	p.EmbeddingBaseURL = getEnvOrDefault("SOMMELIER_EMBEDDING_BASE_URL", "https://api.openai.com/v1")
	p.EmbeddingModel = getEnvOrDefault("SOMMELIER_EMBEDDING_MODEL", "text-embedding-3-small")
	p.EmbeddingDimensions = getEnvOrDefaultInt("SOMMELIER_EMBEDDING_DIMENSIONS", 1024)
	p.EmbeddingTimeout = getEnvOrDefaultInt("SOMMELIER_EMBEDDING_TIMEOUT_SECONDS", 10)

	// Cache configuration
	p.RedisURL = getEnvOrDefault("SOMMELIER_REDIS_URL", "")
	p.CacheTTL = getEnvOrDefaultInt("SOMMELIER_CACHE_TTL_SECONDS", 30*24*3600)
}

// Validate checks that the profile is complete enough to start the server.
// Missing credentials or restaurant definitions are fatal here, not per-request.
func (p *Profile) Validate() error {
	if p.Mode != "demo" && p.Mode != "dev" && p.Mode != "prod" {
		p.Mode = "dev"
	}

	if p.Driver == "" {
		p.Driver = "postgres"
	}
	if p.Driver != "postgres" && p.Driver != "memory" {
		return errors.Errorf("unknown vector driver %q (want postgres or memory)", p.Driver)
	}
	if p.Driver == "postgres" && p.DSN == "" {
		return errors.New("postgres driver requires a DSN")
	}

	if p.Mode == "prod" && p.LLMAPIKey == "" {
		return errors.New("LLM API key is required in prod mode")
	}
	if p.Mode == "prod" && p.EmbeddingAPIKey == "" {
		return errors.New("embedding API key is required in prod mode")
	}

	if p.RestaurantsFile == "" {
		p.RestaurantsFile = "restaurants.yaml"
	}
	if !filepath.IsAbs(p.RestaurantsFile) {
		abs, err := filepath.Abs(p.RestaurantsFile)
		if err != nil {
			return errors.Wrapf(err, "unable to resolve restaurants file %s", p.RestaurantsFile)
		}
		p.RestaurantsFile = abs
	}
	if _, err := os.Stat(p.RestaurantsFile); err != nil {
		return errors.Wrapf(err, "unable to access restaurants file %s", p.RestaurantsFile)
	}

	if p.EmbeddingDimensions <= 0 {
		p.EmbeddingDimensions = 1024
	}
	if p.LLMTimeout <= 0 {
		p.LLMTimeout = 120
	}
	if p.EmbeddingTimeout <= 0 {
		p.EmbeddingTimeout = 10
	}
	if p.CacheTTL <= 0 {
		p.CacheTTL = 30 * 24 * 3600
	}

	return nil
}
