package profile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeRestaurantsFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "restaurants.yaml")
	require.NoError(t, os.WriteFile(path, []byte("restaurants: []\n"), 0o644))
	return path
}

func TestFromEnv_ProviderDefaults(t *testing.T) {
	tests := []struct {
		name        string
		provider    string
		wantBaseURL string
		wantModel   string
	}{
		{"xai default", "xai", "https://api.x.ai/v1", "grok-3"},
		{"openai", "openai", "https://api.openai.com/v1", "gpt-4o"},
		{"deepseek", "deepseek", "https://api.deepseek.com", "deepseek-chat"},
		{"unknown falls back to xai", "acme", "https://api.x.ai/v1", "grok-3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("SOMMELIER_LLM_PROVIDER", tt.provider)
			t.Setenv("SOMMELIER_LLM_BASE_URL", "")
			t.Setenv("SOMMELIER_LLM_MODEL", "")

			p := &Profile{}
			p.FromEnv()

			assert.Equal(t, tt.wantBaseURL, p.LLMBaseURL)
			assert.Equal(t, tt.wantModel, p.LLMModel)
		})
	}
}

func TestFromEnv_EmbeddingKeyFallsBackToLLMKey(t *testing.T) {
	t.Setenv("SOMMELIER_LLM_API_KEY", "llm-key")
	t.Setenv("SOMMELIER_EMBEDDING_API_KEY", "")

	p := &Profile{}
	p.FromEnv()

	assert.Equal(t, "llm-key", p.EmbeddingAPIKey)
}

func TestValidate(t *testing.T) {
	restaurants := writeRestaurantsFile(t)

	t.Run("postgres without DSN fails", func(t *testing.T) {
		p := &Profile{Mode: "dev", Driver: "postgres", RestaurantsFile: restaurants}
		assert.Error(t, p.Validate())
	})

	t.Run("memory driver needs no DSN", func(t *testing.T) {
		p := &Profile{Mode: "dev", Driver: "memory", RestaurantsFile: restaurants}
		assert.NoError(t, p.Validate())
	})

	t.Run("prod requires LLM key", func(t *testing.T) {
		p := &Profile{Mode: "prod", Driver: "memory", RestaurantsFile: restaurants}
		assert.Error(t, p.Validate())
	})

	t.Run("missing restaurants file fails", func(t *testing.T) {
		p := &Profile{Mode: "dev", Driver: "memory", RestaurantsFile: "/nonexistent/r.yaml"}
		assert.Error(t, p.Validate())
	})

	t.Run("defaults applied", func(t *testing.T) {
		p := &Profile{Mode: "weird", Driver: "memory", RestaurantsFile: restaurants}
		require.NoError(t, p.Validate())
		assert.Equal(t, "dev", p.Mode)
		assert.Equal(t, 120, p.LLMTimeout)
		assert.Equal(t, 10, p.EmbeddingTimeout)
		assert.Equal(t, 1024, p.EmbeddingDimensions)
		assert.Equal(t, 30*24*3600, p.CacheTTL)
	})
}
