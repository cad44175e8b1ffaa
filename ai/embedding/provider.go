// Package embedding provides vector embedding generation for wine, producer,
// and menu text.
package embedding

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
)

// ErrUnavailable is returned when the embedding service cannot be reached
// (outage, rate limit, timeout). Callers translate it into a degraded
// response instead of a hard failure.
var ErrUnavailable = errors.New("embedding service unavailable")

// Provider generates vector embeddings.
type Provider interface {
	// Embed generates one embedding per input text, in order.
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// Config represents embedding provider configuration.
type Config struct {
	APIKey     string
	BaseURL    string
	Model      string
	Dimensions int
	Timeout    int // Seconds. Embedding calls fail fast (default: 10).
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		BaseURL:    "https://api.openai.com/v1",
		Model:      "text-embedding-3-small",
		Dimensions: 1024,
		Timeout:    10,
	}
}

type provider struct {
	client     *openai.Client
	model      string
	dimensions int
	timeout    time.Duration
}

// NewProvider creates a new embedding Provider.
func NewProvider(cfg *Config) (Provider, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.Model == "" {
		cfg.Model = "text-embedding-3-small"
	}
	if cfg.Dimensions <= 0 {
		cfg.Dimensions = 1024
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("embedding API key is required")
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}

	return &provider{
		client:     openai.NewClientWithConfig(clientConfig),
		model:      cfg.Model,
		dimensions: cfg.Dimensions,
		timeout:    time.Duration(cfg.Timeout) * time.Second,
	}, nil
}

func (p *provider) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	resp, err := p.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input:      texts,
		Model:      openai.EmbeddingModel(p.model),
		Dimensions: p.dimensions,
	})
	if err != nil {
		slog.Error("embedding request failed", "model", p.model, "texts", len(texts), "error", err)
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("%w: got %d embeddings for %d texts", ErrUnavailable, len(resp.Data), len(texts))
	}

	vectors := make([][]float32, len(resp.Data))
	for i, d := range resp.Data {
		vectors[i] = d.Embedding
	}
	return vectors, nil
}
