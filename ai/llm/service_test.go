package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNewService(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *Config
		wantErr bool
	}{
		{
			name: "valid config",
			cfg: &Config{
				Provider: "xai",
				Model:    "grok-3",
				APIKey:   "test-key",
				BaseURL:  "https://api.x.ai/v1",
			},
			wantErr: false,
		},
		{
			name:    "nil config",
			cfg:     nil,
			wantErr: true,
		},
		{
			name:    "missing model",
			cfg:     &Config{Provider: "openai", APIKey: "k"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := NewService(tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewService() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr && svc == nil {
				t.Error("NewService() returned nil service")
			}
		})
	}
}

func TestNewService_DefaultTimeout(t *testing.T) {
	svc, err := NewService(&Config{Model: "grok-3", APIKey: "k"})
	if err != nil {
		t.Fatal(err)
	}
	s, ok := svc.(*service)
	if !ok {
		t.Fatal("NewService() did not return *service type")
	}
	if s.timeout != 120 {
		t.Errorf("timeout = %d, want 120", s.timeout)
	}
}

func TestService_Complete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": "  1,3  "}},
			},
			"usage": map[string]any{"total_tokens": 12},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	svc, err := NewService(&Config{Model: "grok-3", APIKey: "k", BaseURL: srv.URL})
	if err != nil {
		t.Fatal(err)
	}

	got, err := svc.Complete(context.Background(), "pick two", 0.3, 50)
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if got != "1,3" {
		t.Errorf("Complete() = %q, want trimmed %q", got, "1,3")
	}
}

func TestService_Complete_EmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"choices": []any{}})
	}))
	defer srv.Close()

	svc, err := NewService(&Config{Model: "grok-3", APIKey: "k", BaseURL: srv.URL})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := svc.Complete(context.Background(), "prompt", 0.7, 100); err == nil {
		t.Error("Complete() expected error on empty choices")
	}
}
