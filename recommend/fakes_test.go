package recommend

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cellarius/sommelier/vector"
)

// fakeLLM answers every completion from a script function. It is safe for
// the concurrent per-wine content generation.
type fakeLLM struct {
	mu      sync.Mutex
	fn      func(prompt string) (string, error)
	prompts []string
}

func newFakeLLM(fn func(prompt string) (string, error)) *fakeLLM {
	return &fakeLLM{fn: fn}
}

func (f *fakeLLM) Complete(_ context.Context, prompt string, _ float32, _ int) (string, error) {
	f.mu.Lock()
	f.prompts = append(f.prompts, prompt)
	f.mu.Unlock()
	return f.fn(prompt)
}

func (f *fakeLLM) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.prompts)
}

// fakeEmbedder returns the same vector for every text, or a fixed error.
type fakeEmbedder struct {
	vec []float32
	err error
}

func (f *fakeEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = f.vec
	}
	return out, nil
}

// downIndex fails every operation the way an unreachable backend would.
type downIndex struct{}

func (downIndex) Upsert(context.Context, []vector.Vector, string) error {
	return vector.ErrUnavailable
}

func (downIndex) Query(context.Context, []float32, int, string, vector.Filter) ([]vector.Match, error) {
	return nil, fmt.Errorf("%w: dial tcp: connection refused", vector.ErrUnavailable)
}

func (downIndex) Delete(context.Context, vector.Filter, string) error {
	return vector.ErrUnavailable
}

// nopCache satisfies cache.Cache and stores nothing.
type nopCache struct{}

func (nopCache) Get(context.Context, string) (string, bool)         { return "", false }
func (nopCache) Set(context.Context, string, string, time.Duration) {}
func (nopCache) Delete(context.Context, string)                     {}
