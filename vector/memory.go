package vector

import (
	"context"
	"math"
	"sort"
	"sync"
)

// Memory is an in-process Index for development and tests.
// Namespaces are plain maps; similarity is exact cosine over all records.
type Memory struct {
	mu         sync.RWMutex
	namespaces map[string]map[string]Vector
}

// NewMemory creates a new in-memory index.
func NewMemory() *Memory {
	return &Memory{
		namespaces: make(map[string]map[string]Vector),
	}
}

func (m *Memory) Upsert(_ context.Context, vectors []Vector, namespace string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	ns, ok := m.namespaces[namespace]
	if !ok {
		ns = make(map[string]Vector)
		m.namespaces[namespace] = ns
	}
	for _, v := range vectors {
		ns[v.ID] = v
	}
	return nil
}

func (m *Memory) Query(_ context.Context, vector []float32, topK int, namespace string, filter Filter) ([]Match, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ns := m.namespaces[namespace]
	if len(ns) == 0 || topK <= 0 {
		return nil, nil
	}

	matches := make([]Match, 0, len(ns))
	for _, v := range ns {
		if !matchesFilter(v.Metadata, filter) {
			continue
		}
		matches = append(matches, Match{
			ID:       v.ID,
			Score:    cosineSimilarity(vector, v.Values),
			Metadata: v.Metadata,
		})
	}

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	if len(matches) > topK {
		matches = matches[:topK]
	}
	return matches, nil
}

func (m *Memory) Delete(_ context.Context, filter Filter, namespace string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if filter == nil {
		delete(m.namespaces, namespace)
		return nil
	}
	ns := m.namespaces[namespace]
	for id, v := range ns {
		if matchesFilter(v.Metadata, filter) {
			delete(ns, id)
		}
	}
	return nil
}

func matchesFilter(metadata map[string]any, filter Filter) bool {
	for field, cond := range filter {
		value, ok := metadata[field]
		if !ok {
			return false
		}
		if !matchesCondition(value, cond) {
			return false
		}
	}
	return true
}

func matchesCondition(value, cond any) bool {
	ops, ok := cond.(map[string]any)
	if !ok {
		// Plain value: equality
		if vf, okV := toFloat(value); okV {
			if cf, okC := toFloat(cond); okC {
				return vf == cf
			}
		}
		return value == cond
	}

	for op, operand := range ops {
		switch op {
		case "$in":
			if !containsValue(operand, value) {
				return false
			}
		case "$gte":
			vf, okV := toFloat(value)
			of, okO := toFloat(operand)
			if !okV || !okO || vf < of {
				return false
			}
		case "$lte":
			vf, okV := toFloat(value)
			of, okO := toFloat(operand)
			if !okV || !okO || vf > of {
				return false
			}
		default:
			return false
		}
	}
	return true
}

func containsValue(operand, value any) bool {
	switch list := operand.(type) {
	case []string:
		s, ok := value.(string)
		if !ok {
			return false
		}
		for _, item := range list {
			if item == s {
				return true
			}
		}
	case []any:
		for _, item := range list {
			if item == value {
				return true
			}
		}
	}
	return false
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

func cosineSimilarity(a, b []float32) float32 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}
