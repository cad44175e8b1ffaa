package recommend

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"github.com/cellarius/sommelier/ai/llm"
	"github.com/cellarius/sommelier/metrics"
)

// selectorCandidateCap bounds the prompt size and cost.
const selectorCandidateCap = 10

// Selector picks the best two wines from a candidate pool, delegating the
// judgment call to the LLM with a deterministic top-score fallback.
type Selector struct {
	llm     llm.Service
	metrics *metrics.Exporter
}

// NewSelector creates a new Selector.
func NewSelector(svc llm.Service, m *metrics.Exporter) *Selector {
	return &Selector{llm: svc, metrics: m}
}

// SelectTwo returns exactly two candidates when at least two exist.
// With two or fewer candidates the input is returned unchanged, in order,
// with no LLM call. The selection never returns zero wines when at least
// two valid candidates exist.
func (s *Selector) SelectTwo(ctx context.Context, query string, candidates []*Candidate) []*Candidate {
	if len(candidates) <= MaxRecommendations {
		return candidates
	}

	// Rank by similarity before the LLM sees the list and before any
	// fallback, so "top two" always means top two by score.
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})

	shown := candidates
	if len(shown) > selectorCandidateCap {
		shown = shown[:selectorCandidateCap]
	}

	prompt := buildSelectionPrompt(query, shown)

	s.metrics.LLMCall("selection")
	reply, err := s.llm.Complete(ctx, prompt, 0.3, 50)
	if err != nil {
		s.metrics.LLMError("selection")
		slog.Error("wine selection failed, falling back to top scores", "error", err)
		return candidates[:MaxRecommendations]
	}

	indices := parseSelection(reply, len(shown))
	if len(indices) < MaxRecommendations {
		slog.Warn("LLM selection unparsable, falling back to top scores", "reply", reply)
		return candidates[:MaxRecommendations]
	}

	slog.Debug("LLM selected wines", "reply", reply, "indices", indices)
	return []*Candidate{shown[indices[0]], shown[indices[1]]}
}

func buildSelectionPrompt(query string, candidates []*Candidate) string {
	var b strings.Builder
	for i, wine := range candidates {
		price := wine.Price
		if price == "" {
			price = wine.PriceRange
		}
		vintage := wine.Vintage
		if vintage == "" {
			vintage = "NV"
		}
		name := wine.WineName
		if name == "" {
			name = "N/A"
		}
		fmt.Fprintf(&b, "Wine %d:\n", i+1)
		fmt.Fprintf(&b, "- Producer: %s\n", wine.Producer)
		fmt.Fprintf(&b, "- Wine Name: %s\n", name)
		fmt.Fprintf(&b, "- Region: %s, %s\n", wine.Region, wine.Country)
		fmt.Fprintf(&b, "- Grapes: %s\n", wine.Grapes)
		fmt.Fprintf(&b, "- Type: %s\n", wine.WineType)
		fmt.Fprintf(&b, "- Price: $%s\n", price)
		fmt.Fprintf(&b, "- Vintage: %s\n", vintage)
		fmt.Fprintf(&b, "- Similarity Score: %.2f\n\n", wine.Score)
	}

	return fmt.Sprintf(`You are an expert sommelier. A customer asked: %q

Here are the top wine options:

%s
Select the BEST 2 wines that perfectly match this request.
Consider:
1. How well they match the customer's preferences (price, grape, region, body)
2. Variety - select wines that offer different experiences
3. Value and quality

Respond with ONLY the wine numbers (e.g., "1,7" or "3,9") separated by a comma.`, query, b.String())
}

// parseSelection extracts up to two distinct valid 0-based indices from a
// comma-separated reply. Unparsable or out-of-range tokens are ignored.
func parseSelection(reply string, count int) []int {
	var indices []int
	for _, part := range strings.Split(reply, ",") {
		idx, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			continue
		}
		idx-- // 1-based in the prompt
		if idx < 0 || idx >= count {
			continue
		}
		if len(indices) == 1 && indices[0] == idx {
			continue
		}
		indices = append(indices, idx)
		if len(indices) == MaxRecommendations {
			break
		}
	}
	return indices
}
