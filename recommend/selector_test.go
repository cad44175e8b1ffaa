package recommend

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCandidates(n int) []*Candidate {
	out := make([]*Candidate, n)
	for i := range out {
		out[i] = &Candidate{
			ID:       string(rune('a' + i)),
			Score:    float32(n-i) / float32(n),
			Producer: "Producer " + string(rune('A'+i)),
			Region:   "Region",
			WineType: WineTypeRed,
		}
	}
	return out
}

func TestSelectTwoPassthrough(t *testing.T) {
	llm := newFakeLLM(func(string) (string, error) {
		t.Fatal("LLM must not be called with two or fewer candidates")
		return "", nil
	})
	s := NewSelector(llm, nil)

	t.Run("two candidates returned in order", func(t *testing.T) {
		in := testCandidates(2)
		got := s.SelectTwo(context.Background(), "a red", in)
		require.Len(t, got, 2)
		assert.Equal(t, in[0].ID, got[0].ID)
		assert.Equal(t, in[1].ID, got[1].ID)
	})

	t.Run("single candidate survives", func(t *testing.T) {
		in := testCandidates(1)
		got := s.SelectTwo(context.Background(), "a red", in)
		require.Len(t, got, 1)
	})

	t.Run("empty input stays empty", func(t *testing.T) {
		got := s.SelectTwo(context.Background(), "a red", nil)
		assert.Empty(t, got)
	})
}

func TestSelectTwoUsesLLMIndices(t *testing.T) {
	llm := newFakeLLM(func(string) (string, error) {
		return "3,5", nil
	})
	s := NewSelector(llm, nil)

	got := s.SelectTwo(context.Background(), "a red", testCandidates(6))
	require.Len(t, got, 2)
	// Indices are 1-based over the score-ranked list.
	assert.Equal(t, "c", got[0].ID)
	assert.Equal(t, "e", got[1].ID)
}

func TestSelectTwoFallsBackOnLLMError(t *testing.T) {
	llm := newFakeLLM(func(string) (string, error) {
		return "", errors.New("upstream timeout")
	})
	s := NewSelector(llm, nil)

	got := s.SelectTwo(context.Background(), "a red", testCandidates(5))
	require.Len(t, got, 2)
	// Fallback is the two highest-scoring candidates.
	assert.Equal(t, "a", got[0].ID)
	assert.Equal(t, "b", got[1].ID)
}

func TestSelectTwoFallsBackOnGarbageReply(t *testing.T) {
	tests := []struct {
		name  string
		reply string
	}{
		{"prose instead of numbers", "I would recommend the Barolo and the Chablis."},
		{"single index", "4"},
		{"out of range", "11,12"},
		{"duplicate index", "2,2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			llm := newFakeLLM(func(string) (string, error) { return tt.reply, nil })
			s := NewSelector(llm, nil)

			got := s.SelectTwo(context.Background(), "a red", testCandidates(5))
			require.Len(t, got, 2)
			assert.Equal(t, "a", got[0].ID)
			assert.Equal(t, "b", got[1].ID)
		})
	}
}

func TestSelectTwoAlwaysReturnsExactlyTwo(t *testing.T) {
	for _, n := range []int{3, 5, 10, 15} {
		llm := newFakeLLM(func(string) (string, error) { return "1,2", nil })
		s := NewSelector(llm, nil)

		got := s.SelectTwo(context.Background(), "any wine", testCandidates(n))
		assert.Len(t, got, MaxRecommendations, "pool size %d", n)
	}
}

func TestSelectTwoUnsortedInputRankedByScore(t *testing.T) {
	llm := newFakeLLM(func(string) (string, error) {
		return "", errors.New("down")
	})
	s := NewSelector(llm, nil)

	in := []*Candidate{
		{ID: "low", Score: 0.2},
		{ID: "high", Score: 0.9},
		{ID: "mid", Score: 0.5},
	}
	got := s.SelectTwo(context.Background(), "anything", in)
	require.Len(t, got, 2)
	assert.Equal(t, "high", got[0].ID)
	assert.Equal(t, "mid", got[1].ID)
}
