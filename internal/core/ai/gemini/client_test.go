package gemini

import (
	"context"
	"testing"

	"mixologist/internal/core/ai/provider"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClientRequiresAPIKey(t *testing.T) {
	_, err := NewClient(context.Background(), provider.Config{})
	assert.ErrorIs(t, err, provider.ErrMissingAPIKey)
}

func TestConvertResponse(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{
				Parts: []genai.Part{genai.Text(`{"name":`), genai.Text(`"Test"}`)},
			},
		}},
		UsageMetadata: &genai.UsageMetadata{
			PromptTokenCount:     10,
			CandidatesTokenCount: 5,
			TotalTokenCount:      15,
		},
	}

	result, err := convertResponse(resp)
	require.NoError(t, err)
	assert.Equal(t, `{"name":"Test"}`, result.Content)
	assert.Equal(t, 15, result.Usage.TotalTokens)
}

func TestConvertResponseEmpty(t *testing.T) {
	_, err := convertResponse(nil)
	assert.Error(t, err)

	_, err = convertResponse(&genai.GenerateContentResponse{Candidates: []*genai.Candidate{{}}})
	assert.Error(t, err)

	_, err = convertResponse(&genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{Content: &genai.Content{Parts: []genai.Part{genai.Text("  ")}}}},
	})
	assert.Error(t, err)
}
