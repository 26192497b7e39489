package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"mixologist/internal/core/ai/provider"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClientRequiresAPIKey(t *testing.T) {
	_, err := NewClient(provider.Config{}, "")
	assert.ErrorIs(t, err, provider.ErrMissingAPIKey)
}

func TestGenerateUsesJSONMode(t *testing.T) {
	var got map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"c1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"{\"name\":\"Test\"}"},"finish_reason":"stop"}],"usage":{"prompt_tokens":3,"completion_tokens":4,"total_tokens":7}}`))
	}))
	defer server.Close()

	client, err := NewClient(provider.Config{APIKey: "k", Model: "gpt-test", BaseURL: server.URL}, "")
	require.NoError(t, err)

	resp, err := client.Generate(context.Background(), &provider.Request{
		Messages: []provider.Message{
			{Role: provider.RoleSystem, Content: "system"},
			{Role: provider.RoleUser, Content: "hi"},
		},
		JSONMode: true,
	})
	require.NoError(t, err)

	assert.Equal(t, `{"name":"Test"}`, resp.Content)
	assert.Equal(t, 7, resp.Usage.TotalTokens)
	assert.Equal(t, "gpt-test", got["model"])
	format, ok := got["response_format"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "json_object", format["type"])
}

func TestGenerateImage(t *testing.T) {
	var got map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/images/generations", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"created":1,"data":[{"b64_json":"QUJD"}]}`))
	}))
	defer server.Close()

	client, err := NewClient(provider.Config{APIKey: "k", BaseURL: server.URL}, "")
	require.NoError(t, err)

	img, err := client.GenerateImage(context.Background(), "a negroni")
	require.NoError(t, err)

	assert.Equal(t, "data:image/png;base64,QUJD", img)
	assert.Equal(t, "dall-e-3", got["model"])
	assert.Equal(t, "1024x1024", got["size"])
	assert.Equal(t, "b64_json", got["response_format"])
}

func TestGenerateImageEmptyData(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"created":1,"data":[]}`))
	}))
	defer server.Close()

	client, err := NewClient(provider.Config{APIKey: "k", BaseURL: server.URL}, "")
	require.NoError(t, err)

	_, err = client.GenerateImage(context.Background(), "a negroni")
	assert.Error(t, err)
}

func TestGenerateServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"message":"boom","type":"server_error"}}`))
	}))
	defer server.Close()

	client, err := NewClient(provider.Config{APIKey: "k", BaseURL: server.URL}, "")
	require.NoError(t, err)

	_, err = client.Generate(context.Background(), &provider.Request{
		Messages: []provider.Message{{Role: provider.RoleUser, Content: "hi"}},
	})
	assert.Error(t, err)
}
