package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"mixologist/internal/infrastructure/config"
	"mixologist/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(cocktailDBURL string) *config.Config {
	return &config.Config{
		CocktailDB: config.CocktailDBConfig{BaseURL: cocktailDBURL, Timeout: time.Second},
		Search:     config.SearchConfig{MaxDetailFetch: 8, CallTimeout: time.Second},
		Generative: config.GenerativeConfig{
			Provider:  config.ProviderOpenRouter,
			Timeout:   time.Second,
			MaxTokens: 256,
			Workers:   1,
			QueueSize: 1,
		},
		Favorites: config.FavoritesConfig{Backend: config.FavoritesMemory},
		Image:     config.ImageConfig{MaxSizeBytes: 1 << 20},
	}
}

func emptyCocktailDB(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"drinks":null}`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestBuildWithoutGenerativeKey(t *testing.T) {
	srv := emptyCocktailDB(t)

	s, err := Build(context.Background(), testConfig(srv.URL))
	require.NoError(t, err)
	t.Cleanup(s.Close)

	assert.Nil(t, s.AI)
	assert.Nil(t, s.Queue)
	require.NotNil(t, s.Aggregator)

	results, err := s.Aggregator.Search(context.Background(), "negroni", common.SearchByName, nil)
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Equal(t, "Negroni", results[0].Name)

	// 生成式備援停用時找不到就是空結果
	results, err = s.Aggregator.Search(context.Background(), "zzzznonexistentdrink", common.SearchByName, nil)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestBuildWithOpenRouterFallback(t *testing.T) {
	db := emptyCocktailDB(t)
	ai := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"1","choices":[{"message":{"role":"assistant","content":"{\"name\":\"Midnight Smoke\",\"ingredients\":[{\"name\":\"Mezcal\",\"amount\":\"45 ml\"}]}"}}]}`))
	}))
	t.Cleanup(ai.Close)

	cfg := testConfig(db.URL)
	cfg.Generative.OpenRouter = config.OpenRouterConfig{APIKey: "test-key", Model: "test/model", BaseURL: ai.URL}

	s, err := Build(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(s.Close)

	require.NotNil(t, s.AI)
	require.NotNil(t, s.Queue)

	results, err := s.Aggregator.Search(context.Background(), "midnight smoke", common.SearchByName, nil)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Midnight Smoke", results[0].Name)
	assert.Equal(t, int64(1), s.Queue.GetQueueStatus().ProcessedCount)
}

func TestBuildRejectsUnreachableRedis(t *testing.T) {
	cfg := testConfig(emptyCocktailDB(t).URL)
	cfg.Favorites = config.FavoritesConfig{
		Backend: config.FavoritesRedis,
		Redis:   config.RedisConfig{Addr: "127.0.0.1:1"},
	}

	_, err := Build(context.Background(), cfg)
	assert.Error(t, err)
}
