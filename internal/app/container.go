// Package app 依設定組裝搜尋管線的各個元件
package app

import (
	"context"
	"errors"
	"fmt"

	"mixologist/internal/core/ai/cache"
	"mixologist/internal/core/ai/gemini"
	"mixologist/internal/core/ai/openai"
	"mixologist/internal/core/ai/openrouter"
	"mixologist/internal/core/ai/provider"
	"mixologist/internal/core/ai/queue"
	"mixologist/internal/core/ai/service"
	"mixologist/internal/core/cocktail"
	"mixologist/internal/core/cocktaildb"
	"mixologist/internal/core/favorites"
	"mixologist/internal/core/image"
	"mixologist/internal/core/recipe"
	"mixologist/internal/infrastructure/config"
	"mixologist/internal/pkg/common"

	"go.uber.org/zap"
)

// Services 組裝完成的元件；沒有生成式 API Key 時 AI 與 Queue 為 nil
type Services struct {
	Config     *config.Config
	Local      *cocktail.LocalDataset
	CocktailDB *cocktaildb.Client
	AI         *service.Service
	Queue      *queue.Manager
	Images     *image.Resolver
	Favorites  *favorites.Service
	Aggregator *cocktail.Aggregator
}

// Build 依設定建立所有元件；生成式後端缺少 API Key 時停用生成式備援
func Build(ctx context.Context, cfg *config.Config) (*Services, error) {
	local, err := cocktail.DefaultLocalDataset()
	if err != nil {
		return nil, fmt.Errorf("failed to load local dataset: %w", err)
	}

	db := cocktaildb.NewClient(cfg.CocktailDB)

	s := &Services{
		Config:     cfg,
		Local:      local,
		CocktailDB: db,
	}

	backend, err := newProvider(ctx, cfg)
	switch {
	case errors.Is(err, provider.ErrMissingAPIKey):
		common.LogWarn("未設定生成式 AI 金鑰，停用生成式備援",
			zap.String("provider", cfg.Generative.Provider),
		)
	case err != nil:
		return nil, err
	default:
		s.Queue = queue.NewManager(backend, cfg.Generative.Workers, cfg.Generative.QueueSize)
		s.AI, err = service.NewService(s.Queue, cache.NewManager(cfg.Cache), cfg.Generative.MaxTokens)
		if err != nil {
			_ = s.Queue.Close()
			return nil, fmt.Errorf("failed to initialize AI service: %w", err)
		}
	}

	s.Images = newImageResolver(cfg, db)

	store, err := favorites.Open(ctx, cfg.Favorites)
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("failed to open favorites store: %w", err)
	}
	s.Favorites = favorites.NewService(store, cfg.Favorites.RetryDelay)

	// 介面欄位必須收到真正的 nil，不能是 nil 指標
	var generator cocktail.RecipeGenerator
	if s.AI != nil {
		generator = recipe.NewGenerator(s.AI)
	}

	s.Aggregator = cocktail.NewAggregator(local, db, generator, s.Images, cocktail.Options{
		MaxDetailFetch:    cfg.Search.MaxDetailFetch,
		CallTimeout:       cfg.Search.CallTimeout,
		GenerativeTimeout: cfg.Generative.Timeout,
	})

	common.LogInfo("服務初始化完成",
		zap.Int("local_recipes", local.Len()),
		zap.Bool("generative_enabled", s.AI != nil),
		zap.Bool("cache_enabled", cfg.Cache.Enabled),
		zap.String("favorites_backend", cfg.Favorites.Backend),
	)

	return s, nil
}

// newProvider 依設定建立生成式後端
func newProvider(ctx context.Context, cfg *config.Config) (provider.Provider, error) {
	pcfg := provider.Config{
		APIKey:  cfg.GenerativeAPIKey(),
		Model:   cfg.GenerativeModel(),
		Timeout: cfg.Generative.Timeout,
	}

	var (
		p   provider.Provider
		err error
	)
	switch cfg.Generative.Provider {
	case config.ProviderOpenAI:
		pcfg.BaseURL = cfg.Generative.OpenAI.BaseURL
		p, err = openai.NewClient(pcfg, cfg.Generative.OpenAI.ImageModel)
	case config.ProviderGemini:
		// 客戶端生命週期長於啟動用的 ctx
		p, err = gemini.NewClient(context.WithoutCancel(ctx), pcfg)
	default:
		pcfg.BaseURL = cfg.Generative.OpenRouter.BaseURL
		p, err = openrouter.NewClient(pcfg)
	}
	if err != nil {
		return nil, err
	}

	common.LogInfo("生成式後端已就緒",
		zap.String("provider", p.Name()),
		zap.String("model", p.GetModel()),
	)
	return p, nil
}

// newImageResolver 圖片生成僅支援 OpenAI
func newImageResolver(cfg *config.Config, lookup image.Lookup) *image.Resolver {
	var generator image.Generator
	if cfg.Image.GenerationEnabled && cfg.Generative.OpenAI.APIKey != "" {
		client, err := openai.NewClient(provider.Config{
			APIKey:  cfg.Generative.OpenAI.APIKey,
			Model:   cfg.Generative.OpenAI.Model,
			Timeout: cfg.Generative.Timeout,
			BaseURL: cfg.Generative.OpenAI.BaseURL,
		}, cfg.Generative.OpenAI.ImageModel)
		if err != nil {
			common.LogWarn("圖片生成初始化失敗", zap.Error(err))
		} else {
			generator = client
		}
	}

	return image.NewResolver(lookup, generator, image.NewProcessor(cfg.Image.MaxSizeBytes),
		cfg.Search.CallTimeout, cfg.Generative.Timeout)
}

// Close 釋放所有元件
func (s *Services) Close() {
	if s.AI != nil {
		// 會一併關閉隊列與後端
		if err := s.AI.Close(); err != nil {
			common.LogWarn("關閉 AI 服務失敗", zap.Error(err))
		}
	} else if s.Queue != nil {
		_ = s.Queue.Close()
	}
	if s.Favorites != nil {
		if err := s.Favorites.Close(); err != nil {
			common.LogWarn("關閉收藏儲存失敗", zap.Error(err))
		}
	}
}
