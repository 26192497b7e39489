package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"mixologist/internal/core/ai/cache"
	"mixologist/internal/core/ai/provider"
	"mixologist/internal/pkg/common"

	"go.uber.org/zap"
)

// Response AI 回應結構
type Response struct {
	Content  string
	CacheHit bool
}

// Service 包裝生成式後端，統一處理超時、token 上限與快取
type Service struct {
	provider     provider.Provider
	cacheManager *cache.CacheManager
	maxTokens    int
}

// NewService 創建 AI 服務；cacheManager 可為 nil
func NewService(p provider.Provider, cacheManager *cache.CacheManager, maxTokens int) (*Service, error) {
	if p == nil {
		return nil, errors.New("ai provider is required")
	}
	return &Service{
		provider:     p,
		cacheManager: cacheManager,
		maxTokens:    maxTokens,
	}, nil
}

// ProcessRequest 統一對外方法；cacheKey 為空時不使用快取
func (s *Service) ProcessRequest(ctx context.Context, cacheKey string, req *provider.Request) (*Response, error) {
	if cacheKey != "" {
		if val, err := s.cacheManager.Get(ctx, cacheKey); err == nil && val != "" {
			return &Response{Content: val, CacheHit: true}, nil
		}
	}

	if req.MaxTokens == 0 {
		req.MaxTokens = s.maxTokens
	}

	if timeout := s.provider.GetTimeout(); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := s.provider.Generate(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%s generate: %w", s.provider.Name(), err)
	}

	common.LogDebug("AI 回應內容",
		zap.String("provider", s.provider.Name()),
		zap.String("model", s.provider.GetModel()),
		zap.Int("ai_response_length", len(resp.Content)),
		zap.Int("total_tokens", resp.Usage.TotalTokens),
		zap.Duration("latency", time.Since(start)),
	)

	return &Response{Content: resp.Content}, nil
}

// Remember 將已驗證的內容寫入快取
func (s *Service) Remember(ctx context.Context, cacheKey, content string) {
	if cacheKey == "" {
		return
	}
	if err := s.cacheManager.Set(ctx, cacheKey, content); err != nil {
		common.LogWarn("快取寫入失敗", zap.Error(err))
	}
}

// Provider 目前使用的後端
func (s *Service) Provider() provider.Provider {
	return s.provider
}

// CacheStats 快取統計；未啟用快取時只回報 enabled=false
func (s *Service) CacheStats() map[string]interface{} {
	return s.cacheManager.GetStats()
}

// Close 關閉後端與快取
func (s *Service) Close() error {
	_ = s.cacheManager.Close()
	return s.provider.Close()
}
