package favorites

import (
	"context"
	"time"

	"mixologist/internal/infrastructure/metrics"
	"mixologist/internal/pkg/common"

	"go.uber.org/zap"
)

// DefaultRetryDelay 切換收藏失敗後重試前的等待時間
const DefaultRetryDelay = 500 * time.Millisecond

// Service 收藏服務
type Service struct {
	store      Store
	retryDelay time.Duration
}

// NewService 創建收藏服務；retryDelay 小於 0 時使用預設值
func NewService(store Store, retryDelay time.Duration) *Service {
	if retryDelay < 0 {
		retryDelay = DefaultRetryDelay
	}
	return &Service{store: store, retryDelay: retryDelay}
}

// Toggle 已收藏則移除，否則加入；失敗時等待 retryDelay 後重試一次。
// 回傳操作後是否為收藏狀態。
func (s *Service) Toggle(ctx context.Context, profile common.CocktailProfile) (bool, error) {
	if _, err := validName(profile.Name); err != nil {
		return false, err
	}

	favorite, err := s.toggleOnce(ctx, profile)
	if err == nil {
		metrics.FavoriteOperations.WithLabelValues("toggle", "success").Inc()
		return favorite, nil
	}

	common.LogWarn("切換收藏失敗，稍後重試",
		zap.String("name", profile.Name),
		zap.Duration("retry_delay", s.retryDelay),
		zap.Error(err),
	)

	timer := time.NewTimer(s.retryDelay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		metrics.FavoriteOperations.WithLabelValues("toggle", "error").Inc()
		return false, ctx.Err()
	case <-timer.C:
	}

	favorite, err = s.toggleOnce(ctx, profile)
	if err != nil {
		metrics.FavoriteOperations.WithLabelValues("toggle", "error").Inc()
		common.LogError("切換收藏失敗", zap.String("name", profile.Name), zap.Error(err))
		return false, err
	}
	metrics.FavoriteOperations.WithLabelValues("toggle", "retried").Inc()
	return favorite, nil
}

func (s *Service) toggleOnce(ctx context.Context, profile common.CocktailProfile) (bool, error) {
	exists, err := s.store.Exists(ctx, profile.Name)
	if err != nil {
		return false, err
	}
	if exists {
		return false, s.store.Delete(ctx, profile.Name)
	}
	return true, s.store.Put(ctx, profile)
}

// Add 加入收藏（覆寫既有快照）
func (s *Service) Add(ctx context.Context, profile common.CocktailProfile) error {
	err := s.store.Put(ctx, profile)
	s.record("add", err)
	return err
}

// Remove 移除收藏
func (s *Service) Remove(ctx context.Context, name string) error {
	err := s.store.Delete(ctx, name)
	s.record("remove", err)
	return err
}

// IsFavorite 是否已收藏
func (s *Service) IsFavorite(ctx context.Context, name string) (bool, error) {
	return s.store.Exists(ctx, name)
}

// Get 獲取單一收藏
func (s *Service) Get(ctx context.Context, name string) (common.CocktailProfile, error) {
	return s.store.Get(ctx, name)
}

// List 列出全部收藏
func (s *Service) List(ctx context.Context) ([]common.CocktailProfile, error) {
	return s.store.List(ctx)
}

// Ping 檢查儲存是否可用
func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// Close 關閉儲存
func (s *Service) Close() error {
	return s.store.Close()
}

func (s *Service) record(op string, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.FavoriteOperations.WithLabelValues(op, status).Inc()
}
